package hieroxml

import (
	"fmt"
	"sort"
)

// Backend serializes an assembled node tree into the final document bytes,
// including the XML declaration and DOCTYPE line.
type Backend interface {
	Name() string
	Render(root *Node) ([]byte, error)
}

var backends = map[string]func() Backend{}

func register(name string, factory func() Backend) {
	backends[name] = factory
}

// SelectBackend resolves a backend by name. An empty name selects the etree
// backend.
func SelectBackend(name string) (Backend, error) {
	if name == "" {
		name = BackendEtree
	}
	factory, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown serializer backend %q (available: %v)", name, BackendNames())
	}
	return factory(), nil
}

// BackendNames lists the registered backend names in stable order.
func BackendNames() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
