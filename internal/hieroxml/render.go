package hieroxml

import (
	"hroxgen/internal/document"
)

// Render assembles the node tree for graph and serializes it with the named
// backend in one step.
func Render(graph *document.Graph, backendName string, opts Options) ([]byte, error) {
	backend, err := SelectBackend(backendName)
	if err != nil {
		return nil, err
	}
	return backend.Render(Assemble(graph, opts))
}
