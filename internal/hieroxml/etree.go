package hieroxml

import (
	"fmt"

	"github.com/beevik/etree"
)

// BackendEtree is the default backend. etree writes the declaration, the
// DOCTYPE directive and two-space indentation in one pass and preserves
// attribute order.
const BackendEtree = "etree"

func init() {
	register(BackendEtree, func() Backend { return etreeBackend{} })
}

type etreeBackend struct{}

func (etreeBackend) Name() string { return BackendEtree }

func (etreeBackend) Render(root *Node) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	doc.CreateDirective("DOCTYPE hieroXML")
	appendEtree(&doc.Element, root)
	doc.Indent(2)
	data, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("etree render: %w", err)
	}
	return data, nil
}

func appendEtree(parent *etree.Element, node *Node) {
	element := parent.CreateElement(node.Tag)
	for _, attr := range node.Attrs {
		element.CreateAttr(attr.Key, attr.Value)
	}
	if node.Text != "" {
		element.SetText(node.Text)
	}
	for _, c := range node.Children {
		appendEtree(element, c)
	}
}
