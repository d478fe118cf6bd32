package hieroxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// BackendMinimal serializes the element tree with encoding/xml alone; the
// declaration and DOCTYPE line are prepended by hand since the stdlib encoder
// has no directive support.
const BackendMinimal = "minimal"

const minimalHeader = "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<!DOCTYPE hieroXML>\n"

func init() {
	register(BackendMinimal, func() Backend { return minimalBackend{} })
}

type minimalBackend struct{}

func (minimalBackend) Name() string { return BackendMinimal }

func (minimalBackend) Render(root *Node) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(minimalHeader)

	encoder := xml.NewEncoder(&buf)
	encoder.Indent("", "  ")
	if err := encodeNode(encoder, root); err != nil {
		return nil, fmt.Errorf("minimal render: %w", err)
	}
	if err := encoder.Flush(); err != nil {
		return nil, fmt.Errorf("minimal render: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func encodeNode(encoder *xml.Encoder, node *Node) error {
	start := xml.StartElement{Name: xml.Name{Local: node.Tag}}
	for _, attr := range node.Attrs {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: attr.Key}, Value: attr.Value})
	}
	if err := encoder.EncodeToken(start); err != nil {
		return err
	}
	if node.Text != "" {
		if err := encoder.EncodeToken(xml.CharData(node.Text)); err != nil {
			return err
		}
	}
	for _, c := range node.Children {
		if err := encodeNode(encoder, c); err != nil {
			return err
		}
	}
	return encoder.EncodeToken(start.End())
}
