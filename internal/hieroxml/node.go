package hieroxml

import (
	"strconv"
	"strings"
)

// Attr is one ordered attribute. hieroXML consumers are order-sensitive
// enough that both backends must emit attributes exactly as assembled.
type Attr struct {
	Key   string
	Value string
}

// Node is one element in the backend-neutral document tree.
type Node struct {
	Tag      string
	Attrs    []Attr
	Text     string
	Children []*Node
}

func newNode(tag string, attrs ...Attr) *Node {
	return &Node{Tag: tag, Attrs: attrs}
}

// child appends a new element under n and returns it.
func (n *Node) child(tag string, attrs ...Attr) *Node {
	c := newNode(tag, attrs...)
	n.Children = append(n.Children, c)
	return c
}

// text appends a new element carrying only character data.
func (n *Node) text(tag, value string) *Node {
	c := n.child(tag)
	c.Text = value
	return c
}

func (n *Node) attr(key string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

func a(key, value string) Attr {
	return Attr{Key: key, Value: value}
}

func ai(key string, value int64) Attr {
	return Attr{Key: key, Value: strconv.FormatInt(value, 10)}
}

// formatFloat renders a float with up to six decimals and no trailing zeros,
// so 1.0 becomes "1" and 1.5 stays "1.5".
func formatFloat(value float64) string {
	text := strconv.FormatFloat(value, 'f', 6, 64)
	text = strings.TrimRight(text, "0")
	text = strings.TrimRight(text, ".")
	if text == "" || text == "-" {
		return "0"
	}
	return text
}
