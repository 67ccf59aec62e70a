package moreremesas

import (
	"bytes"
	"encoding/json"
)

// Node is an element of a response document: either a text leaf or an
// ordered set of named fields.
type Node struct {
	Name   string
	Text   string
	fields []*Field
}

// Field is one named child of a Node. A repeatable field holds a sequence,
// even when the provider sent a single element or none at all.
type Field struct {
	Name       string
	Repeatable bool
	Items      []*Node
}

// Fields returns the node's fields in document order.
func (n *Node) Fields() []*Field {
	if n == nil {
		return nil
	}
	return n.fields
}

// IsLeaf reports whether the node carries text rather than fields.
func (n *Node) IsLeaf() bool {
	return n != nil && len(n.fields) == 0
}

// Field returns the named field, or nil.
func (n *Node) Field(name string) *Field {
	if n == nil {
		return nil
	}
	for _, f := range n.fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func (n *Node) addItem(name string, item *Node, repeatable bool) {
	f := n.Field(name)
	if f == nil {
		f = &Field{Name: name}
		n.fields = append(n.fields, f)
	}
	f.Repeatable = f.Repeatable || repeatable
	if item != nil {
		f.Items = append(f.Items, item)
	}
	if len(f.Items) > 1 {
		f.Repeatable = true
	}
}

// Get follows path through the first item of each field.
func (n *Node) Get(path ...string) *Node {
	cur := n
	for _, name := range path {
		f := cur.Field(name)
		if f == nil || len(f.Items) == 0 {
			return nil
		}
		cur = f.Items[0]
	}
	return cur
}

// List returns every item of the field at path. It never returns a bare
// object: a single element comes back as a one-element slice and a missing
// field as an empty one.
func (n *Node) List(path ...string) []*Node {
	if len(path) == 0 {
		return nil
	}
	parent := n.Get(path[:len(path)-1]...)
	f := parent.Field(path[len(path)-1])
	if f == nil {
		return []*Node{}
	}
	return f.Items
}

// StringAt returns the trimmed text at path, or "" when absent.
func (n *Node) StringAt(path ...string) string {
	v := n.Get(path...)
	if v == nil {
		return ""
	}
	return v.Text
}

// First returns the first non-empty text among the given sibling names.
func (n *Node) First(names ...string) string {
	for _, name := range names {
		if v := n.StringAt(name); v != "" {
			return v
		}
	}
	return ""
}

// MessageCodes returns the MessageCode of every Messages/Message entry.
func (n *Node) MessageCodes() []string {
	var codes []string
	for _, m := range n.List("Messages", "Message") {
		if code := m.StringAt("MessageCode"); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

// Value converts the node to plain Go data: leaves become strings, nodes
// become map[string]any and repeatable fields become []any.
func (n *Node) Value() any {
	if n == nil {
		return nil
	}
	if n.IsLeaf() {
		return n.Text
	}
	out := make(map[string]any, len(n.fields))
	for _, f := range n.fields {
		out[f.Name] = f.value()
	}
	return out
}

// Map is Value for nodes that hold fields.
func (n *Node) Map() map[string]any {
	m, _ := n.Value().(map[string]any)
	if m == nil {
		m = map[string]any{}
	}
	return m
}

func (f *Field) value() any {
	if f.Repeatable {
		items := make([]any, 0, len(f.Items))
		for _, it := range f.Items {
			items = append(items, it.Value())
		}
		return items
	}
	if len(f.Items) == 0 {
		return ""
	}
	return f.Items[0].Value()
}

// MarshalJSON encodes the node keeping document order.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n *Node) writeJSON(buf *bytes.Buffer) error {
	if n == nil {
		buf.WriteString("null")
		return nil
	}
	if n.IsLeaf() {
		return writeJSONString(buf, n.Text)
	}

	buf.WriteByte('{')
	for i, f := range n.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONString(buf, f.Name); err != nil {
			return err
		}
		buf.WriteByte(':')

		switch {
		case f.Repeatable:
			buf.WriteByte('[')
			for j, it := range f.Items {
				if j > 0 {
					buf.WriteByte(',')
				}
				if err := it.writeJSON(buf); err != nil {
					return err
				}
			}
			buf.WriteByte(']')
		case len(f.Items) == 0:
			buf.WriteString(`""`)
		default:
			if err := f.Items[0].writeJSON(buf); err != nil {
				return err
			}
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}
