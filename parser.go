package moreremesas

import (
	"strings"

	"github.com/beevik/etree"
)

// schema lists the repeatable element paths of an operation's response,
// relative to the Response element, e.g. "Options/Option".
type schema []string

var commonRepeatable = schema{"Messages/Message"}

func (s schema) repeatable(path string) bool {
	for _, p := range s {
		if p == path {
			return true
		}
	}
	for _, p := range commonRepeatable {
		if p == path {
			return true
		}
	}
	return false
}

// childrenOf returns the repeatable field names declared directly under path.
func (s schema) childrenOf(path string) []string {
	var names []string
	prefix := ""
	if path != "" {
		prefix = path + "/"
	}
	for _, list := range []schema{s, commonRepeatable} {
		for _, p := range list {
			rest, ok := strings.CutPrefix(p, prefix)
			if !ok || rest == "" || strings.Contains(rest, "/") {
				continue
			}
			names = append(names, rest)
		}
	}
	return names
}

// parseResponse converts a SOAP response body into the provider Response tree.
func parseResponse(s schema, data []byte) (*Node, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, &Error{Kind: KindServer, Message: "invalid XML in response", Err: err}
	}

	root := doc.Root()
	if root == nil {
		return nil, &Error{Kind: KindServer, Message: "empty response document"}
	}

	if fault := findFault(root); fault != nil {
		return nil, fault
	}

	resp := findResponse(root)
	if resp == nil {
		return nil, &Error{Kind: KindServer, Message: "Response element not found"}
	}

	node := convert(resp, "", s)

	if code := node.StringAt("ResponseCode"); code != "" && code != ResponseCodeOK {
		return nil, &Error{
			Kind:     KindFault,
			Code:     code,
			Message:  responseMessage(node),
			Response: node,
		}
	}

	return node, nil
}

// detectFault reports a SOAP fault carried by body, if any. Bodies that are
// not XML yield nil.
func detectFault(data []byte) *Error {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil || doc.Root() == nil {
		return nil
	}
	return findFault(doc.Root())
}

// isEnvelopeElement reports whether e is the SOAP 1.1 or 1.2 envelope element named tag.
func isEnvelopeElement(e *etree.Element, tag string) bool {
	if e.Tag != tag {
		return false
	}
	ns := e.NamespaceURI()
	return ns == soapNS || ns == soap12NS
}

// findFault returns the fault carried as a direct child of the envelope Body.
// Payload fields that happen to be named Fault are ignored.
func findFault(root *etree.Element) *Error {
	if !isEnvelopeElement(root, "Envelope") {
		return nil
	}

	var el *etree.Element
	for _, b := range root.ChildElements() {
		if !isEnvelopeElement(b, "Body") {
			continue
		}
		for _, c := range b.ChildElements() {
			if isEnvelopeElement(c, "Fault") {
				el = c
				break
			}
		}
	}
	if el == nil {
		return nil
	}

	// SOAP 1.1 uses faultcode/faultstring, SOAP 1.2 Code/Value and Reason/Text.
	code := childText(el, "faultcode")
	if code == "" {
		if c := findChild(el, "Code"); c != nil {
			code = childText(c, "Value")
		}
	}
	msg := childText(el, "faultstring")
	if msg == "" {
		if r := findChild(el, "Reason"); r != nil {
			msg = childText(r, "Text")
		}
	}

	return &Error{Kind: KindFault, Code: code, Message: msg}
}

// findResponse locates the provider payload: the first element named
// Response, else the first element whose name contains "Response".
func findResponse(root *etree.Element) *etree.Element {
	body := findElement(root, func(e *etree.Element) bool { return e.Tag == "Body" })
	if body == nil {
		body = root
	}
	if el := findElement(body, func(e *etree.Element) bool { return e.Tag == "Response" }); el != nil {
		return el
	}
	return findElement(body, func(e *etree.Element) bool {
		return e != body && strings.Contains(e.Tag, "Response")
	})
}

func convert(e *etree.Element, path string, s schema) *Node {
	n := &Node{Name: e.Tag}

	children := e.ChildElements()
	if len(children) == 0 {
		n.Text = strings.TrimSpace(e.Text())
	}

	for _, c := range children {
		childPath := c.Tag
		if path != "" {
			childPath = path + "/" + c.Tag
		}
		n.addItem(c.Tag, convert(c, childPath, s), s.repeatable(childPath))
	}

	for _, name := range s.childrenOf(path) {
		if n.Field(name) == nil {
			n.addItem(name, nil, true)
		}
	}

	return n
}

func responseMessage(n *Node) string {
	if msg := n.First("ResponseMessage", "ResponseDescription", "ResponseText"); msg != "" {
		return msg
	}
	for _, m := range n.List("Messages", "Message") {
		if msg := m.First("MessageText", "MessageDescription", "Description"); msg != "" {
			return msg
		}
	}
	return ""
}

func findElement(e *etree.Element, match func(*etree.Element) bool) *etree.Element {
	if match(e) {
		return e
	}
	for _, c := range e.ChildElements() {
		if found := findElement(c, match); found != nil {
			return found
		}
	}
	return nil
}

func findChild(e *etree.Element, tag string) *etree.Element {
	for _, c := range e.ChildElements() {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

func childText(e *etree.Element, tag string) string {
	if c := findChild(e, tag); c != nil {
		return strings.TrimSpace(c.Text())
	}
	return ""
}
