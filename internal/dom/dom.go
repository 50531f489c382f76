// Package dom is a small tree-mutation API over golang.org/x/net/html nodes.
// Text is only ever inserted as text nodes, so the serialiser escapes it.
package dom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document wraps a parsed HTML document
type Document struct {
	root *html.Node
}

// Element is a handle to an element node
type Element struct {
	node *html.Node
}

// Parse reads a full HTML document
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{root: root}, nil
}

// ElementByID returns the first element with the given id, nil if none
func (d *Document) ElementByID(id string) *Element {
	if n := findByID(d.root, id); n != nil {
		return &Element{node: n}
	}
	return nil
}

// CreateElement makes a detached element
func (d *Document) CreateElement(tag string) *Element {
	tag = strings.ToLower(tag)
	return &Element{node: &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}}
}

// Render serialises the whole document
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// Tag returns the element name
func (e *Element) Tag() string { return e.node.Data }

// SetText replaces all children with a single text node
func (e *Element) SetText(text string) {
	e.Clear()
	e.AppendText(text)
}

// AppendText adds a text node after the existing children
func (e *Element) AppendText(text string) {
	e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// Append attaches child as the last child, detaching it from any previous parent
func (e *Element) Append(child *Element) {
	if child.node.Parent != nil {
		child.node.Parent.RemoveChild(child.node)
	}
	e.node.AppendChild(child.node)
}

// Clear removes all children
func (e *Element) Clear() {
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		c = next
	}
}

// SetAttr sets or replaces an attribute
func (e *Element) SetAttr(key, val string) {
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == key {
			e.node.Attr[i].Val = val
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: key, Val: val})
}

// Attr returns an attribute value and whether it is set
func (e *Element) Attr(key string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Children returns the element children, text nodes are skipped
func (e *Element) Children() []*Element {
	var res []*Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			res = append(res, &Element{node: c})
		}
	}
	return res
}

// Find returns all descendant elements with the given tag, in document order
func (e *Element) Find(tag string) []*Element {
	var res []*Element
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == tag {
				res = append(res, &Element{node: c})
			}
			walk(c)
		}
	}
	walk(e.node)
	return res
}

// Text returns the concatenated text content
func (e *Element) Text() string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(e.node)
	return sb.String()
}

// Render serialises the element and its subtree
func (e *Element) Render(w io.Writer) error {
	return html.Render(w, e.node)
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}
