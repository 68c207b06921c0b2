// Package render mounts view models into parsed page shells. Markup only
// ever comes out of html.Render, so every text and attribute is escaped.
package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type Document struct {
	Root *html.Node
}

func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return &Document{Root: root}, nil
}

func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.Root)
}

func (d *Document) String() string {
	var buf bytes.Buffer
	_ = d.Render(&buf)
	return buf.String()
}

// ByID returns the first element with the given id, or nil.
func (d *Document) ByID(id string) *html.Node {
	return find(d.Root, func(n *html.Node) bool { return Attr(n, "id") == id })
}

func (d *Document) Body() *html.Node {
	return find(d.Root, func(n *html.Node) bool { return n.DataAtom == atom.Body })
}

// Each visits every element matching the predicate in document order.
func (d *Document) Each(match func(*html.Node) bool, fn func(*html.Node)) {
	walk(d.Root, func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			fn(n)
		}
	})
}

func find(root *html.Node, match func(*html.Node) bool) *html.Node {
	var out *html.Node
	walk(root, func(n *html.Node) {
		if out == nil && n.Type == html.ElementNode && match(n) {
			out = n
		}
	})
	return out
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func Attr(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func RemoveAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			out = append(out, a)
		}
	}
	n.Attr = out
}

func HasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(Attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func AddClass(n *html.Node, class string) {
	if HasClass(n, class) {
		return
	}
	SetAttr(n, "class", strings.TrimSpace(Attr(n, "class")+" "+class))
}

func RemoveClass(n *html.Node, class string) {
	fields := strings.Fields(Attr(n, "class"))
	kept := fields[:0]
	for _, c := range fields {
		if c != class {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		RemoveAttr(n, "class")
		return
	}
	SetAttr(n, "class", strings.Join(kept, " "))
}

// Clear detaches every child of n.
func Clear(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}

// SetText replaces the children of n with a single text node.
func SetText(n *html.Node, s string) {
	Clear(n)
	n.AppendChild(Text(s))
}

// TextContent concatenates every text node under n.
func TextContent(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	})
	return b.String()
}

func Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// El builds an element. attrs are key/value pairs.
func El(a atom.Atom, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

// Append adds children to n and returns n.
func Append(n *html.Node, children ...*html.Node) *html.Node {
	for _, c := range children {
		if c != nil {
			n.AppendChild(c)
		}
	}
	return n
}
