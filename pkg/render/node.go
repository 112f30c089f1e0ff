// Package render holds the view tree produced by the portfolio pipeline.
//
// A Node describes one element independently of any rendering surface.
// Controllers mutate nodes in place; Render serialises the tree to HTML.
package render

import (
	"sort"
	"strings"
)

// Node is one element of the view tree
type Node struct {
	Tag      string
	ID       string
	Classes  []string
	Attrs    map[string]string
	Style    map[string]string
	Text     string // escaped text content, emitted before children
	Raw      string // trusted markup, emitted verbatim before children
	Hidden   bool
	Children []*Node
}

// El creates a node with the given tag and classes
func El(tag string, classes ...string) *Node {
	return &Node{Tag: tag, Classes: classes}
}

// WithID sets the id and returns the node
func (n *Node) WithID(id string) *Node {
	n.ID = id
	return n
}

// WithText sets the text content and returns the node
func (n *Node) WithText(text string) *Node {
	n.Text = text
	return n
}

// WithRaw sets trusted markup content and returns the node
func (n *Node) WithRaw(markup string) *Node {
	n.Raw = markup
	return n
}

// SetAttr sets an attribute and returns the node
func (n *Node) SetAttr(name, value string) *Node {
	if n.Attrs == nil {
		n.Attrs = map[string]string{}
	}
	n.Attrs[name] = value
	return n
}

// Attr returns an attribute value
func (n *Node) Attr(name string) string {
	return n.Attrs[name]
}

// SetStyle sets one inline style property; an empty value removes it
func (n *Node) SetStyle(property, value string) *Node {
	if value == "" {
		delete(n.Style, property)
		return n
	}
	if n.Style == nil {
		n.Style = map[string]string{}
	}
	n.Style[property] = value
	return n
}

// HasClass reports whether the node carries class
func (n *Node) HasClass(class string) bool {
	for _, c := range n.Classes {
		if c == class {
			return true
		}
	}
	return false
}

// AddClass adds class if missing
func (n *Node) AddClass(class string) {
	if !n.HasClass(class) {
		n.Classes = append(n.Classes, class)
	}
}

// RemoveClass removes class if present
func (n *Node) RemoveClass(class string) {
	kept := n.Classes[:0]
	for _, c := range n.Classes {
		if c != class {
			kept = append(kept, c)
		}
	}
	n.Classes = kept
}

// ToggleClass adds or removes class depending on on
func (n *Node) ToggleClass(class string, on bool) {
	if on {
		n.AddClass(class)
	} else {
		n.RemoveClass(class)
	}
}

// Append adds children and returns the node
func (n *Node) Append(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// Walk visits the node and its descendants depth-first until fn returns false
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// FindAll returns every descendant (including n) matching pred, in document order
func (n *Node) FindAll(pred func(*Node) bool) []*Node {
	var found []*Node
	n.Walk(func(c *Node) bool {
		if pred(c) {
			found = append(found, c)
		}
		return true
	})
	return found
}

// ByClass returns every node carrying class
func (n *Node) ByClass(class string) []*Node {
	return n.FindAll(func(c *Node) bool { return c.HasClass(class) })
}

// ByID returns the first node with the given id
func (n *Node) ByID(id string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if c.ID == id {
			found = c
			return false
		}
		return true
	})
	return found
}

// First returns the first direct child with the given tag
func (n *Node) First(tag string) *Node {
	for _, c := range n.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

func (n *Node) styleString() string {
	props := make([]string, 0, len(n.Style)+1)
	for p := range n.Style {
		props = append(props, p)
	}
	sort.Strings(props)
	var b strings.Builder
	for _, p := range props {
		b.WriteString(p)
		b.WriteString(": ")
		b.WriteString(n.Style[p])
		b.WriteString("; ")
	}
	if n.Hidden {
		b.WriteString("display: none; ")
	}
	return strings.TrimSpace(b.String())
}
