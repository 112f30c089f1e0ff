package render

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Render writes the tree rooted at n as HTML
func Render(w io.Writer, n *Node) error {
	hn, err := toHTML(n)
	if err != nil {
		return err
	}
	return html.Render(w, hn)
}

// String renders the tree to a string
func String(n *Node) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// InnerString renders only the children of n
func InnerString(n *Node) (string, error) {
	var buf bytes.Buffer
	hn, err := toHTML(n)
	if err != nil {
		return "", err
	}
	for c := hn.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func toHTML(n *Node) (*html.Node, error) {
	hn := &html.Node{
		Type:     html.ElementNode,
		Data:     n.Tag,
		DataAtom: atom.Lookup([]byte(n.Tag)),
	}
	if n.ID != "" {
		hn.Attr = append(hn.Attr, html.Attribute{Key: "id", Val: n.ID})
	}
	if len(n.Classes) > 0 {
		hn.Attr = append(hn.Attr, html.Attribute{Key: "class", Val: strings.Join(n.Classes, " ")})
	}
	keys := make([]string, 0, len(n.Attrs))
	for k := range n.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		hn.Attr = append(hn.Attr, html.Attribute{Key: k, Val: n.Attrs[k]})
	}
	if style := n.styleString(); style != "" {
		hn.Attr = append(hn.Attr, html.Attribute{Key: "style", Val: style})
	}

	if n.Text != "" {
		hn.AppendChild(&html.Node{Type: html.TextNode, Data: n.Text})
	}
	if n.Raw != "" {
		ctx := &html.Node{Type: html.ElementNode, Data: n.Tag, DataAtom: hn.DataAtom}
		fragment, err := html.ParseFragment(strings.NewReader(n.Raw), ctx)
		if err != nil {
			return nil, fmt.Errorf("parsing markup in <%s>: %w", n.Tag, err)
		}
		for _, f := range fragment {
			hn.AppendChild(f)
		}
	}
	for _, c := range n.Children {
		hc, err := toHTML(c)
		if err != nil {
			return nil, err
		}
		hn.AppendChild(hc)
	}
	return hn, nil
}
