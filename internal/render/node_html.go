package render

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// FromHTML parses an HTML fragment into a content tree. Elements become
// Composite, text becomes Leaf, comments and doctypes become Empty.
func FromHTML(fragment string) (Node, error) {
	// 用 div 做上下文：pre 上下文会吞掉开头的换行
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), ctx)
	if err != nil {
		return Empty{}, err
	}
	seq := make(Sequence, 0, len(nodes))
	for _, n := range nodes {
		seq = append(seq, fromHTMLNode(n))
	}
	return seq, nil
}

func fromHTMLNode(n *html.Node) Node {
	switch n.Type {
	case html.TextNode:
		return Leaf{Text: n.Data}
	case html.ElementNode, html.DocumentNode:
		var children Sequence
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			children = append(children, fromHTMLNode(c))
		}
		return Composite{Children: children}
	case html.CommentNode, html.DoctypeNode:
		return Empty{}
	}
	return Opaque{Value: n}
}
