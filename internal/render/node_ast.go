package render

import (
	"github.com/yuin/goldmark/ast"
)

// FromAST maps a goldmark node and its source onto a content tree.
func FromAST(n ast.Node, source []byte) Node {
	if n == nil {
		return Empty{}
	}

	switch v := n.(type) {
	case *ast.Text:
		text := string(v.Segment.Value(source))
		if v.SoftLineBreak() || v.HardLineBreak() {
			text += "\n"
		}
		return Leaf{Text: text}
	case *ast.String:
		return Leaf{Text: string(v.Value)}
	case *ast.CodeBlock, *ast.FencedCodeBlock:
		return Composite{Children: linesOf(n, source)}
	case *ast.HTMLBlock, *ast.RawHTML:
		return Empty{}
	}

	if n.HasChildren() {
		var children Sequence
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			children = append(children, FromAST(c, source))
		}
		return Composite{Children: children}
	}
	return Empty{}
}

func linesOf(n ast.Node, source []byte) Sequence {
	lines := n.Lines()
	out := make(Sequence, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		out = append(out, Leaf{Text: string(seg.Value(source))})
	}
	return out
}
