package render

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

type MarkdownRenderer struct {
	highlight Highlighter
	logger    *slog.Logger
}

type MarkdownOption func(*MarkdownRenderer)

func WithHighlighter(h Highlighter) MarkdownOption {
	return func(r *MarkdownRenderer) { r.highlight = h }
}

func WithMarkdownLogger(l *slog.Logger) MarkdownOption {
	return func(r *MarkdownRenderer) { r.logger = l }
}

func NewMarkdownRenderer(opts ...MarkdownOption) *MarkdownRenderer {
	r := &MarkdownRenderer{highlight: EscapeHighlighter}
	for _, o := range opts {
		o(r)
	}
	return r
}

// build assembles a goldmark instance bound to one page's code block scope.
func (r *MarkdownRenderer) build(scope *Scope) goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Linkify,
			extension.Strikethrough,
			extension.Table,
			newCodeBlocks(scope, r.highlight, r.logger),
		),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
}

type MarkdownResult struct {
	HTML     []byte
	Headings []Heading
	Blocks   int
	// Text is the flattened plain text of the document.
	Text string
}

// Render converts src to HTML using the visibility scope carried by ctx.
func (r *MarkdownRenderer) Render(ctx context.Context, src []byte) (MarkdownResult, error) {
	var buf bytes.Buffer

	md := r.build(ScopeFrom(ctx))
	pctx := parser.NewContext()
	doc := md.Parser().Parse(text.NewReader(src), parser.WithContext(pctx))

	var heads []Heading
	blocks := 0
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Heading:
			var id string
			if raw, ok := v.AttributeString("id"); ok {
				switch x := raw.(type) {
				case string:
					id = x
				case []byte:
					id = string(x)
				}
			}
			heads = append(heads, Heading{
				Level: v.Level,
				ID:    id,
				Text:  Flatten(FromAST(v, src)),
			})
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			blocks++
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return MarkdownResult{}, err
	}

	if err := md.Renderer().Render(&buf, src, doc); err != nil {
		return MarkdownResult{}, err
	}
	return MarkdownResult{
		HTML:     buf.Bytes(),
		Headings: heads,
		Blocks:   blocks,
		Text:     Flatten(FromAST(doc, src)),
	}, nil
}
