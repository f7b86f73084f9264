package render

import (
	"bytes"
	"fmt"
	"html"
	"log/slog"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// HiddenPlaceholder replaces the body of a hidden code block.
const HiddenPlaceholder = "Code hidden."

// Highlighter turns raw code into HTML. It must escape the code itself.
type Highlighter func(lang string, code []byte) string

// EscapeHighlighter is the default Highlighter.
func EscapeHighlighter(_ string, code []byte) string {
	return html.EscapeString(string(code))
}

// codeBlocks renders fenced and indented code blocks through a Scope. One
// instance serves one page render since it numbers blocks as it goes.
type codeBlocks struct {
	scope     *Scope
	highlight Highlighter
	logger    *slog.Logger
	next      int
}

func newCodeBlocks(scope *Scope, h Highlighter, logger *slog.Logger) *codeBlocks {
	if h == nil {
		h = EscapeHighlighter
	}
	return &codeBlocks{scope: scope, highlight: h, logger: logger}
}

func (r *codeBlocks) Extend(m goldmark.Markdown) {
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(r, 100),
	))
}

func (r *codeBlocks) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.render)
	reg.Register(ast.KindCodeBlock, r.render)
}

func (r *codeBlocks) render(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	idx := r.next
	r.next++

	var lang string
	if f, ok := n.(*ast.FencedCodeBlock); ok && f.Info != nil {
		lang = string(f.Language(source))
	}

	var code bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		code.Write(seg.Value(source))
	}

	state := r.scope.For(idx).State()
	label := "Hide"
	if state == Hidden {
		label = "Show"
	}

	fmt.Fprintf(w, `<div class="code-block" data-block="%d" data-state="%s">`, idx, state)
	fmt.Fprintf(w, `<div class="code-toolbar"><a class="code-toggle" href="%s" data-toggle="%s">%s</a>`,
		html.EscapeString(r.scope.ToggleHref(idx)), r.scope.actionFor(idx), label)

	if state == Hidden {
		_, _ = w.WriteString(`</div><p class="code-hidden">` + HiddenPlaceholder + `</p></div>` + "\n")
		return ast.WalkSkipChildren, nil
	}

	body := r.highlight(lang, code.Bytes())
	payload, err := CopyPayload(body)
	if err != nil {
		// 解析失败时退回原始代码
		if r.logger != nil {
			r.logger.Warn("copy payload", slog.Int("block", idx), slog.String("error", err.Error()))
		}
		payload = code.String()
	}

	fmt.Fprintf(w, ` <button type="button" class="code-copy" data-copy="%s">Copy</button></div>`, html.EscapeString(payload))
	_, _ = w.WriteString("<pre><code")
	if lang != "" {
		fmt.Fprintf(w, ` class="language-%s"`, html.EscapeString(lang))
	}
	_, _ = w.WriteString(">")
	_, _ = w.WriteString(body)
	_, _ = w.WriteString("</code></pre></div>\n")
	return ast.WalkSkipChildren, nil
}

// CopyPayload is the clipboard text of a rendered code body: the flattened
// text of its own subtree, with any highlighter markup dropped.
func CopyPayload(body string) (string, error) {
	n, err := FromHTML(body)
	if err != nil {
		return "", err
	}
	return Flatten(n), nil
}
