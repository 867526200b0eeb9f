package render

import (
	"bytes"
	"fmt"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// DiagramLanguage is the fenced-code language routed to the diagram renderer
// in the frontend instead of syntax highlighting.
const DiagramLanguage = "mermaid"

const defaultStyle = "github"

// Renderer turns Markdown fragments into HTML for non-focused blocks and for
// the preview/split views. It is stateless and safe for concurrent use.
type Renderer struct {
	md        goldmark.Markdown
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithStyle selects the chroma style used for code highlighting.
func WithStyle(name string) Option {
	return func(r *Renderer) {
		if s := styles.Get(name); s != nil {
			r.style = s
		}
	}
}

// New creates a Renderer with GFM enabled.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		style:     styles.Get(defaultStyle),
		formatter: chromahtml.New(chromahtml.WithClasses(true)),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.md = goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			&codeExtension{r: r},
		),
	)
	return r
}

// Render converts markdown to HTML.
func (r *Renderer) Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// CSS returns the stylesheet for highlighted code.
func (r *Renderer) CSS() (string, error) {
	var buf bytes.Buffer
	if err := r.formatter.WriteCSS(&buf, r.style); err != nil {
		return "", fmt.Errorf("write code css: %w", err)
	}
	return buf.String(), nil
}

// ── fenced code ────────────────────────────────────────────

type codeExtension struct {
	r *Renderer
}

func (e *codeExtension) Extend(m goldmark.Markdown) {
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&codeRenderer{r: e.r}, 200),
	))
}

type codeRenderer struct {
	r *Renderer
}

func (c *codeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, c.renderFencedCode)
}

func (c *codeRenderer) renderFencedCode(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)
	lang := string(n.Language(source))

	var code bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		code.Write(seg.Value(source))
	}

	if lang == DiagramLanguage {
		_, _ = w.WriteString(`<pre class="mermaid">`)
		_, _ = w.Write(util.EscapeHTML(code.Bytes()))
		_, _ = w.WriteString("</pre>\n")
		return ast.WalkSkipChildren, nil
	}

	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	it, err := chroma.Coalesce(lexer).Tokenise(nil, code.String())
	if err != nil {
		return ast.WalkStop, fmt.Errorf("tokenise %s: %w", lang, err)
	}
	if err := c.r.formatter.Format(w, c.r.style, it); err != nil {
		return ast.WalkStop, fmt.Errorf("highlight %s: %w", lang, err)
	}
	return ast.WalkSkipChildren, nil
}
