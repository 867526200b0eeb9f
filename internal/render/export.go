package render

import (
	"bytes"
	"fmt"
	"html/template"
)

var exportTmpl = template.Must(template.New("export").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { max-width: 820px; margin: 2rem auto; padding: 0 1rem; font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; line-height: 1.6; }
table { border-collapse: collapse; }
th, td { border: 1px solid #d0d7de; padding: 4px 10px; }
pre { padding: 12px; overflow-x: auto; }
img { max-width: 100%; }
{{.CodeCSS}}
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// ExportHTML renders markdown as a standalone HTML document.
func (r *Renderer) ExportHTML(title, markdown string) ([]byte, error) {
	body, err := r.Render(markdown)
	if err != nil {
		return nil, err
	}
	css, err := r.CSS()
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = Title(markdown)
	}

	var buf bytes.Buffer
	err = exportTmpl.Execute(&buf, struct {
		Title   string
		CodeCSS template.CSS
		Body    template.HTML
	}{title, template.CSS(css), template.HTML(body)})
	if err != nil {
		return nil, fmt.Errorf("export html: %w", err)
	}
	return buf.Bytes(), nil
}
