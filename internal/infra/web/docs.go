package web

import (
	_ "embed"
	"html/template"
	"net/http"

	"github.com/gomarkdown/markdown"
	mhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

//go:embed api.md
var apiDocs []byte

// docsHTML is rendered once; the embedded markdown never changes.
var docsHTML = template.HTML(mdToHTML(apiDocs))

// helper function to parse given markdown and return HTML content
func mdToHTML(md []byte) string {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse(md)

	htmlFlags := mhtml.CommonFlags | mhtml.HrefTargetBlank
	renderer := mhtml.NewRenderer(mhtml.RendererOptions{Flags: htmlFlags})
	return string(markdown.Render(doc, renderer))
}

var docsPage = template.Must(template.New("docs").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width,initial-scale=1" />
<title>{{.Name}} API</title>
<style>
body{font-family:system-ui,Arial,sans-serif;margin:2rem;max-width:860px}
code,pre{background:#f4f4f4;border-radius:4px;padding:2px 4px}
.fields{color:#555}
</style>
</head>
<body>
<h1>{{.Name}}</h1>
{{if .URI}}<p><a href="{{.URI}}">{{.URI}}</a></p>{{end}}
<p class="fields">Input fields: {{range $i, $f := .Fields}}{{if $i}}, {{end}}<code>{{$f}}</code>{{end}}</p>
{{.Content}}
</body>
</html>`))

func (s *Server) handleDocs(w http.ResponseWriter, r *http.Request) {
	md := s.svc.Metadata()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = docsPage.Execute(w, struct {
		Name    string
		URI     string
		Fields  []string
		Content template.HTML
	}{
		Name:    md.ModelName,
		URI:     md.ModelURI,
		Fields:  s.svc.InputParameters(),
		Content: docsHTML,
	})
}
