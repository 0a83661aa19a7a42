package httpadapter

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/graphragio/gateway/internal/adapters/http/oai"
)

var referenceTemplate = template.Must(template.New("reference").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<p><em>{{.Kind}}</em></p>
<dl>
{{- range .Fields}}
{{- if .Value}}
<dt><strong>{{.Label}}</strong></dt>
<dd>{{.Value}}</dd>
{{- end}}
{{- end}}
</dl>
</body>
</html>
`))

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>GraphRAG Gateway</title></head>
<body>
<h1>GraphRAG Gateway</h1>
<p>OpenAI-compatible chat API over GraphRAG knowledge graphs.</p>
<ul>
<li><code>POST /v1/chat/completions</code></li>
<li><code>GET /v1/models</code></li>
<li><code>GET /v1/references/{index}/{datatype}/{id}</code></li>
<li><code>GET /health</code></li>
<li><code>GET /metrics</code></li>
</ul>
<h2>Models</h2>
<ul>
{{- range .Models}}
<li><code>{{.}}</code></li>
{{- end}}
</ul>
</body>
</html>
`))

func (rt *Router) renderIndexPage(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = indexTemplate.Execute(w, struct{ Models []string }{Models: rt.chat.ModelIDs()})
}

// reference serves the citation link targets appended to chat answers.
// Path shape: /v1/references/{index}/{datatype}/{id}
func (rt *Router) reference(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, oai.ErrorResponse{Error: "method not allowed"})
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/references/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 3 {
		writeJSON(w, http.StatusBadRequest, oai.ErrorResponse{Error: "path must be /v1/references/{index}/{datatype}/{id}"})
		return
	}
	index, datatype := parts[0], strings.ToLower(parts[1])
	shortID, err := strconv.Atoi(parts[2])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, oai.ErrorResponse{Error: "reference id must be an integer"})
		return
	}

	page, err := rt.refs.Resolve(r.Context(), index, datatype, shortID)
	if rt.metrics != nil {
		rt.metrics.RecordReferenceLookup(rt.service, datatype, err)
	}
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), oai.ErrorResponse{Error: err.Error()})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = referenceTemplate.Execute(w, page)
}
