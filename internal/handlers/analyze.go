package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	ghhtml "github.com/yuin/goldmark/renderer/html"

	"cbc-rag/internal/analysis"
	"cbc-rag/internal/contextutil"
)

// Analyzer runs analysis requests. *analysis.Analyzer satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (analysis.Response, error)
}

// AnalyzeHandler handles HTTP requests for CBC analysis.
type AnalyzeHandler struct {
	analyzer Analyzer
	renderer goldmark.Markdown
	template *template.Template
}

// analyzePageData holds template data for rendered analysis pages.
type analyzePageData struct {
	Answer   template.HTML
	Method   string
	Degraded bool
	Sources  []analysis.Source
}

// NewAnalyzeHandler creates a new AnalyzeHandler.
func NewAnalyzeHandler(analyzer Analyzer) *AnalyzeHandler {
	tmpl := template.Must(template.New("analysis").Funcs(template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}).Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>CBC Analysis</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif;
      margin: 0 auto;
      padding: 2rem;
      max-width: 900px;
      line-height: 1.7;
      color: #1e293b;
    }
    article {
      border: 1px solid #e2e8f0;
      border-radius: 12px;
      padding: 2rem;
    }
    .meta {
      color: #64748b;
      font-size: 0.9rem;
      margin-bottom: 1rem;
    }
    .degraded {
      color: #b45309;
      background: #fef3c7;
      border-radius: 8px;
      padding: 0.5rem 1rem;
      margin-bottom: 1rem;
    }
    .source {
      border-left: 3px solid #94a3b8;
      padding-left: 1rem;
      margin: 1rem 0;
      color: #475569;
      font-size: 0.95rem;
    }
  </style>
</head>
<body>
  <h1>CBC Analysis</h1>
  <p class="meta">Retrieval method: {{.Method}}</p>
  {{if .Degraded}}<p class="degraded">Semantic search was unavailable. Results come from keyword matching.</p>{{end}}
  <article>{{.Answer}}</article>
  <h2>Sources</h2>
  {{range $i, $s := .Sources}}
  <div class="source">
    <strong>[Source {{inc $i}}]</strong> {{$s.Section}} / {{$s.Title}} (relevance {{printf "%.3f" $s.Score}})<br>
    {{$s.Text}}
  </div>
  {{end}}
</body>
</html>`))

	return &AnalyzeHandler{
		analyzer: analyzer,
		renderer: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(ghhtml.WithHardWraps()),
		),
		template: tmpl,
	}
}

// AnalyzeRequest represents the HTTP request payload for analysis.
// Query takes precedence over CBC when both are present.
type AnalyzeRequest struct {
	Query string      `json:"query,omitempty"`
	CBC   *CBCRequest `json:"cbc,omitempty"`
	TopK  int         `json:"top_k,omitempty"`
}

// ServeHTTP handles HTTP requests for analysis. With ?html=true the answer
// is rendered from markdown into a standalone HTML page, otherwise the
// response is JSON.
func (h *AnalyzeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.CBC.validate(); err != nil {
		logger.WarnContext(ctx, "invalid CBC payload", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.analyzer.Analyze(ctx, analysis.Request{
		Text:  req.Query,
		Panel: req.CBC.toPanel(),
		TopK:  req.TopK,
	})
	if err != nil {
		handleRetrievalError(w, r, err)
		return
	}

	if r.URL.Query().Get("html") == "true" {
		h.renderHTML(w, r, resp)
		return
	}

	if err := writeJSON(w, resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// renderHTML renders the markdown answer as a standalone HTML page.
func (h *AnalyzeHandler) renderHTML(w http.ResponseWriter, r *http.Request, resp analysis.Response) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var buf bytes.Buffer
	if err := h.renderer.Convert([]byte(resp.Answer), &buf); err != nil {
		logger.ErrorContext(ctx, "failed to render markdown", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to render answer")
		return
	}

	data := analyzePageData{
		Answer:   template.HTML(buf.String()),
		Method:   resp.Method,
		Degraded: resp.Degraded,
		Sources:  resp.Sources,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.template.Execute(w, data); err != nil {
		logger.ErrorContext(ctx, "failed to execute analysis template", "error", err)
	}
}
