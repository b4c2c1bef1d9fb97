package handlers

import "net/http"

const homePage = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>CBC RAG</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif; max-width: 720px; margin: 0 auto; padding: 2rem; line-height: 1.6; }
    code { background: #f1f5f9; padding: 2px 5px; border-radius: 4px; }
  </style>
</head>
<body>
  <h1>CBC RAG</h1>
  <p>Retrieval-augmented interpretation of complete blood count results.</p>
  <ul>
    <li><code>POST /api/v1/retrieve</code> retrieve knowledge base chunks for a question or CBC panel</li>
    <li><code>POST /api/v1/analyze</code> full analysis with generated answer (<code>?html=true</code> for a rendered page)</li>
    <li><code>GET /api/v1/history</code> recent analyses</li>
    <li><code>POST /api/v1/reindex</code> rebuild the vector index</li>
    <li><code>GET /api/health</code> health and degradation status</li>
  </ul>
</body>
</html>`

// HomeHandler serves the landing page.
func HomeHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(homePage))
}
