package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"cbc-rag/internal/cbc"
	"cbc-rag/internal/contextutil"
	"cbc-rag/internal/llm"
	"cbc-rag/internal/retrieval"
	"cbc-rag/internal/storage"
)

const (
	defaultTopK     = 4
	answerMaxTokens = 1024
	answerTemp      = 0.2
)

const systemPrompt = "You are an experienced hematologist reviewing a complete blood count. " +
	"Answer using only the reference excerpts below. Cite every claim with the " +
	"matching [Source N] marker. If the excerpts do not cover the question, say so " +
	"plainly. Do not invent reference ranges or thresholds."

// Generator produces an answer from a prompt. *llm.GenerateClient satisfies it.
type Generator interface {
	Generate(ctx context.Context, prompt string, params llm.GenerateParams) (string, error)
}

// Request is one analysis request. Text and Panel follow the same rules as
// retrieval.Query: free text wins when both are present.
type Request struct {
	Text  string
	Panel *cbc.Panel
	TopK  int
}

// Source is one cited knowledge chunk, ranked by relevance.
type Source struct {
	ChunkID string  `json:"chunk_id"`
	Section string  `json:"section"`
	Title   string  `json:"title"`
	Score   float64 `json:"score"`
	Text    string  `json:"text"`
}

// Response is the outcome of one analysis run.
type Response struct {
	ID       string   `json:"id,omitempty"`
	Answer   string   `json:"answer"`
	Sources  []Source `json:"sources"`
	Method   string   `json:"method"`
	Degraded bool     `json:"degraded"`
}

// Analyzer runs the full pipeline: retrieve, generate, persist. The generator
// and the store are both optional; without a generator the response carries
// the retrieved excerpts only, without a store nothing is persisted.
type Analyzer struct {
	engine retrieval.Engine
	gen    Generator
	store  storage.AnalysisStore
	logger *slog.Logger
}

// NewAnalyzer creates a new Analyzer. gen and store may be nil.
func NewAnalyzer(engine retrieval.Engine, gen Generator, store storage.AnalysisStore) *Analyzer {
	return &Analyzer{
		engine: engine,
		gen:    gen,
		store:  store,
		logger: slog.Default(),
	}
}

// Analyze answers the request against the knowledge base.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (Response, error) {
	logger := contextutil.LoggerFromContext(ctx)

	topK := req.TopK
	if topK == 0 {
		topK = defaultTopK
	}

	query := retrieval.Query{Text: req.Text, Panel: req.Panel}
	queryText, err := retrieval.BuildQueryText(query)
	if err != nil {
		return Response{}, err
	}

	result, err := a.engine.Retrieve(ctx, query, topK)
	if err != nil {
		return Response{}, fmt.Errorf("retrieval failed: %w", err)
	}

	logger.InfoContext(ctx, "analysis retrieval completed",
		"method", result.Method,
		"degraded", result.Degraded,
		"hits", len(result.Chunks),
	)

	resp := Response{
		Sources:  make([]Source, 0, len(result.Chunks)),
		Method:   result.Method,
		Degraded: result.Degraded,
	}
	for _, sc := range result.Chunks {
		resp.Sources = append(resp.Sources, Source{
			ChunkID: sc.Chunk.ID,
			Section: sc.Chunk.Section,
			Title:   sc.Chunk.Title,
			Score:   sc.Score,
			Text:    sc.Chunk.Text,
		})
	}

	switch {
	case len(result.Chunks) == 0:
		resp.Answer = "The knowledge base has no entries relevant to this question."
	case a.gen == nil:
		resp.Answer = "Answer generation is not configured. The retrieved reference excerpts are listed as sources."
	default:
		prompt := buildPrompt(queryText, req.Panel, result)
		answer, err := a.gen.Generate(ctx, prompt, llm.GenerateParams{
			Temperature:     answerTemp,
			MaxOutputTokens: answerMaxTokens,
		})
		if err != nil {
			logger.ErrorContext(ctx, "failed to generate answer", "error", err)
			return Response{}, fmt.Errorf("failed to generate answer: %w", err)
		}
		resp.Answer = answer
	}

	if a.store != nil {
		rec := &storage.AnalysisRecord{
			Query:    queryText,
			Method:   result.Method,
			Degraded: result.Degraded,
			Answer:   resp.Answer,
			Sources:  make([]storage.SourceRef, 0, len(resp.Sources)),
		}
		for _, s := range resp.Sources {
			rec.Sources = append(rec.Sources, storage.SourceRef{
				ChunkID: s.ChunkID,
				Section: s.Section,
				Title:   s.Title,
				Score:   s.Score,
			})
		}
		if err := a.store.Insert(ctx, rec); err != nil {
			// History is best effort, the answer still stands.
			logger.WarnContext(ctx, "failed to persist analysis", "error", err)
		} else {
			resp.ID = rec.ID
		}
	}

	return resp, nil
}

// buildPrompt assembles the generation prompt: instructions, numbered
// reference excerpts, condition focus topics when a panel is present, and
// the question itself.
func buildPrompt(queryText string, panel *cbc.Panel, result retrieval.Result) string {
	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\n\n--- Reference excerpts ---\n\n")

	for i, sc := range result.Chunks {
		fmt.Fprintf(&b, "[Source %d: %s / %s (relevance: %.3f)]\n%s\n\n",
			i+1, sc.Chunk.Section, sc.Chunk.Title, sc.Score, sc.Chunk.Text)
	}

	b.WriteString("--- End excerpts ---\n\n")

	if result.Degraded {
		b.WriteString("Note: the excerpts were retrieved by keyword match, not semantic search. Relevance scores are keyword hit counts.\n\n")
	}

	if panel != nil {
		var criticals []string
		for _, m := range panel.Measurements() {
			if cbc.Classify(m.Code, m.Value, panel.Sex) == cbc.StatusCritical {
				criticals = append(criticals, fmt.Sprintf("%s %g %s", m.Label, m.Value, m.Unit))
			}
		}
		if len(criticals) > 0 {
			b.WriteString("Critical values requiring immediate attention: ")
			b.WriteString(strings.Join(criticals, "; "))
			b.WriteString(".\n")
		}
		if topics := ConditionQueries(*panel); len(topics) > 0 {
			b.WriteString("Address specifically: ")
			b.WriteString(strings.Join(topics, "; "))
			b.WriteString(".\n")
		}
		if issues := panel.RuleOfThrees(); len(issues) > 0 {
			b.WriteString("Sample quality concerns: ")
			b.WriteString(strings.Join(issues, "; "))
			b.WriteString(".\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Question: ")
	b.WriteString(queryText)
	return b.String()
}
