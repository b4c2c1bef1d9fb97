package knowledge

import "strings"

// Chunk represents one clinical guideline excerpt from the knowledge base.
// Chunks are loaded once at startup and never mutated afterwards.
type Chunk struct {
	// ID is a stable identifier, unique within the corpus.
	ID string `json:"id"`
	// Section is the clinical category, e.g. "RBC Parameters" or "Anemia Evaluation".
	Section string `json:"section"`
	// Title is a short topic label, unique within a section.
	Title string `json:"title"`
	// Keywords are case-insensitive search terms used by the fallback retriever.
	Keywords []string `json:"keywords"`
	// Text is the body passage.
	Text string `json:"text"`
}

// CompositeText returns the text that gets embedded for this chunk: section,
// title, keywords and body concatenated in a fixed order so the built index is
// reproducible across rebuilds.
func (c Chunk) CompositeText() string {
	var b strings.Builder
	b.WriteString("Section: ")
	b.WriteString(c.Section)
	b.WriteString("\nTitle: ")
	b.WriteString(c.Title)
	b.WriteString("\nKeywords: ")
	b.WriteString(strings.Join(c.Keywords, ", "))
	b.WriteString("\n")
	b.WriteString(c.Text)
	return b.String()
}
