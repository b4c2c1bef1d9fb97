package knowledge

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

//go:embed data/cbc_knowledge_base.json
var embeddedKB embed.FS

var (
	// ErrEmptyCorpus is returned when the knowledge base contains no chunks.
	ErrEmptyCorpus = errors.New("knowledge base is empty")
	// ErrInvalidChunk is returned when a chunk is missing a required field.
	ErrInvalidChunk = errors.New("invalid knowledge chunk")
	// ErrDuplicateID is returned when two chunks share the same id.
	ErrDuplicateID = errors.New("duplicate chunk id")
)

// corpusFile is the on-disk shape of the knowledge base document.
type corpusFile struct {
	Chunks []Chunk `json:"chunks"`
}

// Load reads the knowledge base from the given JSON file and validates it.
// The load is all-or-nothing: a single malformed chunk fails the whole load,
// since a partially loaded corpus would silently drop clinical categories.
// Input order is preserved; retrieval tie-breaking depends on it.
func Load(path string) ([]Chunk, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge base %s: %w", path, err)
	}
	return parse(raw)
}

// LoadEmbedded loads the knowledge base compiled into the binary. Used when
// no KB_PATH override is configured.
func LoadEmbedded() ([]Chunk, error) {
	raw, err := embeddedKB.ReadFile("data/cbc_knowledge_base.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded knowledge base: %w", err)
	}
	return parse(raw)
}

func parse(raw []byte) ([]Chunk, error) {
	var doc corpusFile
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse knowledge base: %w", err)
	}
	if len(doc.Chunks) == 0 {
		return nil, ErrEmptyCorpus
	}

	seen := make(map[string]struct{}, len(doc.Chunks))
	for i, c := range doc.Chunks {
		if err := validate(c); err != nil {
			return nil, fmt.Errorf("chunk %d (%q): %w", i, c.ID, err)
		}
		if _, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("chunk %d: %w: %s", i, ErrDuplicateID, c.ID)
		}
		seen[c.ID] = struct{}{}
	}

	return doc.Chunks, nil
}

func validate(c Chunk) error {
	switch {
	case c.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidChunk)
	case c.Section == "":
		return fmt.Errorf("%w: missing section", ErrInvalidChunk)
	case c.Title == "":
		return fmt.Errorf("%w: missing title", ErrInvalidChunk)
	case c.Text == "":
		return fmt.Errorf("%w: missing text", ErrInvalidChunk)
	case len(c.Keywords) == 0:
		return fmt.Errorf("%w: missing keywords", ErrInvalidChunk)
	}
	return nil
}
