package knowledge

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeKB(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kb.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test KB: %v", err)
	}
	return path
}

func TestLoadValidCorpus(t *testing.T) {
	path := writeKB(t, `{"chunks": [
		{"id": "a", "section": "RBC Parameters", "title": "MCV", "keywords": ["MCV", "microcytic"], "text": "Mean corpuscular volume."},
		{"id": "b", "section": "Platelet Parameters", "title": "MPV", "keywords": ["MPV", "platelet size"], "text": "Mean platelet volume."}
	]}`)

	chunks, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("Load() returned %d chunks, want 2", len(chunks))
	}
	// Input order must be preserved: retrieval tie-breaking depends on it.
	if chunks[0].ID != "a" || chunks[1].ID != "b" {
		t.Errorf("Load() order = [%s, %s], want [a, b]", chunks[0].ID, chunks[1].ID)
	}
	if chunks[0].Section != "RBC Parameters" || len(chunks[0].Keywords) != 2 {
		t.Errorf("Load() chunk fields not preserved: %+v", chunks[0])
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "empty corpus",
			content: `{"chunks": []}`,
			wantErr: ErrEmptyCorpus,
		},
		{
			name:    "missing section",
			content: `{"chunks": [{"id": "a", "title": "MCV", "keywords": ["x"], "text": "t"}]}`,
			wantErr: ErrInvalidChunk,
		},
		{
			name:    "missing title",
			content: `{"chunks": [{"id": "a", "section": "s", "keywords": ["x"], "text": "t"}]}`,
			wantErr: ErrInvalidChunk,
		},
		{
			name:    "missing text",
			content: `{"chunks": [{"id": "a", "section": "s", "title": "T", "keywords": ["x"]}]}`,
			wantErr: ErrInvalidChunk,
		},
		{
			name:    "empty keywords",
			content: `{"chunks": [{"id": "a", "section": "s", "title": "T", "keywords": [], "text": "t"}]}`,
			wantErr: ErrInvalidChunk,
		},
		{
			name: "duplicate id",
			content: `{"chunks": [
				{"id": "a", "section": "s", "title": "T1", "keywords": ["x"], "text": "t"},
				{"id": "a", "section": "s", "title": "T2", "keywords": ["x"], "text": "t"}
			]}`,
			wantErr: ErrDuplicateID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeKB(t, tt.content)
			_, err := Load(path)
			if err == nil {
				t.Fatal("Load() expected error, got nil")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMalformedJSON(t *testing.T) {
	path := writeKB(t, `{"chunks": [`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load() expected error for malformed JSON, got nil")
	}
}

func TestLoadEmbedded(t *testing.T) {
	chunks, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded() error = %v", err)
	}
	if len(chunks) == 0 {
		t.Fatal("LoadEmbedded() returned no chunks")
	}
}

func TestCompositeTextOrder(t *testing.T) {
	c := Chunk{
		ID:       "a",
		Section:  "RBC Parameters",
		Title:    "MCV",
		Keywords: []string{"MCV", "microcytic"},
		Text:     "Body passage.",
	}

	got := c.CompositeText()
	want := "Section: RBC Parameters\nTitle: MCV\nKeywords: MCV, microcytic\nBody passage."
	if got != want {
		t.Errorf("CompositeText() = %q, want %q", got, want)
	}

	// Section must come before title, title before keywords, keywords before body.
	idx := func(s string) int { return strings.Index(got, s) }
	if !(idx("Section:") < idx("Title:") && idx("Title:") < idx("Keywords:") && idx("Keywords:") < idx("Body passage.")) {
		t.Errorf("CompositeText() field order wrong: %q", got)
	}
}
