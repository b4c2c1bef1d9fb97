package retrieval

import (
	"errors"
	"strings"
	"testing"

	"cbc-rag/internal/cbc"
)

func TestBuildQueryTextFromText(t *testing.T) {
	got, err := BuildQueryText(Query{Text: "  microcytic anemia workup  "})
	if err != nil {
		t.Fatalf("BuildQueryText() error = %v", err)
	}
	if got != "microcytic anemia workup" {
		t.Errorf("BuildQueryText() = %q, want trimmed text", got)
	}
}

func TestBuildQueryTextEmpty(t *testing.T) {
	tests := []struct {
		name string
		q    Query
	}{
		{"no input at all", Query{}},
		{"whitespace text only", Query{Text: "   \t"}},
		{"empty panel", Query{Panel: &cbc.Panel{Values: map[string]float64{}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildQueryText(tt.q)
			if !errors.Is(err, ErrEmptyQuery) {
				t.Errorf("BuildQueryText() error = %v, want ErrEmptyQuery", err)
			}
		})
	}
}

func TestBuildQueryTextFromPanel(t *testing.T) {
	panel := &cbc.Panel{
		Sex: "F",
		Values: map[string]float64{
			"hgb": 9.5,
			"mcv": 72,
			"rdw": 16.2,
		},
	}

	got, err := BuildQueryText(Query{Panel: panel})
	if err != nil {
		t.Fatalf("BuildQueryText() error = %v", err)
	}

	for _, want := range []string{
		"Female patient",
		"Hgb=9.5 g/dL",
		"MCV=72 fL",
		"RDW=16.2 %",
		"reference 12-15.5", // sex-specific interval
		"Anemia (Hgb 9.5 g/dL)",
		"Microcytosis (MCV 72 fL)",
		"Classify the abnormality",
		"recommend the next investigations",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("BuildQueryText() missing %q in:\n%s", want, got)
		}
	}

	// Canonical parameter order: Hgb before MCV before RDW.
	if !(strings.Index(got, "Hgb=") < strings.Index(got, "MCV=") &&
		strings.Index(got, "MCV=") < strings.Index(got, "RDW=")) {
		t.Errorf("BuildQueryText() values out of canonical order:\n%s", got)
	}
}

func TestBuildQueryTextDeterministic(t *testing.T) {
	panel := &cbc.Panel{
		Sex: "M",
		Age: 54,
		Values: map[string]float64{
			"wbc": 14.2, "plt": 95, "hgb": 11.1, "mcv": 101, "neut_abs": 11.0,
		},
	}

	first, err := BuildQueryText(Query{Panel: panel})
	if err != nil {
		t.Fatalf("BuildQueryText() error = %v", err)
	}
	for i := 0; i < 20; i++ {
		again, err := BuildQueryText(Query{Panel: panel})
		if err != nil {
			t.Fatalf("BuildQueryText() error = %v", err)
		}
		if again != first {
			t.Fatalf("BuildQueryText() not deterministic:\n%s\nvs\n%s", first, again)
		}
	}
}

func TestBuildQueryTextPrefersText(t *testing.T) {
	panel := &cbc.Panel{Values: map[string]float64{"hgb": 9.5}}
	got, err := BuildQueryText(Query{Text: "thrombocytosis causes", Panel: panel})
	if err != nil {
		t.Fatalf("BuildQueryText() error = %v", err)
	}
	if got != "thrombocytosis causes" {
		t.Errorf("BuildQueryText() = %q, want the free text", got)
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{9.5, "9.5"},
		{250, "250"},
		{16.25, "16.25"},
		{0.5, "0.5"},
	}
	for _, tt := range tests {
		if got := formatValue(tt.in); got != tt.want {
			t.Errorf("formatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
