package retrieval

import (
	"errors"
	"fmt"
	"strings"

	"cbc-rag/internal/cbc"
)

// ErrEmptyQuery is returned when neither free text nor CBC values were
// supplied.
var ErrEmptyQuery = errors.New("empty query: no text and no CBC values")

// BuildQueryText normalizes a clinical query into a single text string for
// embedding or keyword matching. Free text wins over the structured panel.
func BuildQueryText(q Query) (string, error) {
	if text := strings.TrimSpace(q.Text); text != "" {
		return text, nil
	}
	if q.Panel != nil {
		if text := fromPanel(*q.Panel); text != "" {
			return text, nil
		}
	}
	return "", ErrEmptyQuery
}

// fromPanel renders a natural-language clinical question covering every
// supplied CBC value. Measurements appear in canonical parameter order and
// the wording is fixed, so the same panel always produces the same string:
// retrieval and any caching layer stay reproducible.
func fromPanel(p cbc.Panel) string {
	measurements := p.Measurements()
	if len(measurements) == 0 {
		return ""
	}

	var b strings.Builder
	switch p.Sex {
	case "M":
		b.WriteString("Male patient. ")
	case "F":
		b.WriteString("Female patient. ")
	}
	if p.Age > 0 {
		fmt.Fprintf(&b, "Age %d years. ", p.Age)
	}

	b.WriteString("CBC values: ")
	for i, m := range measurements {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%s %s", m.Label, formatValue(m.Value), m.Unit)
		if m.HasRef {
			fmt.Fprintf(&b, " (reference %s-%s)", formatValue(m.RefLow), formatValue(m.RefHi))
		}
	}
	b.WriteString(". ")

	if flags := p.Flags(); len(flags) > 0 {
		labels := make([]string, len(flags))
		for i, f := range flags {
			labels[i] = f.Label
		}
		b.WriteString("Identified abnormalities: ")
		b.WriteString(strings.Join(labels, "; "))
		b.WriteString(". ")
	}

	b.WriteString("Classify the abnormality, identify the most likely causes, " +
		"explain the underlying mechanism, and recommend the next investigations.")
	return b.String()
}

// formatValue trims trailing zeros so 9.50 renders as 9.5 and 250.00 as 250.
func formatValue(v float64) string {
	s := strings.TrimRight(fmt.Sprintf("%.2f", v), "0")
	return strings.TrimRight(s, ".")
}
