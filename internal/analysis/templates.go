package analysis

import "cbc-rag/internal/cbc"

// conditionQueries maps abnormality codes to focused knowledge base topics.
var conditionQueries = map[string]string{
	"anemia":           "anemia classification MCV RDW reticulocyte response",
	"erythrocytosis":   "erythrocytosis polycythemia causes workup",
	"leukocytosis":     "leukocytosis differential reactive versus clonal",
	"leukopenia":       "leukopenia causes evaluation",
	"neutrophilia":     "neutrophilia left shift bands infection",
	"neutropenia":      "neutropenia severity infection risk",
	"lymphopenia":      "lymphopenia immunodeficiency screening",
	"lymphocytosis":    "lymphocytosis reactive versus lymphoproliferative",
	"thrombocytopenia": "thrombocytopenia platelet clumping pseudothrombocytopenia",
	"thrombocytosis":   "thrombocytosis reactive versus essential",
	"microcytosis":     "microcytic anemia iron deficiency thalassemia",
	"macrocytosis":     "macrocytic anemia B12 folate megaloblastic",
}

// ConditionQueries returns focused knowledge base topics for the
// abnormalities present in the panel, in flag order. A rule of threes
// violation adds a sample quality topic.
func ConditionQueries(p cbc.Panel) []string {
	var topics []string
	seen := make(map[string]bool)
	for _, f := range p.Flags() {
		q, ok := conditionQueries[f.Code]
		if !ok || seen[q] {
			continue
		}
		seen[q] = true
		topics = append(topics, q)
	}
	if len(p.RuleOfThrees()) > 0 {
		topics = append(topics, "rule of threes sample integrity pre-analytical error")
	}
	return topics
}
