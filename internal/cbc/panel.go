package cbc

import (
	"fmt"
	"math"
)

// Panel is one set of CBC results for a patient. Values is keyed by
// parameter code; absent keys mean the measurement was not supplied.
type Panel struct {
	Values map[string]float64
	Sex    string // "M", "F" or empty
	Age    int    // years, 0 when unknown
}

// Measurement is one supplied CBC value together with its definition and
// reference interval, ready for query building.
type Measurement struct {
	Code   string
	Label  string
	Value  float64
	Unit   string
	RefLow float64
	RefHi  float64
	HasRef bool
}

// Get returns the supplied value for a parameter code.
func (p Panel) Get(code string) (float64, bool) {
	v, ok := p.Values[code]
	return v, ok
}

// Measurements returns the supplied values in canonical parameter order.
// Unknown codes are ignored.
func (p Panel) Measurements() []Measurement {
	out := make([]Measurement, 0, len(p.Values))
	for _, def := range parameters {
		v, ok := p.Values[def.Code]
		if !ok {
			continue
		}
		m := Measurement{Code: def.Code, Label: def.Label, Value: v, Unit: def.Unit}
		if lo, hi, ok := RefRange(def.Code, p.Sex); ok {
			m.RefLow, m.RefHi, m.HasRef = lo, hi, true
		}
		out = append(out, m)
	}
	return out
}

// ANC returns the absolute neutrophil count, deriving it from the total WBC
// and neutrophil percentage when no absolute count was supplied.
func (p Panel) ANC() (float64, bool) {
	if v, ok := p.Values["neut_abs"]; ok {
		return v, true
	}
	wbc, okW := p.Values["wbc"]
	pct, okP := p.Values["neut_pct"]
	if okW && okP {
		return wbc * pct / 100, true
	}
	return 0, false
}

// ALC returns the absolute lymphocyte count, derived like ANC.
func (p Panel) ALC() (float64, bool) {
	if v, ok := p.Values["lymph_abs"]; ok {
		return v, true
	}
	wbc, okW := p.Values["wbc"]
	pct, okP := p.Values["lymph_pct"]
	if okW && okP {
		return wbc * pct / 100, true
	}
	return 0, false
}

// RPI returns the reticulocyte production index. The maturation factor grows
// as the hematocrit falls: 1.0 at or above 35, 1.5 down to 25, 2.0 below.
func (p Panel) RPI() (float64, bool) {
	retic, okR := p.Values["retic"]
	hct, okH := p.Values["hct"]
	if !okR || !okH || hct <= 0 {
		return 0, false
	}
	maturation := 1.0
	switch {
	case hct < 25:
		maturation = 2.0
	case hct < 35:
		maturation = 1.5
	}
	return retic * (hct / 45.0) / maturation, true
}

// Flag is one identified CBC abnormality.
type Flag struct {
	Code  string
	Label string
}

// Flags identifies the abnormalities present in the panel, in a fixed order.
func (p Panel) Flags() []Flag {
	var flags []Flag
	add := func(code, format string, args ...any) {
		flags = append(flags, Flag{Code: code, Label: fmt.Sprintf(format, args...)})
	}

	if hgb, ok := p.Values["hgb"]; ok {
		lo, hi, _ := RefRange("hgb", p.Sex)
		if hgb < lo {
			add("anemia", "Anemia (Hgb %.1f g/dL)", hgb)
		}
		if hgb > hi {
			add("erythrocytosis", "Erythrocytosis (Hgb %.1f g/dL)", hgb)
		}
	}
	if wbc, ok := p.Values["wbc"]; ok {
		if wbc > 11.0 {
			add("leukocytosis", "Leukocytosis (WBC %.1f x10^9/L)", wbc)
		}
		if wbc < 4.5 {
			add("leukopenia", "Leukopenia (WBC %.1f x10^9/L)", wbc)
		}
	}
	if anc, ok := p.ANC(); ok {
		if anc > 7.7 {
			add("neutrophilia", "Neutrophilia (ANC %.2f x10^9/L)", anc)
		}
		if anc < 1.8 {
			add("neutropenia", "Neutropenia (ANC %.2f x10^9/L)", anc)
		}
	}
	if alc, ok := p.ALC(); ok {
		if alc < 1.0 {
			add("lymphopenia", "Lymphopenia (ALC %.2f x10^9/L)", alc)
		}
		if alc > 4.8 {
			add("lymphocytosis", "Lymphocytosis (ALC %.2f x10^9/L)", alc)
		}
	}
	if plt, ok := p.Values["plt"]; ok {
		if plt < 150 {
			add("thrombocytopenia", "Thrombocytopenia (PLT %.0f x10^9/L)", plt)
		}
		if plt > 400 {
			add("thrombocytosis", "Thrombocytosis (PLT %.0f x10^9/L)", plt)
		}
	}
	if mcv, ok := p.Values["mcv"]; ok {
		if mcv < 80 {
			add("microcytosis", "Microcytosis (MCV %.0f fL)", mcv)
		}
		if mcv > 100 {
			add("macrocytosis", "Macrocytosis (MCV %.0f fL)", mcv)
		}
	}

	return flags
}

// RuleOfThrees checks the internal consistency of the red cell measurements:
// Hgb should approximate 3 x RBC and HCT should approximate 3 x Hgb, each
// within 10 percent. Violations suggest pre-analytical error.
func (p Panel) RuleOfThrees() []string {
	var issues []string

	rbc, okR := p.Values["rbc"]
	hgb, okH := p.Values["hgb"]
	hct, okC := p.Values["hct"]

	if okR && okH {
		expected := rbc * 3
		if expected > 0 {
			dev := math.Abs(hgb-expected) / expected
			if dev > 0.10 {
				issues = append(issues, fmt.Sprintf(
					"Hgb (%.1f) deviates %.0f%% from RBC x3 (%.1f)", hgb, dev*100, expected))
			}
		}
	}
	if okH && okC {
		expected := hgb * 3
		if expected > 0 {
			dev := math.Abs(hct-expected) / expected
			if dev > 0.10 {
				issues = append(issues, fmt.Sprintf(
					"HCT (%.1f) deviates %.0f%% from Hgb x3 (%.1f)", hct, dev*100, expected))
			}
		}
	}

	return issues
}
