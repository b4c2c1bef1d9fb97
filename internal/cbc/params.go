package cbc

// Parameter describes one CBC measurement the service understands.
type Parameter struct {
	Code  string
	Label string
	Unit  string
}

// parameters lists supported CBC parameters in canonical reporting order
// (red cell indices, then white cell counts, then platelets). Query text
// built from a panel follows this order, which keeps retrieval deterministic.
var parameters = []Parameter{
	{Code: "rbc", Label: "RBC", Unit: "x10^12/L"},
	{Code: "hgb", Label: "Hgb", Unit: "g/dL"},
	{Code: "hct", Label: "HCT", Unit: "%"},
	{Code: "mcv", Label: "MCV", Unit: "fL"},
	{Code: "mch", Label: "MCH", Unit: "pg"},
	{Code: "mchc", Label: "MCHC", Unit: "g/dL"},
	{Code: "rdw", Label: "RDW", Unit: "%"},
	{Code: "retic", Label: "Reticulocytes", Unit: "%"},
	{Code: "wbc", Label: "WBC", Unit: "x10^9/L"},
	{Code: "neut_abs", Label: "ANC", Unit: "x10^9/L"},
	{Code: "neut_pct", Label: "Neutrophils", Unit: "%"},
	{Code: "bands", Label: "Bands", Unit: "%"},
	{Code: "lymph_abs", Label: "ALC", Unit: "x10^9/L"},
	{Code: "lymph_pct", Label: "Lymphocytes", Unit: "%"},
	{Code: "mono_abs", Label: "Monocytes", Unit: "x10^9/L"},
	{Code: "eos_abs", Label: "Eosinophils", Unit: "x10^9/L"},
	{Code: "baso_abs", Label: "Basophils", Unit: "x10^9/L"},
	{Code: "plt", Label: "Platelets", Unit: "x10^9/L"},
	{Code: "mpv", Label: "MPV", Unit: "fL"},
}

// refRange is a two-sided adult reference interval.
type refRange struct {
	Lo, Hi float64
}

// referenceRanges holds adult reference intervals. Sex-specific parameters
// are keyed with an "_m" or "_f" suffix.
var referenceRanges = map[string]refRange{
	"rbc_m":     {4.5, 5.9},
	"rbc_f":     {4.0, 5.2},
	"hgb_m":     {13.5, 17.5},
	"hgb_f":     {12.0, 15.5},
	"hct_m":     {41.0, 53.0},
	"hct_f":     {36.0, 46.0},
	"mcv":       {80.0, 100.0},
	"mch":       {27.0, 33.0},
	"mchc":      {32.0, 36.0},
	"rdw":       {11.5, 14.5},
	"retic":     {0.5, 2.5},
	"wbc":       {4.5, 11.0},
	"neut_abs":  {1.8, 7.7},
	"neut_pct":  {40.0, 75.0},
	"bands":     {0.0, 6.0},
	"lymph_abs": {1.0, 4.8},
	"lymph_pct": {20.0, 45.0},
	"mono_abs":  {0.2, 1.0},
	"eos_abs":   {0.0, 0.5},
	"baso_abs":  {0.0, 0.1},
	"plt":       {150.0, 400.0},
	"mpv":       {7.5, 12.5},
}

// criticalRanges marks values demanding immediate clinical attention.
// A zero bound means no critical threshold on that side.
var criticalRanges = map[string]refRange{
	"hgb": {7.0, 20.0},
	"plt": {20.0, 1000.0},
	"wbc": {1.5, 50.0},
	// Severe neutropenia; no upper critical bound.
	"neut_abs": {0.5, 0},
}

// Parameters returns the supported parameters in canonical order.
func Parameters() []Parameter {
	out := make([]Parameter, len(parameters))
	copy(out, parameters)
	return out
}

// Lookup returns the parameter definition for a code.
func Lookup(code string) (Parameter, bool) {
	for _, p := range parameters {
		if p.Code == code {
			return p, true
		}
	}
	return Parameter{}, false
}

// RefRange returns the adult reference interval for a parameter, resolving
// sex-specific intervals when sex is "M" or "F". Returns false when the
// parameter has no defined interval.
func RefRange(code, sex string) (lo, hi float64, ok bool) {
	switch sex {
	case "M":
		if r, found := referenceRanges[code+"_m"]; found {
			return r.Lo, r.Hi, true
		}
	case "F":
		if r, found := referenceRanges[code+"_f"]; found {
			return r.Lo, r.Hi, true
		}
	}
	if r, found := referenceRanges[code]; found {
		return r.Lo, r.Hi, true
	}
	return 0, 0, false
}

// Status classifies a value against its reference and critical ranges.
type Status string

const (
	StatusNormal   Status = "normal"
	StatusLow      Status = "low"
	StatusHigh     Status = "high"
	StatusCritical Status = "critical"
	StatusUnknown  Status = "unknown"
)

// Classify returns the status of a single measurement.
func Classify(code string, value float64, sex string) Status {
	if crit, ok := criticalRanges[code]; ok {
		if crit.Lo > 0 && value < crit.Lo {
			return StatusCritical
		}
		if crit.Hi > 0 && value > crit.Hi {
			return StatusCritical
		}
	}
	lo, hi, ok := RefRange(code, sex)
	if !ok {
		return StatusUnknown
	}
	if value < lo {
		return StatusLow
	}
	if value > hi {
		return StatusHigh
	}
	return StatusNormal
}
