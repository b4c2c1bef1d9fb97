package handlers

import (
	"net/http"

	"cbc-rag/internal/cbc"
	"cbc-rag/internal/contextutil"
)

// RangeInfo is one reference interval.
type RangeInfo struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// ParameterInfo describes one supported CBC parameter with its reference
// intervals. Male and Female are identical for parameters without
// sex-specific intervals, and absent for parameters with none.
type ParameterInfo struct {
	Code   string     `json:"code"`
	Label  string     `json:"label"`
	Unit   string     `json:"unit"`
	Male   *RangeInfo `json:"male,omitempty"`
	Female *RangeInfo `json:"female,omitempty"`
}

// ParametersResponse lists the supported CBC parameters in canonical order.
type ParametersResponse struct {
	Parameters []ParameterInfo `json:"parameters"`
}

// ParametersHandler serves the supported parameter reference.
func ParametersHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	defs := cbc.Parameters()
	resp := ParametersResponse{Parameters: make([]ParameterInfo, 0, len(defs))}
	for _, def := range defs {
		info := ParameterInfo{Code: def.Code, Label: def.Label, Unit: def.Unit}
		if lo, hi, ok := cbc.RefRange(def.Code, "M"); ok {
			info.Male = &RangeInfo{Low: lo, High: hi}
		}
		if lo, hi, ok := cbc.RefRange(def.Code, "F"); ok {
			info.Female = &RangeInfo{Low: lo, High: hi}
		}
		resp.Parameters = append(resp.Parameters, info)
	}

	if err := writeJSON(w, resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}
