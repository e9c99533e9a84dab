package models

import "time"

// ClassificationResult is the outcome of counting marked pixels in an
// overlay mask against the base micrograph's pixel grid.
//
// Percentage is 100*MarkedCount/TotalCount rounded to two decimal places
// using round-half-up. The rounding rule is part of the contract: reports
// generated from the same mask must reproduce the same figure.
type ClassificationResult struct {
	MarkedCount int     `json:"marked_count"`
	TotalCount  int     `json:"total_count"`
	Percentage  float64 `json:"percentage"`
}

// LuminanceStats summarises the base micrograph's grey-level distribution.
// It is reported as acquisition-quality context and never influences the
// phase fraction itself.
type LuminanceStats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// AnalysisResult is the complete result of one phase fraction analysis.
type AnalysisResult struct {
	ID                string               `json:"id"`
	SourceName        string               `json:"source_name,omitempty"`
	Timestamp         time.Time            `json:"timestamp"`
	ProcessingTimeSec float64              `json:"processing_time_sec"`
	Width             int                  `json:"width"`
	Height            int                  `json:"height"`
	Classification    ClassificationResult `json:"classification"`
	Luminance         LuminanceStats       `json:"luminance"`
}
