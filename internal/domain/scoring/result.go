// Package scoring holds the deterministic clinical score functions. Every
// function is total: malformed input yields an Invalid Result, never a panic
// or an error.
package scoring

import (
	"math"
	"strings"
)

// Severity is the clinical severity level attached to a Result. Colour
// mapping belongs to the presentation layer.
type Severity string

const (
	SeverityNone     Severity = ""
	SeverityLow      Severity = "low"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank orders severities; SeverityNone ranks lowest.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityModerate:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// AtLeast reports whether s is as severe as other.
func (s Severity) AtLeast(other Severity) bool { return s.Rank() >= other.Rank() }

// ParseSeverity is case-insensitive; unknown input maps to SeverityNone.
func ParseSeverity(s string) Severity {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityLow:
		return SeverityLow
	case SeverityModerate:
		return SeverityModerate
	case SeverityHigh:
		return SeverityHigh
	case SeverityCritical:
		return SeverityCritical
	default:
		return SeverityNone
	}
}

// CategoryInvalid is the category of every Result computed from unusable input.
const CategoryInvalid = "Invalid"

// EscalationMarker prefixes the recommendation of a Result that needs same-day
// clinical follow-up.
const EscalationMarker = "URGENT"

// Result is the ephemeral output of a score function.
type Result struct {
	Instrument     Instrument     `json:"instrument"`
	Value          *float64       `json:"value"`
	Category       string         `json:"category"`
	Interpretation string         `json:"interpretation,omitempty"`
	Severity       Severity       `json:"severity,omitempty"`
	Recommendation string         `json:"recommendation,omitempty"`
	RiskFlag       bool           `json:"risk_flag"`
	SuicideRisk    bool           `json:"suicide_risk,omitempty"`
	Components     map[string]int `json:"components,omitempty"`
}

// Invalid builds the Invalid Result for an instrument.
func Invalid(inst Instrument, reason string) Result {
	return Result{
		Instrument:     inst,
		Category:       CategoryInvalid,
		Interpretation: reason,
	}
}

// IsValid reports whether the Result carries a computed category.
func (r Result) IsValid() bool { return r.Category != CategoryInvalid }

// Number returns the numeric value, or 0 and false when absent.
func (r Result) Number() (float64, bool) {
	if r.Value == nil {
		return 0, false
	}
	return *r.Value, true
}

func valuePtr(v float64) *float64 { return &v }

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
