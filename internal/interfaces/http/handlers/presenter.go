package handlers

import (
	"github.com/turtacn/FamilyCare-Analytics/internal/application/evaluation"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/assessment"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/scoring"
)

// Severity colours shown by clients.
const (
	ColorGreen  = "green"
	ColorYellow = "yellow"
	ColorOrange = "orange"
	ColorRed    = "red"
	ColorGray   = "gray"
)

// SeverityColor maps a severity to its display colour. Results without a
// severity are gray.
func SeverityColor(s scoring.Severity) string {
	switch s {
	case scoring.SeverityLow:
		return ColorGreen
	case scoring.SeverityModerate:
		return ColorYellow
	case scoring.SeverityHigh:
		return ColorOrange
	case scoring.SeverityCritical:
		return ColorRed
	default:
		return ColorGray
	}
}

// ResultView is a score result with its display colour.
type ResultView struct {
	scoring.Result
	Color string `json:"color"`
}

func presentResult(r scoring.Result) ResultView {
	return ResultView{Result: r, Color: SeverityColor(r.Severity)}
}

func presentResults(rs assessment.Results) map[string]ResultView {
	out := make(map[string]ResultView, len(rs))
	for k, r := range rs {
		out[k] = presentResult(r)
	}
	return out
}

// SessionView is an evaluation session as returned to clients.
type SessionView struct {
	ID       string                `json:"id"`
	Form     assessment.FormID     `json:"form"`
	Answers  scoring.Answers       `json:"answers"`
	Results  map[string]ResultView `json:"results"`
	Revision int                   `json:"revision"`
}

func presentSession(s *evaluation.Session) SessionView {
	return SessionView{
		ID:       s.ID,
		Form:     s.Form,
		Answers:  s.Answers,
		Results:  presentResults(s.Results),
		Revision: s.Revision,
	}
}
