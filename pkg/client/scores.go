package client

import (
	"context"
)

// Answers is a raw answer set keyed by field name.
type Answers map[string]interface{}

// Result is one score with its display colour.
type Result struct {
	Instrument     string         `json:"instrument"`
	Value          *float64       `json:"value"`
	Category       string         `json:"category"`
	Interpretation string         `json:"interpretation,omitempty"`
	Severity       string         `json:"severity,omitempty"`
	Recommendation string         `json:"recommendation,omitempty"`
	RiskFlag       bool           `json:"risk_flag"`
	SuicideRisk    bool           `json:"suicide_risk,omitempty"`
	Components     map[string]int `json:"components,omitempty"`
	Color          string         `json:"color"`
}

// IsValid reports whether the answers were complete enough to score.
func (r Result) IsValid() bool { return r.Category != "Invalid" }

// Instrument lists one score function and the answer keys it reads.
type Instrument struct {
	Instrument string   `json:"instrument"`
	Inputs     []string `json:"inputs"`
}

// Field describes one input of a form.
type Field struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	Required bool     `json:"required"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Options  []string `json:"options,omitempty"`
}

// Form is an assessment form schema.
type Form struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Fields        []Field  `json:"fields"`
	AutoCalculate []string `json:"auto_calculate,omitempty"`
	Instrument    string   `json:"instrument,omitempty"`
	MemberScoped  bool     `json:"member_scoped"`
}

// Calculation is the output of a form's declared calculations.
type Calculation struct {
	Form    string            `json:"form"`
	Results map[string]Result `json:"results"`
}

type answersRequest struct {
	Answers Answers `json:"answers"`
}

// ScoresClient scores instruments and reads form schemas.
type ScoresClient struct {
	client *Client
}

// Score runs one instrument. Incomplete answers come back as an Invalid
// result, not an error.
func (s *ScoresClient) Score(ctx context.Context, instrument string, answers Answers) (*Result, error) {
	var out Result
	if err := s.client.post(ctx, "/scores/"+escape(instrument), answersRequest{Answers: answers}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ScoresClient) Instruments(ctx context.Context) ([]Instrument, error) {
	var out []Instrument
	if err := s.client.get(ctx, "/instruments", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ScoresClient) Forms(ctx context.Context) ([]Form, error) {
	var out []Form
	if err := s.client.get(ctx, "/forms", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ScoresClient) Form(ctx context.Context, id string) (*Form, error) {
	var out Form
	if err := s.client.get(ctx, "/forms/"+escape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Calculate runs the calculations form declares over answers.
func (s *ScoresClient) Calculate(ctx context.Context, form string, answers Answers) (*Calculation, error) {
	var out Calculation
	if err := s.client.post(ctx, "/forms/"+escape(form)+"/calculate", answersRequest{Answers: answers}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
