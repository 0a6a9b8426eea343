package client

import (
	"context"
)

// Session is a form being filled in, with the results computed so far.
type Session struct {
	ID       string            `json:"id"`
	Form     string            `json:"form"`
	Answers  Answers           `json:"answers"`
	Results  map[string]Result `json:"results"`
	Revision int               `json:"revision"`
}

// Evaluation is a session after one change.
type Evaluation struct {
	Session    Session `json:"session"`
	Recomputed bool    `json:"recomputed"`
}

// SaveRequest attaches a session to a family visit. Leave FamilyID empty
// to get the bundle back without logging a visit.
type SaveRequest struct {
	FamilyID     string `json:"family_id,omitempty"`
	Date         string `json:"date,omitempty"`
	ActivityType string `json:"activity_type,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// Submission is a saved session.
type Submission struct {
	SessionID string            `json:"session_id"`
	Form      string            `json:"form"`
	Answers   Answers           `json:"answers"`
	Results   map[string]Result `json:"results"`
	VisitID   string            `json:"visit_id,omitempty"`
}

type evaluateRequest struct {
	Form    string  `json:"form,omitempty"`
	Changes Answers `json:"changes"`
}

// SessionsClient drives form-reactive evaluation.
type SessionsClient struct {
	client *Client
}

func (s *SessionsClient) Start(ctx context.Context, form string) (*Session, error) {
	var out Session
	if err := s.client.post(ctx, "/forms/"+escape(form)+"/sessions", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *SessionsClient) Get(ctx context.Context, id string) (*Session, error) {
	var out Session
	if err := s.client.get(ctx, "/sessions/"+escape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Evaluate applies changes to the session. form, when set, must match the
// session's form. A concurrent evaluation of the same session fails with
// a 409.
func (s *SessionsClient) Evaluate(ctx context.Context, id, form string, changes Answers) (*Evaluation, error) {
	var out Evaluation
	req := evaluateRequest{Form: form, Changes: changes}
	if err := s.client.post(ctx, "/sessions/"+escape(id)+"/evaluate", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *SessionsClient) Save(ctx context.Context, id string, req SaveRequest) (*Submission, error) {
	var out Submission
	if err := s.client.post(ctx, "/sessions/"+escape(id)+"/save", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
