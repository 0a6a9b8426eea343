package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/FamilyCare-Analytics/internal/application/evaluation"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/assessment"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/scoring"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/logging"
)

// SessionHandler drives form-reactive evaluation sessions.
type SessionHandler struct {
	eval   evaluation.Service
	logger logging.Logger
}

// NewSessionHandler serves form evaluation sessions.
func NewSessionHandler(eval evaluation.Service, logger logging.Logger) *SessionHandler {
	return &SessionHandler{eval: eval, logger: logger.Named("session_handler")}
}

// EvaluateRequest carries the answers that changed since the last call.
// A null value clears an answer.
type EvaluateRequest struct {
	Form    assessment.FormID `json:"form,omitempty"`
	Changes scoring.Answers   `json:"changes"`
}

// EvaluateResponse reports the session after the change.
type EvaluateResponse struct {
	Session    SessionView `json:"session"`
	Recomputed bool        `json:"recomputed"`
}

// SaveRequest attaches the session to a family visit. Without family_id the
// bundle is returned and nothing is logged.
type SaveRequest struct {
	FamilyID     string `json:"family_id,omitempty"`
	Date         string `json:"date,omitempty"`
	ActivityType string `json:"activity_type,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// SubmissionResponse is the saved bundle.
type SubmissionResponse struct {
	SessionID string                `json:"session_id"`
	Form      assessment.FormID     `json:"form"`
	Answers   scoring.Answers       `json:"answers"`
	Results   map[string]ResultView `json:"results"`
	VisitID   string                `json:"visit_id,omitempty"`
}

// Start handles POST /forms/{formID}/sessions.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	sess, err := h.eval.Start(r.Context(), assessment.FormID(chi.URLParam(r, "formID")))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, presentSession(sess))
}

// Get handles GET /sessions/{sessionID}.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, err := h.eval.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, presentSession(sess))
}

// Evaluate handles POST /sessions/{sessionID}/evaluate.
func (h *SessionHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	ev, err := h.eval.Evaluate(r.Context(), chi.URLParam(r, "sessionID"), req.Form, req.Changes)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, EvaluateResponse{Session: presentSession(ev.Session), Recomputed: ev.Recomputed})
}

// Save handles POST /sessions/{sessionID}/save.
func (h *SessionHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	date, err := parseOptionalDate(req.Date)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	sub, err := h.eval.Save(r.Context(), chi.URLParam(r, "sessionID"), evaluation.SaveInput{
		FamilyID:     req.FamilyID,
		Date:         date,
		ActivityType: req.ActivityType,
		Notes:        req.Notes,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	resp := SubmissionResponse{
		SessionID: sub.SessionID,
		Form:      sub.Form,
		Answers:   sub.Answers,
		Results:   presentResults(sub.Results),
	}
	status := http.StatusOK
	if sub.Visit != nil {
		resp.VisitID = sub.Visit.ID
		status = http.StatusCreated
	}
	writeJSON(w, status, resp)
}
