package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/FamilyCare-Analytics/internal/application/calculator"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/assessment"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/scoring"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/logging"
)

// ScoreHandler serves the stateless scoring endpoints and the form catalog.
type ScoreHandler struct {
	calc   calculator.Service
	logger logging.Logger
}

// NewScoreHandler serves instruments, forms and stateless scoring.
func NewScoreHandler(calc calculator.Service, logger logging.Logger) *ScoreHandler {
	return &ScoreHandler{calc: calc, logger: logger.Named("score_handler")}
}

// AnswersRequest carries raw form answers.
type AnswersRequest struct {
	Answers scoring.Answers `json:"answers"`
}

// CalculateResponse holds the dispatcher output for a form.
type CalculateResponse struct {
	Form    assessment.FormID     `json:"form"`
	Results map[string]ResultView `json:"results"`
}

// ListInstruments handles GET /instruments.
func (h *ScoreHandler) ListInstruments(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.calc.Instruments())
}

// Score handles POST /scores/{instrument}. Unusable answers produce an
// Invalid result with status 200.
func (h *ScoreHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req AnswersRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	res, err := h.calc.Score(r.Context(), chi.URLParam(r, "instrument"), req.Answers)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, presentResult(res))
}

// ListForms handles GET /forms.
func (h *ScoreHandler) ListForms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.calc.Forms())
}

// GetForm handles GET /forms/{formID}.
func (h *ScoreHandler) GetForm(w http.ResponseWriter, r *http.Request) {
	schema, err := h.calc.Form(chi.URLParam(r, "formID"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, schema)
}

// Calculate handles POST /forms/{formID}/calculate.
func (h *ScoreHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "formID")
	var req AnswersRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	results, err := h.calc.Calculate(r.Context(), formID, req.Answers)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, CalculateResponse{Form: assessment.FormID(formID), Results: presentResults(results)})
}
