package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/FamilyCare-Analytics/internal/application/reporting"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/logging"
)

// ReportHandler serves community reports.
type ReportHandler struct {
	reports reporting.Service
	logger  logging.Logger
}

// NewReportHandler serves generated reports and archive requests.
func NewReportHandler(reports reporting.Service, logger logging.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, logger: logger.Named("report_handler")}
}

// Get handles GET /students/{studentID}/report. A degraded report is still
// a 200; its degraded_sections field names what was zeroed.
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentID")
	report, err := h.reports.Generate(r.Context(), studentID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if len(report.DegradedSections) > 0 {
		w.Header().Set("X-Report-Degraded", "true")
	}
	writeJSON(w, http.StatusOK, report)
}

// Archive handles POST /students/{studentID}/report/archive.
func (h *ReportHandler) Archive(w http.ResponseWriter, r *http.Request) {
	res, err := h.reports.Archive(r.Context(), chi.URLParam(r, "studentID"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}
