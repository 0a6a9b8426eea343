package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/FamilyCare-Analytics/internal/application/visitlog"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/assessment"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/scoring"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/FamilyCare-Analytics/pkg/types/common"
)

// VisitHandler records and lists home visits.
type VisitHandler struct {
	visits visitlog.Service
	logger logging.Logger
}

// NewVisitHandler serves visit logging and listing.
func NewVisitHandler(visits visitlog.Service, logger logging.Logger) *VisitHandler {
	return &VisitHandler{visits: visits, logger: logger.Named("visit_handler")}
}

// LogVisitRequest is the body of POST /families/{familyID}/visits.
type LogVisitRequest struct {
	MemberID     string            `json:"member_id,omitempty"`
	Date         string            `json:"date,omitempty"`
	ActivityType string            `json:"activity_type,omitempty"`
	Notes        string            `json:"notes,omitempty"`
	Protocol     assessment.FormID `json:"protocol,omitempty"`
	Answers      scoring.Answers   `json:"answers,omitempty"`
}

// VisitView is one visit as returned to clients.
type VisitView struct {
	ID       string            `json:"id"`
	FamilyID string            `json:"family_id"`
	MemberID string            `json:"member_id,omitempty"`
	Date     string            `json:"date"`
	Protocol assessment.FormID `json:"protocol"`
}

// Log handles POST /families/{familyID}/visits.
func (h *VisitHandler) Log(w http.ResponseWriter, r *http.Request) {
	var req LogVisitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	date, err := parseOptionalDate(req.Date)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if date.IsZero() {
		date = time.Now().UTC()
	}
	v, err := h.visits.LogVisit(r.Context(), &visitlog.LogVisitInput{
		FamilyID:     chi.URLParam(r, "familyID"),
		MemberID:     req.MemberID,
		Date:         date,
		ActivityType: req.ActivityType,
		Notes:        req.Notes,
		Protocol:     req.Protocol,
		Answers:      req.Answers,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, VisitView{
		ID:       v.ID,
		FamilyID: v.FamilyID,
		MemberID: v.MemberID(),
		Date:     v.Date.Format(common.DateLayout),
		Protocol: v.Protocol(),
	})
}

// List handles GET /families/{familyID}/visits.
func (h *VisitHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.visits.ListByFamily(r.Context(), chi.URLParam(r, "familyID"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	out := make([]VisitView, len(records))
	for i, rec := range records {
		out[i] = VisitView{
			ID:       rec.ID,
			FamilyID: rec.FamilyID,
			MemberID: rec.MemberID,
			Date:     rec.Date.Format(common.DateLayout),
			Protocol: rec.Protocol(),
		}
	}
	writeJSON(w, http.StatusOK, out)
}
