// Package worker holds the message handlers and probe server of the risk
// worker.
package worker

import (
	"context"

	"github.com/turtacn/FamilyCare-Analytics/internal/application/alerting"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/visit"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/FamilyCare-Analytics/pkg/errors"
)

// RiskHandler turns visit-logged events into risk alerts.
type RiskHandler struct {
	alerts alerting.Service
	logger logging.Logger
}

// NewRiskHandler builds a handler that forwards decoded events to alerts.
func NewRiskHandler(alerts alerting.Service, logger logging.Logger) *RiskHandler {
	return &RiskHandler{alerts: alerts, logger: logger.Named("risk_handler")}
}

// Topic is the topic Handle consumes.
func (h *RiskHandler) Topic() string { return visit.TopicLogged }

// Handle decodes one visit.Logged event. Undecodable payloads fail
// permanently; publish failures are returned for retry.
func (h *RiskHandler) Handle(ctx context.Context, msg *kafka.Message) error {
	var ev visit.Logged
	if err := msg.Decode(&ev); err != nil {
		return err
	}
	if ev.VisitID == "" {
		return errors.NewValidation("visit event without visit_id")
	}

	alert, err := h.alerts.HandleVisitLogged(ctx, ev)
	if err != nil {
		return err
	}
	if alert != nil {
		h.logger.Info("risk alert raised",
			logging.String("visit_id", ev.VisitID),
			logging.FamilyID(ev.FamilyID),
			logging.String("severity", string(alert.Severity)),
			logging.Int("findings", len(alert.Findings)))
	}
	return nil
}
