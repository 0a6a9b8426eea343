// Package calculator exposes the score functions and the form dispatcher
// as a stateless service.
package calculator

import (
	"context"

	"github.com/turtacn/FamilyCare-Analytics/internal/domain/assessment"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/scoring"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/FamilyCare-Analytics/pkg/errors"
)

// InstrumentInfo describes one instrument and the answer keys it reads.
type InstrumentInfo struct {
	Instrument scoring.Instrument `json:"instrument"`
	Inputs     []string           `json:"inputs"`
}

// Service scores answers.
type Service interface {
	// Score runs one instrument. Invalid input yields an Invalid result,
	// not an error; an unknown instrument is an error.
	Score(ctx context.Context, instrument string, answers scoring.Answers) (scoring.Result, error)

	// Calculate runs the dispatcher for a form. Forms without a
	// calculation yield an empty map.
	Calculate(ctx context.Context, form string, answers scoring.Answers) (assessment.Results, error)

	Instruments() []InstrumentInfo
	Forms() []assessment.Schema
	Form(id string) (assessment.Schema, error)
}

type serviceImpl struct {
	metrics *prometheus.AppMetrics
	logger  logging.Logger
}

// NewService builds the calculator. A nil metrics argument records nothing.
func NewService(metrics *prometheus.AppMetrics, logger logging.Logger) Service {
	if metrics == nil {
		metrics = prometheus.NewNoopAppMetrics()
	}
	return &serviceImpl{metrics: metrics, logger: logger.Named("calculator")}
}

func (s *serviceImpl) Score(_ context.Context, instrument string, answers scoring.Answers) (scoring.Result, error) {
	inst, ok := scoring.ParseInstrument(instrument)
	if !ok {
		return scoring.Result{}, errors.Newf(errors.ErrCodeInstrumentUnknown, "unknown instrument %q", instrument)
	}
	r, _ := scoring.Score(inst, answers)
	prometheus.RecordScore(s.metrics, string(inst), string(r.Severity))
	if !r.IsValid() {
		s.logger.Debug("invalid score input", logging.String("instrument", string(inst)), logging.String("reason", r.Interpretation))
	}
	return r, nil
}

// Calculate accepts unknown form ids and returns no results for them, the
// same as the dispatcher.
func (s *serviceImpl) Calculate(_ context.Context, form string, answers scoring.Answers) (assessment.Results, error) {
	id := assessment.FormID(form)
	results := assessment.Dispatch(id, answers)

	outcome := "computed"
	if len(results) == 0 {
		outcome = "empty"
	}
	s.metrics.DispatchTotal.WithLabelValues(form, outcome).Inc()
	for _, r := range results {
		prometheus.RecordScore(s.metrics, string(r.Instrument), string(r.Severity))
	}
	return results, nil
}

func (s *serviceImpl) Instruments() []InstrumentInfo {
	insts := scoring.Instruments()
	out := make([]InstrumentInfo, len(insts))
	for i, inst := range insts {
		out[i] = InstrumentInfo{Instrument: inst, Inputs: scoring.Inputs(inst)}
	}
	return out
}

func (s *serviceImpl) Forms() []assessment.Schema { return assessment.All() }

func (s *serviceImpl) Form(id string) (assessment.Schema, error) {
	schema, ok := assessment.Lookup(assessment.FormID(id))
	if !ok {
		return assessment.Schema{}, errors.Newf(errors.ErrCodeFormNotFound, "unknown form %q", id)
	}
	return schema, nil
}
