package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/FamilyCare-Analytics/internal/application/calculator"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/assessment"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/scoring"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/FamilyCare-Analytics/pkg/errors"
)

func newScoreHandler() (*ScoreHandler, *MockCalculator) {
	calc := new(MockCalculator)
	return NewScoreHandler(calc, logging.NewNopLogger()), calc
}

func TestScoreHandler_Score(t *testing.T) {
	h, calc := newScoreHandler()
	value := 12.0
	calc.On("Score", mock.Anything, "phq9", scoring.Answers{"phq9_q1": float64(2)}).
		Return(scoring.Result{Instrument: scoring.InstrumentPHQ9, Value: &value, Category: "Moderate", Severity: scoring.SeverityModerate}, nil)

	rec := serve(t, http.MethodPost, "/scores/{instrument}", "/scores/phq9", h.Score,
		AnswersRequest{Answers: scoring.Answers{"phq9_q1": 2}})

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope[ResultView](t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "Moderate", env.Data.Category)
	assert.Equal(t, ColorYellow, env.Data.Color)
	require.NotNil(t, env.Data.Value)
	assert.Equal(t, 12.0, *env.Data.Value)
	calc.AssertExpectations(t)
}

func TestScoreHandler_Score_UnknownInstrument(t *testing.T) {
	h, calc := newScoreHandler()
	calc.On("Score", mock.Anything, "nope", mock.Anything).
		Return(scoring.Result{}, errors.New(errors.ErrCodeInstrumentUnknown, "unknown instrument nope"))

	rec := serve(t, http.MethodPost, "/scores/{instrument}", "/scores/nope", h.Score, AnswersRequest{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScoreHandler_Score_BadBody(t *testing.T) {
	h, calc := newScoreHandler()
	rec := serve(t, http.MethodPost, "/scores/{instrument}", "/scores/phq9", h.Score, `{"answers":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	calc.AssertNotCalled(t, "Score", mock.Anything, mock.Anything, mock.Anything)
}

func TestScoreHandler_Calculate(t *testing.T) {
	h, calc := newScoreHandler()
	bmi := 31.2
	calc.On("Calculate", mock.Anything, "anthropometry", mock.Anything).Return(assessment.Results{
		assessment.ResultBMI: {Instrument: scoring.InstrumentBMI, Value: &bmi, Category: "Obese", Severity: scoring.SeverityHigh},
	}, nil)

	rec := serve(t, http.MethodPost, "/forms/{formID}/calculate", "/forms/anthropometry/calculate", h.Calculate,
		AnswersRequest{Answers: scoring.Answers{"weight_kg": 90, "height_cm": 170}})

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope[CalculateResponse](t, rec)
	assert.Equal(t, assessment.FormAnthropometry, env.Data.Form)
	assert.Equal(t, ColorOrange, env.Data.Results[assessment.ResultBMI].Color)
}

func TestScoreHandler_Catalog(t *testing.T) {
	h, calc := newScoreHandler()
	calc.On("Instruments").Return([]calculator.InstrumentInfo{{Instrument: scoring.InstrumentGAD7, Inputs: []string{"gad7_q1"}}})
	calc.On("Forms").Return([]assessment.Schema{{ID: assessment.FormGAD7, Title: "GAD-7"}})
	calc.On("Form", "gad7").Return(assessment.Schema{ID: assessment.FormGAD7, Title: "GAD-7"}, nil)
	calc.On("Form", "vitals").Return(assessment.Schema{}, errors.New(errors.ErrCodeFormNotFound, "form vitals not found"))

	rec := serve(t, http.MethodGet, "/instruments", "/instruments", h.ListInstruments, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeEnvelope[[]calculator.InstrumentInfo](t, rec).Data, 1)

	rec = serve(t, http.MethodGet, "/forms", "/forms", h.ListForms, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "GAD-7", decodeEnvelope[[]assessment.Schema](t, rec).Data[0].Title)

	rec = serve(t, http.MethodGet, "/forms/{formID}", "/forms/gad7", h.GetForm, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, assessment.FormGAD7, decodeEnvelope[assessment.Schema](t, rec).Data.ID)

	rec = serve(t, http.MethodGet, "/forms/{formID}", "/forms/vitals", h.GetForm, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
