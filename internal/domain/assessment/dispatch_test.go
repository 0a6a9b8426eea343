package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/FamilyCare-Analytics/internal/domain/scoring"
)

func TestDispatch_Anthropometry(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		answers scoring.Answers
		keys    []string
	}{
		{"nothing entered", scoring.Answers{}, nil},
		{"height only", scoring.Answers{scoring.FieldHeightCm: 170}, nil},
		{"height and weight", scoring.Answers{scoring.FieldHeightCm: 170, scoring.FieldWeightKg: 65}, []string{ResultBMI}},
		{"with gender", scoring.Answers{scoring.FieldHeightCm: 170, scoring.FieldWeightKg: 65, scoring.FieldGender: "Male"}, []string{ResultBMI, ResultIBW}},
		{"other gender skips ibw", scoring.Answers{scoring.FieldHeightCm: 170, scoring.FieldWeightKg: 65, scoring.FieldGender: "Other"}, []string{ResultBMI}},
		{"waist and hip without gender", scoring.Answers{scoring.FieldWaistCm: 90, scoring.FieldHipCm: 100}, nil},
		{"waist hip gender", scoring.Answers{scoring.FieldWaistCm: 90, scoring.FieldHipCm: 100, scoring.FieldGender: "Female"}, []string{ResultWHR}},
		{"everything", scoring.Answers{
			scoring.FieldHeightCm: 160, scoring.FieldWeightKg: 60, scoring.FieldGender: "Female",
			scoring.FieldWaistCm: 80, scoring.FieldHipCm: 100,
		}, []string{ResultBMI, ResultIBW, ResultWHR}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Dispatch(FormAnthropometry, tc.answers)
			assert.Len(t, got, len(tc.keys))
			for _, k := range tc.keys {
				assert.Contains(t, got, k)
			}
		})
	}
}

func TestDispatch_AnthropometryValues(t *testing.T) {
	t.Parallel()

	got := Dispatch(FormAnthropometry, scoring.Answers{
		scoring.FieldHeightCm: "175", scoring.FieldWeightKg: "70", scoring.FieldGender: "male",
		scoring.FieldWaistCm: 95, scoring.FieldHipCm: 100,
	})
	assert.Equal(t, scoring.BMINormal, got[ResultBMI].Category)
	assert.Equal(t, scoring.WHRModerate, got[ResultWHR].Category)
	v, ok := got[ResultIBW].Number()
	require.True(t, ok)
	assert.Greater(t, v, 60.0)
}

func TestDispatch_Screening(t *testing.T) {
	t.Parallel()

	got := Dispatch(FormPHQ9, scoring.Answers{"phq9_q1": 3, "phq9_q2": 3, scoring.PHQ9SelfHarmItem: 2})
	require.Len(t, got, 1)
	r := got[ResultScreening]
	assert.Equal(t, scoring.InstrumentPHQ9, r.Instrument)
	assert.True(t, r.SuicideRisk)

	got = Dispatch(FormSocioEconomic, scoring.Answers{
		scoring.FieldEducationScore: 4, scoring.FieldOccupationScore: 5, scoring.FieldMonthlyIncome: 20000,
	})
	assert.Equal(t, scoring.ClassLowerMiddle, got[ResultScreening].Category)

	got = Dispatch(FormKatzADL, scoring.Answers{})
	assert.Equal(t, "Severe Dependence", got[ResultScreening].Category)
}

func TestDispatch_NoCalculation(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Dispatch("unknown_form", scoring.Answers{scoring.FieldHeightCm: 170}))
	assert.Empty(t, Dispatch(FormEnvironment, scoring.Answers{FieldWaterSource: "Piped water"}))
	assert.Empty(t, Dispatch(FormNCDScreening, scoring.Answers{scoring.FieldSystolic: 150, scoring.FieldDiastolic: 95}))
}

func TestInputs(t *testing.T) {
	t.Parallel()

	assert.ElementsMatch(t, []string{
		scoring.FieldWeightKg, scoring.FieldHeightCm, scoring.FieldGender, scoring.FieldWaistCm, scoring.FieldHipCm,
	}, Inputs(FormAnthropometry))
	assert.Len(t, Inputs(FormGAD7), 7)
	assert.Empty(t, Inputs(FormEnvironment))
	assert.Empty(t, Inputs("unknown_form"))
}

func TestResults_Merge(t *testing.T) {
	t.Parallel()

	a := Results{"bmi": {Category: "Normal"}}
	b := Results{"bmi": {Category: "Overweight"}, "whr": {Category: "Low"}}
	m := a.Merge(b)
	assert.Equal(t, "Overweight", m["bmi"].Category)
	assert.Len(t, m, 2)
	assert.Equal(t, "Normal", a["bmi"].Category)
}
