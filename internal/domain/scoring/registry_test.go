package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore_ByName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		inst     Instrument
		answers  Answers
		category string
	}{
		{InstrumentBMI, Answers{FieldWeightKg: "70", FieldHeightCm: 175}, BMINormal},
		{InstrumentStandaloneBMI, Answers{FieldWeightKg: 80, FieldHeightCm: 160}, BMIObese},
		{InstrumentWHR, Answers{FieldWaistCm: 95, FieldHipCm: 100, FieldGender: "male"}, WHRModerate},
		{InstrumentIBW, Answers{FieldHeightCm: 170, FieldGender: "Female"}, "Ideal Body Weight"},
		{InstrumentBP, Answers{FieldSystolic: 150, FieldDiastolic: 95}, BPStage2},
		{InstrumentRBS, Answers{FieldRBS: "210"}, RBSDiabetic},
		{InstrumentMUAC, Answers{FieldMUACCm: 12}, MUACModerate},
		{InstrumentKuppuswamy, Answers{FieldEducationScore: 4, FieldOccupationScore: 5, FieldMonthlyIncome: 20000}, ClassLowerMiddle},
		{InstrumentPHQ9, Answers{}, "Minimal Depression"},
		{InstrumentGAD7, Answers{}, "Minimal Anxiety"},
		{InstrumentAUDIT, Answers{}, "Low Risk"},
		{InstrumentAUDITC, Answers{}, "Low Risk"},
		{InstrumentMMSE, Answers{}, "Severe Impairment"},
		{InstrumentKatz, Answers{}, "Severe Dependence"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(string(tc.inst), func(t *testing.T) {
			t.Parallel()
			r, ok := Score(tc.inst, tc.answers)
			require.True(t, ok)
			assert.Equal(t, tc.inst, r.Instrument)
			assert.Equal(t, tc.category, r.Category)
		})
	}
}

func TestScore_Unknown(t *testing.T) {
	t.Parallel()

	_, ok := Score("apgar", Answers{})
	assert.False(t, ok)
	assert.Nil(t, Inputs("apgar"))
}

func TestParseInstrument(t *testing.T) {
	t.Parallel()

	inst, ok := ParseInstrument(" PHQ9 ")
	assert.True(t, ok)
	assert.Equal(t, InstrumentPHQ9, inst)

	_, ok = ParseInstrument("unknown")
	assert.False(t, ok)
}

func TestInstrumentsAndInputs(t *testing.T) {
	t.Parallel()

	all := Instruments()
	assert.Len(t, all, 14)
	assert.IsIncreasing(t, all)

	assert.Equal(t, []string{FieldWeightKg, FieldHeightCm}, Inputs(InstrumentBMI))
	assert.Len(t, Inputs(InstrumentPHQ9), 9)
	assert.Contains(t, Inputs(InstrumentPHQ9), PHQ9SelfHarmItem)
}
