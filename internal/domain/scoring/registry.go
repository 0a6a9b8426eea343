package scoring

import (
	"sort"
	"strings"

	"github.com/turtacn/FamilyCare-Analytics/pkg/types/common"
)

// Instrument names a score function.
type Instrument string

const (
	InstrumentBMI           Instrument = "bmi"
	InstrumentStandaloneBMI Instrument = "bmi_standalone"
	InstrumentWHR           Instrument = "whr"
	InstrumentIBW           Instrument = "ibw"
	InstrumentBP            Instrument = "blood_pressure"
	InstrumentRBS           Instrument = "random_blood_sugar"
	InstrumentMUAC          Instrument = "muac"
	InstrumentKuppuswamy    Instrument = "kuppuswamy"
	InstrumentPHQ9          Instrument = "phq9"
	InstrumentGAD7          Instrument = "gad7"
	InstrumentAUDIT         Instrument = "audit"
	InstrumentAUDITC        Instrument = "audit_c"
	InstrumentMMSE          Instrument = "mmse"
	InstrumentKatz          Instrument = "katz_adl"
)

// Answer keys read by the non-screening instruments.
const (
	FieldWeightKg        = "weight_kg"
	FieldHeightCm        = "height_cm"
	FieldWaistCm         = "waist_cm"
	FieldHipCm           = "hip_cm"
	FieldGender          = "gender"
	FieldSystolic        = "bp_systolic"
	FieldDiastolic       = "bp_diastolic"
	FieldRBS             = "rbs"
	FieldMUACCm          = "muac_cm"
	FieldEducationScore  = "education_score"
	FieldOccupationScore = "occupation_score"
	FieldMonthlyIncome   = "monthly_income"
)

type entry struct {
	inputs []string
	fn     func(Answers) Result
}

var registry = map[Instrument]entry{
	InstrumentBMI: {[]string{FieldWeightKg, FieldHeightCm}, func(a Answers) Result {
		return BMI(a.Measure(FieldWeightKg), a.Measure(FieldHeightCm))
	}},
	InstrumentStandaloneBMI: {[]string{FieldWeightKg, FieldHeightCm}, func(a Answers) Result {
		return StandaloneBMI(a.Measure(FieldWeightKg), a.Measure(FieldHeightCm))
	}},
	InstrumentWHR: {[]string{FieldWaistCm, FieldHipCm, FieldGender}, func(a Answers) Result {
		return WaistHipRatio(a.Measure(FieldWaistCm), a.Measure(FieldHipCm), common.ParseGender(a.String(FieldGender)))
	}},
	InstrumentIBW: {[]string{FieldHeightCm, FieldGender}, func(a Answers) Result {
		return IdealBodyWeight(a.Measure(FieldHeightCm), common.ParseGender(a.String(FieldGender)))
	}},
	InstrumentBP: {[]string{FieldSystolic, FieldDiastolic}, func(a Answers) Result {
		return BloodPressure(a.Measure(FieldSystolic), a.Measure(FieldDiastolic))
	}},
	InstrumentRBS: {[]string{FieldRBS}, func(a Answers) Result {
		return RandomBloodSugar(a.Measure(FieldRBS))
	}},
	InstrumentMUAC: {[]string{FieldMUACCm}, func(a Answers) Result {
		return MUAC(a.Measure(FieldMUACCm))
	}},
	InstrumentKuppuswamy: {[]string{FieldEducationScore, FieldOccupationScore, FieldMonthlyIncome}, func(a Answers) Result {
		return Kuppuswamy(a.Measure(FieldEducationScore), a.Measure(FieldOccupationScore), a.Measure(FieldMonthlyIncome))
	}},
	InstrumentPHQ9:   {phq9.Items(), PHQ9},
	InstrumentGAD7:   {gad7.Items(), GAD7},
	InstrumentAUDIT:  {audit.Items(), AUDIT},
	InstrumentAUDITC: {auditC.Items(), AUDITC},
	InstrumentMMSE:   {mmse.Items(), MMSE},
	InstrumentKatz:   {katz.Items(), KatzADL},
}

// ParseInstrument resolves a case-insensitive instrument name.
func ParseInstrument(s string) (Instrument, bool) {
	inst := Instrument(strings.ToLower(strings.TrimSpace(s)))
	_, ok := registry[inst]
	return inst, ok
}

// Instruments lists every known instrument in name order.
func Instruments() []Instrument {
	out := make([]Instrument, 0, len(registry))
	for inst := range registry {
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Inputs returns the answer keys an instrument reads.
func Inputs(inst Instrument) []string {
	e, ok := registry[inst]
	if !ok {
		return nil
	}
	return append([]string(nil), e.inputs...)
}

// Score runs an instrument by name over a raw answer set. It returns false
// for an unknown instrument.
func Score(inst Instrument, a Answers) (Result, bool) {
	e, ok := registry[inst]
	if !ok {
		return Result{}, false
	}
	return e.fn(a), true
}
