package assessment

import (
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/scoring"
	"github.com/turtacn/FamilyCare-Analytics/pkg/types/common"
)

// Result keys produced by Dispatch.
const (
	ResultBMI       = "bmi"
	ResultIBW       = "ibw"
	ResultWHR       = "whr"
	ResultScreening = "screening"
)

// Results maps result keys to computed scores.
type Results map[string]scoring.Result

// Merge overlays other onto a copy of r.
func (r Results) Merge(other Results) Results {
	out := make(Results, len(r)+len(other))
	for k, v := range r {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// calculation is one dispatch strategy bound to the answer keys it reads.
type calculation interface {
	inputs() []string
	calculate(a scoring.Answers) Results
}

// anthropometric fires per field combination: height and weight give BMI,
// plus IBW when gender is Male or Female; waist, hip and gender give WHR.
type anthropometric struct{}

func (anthropometric) inputs() []string {
	return []string{
		scoring.FieldWeightKg, scoring.FieldHeightCm, scoring.FieldGender,
		scoring.FieldWaistCm, scoring.FieldHipCm,
	}
}

func (anthropometric) calculate(a scoring.Answers) Results {
	out := Results{}
	gender := common.ParseGender(a.String(scoring.FieldGender))
	if a.Has(scoring.FieldHeightCm) && a.Has(scoring.FieldWeightKg) {
		out[ResultBMI] = scoring.BMI(a.Measure(scoring.FieldWeightKg), a.Measure(scoring.FieldHeightCm))
		if gender.IsBinary() {
			out[ResultIBW] = scoring.IdealBodyWeight(a.Measure(scoring.FieldHeightCm), gender)
		}
	}
	if a.Has(scoring.FieldWaistCm) && a.Has(scoring.FieldHipCm) && gender != common.GenderUnknown {
		out[ResultWHR] = scoring.WaistHipRatio(a.Measure(scoring.FieldWaistCm), a.Measure(scoring.FieldHipCm), gender)
	}
	return out
}

// screening runs the form's instrument under the screening key.
type screening struct {
	instrument scoring.Instrument
}

func (s screening) inputs() []string { return scoring.Inputs(s.instrument) }

func (s screening) calculate(a scoring.Answers) Results {
	r, ok := scoring.Score(s.instrument, a)
	if !ok {
		return Results{}
	}
	return Results{ResultScreening: r}
}

// calculations returns the strategies that apply to a form, anthropometric
// first so that screening keys overlay them.
func calculations(id FormID) []calculation {
	schema, ok := catalog[id]
	if !ok {
		return nil
	}
	var out []calculation
	if id == FormAnthropometry {
		out = append(out, anthropometric{})
	}
	if inst, ok := schema.ScreeningInstrument(); ok {
		out = append(out, screening{instrument: inst})
	}
	return out
}

// Dispatch computes the auto-calculated results of a form. Unknown forms and
// forms without auto-calculation yield an empty map.
func Dispatch(id FormID, a scoring.Answers) Results {
	out := Results{}
	for _, c := range calculations(id) {
		out = out.Merge(c.calculate(a))
	}
	return out
}

// Inputs returns the answer keys whose change can alter Dispatch's output.
func Inputs(id FormID) []string {
	seen := map[string]bool{}
	var keys []string
	for _, c := range calculations(id) {
		for _, k := range c.inputs() {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return keys
}
