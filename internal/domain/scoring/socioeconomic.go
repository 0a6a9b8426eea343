package scoring

import "fmt"

// Socio-economic classes, shared by the composite scale and the income-only
// classification.
const (
	ClassUpper       = "Upper"
	ClassUpperMiddle = "Upper Middle"
	ClassLowerMiddle = "Lower Middle"
	ClassUpperLower  = "Upper Lower"
	ClassLower       = "Lower"
)

// SocioEconomicClasses lists the classes from highest to lowest.
var SocioEconomicClasses = []string{ClassUpper, ClassUpperMiddle, ClassLowerMiddle, ClassUpperLower, ClassLower}

// incomeBands are monthly family income floors in rupees with their
// Kuppuswamy income score.
var incomeBands = []struct {
	floor float64
	score int
}{
	{123322, 12},
	{61663, 10},
	{46129, 6},
	{30831, 4},
	{18497, 3},
	{6175, 2},
}

// IncomeScore maps monthly family income to the Kuppuswamy income score 1-12.
func IncomeScore(monthlyIncome float64) int {
	for _, b := range incomeBands {
		if monthlyIncome >= b.floor {
			return b.score
		}
	}
	return 1
}

// IncomeClass buckets monthly income alone into the five classes, without
// education or occupation.
func IncomeClass(monthlyIncome float64) string {
	switch {
	case monthlyIncome >= 123322:
		return ClassUpper
	case monthlyIncome >= 46129:
		return ClassUpperMiddle
	case monthlyIncome >= 18497:
		return ClassLowerMiddle
	case monthlyIncome >= 6175:
		return ClassUpperLower
	default:
		return ClassLower
	}
}

// Kuppuswamy computes the composite socio-economic score from the head of
// family's education score (1-7), occupation score (1-10) and monthly income.
func Kuppuswamy(education, occupation, monthlyIncome Measure) Result {
	edu, okE := education.Value()
	occ, okO := occupation.Value()
	inc, okI := monthlyIncome.Value()
	if !okE || !okO || !okI {
		return Invalid(InstrumentKuppuswamy, "education, occupation and income are required")
	}
	e, o := int(edu), int(occ)
	if e < 1 || e > 7 || float64(e) != edu {
		return Invalid(InstrumentKuppuswamy, "education score must be an integer from 1 to 7")
	}
	if o < 1 || o > 10 || float64(o) != occ {
		return Invalid(InstrumentKuppuswamy, "occupation score must be an integer from 1 to 10")
	}
	if inc < 0 {
		return Invalid(InstrumentKuppuswamy, "income cannot be negative")
	}
	i := IncomeScore(inc)
	total := e + o + i

	r := Result{
		Instrument: InstrumentKuppuswamy,
		Value:      valuePtr(float64(total)),
		Components: map[string]int{"education": e, "occupation": o, "income": i},
	}
	switch {
	case total >= 26:
		r.Category, r.Severity = ClassUpper, SeverityLow
	case total >= 16:
		r.Category, r.Severity = ClassUpperMiddle, SeverityLow
	case total >= 11:
		r.Category, r.Severity = ClassLowerMiddle, SeverityModerate
	case total >= 5:
		r.Category, r.Severity = ClassUpperLower, SeverityHigh
	default:
		r.Category, r.Severity = ClassLower, SeverityHigh
	}
	r.Interpretation = fmt.Sprintf("Kuppuswamy score %d: %s class", total, r.Category)
	return r
}
