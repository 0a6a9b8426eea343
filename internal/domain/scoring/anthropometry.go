package scoring

import (
	"fmt"

	"github.com/turtacn/FamilyCare-Analytics/pkg/types/common"
)

// BMI category labels.
const (
	BMIUnderweight  = "Underweight"
	BMINormal       = "Normal"
	BMIOverweight   = "Overweight"
	BMIObeseClassI  = "Obese Class I"
	BMIObeseClassII = "Obese Class II"
	BMIObese        = "Obese"
)

// BMI computes body-mass index with the Asian-Indian cut-offs used by the
// anthropometric assessment form. The value is rounded to 2 decimals and the
// category is taken from the rounded value.
func BMI(weightKg, heightCm Measure) Result {
	w, okW := weightKg.Positive()
	h, okH := heightCm.Positive()
	if !okW || !okH {
		return Invalid(InstrumentBMI, "weight and height must be positive numbers")
	}
	m := h / 100
	bmi := round(w/(m*m), 2)

	r := Result{Instrument: InstrumentBMI, Value: valuePtr(bmi)}
	switch {
	case bmi < 18.5:
		r.Category, r.Severity = BMIUnderweight, SeverityModerate
		r.Recommendation = "Nutritional assessment and dietary counselling"
	case bmi < 23:
		r.Category, r.Severity = BMINormal, SeverityLow
		r.Recommendation = "Maintain current diet and activity"
	case bmi < 25:
		r.Category, r.Severity = BMIOverweight, SeverityModerate
		r.Recommendation = "Lifestyle modification: diet and physical activity"
	case bmi < 30:
		r.Category, r.Severity = BMIObeseClassI, SeverityHigh
		r.Recommendation = "Screen for diabetes and hypertension; structured weight reduction"
	default:
		r.Category, r.Severity = BMIObeseClassII, SeverityCritical
		r.Recommendation = "Refer to physician for obesity management and NCD screening"
	}
	r.RiskFlag = r.Severity.AtLeast(SeverityHigh)
	r.Interpretation = fmt.Sprintf("BMI %.2f kg/m² (%s)", bmi, r.Category)
	return r
}

// StandaloneBMI is the simplified calculator with WHO international
// cut-offs. It is kept separate from BMI; callers depend on each band table.
func StandaloneBMI(weightKg, heightCm Measure) Result {
	w, okW := weightKg.Positive()
	h, okH := heightCm.Positive()
	if !okW || !okH {
		return Invalid(InstrumentStandaloneBMI, "weight and height must be positive numbers")
	}
	m := h / 100
	bmi := round(w/(m*m), 1)

	r := Result{Instrument: InstrumentStandaloneBMI, Value: valuePtr(bmi)}
	switch {
	case bmi < 18.5:
		r.Category, r.Severity = BMIUnderweight, SeverityModerate
	case bmi <= 24.9:
		r.Category, r.Severity = BMINormal, SeverityLow
	case bmi <= 29.9:
		r.Category, r.Severity = BMIOverweight, SeverityModerate
	default:
		r.Category, r.Severity = BMIObese, SeverityHigh
	}
	r.Interpretation = fmt.Sprintf("BMI %.1f kg/m² (%s)", bmi, r.Category)
	return r
}

// Waist-hip ratio risk labels.
const (
	WHRLow      = "Low"
	WHRModerate = "Moderate"
	WHRHigh     = "High"
)

// WaistHipRatio classifies central obesity with sex-specific thresholds.
// Gender other than Male or Female is Invalid.
func WaistHipRatio(waistCm, hipCm Measure, gender common.Gender) Result {
	waist, okW := waistCm.Positive()
	hip, okH := hipCm.Positive()
	if !okW || !okH {
		return Invalid(InstrumentWHR, "waist and hip must be positive numbers")
	}
	var moderate, high float64
	switch gender {
	case common.GenderMale:
		moderate, high = 0.90, 1.0
	case common.GenderFemale:
		moderate, high = 0.80, 0.85
	default:
		return Invalid(InstrumentWHR, "gender must be Male or Female")
	}
	whr := round(waist/hip, 2)

	r := Result{Instrument: InstrumentWHR, Value: valuePtr(whr)}
	switch {
	case whr < moderate:
		r.Category, r.Severity = WHRLow, SeverityLow
	case whr < high:
		r.Category, r.Severity = WHRModerate, SeverityModerate
	default:
		r.Category, r.Severity = WHRHigh, SeverityHigh
		r.RiskFlag = true
		r.Recommendation = "Central obesity: screen for metabolic syndrome"
	}
	r.Interpretation = fmt.Sprintf("Waist-hip ratio %.2f, %s cardiometabolic risk", whr, r.Category)
	return r
}

// IdealBodyWeight applies the Devine formula.
func IdealBodyWeight(heightCm Measure, gender common.Gender) Result {
	h, ok := heightCm.Positive()
	if !ok {
		return Invalid(InstrumentIBW, "height must be a positive number")
	}
	inches := h / 2.54
	var base float64
	switch gender {
	case common.GenderMale:
		base = 50
	case common.GenderFemale:
		base = 45.5
	default:
		return Invalid(InstrumentIBW, "gender must be Male or Female")
	}
	ibw := round(base+2.3*(inches-60), 1)
	if ibw <= 0 {
		return Invalid(InstrumentIBW, "height is below the range of the Devine formula")
	}
	return Result{
		Instrument:     InstrumentIBW,
		Value:          valuePtr(ibw),
		Category:       "Ideal Body Weight",
		Interpretation: fmt.Sprintf("Ideal body weight %.1f kg", ibw),
		Severity:       SeverityLow,
	}
}

// MUAC category labels.
const (
	MUACSevere   = "Severe Acute Malnutrition"
	MUACModerate = "Moderate Acute Malnutrition"
	MUACAtRisk   = "At-Risk"
	MUACNormal   = "Normal"
)

// MUAC classifies mid-upper-arm circumference in centimetres for children
// aged 6 to 59 months.
func MUAC(cm Measure) Result {
	v, ok := cm.Positive()
	if !ok {
		return Invalid(InstrumentMUAC, "circumference must be a positive number")
	}
	r := Result{Instrument: InstrumentMUAC, Value: valuePtr(v)}
	switch {
	case v < 11.5:
		r.Category, r.Severity = MUACSevere, SeverityCritical
		r.Recommendation = "Refer to nutrition rehabilitation centre"
		r.RiskFlag = true
	case v < 12.5:
		r.Category, r.Severity = MUACModerate, SeverityHigh
		r.Recommendation = "Enrol in supplementary feeding; follow up in 2 weeks"
		r.RiskFlag = true
	case v < 13.5:
		r.Category, r.Severity = MUACAtRisk, SeverityModerate
		r.Recommendation = "Nutrition counselling and monthly growth monitoring"
	default:
		r.Category, r.Severity = MUACNormal, SeverityLow
	}
	r.Interpretation = fmt.Sprintf("MUAC %.1f cm (%s)", v, r.Category)
	return r
}
