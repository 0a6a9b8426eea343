package scoring

import "fmt"

// Blood pressure stages.
const (
	BPNormal   = "Normal"
	BPElevated = "Elevated"
	BPStage1   = "Stage 1 Hypertension"
	BPStage2   = "Stage 2 Hypertension"
	BPCrisis   = "Hypertensive Crisis"
)

// BloodPressure stages a reading in mmHg. Bands are tested in ascending
// order and the first match wins, so readings at or above 180/120 are
// reported as Stage 2: the crisis branch is never reached.
func BloodPressure(systolic, diastolic Measure) Result {
	sys, okS := systolic.Positive()
	dia, okD := diastolic.Positive()
	if !okS || !okD {
		return Invalid(InstrumentBP, "systolic and diastolic must be positive numbers")
	}
	r := Result{
		Instrument: InstrumentBP,
		Value:      valuePtr(sys),
		Components: map[string]int{"systolic": int(sys), "diastolic": int(dia)},
	}
	switch {
	case sys < 120 && dia < 80:
		r.Category, r.Severity = BPNormal, SeverityLow
		r.Recommendation = "Recheck annually"
	case sys < 130 && dia < 80:
		r.Category, r.Severity = BPElevated, SeverityModerate
		r.Recommendation = "Lifestyle modification; recheck in 3-6 months"
	case (sys >= 130 && sys < 140) || (dia >= 80 && dia < 90):
		r.Category, r.Severity = BPStage1, SeverityHigh
		r.Recommendation = "Lifestyle modification; physician review within 1 month"
		r.RiskFlag = true
	case sys >= 140 || dia >= 90:
		r.Category, r.Severity = BPStage2, SeverityCritical
		r.Recommendation = "Refer to physician for antihypertensive therapy"
		r.RiskFlag = true
	case sys >= 180 || dia >= 120:
		r.Category, r.Severity = BPCrisis, SeverityCritical
		r.Recommendation = EscalationMarker + ": emergency referral"
		r.RiskFlag = true
	}
	r.Interpretation = fmt.Sprintf("BP %.0f/%.0f mmHg (%s)", sys, dia, r.Category)
	return r
}

// Random blood sugar categories.
const (
	RBSNormal      = "Normal"
	RBSPreDiabetic = "Pre-Diabetic"
	RBSDiabetic    = "Diabetic"
)

// RandomBloodSugar classifies a random capillary glucose in mg/dL.
func RandomBloodSugar(mgdl Measure) Result {
	v, ok := mgdl.Positive()
	if !ok {
		return Invalid(InstrumentRBS, "blood sugar must be a positive number")
	}
	r := Result{Instrument: InstrumentRBS, Value: valuePtr(v)}
	switch {
	case v < 140:
		r.Category, r.Severity = RBSNormal, SeverityLow
	case v < 200:
		r.Category, r.Severity = RBSPreDiabetic, SeverityModerate
		r.Recommendation = "Fasting glucose or HbA1c to confirm"
	default:
		r.Category, r.Severity = RBSDiabetic, SeverityHigh
		r.Recommendation = "Refer for confirmatory testing and diabetes care"
		r.RiskFlag = true
	}
	r.Interpretation = fmt.Sprintf("RBS %.0f mg/dL (%s)", v, r.Category)
	return r
}
