package scoring

import "fmt"

type item struct {
	key string
	max int
}

// tier covers totals up to and including upTo.
type tier struct {
	upTo           int
	category       string
	severity       Severity
	interpretation string
	recommendation string
	risk           bool
}

// screener sums integer item scores and maps the total through an ordinal
// tier table. Tiers are ascending and the last one ends at the maximum total.
type screener struct {
	instrument Instrument
	items      []item
	tiers      []tier
}

// Items returns the answer keys the screener reads, in order.
func (s screener) Items() []string {
	keys := make([]string, len(s.items))
	for i, it := range s.items {
		keys[i] = it.key
	}
	return keys
}

func (s screener) maxTotal() int {
	n := 0
	for _, it := range s.items {
		n += it.max
	}
	return n
}

// score never fails: missing, malformed and out-of-range items count as zero.
func (s screener) score(a Answers) Result {
	total := 0
	components := make(map[string]int, len(s.items))
	for _, it := range s.items {
		v := a.Int(it.key)
		if v < 0 || v > it.max {
			v = 0
		}
		components[it.key] = v
		total += v
	}
	t := s.tiers[len(s.tiers)-1]
	for _, candidate := range s.tiers {
		if total <= candidate.upTo {
			t = candidate
			break
		}
	}
	return Result{
		Instrument:     s.instrument,
		Value:          valuePtr(float64(total)),
		Category:       t.category,
		Interpretation: fmt.Sprintf("Score %d/%d: %s", total, s.maxTotal(), t.interpretation),
		Severity:       t.severity,
		Recommendation: t.recommendation,
		RiskFlag:       t.risk,
		Components:     components,
	}
}

func numbered(prefix string, n, itemMax int) []item {
	items := make([]item, n)
	for i := range items {
		items[i] = item{key: fmt.Sprintf("%s%d", prefix, i+1), max: itemMax}
	}
	return items
}

// PHQ9SelfHarmItem is the depression screener's self-harm question.
const PHQ9SelfHarmItem = "phq9_q9"

var phq9 = screener{
	instrument: InstrumentPHQ9,
	items:      numbered("phq9_q", 9, 3),
	tiers: []tier{
		{4, "Minimal Depression", SeverityLow, "minimal or no depressive symptoms", "No action; rescreen if symptoms develop", false},
		{9, "Mild Depression", SeverityModerate, "mild depressive symptoms", "Watchful waiting; repeat PHQ-9 at follow-up", false},
		{14, "Moderate Depression", SeverityHigh, "moderate depressive symptoms", "Counselling and consider referral to a medical officer", true},
		{19, "Moderately Severe Depression", SeverityHigh, "moderately severe depressive symptoms", "Refer to a psychiatrist for evaluation and treatment", true},
		{27, "Severe Depression", SeverityCritical, "severe depressive symptoms", "Immediate referral to a psychiatrist", true},
	},
}

var gad7 = screener{
	instrument: InstrumentGAD7,
	items:      numbered("gad7_q", 7, 3),
	tiers: []tier{
		{4, "Minimal Anxiety", SeverityLow, "minimal anxiety", "No action required", false},
		{9, "Mild Anxiety", SeverityModerate, "mild anxiety", "Monitor and rescreen at follow-up", false},
		{14, "Moderate Anxiety", SeverityHigh, "moderate anxiety", "Counselling and consider referral", true},
		{21, "Severe Anxiety", SeverityCritical, "severe anxiety", "Refer to a mental health professional", true},
	},
}

var audit = screener{
	instrument: InstrumentAUDIT,
	items:      numbered("audit_q", 10, 4),
	tiers: []tier{
		{7, "Low Risk", SeverityLow, "low-risk drinking or abstinence", "Alcohol education", false},
		{15, "Hazardous", SeverityModerate, "hazardous drinking", "Simple advice focused on reducing drinking", true},
		{19, "Harmful", SeverityHigh, "harmful drinking", "Brief counselling and continued monitoring", true},
		{40, "Possible Dependence", SeverityCritical, "possible alcohol dependence", "Refer to a specialist for diagnostic evaluation and treatment", true},
	},
}

var auditC = screener{
	instrument: InstrumentAUDITC,
	items:      numbered("auditc_q", 3, 4),
	tiers: []tier{
		{3, "Low Risk", SeverityLow, "low-risk drinking", "Alcohol education", false},
		{5, "Moderate Risk", SeverityModerate, "moderate-risk drinking", "Brief advice; administer the full AUDIT", true},
		{7, "High Risk", SeverityHigh, "high-risk drinking", "Brief counselling; administer the full AUDIT", true},
		{12, "Severe Risk", SeverityCritical, "severe-risk drinking", "Refer for specialist assessment", true},
	},
}

var mmse = screener{
	instrument: InstrumentMMSE,
	items: []item{
		{"mmse_orientation_time", 5},
		{"mmse_orientation_place", 5},
		{"mmse_registration", 3},
		{"mmse_attention", 5},
		{"mmse_recall", 3},
		{"mmse_language", 8},
		{"mmse_copying", 1},
	},
	tiers: []tier{
		{9, "Severe Impairment", SeverityCritical, "severe cognitive impairment", "Refer to a neurologist or psychiatrist; assess caregiver support", true},
		{17, "Moderate Impairment", SeverityHigh, "moderate cognitive impairment", "Refer for specialist evaluation", true},
		{23, "Mild Impairment", SeverityModerate, "mild cognitive impairment", "Evaluate for reversible causes; repeat in 6 months", true},
		{30, "Normal", SeverityLow, "no cognitive impairment", "No action required", false},
	},
}

var katz = screener{
	instrument: InstrumentKatz,
	items: []item{
		{"katz_bathing", 1},
		{"katz_dressing", 1},
		{"katz_toileting", 1},
		{"katz_transferring", 1},
		{"katz_continence", 1},
		{"katz_feeding", 1},
	},
	tiers: []tier{
		{2, "Severe Dependence", SeverityHigh, "severe functional impairment", "Arrange caregiver support and home-based care", true},
		{5, "Moderate Dependence", SeverityModerate, "moderate functional impairment", "Assess needs and plan assistive support", true},
		{6, "Independent", SeverityLow, "independent in all activities of daily living", "No action required", false},
	},
}

// PHQ9 scores the depression screener. A non-zero self-harm answer escalates
// the Result to Critical with an urgent recommendation whatever the total.
// The raw answer is checked, so an out-of-range value that scores zero still
// escalates.
func PHQ9(a Answers) Result {
	r := phq9.score(a)
	if a.Int(PHQ9SelfHarmItem) >= 1 {
		r.SuicideRisk = true
		r.RiskFlag = true
		r.Severity = SeverityCritical
		r.Recommendation = EscalationMarker + ": thoughts of self-harm reported. Conduct a suicide risk assessment today and refer to a psychiatrist; do not leave the person alone if at immediate risk."
		r.Interpretation += "; self-harm ideation reported"
	}
	return r
}

// GAD7 scores the anxiety screener.
func GAD7(a Answers) Result { return gad7.score(a) }

// AUDIT scores the ten-item alcohol use screener.
func AUDIT(a Answers) Result { return audit.score(a) }

// AUDITC scores the three-item alcohol consumption screener.
func AUDITC(a Answers) Result { return auditC.score(a) }

// MMSE scores the mini-mental state examination from its domain subtotals.
func MMSE(a Answers) Result { return mmse.score(a) }

// KatzADL scores independence in activities of daily living.
func KatzADL(a Answers) Result { return katz.score(a) }
