package scoring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func items(prefix string, values ...int) Answers {
	a := Answers{}
	for i, v := range values {
		a[fmt.Sprintf("%s%d", prefix, i+1)] = v
	}
	return a
}

func total(t *testing.T, r Result) float64 {
	t.Helper()
	v, ok := r.Number()
	require.True(t, ok)
	return v
}

func TestPHQ9_Tiers(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		answers  Answers
		total    float64
		category string
		severity Severity
		risk     bool
	}{
		{"empty", Answers{}, 0, "Minimal Depression", SeverityLow, false},
		{"mild", items("phq9_q", 1, 1, 1, 1, 1), 5, "Mild Depression", SeverityModerate, false},
		{"moderate", items("phq9_q", 2, 2, 2, 2, 2), 10, "Moderate Depression", SeverityHigh, true},
		{"moderately severe", items("phq9_q", 3, 3, 3, 3, 3), 15, "Moderately Severe Depression", SeverityHigh, true},
		{"severe without self-harm", items("phq9_q", 3, 3, 3, 3, 3, 3, 3, 3, 0), 24, "Severe Depression", SeverityCritical, true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := PHQ9(tc.answers)
			assert.Equal(t, tc.total, total(t, r))
			assert.Equal(t, tc.category, r.Category)
			assert.Equal(t, tc.severity, r.Severity)
			assert.Equal(t, tc.risk, r.RiskFlag)
			assert.False(t, r.SuicideRisk)
		})
	}
}

func TestPHQ9_SelfHarmOverride(t *testing.T) {
	t.Parallel()

	for q9 := 1; q9 <= 3; q9++ {
		for _, base := range []int{0, 1, 2, 3} {
			a := items("phq9_q", base, base, base, base, base, base, base, base, q9)
			r := PHQ9(a)
			assert.True(t, r.SuicideRisk, "q9=%d base=%d", q9, base)
			assert.True(t, r.RiskFlag)
			assert.Equal(t, SeverityCritical, r.Severity)
			assert.Contains(t, r.Recommendation, EscalationMarker)
		}
	}

	// Total stays in the Minimal tier while the override still applies.
	r := PHQ9(Answers{PHQ9SelfHarmItem: "1"})
	assert.Equal(t, "Minimal Depression", r.Category)
	assert.Equal(t, float64(1), total(t, r))
	assert.True(t, r.SuicideRisk)

	// Out-of-range answers score zero but still escalate.
	for _, v := range []any{4, "5", 2.5} {
		r := PHQ9(Answers{PHQ9SelfHarmItem: v})
		assert.True(t, r.SuicideRisk, "q9=%v", v)
		assert.Equal(t, SeverityCritical, r.Severity, "q9=%v", v)
		assert.Contains(t, r.Recommendation, EscalationMarker)
	}
	r = PHQ9(Answers{PHQ9SelfHarmItem: 4})
	assert.Equal(t, 0, r.Components[PHQ9SelfHarmItem])

	for _, v := range []any{0, "0", -1, "abc", nil} {
		assert.False(t, PHQ9(Answers{PHQ9SelfHarmItem: v}).SuicideRisk, "q9=%v", v)
	}
}

func TestScreener_MalformedItemsCountZero(t *testing.T) {
	t.Parallel()

	r := GAD7(Answers{
		"gad7_q1": "2",
		"gad7_q2": "abc",
		"gad7_q3": 7,
		"gad7_q4": -1,
		"gad7_q5": 2.9,
		"gad7_q6": nil,
	})
	assert.Equal(t, float64(4), total(t, r))
	assert.Equal(t, 0, r.Components["gad7_q3"])
	assert.Equal(t, 2, r.Components["gad7_q5"])
	assert.Len(t, r.Components, 7)
}

func TestGAD7_Tiers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Minimal Anxiety", GAD7(items("gad7_q", 1, 1, 1, 1)).Category)
	assert.Equal(t, "Mild Anxiety", GAD7(items("gad7_q", 3, 3, 3)).Category)
	assert.Equal(t, "Moderate Anxiety", GAD7(items("gad7_q", 3, 3, 3, 1)).Category)
	assert.Equal(t, "Severe Anxiety", GAD7(items("gad7_q", 3, 3, 3, 3, 3, 3, 3)).Category)
}

func TestAUDIT_Tiers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Low Risk", AUDIT(items("audit_q", 4, 3)).Category)
	assert.Equal(t, "Hazardous", AUDIT(items("audit_q", 4, 4)).Category)
	assert.Equal(t, "Harmful", AUDIT(items("audit_q", 4, 4, 4, 4)).Category)
	r := AUDIT(items("audit_q", 4, 4, 4, 4, 4, 4, 4, 4, 4, 4))
	assert.Equal(t, "Possible Dependence", r.Category)
	assert.Equal(t, float64(40), total(t, r))
}

func TestAUDITC_Tiers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Low Risk", AUDITC(items("auditc_q", 1, 1, 1)).Category)
	assert.Equal(t, "Moderate Risk", AUDITC(items("auditc_q", 2, 2)).Category)
	assert.Equal(t, "High Risk", AUDITC(items("auditc_q", 4, 3)).Category)
	assert.Equal(t, "Severe Risk", AUDITC(items("auditc_q", 4, 4, 4)).Category)
}

func TestMMSE_Tiers(t *testing.T) {
	t.Parallel()

	full := Answers{
		"mmse_orientation_time":  5,
		"mmse_orientation_place": 5,
		"mmse_registration":      3,
		"mmse_attention":         5,
		"mmse_recall":            3,
		"mmse_language":          8,
		"mmse_copying":           1,
	}
	r := MMSE(full)
	assert.Equal(t, float64(30), total(t, r))
	assert.Equal(t, "Normal", r.Category)

	mild := full.Clone()
	mild["mmse_language"] = 1
	assert.Equal(t, "Mild Impairment", MMSE(mild).Category)

	assert.Equal(t, "Moderate Impairment", MMSE(Answers{"mmse_orientation_time": 5, "mmse_orientation_place": 5}).Category)
	assert.Equal(t, "Severe Impairment", MMSE(Answers{}).Category)
}

func TestKatzADL_Tiers(t *testing.T) {
	t.Parallel()

	all := Answers{
		"katz_bathing": 1, "katz_dressing": 1, "katz_toileting": 1,
		"katz_transferring": 1, "katz_continence": 1, "katz_feeding": 1,
	}
	assert.Equal(t, "Independent", KatzADL(all).Category)
	assert.Equal(t, "Moderate Dependence", KatzADL(Answers{"katz_bathing": 1, "katz_dressing": 1, "katz_feeding": 1}).Category)
	assert.Equal(t, "Severe Dependence", KatzADL(Answers{"katz_bathing": 1, "katz_feeding": 1}).Category)
}

func TestScreenerTiers_CoverFullRange(t *testing.T) {
	t.Parallel()

	for _, s := range []screener{phq9, gad7, audit, auditC, mmse, katz} {
		assert.Equal(t, s.maxTotal(), s.tiers[len(s.tiers)-1].upTo, string(s.instrument))
		for i := 1; i < len(s.tiers); i++ {
			assert.Greater(t, s.tiers[i].upTo, s.tiers[i-1].upTo, string(s.instrument))
		}
	}
}
