package analytics

import (
	"math"
	"sort"
	"strings"

	"github.com/turtacn/FamilyCare-Analytics/internal/domain/assessment"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/member"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/scoring"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/visit"
	"github.com/turtacn/FamilyCare-Analytics/pkg/types/common"
)

// Screened morbidity categories and their thresholds.
const (
	CategoryHypertensionScreened = "Hypertension (Screened)"
	CategoryDiabetesScreened     = "Diabetes (Screened)"

	screenedSystolic = 140
	screenedSugar    = 200
	highRiskFactors  = 2
)

// diagnosisKeywords maps diagnosis titles to categories; the first matching
// row wins.
var diagnosisKeywords = []struct {
	keywords []string
	category string
}{
	{[]string{"diabetes", "sugar"}, "Diabetes"},
	{[]string{"bp", "hyper"}, "Hypertension"},
	{[]string{"copd", "asthma"}, "Respiratory"},
	{[]string{"anemia"}, "Anemia"},
}

// CategoryOther collects diagnoses that match no keyword.
const CategoryOther = "Other"

// Aggregate computes every report section. It only reads its input, so equal
// inputs give equal reports; the caller stamps GeneratedAt.
func Aggregate(studentID string, in Input) *Report {
	members := indexMembers(in.Members)
	return &Report{
		StudentID:     studentID,
		Demographics:  ComputeDemographics(len(in.Families), in.Members),
		Maternal:      ComputeMaternal(members, in.Visits),
		Child:         ComputeChild(in.Members, members, in.Visits),
		Morbidity:     ComputeMorbidity(in.Members, members, in.Visits),
		SocioEconomic: ComputeSocioEconomic(in.Visits),
		Environmental: ComputeEnvironmental(in.Visits),
		Logbook:       Logbook{TotalVisits: len(in.Visits), TotalReflections: in.ReflectionCount},
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Demographics
// ─────────────────────────────────────────────────────────────────────────────

// ComputeGenderRatio returns females per 1000 males, 0 when there are no
// males. Other genders are not counted on either side.
func ComputeGenderRatio(members []*member.Member) GenderRatio {
	var g GenderRatio
	for _, m := range members {
		switch m.Gender {
		case common.GenderMale:
			g.Male++
		case common.GenderFemale:
			g.Female++
		}
	}
	if g.Male > 0 {
		g.Ratio = int(math.Round(float64(g.Female) / float64(g.Male) * 1000))
	}
	return g
}

// ComputeAgeDistribution buckets ages into 0-5, 6-18, 19-60 and 61+.
func ComputeAgeDistribution(members []*member.Member) AgeDistribution {
	var d AgeDistribution
	for _, m := range members {
		switch {
		case m.Age <= 5:
			d.Age0To5++
		case m.Age <= 18:
			d.Age6To18++
		case m.Age <= 60:
			d.Age19To60++
		default:
			d.Age61Plus++
		}
	}
	return d
}

// ComputeDemographics fills the demographics section.
func ComputeDemographics(familyCount int, members []*member.Member) Demographics {
	ages := ComputeAgeDistribution(members)
	d := Demographics{
		TotalFamilies:   familyCount,
		TotalMembers:    len(members),
		GenderRatio:     ComputeGenderRatio(members),
		AgeDistribution: ages,
	}
	if ages.Age19To60 > 0 {
		dependents := ages.Age0To5 + ages.Age6To18 + ages.Age61Plus
		d.DependencyRatio = round1(float64(dependents) / float64(ages.Age19To60) * 100)
	}
	return d
}

// ─────────────────────────────────────────────────────────────────────────────
// Maternal and child health
// ─────────────────────────────────────────────────────────────────────────────

// ComputeMaternal counts members with an antenatal visit. A registration is
// high risk when the latest antenatal visit lists more than two risk factors.
func ComputeMaternal(members map[string]*member.Member, visits []visit.Record) MaternalHealth {
	latest := latestBy(resolved(members, ofProtocol(visits, assessment.FormAntenatalCare)), func(r visit.Record) string {
		return r.MemberID
	})

	var out MaternalHealth
	total := 0.0
	for _, rec := range latest {
		anc, ok := rec.Payload.(visit.Antenatal)
		if !ok {
			continue
		}
		out.Registered++
		if len(anc.RiskFactors) > highRiskFactors {
			out.HighRisk++
		}
		if n, ok := anc.ANCVisits.Value(); ok && n > 0 {
			total += n
		}
	}
	if out.Registered > 0 {
		out.AverageANCVisits = round1(total / float64(out.Registered))
	}
	return out
}

// ComputeChild counts under-fives, those with an up-to-date immunization
// record and those with a non-green growth zone.
func ComputeChild(all []*member.Member, members map[string]*member.Member, visits []visit.Record) ChildHealth {
	byMember := map[string][]visit.Under5{}
	for _, rec := range resolved(members, ofProtocol(visits, assessment.FormUnder5)) {
		if p, ok := rec.Payload.(visit.Under5); ok {
			byMember[rec.MemberID] = append(byMember[rec.MemberID], p)
		}
	}

	var out ChildHealth
	for _, m := range all {
		if m.Age > 5 {
			continue
		}
		out.TotalUnder5++
		immunized, malnourished := false, false
		for _, p := range byMember[m.ID] {
			if p.Immunization == assessment.ImmunizationUpToDate {
				immunized = true
			}
			if p.Nutrition != "" && p.Nutrition != assessment.NutritionGreen {
				malnourished = true
			}
		}
		if immunized {
			out.FullyImmunized++
		}
		if malnourished {
			out.Malnourished++
		}
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Morbidity
// ─────────────────────────────────────────────────────────────────────────────

// CategorizeDiagnosis maps a diagnosis title to a morbidity category.
func CategorizeDiagnosis(title string) string {
	t := strings.ToLower(title)
	for _, row := range diagnosisKeywords {
		for _, kw := range row.keywords {
			if strings.Contains(t, kw) {
				return row.category
			}
		}
	}
	return CategoryOther
}

// ComputeMorbidity tallies diagnosis titles by keyword and adds screened
// hypertension and diabetes from NCD screening visits, one per visit.
func ComputeMorbidity(all []*member.Member, members map[string]*member.Member, visits []visit.Record) MorbidityProfile {
	out := MorbidityProfile{}
	for _, m := range all {
		for _, p := range m.Problems {
			out[CategorizeDiagnosis(p.Title)]++
		}
	}
	for _, rec := range resolved(members, ofProtocol(visits, assessment.FormNCDScreening)) {
		ncd, ok := rec.Payload.(visit.NCDScreening)
		if !ok {
			continue
		}
		if sys, ok := ncd.Systolic.Value(); ok && sys > screenedSystolic {
			out[CategoryHypertensionScreened]++
		}
		if rbs, ok := ncd.RBS.Value(); ok && rbs > screenedSugar {
			out[CategoryDiabetesScreened]++
		}
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Household sections
// ─────────────────────────────────────────────────────────────────────────────

// ComputeSocioEconomic classifies each family's latest socio-economic visit
// by income alone. A missing income falls into the lowest class.
func ComputeSocioEconomic(visits []visit.Record) SocioEconomicDistribution {
	latest := latestBy(ofProtocol(visits, assessment.FormSocioEconomic), func(r visit.Record) string {
		return r.FamilyID
	})

	out := SocioEconomicDistribution{
		TotalFamilies: len(latest),
		Counts:        make(map[string]int, len(scoring.SocioEconomicClasses)),
		Percentages:   make(map[string]int, len(scoring.SocioEconomicClasses)),
	}
	for _, class := range scoring.SocioEconomicClasses {
		out.Counts[class] = 0
	}
	for _, rec := range latest {
		var income float64
		if ses, ok := rec.Payload.(visit.SocioEconomic); ok {
			income, _ = ses.MonthlyIncome.Value()
		}
		out.Counts[scoring.IncomeClass(income)]++
	}
	for _, class := range scoring.SocioEconomicClasses {
		out.Percentages[class] = percent(out.Counts[class], out.TotalFamilies)
	}
	return out
}

// ComputeEnvironmental reports safe water, latrine and waste segregation
// coverage over each family's latest environmental-health visit.
func ComputeEnvironmental(visits []visit.Record) EnvironmentalHealth {
	latest := latestBy(ofProtocol(visits, assessment.FormEnvironment), func(r visit.Record) string {
		return r.FamilyID
	})

	var water, latrine, waste int
	for _, rec := range latest {
		env, _ := rec.Payload.(visit.Environment)
		if assessment.IsSafeWater(env.WaterSource) {
			water++
		}
		if env.Latrine == assessment.LatrineYes {
			latrine++
		}
		if env.WasteDisposal == assessment.WasteSegregated {
			waste++
		}
	}
	n := len(latest)
	return EnvironmentalHealth{
		TotalFamilies:       n,
		SafeWaterPercent:    percent(water, n),
		LatrinePercent:      percent(latrine, n),
		WasteSegregationPct: percent(waste, n),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

func indexMembers(members []*member.Member) map[string]*member.Member {
	out := make(map[string]*member.Member, len(members))
	for _, m := range members {
		out[m.ID] = m
	}
	return out
}

func ofProtocol(visits []visit.Record, id assessment.FormID) []visit.Record {
	var out []visit.Record
	for _, r := range visits {
		if r.Payload != nil && r.Protocol() == id {
			out = append(out, r)
		}
	}
	return out
}

// resolved keeps visits whose member reference names a member of the same
// family. Other references are dropped without error.
func resolved(members map[string]*member.Member, visits []visit.Record) []visit.Record {
	var out []visit.Record
	for _, r := range visits {
		m, ok := members[r.MemberID]
		if !ok || m.FamilyID != r.FamilyID {
			continue
		}
		out = append(out, r)
	}
	return out
}

// latestBy returns the most recent visit per key. Visits are stably sorted
// by date descending, so same-date ties keep their input order.
func latestBy(visits []visit.Record, key func(visit.Record) string) []visit.Record {
	sorted := append([]visit.Record(nil), visits...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date) })

	seen := map[string]bool{}
	var out []visit.Record
	for _, r := range sorted {
		k := key(r)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}

func percent(count, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
