// Package analytics rolls a student's families, members and visits up into
// the community health report.
package analytics

import (
	"time"

	"github.com/turtacn/FamilyCare-Analytics/internal/domain/family"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/member"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/visit"
)

// Section names, used to report degraded sections.
const (
	SectionDemographics  = "demographics"
	SectionMaternal      = "maternal_health"
	SectionChild         = "child_health"
	SectionMorbidity     = "morbidity_profile"
	SectionSocioEconomic = "socio_economic"
	SectionEnvironmental = "environmental_health"
	SectionLogbook       = "logbook"
)

// Input is everything the aggregator reads. Visits are already projected
// into typed payloads.
type Input struct {
	Families        []*family.Family
	Members         []*member.Member
	Visits          []visit.Record
	ReflectionCount int
}

// GenderRatio counts males and females; Ratio is females per 1000 males.
type GenderRatio struct {
	Male   int `json:"male"`
	Female int `json:"female"`
	Ratio  int `json:"ratio"`
}

// AgeDistribution buckets members into four inclusive age bands.
type AgeDistribution struct {
	Age0To5   int `json:"0-5"`
	Age6To18  int `json:"6-18"`
	Age19To60 int `json:"19-60"`
	Age61Plus int `json:"60+"`
}

// Total is the number of members counted.
func (d AgeDistribution) Total() int {
	return d.Age0To5 + d.Age6To18 + d.Age19To60 + d.Age61Plus
}

// Demographics describes the surveyed population. DependencyRatio is
// dependents per 100 working-age members.
type Demographics struct {
	TotalFamilies   int             `json:"total_families"`
	TotalMembers    int             `json:"total_members"`
	GenderRatio     GenderRatio     `json:"gender_ratio"`
	AgeDistribution AgeDistribution `json:"age_distribution"`
	DependencyRatio float64         `json:"dependency_ratio"`
}

// MaternalHealth covers antenatal registrations, judged on each member's
// latest antenatal visit.
type MaternalHealth struct {
	Registered       int     `json:"registered"`
	HighRisk         int     `json:"high_risk"`
	AverageANCVisits float64 `json:"average_anc_visits"`
}

// ChildHealth counts members aged five or under; immunization and nutrition
// come from their under-5 visits.
type ChildHealth struct {
	TotalUnder5    int `json:"total_under5"`
	FullyImmunized int `json:"fully_immunized"`
	Malnourished   int `json:"malnourished"`
}

// MorbidityProfile tallies diagnosed and screened conditions by category.
type MorbidityProfile map[string]int

// SocioEconomicDistribution counts families by income class. Families
// without a socio-economic visit are not counted.
type SocioEconomicDistribution struct {
	TotalFamilies int            `json:"total_families"`
	Counts        map[string]int `json:"counts"`
	Percentages   map[string]int `json:"percentages"`
}

// EnvironmentalHealth gives sanitation coverage as whole percentages of
// families with an environmental visit.
type EnvironmentalHealth struct {
	TotalFamilies       int `json:"total_families"`
	SafeWaterPercent    int `json:"safe_water_percent"`
	LatrinePercent      int `json:"latrine_percent"`
	WasteSegregationPct int `json:"waste_segregation_percent"`
}

// Logbook counts the student's field activity.
type Logbook struct {
	TotalVisits      int `json:"total_visits"`
	TotalReflections int `json:"total_reflections"`
}

// Report is the community health report. It is derived data with no
// identity of its own.
type Report struct {
	StudentID        string                    `json:"student_id"`
	Demographics     Demographics              `json:"demographics"`
	Maternal         MaternalHealth            `json:"maternal_health"`
	Child            ChildHealth               `json:"child_health"`
	Morbidity        MorbidityProfile          `json:"morbidity_profile"`
	SocioEconomic    SocioEconomicDistribution `json:"socio_economic"`
	Environmental    EnvironmentalHealth       `json:"environmental_health"`
	Logbook          Logbook                   `json:"logbook"`
	DegradedSections []string                  `json:"degraded_sections,omitempty"`
	GeneratedAt      time.Time                 `json:"generated_at"`
}
