package client

import (
	"context"
	"time"
)

// GenderRatio counts males and females; Ratio is females per 1000 males.
type GenderRatio struct {
	Male   int `json:"male"`
	Female int `json:"female"`
	Ratio  int `json:"ratio"`
}

// AgeDistribution buckets members into age bands.
type AgeDistribution struct {
	Age0To5   int `json:"0-5"`
	Age6To18  int `json:"6-18"`
	Age19To60 int `json:"19-60"`
	Age61Plus int `json:"60+"`
}

// Demographics describes the surveyed population.
type Demographics struct {
	TotalFamilies   int             `json:"total_families"`
	TotalMembers    int             `json:"total_members"`
	GenderRatio     GenderRatio     `json:"gender_ratio"`
	AgeDistribution AgeDistribution `json:"age_distribution"`
	DependencyRatio float64         `json:"dependency_ratio"`
}

// MaternalHealth covers antenatal registrations.
type MaternalHealth struct {
	Registered       int     `json:"registered"`
	HighRisk         int     `json:"high_risk"`
	AverageANCVisits float64 `json:"average_anc_visits"`
}

// ChildHealth covers under-fives.
type ChildHealth struct {
	TotalUnder5    int `json:"total_under5"`
	FullyImmunized int `json:"fully_immunized"`
	Malnourished   int `json:"malnourished"`
}

// SocioEconomic counts families by income class.
type SocioEconomic struct {
	TotalFamilies int            `json:"total_families"`
	Counts        map[string]int `json:"counts"`
	Percentages   map[string]int `json:"percentages"`
}

// EnvironmentalHealth gives sanitation coverage percentages.
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

// Report is a student's community health report.
type Report struct {
	StudentID        string              `json:"student_id"`
	Demographics     Demographics        `json:"demographics"`
	Maternal         MaternalHealth      `json:"maternal_health"`
	Child            ChildHealth         `json:"child_health"`
	Morbidity        map[string]int      `json:"morbidity_profile"`
	SocioEconomic    SocioEconomic       `json:"socio_economic"`
	Environmental    EnvironmentalHealth `json:"environmental_health"`
	Logbook          Logbook             `json:"logbook"`
	DegradedSections []string            `json:"degraded_sections,omitempty"`
	GeneratedAt      time.Time           `json:"generated_at"`
}

// Degraded reports whether any section was zeroed.
func (r *Report) Degraded() bool { return len(r.DegradedSections) > 0 }

// ArchivedReport is a report and the key of its stored snapshot.
type ArchivedReport struct {
	Key    string  `json:"key"`
	Report *Report `json:"report"`
}

// ReportsClient builds community reports.
type ReportsClient struct {
	client *Client
}

// Get builds a fresh report. A degraded report is not an error; check
// Degraded.
func (r *ReportsClient) Get(ctx context.Context, studentID string) (*Report, error) {
	var out Report
	if err := r.client.get(ctx, "/students/"+escape(studentID)+"/report", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Archive builds a report and stores a snapshot of it.
func (r *ReportsClient) Archive(ctx context.Context, studentID string) (*ArchivedReport, error) {
	var out ArchivedReport
	if err := r.client.post(ctx, "/students/"+escape(studentID)+"/report/archive", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
