package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/FamilyCare-Analytics/internal/application/analytics"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/FamilyCare-Analytics/pkg/errors"
)

// reportView renders a community report as section/metric/value rows.
type reportView struct {
	*analytics.Report
	ArchiveKey string `json:"archive_key,omitempty"`
}

type metric struct {
	section, name, value string
}

func (v reportView) metrics() []metric {
	r := v.Report
	itoa := strconv.Itoa
	pct := func(n int) string { return itoa(n) + "%" }
	ms := []metric{
		{analytics.SectionDemographics, "total_families", itoa(r.Demographics.TotalFamilies)},
		{analytics.SectionDemographics, "total_members", itoa(r.Demographics.TotalMembers)},
		{analytics.SectionDemographics, "male", itoa(r.Demographics.GenderRatio.Male)},
		{analytics.SectionDemographics, "female", itoa(r.Demographics.GenderRatio.Female)},
		{analytics.SectionDemographics, "females_per_1000_males", itoa(r.Demographics.GenderRatio.Ratio)},
		{analytics.SectionDemographics, "age_0_5", itoa(r.Demographics.AgeDistribution.Age0To5)},
		{analytics.SectionDemographics, "age_6_18", itoa(r.Demographics.AgeDistribution.Age6To18)},
		{analytics.SectionDemographics, "age_19_60", itoa(r.Demographics.AgeDistribution.Age19To60)},
		{analytics.SectionDemographics, "age_60_plus", itoa(r.Demographics.AgeDistribution.Age61Plus)},
		{analytics.SectionDemographics, "dependency_ratio", strconv.FormatFloat(r.Demographics.DependencyRatio, 'f', -1, 64)},
		{analytics.SectionMaternal, "registered", itoa(r.Maternal.Registered)},
		{analytics.SectionMaternal, "high_risk", itoa(r.Maternal.HighRisk)},
		{analytics.SectionMaternal, "average_anc_visits", strconv.FormatFloat(r.Maternal.AverageANCVisits, 'f', -1, 64)},
		{analytics.SectionChild, "total_under5", itoa(r.Child.TotalUnder5)},
		{analytics.SectionChild, "fully_immunized", itoa(r.Child.FullyImmunized)},
		{analytics.SectionChild, "malnourished", itoa(r.Child.Malnourished)},
	}
	for _, k := range sortedKeys(r.Morbidity) {
		ms = append(ms, metric{analytics.SectionMorbidity, k, itoa(r.Morbidity[k])})
	}
	ms = append(ms, metric{analytics.SectionSocioEconomic, "total_families", itoa(r.SocioEconomic.TotalFamilies)})
	for _, k := range sortedKeys(r.SocioEconomic.Counts) {
		ms = append(ms, metric{
			analytics.SectionSocioEconomic, k,
			fmt.Sprintf("%d (%s)", r.SocioEconomic.Counts[k], pct(r.SocioEconomic.Percentages[k])),
		})
	}
	ms = append(ms,
		metric{analytics.SectionEnvironmental, "total_families", itoa(r.Environmental.TotalFamilies)},
		metric{analytics.SectionEnvironmental, "safe_water", pct(r.Environmental.SafeWaterPercent)},
		metric{analytics.SectionEnvironmental, "latrine", pct(r.Environmental.LatrinePercent)},
		metric{analytics.SectionEnvironmental, "waste_segregation", pct(r.Environmental.WasteSegregationPct)},
		metric{analytics.SectionLogbook, "total_visits", itoa(r.Logbook.TotalVisits)},
		metric{analytics.SectionLogbook, "total_reflections", itoa(r.Logbook.TotalReflections)},
	)
	return ms
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (v reportView) TableHeaders() []string { return []string{"SECTION", "METRIC", "VALUE"} }

func (v reportView) TableRows() [][]string {
	ms := v.metrics()
	rows := make([][]string, len(ms))
	for i, m := range ms {
		rows[i] = []string{m.section, m.name, m.value}
	}
	return rows
}

func (v reportView) Text(bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Community health report for %s (generated %s)\n",
		v.StudentID, v.GeneratedAt.UTC().Format("2006-01-02 15:04:05Z"))
	if len(v.DegradedSections) > 0 {
		fmt.Fprintf(&sb, "Degraded sections: %s\n", strings.Join(v.DegradedSections, ", "))
	}
	section := ""
	for _, m := range v.metrics() {
		if m.section != section {
			section = m.section
			fmt.Fprintf(&sb, "\n[%s]\n", section)
		}
		fmt.Fprintf(&sb, "  %-24s %s\n", m.name, m.value)
	}
	if v.ArchiveKey != "" {
		fmt.Fprintf(&sb, "\nArchived as %s\n", v.ArchiveKey)
	}
	return sb.String()
}

func newReportCmd(deps Dependencies) *cobra.Command {
	var archive bool
	cmd := &cobra.Command{
		Use:   "report <student-id>",
		Short: "Build the community health report for a student",
		Long: "Report aggregates the student's families, members and visits into the\n" +
			"seven report sections. Sections whose data could not be fetched are\n" +
			"zeroed and listed as degraded. With --archive a snapshot is stored in\n" +
			"the report archive.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			studentID := strings.TrimSpace(args[0])
			if studentID == "" {
				return errors.NewValidation("student id is required")
			}

			svc, closeFn, err := deps.Reports(c)
			if err != nil {
				return err
			}
			defer closeFn()

			ctx, cancel := commandContext(cmd, c)
			defer cancel()

			view := reportView{}
			if archive {
				res, err := svc.Archive(ctx, studentID)
				if err != nil {
					return err
				}
				view.Report, view.ArchiveKey = res.Report, res.Key
			} else {
				report, err := svc.Generate(ctx, studentID)
				if err != nil {
					return err
				}
				view.Report = report
			}

			if len(view.DegradedSections) > 0 {
				c.Logger.Warn("report is degraded",
					logging.Strings("sections", view.DegradedSections))
			}
			return PrintResult(cmd, view)
		},
	}
	cmd.Flags().BoolVar(&archive, "archive", false, "store a snapshot in the report archive")
	return cmd
}
