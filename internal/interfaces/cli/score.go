package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/FamilyCare-Analytics/internal/domain/assessment"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/scoring"
	"github.com/turtacn/FamilyCare-Analytics/internal/interfaces/http/handlers"
	"github.com/turtacn/FamilyCare-Analytics/pkg/errors"
)

var ansiColors = map[string]string{
	handlers.ColorGreen:  "\033[32m",
	handlers.ColorYellow: "\033[33m",
	handlers.ColorOrange: "\033[38;5;208m",
	handlers.ColorRed:    "\033[31m",
	handlers.ColorGray:   "\033[90m",
}

const ansiReset = "\033[0m"

func colorize(s string, sev scoring.Severity, colored bool) string {
	if !colored || s == "" {
		return s
	}
	return ansiColors[handlers.SeverityColor(sev)] + s + ansiReset
}

func formatValue(r scoring.Result) string {
	v, ok := r.Number()
	if !ok {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ─── Answer input ───────────────────────────────────────────────────────────

type answerOptions struct {
	json string
	file string
}

func (o *answerOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.json, "answers", "", "answers as a JSON object")
	cmd.Flags().StringVarP(&o.file, "file", "f", "", "read answers from a JSON file (- for stdin)")
	cmd.MarkFlagsMutuallyExclusive("answers", "file")
}

// load merges the JSON answers with key=value pairs; pairs win.
func (o *answerOptions) load(stdin io.Reader, pairs []string) (scoring.Answers, error) {
	answers := scoring.Answers{}

	var raw []byte
	switch {
	case o.json != "":
		raw = []byte(o.json)
	case o.file == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "failed to read answers from stdin")
		}
		raw = b
	case o.file != "":
		b, err := os.ReadFile(o.file)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrCodeBadRequest, "failed to read answers file %s", o.file)
		}
		raw = b
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &answers); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeValidation, "answers must be a JSON object")
		}
	}

	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, errors.Newf(errors.ErrCodeValidation, "invalid answer %q, want key=value", p)
		}
		answers[strings.TrimSpace(k)] = parseScalar(v)
	}
	return answers, nil
}

// parseScalar keeps numbers numeric and booleans boolean; everything else
// stays a string.
func parseScalar(s string) any {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

// ─── score ──────────────────────────────────────────────────────────────────

// ScoreView is a single instrument result.
type ScoreView struct {
	scoring.Result
	Color string `json:"color"`
}

func (v ScoreView) TableHeaders() []string {
	return []string{"INSTRUMENT", "VALUE", "CATEGORY", "SEVERITY", "RISK"}
}

func (v ScoreView) TableRows() [][]string {
	return [][]string{resultRow(v.Result)}
}

func (v ScoreView) Text(colored bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s  %s\n", v.Instrument, formatValue(v.Result), colorize(v.Category, v.Severity, colored))
	if v.Interpretation != "" {
		fmt.Fprintf(&sb, "  %s\n", v.Interpretation)
	}
	if v.Recommendation != "" {
		fmt.Fprintf(&sb, "  Recommendation: %s\n", v.Recommendation)
	}
	if v.SuicideRisk {
		fmt.Fprintf(&sb, "  %s\n", colorize("Suicide risk flagged", scoring.SeverityCritical, colored))
	}
	return sb.String()
}

func resultRow(r scoring.Result) []string {
	risk := ""
	if r.RiskFlag {
		risk = "yes"
	}
	sev := string(r.Severity)
	if sev == "" {
		sev = "-"
	}
	return []string{string(r.Instrument), formatValue(r), r.Category, sev, risk}
}

func newScoreCmd(deps Dependencies) *cobra.Command {
	var in answerOptions
	cmd := &cobra.Command{
		Use:   "score <instrument> [key=value...]",
		Short: "Score one clinical instrument",
		Long: "Score runs one instrument over the given answers. Answers come from\n" +
			"--answers, --file or key=value arguments. Incomplete answers produce an\n" +
			"Invalid result rather than an error.",
		Example: "  famcare score bmi weight=70 height=175\n" +
			"  famcare score phq9 --file answers.json -o json",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			answers, err := in.load(cmd.InOrStdin(), args[1:])
			if err != nil {
				return err
			}
			r, err := deps.Calculator(c).Score(cmd.Context(), args[0], answers)
			if err != nil {
				return err
			}
			return PrintResult(cmd, ScoreView{Result: r, Color: handlers.SeverityColor(r.Severity)})
		},
	}
	in.register(cmd)
	return cmd
}

type instrumentList []InstrumentView

// InstrumentView lists one instrument and its inputs.
type InstrumentView struct {
	Instrument scoring.Instrument `json:"instrument"`
	Inputs     []string           `json:"inputs"`
}

func (l instrumentList) TableHeaders() []string { return []string{"INSTRUMENT", "INPUTS"} }

func (l instrumentList) TableRows() [][]string {
	rows := make([][]string, len(l))
	for i, v := range l {
		rows[i] = []string{string(v.Instrument), strings.Join(v.Inputs, ",")}
	}
	return rows
}

func (l instrumentList) Text(bool) string {
	var sb strings.Builder
	for _, v := range l {
		fmt.Fprintf(&sb, "%-22s %s\n", v.Instrument, strings.Join(v.Inputs, ", "))
	}
	return sb.String()
}

func newInstrumentsCmd(deps Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "instruments",
		Short: "List instruments and the answer keys they read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			infos := deps.Calculator(c).Instruments()
			out := make(instrumentList, len(infos))
			for i, info := range infos {
				out[i] = InstrumentView{Instrument: info.Instrument, Inputs: info.Inputs}
			}
			return PrintResult(cmd, out)
		},
	}
}

// ─── forms ──────────────────────────────────────────────────────────────────

type formList []assessment.Schema

func (l formList) TableHeaders() []string {
	return []string{"ID", "TITLE", "FIELDS", "MEMBER", "CALCULATES"}
}

func (l formList) TableRows() [][]string {
	rows := make([][]string, len(l))
	for i, s := range l {
		member := ""
		if s.MemberScoped {
			member = "yes"
		}
		rows[i] = []string{string(s.ID), s.Title, strconv.Itoa(len(s.Fields)), member, strings.Join(s.AutoCalculate, ",")}
	}
	return rows
}

func (l formList) Text(bool) string {
	var sb strings.Builder
	for _, s := range l {
		fmt.Fprintf(&sb, "%-24s %s\n", s.ID, s.Title)
	}
	return sb.String()
}

type formView struct {
	assessment.Schema
}

func (v formView) TableHeaders() []string {
	return []string{"KEY", "LABEL", "TYPE", "REQUIRED", "RANGE", "OPTIONS"}
}

func (v formView) TableRows() [][]string {
	rows := make([][]string, len(v.Fields))
	for i, f := range v.Fields {
		req := ""
		if f.Required {
			req = "yes"
		}
		rows[i] = []string{f.Key, f.Label, string(f.Type), req, fieldRange(f), strings.Join(f.Options, "|")}
	}
	return rows
}

func (v formView) Text(bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s)\n", v.Title, v.ID)
	if v.Instrument != "" {
		fmt.Fprintf(&sb, "Instrument: %s\n", v.Instrument)
	}
	if len(v.AutoCalculate) > 0 {
		fmt.Fprintf(&sb, "Calculates: %s\n", strings.Join(v.AutoCalculate, ", "))
	}
	for _, f := range v.Fields {
		mark := " "
		if f.Required {
			mark = "*"
		}
		fmt.Fprintf(&sb, " %s %-28s %-12s %s\n", mark, f.Key, f.Type, f.Label)
	}
	return sb.String()
}

func fieldRange(f assessment.Field) string {
	if f.Min == nil && f.Max == nil {
		return ""
	}
	lo, hi := "", ""
	if f.Min != nil {
		lo = strconv.FormatFloat(*f.Min, 'f', -1, 64)
	}
	if f.Max != nil {
		hi = strconv.FormatFloat(*f.Max, 'f', -1, 64)
	}
	return lo + ".." + hi
}

// ResultsView is the dispatcher output for one form, keyed by result name.
type ResultsView map[string]scoring.Result

func (v ResultsView) keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (v ResultsView) TableHeaders() []string {
	return []string{"RESULT", "INSTRUMENT", "VALUE", "CATEGORY", "SEVERITY", "RISK"}
}

func (v ResultsView) TableRows() [][]string {
	keys := v.keys()
	rows := make([][]string, len(keys))
	for i, k := range keys {
		rows[i] = append([]string{k}, resultRow(v[k])...)
	}
	return rows
}

func (v ResultsView) Text(colored bool) string {
	if len(v) == 0 {
		return "No calculations for this form.\n"
	}
	var sb strings.Builder
	for _, k := range v.keys() {
		r := v[k]
		fmt.Fprintf(&sb, "%-12s %-8s %s\n", k, formatValue(r), colorize(r.Category, r.Severity, colored))
	}
	return sb.String()
}

func newFormsCmd(deps Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forms",
		Short: "Inspect assessment forms",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List every form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			return PrintResult(cmd, formList(deps.Calculator(c).Forms()))
		},
	}

	show := &cobra.Command{
		Use:   "show <form>",
		Short: "Show the fields of one form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			schema, err := deps.Calculator(c).Form(args[0])
			if err != nil {
				return err
			}
			return PrintResult(cmd, formView{Schema: schema})
		},
	}

	var in answerOptions
	calc := &cobra.Command{
		Use:   "calculate <form> [key=value...]",
		Short: "Run the calculations a form declares",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			answers, err := in.load(cmd.InOrStdin(), args[1:])
			if err != nil {
				return err
			}
			svc := deps.Calculator(c)
			if _, err := svc.Form(args[0]); err != nil {
				return err
			}
			results, err := svc.Calculate(cmd.Context(), args[0], answers)
			if err != nil {
				return err
			}
			return PrintResult(cmd, ResultsView(results))
		},
	}
	in.register(calc)

	cmd.AddCommand(list, show, calc)
	return cmd
}
