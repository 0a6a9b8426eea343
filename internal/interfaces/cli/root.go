// Package cli implements the famcare command-line tool.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/FamilyCare-Analytics/internal/app"
	"github.com/turtacn/FamilyCare-Analytics/internal/application/calculator"
	"github.com/turtacn/FamilyCare-Analytics/internal/application/reporting"
	"github.com/turtacn/FamilyCare-Analytics/internal/config"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/database/postgres"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/FamilyCare-Analytics/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Output formats.
const (
	OutputText  = "text"
	OutputJSON  = "json"
	OutputTable = "table"
)

type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	Verbose      bool
	NoColor      bool
	Timeout      time.Duration
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config       *config.Config
	Logger       logging.Logger
	OutputFormat string
	Verbose      bool
	NoColor      bool
	Timeout      time.Duration
}

// Migrator runs schema migrations.
type Migrator interface {
	Up() error
	Down(steps int) error
	Version() (uint, bool, error)
	Force(version int) error
}

// Dependencies builds the services commands run against. Report and
// migrate commands open infrastructure lazily so that score and forms work
// without any backing store.
type Dependencies struct {
	Calculator func(c *CLIContext) calculator.Service
	Reports    func(c *CLIContext) (reporting.Service, func(), error)
	Migrator   func(c *CLIContext) Migrator
}

// DefaultDependencies wires commands to the real infrastructure.
func DefaultDependencies() Dependencies {
	return Dependencies{
		Calculator: func(c *CLIContext) calculator.Service {
			return calculator.NewService(nil, c.Logger)
		},
		Reports: func(c *CLIContext) (reporting.Service, func(), error) {
			infra, err := app.NewInfrastructure(c.Config, c.Logger, app.Postgres|app.Archive)
			if err != nil {
				return nil, nil, err
			}
			return app.NewServices(infra).Reports, infra.Close, nil
		},
		Migrator: func(c *CLIContext) Migrator {
			return postgres.NewMigrator(
				postgres.BuildDSN(c.Config.Database),
				app.MigrationSource(c.Config.Database),
				c.Logger,
			)
		},
	}
}

// NewRootCommand creates the root command with its global flags and
// subcommands.
func NewRootCommand(deps Dependencies) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "famcare",
		Short: "FamilyCare clinical scoring and community health analytics",
		Long: "famcare scores clinical instruments, inspects assessment forms, builds\n" +
			"community health reports and manages the database schema.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", config.Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./famcare.yaml, then FAMCARE_* environment)")
	pf.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", OutputText, "output format (text, json, table)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable verbose output")
	pf.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	pf.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "timeout for commands that reach a backing store")

	cmd.AddCommand(
		newScoreCmd(deps),
		newInstrumentsCmd(deps),
		newFormsCmd(deps),
		newReportCmd(deps),
		newMigrateCmd(deps),
		newVersionCmd(),
	)
	return cmd
}

func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	switch opts.OutputFormat {
	case OutputText, OutputJSON, OutputTable:
	default:
		return errors.Newf(errors.ErrCodeValidation, "invalid output format %q (text, json, table)", opts.OutputFormat)
	}

	cfg, err := initConfig(cmd.ErrOrStderr(), opts)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}
	logger, err := initLogger(opts)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}

	cliCtx := &CLIContext{
		Config:       cfg,
		Logger:       logger,
		OutputFormat: opts.OutputFormat,
		Verbose:      opts.Verbose,
		NoColor:      opts.NoColor || os.Getenv("NO_COLOR") != "",
		Timeout:      opts.Timeout,
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cliCtx))
	return nil
}

// initConfig loads the explicit config file, else the first default path
// that exists, else the environment. When the environment alone does not
// validate the built-in defaults are used, which is enough for the
// commands that need no backing store.
func initConfig(stderr io.Writer, opts *RootOptions) (*config.Config, error) {
	if opts.ConfigPath != "" {
		return config.Load(opts.ConfigPath)
	}

	searchPaths := []string{"./famcare.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".famcare", "config.yaml"))
	}
	searchPaths = append(searchPaths, "/etc/famcare/config.yaml")
	for _, p := range searchPaths {
		if _, err := os.Stat(p); err == nil {
			return config.Load(p)
		}
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		if opts.Verbose {
			fmt.Fprintf(stderr, "Warning: %v; using defaults\n", err)
		}
		return config.NewDefaultConfig(), nil
	}
	return cfg, nil
}

// initLogger logs to stderr so that stdout carries only command output.
func initLogger(opts *RootOptions) (logging.Logger, error) {
	level := strings.ToLower(opts.LogLevel)
	if opts.Verbose {
		level = "debug"
	}
	return logging.NewLogger(logging.LogConfig{
		Level:            level,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
}

// GetCLIContext extracts the CLIContext stored by the root command.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.NewValidation("command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.NewValidation("CLI context not initialized")
	}
	return cliCtx, nil
}

// commandContext bounds a command that reaches a backing store.
func commandContext(cmd *cobra.Command, c *CLIContext) (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(cmd.Context())
	}
	return context.WithTimeout(cmd.Context(), c.Timeout)
}

// Execute runs the CLI with the real dependencies.
func Execute() error {
	rootCmd := NewRootCommand(DefaultDependencies())
	if err := rootCmd.Execute(); err != nil {
		PrintError(rootCmd, err)
		return err
	}
	return nil
}

// ─── Output ─────────────────────────────────────────────────────────────────

type tableProvider interface {
	TableHeaders() []string
	TableRows() [][]string
}

// textProvider renders itself for the text format. colored is false when
// colour is disabled.
type textProvider interface {
	Text(colored bool) string
}

// PrintResult writes data in the format selected by --output.
func PrintResult(cmd *cobra.Command, data any) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return printJSON(cmd.OutOrStdout(), data)
	}
	switch cliCtx.OutputFormat {
	case OutputJSON:
		return printJSON(cmd.OutOrStdout(), data)
	case OutputTable:
		if tp, ok := data.(tableProvider); ok {
			_, err := fmt.Fprint(cmd.OutOrStdout(), FormatTable(tp.TableHeaders(), tp.TableRows()))
			return err
		}
	}
	return printText(cmd.OutOrStdout(), data, !cliCtx.NoColor)
}

func printJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func printText(w io.Writer, data any, colored bool) error {
	var err error
	switch v := data.(type) {
	case textProvider:
		_, err = fmt.Fprint(w, v.Text(colored))
	case string:
		_, err = fmt.Fprintln(w, v)
	case fmt.Stringer:
		_, err = fmt.Fprintln(w, v.String())
	default:
		_, err = fmt.Fprintf(w, "%+v\n", v)
	}
	return err
}

// PrintError writes err to stderr, prefixed with its code when it has one.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	if code := errors.GetCode(err); code != errors.CodeUnknown {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error [%s]: %s\n", code, err.Error())
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())
}

// PrintSuccess writes a one-line confirmation to stdout.
func PrintSuccess(cmd *cobra.Command, msg string) {
	fmt.Fprintf(cmd.OutOrStdout(), "OK: %s\n", msg)
}

// FormatTable renders headers and rows as an aligned ASCII table.
func FormatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	colWidths := make([]int, len(headers))
	for i, h := range headers {
		colWidths[i] = len(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(colWidths); i++ {
			if len(row[i]) > colWidths[i] {
				colWidths[i] = len(row[i])
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		for i := range headers {
			if i > 0 {
				sb.WriteString("  ")
			}
			val := ""
			if i < len(cells) {
				val = cells[i]
			}
			if i == len(headers)-1 {
				sb.WriteString(val)
			} else {
				sb.WriteString(padRight(val, colWidths[i]))
			}
		}
		sb.WriteString("\n")
	}

	writeRow(headers)
	sep := make([]string, len(colWidths))
	for i, w := range colWidths {
		sep[i] = strings.Repeat("-", w)
	}
	writeRow(sep)
	for _, row := range rows {
		writeRow(row)
	}
	return sb.String()
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// ─── version ────────────────────────────────────────────────────────────────

// VersionInfo is printed by the version command.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
}

func (v VersionInfo) Text(bool) string {
	return fmt.Sprintf("famcare %s\ncommit: %s\nbuilt:  %s\n", v.Version, v.Commit, v.BuildDate)
}

func (v VersionInfo) TableHeaders() []string { return []string{"VERSION", "COMMIT", "BUILT"} }
func (v VersionInfo) TableRows() [][]string  { return [][]string{{v.Version, v.Commit, v.BuildDate}} }

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return PrintResult(cmd, VersionInfo{Version: config.Version, Commit: GitCommit, BuildDate: BuildDate})
		},
	}
}
