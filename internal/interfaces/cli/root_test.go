package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/FamilyCare-Analytics/internal/application/calculator"
	"github.com/turtacn/FamilyCare-Analytics/internal/application/reporting"
	"github.com/turtacn/FamilyCare-Analytics/internal/config"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/FamilyCare-Analytics/pkg/errors"
)

// testDeps uses the real calculator and fails any command that would open
// infrastructure unless the test overrides it.
func testDeps(t *testing.T) Dependencies {
	return Dependencies{
		Calculator: func(*CLIContext) calculator.Service {
			return calculator.NewService(nil, logging.NewNopLogger())
		},
		Reports: func(*CLIContext) (reporting.Service, func(), error) {
			t.Fatal("unexpected report dependency")
			return nil, nil, nil
		},
		Migrator: func(*CLIContext) Migrator {
			t.Fatal("unexpected migrator dependency")
			return nil
		},
	}
}

func execute(t *testing.T, deps Dependencies, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand(deps)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestNewRootCommand_Structure(t *testing.T) {
	cmd := NewRootCommand(testDeps(t))
	assert.Equal(t, "famcare", cmd.Use)
	assert.NotEmpty(t, cmd.Short)

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"score", "instruments", "forms", "report", "migrate", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}

	for _, flag := range []string{"config", "log-level", "output", "verbose", "no-color", "timeout"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "missing flag %s", flag)
	}
	assert.Equal(t, "o", cmd.PersistentFlags().Lookup("output").Shorthand)
	assert.Equal(t, OutputText, cmd.PersistentFlags().Lookup("output").DefValue)
}

func TestRoot_InvalidOutputFormat(t *testing.T) {
	_, _, err := execute(t, testDeps(t), "-o", "yaml", "version")
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestRoot_MissingConfigFile(t *testing.T) {
	_, _, err := execute(t, testDeps(t), "--config", "/nonexistent/famcare.yaml", "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config initialization failed")
}

func TestVersionCmd(t *testing.T) {
	tests := []struct {
		name   string
		format string
		want   string
	}{
		{"text", OutputText, "famcare " + config.Version},
		{"json", OutputJSON, `"version": "` + config.Version + `"`},
		{"table", OutputTable, "VERSION"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			out, _, err := execute(t, testDeps(t), "-o", tc.format, "version")
			require.NoError(t, err)
			assert.Contains(t, out, tc.want)
		})
	}
}

func TestPrintResult_TableFallsBackToText(t *testing.T) {
	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetContext(context.WithValue(context.Background(), cliContextKey{}, &CLIContext{OutputFormat: OutputTable, NoColor: true}))

	require.NoError(t, PrintResult(cmd, "plain value"))
	assert.Equal(t, "plain value\n", out.String())

	out.Reset()
	require.NoError(t, PrintResult(cmd, VersionInfo{Version: config.Version}))
	assert.Contains(t, out.String(), "VERSION")
}

func TestGetCLIContext_NotInitialized(t *testing.T) {
	_, err := GetCLIContext(&cobra.Command{})
	assert.True(t, errors.IsValidation(err))
}

func TestPrintError(t *testing.T) {
	cmd := &cobra.Command{}
	var stderr bytes.Buffer
	cmd.SetErr(&stderr)

	PrintError(cmd, errors.NewValidation("bad input"))
	assert.Contains(t, stderr.String(), "Error ["+string(errors.ErrCodeValidation)+"]")

	stderr.Reset()
	PrintError(cmd, assert.AnError)
	assert.Equal(t, "Error: "+assert.AnError.Error()+"\n", stderr.String())

	stderr.Reset()
	PrintError(cmd, nil)
	assert.Empty(t, stderr.String())
}

func TestFormatTable(t *testing.T) {
	out := FormatTable([]string{"A", "LONG"}, [][]string{{"xyz", "1"}, {"q"}})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "A    LONG", lines[0])
	assert.Equal(t, "---  ----", lines[1])
	assert.Equal(t, "xyz  1", lines[2])
	assert.Equal(t, "q    ", lines[3])

	assert.Empty(t, FormatTable(nil, nil))
}

func TestPrintResult_WithoutContextFallsBackToJSON(t *testing.T) {
	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)
	require.NoError(t, PrintResult(cmd, map[string]int{"a": 1}))
	assert.JSONEq(t, `{"a":1}`, out.String())
}
