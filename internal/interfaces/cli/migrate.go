package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/FamilyCare-Analytics/pkg/errors"
)

// MigrationStatus is printed by migrate version.
type MigrationStatus struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
}

func (s MigrationStatus) Text(bool) string {
	if s.Dirty {
		return fmt.Sprintf("schema version %d (dirty)\n", s.Version)
	}
	return fmt.Sprintf("schema version %d\n", s.Version)
}

func (s MigrationStatus) TableHeaders() []string { return []string{"VERSION", "DIRTY"} }

func (s MigrationStatus) TableRows() [][]string {
	return [][]string{{fmt.Sprint(s.Version), fmt.Sprint(s.Dirty)}}
}

func newMigrateCmd(deps Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			if err := deps.Migrator(c).Up(); err != nil {
				return err
			}
			PrintSuccess(cmd, "migrations applied")
			return nil
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if steps < 1 {
				return errors.Newf(errors.ErrCodeValidation, "--steps must be >= 1, got %d", steps)
			}
			c, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			if err := deps.Migrator(c).Down(steps); err != nil {
				return err
			}
			PrintSuccess(cmd, fmt.Sprintf("rolled back %d migration(s)", steps))
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			v, dirty, err := deps.Migrator(c).Version()
			if err != nil {
				return err
			}
			return PrintResult(cmd, MigrationStatus{Version: v, Dirty: dirty})
		},
	}

	force := &cobra.Command{
		Use:   "force <version>",
		Short: "Mark the schema as a version without running migrations",
		Long:  "Force clears a dirty schema state after a failed migration was fixed by hand.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil || v < 0 {
				return errors.Newf(errors.ErrCodeValidation, "invalid version %q", args[0])
			}
			c, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			if err := deps.Migrator(c).Force(v); err != nil {
				return err
			}
			PrintSuccess(cmd, fmt.Sprintf("schema forced to version %d", v))
			return nil
		},
	}

	cmd.AddCommand(up, down, version, force)
	return cmd
}
