package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	dbt "github.com/vvka-141/pgdbtool/internal/dbtool"
)

var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Drop every database the settings declare",
	Long: `Drop runs DROP DATABASE IF EXISTS for each PostgreSQL database in the
DATABASES block, in declaration order. Databases in DATABASES_TO_IGNORE are
skipped.

Dropping asks for interactive confirmation. Use --force in scripts and CI;
it counts down before proceeding. Without a terminal and without --force
the command refuses to run.

Examples:
  # Drop after confirming in the terminal
  pgdbtool drop

  # Drop from CI, disconnecting other sessions first
  pgdbtool drop --force --terminate`,
	Args: cobra.NoArgs,
	RunE: runDrop,
}

var recreateCmd = &cobra.Command{
	Use:   "recreate",
	Short: "Drop and create every database the settings declare",
	Long: `Recreate drops and then creates the managed databases on a single
connection. It asks for the same confirmation as drop.

Examples:
  # Reset a local development server
  pgdbtool recreate --force --terminate`,
	Args: cobra.NoArgs,
	RunE: runRecreate,
}

type dropFlagValues struct {
	force, terminate bool
}

var dropFlags dropFlagValues

func init() {
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(recreateCmd)

	for _, cmd := range []*cobra.Command{dropCmd, recreateCmd} {
		cmd.Flags().BoolVar(&dropFlags.force, "force", false,
			"Skip the interactive confirmation prompt\n"+
				"A short countdown still runs before anything is dropped")
		cmd.Flags().BoolVar(&dropFlags.terminate, "terminate", false,
			"Terminate other sessions on the databases before dropping them")
	}
}

func runDrop(cmd *cobra.Command, args []string) error {
	return runDestructive(cmd, "drop", func(ctx context.Context, s *dbt.Session) error {
		return s.DropProjectDatabases(ctx)
	})
}

func runRecreate(cmd *cobra.Command, args []string) error {
	return runDestructive(cmd, "recreate", func(ctx context.Context, s *dbt.Session) error {
		if err := s.DropProjectDatabases(ctx); err != nil {
			return err
		}
		return s.CreateProjectDatabases(ctx)
	})
}

func runDestructive(cmd *cobra.Command, name string, body func(ctx context.Context, s *dbt.Session) error) error {
	env, err := newRunEnv(cmd, true)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	if err := approveDrop(ctx, env.tool, dropFlags.force, env.verbose); err != nil {
		return err
	}

	err = env.tool.WithConnection(ctx, func(s *dbt.Session) error {
		if dropFlags.terminate {
			if err := s.TerminateProjectConnections(ctx); err != nil {
				return err
			}
		}
		return body(ctx, s)
	})
	if err != nil {
		return fmt.Errorf("%s failed: %w", name, err)
	}
	return nil
}
