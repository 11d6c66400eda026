package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	dbt "github.com/vvka-141/pgdbtool/internal/dbtool"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create every database the settings declare",
	Long: `Create runs CREATE DATABASE for each PostgreSQL database in the DATABASES
block, in declaration order. Databases in DATABASES_TO_IGNORE are skipped.

The tool must be connected to a database outside the project, which is the
default (postgres). The first failure stops the run; databases created
before it are kept.

Examples:
  # Create the databases from ./dbtool.yaml
  pgdbtool create

  # Use another settings file and server
  pgdbtool create --settings deploy/prod.yaml -h db.internal -U admin`,
	Args: cobra.NoArgs,
	RunE: runCreate,
}

func init() {
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	env, err := newRunEnv(cmd, true)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	err = env.tool.WithConnection(ctx, func(s *dbt.Session) error {
		return s.CreateProjectDatabases(ctx)
	})
	if err != nil {
		return fmt.Errorf("create failed: %w", err)
	}
	return nil
}
