package cli

import (
	"github.com/spf13/cobra"
	dbt "github.com/vvka-141/pgdbtool/internal/dbtool"
)

var execCmd = &cobra.Command{
	Use:   "exec <sql>",
	Short: "Run one SQL statement on the tool's connection",
	Long: `Exec runs a single SQL statement on the database selected with -d.

By default the statement runs in a READ COMMITTED transaction that is
committed when it succeeds. With --isolate it runs in autocommit mode,
which statements such as CREATE DATABASE and VACUUM require.

Examples:
  pgdbtool exec "CREATE EXTENSION IF NOT EXISTS pgcrypto" -d app_main
  pgdbtool exec "CREATE DATABASE scratch" --isolate`,
	Args: cobra.ExactArgs(1),
	RunE: runExec,
}

var execFlags struct {
	isolate bool
}

func init() {
	rootCmd.AddCommand(execCmd)

	execCmd.Flags().BoolVar(&execFlags.isolate, "isolate", false,
		"Run the statement in autocommit mode instead of a transaction")
}

func runExec(cmd *cobra.Command, args []string) error {
	env, err := newRunEnv(cmd, false)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	return env.tool.WithConnection(ctx, func(s *dbt.Session) error {
		return s.Exec(ctx, args[0], execFlags.isolate)
	})
}
