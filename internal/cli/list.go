package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	dbt "github.com/vvka-141/pgdbtool/internal/dbtool"
	"github.com/vvka-141/pgdbtool/internal/tui"
	"github.com/vvka-141/pgdbtool/pkg/dbtool"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the databases the settings declare",
	Long: `List shows every PostgreSQL database in the DATABASES block, whether the
ignore list excludes it and whether it exists on the server.

With --offline no connection is made and the EXISTS column is omitted.
With --names only the managed database names are printed, one per line.

Examples:
  pgdbtool list
  pgdbtool list --offline
  pgdbtool list --names | xargs -n1 pg_dump`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var listFlags struct {
	offline, names bool
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVar(&listFlags.offline, "offline", false,
		"Do not connect; read the settings only")
	listCmd.Flags().BoolVar(&listFlags.names, "names", false,
		"Print the managed database names only (implies --offline)")
}

func runList(cmd *cobra.Command, args []string) error {
	env, err := newRunEnv(cmd, true)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	inv := env.tool.Inventory()

	if listFlags.names {
		for _, name := range dbtool.PostgresNames(inv.Available) {
			fmt.Fprintln(out, name)
		}
		return nil
	}

	if listFlags.offline {
		rows := make([][]string, 0, len(inv.Used))
		for _, d := range inv.Used {
			rows = append(rows, []string{d.ConfigName, d.PostgresName, yesNo(!inv.IsAvailable(d))})
		}
		fmt.Fprintln(out, tui.RenderTable([]string{"ALIAS", "NAME", "IGNORED"}, rows))
		return nil
	}

	ctx, cancel := commandContext()
	defer cancel()

	var statuses []dbt.DatabaseStatus
	err = env.tool.WithConnection(ctx, func(s *dbt.Session) error {
		var err error
		statuses, err = s.Status(ctx)
		return err
	})
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(statuses))
	for _, st := range statuses {
		rows = append(rows, []string{st.ConfigName, st.PostgresName, yesNo(st.Ignored), yesNo(st.Exists)})
	}
	fmt.Fprintln(out, tui.RenderTable([]string{"ALIAS", "NAME", "IGNORED", "EXISTS"}, rows))
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
