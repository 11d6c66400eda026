package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/vvka-141/pgdbtool/internal/inventory"
	"github.com/vvka-141/pgdbtool/internal/settings"
	"github.com/vvka-141/pgdbtool/pkg/dbtool"
)

// sslModes contains valid PostgreSQL SSL modes for shell completion.
var sslModes = []string{"disable", "allow", "prefer", "require", "verify-ca", "verify-full"}

// completeSSLModes provides shell completion for SSL mode flag values.
func completeSSLModes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return filterPrefix(sslModes, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeDatabaseNames offers the management database and every database
// the settings file declares.
func completeDatabaseNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	candidates := []string{dbtool.DefaultManagementDB}

	s, err := settings.Load(settings.ResolvePath(connFlags.settingsPath))
	if err == nil {
		candidates = append(candidates, dbtool.PostgresNames(inventory.UsedDatabases(s))...)
	}

	return filterPrefix(candidates, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func filterPrefix(values []string, prefix string) []string {
	var matches []string
	for _, v := range values {
		if strings.HasPrefix(v, prefix) {
			matches = append(matches, v)
		}
	}
	return matches
}
