package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/vvka-141/pgdbtool/internal/db"
	dbt "github.com/vvka-141/pgdbtool/internal/dbtool"
	"github.com/vvka-141/pgdbtool/internal/logging"
	"github.com/vvka-141/pgdbtool/internal/settings"
	"github.com/vvka-141/pgdbtool/internal/tui"
	"github.com/vvka-141/pgdbtool/internal/ui"
	"github.com/vvka-141/pgdbtool/pkg/dbtool"
)

// Replaced in tests.
var (
	newOpener   = db.NewOpener
	newReporter = func(verbose bool) dbtool.Reporter { return logging.NewConsoleLogger(verbose) }
	newApprover = selectApprover
)

// runEnv is what every database command starts from.
type runEnv struct {
	settings *settings.Settings
	tool     *dbt.Tool
	reporter dbtool.Reporter
	verbose  bool
}

// newRunEnv loads settings, resolves the tool's connection and binds the Tool.
// With settingsRequired false, a missing default settings file is treated as
// an empty DATABASES block.
func newRunEnv(cmd *cobra.Command, settingsRequired bool) (*runEnv, error) {
	_ = godotenv.Load()

	verbose := getVerboseFlag(cmd)
	reporter := newReporter(verbose)

	s, err := loadSettings(settingsRequired)
	if err != nil {
		return nil, err
	}

	granularFlags := &db.GranularConnFlags{
		Host:     connFlags.host,
		Port:     connFlags.port,
		Username: connFlags.username,
		Database: connFlags.database,
		SSLMode:  connFlags.sslMode,
	}
	cloudFlags := &db.CloudFlags{
		AWS:            connFlags.aws,
		AWSRegion:      connFlags.awsRegion,
		Azure:          connFlags.azure,
		AzureTenantID:  connFlags.azureTenantID,
		AzureClientID:  connFlags.azureClientID,
		GoogleInstance: connFlags.googleInstance,
	}

	cfg, err := db.ResolveConnectionParams(connFlags.connection, granularFlags, cloudFlags, db.LoadFromEnvironment(), s.Tool)
	if err != nil {
		return nil, err
	}

	registry := dbt.NewRegistry(s, newOpener(reporter), reporter)
	tool := registry.Tool(cfg.Database, cfg)

	if verbose {
		params := tool.Params()
		fmt.Fprintf(os.Stderr, "[VERBOSE] Connection resolved:\n")
		fmt.Fprintf(os.Stderr, "  Host: %s\n", params.Host)
		fmt.Fprintf(os.Stderr, "  Port: %d\n", params.Port)
		fmt.Fprintf(os.Stderr, "  User: %s\n", params.Username)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", params.Database)
		fmt.Fprintf(os.Stderr, "  SSL Mode: %s\n", params.SSLMode)
		fmt.Fprintf(os.Stderr, "  Auth Method: %s\n", params.AuthMethod)
		fmt.Fprintf(os.Stderr, "  Managed databases: %v\n", dbtool.PostgresNames(tool.Inventory().Available))
	}

	return &runEnv{settings: s, tool: tool, reporter: reporter, verbose: verbose}, nil
}

func loadSettings(required bool) (*settings.Settings, error) {
	path := settings.ResolvePath(connFlags.settingsPath)
	s, err := settings.Load(path)
	if err != nil {
		if !required && path == settings.DefaultFileName && errors.Is(err, dbtool.ErrSettingsNotFound) {
			return settings.New(nil, nil), nil
		}
		return nil, err
	}
	return s, nil
}

// commandContext bounds a command by --timeout and cancels it on Ctrl+C or SIGTERM.
func commandContext() (context.Context, context.CancelFunc) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if connFlags.timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), connFlags.timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\n[INTERRUPT] Received interrupt signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}

// selectApprover picks the approval flow for destructive commands.
// Without --force a terminal is required.
func selectApprover(force, verbose bool) (dbtool.Approver, error) {
	if force {
		return ui.NewForcedApprover(verbose), nil
	}
	if !tui.IsInteractive() {
		return nil, fmt.Errorf("no terminal to confirm the drop; use --force in scripts and CI: %w", dbtool.ErrApprovalDenied)
	}
	return ui.NewInteractiveApprover(verbose), nil
}

// approveDrop asks for approval to drop the tool's available databases.
// It fails early when the tool is connected to one of them.
func approveDrop(ctx context.Context, tool *dbt.Tool, force, verbose bool) error {
	names := dbtool.PostgresNames(tool.Inventory().Available)
	if len(names) == 0 {
		return nil
	}
	if err := tool.Guard("drop"); err != nil {
		return err
	}

	approver, err := newApprover(force, verbose)
	if err != nil {
		return err
	}
	approved, err := approver.RequestApproval(ctx, names)
	if err != nil {
		return err
	}
	if !approved {
		return fmt.Errorf("drop of %d database(s) was not approved: %w", len(names), dbtool.ErrApprovalDenied)
	}
	return nil
}
