package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vvka-141/pgdbtool/internal/logging"
	"github.com/vvka-141/pgdbtool/internal/retry"
	"github.com/vvka-141/pgdbtool/pkg/dbtool"
)

// StandardConnector opens a connection with username/password (or client
// certificate) credentials, retrying transient failures.
type StandardConnector struct {
	config   *dbtool.ConnectionConfig
	policy   retry.Policy
	reporter dbtool.Reporter
}

// NewStandardConnector creates a StandardConnector using retry.DefaultPolicy.
func NewStandardConnector(config *dbtool.ConnectionConfig, reporter dbtool.Reporter) *StandardConnector {
	reporter = orNull(reporter)
	return &StandardConnector{
		config:   config,
		policy:   connectPolicy(reporter),
		reporter: reporter,
	}
}

// Connect opens a single connection to config.Database.
func (c *StandardConnector) Connect(ctx context.Context) (*pgx.Conn, error) {
	var conn *pgx.Conn
	err := retry.Do(ctx, c.policy, func(ctx context.Context) error {
		var err error
		conn, err = dial(ctx, c.config, c.reporter, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// NewConnector creates the Connector matching config.AuthMethod.
func NewConnector(config *dbtool.ConnectionConfig, reporter dbtool.Reporter) (dbtool.Connector, error) {
	switch config.AuthMethod {
	case dbtool.AuthMethodStandard, dbtool.AuthMethodCertificate:
		return NewStandardConnector(config, reporter), nil
	case dbtool.AuthMethodAWSIAM:
		return newAWSConnector(config, reporter)
	case dbtool.AuthMethodGoogleIAM:
		return newGoogleConnector(config, reporter)
	case dbtool.AuthMethodAzureEntraID:
		return newAzureConnector(config, reporter)
	default:
		return nil, fmt.Errorf("unsupported auth method %v: %w", config.AuthMethod, dbtool.ErrUnsupportedAuthMethod)
	}
}

func connectPolicy(reporter dbtool.Reporter) retry.Policy {
	policy := retry.DefaultPolicy()
	policy.OnRetry = func(attempt int, err error, delay time.Duration) {
		reporter.Verbose("Connection attempt %d failed, retrying in %s: %v", attempt+1, delay.Round(time.Millisecond), err)
	}
	return policy
}

func orNull(reporter dbtool.Reporter) dbtool.Reporter {
	if reporter == nil {
		return logging.NewNullLogger()
	}
	return reporter
}

// dial performs one connection attempt. Server notices are forwarded to the reporter.
func dial(ctx context.Context, config *dbtool.ConnectionConfig, reporter dbtool.Reporter, dialFunc pgconn.DialFunc) (*pgx.Conn, error) {
	connConfig, err := pgx.ParseConfig(BuildConnectionString(config))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}

	connConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		reporter.Info("%s: %s", notice.Severity, notice.Message)
	}
	if dialFunc != nil {
		connConfig.DialFunc = dialFunc
		connConfig.LookupFunc = func(_ context.Context, host string) ([]string, error) {
			return []string{host}, nil
		}
	}

	conn, err := pgx.ConnectConfig(ctx, connConfig)
	if err != nil {
		return nil, wrapConnectionError(err, config.Host, config.Port, config.Database)
	}
	return conn, nil
}

// wrapConnectionError wraps raw pgx connection errors with actionable guidance.
func wrapConnectionError(err error, host string, port int, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	var hint string
	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		hint = fmt.Sprintf(`connection refused to %s

Possible causes:
  - PostgreSQL is not running (check: pg_isready -h %s -p %d)
  - Wrong host or port`, addr, host, port)

	case strings.Contains(errStr, "no such host"):
		hint = fmt.Sprintf(`cannot resolve host %q

Possible causes:
  - Hostname is misspelled
  - DNS is not reachable`, host)

	case strings.Contains(errStr, "password authentication failed"):
		hint = fmt.Sprintf(`password authentication failed for database %q

Check the PASSWORD in the settings file, $PGPASSWORD or ~/.pgpass.`, database)

	case strings.Contains(errStr, "does not exist"):
		hint = fmt.Sprintf(`database %q does not exist

Connect through a database outside the project (e.g. -d %s).`, database, dbtool.DefaultManagementDB)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		hint = fmt.Sprintf(`connection timed out to %s

Possible causes:
  - Server is overloaded or unresponsive
  - Firewall silently dropping packets`, addr)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		hint = `SSL/TLS connection error

Possible causes:
  - Server requires SSL but --sslmode is wrong
  - Certificate verification failed (try --sslmode=require)`

	case strings.Contains(errStr, "too many connections"):
		hint = fmt.Sprintf(`too many connections to database %q

max_connections reached on the server; use --terminate or close other sessions.`, database)

	default:
		return fmt.Errorf("%w: %w", dbtool.ErrConnectionFailed, err)
	}

	return fmt.Errorf("%s\n\n%w: %w", hint, dbtool.ErrConnectionFailed, err)
}
