package db

import (
	"fmt"
	"os"
	"strconv"

	"github.com/vvka-141/pgdbtool/internal/settings"
	"github.com/vvka-141/pgdbtool/pkg/dbtool"
)

// GranularConnFlags holds the PostgreSQL-standard connection flags (-h, -p, -U, -d).
//
// There is deliberately no password flag. Use $PGPASSWORD, ~/.pgpass, the
// settings file PASSWORD field, or a connection string instead.
type GranularConnFlags struct {
	Host     string
	Port     int
	Username string
	Database string
	SSLMode  string
}

// IsEmpty reports whether no server-selecting flag was given. Database is
// excluded because -d may override the database of a connection string.
func (g *GranularConnFlags) IsEmpty() bool {
	return g.Host == "" && g.Port == 0 && g.Username == "" && g.SSLMode == ""
}

// CloudFlags selects a cloud IAM authentication method.
// Secrets are only taken from the environment.
type CloudFlags struct {
	AWS            bool
	AWSRegion      string
	Azure          bool
	AzureTenantID  string
	AzureClientID  string
	GoogleInstance string
}

// EnvVars holds the environment variables the resolver consults.
// See https://www.postgresql.org/docs/current/libpq-envars.html
type EnvVars struct {
	PGHOST       string
	PGPORT       string
	PGUSER       string
	PGPASSWORD   string
	PGDATABASE   string
	PGSSLMODE    string
	DATABASE_URL string

	AWS_REGION         string
	AWS_DEFAULT_REGION string

	AZURE_TENANT_ID     string
	AZURE_CLIENT_ID     string
	AZURE_CLIENT_SECRET string
}

// LoadFromEnvironment reads EnvVars from the process environment.
func LoadFromEnvironment() *EnvVars {
	return &EnvVars{
		PGHOST:              os.Getenv("PGHOST"),
		PGPORT:              os.Getenv("PGPORT"),
		PGUSER:              os.Getenv("PGUSER"),
		PGPASSWORD:          os.Getenv("PGPASSWORD"),
		PGDATABASE:          os.Getenv("PGDATABASE"),
		PGSSLMODE:           os.Getenv("PGSSLMODE"),
		DATABASE_URL:        os.Getenv("DATABASE_URL"),
		AWS_REGION:          os.Getenv("AWS_REGION"),
		AWS_DEFAULT_REGION:  os.Getenv("AWS_DEFAULT_REGION"),
		AZURE_TENANT_ID:     os.Getenv("AZURE_TENANT_ID"),
		AZURE_CLIENT_ID:     os.Getenv("AZURE_CLIENT_ID"),
		AZURE_CLIENT_SECRET: os.Getenv("AZURE_CLIENT_SECRET"),
	}
}

// ResolveConnectionParams builds the connection the tool uses when its target
// database has no entry in the settings DATABASES block.
//
// Precedence:
//  1. --connection (or DATABASE_URL when no granular flag is set), with -d overriding its database
//  2. granular flags, then PG* environment variables, then the settings DBTOOL block
//  3. defaults: localhost:5432, user postgres, database postgres, sslmode prefer
//
// Giving both --connection and granular flags is an error.
func ResolveConnectionParams(
	connStringFlag string,
	flags *GranularConnFlags,
	cloud *CloudFlags,
	env *EnvVars,
	tool settings.ToolConnection,
) (*dbtool.ConnectionConfig, error) {
	if flags == nil {
		flags = &GranularConnFlags{}
	}
	if cloud == nil {
		cloud = &CloudFlags{}
	}
	if env == nil {
		env = &EnvVars{}
	}

	if connStringFlag != "" && !flags.IsEmpty() {
		return nil, fmt.Errorf(
			"cannot specify both --connection and granular flags (-h, -p, -U, --sslmode)\n"+
				"Choose one approach:\n"+
				"  1. Connection string: --connection \"postgresql://postgres@localhost:5432/postgres\"\n"+
				"  2. Granular flags: -h localhost -p 5432 -U postgres -d postgres: %w", dbtool.ErrInvalidConfig)
	}

	var (
		cfg *dbtool.ConnectionConfig
		err error
	)
	switch {
	case connStringFlag != "":
		cfg, err = resolveFromConnectionString(connStringFlag, flags.Database, env)
	case flags.IsEmpty() && env.DATABASE_URL != "":
		cfg, err = resolveFromConnectionString(env.DATABASE_URL, flags.Database, env)
	default:
		cfg, err = resolveFromGranularParams(flags, env, tool)
	}
	if err != nil {
		return nil, err
	}

	if err := applyCloudAuth(cfg, cloud, env); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolveFromConnectionString(connStr, database string, env *EnvVars) (*dbtool.ConnectionConfig, error) {
	cfg, err := ParseConnectionString(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %w: %w", err, dbtool.ErrInvalidConfig)
	}

	if database != "" {
		cfg.Database = database
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = env.PGSSLMODE
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "prefer"
	}
	if cfg.Password == "" {
		cfg.Password = env.PGPASSWORD
	}
	if cfg.Username == "" {
		cfg.Username = firstNonEmpty(env.PGUSER, dbtool.DefaultUser)
	}
	return cfg, nil
}

func resolveFromGranularParams(flags *GranularConnFlags, env *EnvVars, tool settings.ToolConnection) (*dbtool.ConnectionConfig, error) {
	cfg := &dbtool.ConnectionConfig{
		Host:             firstNonEmpty(flags.Host, env.PGHOST, tool.Host, dbtool.DefaultHost),
		Username:         firstNonEmpty(flags.Username, env.PGUSER, tool.User, dbtool.DefaultUser),
		Password:         env.PGPASSWORD,
		Database:         firstNonEmpty(flags.Database, env.PGDATABASE, tool.Database, dbtool.DefaultManagementDB),
		SSLMode:          firstNonEmpty(flags.SSLMode, env.PGSSLMODE, tool.SSLMode, "prefer"),
		AuthMethod:       dbtool.AuthMethodStandard,
		AdditionalParams: make(map[string]string),
	}

	switch {
	case flags.Port != 0:
		cfg.Port = flags.Port
	case env.PGPORT != "":
		port, err := strconv.Atoi(env.PGPORT)
		if err != nil {
			return nil, fmt.Errorf("invalid $PGPORT value %q: must be an integer: %w", env.PGPORT, dbtool.ErrInvalidConfig)
		}
		cfg.Port = port
	case tool.Port != 0:
		cfg.Port = tool.Port
	default:
		cfg.Port = dbtool.DefaultPort
	}

	return cfg, nil
}

// applyCloudAuth switches cfg to at most one cloud IAM method.
// Flags take precedence over the environment.
func applyCloudAuth(cfg *dbtool.ConnectionConfig, cloud *CloudFlags, env *EnvVars) error {
	azure := cloud.Azure || cloud.AzureTenantID != "" || cloud.AzureClientID != ""
	google := cloud.GoogleInstance != ""

	selected := 0
	for _, on := range []bool{cloud.AWS, azure, google} {
		if on {
			selected++
		}
	}
	if selected > 1 {
		return fmt.Errorf("--aws, --azure and --google-instance are mutually exclusive: %w", dbtool.ErrInvalidConfig)
	}

	switch {
	case cloud.AWS:
		cfg.AuthMethod = dbtool.AuthMethodAWSIAM
		cfg.AWSRegion = firstNonEmpty(cloud.AWSRegion, env.AWS_REGION, env.AWS_DEFAULT_REGION)
		if cfg.AWSRegion == "" {
			return fmt.Errorf("AWS IAM auth requires a region (--aws-region or $AWS_REGION): %w", dbtool.ErrInvalidConfig)
		}
	case azure:
		cfg.AuthMethod = dbtool.AuthMethodAzureEntraID
		cfg.AzureTenantID = firstNonEmpty(cloud.AzureTenantID, env.AZURE_TENANT_ID)
		cfg.AzureClientID = firstNonEmpty(cloud.AzureClientID, env.AZURE_CLIENT_ID)
		cfg.AzureClientSecret = env.AZURE_CLIENT_SECRET
	case google:
		cfg.AuthMethod = dbtool.AuthMethodGoogleIAM
		cfg.GoogleInstance = cloud.GoogleInstance
	case cfg.SSLCert != "" && cfg.SSLKey != "":
		cfg.AuthMethod = dbtool.AuthMethodCertificate
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
