// Package inventory derives the set of managed databases from project settings.
package inventory

import (
	"strconv"

	"github.com/vvka-141/pgdbtool/internal/settings"
	"github.com/vvka-141/pgdbtool/pkg/dbtool"
)

// Inventory is a snapshot of the databases a project declares.
type Inventory struct {
	// Used holds every PostgreSQL-backed database in declaration order.
	Used []dbtool.DatabaseDescriptor

	// Available is Used minus the ignore list. Bulk create/drop act on it.
	Available []dbtool.DatabaseDescriptor
}

// Resolve computes a fresh Inventory from s.
func Resolve(s *settings.Settings) Inventory {
	used := UsedDatabases(s)
	return Inventory{
		Used:      used,
		Available: Available(s, used),
	}
}

// Manages reports whether name is one of the Available databases.
func (inv Inventory) Manages(name string) bool {
	for _, d := range inv.Available {
		if d.PostgresName == name {
			return true
		}
	}
	return false
}

// IsAvailable reports whether d is in Available, that is, declared and not ignored.
func (inv Inventory) IsAvailable(d dbtool.DatabaseDescriptor) bool {
	for _, item := range inv.Available {
		if item == d {
			return true
		}
	}
	return false
}

// UsedDatabases returns a descriptor for each DATABASES entry whose ENGINE is
// PostgreSQL. Other engines are skipped silently.
func UsedDatabases(s *settings.Settings) []dbtool.DatabaseDescriptor {
	var used []dbtool.DatabaseDescriptor
	for _, db := range s.Databases() {
		if !dbtool.IsPostgresEngine(string(db.Engine)) {
			continue
		}
		used = append(used, dbtool.DatabaseDescriptor{
			ConfigName:   db.Alias,
			PostgresName: string(db.Name),
		})
	}
	return used
}

// IsIgnored reports whether name is excluded from bulk operations.
// A wildcard ignore list matches every name; otherwise membership is exact.
// A missing ignore list ignores nothing.
func IsIgnored(s *settings.Settings, name string) bool {
	if s == nil {
		return false
	}
	return s.Ignore.IgnoresAll() || s.Ignore.Contains(name)
}

// Available filters used down to the descriptors that are not ignored.
func Available(s *settings.Settings, used []dbtool.DatabaseDescriptor) []dbtool.DatabaseDescriptor {
	var available []dbtool.DatabaseDescriptor
	for _, d := range used {
		if !IsIgnored(s, d.PostgresName) {
			available = append(available, d)
		}
	}
	return available
}

// ConnectionParams looks name up among the used databases and, on a match,
// builds connection parameters from that database's settings block. Missing
// USER, HOST, PORT and PASSWORD fall back to postgres, localhost, 5432 and
// no password. Returns false when name is not declared; the caller then
// uses its own parameters.
func ConnectionParams(s *settings.Settings, used []dbtool.DatabaseDescriptor, name string, reporter dbtool.Reporter) (*dbtool.ConnectionConfig, bool) {
	for _, d := range used {
		if d.PostgresName != name {
			continue
		}
		db, ok := s.Database(d.ConfigName)
		if !ok {
			break
		}

		reporter.Info("Found settings for database %q (%s), using them for the connection", name, d.ConfigName)
		return fromSettings(name, db, reporter), true
	}

	reporter.Info("No settings found for database %q in DATABASES, using the supplied connection parameters", name)
	return nil, false
}

func fromSettings(name string, db settings.Database, reporter dbtool.Reporter) *dbtool.ConnectionConfig {
	cfg := &dbtool.ConnectionConfig{
		Database:         name,
		Username:         orDefault(string(db.User), dbtool.DefaultUser),
		Host:             orDefault(string(db.Host), dbtool.DefaultHost),
		Port:             dbtool.DefaultPort,
		Password:         string(db.Password),
		AuthMethod:       dbtool.AuthMethodStandard,
		AdditionalParams: make(map[string]string),
	}

	if db.Port != "" {
		port, err := strconv.Atoi(string(db.Port))
		if err != nil {
			reporter.Error("Invalid PORT %q for database %q, using %d", db.Port, name, dbtool.DefaultPort)
		} else {
			cfg.Port = port
		}
	}

	for key, value := range db.Options {
		switch key {
		case "sslmode":
			cfg.SSLMode = string(value)
		case "application_name":
			cfg.AppName = string(value)
		default:
			cfg.AdditionalParams[key] = string(value)
		}
	}

	return cfg
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
