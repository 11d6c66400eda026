// Package settings loads the project's database settings file.
//
// The file mirrors a Django settings module: a DATABASES mapping of alias to
// connection block, an optional DATABASES_TO_IGNORE list and an optional
// DBTOOL block with defaults for the tool's own connection. YAML and JSON are
// both accepted. The declaration order of DATABASES is preserved.
//
//	DATABASES:
//	  default:
//	    ENGINE: django.db.backends.postgresql_psycopg2
//	    NAME: app_main
//	    USER: app
//	    PASSWORD: ${APP_DB_PASSWORD}
//	    HOST: localhost
//	    PORT: 5432
//	DATABASES_TO_IGNORE: ["app_test"]
package settings

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/pgdbtool/pkg/dbtool"
)

// DefaultFileName is looked up in the working directory when no path is given.
const DefaultFileName = "dbtool.yaml"

// EnvSettingsPath overrides the settings file location.
const EnvSettingsPath = "PGDBTOOL_SETTINGS"

// Scalar is a settings value that accepts any YAML scalar (string, int, ...)
// and keeps its literal text. Null decodes to "".
type Scalar string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Scalar) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar value", value.Line)
	}
	*s = Scalar(value.Value)
	return nil
}

// Database is one entry of the DATABASES mapping.
type Database struct {
	// Alias is the mapping key, e.g. "default".
	Alias string `yaml:"-"`

	Engine   Scalar            `yaml:"ENGINE"`
	Name     Scalar            `yaml:"NAME"`
	User     Scalar            `yaml:"USER"`
	Password Scalar            `yaml:"PASSWORD"`
	Host     Scalar            `yaml:"HOST"`
	Port     Scalar            `yaml:"PORT"`
	Options  map[string]Scalar `yaml:"OPTIONS,omitempty"`
}

// IgnoreList is the DATABASES_TO_IGNORE value. A scalar is treated as a
// one-element list, so both "*" and ["*"] mean "ignore everything".
type IgnoreList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *IgnoreList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*l = IgnoreList{value.Value}
		return nil
	case yaml.SequenceNode:
		var names []string
		if err := value.Decode(&names); err != nil {
			return err
		}
		*l = names
		return nil
	default:
		return fmt.Errorf("line %d: DATABASES_TO_IGNORE must be a list of names or %q", value.Line, dbtool.IgnoreAllToken)
	}
}

// IgnoresAll reports whether the list is exactly the wildcard token.
func (l IgnoreList) IgnoresAll() bool {
	return len(l) == 1 && l[0] == dbtool.IgnoreAllToken
}

// Contains reports exact membership of name.
func (l IgnoreList) Contains(name string) bool {
	for _, n := range l {
		if n == name {
			return true
		}
	}
	return false
}

// ToolConnection holds defaults for the tool's own connection. Flags and
// PG* environment variables take precedence over these.
type ToolConnection struct {
	Host     string `yaml:"HOST,omitempty"`
	Port     int    `yaml:"PORT,omitempty"`
	User     string `yaml:"USER,omitempty"`
	Database string `yaml:"DATABASE,omitempty"`
	SSLMode  string `yaml:"SSLMODE,omitempty"`
}

// Settings is the parsed settings file.
type Settings struct {
	databases []Database

	Ignore IgnoreList
	Tool   ToolConnection
}

type fileLayout struct {
	Databases yaml.Node      `yaml:"DATABASES"`
	Ignore    IgnoreList     `yaml:"DATABASES_TO_IGNORE"`
	Tool      ToolConnection `yaml:"DBTOOL"`
}

// Databases returns every DATABASES entry in declaration order.
func (s *Settings) Databases() []Database {
	if s == nil {
		return nil
	}
	out := make([]Database, len(s.databases))
	copy(out, s.databases)
	return out
}

// Database returns the entry registered under alias.
func (s *Settings) Database(alias string) (Database, bool) {
	if s == nil {
		return Database{}, false
	}
	for _, db := range s.databases {
		if db.Alias == alias {
			return db, true
		}
	}
	return Database{}, false
}

// New builds Settings from already-decoded values. Used by tests and callers
// that obtain settings from somewhere other than a file.
func New(databases []Database, ignore IgnoreList) *Settings {
	dbs := make([]Database, len(databases))
	copy(dbs, databases)
	return &Settings{databases: dbs, Ignore: ignore}
}

// ResolvePath returns the settings path to load: explicit flag value,
// then $PGDBTOOL_SETTINGS, then DefaultFileName.
func ResolvePath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if env := os.Getenv(EnvSettingsPath); env != "" {
		return env
	}
	return DefaultFileName
}

// Load reads and parses the settings file at path.
// Returns an error wrapping dbtool.ErrSettingsNotFound if the file does not exist.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, dbtool.ErrSettingsNotFound)
		}
		return nil, err
	}

	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes settings from YAML or JSON bytes.
func Parse(data []byte) (*Settings, error) {
	var layout fileLayout
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("%v: %w", err, dbtool.ErrInvalidConfig)
	}

	databases, err := decodeDatabases(&layout.Databases)
	if err != nil {
		return nil, fmt.Errorf("DATABASES: %v: %w", err, dbtool.ErrInvalidConfig)
	}

	return &Settings{
		databases: databases,
		Ignore:    layout.Ignore,
		Tool:      layout.Tool,
	}, nil
}

// decodeDatabases walks the DATABASES mapping pair by pair so declaration
// order survives; decoding into a Go map would lose it.
func decodeDatabases(node *yaml.Node) ([]Database, error) {
	if node.Kind == 0 || (node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null") {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping of alias to connection settings", node.Line)
	}

	databases := make([]Database, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]

		var db Database
		if err := value.Decode(&db); err != nil {
			return nil, fmt.Errorf("%s: %w", key.Value, err)
		}
		db.Alias = key.Value
		db.expandEnv()
		databases = append(databases, db)
	}
	return databases, nil
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandBraced replaces ${NAME} references with environment values.
// Bare $NAME is left alone so passwords containing '$' survive.
func expandBraced(s Scalar) Scalar {
	return Scalar(envRef.ReplaceAllStringFunc(string(s), func(ref string) string {
		return os.Getenv(envRef.FindStringSubmatch(ref)[1])
	}))
}

func (db *Database) expandEnv() {
	db.Name = expandBraced(db.Name)
	db.User = expandBraced(db.User)
	db.Password = expandBraced(db.Password)
	db.Host = expandBraced(db.Host)
	db.Port = expandBraced(db.Port)
}
