package dbtool

import (
	"context"
	"sync"

	"github.com/vvka-141/pgdbtool/internal/inventory"
	"github.com/vvka-141/pgdbtool/internal/logging"
	"github.com/vvka-141/pgdbtool/internal/settings"
	"github.com/vvka-141/pgdbtool/pkg/dbtool"
)

// Opener opens the connection a scope runs on.
type Opener func(ctx context.Context, config *dbtool.ConnectionConfig) (dbtool.DBConnection, error)

// Registry keeps one Tool per target database name. Tools are never removed.
//
// Thread-Safety: safe for concurrent use.
type Registry struct {
	settings *settings.Settings
	open     Opener
	reporter dbtool.Reporter

	mu    sync.Mutex
	tools map[string]*Tool
}

// NewRegistry creates an empty registry over s. A nil s behaves as empty
// settings and a nil reporter discards output.
func NewRegistry(s *settings.Settings, open Opener, reporter dbtool.Reporter) *Registry {
	if s == nil {
		s = settings.New(nil, nil)
	}
	if reporter == nil {
		reporter = logging.NewNullLogger()
	}
	return &Registry{
		settings: s,
		open:     open,
		reporter: reporter,
		tools:    make(map[string]*Tool),
	}
}

// Tool returns the Tool bound to name, creating it on first use.
//
// A new Tool takes its connection parameters from the DATABASES entry whose
// NAME is name. When there is none, defaults is used with its database set
// to name. Later calls with the same name return the same Tool and ignore
// defaults.
func (r *Registry) Tool(name string, defaults *dbtool.ConnectionConfig) *Tool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.tools[name]; ok {
		return t
	}

	inv := inventory.Resolve(r.settings)

	params, found := inventory.ConnectionParams(r.settings, inv.Used, name, r.reporter)
	if found {
		inheritTransport(params, defaults)
	} else {
		params = fallbackParams(name, defaults)
	}

	t := &Tool{
		name:      name,
		params:    params,
		inventory: inv,
		open:      r.open,
		reporter:  r.reporter,
	}
	r.tools[name] = t
	return t
}

// Len returns the number of tools created so far.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tools)
}

func fallbackParams(name string, defaults *dbtool.ConnectionConfig) *dbtool.ConnectionConfig {
	var params *dbtool.ConnectionConfig
	if defaults != nil {
		params = defaults.Clone()
	} else {
		params = &dbtool.ConnectionConfig{
			Username:   dbtool.DefaultUser,
			Host:       dbtool.DefaultHost,
			Port:       dbtool.DefaultPort,
			AuthMethod: dbtool.AuthMethodStandard,
		}
	}
	params.Database = name
	return params
}

// inheritTransport copies the settings a DATABASES entry cannot express
// (auth method, certificates, cloud identity, timeouts) from defaults.
func inheritTransport(params, defaults *dbtool.ConnectionConfig) {
	if defaults == nil {
		return
	}
	params.AuthMethod = defaults.AuthMethod
	params.ConnectTimeout = defaults.ConnectTimeout
	params.SSLCert = defaults.SSLCert
	params.SSLKey = defaults.SSLKey
	params.SSLRootCert = defaults.SSLRootCert
	params.AzureTenantID = defaults.AzureTenantID
	params.AzureClientID = defaults.AzureClientID
	params.AzureClientSecret = defaults.AzureClientSecret
	params.AWSRegion = defaults.AWSRegion
	params.GoogleInstance = defaults.GoogleInstance
	if params.SSLMode == "" {
		params.SSLMode = defaults.SSLMode
	}
	if params.AppName == "" {
		params.AppName = defaults.AppName
	}
}
