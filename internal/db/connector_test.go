package db

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/pgdbtool/internal/logging"
	"github.com/vvka-141/pgdbtool/internal/retry"
	"github.com/vvka-141/pgdbtool/pkg/dbtool"
)

func TestNewConnector(t *testing.T) {
	tests := []struct {
		name    string
		config  *dbtool.ConnectionConfig
		check   func(t *testing.T, c dbtool.Connector)
		wantErr error
	}{
		{
			name:   "standard",
			config: &dbtool.ConnectionConfig{AuthMethod: dbtool.AuthMethodStandard},
			check: func(t *testing.T, c dbtool.Connector) {
				assert.IsType(t, &StandardConnector{}, c)
			},
		},
		{
			name:   "certificate uses standard connector",
			config: &dbtool.ConnectionConfig{AuthMethod: dbtool.AuthMethodCertificate, SSLCert: "/c", SSLKey: "/k"},
			check: func(t *testing.T, c dbtool.Connector) {
				assert.IsType(t, &StandardConnector{}, c)
			},
		},
		{
			name:   "aws",
			config: &dbtool.ConnectionConfig{AuthMethod: dbtool.AuthMethodAWSIAM, Host: "rds", Port: 5432, Username: "iam", AWSRegion: "us-east-1"},
			check: func(t *testing.T, c dbtool.Connector) {
				tc, ok := c.(*TokenBasedConnector)
				require.True(t, ok)
				assert.Equal(t, "AWS IAM", tc.providerName)
			},
		},
		{
			name:   "google",
			config: &dbtool.ConnectionConfig{AuthMethod: dbtool.AuthMethodGoogleIAM, Username: "sa@proj.iam", GoogleInstance: "p:r:i"},
			check: func(t *testing.T, c dbtool.Connector) {
				assert.IsType(t, &GoogleCloudSQLConnector{}, c)
			},
		},
		{
			name:    "google without instance",
			config:  &dbtool.ConnectionConfig{AuthMethod: dbtool.AuthMethodGoogleIAM, Username: "sa"},
			wantErr: dbtool.ErrInvalidConfig,
		},
		{
			name:    "unknown method",
			config:  &dbtool.ConnectionConfig{AuthMethod: dbtool.AuthMethod(99)},
			wantErr: dbtool.ErrUnsupportedAuthMethod,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewConnector(tt.config, logging.NewNullLogger())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, c)
		})
	}
}

func TestNewAWSIAMTokenProvider_Validation(t *testing.T) {
	_, err := NewAWSIAMTokenProvider("", "us-east-1", "u")
	assert.ErrorContains(t, err, "endpoint")

	_, err = NewAWSIAMTokenProvider("h:5432", "", "u")
	assert.ErrorContains(t, err, "region")

	_, err = NewAWSIAMTokenProvider("h:5432", "us-east-1", "")
	assert.ErrorContains(t, err, "username")
}

func TestStandardConnector_RetriesRefusedConnection(t *testing.T) {
	rec := logging.NewRecorder()
	c := NewStandardConnector(&dbtool.ConnectionConfig{
		Host: "127.0.0.1", Port: 1, Database: "postgres", Username: "postgres", SSLMode: "disable",
	}, rec)
	c.policy.InitialDelay = time.Millisecond
	c.policy.MaxDelay = time.Millisecond
	c.policy.MaxRetries = 2

	_, err := c.Connect(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, dbtool.ErrConnectionFailed)
	assert.Len(t, rec.Messages(logging.LevelVerbose), 2)
}

type stubProvider struct {
	calls int
	err   error
}

func (p *stubProvider) GetToken(context.Context) (string, time.Time, error) {
	p.calls++
	return "", time.Time{}, p.err
}

func (p *stubProvider) String() string { return "stub" }

func TestTokenBasedConnector_ProviderFailureIsNotRetried(t *testing.T) {
	provider := &stubProvider{err: errors.New("no credentials")}
	c := NewTokenBasedConnector(&dbtool.ConnectionConfig{Host: "h", Port: 5432}, provider, "Azure", nil)
	c.policy = retry.Policy{MaxRetries: 3, InitialDelay: time.Millisecond}

	_, err := c.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to acquire Azure token")
	assert.Equal(t, 1, provider.calls)
}

type fakeCredential struct {
	scopes []string
	token  azcore.AccessToken
}

func (f *fakeCredential) GetToken(_ context.Context, opts policy.TokenRequestOptions) (azcore.AccessToken, error) {
	f.scopes = opts.Scopes
	return f.token, nil
}

func TestAzureTokenProvider_RequestsPostgresScope(t *testing.T) {
	expires := time.Now().Add(time.Hour)
	cred := &fakeCredential{token: azcore.AccessToken{Token: "tok", ExpiresOn: expires}}
	p := NewAzureTokenProvider(cred, "fake")

	token, exp, err := p.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	assert.Equal(t, expires, exp)
	assert.Equal(t, []string{AzurePostgreSQLScope}, cred.scopes)
	assert.Equal(t, "fake", p.String())
}

func TestNewAzureServicePrincipalProvider_RequiresAllParts(t *testing.T) {
	_, err := NewAzureServicePrincipalProvider("tenant", "", "secret")
	assert.Error(t, err)
}

func TestWrapConnectionError(t *testing.T) {
	tests := []struct {
		raw      string
		contains string
	}{
		{"dial tcp 127.0.0.1:5432: connect: connection refused", "pg_isready"},
		{"dial tcp: lookup nohost: no such host", `cannot resolve host "db"`},
		{"FATAL: password authentication failed for user \"x\"", "PASSWORD in the settings file"},
		{"FATAL: database \"app\" does not exist", "-d postgres"},
		{"i/o timeout", "timed out"},
		{"server does not support SSL", "--sslmode"},
		{"FATAL: sorry, too many connections", "--terminate"},
		{"something else", "connection failed"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			raw := errors.New(tt.raw)
			err := wrapConnectionError(raw, "db", 5432, "app")
			assert.Contains(t, err.Error(), tt.contains)
			assert.ErrorIs(t, err, raw)
			assert.ErrorIs(t, err, dbtool.ErrConnectionFailed)
			assert.Equal(t, dbtool.ExitConnectionError, dbtool.ExitCodeForError(fmt.Errorf("open: %w", err)))
		})
	}
}
