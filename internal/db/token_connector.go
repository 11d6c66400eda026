package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/pgdbtool/internal/retry"
	"github.com/vvka-141/pgdbtool/pkg/dbtool"
)

// TokenBasedConnector connects with a token from a TokenProvider as the password
// (AWS RDS IAM, Azure Entra ID). A fresh token is requested on every attempt.
type TokenBasedConnector struct {
	config       *dbtool.ConnectionConfig
	provider     TokenProvider
	providerName string
	policy       retry.Policy
	reporter     dbtool.Reporter
	now          func() time.Time
}

// NewTokenBasedConnector creates a connector authenticating through provider.
// providerName appears in messages, e.g. "AWS IAM".
func NewTokenBasedConnector(config *dbtool.ConnectionConfig, provider TokenProvider, providerName string, reporter dbtool.Reporter) *TokenBasedConnector {
	reporter = orNull(reporter)
	return &TokenBasedConnector{
		config:       config,
		provider:     provider,
		providerName: providerName,
		policy:       connectPolicy(reporter),
		reporter:     reporter,
		now:          time.Now,
	}
}

func (c *TokenBasedConnector) Connect(ctx context.Context) (*pgx.Conn, error) {
	var conn *pgx.Conn
	err := retry.Do(ctx, c.policy, func(ctx context.Context) error {
		token, expiresOn, err := c.provider.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("failed to acquire %s token: %w", c.providerName, err)
		}
		c.reporter.Verbose("Acquired %s token from %s", c.providerName, c.provider)

		if remaining := expiresOn.Sub(c.now()); remaining < tokenExpiryWarning {
			c.reporter.Info("Warning: %s token expires in %v", c.providerName, remaining.Round(time.Second))
		}

		withToken := c.config.Clone()
		withToken.Password = token

		conn, err = dial(ctx, withToken, c.reporter, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func newAWSConnector(config *dbtool.ConnectionConfig, reporter dbtool.Reporter) (dbtool.Connector, error) {
	endpoint := fmt.Sprintf("%s:%d", config.Host, config.Port)

	provider, err := NewAWSIAMTokenProvider(endpoint, config.AWSRegion, config.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS IAM token provider: %w", err)
	}
	return NewTokenBasedConnector(config, provider, "AWS IAM", reporter), nil
}

// newAzureConnector uses Service Principal credentials when tenant, client and
// secret are all present, otherwise the DefaultAzureCredential chain.
func newAzureConnector(config *dbtool.ConnectionConfig, reporter dbtool.Reporter) (dbtool.Connector, error) {
	var (
		provider TokenProvider
		err      error
	)
	if config.AzureTenantID != "" && config.AzureClientID != "" && config.AzureClientSecret != "" {
		provider, err = NewAzureServicePrincipalProvider(config.AzureTenantID, config.AzureClientID, config.AzureClientSecret)
	} else {
		provider, err = NewAzureDefaultCredentialProvider()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure token provider: %w", err)
	}
	return NewTokenBasedConnector(config, provider, "Azure", reporter), nil
}
