package db

import (
	"context"
	"fmt"
	"net"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/pgdbtool/pkg/dbtool"
)

// GoogleCloudSQLConnector connects to Cloud SQL with IAM database
// authentication through the Cloud SQL Go Connector, which handles TLS.
//
// Close releases the dialer and must be called after the connection is closed.
type GoogleCloudSQLConnector struct {
	config   *dbtool.ConnectionConfig
	instance string
	reporter dbtool.Reporter
	dialer   *cloudsqlconn.Dialer
}

// NewGoogleCloudSQLConnector creates a connector for instance (project:region:instance).
func NewGoogleCloudSQLConnector(config *dbtool.ConnectionConfig, instance string, reporter dbtool.Reporter) *GoogleCloudSQLConnector {
	return &GoogleCloudSQLConnector{config: config, instance: instance, reporter: orNull(reporter)}
}

func (c *GoogleCloudSQLConnector) Connect(ctx context.Context) (*pgx.Conn, error) {
	dialer, err := cloudsqlconn.NewDialer(ctx, cloudsqlconn.WithIAMAuthN())
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloud SQL dialer: %w", err)
	}

	viaDialer := c.config.Clone()
	viaDialer.Host = dbtool.DefaultHost
	viaDialer.Port = dbtool.DefaultPort
	viaDialer.Password = ""
	viaDialer.SSLMode = "disable"

	conn, err := dial(ctx, viaDialer, c.reporter, func(ctx context.Context, _, _ string) (net.Conn, error) {
		return dialer.Dial(ctx, c.instance)
	})
	if err != nil {
		dialer.Close()
		return nil, err
	}

	c.dialer = dialer
	return conn, nil
}

func (c *GoogleCloudSQLConnector) Close() error {
	if c.dialer != nil {
		err := c.dialer.Close()
		c.dialer = nil
		return err
	}
	return nil
}

func newGoogleConnector(config *dbtool.ConnectionConfig, reporter dbtool.Reporter) (dbtool.Connector, error) {
	if config.GoogleInstance == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires --google-instance (project:region:instance): %w", dbtool.ErrInvalidConfig)
	}
	if config.Username == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires username (-U): %w", dbtool.ErrInvalidConfig)
	}
	return NewGoogleCloudSQLConnector(config, config.GoogleInstance, reporter), nil
}
