package db

import (
	"context"
	"time"
)

// TokenProvider acquires short-lived credentials that replace the password
// when connecting to cloud-hosted PostgreSQL.
type TokenProvider interface {
	// GetToken returns the token and its expiry.
	GetToken(ctx context.Context) (token string, expiresOn time.Time, err error)

	// String describes the provider for logs. Must not include secrets.
	String() string
}

// AzurePostgreSQLScope is the OAuth scope for Azure Database for PostgreSQL.
const AzurePostgreSQLScope = "https://ossrdbms-aad.database.windows.net/.default"

// tokenExpiryWarning is how close to expiry a fresh token must be before a notice is emitted.
const tokenExpiryWarning = 5 * time.Minute
