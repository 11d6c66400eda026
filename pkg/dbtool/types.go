package dbtool

import (
	"fmt"
	"time"
)

// DatabaseDescriptor identifies one database declared in the project settings.
type DatabaseDescriptor struct {
	// ConfigName is the alias the database is registered under (e.g. "default").
	ConfigName string

	// PostgresName is the physical PostgreSQL database name.
	PostgresName string
}

// String returns the descriptor as "alias=name".
func (d DatabaseDescriptor) String() string {
	return d.ConfigName + "=" + d.PostgresName
}

// PostgresNames returns the physical names of descriptors, in order.
func PostgresNames(descriptors []DatabaseDescriptor) []string {
	names := make([]string, 0, len(descriptors))
	for _, d := range descriptors {
		names = append(names, d.PostgresName)
	}
	return names
}

// ConnectionConfig represents parsed connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// Additional connection parameters
	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// Certificate authentication (sslmode verify-ca / verify-full)
	SSLCert     string
	SSLKey      string
	SSLRootCert string

	// Cloud IAM authentication parameters.
	// Azure: if tenant, client and secret are all present, Service Principal
	// authentication is used; otherwise the DefaultAzureCredential chain.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
	AWSRegion         string
	GoogleInstance    string
}

// Clone returns a deep copy of the config.
func (c *ConnectionConfig) Clone() *ConnectionConfig {
	clone := *c
	if c.AdditionalParams != nil {
		clone.AdditionalParams = make(map[string]string, len(c.AdditionalParams))
		for k, v := range c.AdditionalParams {
			clone.AdditionalParams[k] = v
		}
	}
	return &clone
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodCertificate                    // mTLS
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodCertificate:
		return "Certificate"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}
