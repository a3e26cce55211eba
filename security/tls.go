package security

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"github.com/kbukum/httpkit/errors"
)

// TLS versions accepted in TLSConfig.MinVersion.
const (
	TLS12 = "1.2"
	TLS13 = "1.3"
)

// TLSConfig holds TLS settings shared by the client and its transports.
type TLSConfig struct {
	// SkipVerify disables server certificate verification. The client's
	// verify_peer setting is derived from it.
	SkipVerify bool `yaml:"skip_verify" mapstructure:"skip_verify"`

	// CAFile is a PEM bundle used instead of the system roots.
	CAFile string `yaml:"ca_file" mapstructure:"ca_file"`

	// CertFile and KeyFile are the client certificate for mutual TLS.
	CertFile string `yaml:"cert_file" mapstructure:"cert_file"`
	KeyFile  string `yaml:"key_file" mapstructure:"key_file"`

	// ServerName overrides the name checked against the peer certificate.
	ServerName string `yaml:"server_name" mapstructure:"server_name"`

	// MinVersion is "1.2" or "1.3". Defaults to 1.2.
	MinVersion string `yaml:"min_version" mapstructure:"min_version" validate:"omitempty,oneof=1.2 1.3"`
}

// Build creates a *tls.Config, or nil when nothing is configured. File and
// PEM failures are CONFIGURATION_ERRORs.
func (c *TLSConfig) Build() (*tls.Config, error) {
	if !c.IsEnabled() {
		return nil, nil
	}

	minVersion, err := parseVersion(c.MinVersion)
	if err != nil {
		return nil, err
	}
	cfg := &tls.Config{
		InsecureSkipVerify: c.SkipVerify, //nolint:gosec // opt-in via skip_verify
		ServerName:         c.ServerName,
		MinVersion:         minVersion,
	}
	if err := c.loadCA(cfg); err != nil {
		return nil, err
	}
	if err := c.loadClientCert(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is consistent without touching
// the filesystem.
func (c *TLSConfig) Validate() error {
	if c == nil {
		return nil
	}
	if (c.CertFile != "") != (c.KeyFile != "") {
		return errors.Configuration("tls: cert_file and key_file must be set together")
	}
	_, err := parseVersion(c.MinVersion)
	return err
}

// ForPeer returns a copy of c for one connection. serverName fills in
// ServerName unless c overrides it, and verifyPeer decides SkipVerify.
func (c *TLSConfig) ForPeer(serverName string, verifyPeer bool) *TLSConfig {
	out := TLSConfig{}
	if c != nil {
		out = *c
	}
	if out.ServerName == "" {
		out.ServerName = serverName
	}
	out.SkipVerify = !verifyPeer
	return &out
}

// IsEnabled reports whether any setting that affects the handshake is set.
func (c *TLSConfig) IsEnabled() bool {
	if c == nil {
		return false
	}
	return c.SkipVerify || c.CAFile != "" || c.CertFile != "" || c.ServerName != "" || c.MinVersion != ""
}

func parseVersion(v string) (uint16, error) {
	switch v {
	case "", TLS12:
		return tls.VersionTLS12, nil
	case TLS13:
		return tls.VersionTLS13, nil
	}
	return 0, errors.Unsupported("tls min_version", v)
}

func (c *TLSConfig) loadCA(cfg *tls.Config) error {
	if c.CAFile == "" {
		return nil
	}
	ca, err := os.ReadFile(c.CAFile)
	if err != nil {
		return errors.Configuration("tls: cannot read ca_file").WithCause(err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(ca) {
		return errors.Configuration(fmt.Sprintf("tls: no certificates in %s", c.CAFile))
	}
	cfg.RootCAs = pool
	return nil
}

func (c *TLSConfig) loadClientCert(cfg *tls.Config) error {
	if c.CertFile == "" || c.KeyFile == "" {
		return nil
	}
	cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
	if err != nil {
		return errors.Configuration("tls: cannot load client certificate").WithCause(err)
	}
	cfg.Certificates = []tls.Certificate{cert}
	return nil
}
