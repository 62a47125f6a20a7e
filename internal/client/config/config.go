// Package config handles configuration for the NoteLink CLI client.
package config

import "time"

// Config holds runtime settings for the NoteLink CLI.
//
// Fields:
//   - ServerEndpointAddr: base URL of the backend REST endpoint.
//   - DatabasePath: path of the local SQLite cache file.
//   - SecretPath: path of the file holding the local encryption secret.
//   - PhoneHashSalt: deployment-wide salt for the phone-number hash strategy.
//     Must match the server's value or contact matching silently finds nothing.
//   - RequestTimeout: per-request timeout for server calls.
//   - InviteToken: invite token handed over by a deep link, accepted right
//     after login when set.
type Config struct {
	ServerEndpointAddr string
	DatabasePath       string
	SecretPath         string
	PhoneHashSalt      string
	RequestTimeout     time.Duration
	InviteToken        string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8080"
	c.DatabasePath = "notelink.db"
	c.SecretPath = "notelink.key"
	c.PhoneHashSalt = "phoneSalt"
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
