package config

import (
	"encoding/json"
	"os"

	"github.com/notelinkapp/notelink/internal/flagx"
	"github.com/notelinkapp/notelink/internal/timex"
)

// JsonConfig is an intermediate DTO used only for reading JSON configuration
// files. It uses timex.Duration for interval fields, which accepts both
// string values such as "15m" and integer nanoseconds. After unmarshalling,
// its fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	PhoneHashSalt               string         `json:"phone_hash_salt"`
	PendingShareTTL             timex.Duration `json:"pending_share_ttl"`
	JanitorInterval             timex.Duration `json:"janitor_interval"`
}

// parseJson overlays values from an optional JSON file (path taken from the
// -c/-config flags) onto the given Config. Only non-zero JSON values are
// applied, so the file may be partial.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(data, c); err != nil {
		panic(err)
	}

	if c.EndpointAddrHTTP != "" {
		config.EndpointAddrHTTP = c.EndpointAddrHTTP
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.PhoneHashSalt != "" {
		config.PhoneHashSalt = c.PhoneHashSalt
	}
	if c.PendingShareTTL.Duration != 0 {
		config.PendingShareTTL = c.PendingShareTTL.Duration
	}
	if c.JanitorInterval.Duration != 0 {
		config.JanitorInterval = c.JanitorInterval.Duration
	}
}
