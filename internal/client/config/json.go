package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/notelinkapp/notelink/internal/flagx"
	"github.com/notelinkapp/notelink/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify the timeout either as
// a string like "10s" or as integer nanoseconds.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	DatabasePath       string         `json:"database_path"`
	SecretPath         string         `json:"secret_path"`
	PhoneHashSalt      string         `json:"phone_hash_salt"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
}

// parseJson overlays cfg with values loaded from a JSON file, resolved via
// the -c/-config flags. Absent file means no overlay; fields left empty in
// the JSON keep their current values.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.SecretPath != "" {
		cfg.SecretPath = jc.SecretPath
	}
	if jc.PhoneHashSalt != "" {
		cfg.PhoneHashSalt = jc.PhoneHashSalt
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
}
