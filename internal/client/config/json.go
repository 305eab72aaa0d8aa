package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/itd-social/itd-client/internal/flagx"
	"github.com/itd-social/itd-client/internal/timex"
)

// JsonConfig is the DTO for the JSON config file. Intervals may be given
// either as strings like "30s" or as integer nanoseconds.
type JsonConfig struct {
	BaseURL        string         `json:"base_url"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	PollInterval   timex.Duration `json:"poll_interval"`
	PageLimit      int            `json:"page_limit"`
	DataDir        string         `json:"data_dir"`
}

// parseJson overlays cfg with values from the JSON file named by -c/-config.
// Without the flag it is a no-op. Fields absent from the file keep their
// current values. Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JSONConfigFlags()
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

	if jc.BaseURL != "" {
		cfg.BaseURL = jc.BaseURL
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
	if jc.PollInterval.Duration != 0 {
		cfg.PollInterval = time.Duration(jc.PollInterval.Duration)
	}
	if jc.PageLimit != 0 {
		cfg.PageLimit = jc.PageLimit
	}
	if jc.DataDir != "" {
		cfg.DataDir = jc.DataDir
	}
}
