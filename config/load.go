package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pithecene-io/assay/fault"
)

// Load reads a YAML config file, expands environment variables, unmarshals
// into a Config struct, and validates it.
//
// All failures are loader-stage errors: a missing or unreadable file, bad
// YAML, and missing required keys all classify as fault.ErrParse (the config
// is a structured document; a config that cannot be materialized is a parse
// failure, not an input failure).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fault.New(fault.ErrParse, fault.StageLoad, path,
				fmt.Errorf("config file not found"))
		}
		return nil, fault.New(fault.ErrParse, fault.StageLoad, path, err)
	}

	expanded := ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fault.New(fault.ErrParse, fault.StageLoad, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fault.New(fault.ErrParse, fault.StageLoad, path, err)
	}

	return &cfg, nil
}
