package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
)

// rcFileName is the default config file name, read from the current
// directory if present.
const rcFileName = ".fbxdumprc"

// config holds default CLI options, overridable per-invocation by flags.
type config struct {
	// DefaultVersion is the binary FBX version "convert" targets when
	// converting ascii->binary and no --version flag was given.
	DefaultVersion uint32 `json:"default_version"`

	// PrettyASCII is read from the rc file, but no command consults it:
	// "convert"'s ascii output always starts with the header comment block.
	PrettyASCII bool `json:"pretty_ascii"`

	// DumpFormat is "dump"'s default --format when none is given.
	DumpFormat string `json:"dump_format"`
}

func defaultConfig() config {
	return config{
		DefaultVersion: 7400,
		PrettyASCII:    true,
		DumpFormat:     "json",
	}
}

// loadConfig reads a JSON-with-comments rc file from path (or rcFileName in
// the current directory if path is empty and that file exists), merging
// its values over the built-in defaults. A missing optional file is not an
// error.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if path == "" {
		path = rcFileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}

		return config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return config{}, fmt.Errorf("invalid JSONC in %s: %w", path, err)
	}

	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}
