package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// configFileName is the discovered file's expected name in each search
// directory.
const configFileName = "cortex.toml"

// Discover looks for cortex.toml first in the current working directory,
// then in the cortex-go subdirectory of the OS user config directory, and
// loads the first one found (spec.md §6). Returns an error only if a
// candidate file exists but fails to parse. A directory that cannot be
// determined is skipped, and a Config not found in either place is
// reported via the bool return, not an error.
func Discover() (Config, bool, error) {
	var candidates []string

	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, configFileName))
	}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "cortex-go", configFileName))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		cfg, err := Load(path)
		if err != nil {
			return Config{}, false, err
		}
		return cfg, true, nil
	}
	return Config{}, false, nil
}

// Load reads and parses a single TOML config file, starting from Default()
// so unset fields keep their documented defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("loading %s: %w", path, err)
	}
	return cfg, nil
}
