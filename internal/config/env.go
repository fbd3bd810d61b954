package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SCENEKIT_"

// loadDotEnv copies variables from a .env file into the process environment.
// Variables that are already set win. A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}

// applyEnv applies SCENEKIT_* overrides looked up through lookup.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPrefix + "SCENE"); ok {
		cfg.Scene.Path = v
	}
	if v, ok := lookup(EnvPrefix + "ATLAS_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("%sATLAS_SIZE: invalid size %q", EnvPrefix, v)
		}
		cfg.Bake.AtlasSize = n
	}
	if v, ok := lookup(EnvPrefix + "ATLAS_DIR"); ok {
		cfg.Bake.AtlasDir = v
	}
	if v, ok := lookup(EnvPrefix + "ASSET_DIRS"); ok {
		cfg.Assets.Dirs = filepath.SplitList(v)
	}
	if v, ok := lookup(EnvPrefix + "LOG_LEVEL"); ok {
		cfg.Logging.Level = v
	}
	if v, ok := lookup(EnvPrefix + "LOG_FILE"); ok {
		cfg.Logging.LogFile = v
	}
	return nil
}
