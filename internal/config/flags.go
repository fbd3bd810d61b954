package config

import (
	"flag"
	"strings"
)

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagLogFile   = flag.String("log-file", "", "Write logs to a rotated file")
	flagAtlasSize = flag.Int("atlas-size", 0, "Texture atlas layer size in pixels")
	flagAssetDir  = flag.String("asset-dir", "", "Extra asset directories, comma separated")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the arguments left after global flags.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via -config.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagAtlasSize > 0 {
		cfg.Bake.AtlasSize = *flagAtlasSize
	}
	if *flagAssetDir != "" {
		for _, dir := range strings.Split(*flagAssetDir, ",") {
			if dir = strings.TrimSpace(dir); dir != "" {
				cfg.Assets.Dirs = append(cfg.Assets.Dirs, dir)
			}
		}
	}
}
