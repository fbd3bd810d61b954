// Package config handles scenetool configuration loading and management.
package config

// Config holds all scenetool settings.
type Config struct {
	Scene    SceneConfig    `yaml:"scene"`
	Bake     BakeConfig     `yaml:"bake"`
	Playback PlaybackConfig `yaml:"playback"`
	Assets   AssetsConfig   `yaml:"assets"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SceneConfig selects the scene used when no path is given on the command line.
type SceneConfig struct {
	Path string `yaml:"path"`
}

// BakeConfig holds geometry and texture baking settings.
type BakeConfig struct {
	AtlasSize int    `yaml:"atlas_size"` // Texture array layer size in pixels
	AtlasDir  string `yaml:"atlas_dir"`  // Output directory for atlas layers
}

// PlaybackConfig holds camera and light sampling settings.
type PlaybackConfig struct {
	Step float32 `yaml:"step"` // Seconds between camera samples
	From float32 `yaml:"from"`
	To   float32 `yaml:"to"` // Zero means the end of the camera path
}

// AssetsConfig holds extra directories searched for meshes and textures.
type AssetsConfig struct {
	Dirs []string `yaml:"dirs"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Bake: BakeConfig{
			AtlasSize: 4096,
			AtlasDir:  "atlas",
		},
		Playback: PlaybackConfig{
			Step: 0.5,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
