// Package config loads the settings of the tspath command line tool.
//
// Settings are layered with koanf: built-in defaults, an optional
// tspath.yaml settings file, TSPATH_ environment variables and finally
// the flags that were set on the command line.
package config

import "time"

// Config holds all CLI configuration options.
type Config struct {
	// ProjectDir is the project root. Empty means search upward from the
	// working directory for the compiler configuration file.
	ProjectDir string `koanf:"project_dir" json:"project_dir" yaml:"project_dir"`
	// TSConfig is the compiler configuration file name.
	TSConfig string `koanf:"tsconfig" json:"tsconfig" yaml:"tsconfig"`
	// Ext is the comma separated extension filter.
	Ext string `koanf:"ext" json:"ext" yaml:"ext"`
	// Force skips the confirmation prompt.
	Force bool `koanf:"force" json:"force" yaml:"force"`
	// Preserve keeps the original layout instead of compacting output.
	Preserve     bool         `koanf:"preserve" json:"preserve" yaml:"preserve"`
	Verbose      bool         `koanf:"verbose" json:"verbose" yaml:"verbose"`
	OutputFormat string       `koanf:"output" json:"output" yaml:"output"`
	Watch        *WatchConfig `koanf:"watch" json:"watch" yaml:"watch"`

	// SettingsFile is the settings file that was loaded, if any.
	SettingsFile string `koanf:"-" json:"settings_file,omitempty" yaml:"settings_file,omitempty"`
}

// WatchConfig holds settings for watch mode.
type WatchConfig struct {
	// Debounce is how long to wait for more events before rewriting.
	Debounce time.Duration `koanf:"debounce" json:"debounce" yaml:"debounce"`
}

// Default configuration values.
const (
	DefaultTSConfig      = "tsconfig.json"
	DefaultExt           = "js"
	DefaultOutput        = "auto"
	DefaultWatchDebounce = 100 * time.Millisecond
)

// SettingsFiles are the settings file names looked up in the working
// directory when no --config is given.
var SettingsFiles = []string{"tspath.yaml", "tspath.yml", ".tspath.yaml", ".tspath.yml"}

// GetWatchConfig returns the watch config with defaults applied.
func (c *Config) GetWatchConfig() *WatchConfig {
	if c.Watch == nil {
		return &WatchConfig{Debounce: DefaultWatchDebounce}
	}
	w := *c.Watch
	if w.Debounce <= 0 {
		w.Debounce = DefaultWatchDebounce
	}
	return &w
}

// Compact reports whether output should be whitespace-minified.
func (c *Config) Compact() bool {
	return !c.Preserve
}
