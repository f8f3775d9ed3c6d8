package config

import (
	"fmt"

	"github.com/tspath/tspath/internal/cli/output"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.TSConfig == "" {
		return fmt.Errorf("tsconfig file name is required")
	}

	switch output.OutputMode(c.OutputFormat) {
	case output.ModeAuto, output.ModeText, output.ModeJSON, "":
	default:
		return fmt.Errorf("invalid output format %q (want auto, text or json)", c.OutputFormat)
	}

	// The extension filter is validated by the run itself so that an empty
	// filter maps to its own exit code.
	return nil
}
