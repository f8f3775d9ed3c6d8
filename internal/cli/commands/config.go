package commands

import (
	"errors"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tspath/tspath/internal/cli/output"
)

// NewConfigCommand creates the config command.
func NewConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective settings",
		Long: `Print the settings after defaults, the settings file, TSPATH_ environment
variables and flags have been applied. The output is YAML, or JSON with
--output json.`,
		Args: cobra.NoArgs,
		RunE: runConfig,
	}
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cc := NewCommandContext(cmd)

	cfg := *cc.Cfg
	cfg.Watch = cc.Cfg.GetWatchConfig()

	if cc.Renderer.EffectiveMode() == output.ModeJSON {
		return cc.Renderer.JSON(cfg)
	}

	enc := yaml.NewEncoder(cc.Renderer.Writer())
	enc.SetIndent(2)
	err := enc.Encode(cfg)
	return errors.Join(err, enc.Close())
}
