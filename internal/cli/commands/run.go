package commands

import (
	"github.com/spf13/cobra"
)

// RunRewrite rewrites the aliased references of the configured project
// once. It is the action of the root command.
func RunRewrite(cmd *cobra.Command, _ []string) error {
	cc := NewCommandContext(cmd)

	target, err := cc.Locate()
	if err != nil {
		return err
	}

	ok, err := cc.Confirm(target)
	if err != nil {
		return err
	}
	if !ok {
		cc.Renderer.Errorln("Aborted, no files were changed.")
		return nil
	}

	// The configuration is fully validated before any file is opened.
	eng, proj, cleanup, err := cc.NewEngine(target, false)
	if err != nil {
		return err
	}
	defer cleanup()

	cc.Banner(target, proj)

	stats, err := eng.Run(cmd.Context())
	if err != nil {
		return err
	}

	return cc.Renderer.RenderSummary(summaryOf(target.Root, stats), cc.Cfg.Verbose)
}
