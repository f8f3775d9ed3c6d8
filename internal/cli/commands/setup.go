package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tspath/tspath/internal/cli/config"
	"github.com/tspath/tspath/internal/cli/output"
	"github.com/tspath/tspath/internal/project"
	"github.com/tspath/tspath/internal/rewrite"
	"github.com/tspath/tspath/internal/scanner"
)

// prompterKey is used to store the prompter in context.
type prompterKey struct{}

// WithPrompter stores p in ctx for the commands to ask confirmation with.
func WithPrompter(ctx context.Context, p output.Prompter) context.Context {
	return context.WithValue(ctx, prompterKey{}, p)
}

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
	Prompter output.Prompter
}

// NewCommandContext collects the settings, logger, renderer and prompter
// of cmd.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := config.GetConfig(ctx)

	p, ok := ctx.Value(prompterKey{}).(output.Prompter)
	if !ok {
		p = output.ReadlinePrompter{In: cmd.InOrStdin(), Out: cmd.ErrOrStderr()}
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(ctx),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
		Prompter: p,
	}
}

// Target is a located project ready to be rewritten.
type Target struct {
	Root   string
	Name   string
	Filter []string
}

// Locate finds the project root and checks the extension filter. When no
// project directory is configured the working directory and its parents
// are searched for the compiler configuration file.
func (cc *CommandContext) Locate() (*Target, error) {
	root := cc.Cfg.ProjectDir
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		if root, err = project.FindRoot(cwd, cc.Cfg.TSConfig); err != nil {
			return nil, err
		}
	} else if err := project.Validate(root, cc.Cfg.TSConfig); err != nil {
		return nil, err
	}

	filter, err := scanner.NormalizeFilter(cc.Cfg.Ext)
	if err != nil {
		return nil, err
	}

	cc.Logger.Debug("located project", "root", root, "filter", filter)
	return &Target{Root: root, Name: project.ReadName(root), Filter: filter}, nil
}

// Confirm asks before touching the project unless --force was given.
func (cc *CommandContext) Confirm(t *Target) (bool, error) {
	if cc.Cfg.Force {
		return true, nil
	}
	return cc.Prompter.Confirm(fmt.Sprintf("Process project at: %s ?", t.Root))
}

// NewEngine loads the project configuration and creates a rewrite engine
// for it. The returned cleanup function must be called.
func (cc *CommandContext) NewEngine(t *Target, skipUnchanged bool) (*rewrite.Engine, *project.Config, func(), error) {
	proj, err := project.Load(t.Root, cc.Cfg.TSConfig)
	if err != nil {
		return nil, nil, nil, err
	}

	eng, err := rewrite.New(rewrite.Config{
		Project:       proj,
		Filter:        t.Filter,
		Compact:       cc.Cfg.Compact(),
		SkipUnchanged: skipUnchanged,
		Logger:        cc.Logger,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return eng, proj, eng.Close, nil
}

// Banner prints what is about to be processed. Nothing is printed in JSON
// mode.
func (cc *CommandContext) Banner(t *Target, proj *project.Config) {
	r := cc.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return
	}
	st := r.Styles()

	name := t.Name
	if name == "" {
		name = "project"
	}
	r.Println(st.Header.Render("tspath"), st.Bold.Render(name))
	r.Println(st.Muted.Render("Output:"), st.Path.Render(proj.OutDir))
	if len(proj.Paths) == 0 {
		r.Println(st.Warning.Render("No path aliases configured, references are left as they are."))
	}
}

// summaryOf converts engine stats into the printable summary.
func summaryOf(root string, stats rewrite.Stats) output.Summary {
	s := output.Summary{
		RunID:          stats.RunID,
		Project:        root,
		FilesProcessed: stats.FilesProcessed,
		PathsProcessed: stats.PathsProcessed,
		Elapsed:        stats.Elapsed,
	}
	for _, f := range stats.Files {
		s.Files = append(s.Files, output.FileRow{Path: f.Path, Rewrites: len(f.Rewrites), Written: f.Written})
	}
	return s
}
