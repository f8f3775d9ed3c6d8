package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tspath/tspath/internal/rewrite"
	"github.com/tspath/tspath/internal/watch"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Rewrite references whenever the compiler emits output",
		Long: `Rewrite the project once, then keep watching the output directory and
rewrite every file the compiler writes. Run it next to "tsc --watch".

Files that need no change are left alone, so the tool never reacts to its
own writes.`,
		Example: `  # Watch the project in the current directory
  tspath watch --force

  # Watch with a longer quiet period
  TSPATH_WATCH__DEBOUNCE=500ms tspath watch -f`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}
}

func runWatch(cmd *cobra.Command, _ []string) error {
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

	eng, proj, cleanup, err := cc.NewEngine(target, true)
	if err != nil {
		return err
	}
	defer cleanup()

	cc.Banner(target, proj)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats, err := eng.Run(ctx)
	if err != nil {
		return err
	}
	if err := cc.Renderer.RenderSummary(summaryOf(target.Root, stats), cc.Cfg.Verbose); err != nil {
		return err
	}

	w, err := watch.New(watch.Config{
		Dir:      proj.OutDir,
		Filter:   target.Filter,
		Debounce: cc.Cfg.GetWatchConfig().Debounce,
		Logger:   cc.Logger,
		Process: func(ctx context.Context, files []string) error {
			return processBatch(ctx, cc, eng, files)
		},
	})
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	st := cc.Renderer.Styles()
	cc.Renderer.Println(st.Muted.Render("Watching"), st.Path.Render(proj.OutDir), st.Muted.Render("(Ctrl+C to stop)"))
	return w.Run(ctx)
}

// processBatch rewrites the files of one batch. A file that does not parse
// is usually still being written by the compiler, and a file can be
// removed before it is read. Both are reported and the next event for the
// file retries. Per-file results are dropped after each batch.
func processBatch(ctx context.Context, cc *CommandContext, eng *rewrite.Engine, files []string) error {
	defer eng.ResetFiles()

	st := cc.Renderer.Styles()
	for _, path := range files {
		res, err := eng.ProcessFile(ctx, path)
		var perr *rewrite.ParseError
		switch {
		case errors.As(err, &perr):
			cc.Logger.Debug("skipping file that does not parse", "path", path, "error", perr.Err)
			cc.Renderer.Errorln(fmt.Sprintf("skipping %s: %v", path, perr.Err))
			continue
		case errors.Is(err, fs.ErrNotExist):
			cc.Logger.Debug("skipping removed file", "path", path)
			cc.Renderer.Errorln(fmt.Sprintf("skipping %s: file was removed", path))
			continue
		case err != nil:
			return err
		}
		if res.Written && len(res.Rewrites) > 0 {
			cc.Renderer.Println(st.Success.Render("rewrote"), st.Path.Render(path), len(res.Rewrites))
		}
	}
	return nil
}
