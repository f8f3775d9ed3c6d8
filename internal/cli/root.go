// Package cli provides the command-line interface for tspath.
package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tspath/tspath/internal/cli/commands"
	"github.com/tspath/tspath/internal/cli/config"
	"github.com/tspath/tspath/internal/cli/output"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// Option customizes the root command.
type Option func(*options)

type options struct {
	prompter output.Prompter
	logOut   io.Writer
}

// WithPrompter replaces the interactive confirmation prompt.
func WithPrompter(p output.Prompter) Option {
	return func(o *options) { o.prompter = p }
}

// WithLogOutput sends verbose logs to w instead of the command's error
// stream.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) { o.logOut = w }
}

// NewRootCmd creates and returns the root command.
func NewRootCmd(opts ...Option) *cobra.Command {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "tspath",
		Short: "Rewrite TypeScript path aliases in compiled JavaScript",
		Long: `tspath rewrites the require() calls of a compiled TypeScript project so
that module references using compilerOptions.paths aliases become relative
paths Node.js can resolve.

Run it after tsc from anywhere inside the project. The project root is the
nearest directory containing the compiler configuration file.`,
		Example: `  # Rewrite the project in the current directory without asking
  tspath --force

  # Keep the original layout and process .js and .cjs files
  tspath -f --preserve --ext "js, cjs"

  # Rewrite another project and print a JSON summary
  tspath -f --project-dir ../api -o json`,
		Version: Version,
		Args:    cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, used, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}

			logOut := o.logOut
			if logOut == nil {
				logOut = cmd.ErrOrStderr()
			}
			logger := newLogger(logOut, cfg.Verbose)
			if used != "" {
				logger.Debug("using settings file", "path", used)
			}

			ctx := config.WithConfig(cmd.Context(), cfg)
			ctx = config.WithLogger(ctx, logger)
			if o.prompter != nil {
				ctx = commands.WithPrompter(ctx, o.prompter)
			}
			cmd.SetContext(ctx)
			return nil
		},
		RunE:          commands.RunRewrite,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "tool settings file (default: ./tspath.yaml)")
	pf.String("project-dir", "", "Project root (default: nearest directory with the compiler configuration)")
	pf.String("tsconfig", config.DefaultTSConfig, "Compiler configuration file name")
	pf.String("ext", config.DefaultExt, `Comma separated extensions to process ("*" for all files)`)
	pf.String("filter", config.DefaultExt, "Alias of --ext")
	pf.BoolP("force", "f", false, "Do not ask for confirmation")
	pf.Bool("preserve", false, "Keep the original layout instead of compacting output")
	pf.BoolP("verbose", "v", false, "Verbose output")
	pf.StringP("output", "o", "", "Output format (auto|text|json)")
	_ = pf.MarkHidden("filter")

	// Register completion for output flag
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.MarkPersistentFlagDirname("project-dir")

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewWatchCommand())
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// newLogger writes text logs to w at debug level when verbose, and
// discards them otherwise.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for tspath.

To load completions:

Bash:
  $ source <(tspath completion bash)

Zsh:
  $ tspath completion zsh > "${fpath[1]}/_tspath"

Fish:
  $ tspath completion fish | source

PowerShell:
  PS> tspath completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return fmt.Errorf("unsupported shell %q", args[0])
		},
	}
	return cmd
}
