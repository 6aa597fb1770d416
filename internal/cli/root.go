// Package cli provides the command-line interface for the card inspector.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sozercan/card-inspector/internal/config"
	"github.com/sozercan/card-inspector/internal/inspector"
	"github.com/sozercan/card-inspector/internal/metabase"
	"github.com/sozercan/card-inspector/internal/render"
)

const programName = "card-inspector"

// Version information (set at build time).
var Version = "0.1.0"

// errReported marks a failure whose diagnostic has already been written to
// stdout. Execute only turns it into an exit code.
var errReported = errors.New("reported")

// configKey is used to store config in context.
type configKey struct{}

// rendererKey is used to store the renderer in context.
type rendererKey struct{}

func usageMessage() string {
	return fmt.Sprintf("Usage: %s <card_id>\nExample: %s 5342", programName, programName)
}

// NewRootCmd creates the root command. Invoked with a single card ID it
// inspects that card.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   programName + " <card_id>",
		Short: "Inspect the SQL and result columns of a Metabase card",
		Long: `card-inspector fetches a saved Metabase question (a "card") and prints
the native SQL behind it together with the columns it returns.

The Metabase host and API key are read from configuration:
  METABASE_BASE_URL   e.g. https://metabase.example.com
  METABASE_API_KEY    sent as the X-API-Key header`,
		Example: `  # Print the query and columns of card 5342
  card-inspector 5342

  # Same, as JSON
  card-inspector 5342 -o json`,
		Version: Version,
		Args:    cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			return loadContext(cmd, cfgFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			r := getRenderer(cmd.Context())
			if len(args) != 1 {
				return report(cmd, r, inspector.UsageError(usageMessage()))
			}
			return runInspect(cmd, args[0])
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./card-inspector.yaml)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (text|json|table|markdown)")
	rootCmd.PersistentFlags().String("base-url", "", "Metabase base URL")
	rootCmd.PersistentFlags().Duration("timeout", 0, "HTTP timeout for the Metabase request")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug|info|warn|error)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return render.Formats, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewExplainCommand())
	rootCmd.AddCommand(NewVersionCommand(Version))

	return rootCmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	return Run(NewRootCmd(), os.Stderr)
}

// Run executes root and maps its error to an exit code. Errors that were
// not already reported on stdout, such as flag parsing or config failures,
// go to stdout as JSON when JSON output was asked for and to stderr
// otherwise.
func Run(root *cobra.Command, stderr io.Writer) int {
	err := root.Execute()
	if err == nil {
		return 0
	}
	if errors.Is(err, errReported) {
		return 1
	}
	if requestedFormat(root) == render.FormatJSON {
		if werr := render.New(render.FormatJSON).Error(root.OutOrStdout(), err); werr == nil {
			return 1
		}
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}

// requestedFormat reports the output format from --output or OUTPUT without
// relying on config loading, which may be what failed.
func requestedFormat(root *cobra.Command) render.Format {
	value := os.Getenv("OUTPUT")
	if f := root.PersistentFlags().Lookup("output"); f != nil && f.Changed {
		value = f.Value.String()
	}
	format, err := render.ParseFormat(value)
	if err != nil {
		return render.FormatText
	}
	return format
}

func loadContext(cmd *cobra.Command, cfgFile string) error {
	cfg, err := config.LoadConfig(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	setupLogging(cmd.ErrOrStderr(), cfg.Log.SlogLevel())

	format, err := render.ParseFormat(cfg.Output)
	if err != nil {
		return err
	}

	ctx := context.WithValue(cmd.Context(), configKey{}, cfg)
	ctx = context.WithValue(ctx, rendererKey{}, render.New(format))
	cmd.SetContext(ctx)
	return nil
}

func setupLogging(w io.Writer, level slog.Level) {
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// getConfig retrieves the config from the command context.
func getConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	return &config.Config{}
}

// getRenderer retrieves the renderer from the command context.
func getRenderer(ctx context.Context) render.Renderer {
	if r, ok := ctx.Value(rendererKey{}).(render.Renderer); ok {
		return r
	}
	return render.New(render.FormatText)
}

// report writes err as a diagnostic on stdout and returns errReported.
func report(cmd *cobra.Command, r render.Renderer, err error) error {
	if werr := r.Error(cmd.OutOrStdout(), err); werr != nil {
		return werr
	}
	return errReported
}

func newInspector(cfg *config.Config) (*inspector.Inspector, error) {
	client, err := metabase.NewClient(cfg.Metabase)
	if err != nil {
		return nil, err
	}
	return inspector.New(client), nil
}

func runInspect(cmd *cobra.Command, cardID string) error {
	cfg := getConfig(cmd.Context())
	r := getRenderer(cmd.Context())

	insp, err := newInspector(cfg)
	if err != nil {
		return report(cmd, r, err)
	}

	result, err := insp.Inspect(cmd.Context(), cardID)
	if err != nil {
		return report(cmd, r, err)
	}
	return r.Result(cmd.OutOrStdout(), result)
}
