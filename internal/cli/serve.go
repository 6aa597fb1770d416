package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sozercan/card-inspector/internal/explainer"
	"github.com/sozercan/card-inspector/internal/llm"
	"github.com/sozercan/card-inspector/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve card inspection over HTTP",
		Long: `Start an HTTP server exposing card inspection as JSON.

Endpoints:
  POST /api/metabase/inspect        {"cardId": "5342"}
  GET  /api/metabase/cards/{cardID}
  POST /api/metabase/explain        {"cardId": "5342"} (requires OPENAI_API_KEY)
  GET  /api/v1/health`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := getConfig(cmd.Context())
			if !cmd.Flags().Changed("log-level") && cfg.Log.SlogLevel() > slog.LevelInfo {
				setupLogging(cmd.ErrOrStderr(), slog.LevelInfo)
			}

			insp, err := newInspector(cfg)
			if err != nil {
				return err
			}

			var exp server.CardExplainer
			if cfg.OpenAI.Enabled() {
				provider, err := llm.NewOpenAI(&cfg.OpenAI)
				if err != nil {
					return err
				}
				exp = explainer.New(insp, provider)
			} else {
				slog.Warn("OPENAI_API_KEY not set, explain endpoint disabled")
			}

			srv := server.New(cfg.Server, insp, exp)
			slog.Info("Starting card inspector server", "host", cfg.Server.Host, "port", cfg.Server.Port)
			return srv.Run()
		},
	}

	cmd.Flags().String("host", "", "Address to listen on")
	cmd.Flags().String("port", "", "Port to listen on")

	return cmd
}
