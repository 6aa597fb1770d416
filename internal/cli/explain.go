package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sozercan/card-inspector/apimodels"
	"github.com/sozercan/card-inspector/internal/explainer"
	"github.com/sozercan/card-inspector/internal/inspector"
	"github.com/sozercan/card-inspector/internal/llm"
	"github.com/sozercan/card-inspector/internal/render"
)

// NewExplainCommand creates the explain command.
func NewExplainCommand() *cobra.Command {
	var maxTokens int64

	cmd := &cobra.Command{
		Use:   "explain <card_id>",
		Short: "Explain a card's SQL in plain language",
		Long: `Inspect a card and ask an LLM to describe what its query computes.

Requires OPENAI_API_KEY (and OPENAI_PROVIDER=azure plus OPENAI_ENDPOINT for
Azure OpenAI).`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig(cmd.Context())
			r := getRenderer(cmd.Context())

			if len(args) != 1 {
				msg := fmt.Sprintf("Usage: %s explain <card_id>\nExample: %s explain 5342", programName, programName)
				return report(cmd, r, inspector.UsageError(msg))
			}
			if !cfg.OpenAI.Enabled() {
				return report(cmd, r, errors.New("OpenAI API key is not configured (set OPENAI_API_KEY)"))
			}

			insp, err := newInspector(cfg)
			if err != nil {
				return report(cmd, r, err)
			}
			provider, err := llm.NewOpenAI(&cfg.OpenAI)
			if err != nil {
				return report(cmd, r, err)
			}

			req := apimodels.ExplainRequest{
				CardID:  apimodels.CardID(args[0]),
				Options: apimodels.ExplainOptions{MaxTokens: maxTokens},
			}
			if cmd.Flags().Changed("model") {
				req.Options.Model = cfg.OpenAI.Model
			}

			resp, err := explainer.New(insp, provider).Explain(cmd.Context(), req)
			if err != nil {
				return report(cmd, r, err)
			}

			format, _ := render.ParseFormat(cfg.Output)
			return writeExplanation(cmd.OutOrStdout(), format, resp)
		},
	}

	cmd.Flags().String("model", "", "LLM model or Azure deployment to use")
	cmd.Flags().Int64Var(&maxTokens, "max-tokens", 0, "Limit the length of the explanation")

	return cmd
}

func writeExplanation(w io.Writer, format render.Format, resp *apimodels.ExplainResponse) error {
	if format == render.FormatJSON {
		return writeIndentedJSON(w, resp)
	}
	if err := render.New(format).Result(w, resp.Inspection); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(w, "\nEXPLANATION:")
	_, _ = fmt.Fprintln(w, "----------------------------------------")
	_, err := fmt.Fprintln(w, resp.Result)
	return err
}

func writeIndentedJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
