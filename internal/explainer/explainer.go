package explainer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sozercan/card-inspector/apimodels"
	"github.com/sozercan/card-inspector/internal/llm"
)

const maxResultLen = 5000

var SystemPrompt = `You are an assistant that explains analytics queries to people who did not write them.
You are given the SQL behind a saved Metabase question together with the columns it returns.
Describe in a few short paragraphs what the query computes, which tables it reads,
how rows are filtered and grouped, and what each returned column means.
Point out anything that looks suspicious, such as missing join conditions or hard-coded dates.
Do not invent tables or columns that are not in the query.`

// Inspector is the part of the card inspector the explainer depends on.
type Inspector interface {
	Inspect(ctx context.Context, cardID string) (*apimodels.InspectionResult, error)
}

type Explainer struct {
	inspector   Inspector
	llmProvider llm.Provider
}

func New(inspector Inspector, llmProvider llm.Provider) *Explainer {
	return &Explainer{
		inspector:   inspector,
		llmProvider: llmProvider,
	}
}

// Explain inspects the card and asks the LLM to describe its query.
// Inspection errors are returned unchanged so callers can classify them.
func (e *Explainer) Explain(ctx context.Context, req apimodels.ExplainRequest) (*apimodels.ExplainResponse, error) {
	slog.Info("Starting explanation", "card_id", req.CardID)
	startTime := time.Now()

	inspection, err := e.inspector.Inspect(ctx, string(req.CardID))
	if err != nil {
		return nil, err
	}

	if !inspection.HasQuery {
		slog.Info("Card has no native query, skipping LLM", "card_id", inspection.CardID)
		return &apimodels.ExplainResponse{
			Result:     "Nothing to explain: " + inspection.SQLQuery,
			Inspection: inspection,
			Metadata: apimodels.ExplainMetadata{
				Duration: time.Since(startTime).String(),
			},
		}, nil
	}

	llmResp, err := e.llmProvider.Analyze(
		ctx,
		[]string{SystemPrompt},
		[]string{buildPrompt(inspection)},
		llm.Option(func(o *llm.Options) {
			if req.Options.Model != "" {
				o.Model = req.Options.Model
			}
			if req.Options.MaxTokens != 0 {
				o.MaxTokens = req.Options.MaxTokens
			}
			if req.Options.Temperature != 0 {
				o.Temperature = req.Options.Temperature
			}
		}),
	)
	if err != nil {
		slog.Error("LLM explanation failed", "error", err)
		return nil, fmt.Errorf("LLM explanation failed: %w", err)
	}

	model := llmResp.Model
	if model == "" {
		model = req.Options.Model
	}

	return &apimodels.ExplainResponse{
		Result:     truncateString(llmResp.Content, maxResultLen),
		Inspection: inspection,
		Metadata: apimodels.ExplainMetadata{
			Duration:   time.Since(startTime).String(),
			Model:      model,
			TokensUsed: llmResp.Usage.TotalTokens,
		},
	}, nil
}

func buildPrompt(inspection *apimodels.InspectionResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Card: %s (id %s)\n\n", inspection.CardTitle, inspection.CardID)
	fmt.Fprintf(&b, "SQL:\n%s\n\n", inspection.SQLQuery)
	if len(inspection.Columns) == 0 {
		b.WriteString("Columns: none reported\n")
		return b.String()
	}
	b.WriteString("Columns:\n")
	for _, col := range inspection.Columns {
		fmt.Fprintf(&b, "%d. %s (%s)\n", col.Index, col.Name, col.Type)
	}
	return b.String()
}

func truncateString(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen] + "\n[truncated]"
	}
	return s
}
