package inspector

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/sozercan/card-inspector/apimodels"
	"github.com/sozercan/card-inspector/internal/metabase"
)

// Fetcher returns the raw JSON document for a card.
type Fetcher interface {
	FetchCard(ctx context.Context, cardID string) ([]byte, error)
}

type Inspector struct {
	fetcher Fetcher
}

func New(fetcher Fetcher) *Inspector {
	return &Inspector{fetcher: fetcher}
}

// Inspect fetches a card and extracts its query and columns. Every failure
// is returned as an *Error carrying one of the Kind values.
func (i *Inspector) Inspect(ctx context.Context, cardID string) (*apimodels.InspectionResult, error) {
	cardID = strings.TrimSpace(cardID)
	if cardID == "" {
		return nil, UsageError("Card ID is required")
	}
	slog.Info("Inspecting card", "card_id", cardID)

	body, err := i.fetcher.FetchCard(ctx, cardID)
	if err != nil {
		var reqErr *metabase.RequestError
		if errors.As(err, &reqErr) {
			return nil, &Error{Kind: KindRequest, Err: err}
		}
		return nil, &Error{Kind: KindOther, Err: err}
	}

	result, err := Extract(cardID, body)
	if err != nil {
		slog.Error("Card response could not be decoded", "card_id", cardID, "error", err)
		return nil, err
	}

	slog.Debug("Card inspected",
		"card_id", cardID,
		"has_query", result.HasQuery,
		"columns", len(result.Columns),
	)
	return result, nil
}
