package conversation

import (
	"context"
	"log/slog"

	"github.com/charlabot/charla/ai"
	"github.com/charlabot/charla/core"
)

// ErrorIntentLabel marks a turn whose classification failed outright. The
// result carries IsFallback so the turn degrades to the retrieval path
// instead of dropping the conversation.
const ErrorIntentLabel = "classifier.error"

// IntentFilter is the fast path of a conversation turn: it asks the
// classifier for a confident intent match and absorbs every classifier
// failure into a fallback result. Classification never fails a turn.
type IntentFilter struct {
	classifier ai.Classifier
	logger     *slog.Logger
}

// NewIntentFilter creates an intent filter over the classifier.
func NewIntentFilter(classifier ai.Classifier, logger *slog.Logger) (*IntentFilter, error) {
	if classifier == nil {
		return nil, ErrClassifierRequired
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &IntentFilter{
		classifier: classifier,
		logger:     logger.With("component", "intent-filter"),
	}, nil
}

// Classify resolves the query to an intent result. It never returns an
// error: an unreachable classifier yields a synthetic fallback result so the
// retrieval path still runs.
func (f *IntentFilter) Classify(ctx context.Context, query, sessionKey string) core.IntentResult {
	intent, err := f.classifier.DetectIntent(ctx, query, sessionKey)
	if err != nil {
		f.logger.Error("classifier unavailable, degrading to retrieval",
			"session", sessionKey,
			"kind", core.ErrClassifierUnavailable,
			"err", err,
		)
		return core.IntentResult{
			Label:      ErrorIntentLabel,
			IsFallback: true,
		}
	}

	return core.IntentResult{
		Label:           intent.Label,
		FulfillmentText: intent.FulfillmentText,
		IsFallback:      intent.IsFallback,
	}
}
