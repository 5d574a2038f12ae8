package conversation

import (
	"context"
	"log/slog"

	"github.com/charlabot/charla/core"
)

// Orchestrator runs the state machine of a conversation turn: intent fast
// path first, then retrieval and grounded generation, with the handoff
// sentinel as the terminal fallback. Every collaborator failure degrades to
// a reply, so a turn always produces exactly one outbound message.
type Orchestrator struct {
	filter    *IntentFilter
	retriever *Retriever
	generator *Generator
	logger    *slog.Logger
}

// NewOrchestrator wires the three stages of a turn.
func NewOrchestrator(filter *IntentFilter, retriever *Retriever, generator *Generator, logger *slog.Logger) (*Orchestrator, error) {
	if filter == nil {
		return nil, ErrFilterRequired
	}
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if generator == nil {
		return nil, ErrGeneratorRequired
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		filter:    filter,
		retriever: retriever,
		generator: generator,
		logger:    logger.With("component", "orchestrator"),
	}, nil
}

// HandleTurn processes one inbound message and returns the reply text. The
// reply may be the handoff sentinel, which the transport boundary translates
// into a user-facing message. HandleTurn never returns an error.
//
// sender is the raw transport address of the end-user; the session key
// derived from it is stable across turns so the classifier keeps its
// per-session context.
func (o *Orchestrator) HandleTurn(ctx context.Context, query, sender string) string {
	sessionKey := core.SessionKeyFromSender(sender)
	logger := o.logger.With("session", sessionKey)

	intent := o.filter.Classify(ctx, query, sessionKey)
	if !intent.IsFallback && intent.FulfillmentText != "" {
		logger.Info("turn answered by intent", "intent", intent.Label)
		return intent.FulfillmentText
	}

	retrieved := o.retriever.Retrieve(ctx, query)
	if retrieved == nil {
		logger.Info("no grounding context, handing off", "intent", intent.Label)
		return core.HandoffSentinel
	}

	reply := o.generator.Generate(ctx, query, retrieved)

	if reply == core.HandoffSentinel {
		logger.Info("model declined to answer, handing off", "intent", intent.Label)
	} else {
		logger.Info("turn answered from knowledge base",
			"intent", intent.Label,
			"snippets", len(retrieved.Snippets),
		)
	}

	return reply
}
