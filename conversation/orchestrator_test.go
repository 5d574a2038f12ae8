package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlabot/charla/ai"
	"github.com/charlabot/charla/ai/mock"
	"github.com/charlabot/charla/core"
	"github.com/charlabot/charla/storage"
	"github.com/charlabot/charla/storage/badger"
)

type turnFixture struct {
	orchestrator *Orchestrator
	repo         storage.KnowledgeRepository
	classifier   *mock.MockClassifier
	embedder     *mock.MockEmbedder
	completer    *mock.MockCompleter
	nextSeq      int
}

func newTurnFixture(t *testing.T) *turnFixture {
	t.Helper()

	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})

	classifier := mock.NewMockClassifier()
	embedder := mock.NewMockEmbedder()
	completer := mock.NewMockCompleter()

	filter, err := NewIntentFilter(classifier, nil)
	require.NoError(t, err)
	retriever, err := NewRetriever(embedder, repo, WithMinSimilarity(0.5))
	require.NoError(t, err)
	generator, err := NewGenerator(completer, nil)
	require.NoError(t, err)
	orchestrator, err := NewOrchestrator(filter, retriever, generator, nil)
	require.NoError(t, err)

	return &turnFixture{
		orchestrator: orchestrator,
		repo:         repo,
		classifier:   classifier,
		embedder:     embedder,
		completer:    completer,
	}
}

func (f *turnFixture) seed(t *testing.T, title, content string, vector []float32) {
	t.Helper()
	err := f.repo.AddChunks(context.Background(), &core.KnowledgeChunk{
		ID:          core.IDFromContent(title + content),
		SourceID:    "faq",
		SourceTitle: title,
		Seq:         f.nextSeq,
		Content:     content,
		Vector:      vector,
		InsertedAt:  time.Now().UTC(),
	})
	require.NoError(t, err)
	f.nextSeq++
}

func TestHandleTurn_IntentFastPath(t *testing.T) {
	f := newTurnFixture(t)
	f.classifier.DetectIntentFunc = func(ctx context.Context, query, sessionKey string) (ai.Intent, error) {
		return ai.Intent{
			Label:           "consulta.horarios",
			FulfillmentText: "Atendemos de 9 a 18.",
		}, nil
	}

	reply := f.orchestrator.HandleTurn(context.Background(), "¿Cuál es el horario?", "whatsapp:+5215512345678")
	assert.Equal(t, "Atendemos de 9 a 18.", reply)

	// The fast path never touches the model services.
	assert.Zero(t, f.embedder.CallCount())
	assert.Zero(t, f.completer.CallCount())
}

func TestHandleTurn_SessionKeyIsStable(t *testing.T) {
	f := newTurnFixture(t)

	f.orchestrator.HandleTurn(context.Background(), "hola", "whatsapp:+5215512345678")
	first := f.classifier.LastSessionKey()

	f.orchestrator.HandleTurn(context.Background(), "sigo aquí", "whatsapp:+5215512345678")
	assert.Equal(t, first, f.classifier.LastSessionKey())
	assert.Equal(t, "5215512345678", first)
}

func TestHandleTurn_FallbackWithKnowledge(t *testing.T) {
	f := newTurnFixture(t)
	f.seed(t, "Horarios", "Abrimos de lunes a viernes de 9 a 18.", []float32{1, 0, 0})
	f.embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}
	f.completer.Reply = "Nuestro horario es de 9 a 18, de lunes a viernes."

	reply := f.orchestrator.HandleTurn(context.Background(), "¿Cuál es el horario?", "whatsapp:+5215512345678")
	assert.Equal(t, "Nuestro horario es de 9 a 18, de lunes a viernes.", reply)
	assert.Contains(t, f.completer.LastSystem(), "Abrimos de lunes a viernes de 9 a 18.")
}

func TestHandleTurn_NoKnowledgeHandsOff(t *testing.T) {
	f := newTurnFixture(t)

	reply := f.orchestrator.HandleTurn(context.Background(), "¿Aceptan criptomonedas?", "whatsapp:+5215512345678")
	assert.Equal(t, core.HandoffSentinel, reply)
	assert.Zero(t, f.completer.CallCount())
}

func TestHandleTurn_ClassifierDownStillAnswers(t *testing.T) {
	f := newTurnFixture(t)
	f.classifier.DetectIntentFunc = func(ctx context.Context, query, sessionKey string) (ai.Intent, error) {
		return ai.Intent{}, errors.New("grpc unavailable")
	}
	f.seed(t, "Horarios", "Abrimos de 9 a 18.", []float32{1, 0, 0})
	f.embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}
	f.completer.Reply = "Abrimos de 9 a 18."

	reply := f.orchestrator.HandleTurn(context.Background(), "¿Cuál es el horario?", "whatsapp:+5215512345678")
	assert.Equal(t, "Abrimos de 9 a 18.", reply)
}

func TestHandleTurn_GeneratorErrorIsGenericReplyNotHandoff(t *testing.T) {
	f := newTurnFixture(t)
	f.seed(t, "Horarios", "Abrimos de 9 a 18.", []float32{1, 0, 0})
	f.embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}
	f.completer.CompleteFunc = func(ctx context.Context, system, user string) (string, error) {
		return "", errors.New("model down")
	}

	reply := f.orchestrator.HandleTurn(context.Background(), "¿Cuál es el horario?", "whatsapp:+5215512345678")
	assert.Equal(t, GenericErrorReply, reply)
	assert.NotEqual(t, core.HandoffSentinel, reply)
}

func TestHandleTurn_ModelDeclinesHandsOff(t *testing.T) {
	f := newTurnFixture(t)
	f.seed(t, "Horarios", "Abrimos de 9 a 18.", []float32{1, 0, 0})
	f.embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}
	f.completer.Reply = core.HandoffSentinel

	reply := f.orchestrator.HandleTurn(context.Background(), "¿Venden refacciones?", "whatsapp:+5215512345678")
	assert.Equal(t, core.HandoffSentinel, reply)
}

func TestHandleTurn_NonFallbackWithoutFulfillmentFallsThrough(t *testing.T) {
	f := newTurnFixture(t)
	f.classifier.DetectIntentFunc = func(ctx context.Context, query, sessionKey string) (ai.Intent, error) {
		// Matched intent with no canned response configured in the agent.
		return ai.Intent{Label: "consulta.sin.respuesta"}, nil
	}

	reply := f.orchestrator.HandleTurn(context.Background(), "hola", "whatsapp:+5215512345678")
	assert.Equal(t, core.HandoffSentinel, reply)
}
