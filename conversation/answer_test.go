package conversation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlabot/charla/ai/mock"
	"github.com/charlabot/charla/core"
)

func testContext() *core.RetrievedContext {
	return &core.RetrievedContext{Snippets: []core.ContextSnippet{
		{Title: "Horarios", Content: "Abrimos de lunes a viernes de 9 a 18.", Score: 0.9},
	}}
}

func TestNewGenerator_RequiresCompleter(t *testing.T) {
	_, err := NewGenerator(nil, nil)
	assert.ErrorIs(t, err, ErrCompleterRequired)
}

func TestGenerate_GroundedAnswer(t *testing.T) {
	completer := mock.NewMockCompleter()
	completer.Reply = "Abrimos de 9 a 18, de lunes a viernes."

	generator, err := NewGenerator(completer, nil)
	require.NoError(t, err)

	reply := generator.Generate(context.Background(), "¿cuál es el horario?", testContext())
	assert.Equal(t, "Abrimos de 9 a 18, de lunes a viernes.", reply)

	// The retrieved snippets and the sentinel instruction travel in the
	// system turn; the user turn is the raw query.
	assert.Contains(t, completer.LastSystem(), "Abrimos de lunes a viernes de 9 a 18.")
	assert.Contains(t, completer.LastSystem(), core.HandoffSentinel)
	assert.Equal(t, "¿cuál es el horario?", completer.LastUser())
}

func TestGenerate_CompletionErrorIsGenericReply(t *testing.T) {
	completer := mock.NewMockCompleter()
	completer.CompleteFunc = func(ctx context.Context, system, user string) (string, error) {
		return "", errors.New("model timeout")
	}

	generator, err := NewGenerator(completer, nil)
	require.NoError(t, err)

	reply := generator.Generate(context.Background(), "hola", testContext())
	assert.Equal(t, GenericErrorReply, reply)
	assert.NotEqual(t, core.HandoffSentinel, reply)
}

func TestGenerate_EmptyCompletionHandsOff(t *testing.T) {
	completer := mock.NewMockCompleter()
	completer.CompleteFunc = func(ctx context.Context, system, user string) (string, error) {
		return "   \n", nil
	}

	generator, err := NewGenerator(completer, nil)
	require.NoError(t, err)

	reply := generator.Generate(context.Background(), "hola", testContext())
	assert.Equal(t, core.HandoffSentinel, reply)
}

func TestGenerate_SentinelPassesThroughExactly(t *testing.T) {
	completer := mock.NewMockCompleter()
	completer.Reply = core.HandoffSentinel

	generator, err := NewGenerator(completer, nil)
	require.NoError(t, err)

	reply := generator.Generate(context.Background(), "¿venden refacciones?", testContext())
	assert.Equal(t, core.HandoffSentinel, reply)
}
