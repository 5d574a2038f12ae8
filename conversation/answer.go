package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charlabot/charla/ai"
	"github.com/charlabot/charla/core"
)

// GenericErrorReply is returned when answer generation itself breaks. It is
// deliberately distinct from the handoff sentinel: a transient model failure
// should not page a human.
const GenericErrorReply = "Lo siento, tuve un problema para procesar tu mensaje. Por favor, intenta de nuevo en unos minutos."

// answerPrompt instructs the model to answer strictly from the provided
// context and to emit the handoff sentinel verbatim when it cannot. A
// grounded negation ("no ofrecemos ese servicio") counts as an answer, not
// as a handoff.
const answerPrompt = `Eres el asistente virtual de atención al cliente del negocio.

Responde la pregunta del cliente usando únicamente la información del contexto siguiente. Reglas:

- Responde en español, breve y cordial.
- Usa solo hechos presentes en el contexto. No inventes datos, precios ni horarios.
- Si el contexto indica que algo NO se ofrece o NO es posible, responde con esa negación: es una respuesta válida.
- Si el contexto no contiene la información necesaria para responder, responde exactamente con: %s
  Sin comillas, sin texto adicional.

Contexto:
%s`

// Generator produces the grounded reply for the slow path of a turn.
type Generator struct {
	completer ai.Completer
	logger    *slog.Logger
}

// NewGenerator creates an answer generator over the completer.
func NewGenerator(completer ai.Completer, logger *slog.Logger) (*Generator, error) {
	if completer == nil {
		return nil, ErrCompleterRequired
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Generator{
		completer: completer,
		logger:    logger.With("component", "generator"),
	}, nil
}

// Generate answers the query grounded on the retrieved context. Like the
// rest of the turn it never fails: a completion error collapses to
// GenericErrorReply, and an empty or sentinel reply passes through as the
// handoff sentinel.
func (g *Generator) Generate(ctx context.Context, query string, retrieved *core.RetrievedContext) string {
	system := fmt.Sprintf(answerPrompt, core.HandoffSentinel, retrieved.Render())

	reply, err := g.completer.Complete(ctx, system, query)
	if err != nil {
		g.logger.Error("error generating answer", "kind", core.ErrCompletionFailed, "err", err)
		return GenericErrorReply
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		g.logger.Warn("empty completion, handing off")
		return core.HandoffSentinel
	}

	return reply
}
