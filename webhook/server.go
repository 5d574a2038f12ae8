package webhook

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/charlabot/charla/core"
)

// HandoffReply is the user-facing translation of the handoff sentinel. The
// sentinel itself never reaches the end-user.
const HandoffReply = "Déjame comunicarte con una persona de nuestro equipo que podrá ayudarte mejor. En breve te contactamos."

// panicReply is sent when a request handler panics.
const panicReply = "Lo siento, ocurrió un error inesperado. Por favor, intenta de nuevo."

// TurnHandler processes one inbound message and returns the reply text,
// which may be the handoff sentinel.
type TurnHandler interface {
	HandleTurn(ctx context.Context, query, sender string) string
}

// IngestionStarter schedules a detached ingestion run for a source.
type IngestionStarter interface {
	Start(sourceID string)
}

// Server is the outermost transport boundary: it parses Twilio-style
// WhatsApp webhooks, runs the turn, and renders TwiML replies.
type Server struct {
	turns     TurnHandler
	ingestion IngestionStarter
	logger    *slog.Logger
	mux       *http.ServeMux
}

// NewServer creates the webhook HTTP handler. ingestion may be nil, in which
// case the document endpoints respond 404.
func NewServer(turns TurnHandler, ingestion IngestionStarter, logger *slog.Logger) (*Server, error) {
	if turns == nil {
		return nil, ErrTurnHandlerRequired
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		turns:     turns,
		ingestion: ingestion,
		logger:    logger.With("component", "webhook"),
		mux:       http.NewServeMux(),
	}

	s.mux.HandleFunc("POST /webhook", s.handleMessage)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	if ingestion != nil {
		s.mux.HandleFunc("POST /documents/{id}/ingest", s.handleIngest)
	}

	return s, nil
}

// ServeHTTP dispatches through the recover middleware.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.recoverMiddleware(s.mux).ServeHTTP(w, r)
}

// handleMessage processes one inbound WhatsApp message. The reply is always
// a 200 with a TwiML body; per-turn failures were already degraded into
// reply text by the orchestrator.
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form body", http.StatusBadRequest)
		return
	}

	sender := r.PostFormValue("From")
	body := strings.TrimSpace(r.PostFormValue("Body"))
	if sender == "" || body == "" {
		http.Error(w, "From and Body are required", http.StatusBadRequest)
		return
	}

	start := time.Now()
	reply := s.turns.HandleTurn(r.Context(), body, sender)

	handoff := reply == core.HandoffSentinel
	if handoff {
		reply = HandoffReply
	}

	s.logger.Info("message handled",
		"session", core.SessionKeyFromSender(sender),
		"handoff", handoff,
		"took", time.Since(start),
	)

	writeTwiML(w, reply)
}

// handleIngest detaches an ingestion run for the source and acknowledges
// immediately. Progress is observed through the repository, not this call.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	sourceID := r.PathValue("id")
	if sourceID == "" {
		http.Error(w, "source id required", http.StatusBadRequest)
		return
	}

	s.ingestion.Start(sourceID)
	s.logger.Info("ingestion scheduled", "source", sourceID)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// recoverMiddleware turns a handler panic into a generic apology so the
// transport never leaks an internal error to the end-user.
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic in handler", "path", r.URL.Path, "panic", rec)
				w.WriteHeader(http.StatusInternalServerError)
				writeTwiMLBody(w, panicReply)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
