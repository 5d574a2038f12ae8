package dialogflow

import (
	"context"
	"fmt"
	"log/slog"

	dialogflow "cloud.google.com/go/dialogflow/apiv2"
	"cloud.google.com/go/dialogflow/apiv2/dialogflowpb"
	"google.golang.org/api/option"

	"github.com/charlabot/charla/ai"
)

// defaultLanguage is the locale sent with every detect-intent call.
const defaultLanguage = "es"

// Classifier implements ai.Classifier against Google Dialogflow ES.
// The session path is built from the caller-supplied session key, so the
// agent's per-session context follows the end-user across turns.
type Classifier struct {
	sessions  *dialogflow.SessionsClient
	projectID string
	language  string
	logger    *slog.Logger
}

// Option configures a Classifier.
type Option func(*options)

type options struct {
	language        string
	credentialsFile string
	logger          *slog.Logger
}

// WithLanguage sets the language code sent to the agent.
// Default is "es".
func WithLanguage(language string) Option {
	return func(o *options) {
		if language != "" {
			o.language = language
		}
	}
}

// WithCredentialsFile authenticates with a service-account key file instead
// of application default credentials.
func WithCredentialsFile(path string) Option {
	return func(o *options) {
		o.credentialsFile = path
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewClassifier creates a classifier bound to the Dialogflow agent of the
// given GCP project. Callers must Close it to release the underlying gRPC
// connection.
func NewClassifier(ctx context.Context, projectID string, opts ...Option) (*Classifier, error) {
	if projectID == "" {
		return nil, fmt.Errorf("dialogflow: project id required")
	}

	o := &options{
		language: defaultLanguage,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}

	var clientOpts []option.ClientOption
	if o.credentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(o.credentialsFile))
	}

	sessions, err := dialogflow.NewSessionsClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("dialogflow: creating sessions client: %w", err)
	}

	return &Classifier{
		sessions:  sessions,
		projectID: projectID,
		language:  o.language,
		logger:    o.logger.With("component", "dialogflow-classifier"),
	}, nil
}

// DetectIntent classifies the query within the end-user's session.
func (c *Classifier) DetectIntent(ctx context.Context, query, sessionKey string) (ai.Intent, error) {
	session := fmt.Sprintf("projects/%s/agent/sessions/%s", c.projectID, sessionKey)

	resp, err := c.sessions.DetectIntent(ctx, &dialogflowpb.DetectIntentRequest{
		Session: session,
		QueryInput: &dialogflowpb.QueryInput{
			Input: &dialogflowpb.QueryInput_Text{
				Text: &dialogflowpb.TextInput{
					Text:         query,
					LanguageCode: c.language,
				},
			},
		},
	})
	if err != nil {
		c.logger.Error("detect intent call failed", "session", sessionKey, "err", err)
		return ai.Intent{}, err
	}

	result := resp.GetQueryResult()
	intent := ai.Intent{
		Label:           result.GetIntent().GetDisplayName(),
		FulfillmentText: result.GetFulfillmentText(),
		IsFallback:      result.GetIntent().GetIsFallback(),
	}

	// An agent without a matched intent returns an empty display name; treat
	// it the same as an explicit fallback match.
	if intent.Label == "" {
		intent.Label = ai.FallbackIntentLabel
		intent.IsFallback = true
	}

	c.logger.Debug("intent detected",
		"session", sessionKey,
		"intent", intent.Label,
		"fallback", intent.IsFallback,
	)

	return intent, nil
}

// Close releases the underlying client connection.
func (c *Classifier) Close() error {
	return c.sessions.Close()
}
