package mock

import (
	"context"

	"github.com/charlabot/charla/ai"
)

// MockClassifier is a test double for ai.Classifier.
// It allows custom behavior injection via function fields.
type MockClassifier struct {
	// DetectIntentFunc is called by DetectIntent if set.
	// If nil, every query matches the fallback intent.
	DetectIntentFunc func(ctx context.Context, query, sessionKey string) (ai.Intent, error)

	callCount      int
	lastQuery      string
	lastSessionKey string
}

// NewMockClassifier creates a mock classifier that always reports fallback.
func NewMockClassifier() *MockClassifier {
	return &MockClassifier{}
}

// DetectIntent records the call and returns the injected or fallback intent.
func (m *MockClassifier) DetectIntent(ctx context.Context, query, sessionKey string) (ai.Intent, error) {
	m.callCount++
	m.lastQuery = query
	m.lastSessionKey = sessionKey

	if m.DetectIntentFunc != nil {
		return m.DetectIntentFunc(ctx, query, sessionKey)
	}

	return ai.Intent{Label: ai.FallbackIntentLabel, IsFallback: true}, nil
}

// CallCount returns the number of times DetectIntent was called.
func (m *MockClassifier) CallCount() int {
	return m.callCount
}

// LastQuery returns the query of the most recent call.
func (m *MockClassifier) LastQuery() string {
	return m.lastQuery
}

// LastSessionKey returns the session key of the most recent call.
func (m *MockClassifier) LastSessionKey() string {
	return m.lastSessionKey
}

// Reset clears recorded calls and injected behavior.
func (m *MockClassifier) Reset() {
	m.callCount = 0
	m.lastQuery = ""
	m.lastSessionKey = ""
	m.DetectIntentFunc = nil
}
