package mock

import "context"

// MockCompleter is a test double for ai.Completer.
// It allows custom behavior injection via function fields.
type MockCompleter struct {
	// CompleteFunc is called by Complete if set.
	// If nil, the configured Reply (or the user text) is echoed back.
	CompleteFunc func(ctx context.Context, system, user string) (string, error)

	// Reply is returned by the default behavior when non-empty.
	Reply string

	callCount  int
	lastSystem string
	lastUser   string
}

// NewMockCompleter creates a mock completer that echoes the user text.
func NewMockCompleter() *MockCompleter {
	return &MockCompleter{}
}

// Complete records the call and returns the injected or default reply.
func (m *MockCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	m.callCount++
	m.lastSystem = system
	m.lastUser = user

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, system, user)
	}

	if m.Reply != "" {
		return m.Reply, nil
	}
	return user, nil
}

// CallCount returns the number of times Complete was called.
func (m *MockCompleter) CallCount() int {
	return m.callCount
}

// LastSystem returns the system instruction of the most recent call.
func (m *MockCompleter) LastSystem() string {
	return m.lastSystem
}

// LastUser returns the user text of the most recent call.
func (m *MockCompleter) LastUser() string {
	return m.lastUser
}

// Reset clears recorded calls and injected behavior.
func (m *MockCompleter) Reset() {
	m.callCount = 0
	m.lastSystem = ""
	m.lastUser = ""
	m.Reply = ""
	m.CompleteFunc = nil
}
