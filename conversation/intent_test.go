package conversation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlabot/charla/ai"
	"github.com/charlabot/charla/ai/mock"
)

func TestNewIntentFilter_RequiresClassifier(t *testing.T) {
	_, err := NewIntentFilter(nil, nil)
	assert.ErrorIs(t, err, ErrClassifierRequired)
}

func TestClassify_ConfidentMatch(t *testing.T) {
	classifier := mock.NewMockClassifier()
	classifier.DetectIntentFunc = func(ctx context.Context, query, sessionKey string) (ai.Intent, error) {
		return ai.Intent{
			Label:           "consulta.horarios",
			FulfillmentText: "Atendemos de lunes a viernes de 9 a 18.",
		}, nil
	}

	filter, err := NewIntentFilter(classifier, nil)
	require.NoError(t, err)

	result := filter.Classify(context.Background(), "¿a qué hora abren?", "5215512345678")
	assert.Equal(t, "consulta.horarios", result.Label)
	assert.Equal(t, "Atendemos de lunes a viernes de 9 a 18.", result.FulfillmentText)
	assert.False(t, result.IsFallback)
	assert.Equal(t, "5215512345678", classifier.LastSessionKey())
}

func TestClassify_Fallback(t *testing.T) {
	filter, err := NewIntentFilter(mock.NewMockClassifier(), nil)
	require.NoError(t, err)

	result := filter.Classify(context.Background(), "¿hacen envíos a Mérida?", "s1")
	assert.True(t, result.IsFallback)
	assert.Equal(t, ai.FallbackIntentLabel, result.Label)
}

func TestClassify_ErrorDegradesToFallback(t *testing.T) {
	classifier := mock.NewMockClassifier()
	classifier.DetectIntentFunc = func(ctx context.Context, query, sessionKey string) (ai.Intent, error) {
		return ai.Intent{}, errors.New("rpc deadline exceeded")
	}

	filter, err := NewIntentFilter(classifier, nil)
	require.NoError(t, err)

	result := filter.Classify(context.Background(), "hola", "s1")
	assert.True(t, result.IsFallback)
	assert.Equal(t, ErrorIntentLabel, result.Label)
	assert.Empty(t, result.FulfillmentText)
}
