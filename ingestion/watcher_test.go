package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceIDFromFilename(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"horarios.txt", "horarios"},
		{"Preguntas Frecuentes.md", "preguntas-frecuentes"},
		{"manual_v2.pdf", "manual_v2"},
		{"Política de Envíos.txt", "pol-tica-de-env-os"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sourceIDFromFilename(tt.name))
	}
}
