package apperror

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{NotFound("Lead '%s' não encontrado", "abc"), http.StatusNotFound},
		{Unauthorized("Token não fornecido"), http.StatusUnauthorized},
		{Forbidden("Sem permissão"), http.StatusForbidden},
		{Validation("Pipeline '%s' não encontrado", "p1"), http.StatusUnprocessableEntity},
		{Conflict("duplicado"), http.StatusConflict},
		{&Error{Detail: "unknown"}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.HTTPStatus(), tt.err.Detail)
	}
}

func TestDetailNamesIdentifier(t *testing.T) {
	err := NotFound("Lead '%s' não encontrado", "lead-1")
	assert.Equal(t, "Lead 'lead-1' não encontrado", err.Error())
}

func TestIsUnwraps(t *testing.T) {
	wrapped := fmt.Errorf("moving lead: %w", NotFound("Stage '%s' não encontrado", "s1"))

	assert.True(t, Is(wrapped, KindNotFound))
	assert.False(t, Is(wrapped, KindValidation))
	assert.False(t, Is(fmt.Errorf("boom"), KindNotFound))
}
