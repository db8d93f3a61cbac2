package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crm-service/internal/apperror"
	"crm-service/pkg/pagination"
	"crm-service/pkg/validator"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = validator.New()
	rec := httptest.NewRecorder()
	return e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), rec), rec
}

func TestPageParams(t *testing.T) {
	tests := []struct {
		query   string
		want    pagination.Params
		wantErr bool
	}{
		{"", pagination.Params{Page: 1, Limit: 20}, false},
		{"page=3&limit=100", pagination.Params{Page: 3, Limit: 100}, false},
		{"limit=1", pagination.Params{Page: 1, Limit: 1}, false},
		{"page=0", pagination.Params{}, true},
		{"page=-2", pagination.Params{}, true},
		{"limit=0", pagination.Params{}, true},
		{"limit=101", pagination.Params{}, true},
		{"limit=dez", pagination.Params{}, true},
	}

	for _, tt := range tests {
		c, _ := newContext("/leads?" + tt.query)
		got, err := pageParams(c, pagination.DefaultLimit)
		if tt.wantErr {
			assert.True(t, apperror.Is(err, apperror.KindValidation), tt.query)
			continue
		}
		require.NoError(t, err, tt.query)
		assert.Equal(t, tt.want, got, tt.query)
	}
}

func TestPageParamsMessageDefault(t *testing.T) {
	c, _ := newContext("/messages")
	got, err := pageParams(c, 50)
	require.NoError(t, err)
	assert.Equal(t, 50, got.Limit)
}

func TestQueryTime(t *testing.T) {
	c, _ := newContext("/leads?created_from=2025-01-31&created_to=2025-02-01T10:30:00-03:00&bad=ontem")

	from, err := queryTime(c, "created_from")
	require.NoError(t, err)
	assert.True(t, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC).Equal(*from))

	to, err := queryTime(c, "created_to")
	require.NoError(t, err)
	assert.True(t, time.Date(2025, 2, 1, 13, 30, 0, 0, time.UTC).Equal(*to))

	missing, err := queryTime(c, "date_from")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = queryTime(c, "bad")
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestQueryList(t *testing.T) {
	c, _ := newContext("/leads?tags=vip&tags=quente,%20frio&tags=")
	assert.Equal(t, []string{"vip", "quente", "frio"}, queryList(c, "tags"))
	assert.Nil(t, queryList(c, "other"))
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		detail string
	}{
		{"not found", apperror.NotFound("Tarefa '%s' não encontrada", "t1"), http.StatusNotFound, "Tarefa 't1' não encontrada"},
		{"wrapped validation", fmt.Errorf("creating lead: %w", apperror.Validation("Stage inválido")), http.StatusUnprocessableEntity, "Stage inválido"},
		{"echo error", echo.ErrMethodNotAllowed, http.StatusMethodNotAllowed, "Method Not Allowed"},
		{"datastore failure", errors.New("pq: connection reset"), http.StatusInternalServerError, internalErrorDetail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext("/")
			ErrorHandler(tt.err, c)

			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"detail":%q}`, tt.detail), rec.Body.String())
		})
	}
}

func TestErrorHandlerValidator(t *testing.T) {
	type payload struct {
		Direction string `json:"direction" validate:"required,oneof=inbound outbound"`
	}
	c, rec := newContext("/")

	err := c.Validate(&payload{Direction: "sideways"})
	require.Error(t, err)
	ErrorHandler(err, c)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "direction")
}
