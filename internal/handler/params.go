package handler

import (
	"strconv"
	"strings"
	"time"

	"crm-service/internal/apperror"
	"crm-service/pkg/pagination"

	"github.com/labstack/echo/v4"
)

const dateLayout = "2006-01-02"

// pageParams reads page and limit, rejecting values out of range with 422
func pageParams(c echo.Context, defaultLimit int) (pagination.Params, error) {
	p := pagination.Params{Page: pagination.DefaultPage, Limit: defaultLimit}

	if raw := c.QueryParam("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return p, apperror.Validation("Parâmetro 'page' deve ser um inteiro maior ou igual a 1")
		}
		p.Page = page
	}

	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > pagination.MaxLimit {
			return p, apperror.Validation("Parâmetro 'limit' deve estar entre 1 e %d", pagination.MaxLimit)
		}
		p.Limit = limit
	}

	return p, nil
}

// queryTime parses an ISO 8601 date or timestamp query parameter
func queryTime(c echo.Context, name string) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, dateLayout} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, apperror.Validation("Parâmetro '%s' deve ser uma data ISO 8601", name)
}

// queryBool reads a boolean query parameter, false when absent
func queryBool(c echo.Context, name string) (bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperror.Validation("Parâmetro '%s' deve ser true ou false", name)
	}
	return v, nil
}

// queryList collects a repeated query parameter; comma separated values are split
func queryList(c echo.Context, name string) []string {
	var values []string
	for _, raw := range c.QueryParams()[name] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
	}
	return values
}

// bind decodes the request body into dst and validates it
func bind(c echo.Context, dst interface{}) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
		return apperror.Validation("Corpo da requisição inválido")
	}
	return c.Validate(dst)
}

func message(text string) echo.Map {
	return echo.Map{"message": text}
}
