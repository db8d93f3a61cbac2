package middleware

import (
	"context"
	"strings"

	"crm-service/internal/apperror"
	"crm-service/pkg/logger"
	"crm-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const tenantIDKey = "tenant_id"

// TokenResolver maps an API token to the tenant that owns it
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// AuthMiddleware resolves the bearer token of every request to a tenant id
func AuthMiddleware(tokens TokenResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				log.Warn("Missing or malformed Authorization header")
				prometheus.RecordAuthError("missing_token")
				return unauthorized(c, apperror.Unauthorized("Token não fornecido"))
			}

			tenantID, err := tokens.Resolve(c.Request().Context(), token)
			if err != nil {
				if apperror.Is(err, apperror.KindUnauthorized) {
					log.Warn("Rejected API token", zap.Error(err))
					prometheus.RecordAuthError("invalid_token")
					return unauthorized(c, err)
				}
				prometheus.RecordAuthError("db_error")
				return err
			}

			c.Set(tenantIDKey, tenantID)
			logger.WithFields(c, zap.String("tenant_id", tenantID)).
				Debug("Request authenticated")

			return next(c)
		}
	}
}

// TenantID returns the tenant resolved by AuthMiddleware
func TenantID(c echo.Context) string {
	tenantID, _ := c.Get(tenantIDKey).(string)
	return tenantID
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(c echo.Context, err error) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return err
}
