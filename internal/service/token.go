package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"crm-service/internal/apperror"
	"crm-service/internal/model"
	"crm-service/prometheus"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TokenService resolves API tokens to tenant ids
type TokenService struct {
	db           *gorm.DB
	log          *zap.Logger
	touchTimeout time.Duration
	pending      sync.WaitGroup
}

func NewTokenService(db *gorm.DB, log *zap.Logger, touchTimeout time.Duration) *TokenService {
	if touchTimeout <= 0 {
		touchTimeout = 5 * time.Second
	}
	return &TokenService{db: db, log: log, touchTimeout: touchTimeout}
}

// Resolve returns the tenant owning an active token. The token's last_used_at
// is refreshed in the background; the caller never waits for it.
func (s *TokenService) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", apperror.Unauthorized("Token não fornecido")
	}

	done := prometheus.TrackDBOperation("token_lookup")
	var apiToken model.APIToken
	err := s.db.WithContext(ctx).
		Select("id", "empresa_id", "is_active").
		Where("token = ? AND is_active = ?", token, true).
		First(&apiToken).Error
	done()
	if err != nil {
		if isNotFound(err) {
			return "", apperror.Unauthorized("Token de API inválido ou desativado")
		}
		return "", fmt.Errorf("looking up api token: %w", err)
	}

	s.touch(apiToken.ID)
	return apiToken.TenantID, nil
}

// touch records the token use on its own context so a finished request does
// not cancel the write
func (s *TokenService) touch(tokenID string) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer func() {
			if r := recover(); r != nil {
				prometheus.RecordTokenTouchFailure()
				s.log.Error("Panic while updating token last_used_at",
					zap.String("token_id", tokenID),
					zap.Any("panic", r))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), s.touchTimeout)
		defer cancel()

		err := s.db.WithContext(ctx).
			Model(&model.APIToken{}).
			Where("id = ?", tokenID).
			Update("last_used_at", now()).Error
		if err != nil {
			prometheus.RecordTokenTouchFailure()
			s.log.Warn("Failed to update token last_used_at",
				zap.String("token_id", tokenID),
				zap.Error(err))
		}
	}()
}

// Wait blocks until every pending last_used_at write has finished
func (s *TokenService) Wait() {
	s.pending.Wait()
}
