package service

import (
	"testing"

	"crm-service/internal/apperror"
	"crm-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveActiveToken(t *testing.T) {
	f := newFixture(t)
	token := model.APIToken{TenantID: tenantA, Name: "integração", Token: "adv_live_a", IsActive: true}
	f.mustCreate(t, &token)

	tenantID, err := f.svc.Tokens.Resolve(f.ctx, "adv_live_a")
	require.NoError(t, err)
	assert.Equal(t, tenantA, tenantID)

	f.svc.Tokens.Wait()

	var stored model.APIToken
	require.NoError(t, f.db.First(&stored, "id = ?", token.ID).Error)
	assert.NotNil(t, stored.LastUsedAt)
}

func TestResolveRejectsUnknownAndInactiveTokens(t *testing.T) {
	f := newFixture(t)
	f.mustCreate(t, &model.APIToken{TenantID: tenantA, Name: "revogado", Token: "adv_live_off", IsActive: false})

	tests := []struct {
		name   string
		token  string
		detail string
	}{
		{"missing", "", "Token não fornecido"},
		{"unknown", "adv_live_nope", "Token de API inválido ou desativado"},
		{"inactive", "adv_live_off", "Token de API inválido ou desativado"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tenantID, err := f.svc.Tokens.Resolve(f.ctx, tt.token)
			require.Error(t, err)
			assert.Empty(t, tenantID)
			assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
			assert.Equal(t, tt.detail, err.Error())
		})
	}
}
