package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"crm-service/internal/handler"
	"crm-service/internal/model"
	"crm-service/internal/service"
	"crm-service/pkg/config"
	"crm-service/pkg/database"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	tokenA = "adv_live_empresa_a"
	tokenB = "adv_live_empresa_b"
)

type testServer struct {
	e        *echo.Echo
	pipeline model.Pipeline
	stage1   model.Stage
	stage2   model.Stage
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.MigrateModels(db, model.AllModels()...))
	t.Cleanup(func() { _ = database.Close(db) })

	s := &testServer{}
	s.pipeline = model.Pipeline{TenantID: "empresa-a", Name: "Vendas", Active: true}
	require.NoError(t, db.Create(&s.pipeline).Error)
	s.stage1 = model.Stage{PipelineID: s.pipeline.ID, Name: "Novo", Color: "#0f0", Position: 1}
	s.stage2 = model.Stage{PipelineID: s.pipeline.ID, Name: "Proposta", Color: "#00f", Position: 2}
	require.NoError(t, db.Create(&s.stage1).Error)
	require.NoError(t, db.Create(&s.stage2).Error)
	require.NoError(t, db.Create(&model.APIToken{TenantID: "empresa-a", Name: "a", Token: tokenA, IsActive: true}).Error)
	require.NoError(t, db.Create(&model.APIToken{TenantID: "empresa-b", Name: "b", Token: tokenB, IsActive: true}).Error)
	require.NoError(t, db.Create(&model.APIToken{TenantID: "empresa-a", Name: "old", Token: "revoked", IsActive: false}).Error)

	svc := service.NewServiceManager(db, zap.NewNop(), time.Second)
	t.Cleanup(svc.Tokens.Wait)

	cfg := &config.Config{
		Server: config.ServerConfig{Env: "test", Version: "9.9.9"},
		CORS:   config.CORSConfig{AllowedOrigins: []string{"*"}},
	}
	s.e = SetupRoutes(cfg, handler.NewHandlerManager(svc, cfg.Server.Version), svc.Tokens, zap.NewNop())
	return s
}

func (s *testServer) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","version":"9.9.9"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodGet, "/health", "", "")

	rec := s.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestUnauthorized(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		token  string
		detail string
	}{
		{"missing token", "", "Token não fornecido"},
		{"unknown token", "adv_live_nope", "Token de API inválido ou desativado"},
		{"inactive token", "revoked", "Token de API inválido ou desativado"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, "/api/v1/leads", tt.token, "")
			require.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Bearer", rec.Header().Get(echo.HeaderWWWAuthenticate))

			var body map[string]string
			decode(t, rec, &body)
			assert.Equal(t, tt.detail, body["detail"])
		})
	}
}

func TestPaginationBounds(t *testing.T) {
	s := newTestServer(t)

	for _, query := range []string{"limit=0", "limit=101", "page=0", "page=abc"} {
		rec := s.do(t, http.MethodGet, "/api/v1/leads?"+query, tokenA, "")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, query)
	}

	rec := s.do(t, http.MethodGet, "/api/v1/leads?limit=100", tokenA, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[],"total":0,"page":1,"limit":100,"total_pages":0}`, rec.Body.String())
}

func TestLeadStageChangeScenario(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/leads", tokenA,
		`{"pipeline_id":"`+s.pipeline.ID+`","stage_id":"`+s.stage1.ID+`","name":"Acme","phone":"(11) 98888-7777","tags":["vip"]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var lead map[string]interface{}
	decode(t, rec, &lead)
	leadID := lead["id"].(string)
	assert.Equal(t, "novo", lead["status"])
	assert.Equal(t, "5511988887777", lead["phone"])
	assert.Equal(t, "Vendas", lead["pipeline"].(map[string]interface{})["name"])

	rec = s.do(t, http.MethodPatch, "/api/v1/leads/"+leadID+"/stage", tokenA,
		`{"stage_id":"`+s.stage2.ID+`","notes":"avançou"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &lead)
	assert.Equal(t, s.stage2.ID, lead["stage_id"])

	rec = s.do(t, http.MethodGet, "/api/v1/leads/"+leadID+"/history", tokenA, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var history []map[string]interface{}
	decode(t, rec, &history)
	require.Len(t, history, 1)
	assert.Equal(t, "stage_changed", history[0]["change_type"])
	assert.Equal(t, s.stage1.ID, history[0]["previous_stage_id"])

	rec = s.do(t, http.MethodGet, "/api/v1/leads?tags=vip", tokenA, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Data  []map[string]interface{} `json:"data"`
		Total int                      `json:"total"`
	}
	decode(t, rec, &page)
	assert.Equal(t, 1, page.Total)

	rec = s.do(t, http.MethodGet, "/api/v1/leads/"+leadID, tokenB, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/v1/leads/"+leadID, tokenA, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Lead deletado com sucesso"}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/v1/leads/"+leadID, tokenA, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]string
	decode(t, rec, &body)
	assert.Equal(t, "Lead '"+leadID+"' não encontrado", body["detail"])
}

func TestLeadValidation(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/leads", tokenA, `{"pipeline_id":"`+s.pipeline.ID+`"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body map[string]string
	decode(t, rec, &body)
	assert.Contains(t, body["detail"], "'name'")

	rec = s.do(t, http.MethodPost, "/api/v1/leads", tokenA, `{"pipeline_id":"nope","stage_id":"nope","name":"X"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/leads", tokenA, `{not json`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestConversationMessages(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/chat/conversations", tokenA, `{"fone":"5511999990000"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var conversation map[string]interface{}
	decode(t, rec, &conversation)
	conversationID := conversation["id"].(string)
	assert.Equal(t, "active", conversation["status"])

	rec = s.do(t, http.MethodPost, "/api/v1/chat/conversations/"+conversationID+"/messages", tokenA, `{"direction":"sideways"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/chat/conversations/"+conversationID+"/messages", tokenA, `{"direction":"inbound","content":"Olá"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/v1/chat/conversations/"+conversationID+"/messages", tokenA, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Total int `json:"total"`
		Limit int `json:"limit"`
	}
	decode(t, rec, &page)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 50, page.Limit)

	rec = s.do(t, http.MethodGet, "/api/v1/chat/conversations/"+conversationID+"/messages", tokenB, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPipelinesIncludeStages(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/pipelines?include_stages=true", tokenA, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var pipelines []struct {
		Name   string `json:"name"`
		Stages []struct {
			Name string `json:"name"`
		} `json:"stages"`
	}
	decode(t, rec, &pipelines)
	require.Len(t, pipelines, 1)
	require.Len(t, pipelines[0].Stages, 2)
	assert.Equal(t, "Novo", pipelines[0].Stages[0].Name)

	rec = s.do(t, http.MethodGet, "/api/v1/pipelines?include_stages=talvez", tokenA, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/pipelines", tokenB, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHealthChecksDatabase(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/health?check=db", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","version":"9.9.9","db_status":"ok"}`, rec.Body.String())
}
