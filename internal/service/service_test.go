package service

import (
	"context"
	"testing"
	"time"

	"crm-service/internal/model"
	"crm-service/pkg/database"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	tenantA = "empresa-a"
	tenantB = "empresa-b"
)

type fixture struct {
	db  *gorm.DB
	svc *ServiceManager
	ctx context.Context

	pipelineA  model.Pipeline
	stageA1    model.Stage
	stageA2    model.Stage
	pipelineA2 model.Pipeline
	stageA3    model.Stage
	pipelineB  model.Pipeline
	stageB1    model.Stage
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.MigrateModels(db, model.AllModels()...))

	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := newTestDB(t)
	f := &fixture{
		db:  db,
		svc: NewServiceManager(db, zap.NewNop(), time.Second),
		ctx: context.Background(),
	}
	t.Cleanup(f.svc.Tokens.Wait)

	order1, order2 := 1, 2
	f.pipelineA = model.Pipeline{TenantID: tenantA, Name: "Vendas", Active: true, DisplayOrder: &order1}
	f.pipelineA2 = model.Pipeline{TenantID: tenantA, Name: "Pós-venda", Active: true, DisplayOrder: &order2}
	f.pipelineB = model.Pipeline{TenantID: tenantB, Name: "Outra empresa", Active: true, DisplayOrder: &order1}
	f.mustCreate(t, &f.pipelineA, &f.pipelineA2, &f.pipelineB)

	f.stageA2 = model.Stage{PipelineID: f.pipelineA.ID, Name: "Proposta", Color: "#00f", Position: 2}
	f.stageA1 = model.Stage{PipelineID: f.pipelineA.ID, Name: "Novo", Color: "#0f0", Position: 1}
	f.stageA3 = model.Stage{PipelineID: f.pipelineA2.ID, Name: "Onboarding", Color: "#f00", Position: 1}
	f.stageB1 = model.Stage{PipelineID: f.pipelineB.ID, Name: "Entrada", Color: "#fff", Position: 1}
	f.mustCreate(t, &f.stageA2, &f.stageA1, &f.stageA3, &f.stageB1)

	return f
}

func (f *fixture) mustCreate(t *testing.T, rows ...interface{}) {
	t.Helper()
	for _, row := range rows {
		require.NoError(t, f.db.Create(row).Error)
	}
}

func (f *fixture) newLead(t *testing.T, tenantID string, in LeadInput) *model.Lead {
	t.Helper()
	lead, err := f.svc.Leads.Create(f.ctx, tenantID, in)
	require.NoError(t, err)
	return lead
}

func (f *fixture) leadInput(name string) LeadInput {
	return LeadInput{PipelineID: f.pipelineA.ID, StageID: f.stageA1.ID, Name: name}
}

func ptr[T any](v T) *T {
	return &v
}
