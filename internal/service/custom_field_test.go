package service

import (
	"testing"

	"crm-service/internal/apperror"
	"crm-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestListCustomFields(t *testing.T) {
	f := newFixture(t)
	f.mustCreate(t,
		&model.CustomField{TenantID: tenantA, Name: "CPF", Type: "text", Position: 2},
		&model.CustomField{TenantID: tenantA, Name: "Segmento", Type: "select", Position: 1,
			Options: datatypes.JSON(`["varejo","indústria"]`)},
		&model.CustomField{TenantID: tenantA, PipelineID: &f.pipelineA.ID, Name: "Frota", Type: "number", Position: 3},
		&model.CustomField{TenantID: tenantA, PipelineID: &f.pipelineA2.ID, Name: "Plano", Type: "text", Position: 4},
		&model.CustomField{TenantID: tenantB, Name: "Outro", Type: "text"},
	)

	global, err := f.svc.CustomFields.ListFields(f.ctx, tenantA, "")
	require.NoError(t, err)
	require.Len(t, global, 2)
	assert.Equal(t, "Segmento", global[0].Name)
	assert.Equal(t, "CPF", global[1].Name)

	scoped, err := f.svc.CustomFields.ListFields(f.ctx, tenantA, f.pipelineA.ID)
	require.NoError(t, err)
	require.Len(t, scoped, 3)
	assert.Equal(t, "Frota", scoped[2].Name)
}

func TestSetCustomValuesUpserts(t *testing.T) {
	f := newFixture(t)
	lead := f.newLead(t, tenantA, f.leadInput("Acme"))

	values, err := f.svc.CustomFields.SetValues(f.ctx, tenantA, lead.ID, []CustomValueInput{
		{FieldID: "cpf", Value: ptr("123")},
		{FieldID: "segmento", Value: ptr("varejo")},
	})
	require.NoError(t, err)
	require.Len(t, values, 2)

	values, err = f.svc.CustomFields.SetValues(f.ctx, tenantA, lead.ID, []CustomValueInput{
		{FieldID: "cpf", Value: ptr("456")},
		{FieldID: "frota", Value: ptr("12")},
	})
	require.NoError(t, err)
	require.Len(t, values, 3)

	byField := make(map[string]string)
	for _, v := range values {
		byField[v.FieldID] = *v.Value
	}
	assert.Equal(t, map[string]string{"cpf": "456", "segmento": "varejo", "frota": "12"}, byField)
}

func TestCustomValuesRequireTenantLead(t *testing.T) {
	f := newFixture(t)
	lead := f.newLead(t, tenantA, f.leadInput("Acme"))

	_, err := f.svc.CustomFields.GetValues(f.ctx, tenantB, lead.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = f.svc.CustomFields.SetValues(f.ctx, tenantB, lead.ID, []CustomValueInput{{FieldID: "cpf", Value: ptr("1")}})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	var count int64
	require.NoError(t, f.db.Model(&model.CustomValue{}).Count(&count).Error)
	assert.Zero(t, count)
}
