package service

import (
	"testing"
	"time"

	"crm-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListVehiclesSortsImages(t *testing.T) {
	f := newFixture(t)
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	older := model.Vehicle{TenantID: tenantA, ExternalID: 1, TituloVeiculo: ptr("Gol"), CreatedAt: created}
	newer := model.Vehicle{TenantID: tenantA, ExternalID: 2, TituloVeiculo: ptr("Onix"), CreatedAt: created.Add(time.Hour)}
	f.mustCreate(t, &older, &newer, &model.Vehicle{TenantID: tenantB, ExternalID: 3, CreatedAt: created})
	f.mustCreate(t,
		&model.VehicleImage{VehicleID: newer.ID, URL: "https://img/2.jpg", Position: 2},
		&model.VehicleImage{VehicleID: newer.ID, URL: "https://img/1.jpg", Position: 1},
	)

	vehicles, err := f.svc.Vehicles.List(f.ctx, tenantA)
	require.NoError(t, err)
	require.Len(t, vehicles, 2)

	assert.Equal(t, "Onix", *vehicles[0].TituloVeiculo)
	require.Len(t, vehicles[0].Images, 2)
	assert.Equal(t, "https://img/1.jpg", vehicles[0].Images[0].URL)

	assert.NotNil(t, vehicles[1].Images)
	assert.Empty(t, vehicles[1].Images)
}

func TestListUsersByName(t *testing.T) {
	f := newFixture(t)
	f.mustCreate(t,
		&model.User{UUID: "u-2", TenantID: tenantA, FullName: "Bruno", Email: "bruno@example.com"},
		&model.User{UUID: "u-1", TenantID: tenantA, FullName: "Ana", Email: "ana@example.com"},
		&model.User{UUID: "u-3", TenantID: tenantB, FullName: "Carla", Email: "carla@example.com"},
	)

	users, err := f.svc.Users.List(f.ctx, tenantA)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Ana", users[0].FullName)
	assert.Equal(t, "Bruno", users[1].FullName)
}
