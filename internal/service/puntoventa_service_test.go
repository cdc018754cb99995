package service

import (
	"context"
	"testing"
	"time"

	"barbercontrol/internal/apierror"
	"barbercontrol/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDesactivarPuntoVentaConCajaAbierta(t *testing.T) {
	puntos := newFakePuntoVentaRepo()
	cajas := newFakeCajaRepo()
	svc := NewPuntoVentaService(puntos, cajas)
	tenant := uuid.New()

	pdv := &model.PuntoVenta{TenantID: tenant, Nombre: "Local Centro", Activo: true}
	require.NoError(t, puntos.Create(context.Background(), pdv))

	caja, err := cajas.GetOrCreateActiva(context.Background(), tenant, pdv.ID)
	require.NoError(t, err)
	require.NoError(t, cajas.AbrirTx(context.Background(), nil, caja.ID, dec("1000"), time.Now()))

	err = svc.Desactivar(context.Background(), tenant, pdv.ID)
	assert.ErrorIs(t, err, apierror.ErrPuntoVentaCajaAbierta)

	actual, err := puntos.FindByID(context.Background(), pdv.ID)
	require.NoError(t, err)
	assert.True(t, actual.Activo)
}

func TestDesactivarPuntoVentaConCajaCerrada(t *testing.T) {
	puntos := newFakePuntoVentaRepo()
	cajas := newFakeCajaRepo()
	svc := NewPuntoVentaService(puntos, cajas)
	tenant := uuid.New()

	pdv := &model.PuntoVenta{TenantID: tenant, Nombre: "Local Norte", Activo: true}
	require.NoError(t, puntos.Create(context.Background(), pdv))
	_, err := cajas.GetOrCreateActiva(context.Background(), tenant, pdv.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Desactivar(context.Background(), tenant, pdv.ID))
	actual, err := puntos.FindByID(context.Background(), pdv.ID)
	require.NoError(t, err)
	assert.False(t, actual.Activo)
}

func TestDesactivarPuntoVentaSinCajaProvisionada(t *testing.T) {
	puntos := newFakePuntoVentaRepo()
	svc := NewPuntoVentaService(puntos, newFakeCajaRepo())
	tenant := uuid.New()

	pdv := &model.PuntoVenta{TenantID: tenant, Nombre: "Local Sur", Activo: true}
	require.NoError(t, puntos.Create(context.Background(), pdv))

	require.NoError(t, svc.Desactivar(context.Background(), tenant, pdv.ID))
}
