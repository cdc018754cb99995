package service

import (
	"context"
	"testing"

	"barbercontrol/internal/apierror"
	"barbercontrol/internal/dto"
	"barbercontrol/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nuevoConsumoPendiente(t *testing.T, repo *fakeConsumoRepo, tenantID, pdvID, usuarioID uuid.UUID, venta, costo string) uuid.UUID {
	t.Helper()
	c := &model.ConsumoPersonal{
		TenantID: tenantID, PuntoVentaID: pdvID, UsuarioID: usuarioID,
		Descripcion: "corte + producto", TotalVenta: dec(venta), TotalCosto: dec(costo),
		EstadoLiquidacion: "pendiente",
	}
	require.NoError(t, repo.Create(context.Background(), c))
	return c.ID
}

func TestRegistrarConsumoQuedaPendiente(t *testing.T) {
	f := newCajaFixture(t, DefaultConfiguracion())
	f.abrirCon(t, dec("1000"))
	svc := NewConsumoService(f.consumos, f.svc)

	res, err := svc.Registrar(context.Background(), f.tenant, f.usuario, &dto.RegistrarConsumoRequest{
		PuntoVentaID: f.pdv.String(),
		Descripcion:  "shampoo de góndola",
		TotalVenta:   dec("1200"),
		TotalCosto:   dec("700"),
	})
	require.NoError(t, err)
	assert.Nil(t, res.Decision)
	assert.Equal(t, "pendiente", res.EstadoLiquidacion)
	assert.True(t, res.TotalVenta.Equal(dec("1200")))
	assert.Len(t, f.consumos.consumos, 1)
}

func TestRegistrarConsumoCajaCerradaAbreSilencioso(t *testing.T) {
	cfg := DefaultConfiguracion()
	cfg.Caja.AperturaModo = AperturaModoPrimeraVenta
	f := newCajaFixture(t, cfg)
	svc := NewConsumoService(f.consumos, f.svc)

	res, err := svc.Registrar(context.Background(), f.tenant, f.usuario, &dto.RegistrarConsumoRequest{
		PuntoVentaID: f.pdv.String(),
		Descripcion:  "toalla",
		TotalVenta:   dec("400"),
		TotalCosto:   dec("250"),
	})
	require.NoError(t, err)
	assert.Nil(t, res.Decision)
	assert.Len(t, f.consumos.consumos, 1)

	caja, err := f.cajas.FindActivaPorPuntoVenta(context.Background(), f.tenant, f.pdv)
	require.NoError(t, err)
	assert.True(t, caja.Abierta)
	assert.True(t, caja.MontoInicial.IsZero())
}

func TestRegistrarConsumoCajaBloqueadaNoGraba(t *testing.T) {
	cfg := DefaultConfiguracion()
	cfg.Caja.AccionCajaCerrada = AccionCerradaBloquear
	f := newCajaFixture(t, cfg)
	svc := NewConsumoService(f.consumos, f.svc)

	_, err := svc.Registrar(context.Background(), f.tenant, f.usuario, &dto.RegistrarConsumoRequest{
		PuntoVentaID: f.pdv.String(),
		Descripcion:  "toalla",
		TotalVenta:   dec("400"),
		TotalCosto:   dec("250"),
	})
	require.ErrorIs(t, err, apierror.ErrCajaCerradaBloqueada)
	assert.Empty(t, f.consumos.consumos, "el control de caja corre antes de grabar")
}

func TestLiquidarManualAcciones(t *testing.T) {
	casos := []struct {
		accion string
		regla  string
		monto  string
		estado string
	}{
		{"cobrar_venta", ReglaCobroAutomaticoVenta, "1200", "cobrado"},
		{"cobrar_costo", ReglaCobroAutomaticoCosto, "700", "cobrado"},
		{"perdonar", ReglaPerdonado, "0", "perdonado"},
	}
	for _, tc := range casos {
		t.Run(tc.accion, func(t *testing.T) {
			repo := newFakeConsumoRepo()
			svc := NewConsumoService(repo, nil)
			tenant, admin, usuario := uuid.New(), uuid.New(), uuid.New()
			id := nuevoConsumoPendiente(t, repo, tenant, uuid.New(), usuario, "1200", "700")

			res, err := svc.LiquidarManual(context.Background(), tenant, admin, id, &dto.LiquidarConsumoRequest{
				Accion: tc.accion,
			})
			require.NoError(t, err)
			assert.Equal(t, tc.estado, res.EstadoLiquidacion)

			require.Len(t, repo.liquidaciones, 1)
			liq := repo.liquidaciones[0]
			assert.Equal(t, tc.regla, liq.Regla)
			assert.True(t, liq.Monto.Equal(dec(tc.monto)))
			assert.Nil(t, liq.CierreCajaID, "la liquidación manual no referencia ningún cierre")
			require.NotNil(t, liq.UsuarioID)
			assert.Equal(t, admin, *liq.UsuarioID)
		})
	}
}

func TestLiquidarManualYaLiquidado(t *testing.T) {
	repo := newFakeConsumoRepo()
	svc := NewConsumoService(repo, nil)
	tenant := uuid.New()
	id := nuevoConsumoPendiente(t, repo, tenant, uuid.New(), uuid.New(), "100", "60")
	require.NoError(t, repo.ActualizarEstadoTx(context.Background(), nil, id, "cobrado"))

	_, err := svc.LiquidarManual(context.Background(), tenant, uuid.New(), id, &dto.LiquidarConsumoRequest{
		Accion: "cobrar_venta",
	})
	var coded *apierror.Coded
	require.ErrorAs(t, err, &coded)
	assert.Equal(t, "CONSUMO_YA_LIQUIDADO", coded.Code)
}

func TestLiquidarManualOtroTenantNoVisible(t *testing.T) {
	repo := newFakeConsumoRepo()
	svc := NewConsumoService(repo, nil)
	id := nuevoConsumoPendiente(t, repo, uuid.New(), uuid.New(), uuid.New(), "100", "60")

	_, err := svc.LiquidarManual(context.Background(), uuid.New(), uuid.New(), id, &dto.LiquidarConsumoRequest{
		Accion: "cobrar_venta",
	})
	assert.Error(t, err)
}

func TestLiquidarPendientesEnCierrePorRegla(t *testing.T) {
	casos := []struct {
		regla        string
		totalCobrado string
		estado       string
		liquidadas   int
	}{
		{ReglaCobroAutomaticoVenta, "1700", "cobrado", 2},
		{ReglaCobroAutomaticoCosto, "1000", "cobrado", 2},
		{ReglaPerdonado, "0", "perdonado", 2},
		{ReglaPendienteSiguienteCaja, "0", "pendiente", 0},
	}
	for _, tc := range casos {
		t.Run(tc.regla, func(t *testing.T) {
			repo := newFakeConsumoRepo()
			tenant, pdv, usuario := uuid.New(), uuid.New(), uuid.New()
			nuevoConsumoPendiente(t, repo, tenant, pdv, usuario, "1200", "700")
			nuevoConsumoPendiente(t, repo, tenant, pdv, usuario, "500", "300")
			cierreID := uuid.New()

			resumen, err := liquidarPendientesEnCierre(context.Background(), nil, repo, tenant, pdv, tc.regla, cierreID)
			require.NoError(t, err)
			assert.Equal(t, tc.liquidadas, resumen.Cantidad)
			assert.True(t, resumen.TotalCobrado.Equal(dec(tc.totalCobrado)),
				"total cobrado %s, esperaba %s", resumen.TotalCobrado, tc.totalCobrado)

			for _, c := range repo.consumos {
				assert.Equal(t, tc.estado, c.EstadoLiquidacion)
			}
			assert.Len(t, repo.liquidaciones, tc.liquidadas)
			for _, l := range repo.liquidaciones {
				require.NotNil(t, l.CierreCajaID)
				assert.Equal(t, cierreID, *l.CierreCajaID)
			}
		})
	}
}
