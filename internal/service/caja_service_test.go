package service

import (
	"context"
	"testing"
	"time"

	"barbercontrol/internal/apierror"
	"barbercontrol/internal/dto"
	"barbercontrol/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Fixture ──────────────────────────────────────────────────────────────────

type cajaFixture struct {
	svc      *cajaService
	cajas    *fakeCajaRepo
	cierres  *fakeCierreRepo
	ventas   *fakeVentaRepo
	consumos *fakeConsumoRepo
	usuarios *fakeUsuarioRepo
	puntos   *fakePuntoVentaRepo

	tenant  uuid.UUID
	pdv     uuid.UUID
	usuario uuid.UUID
	loc     *time.Location
}

func newCajaFixture(t *testing.T, cfg ConfiguracionOperativa) *cajaFixture {
	t.Helper()
	f := &cajaFixture{
		cajas:    newFakeCajaRepo(),
		cierres:  newFakeCierreRepo(),
		ventas:   newFakeVentaRepo(),
		consumos: newFakeConsumoRepo(),
		usuarios: newFakeUsuarioRepo(),
		puntos:   newFakePuntoVentaRepo(),
		tenant:   uuid.New(),
		pdv:      uuid.New(),
		usuario:  uuid.New(),
	}
	loc, err := time.LoadLocation(cfg.Regional.Timezone)
	require.NoError(t, err)
	f.loc = loc

	require.NoError(t, f.puntos.Create(context.Background(), &model.PuntoVenta{
		ID: f.pdv, TenantID: f.tenant, Nombre: "Local Centro", Activo: true,
	}))
	require.NoError(t, f.usuarios.Create(context.Background(), &model.Usuario{
		ID: f.usuario, TenantID: f.tenant, Username: "cajero1", Nombre: "Cajero", Rol: "cajero", Activo: true,
	}))

	f.svc = NewCajaService(f.cajas, f.cierres, f.ventas, f.consumos, f.usuarios,
		f.puntos, &stubConfig{cfg: cfg}, nil, nil, "").(*cajaService)
	f.en(10, 0)
	return f
}

// en fixes the service clock at the given local time on 2026-03-10.
func (f *cajaFixture) en(hora, minuto int) time.Time {
	return f.enDia(10, hora, minuto)
}

func (f *cajaFixture) enDia(dia, hora, minuto int) time.Time {
	t := time.Date(2026, 3, dia, hora, minuto, 0, 0, f.loc)
	f.svc.now = func() time.Time { return t }
	return t
}

func (f *cajaFixture) admitir(t *testing.T, req *dto.AdmitirOperacionRequest) (*dto.AdmisionResponse, error) {
	t.Helper()
	if req.TipoOperacion == "" {
		req.TipoOperacion = "venta"
	}
	req.PuntoVentaID = f.pdv.String()
	return f.svc.AdmitirOperacion(context.Background(), f.tenant, f.usuario, req)
}

func (f *cajaFixture) abrirCon(t *testing.T, monto decimal.Decimal) *model.Caja {
	t.Helper()
	res, err := f.admitir(t, &dto.AdmitirOperacionRequest{
		AccionCajaCerrada:    strPtr("abrir"),
		MontoInicialApertura: &monto,
	})
	require.NoError(t, err)
	require.True(t, res.Admitida)
	caja, err := f.cajas.FindActivaPorPuntoVenta(context.Background(), f.tenant, f.pdv)
	require.NoError(t, err)
	return caja
}

func (f *cajaFixture) venta(metodo string, total decimal.Decimal, fueraCaja bool, en time.Time) {
	_ = f.ventas.Create(context.Background(), &model.Venta{
		TenantID:     f.tenant,
		PuntoVentaID: f.pdv,
		UsuarioID:    f.usuario,
		MetodoPago:   metodo,
		Total:        total,
		Estado:       "confirmada",
		FueraCaja:    fueraCaja,
		CreatedAt:    en,
	})
}

func strPtr(s string) *string { return &s }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// ── Admission / opening ──────────────────────────────────────────────────────

func TestAdmitirConCajaAbierta(t *testing.T) {
	f := newCajaFixture(t, DefaultConfiguracion())
	f.abrirCon(t, dec("12000"))

	res, err := f.admitir(t, &dto.AdmitirOperacionRequest{})
	require.NoError(t, err)
	assert.True(t, res.Admitida)
	assert.False(t, res.FueraCaja)
	assert.True(t, res.CajaAbierta)
	assert.Nil(t, res.Decision)
}

func TestAperturaManualConMontoInicial(t *testing.T) {
	f := newCajaFixture(t, DefaultConfiguracion())

	caja := f.abrirCon(t, dec("12000"))
	assert.True(t, caja.Abierta)
	assert.True(t, caja.MontoInicial.Equal(dec("12000")))
	require.NotNil(t, caja.AbiertaEn)
	assert.True(t, caja.Virtual, "primera operación debe auto-provisionar la caja")
}

func TestCajaCerradaSinAccionDevuelveDecision(t *testing.T) {
	f := newCajaFixture(t, DefaultConfiguracion())

	res, err := f.admitir(t, &dto.AdmitirOperacionRequest{})
	require.NoError(t, err)
	assert.False(t, res.Admitida)
	require.NotNil(t, res.Decision)
	assert.Equal(t, "CAJA_CERRADA_DECISION_REQUERIDA", res.Decision.Codigo)
	assert.True(t, res.Decision.PuedeAbrirCaja)
	assert.True(t, res.Decision.PermiteFueraCaja)
}

func TestFueraCajaDeshabilitadaRechazaYNoAbre(t *testing.T) {
	cfg := DefaultConfiguracion()
	cfg.Caja.PermitirVentasFueraCaja = false
	f := newCajaFixture(t, cfg)

	_, err := f.admitir(t, &dto.AdmitirOperacionRequest{AccionCajaCerrada: strPtr("fuera_caja")})
	assert.ErrorIs(t, err, apierror.ErrFueraCajaDeshabilitado)

	caja, err := f.cajas.FindActivaPorPuntoVenta(context.Background(), f.tenant, f.pdv)
	require.NoError(t, err)
	assert.False(t, caja.Abierta, "el rechazo no debe abrir la caja")
}

func TestFueraCajaExplicitaAdmitida(t *testing.T) {
	f := newCajaFixture(t, DefaultConfiguracion())

	res, err := f.admitir(t, &dto.AdmitirOperacionRequest{AccionCajaCerrada: strPtr("fuera_caja")})
	require.NoError(t, err)
	assert.True(t, res.Admitida)
	assert.True(t, res.FueraCaja)
	assert.False(t, res.CajaAbierta)
}

func TestPoliticaBloquearRechaza(t *testing.T) {
	cfg := DefaultConfiguracion()
	cfg.Caja.AccionCajaCerrada = AccionCerradaBloquear
	f := newCajaFixture(t, cfg)

	_, err := f.admitir(t, &dto.AdmitirOperacionRequest{})
	assert.ErrorIs(t, err, apierror.ErrCajaCerradaBloqueada)
}

func TestPrimeraVentaRequiereAccionExplicita(t *testing.T) {
	cfg := DefaultConfiguracion()
	cfg.Caja.AperturaModo = AperturaModoPrimeraVenta
	f := newCajaFixture(t, cfg)

	res, err := f.admitir(t, &dto.AdmitirOperacionRequest{})
	require.NoError(t, err)
	assert.False(t, res.Admitida)
	require.NotNil(t, res.Decision)
	assert.Equal(t, "CAJA_REQUIERE_MONTO_INICIAL_PRIMERA_VENTA", res.Decision.Codigo)
	assert.True(t, res.Decision.RequiereMontoInicialPrimeraVenta)

	// A float alone is not enough: without an explicit "abrir" the register
	// stays closed and nothing is admitted.
	res, err = f.admitir(t, &dto.AdmitirOperacionRequest{MontoInicialApertura: decPtr("5000")})
	require.NoError(t, err)
	assert.False(t, res.Admitida)
	require.NotNil(t, res.Decision)
	assert.True(t, res.Decision.RequiereMontoInicialPrimeraVenta)

	caja, err := f.cajas.FindActivaPorPuntoVenta(context.Background(), f.tenant, f.pdv)
	require.NoError(t, err)
	assert.False(t, caja.Abierta)

	// The explicit action with the float opens the register.
	res, err = f.admitir(t, &dto.AdmitirOperacionRequest{
		AccionCajaCerrada:    strPtr("abrir"),
		MontoInicialApertura: decPtr("5000"),
	})
	require.NoError(t, err)
	assert.True(t, res.Admitida)

	caja, err = f.cajas.FindActivaPorPuntoVenta(context.Background(), f.tenant, f.pdv)
	require.NoError(t, err)
	assert.True(t, caja.Abierta)
	assert.True(t, caja.MontoInicial.Equal(dec("5000")))
}

func TestPrimeraVentaConsumoAbreSilencioso(t *testing.T) {
	cfg := DefaultConfiguracion()
	cfg.Caja.AperturaModo = AperturaModoPrimeraVenta
	f := newCajaFixture(t, cfg)

	res, err := f.admitir(t, &dto.AdmitirOperacionRequest{TipoOperacion: "consumo"})
	require.NoError(t, err)
	assert.True(t, res.Admitida, "primera_venta no bloquea operaciones auxiliares")
	assert.Nil(t, res.Decision)

	caja, err := f.cajas.FindActivaPorPuntoVenta(context.Background(), f.tenant, f.pdv)
	require.NoError(t, err)
	assert.True(t, caja.Abierta)
	assert.True(t, caja.MontoInicial.IsZero())
}

func TestAperturaHoraProgramada(t *testing.T) {
	cfg := DefaultConfiguracion()
	cfg.Caja.AperturaModo = AperturaModoHoraProgramada
	cfg.Caja.AperturaHora = strPtr("08:00")
	f := newCajaFixture(t, cfg)

	// Before the scheduled hour the closed-register policy applies.
	f.en(7, 30)
	res, err := f.admitir(t, &dto.AdmitirOperacionRequest{})
	require.NoError(t, err)
	assert.False(t, res.Admitida)
	require.NotNil(t, res.Decision)

	// At or past the hour the register opens itself.
	f.en(8, 15)
	res, err = f.admitir(t, &dto.AdmitirOperacionRequest{})
	require.NoError(t, err)
	assert.True(t, res.Admitida)
	assert.True(t, res.CajaAbierta)
}

func TestAperturaRolNoElegibleDevuelveDecision(t *testing.T) {
	cfg := DefaultConfiguracion()
	cfg.Caja.AperturaRolesPermitidos = []string{"supervisor"}
	f := newCajaFixture(t, cfg)

	res, err := f.admitir(t, &dto.AdmitirOperacionRequest{
		AccionCajaCerrada:    strPtr("abrir"),
		MontoInicialApertura: decPtr("1000"),
	})
	require.NoError(t, err)
	assert.False(t, res.Admitida)
	require.NotNil(t, res.Decision)
	assert.False(t, res.Decision.PuedeAbrirCaja)
	assert.Equal(t, "fuera_caja", res.Decision.AccionSugerida)

	caja, err := f.cajas.FindActivaPorPuntoVenta(context.Background(), f.tenant, f.pdv)
	require.NoError(t, err)
	assert.False(t, caja.Abierta)
}

func TestPoliticaFueraCajaDeshabilitadaSegunRol(t *testing.T) {
	cfg := DefaultConfiguracion()
	cfg.Caja.AccionCajaCerrada = AccionCerradaFueraCaja
	cfg.Caja.PermitirVentasFueraCaja = false
	cfg.Caja.AperturaRolesPermitidos = []string{"supervisor"}
	f := newCajaFixture(t, cfg)

	// Ineligible role with nothing to offer: blocked.
	_, err := f.admitir(t, &dto.AdmitirOperacionRequest{})
	assert.ErrorIs(t, err, apierror.ErrCajaCerradaBloqueada)

	// An eligible role gets offered the opening instead.
	supervisor := uuid.New()
	require.NoError(t, f.usuarios.Create(context.Background(), &model.Usuario{
		ID: supervisor, TenantID: f.tenant, Username: "super", Nombre: "Supervisora", Rol: "supervisor", Activo: true,
	}))
	f.usuario = supervisor

	res, err := f.admitir(t, &dto.AdmitirOperacionRequest{})
	require.NoError(t, err)
	assert.False(t, res.Admitida)
	require.NotNil(t, res.Decision)
	assert.True(t, res.Decision.PuedeAbrirCaja)
	assert.Equal(t, "abrir", res.Decision.AccionSugerida)
}

func TestAperturaAdministradorSiemprePermitida(t *testing.T) {
	cfg := DefaultConfiguracion()
	cfg.Caja.AperturaRolesPermitidos = []string{"supervisor"}
	f := newCajaFixture(t, cfg)

	admin := uuid.New()
	require.NoError(t, f.usuarios.Create(context.Background(), &model.Usuario{
		ID: admin, TenantID: f.tenant, Username: "admin", Nombre: "Admin", Rol: "administrador", Activo: true,
	}))
	f.usuario = admin

	res, err := f.admitir(t, &dto.AdmitirOperacionRequest{
		AccionCajaCerrada:    strPtr("abrir"),
		MontoInicialApertura: decPtr("1000"),
	})
	require.NoError(t, err)
	assert.True(t, res.Admitida)
}

// ── Manual close ─────────────────────────────────────────────────────────────

func TestCerrarManualCalculaTotalesYDesvio(t *testing.T) {
	f := newCajaFixture(t, DefaultConfiguracion())
	caja := f.abrirCon(t, dec("1000"))
	abiertaEn := *caja.AbiertaEn

	f.venta("efectivo", dec("500"), false, abiertaEn.Add(time.Hour))
	f.venta("tarjeta_credito", dec("300"), false, abiertaEn.Add(time.Hour))
	f.venta("transferencia", dec("200"), false, abiertaEn.Add(2*time.Hour))
	f.venta("efectivo", dec("250"), true, abiertaEn.Add(-time.Hour)) // fuera de caja previa

	f.en(20, 0)
	res, err := f.svc.CerrarManual(context.Background(), f.tenant, &f.usuario, &dto.CierreManualRequest{
		CajaID:         caja.ID.String(),
		MontoDeclarado: dec("1400"),
	})
	require.NoError(t, err)

	assert.True(t, res.MontoEsperado.Equal(dec("1750")), "esperado = inicial + efectivo + fuera de caja")
	assert.True(t, res.Desvio.Equal(dec("-350")))
	assert.True(t, res.TotalEfectivo.Equal(dec("500")))
	assert.True(t, res.TotalTarjeta.Equal(dec("300")))
	assert.True(t, res.TotalTransferencia.Equal(dec("200")))
	assert.True(t, res.TotalGeneral.Equal(dec("1000")))
	assert.Equal(t, 3, res.CantidadVentas)
	assert.True(t, res.IncluyeFueraCaja)
	assert.Equal(t, 1, res.CantidadFueraCaja)
	assert.True(t, res.TotalFueraCaja.Equal(dec("250")))
	assert.False(t, res.Automatico)

	// The register resets for the next opening.
	caja, err = f.cajas.FindByID(context.Background(), caja.ID)
	require.NoError(t, err)
	assert.False(t, caja.Abierta)
	assert.True(t, caja.MontoInicial.IsZero())
	assert.Nil(t, caja.AbiertaEn)

	// Every sale of the period, fuera de caja included, got reconciled.
	for _, v := range f.ventas.ventas {
		assert.NotNil(t, v.CierreCajaID, "venta %s sin conciliar", v.ID)
	}
}

func TestAperturaEncolaAuditoria(t *testing.T) {
	f := newCajaFixture(t, DefaultConfiguracion())
	d := &fakeDispatcher{}
	f.svc.dispatcher = d

	f.abrirCon(t, dec("5000"))

	require.Len(t, d.auditorias, 1)
	ev := d.auditorias[0]
	assert.Equal(t, "apertura_caja", ev.Accion)
	require.NotNil(t, ev.UsuarioID)
	assert.Equal(t, f.usuario.String(), *ev.UsuarioID)
	assert.Equal(t, "5000", ev.Metadata["monto_inicial"])
}

func TestCierreEncolaAuditoriaConResumenDeConsumos(t *testing.T) {
	cfg := DefaultConfiguracion()
	cfg.Consumos.AlCierreSinLiquidar = ReglaCobroAutomaticoVenta
	f := newCajaFixture(t, cfg)
	d := &fakeDispatcher{}
	f.svc.dispatcher = d

	caja := f.abrirCon(t, dec("1000"))
	nuevoConsumoPendiente(t, f.consumos, f.tenant, f.pdv, f.usuario, "800", "450")

	f.en(20, 0)
	_, err := f.svc.CerrarManual(context.Background(), f.tenant, &f.usuario, &dto.CierreManualRequest{
		CajaID:         caja.ID.String(),
		MontoDeclarado: dec("1000"),
	})
	require.NoError(t, err)

	require.Len(t, d.auditorias, 2, "apertura y cierre")
	ev := d.auditorias[1]
	assert.Equal(t, "cierre_caja", ev.Accion)
	assert.Equal(t, ReglaCobroAutomaticoVenta, ev.Metadata["regla_consumos"])
	assert.Equal(t, 1, ev.Metadata["consumos_liquidados"])
	assert.Equal(t, "800", ev.Metadata["total_consumos"])
}

func TestCerrarManualSinVentasDesvioCero(t *testing.T) {
	f := newCajaFixture(t, DefaultConfiguracion())
	caja := f.abrirCon(t, dec("12000"))

	res, err := f.svc.CerrarManual(context.Background(), f.tenant, &f.usuario, &dto.CierreManualRequest{
		CajaID:         caja.ID.String(),
		MontoDeclarado: dec("12000"),
	})
	require.NoError(t, err)
	assert.True(t, res.Desvio.IsZero())
	assert.True(t, res.MontoEsperado.Equal(dec("12000")))
}

func TestCerrarManualCajaDeOtroTenant(t *testing.T) {
	f := newCajaFixture(t, DefaultConfiguracion())
	caja := f.abrirCon(t, dec("1000"))

	_, err := f.svc.CerrarManual(context.Background(), uuid.New(), &f.usuario, &dto.CierreManualRequest{
		CajaID:         caja.ID.String(),
		MontoDeclarado: dec("1000"),
	})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	caja, err = f.cajas.FindByID(context.Background(), caja.ID)
	require.NoError(t, err)
	assert.True(t, caja.Abierta, "otro tenant no puede cerrar la caja")
	assert.Empty(t, f.cierres.cierres)
}

func TestCerrarManualMetodoNoReconocidoSoloEnTotalGeneral(t *testing.T) {
	f := newCajaFixture(t, DefaultConfiguracion())
	caja := f.abrirCon(t, dec("1000"))
	abiertaEn := *caja.AbiertaEn

	f.venta("efectivo", dec("500"), false, abiertaEn.Add(time.Hour))
	f.venta("qr_mercadopago", dec("400"), false, abiertaEn.Add(time.Hour))

	res, err := f.svc.CerrarManual(context.Background(), f.tenant, &f.usuario, &dto.CierreManualRequest{
		CajaID:         caja.ID.String(),
		MontoDeclarado: dec("1500"),
	})
	require.NoError(t, err)
	assert.True(t, res.TotalEfectivo.Equal(dec("500")))
	assert.True(t, res.TotalTarjeta.IsZero())
	assert.True(t, res.TotalTransferencia.IsZero(), "un método desconocido no cae en ningún rubro")
	assert.True(t, res.TotalGeneral.Equal(dec("900")))
	assert.Equal(t, 2, res.CantidadVentas)
	assert.True(t, res.MontoEsperado.Equal(dec("1500")), "solo el efectivo mueve el cajón")
	assert.True(t, res.Desvio.IsZero())
}

func TestCerrarManualCajaYaCerrada(t *testing.T) {
	f := newCajaFixture(t, DefaultConfiguracion())
	caja, err := f.cajas.GetOrCreateActiva(context.Background(), f.tenant, f.pdv)
	require.NoError(t, err)

	_, err = f.svc.CerrarManual(context.Background(), f.tenant, &f.usuario, &dto.CierreManualRequest{
		CajaID:         caja.ID.String(),
		MontoDeclarado: dec("0"),
	})
	assert.ErrorIs(t, err, apierror.ErrCajaYaCerrada)
}

func TestCerrarManualBloqueadoPorConsumosPendientes(t *testing.T) {
	cfg := DefaultConfiguracion()
	cfg.Consumos.AlCierreSinLiquidar = ReglaNoPermitirCierre
	f := newCajaFixture(t, cfg)
	caja := f.abrirCon(t, dec("1000"))

	require.NoError(t, f.consumos.Create(context.Background(), &model.ConsumoPersonal{
		TenantID: f.tenant, PuntoVentaID: f.pdv, UsuarioID: f.usuario,
		Descripcion: "corte propio", TotalVenta: dec("100"), TotalCosto: dec("60"),
		EstadoLiquidacion: "pendiente",
	}))

	_, err := f.svc.CerrarManual(context.Background(), f.tenant, &f.usuario, &dto.CierreManualRequest{
		CajaID:         caja.ID.String(),
		MontoDeclarado: dec("1000"),
	})
	assert.ErrorIs(t, err, apierror.ErrCierreConsumosPendientes)

	caja, err = f.cajas.FindByID(context.Background(), caja.ID)
	require.NoError(t, err)
	assert.True(t, caja.Abierta, "el rechazo no debe mutar la caja")
	assert.Empty(t, f.cierres.cierres)
}

func TestCerrarManualLiquidaConsumosPorVenta(t *testing.T) {
	cfg := DefaultConfiguracion()
	cfg.Consumos.AlCierreSinLiquidar = ReglaCobroAutomaticoVenta
	f := newCajaFixture(t, cfg)
	caja := f.abrirCon(t, dec("1000"))

	for _, montos := range [][2]string{{"100", "60"}, {"50", "30"}} {
		require.NoError(t, f.consumos.Create(context.Background(), &model.ConsumoPersonal{
			TenantID: f.tenant, PuntoVentaID: f.pdv, UsuarioID: f.usuario,
			Descripcion: "consumo", TotalVenta: dec(montos[0]), TotalCosto: dec(montos[1]),
			EstadoLiquidacion: "pendiente",
		}))
	}

	res, err := f.svc.CerrarManual(context.Background(), f.tenant, &f.usuario, &dto.CierreManualRequest{
		CajaID:         caja.ID.String(),
		MontoDeclarado: dec("1000"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.ConsumosLiquidados)
	assert.True(t, res.TotalConsumos.Equal(dec("150")))

	for _, c := range f.consumos.consumos {
		assert.Equal(t, "cobrado", c.EstadoLiquidacion)
	}
	require.Len(t, f.consumos.liquidaciones, 2)
	for _, l := range f.consumos.liquidaciones {
		require.NotNil(t, l.CierreCajaID)
		assert.Equal(t, ReglaCobroAutomaticoVenta, l.Regla)
	}
}

// ── Automatic close ──────────────────────────────────────────────────────────

func cfgConCierreAutomatico(hora string) ConfiguracionOperativa {
	cfg := DefaultConfiguracion()
	cfg.Caja.CierreAutomaticoHabilitado = true
	cfg.Caja.CierreAutomaticoHora = strPtr(hora)
	return cfg
}

func TestCierreAutomaticoAlInteractuar(t *testing.T) {
	f := newCajaFixture(t, cfgConCierreAutomatico("22:00"))
	caja := f.abrirCon(t, dec("1000"))
	f.venta("efectivo", dec("500"), false, caja.AbiertaEn.Add(time.Hour))

	// Past the scheduled hour any interaction closes first.
	f.en(22, 30)
	res, err := f.admitir(t, &dto.AdmitirOperacionRequest{})
	require.NoError(t, err)
	assert.False(t, res.Admitida)
	require.NotNil(t, res.Decision, "tras el cierre la caja queda cerrada y pide decisión")

	require.Len(t, f.cierres.cierres, 1)
	for _, c := range f.cierres.cierres {
		assert.True(t, c.Automatico)
		assert.Equal(t, "2026-03-10", c.FechaOperativa)
		assert.True(t, c.MontoEsperado.Equal(dec("1500")))
		assert.True(t, c.MontoDeclarado.Equal(c.MontoEsperado), "cierre automático declara lo esperado")
		assert.True(t, c.Desvio.IsZero())
	}
}

func TestCierreAutomaticoNoVencidoNoCierra(t *testing.T) {
	f := newCajaFixture(t, cfgConCierreAutomatico("22:00"))
	f.abrirCon(t, dec("1000"))

	f.en(21, 59)
	res, err := f.admitir(t, &dto.AdmitirOperacionRequest{})
	require.NoError(t, err)
	assert.True(t, res.Admitida)
	assert.Empty(t, f.cierres.cierres)
}

func TestCierreAutomaticoIdempotentePorFence(t *testing.T) {
	f := newCajaFixture(t, cfgConCierreAutomatico("22:00"))
	caja := f.abrirCon(t, dec("1000"))
	abiertaEn := *caja.AbiertaEn

	f.en(22, 30)
	_, err := f.admitir(t, &dto.AdmitirOperacionRequest{})
	require.NoError(t, err)
	require.Len(t, f.cierres.cierres, 1)

	// A racing evaluator still sees the register open with the original
	// opening. The consumed fence must keep it from closing a second time
	// for the same (caja, fecha, hora).
	vieja := f.cajas.cajas[caja.ID]
	vieja.Abierta = true
	vieja.MontoInicial = dec("1000")
	vieja.AbiertaEn = &abiertaEn

	f.en(23, 0)
	res, err := f.admitir(t, &dto.AdmitirOperacionRequest{})
	require.NoError(t, err)
	assert.True(t, res.Admitida)
	assert.Len(t, f.cierres.cierres, 1)
}

func TestReaperturaMismoDiaNoRecierra(t *testing.T) {
	f := newCajaFixture(t, cfgConCierreAutomatico("22:00"))
	f.abrirCon(t, dec("1000"))

	f.en(22, 30)
	_, err := f.admitir(t, &dto.AdmitirOperacionRequest{})
	require.NoError(t, err)
	require.Len(t, f.cierres.cierres, 1)

	// A same-day reopening sits past the scheduled hour, so the same
	// operating date never closes it again.
	_, err = f.admitir(t, &dto.AdmitirOperacionRequest{
		AccionCajaCerrada:    strPtr("abrir"),
		MontoInicialApertura: decPtr("2000"),
	})
	require.NoError(t, err)

	f.en(23, 0)
	res, err := f.admitir(t, &dto.AdmitirOperacionRequest{})
	require.NoError(t, err)
	assert.True(t, res.Admitida)
	assert.Len(t, f.cierres.cierres, 1)
}

func TestCierreAutomaticoAbiertaDespuesDeLaHora(t *testing.T) {
	f := newCajaFixture(t, cfgConCierreAutomatico("22:00"))

	// Opened past the scheduled hour: not due while the operating date holds.
	f.en(23, 0)
	f.abrirCon(t, dec("1000"))

	f.en(23, 30)
	res, err := f.admitir(t, &dto.AdmitirOperacionRequest{})
	require.NoError(t, err)
	assert.True(t, res.Admitida)
	assert.Empty(t, f.cierres.cierres)
}

func TestCierreAutomaticoVencidoTrasMedianoche(t *testing.T) {
	f := newCajaFixture(t, cfgConCierreAutomatico("22:00"))

	// Opened past the hour and left open across midnight: the stale
	// operating date makes the close due on the next interaction.
	f.en(23, 0)
	f.abrirCon(t, dec("1000"))

	f.enDia(11, 0, 30)
	res, err := f.admitir(t, &dto.AdmitirOperacionRequest{})
	require.NoError(t, err)
	assert.False(t, res.Admitida)
	require.Len(t, f.cierres.cierres, 1)
	for _, c := range f.cierres.cierres {
		assert.Equal(t, "2026-03-10", c.FechaOperativa)
		assert.True(t, c.Automatico)
	}
}

func TestCierreAutomaticoOmitidoPorConsumosPendientes(t *testing.T) {
	cfg := cfgConCierreAutomatico("22:00")
	cfg.Consumos.AlCierreSinLiquidar = ReglaNoPermitirCierre
	f := newCajaFixture(t, cfg)
	caja := f.abrirCon(t, dec("1000"))

	require.NoError(t, f.consumos.Create(context.Background(), &model.ConsumoPersonal{
		TenantID: f.tenant, PuntoVentaID: f.pdv, UsuarioID: f.usuario,
		Descripcion: "pendiente", TotalVenta: dec("100"), TotalCosto: dec("50"),
		EstadoLiquidacion: "pendiente",
	}))

	f.en(22, 30)
	res, err := f.admitir(t, &dto.AdmitirOperacionRequest{})
	require.NoError(t, err)
	assert.True(t, res.Admitida, "la caja sigue abierta: el cierre automático se omite en silencio")
	assert.Empty(t, f.cierres.cierres)

	caja, err = f.cajas.FindByID(context.Background(), caja.ID)
	require.NoError(t, err)
	assert.True(t, caja.Abierta)
}

func TestBarridoCierresPorTenant(t *testing.T) {
	f := newCajaFixture(t, cfgConCierreAutomatico("22:00"))
	f.abrirCon(t, dec("1000"))

	// Second punto de venta with no register yet: evaluated, nothing to close.
	otro := uuid.New()
	require.NoError(t, f.puntos.Create(context.Background(), &model.PuntoVenta{
		ID: otro, TenantID: f.tenant, Nombre: "Local Norte", Activo: true,
	}))

	f.en(22, 30)
	res, err := f.svc.EjecutarBarridoCierres(context.Background(), f.tenant)
	require.NoError(t, err)
	assert.Equal(t, 2, res.PuntosVentaEvaluados)
	assert.Equal(t, 1, res.CierresEjecutados)
}

func TestObtenerCierreScopeadoPorTenant(t *testing.T) {
	f := newCajaFixture(t, DefaultConfiguracion())
	caja := f.abrirCon(t, dec("1000"))

	res, err := f.svc.CerrarManual(context.Background(), f.tenant, &f.usuario, &dto.CierreManualRequest{
		CajaID:         caja.ID.String(),
		MontoDeclarado: dec("1000"),
	})
	require.NoError(t, err)
	cierreID := uuid.MustParse(res.CierreID)

	got, err := f.svc.ObtenerCierre(context.Background(), f.tenant, cierreID)
	require.NoError(t, err)
	assert.Equal(t, res.CierreID, got.CierreID)

	_, err = f.svc.ObtenerCierre(context.Background(), uuid.New(), cierreID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

// ── Estado ───────────────────────────────────────────────────────────────────

func TestEstadoCajaProvisionaYReporta(t *testing.T) {
	f := newCajaFixture(t, DefaultConfiguracion())

	estado, err := f.svc.EstadoCaja(context.Background(), f.tenant, f.pdv)
	require.NoError(t, err)
	assert.False(t, estado.Abierta)
	assert.True(t, estado.Virtual)
	assert.Nil(t, estado.AbiertaEn)

	f.abrirCon(t, dec("3000"))
	estado, err = f.svc.EstadoCaja(context.Background(), f.tenant, f.pdv)
	require.NoError(t, err)
	assert.True(t, estado.Abierta)
	assert.True(t, estado.MontoInicial.Equal(dec("3000")))
	assert.NotNil(t, estado.AbiertaEn)
}
