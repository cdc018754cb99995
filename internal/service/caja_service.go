package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"barbercontrol/internal/apierror"
	"barbercontrol/internal/dto"
	"barbercontrol/internal/model"
	"barbercontrol/internal/repository"
	"barbercontrol/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CajaService is the register lifecycle controller: it decides whether an
// operation may proceed (opening the register on the way when the resolved
// configuration says so), runs the automatic-closing due-check, and executes
// closings, manual and automatic, inside a single transaction.
type CajaService interface {
	// AdmitirOperacion gates a venta/consumo against the punto de venta's
	// register. It never records the operation itself; callers insert their
	// row only after a positive admission.
	AdmitirOperacion(ctx context.Context, tenantID, usuarioID uuid.UUID, req *dto.AdmitirOperacionRequest) (*dto.AdmisionResponse, error)
	CerrarManual(ctx context.Context, tenantID uuid.UUID, usuarioID *uuid.UUID, req *dto.CierreManualRequest) (*dto.CierreResponse, error)
	// EjecutarBarridoCierres evaluates the automatic close for every active
	// punto de venta of the tenant. Used by the optional cron and by the
	// admin endpoint.
	EjecutarBarridoCierres(ctx context.Context, tenantID uuid.UUID) (*dto.BarridoCierresResponse, error)
	EstadoCaja(ctx context.Context, tenantID, puntoVentaID uuid.UUID) (*dto.EstadoCajaResponse, error)
	ListarCierres(ctx context.Context, tenantID, puntoVentaID uuid.UUID, limit int) ([]dto.CierreResponse, error)
	ObtenerCierre(ctx context.Context, tenantID, cierreID uuid.UUID) (*dto.CierreResponse, error)
	// ResumenCierrePDF renders (or re-renders) the closing summary report and
	// returns the file path.
	ResumenCierrePDF(ctx context.Context, tenantID, cierreID uuid.UUID) (string, error)
}

// ResumenPDFGenerator renders the closing summary report to disk and returns
// the file path. Nil-able: without a generator closings simply skip the PDF.
type ResumenPDFGenerator interface {
	GenerarResumenCierre(c *model.CierreCaja) (string, error)
}

// JobDispatcher is the slice of the worker dispatcher the services use to
// emit audit events and emails. Nil-able in unit tests.
type JobDispatcher interface {
	EnqueueAuditoria(ctx context.Context, payload interface{}) error
	EnqueueEmail(ctx context.Context, payload interface{}) error
}

type cajaService struct {
	cajas    repository.CajaRepository
	cierres  repository.CierreRepository
	ventas   repository.VentaRepository
	consumos repository.ConsumoRepository
	usuarios repository.UsuarioRepository
	puntos   repository.PuntoVentaRepository
	config   ConfigService

	dispatcher JobDispatcher
	pdf        ResumenPDFGenerator
	emailTo    string

	now func() time.Time
}

func NewCajaService(
	cajas repository.CajaRepository,
	cierres repository.CierreRepository,
	ventas repository.VentaRepository,
	consumos repository.ConsumoRepository,
	usuarios repository.UsuarioRepository,
	puntos repository.PuntoVentaRepository,
	config ConfigService,
	dispatcher JobDispatcher,
	pdf ResumenPDFGenerator,
	emailTo string,
) CajaService {
	return &cajaService{
		cajas:      cajas,
		cierres:    cierres,
		ventas:     ventas,
		consumos:   consumos,
		usuarios:   usuarios,
		puntos:     puntos,
		config:     config,
		dispatcher: dispatcher,
		pdf:        pdf,
		emailTo:    emailTo,
		now:        time.Now,
	}
}

// runTx executes fn inside a transaction. A nil db runs fn directly with a
// nil tx, which keeps the services unit-testable against in-memory fakes.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(tx)
	})
}

// errCierreNoAplica aborts the closing transaction without surfacing an
// error: another evaluator owns the fence, or the register closed meanwhile.
var errCierreNoAplica = errors.New("cierre automático no aplica")

// ─── Admission ───────────────────────────────────────────────────────────────

func (s *cajaService) AdmitirOperacion(ctx context.Context, tenantID, usuarioID uuid.UUID, req *dto.AdmitirOperacionRequest) (*dto.AdmisionResponse, error) {
	puntoVentaID, err := uuid.Parse(req.PuntoVentaID)
	if err != nil {
		return nil, apierror.NewCoded("PUNTO_VENTA_INVALIDO", "punto_venta_id inválido")
	}

	cfg := s.config.Resolver(ctx, tenantID, &puntoVentaID)

	caja, err := s.cajas.GetOrCreateActiva(ctx, tenantID, puntoVentaID)
	if err != nil {
		return nil, fmt.Errorf("admitir operación: %w", err)
	}

	// The due-check runs on every interaction with the register so a missed
	// cron never leaves yesterday's opening accumulating today's sales.
	if cerrada, err := s.evaluarCierreAutomatico(ctx, tenantID, caja, cfg); err != nil {
		return nil, err
	} else if cerrada {
		if caja, err = s.cajas.FindByID(ctx, caja.ID); err != nil {
			return nil, err
		}
	}

	if caja.Abierta {
		return admitida(caja, false), nil
	}

	if req.AccionCajaCerrada != nil {
		return s.resolverAccionExplicita(ctx, usuarioID, caja, cfg, req)
	}
	return s.decidirSinAccion(ctx, usuarioID, caja, cfg, req)
}

// resolverAccionExplicita handles the caller's declared choice for a closed
// register: open it, or operate off-register.
func (s *cajaService) resolverAccionExplicita(ctx context.Context, usuarioID uuid.UUID, caja *model.Caja, cfg ConfiguracionOperativa, req *dto.AdmitirOperacionRequest) (*dto.AdmisionResponse, error) {
	switch *req.AccionCajaCerrada {
	case "fuera_caja":
		if !cfg.Caja.PermitirVentasFueraCaja {
			return nil, apierror.ErrFueraCajaDeshabilitado
		}
		return admitidaFueraCaja(caja), nil

	case "abrir":
		permitido, err := s.aperturaPermitida(ctx, usuarioID, cfg)
		if err != nil {
			return nil, err
		}
		if !permitido {
			// An ineligible role does not get an error: it gets the decision
			// back with the opening path closed off.
			return decision(caja, &dto.DecisionCaja{
				Codigo:           "CAJA_CERRADA_DECISION_REQUERIDA",
				AccionSugerida:   sugerirAccion(false, cfg.Caja.PermitirVentasFueraCaja),
				PuedeAbrirCaja:   false,
				PermiteFueraCaja: cfg.Caja.PermitirVentasFueraCaja,
			}), nil
		}
		monto := decimal.Zero
		if req.MontoInicialApertura != nil {
			monto = *req.MontoInicialApertura
		}
		if err := s.abrirCaja(ctx, caja, monto, usuarioID); err != nil {
			return nil, err
		}
		return admitida(caja, false), nil
	}
	return nil, apierror.NewCoded("ACCION_CAJA_INVALIDA", "accion_caja_cerrada inválida")
}

// decidirSinAccion applies the configured closed-register behavior when the
// caller expressed no choice.
func (s *cajaService) decidirSinAccion(ctx context.Context, usuarioID uuid.UUID, caja *model.Caja, cfg ConfiguracionOperativa, req *dto.AdmitirOperacionRequest) (*dto.AdmisionResponse, error) {
	switch cfg.Caja.AperturaModo {
	case AperturaModoPrimeraVenta:
		// First-sale mode never blocks ancillary operations: a consumo opens
		// the register silently with float zero.
		if req.TipoOperacion != "venta" {
			if err := s.abrirCaja(ctx, caja, decimal.Zero, usuarioID); err != nil {
				return nil, err
			}
			return admitida(caja, false), nil
		}
		// A sale never opens implicitly, float or no float: the caller must
		// come back with an explicit "abrir".
		puede, err := s.aperturaPermitida(ctx, usuarioID, cfg)
		if err != nil {
			return nil, err
		}
		return decision(caja, &dto.DecisionCaja{
			Codigo:                           "CAJA_REQUIERE_MONTO_INICIAL_PRIMERA_VENTA",
			AccionSugerida:                   "abrir",
			PuedeAbrirCaja:                   puede,
			PermiteFueraCaja:                 cfg.Caja.PermitirVentasFueraCaja,
			RequiereMontoInicialPrimeraVenta: true,
		}), nil

	case AperturaModoHoraProgramada:
		if s.aperturaProgramadaVencida(cfg) {
			monto := decimal.Zero
			if req.MontoInicialApertura != nil {
				monto = *req.MontoInicialApertura
			}
			if err := s.abrirCaja(ctx, caja, monto, usuarioID); err != nil {
				return nil, err
			}
			return admitida(caja, false), nil
		}
	}

	// Manual mode, and hora_programada before the scheduled hour, fall back
	// to the closed-register policy.
	puede, err := s.aperturaPermitida(ctx, usuarioID, cfg)
	if err != nil {
		return nil, err
	}

	switch cfg.Caja.AccionCajaCerrada {
	case AccionCerradaBloquear:
		return nil, apierror.ErrCajaCerradaBloqueada
	case AccionCerradaFueraCaja:
		if cfg.Caja.PermitirVentasFueraCaja {
			return admitidaFueraCaja(caja), nil
		}
		// Policy says off-register but it is disabled: offer opening to an
		// eligible role, block everyone else.
		if !puede {
			return nil, apierror.ErrCajaCerradaBloqueada
		}
	}

	return decision(caja, &dto.DecisionCaja{
		Codigo:           "CAJA_CERRADA_DECISION_REQUERIDA",
		AccionSugerida:   sugerirAccion(puede, cfg.Caja.PermitirVentasFueraCaja),
		PuedeAbrirCaja:   puede,
		PermiteFueraCaja: cfg.Caja.PermitirVentasFueraCaja,
	}), nil
}

// sugerirAccion derives the suggested action from role eligibility and the
// off-register flag.
func sugerirAccion(puedeAbrir, permiteFueraCaja bool) string {
	if !puedeAbrir && permiteFueraCaja {
		return "fuera_caja"
	}
	return "abrir"
}

func (s *cajaService) aperturaPermitida(ctx context.Context, usuarioID uuid.UUID, cfg ConfiguracionOperativa) (bool, error) {
	roles := cfg.Caja.AperturaRolesPermitidos
	if len(roles) == 0 {
		return true, nil
	}
	usuario, err := s.usuarios.FindByID(ctx, usuarioID)
	if err != nil {
		return false, fmt.Errorf("apertura: usuario no encontrado: %w", err)
	}
	if usuario.Rol == "administrador" {
		return true, nil
	}
	for _, r := range roles {
		if r == usuario.Rol {
			return true, nil
		}
	}
	return false, nil
}

func (s *cajaService) aperturaProgramadaVencida(cfg ConfiguracionOperativa) bool {
	if cfg.Caja.AperturaHora == nil {
		return false
	}
	h, m, err := parseHora(*cfg.Caja.AperturaHora)
	if err != nil {
		return false
	}
	ahora := s.now().In(cargarZona(cfg.Regional.Timezone))
	return ahora.Hour()*60+ahora.Minute() >= h*60+m
}

// abrirCaja opens the register under a row lock. A concurrent opener is not
// an error: the register ends up open either way and the operation proceeds.
func (s *cajaService) abrirCaja(ctx context.Context, caja *model.Caja, monto decimal.Decimal, usuarioID uuid.UUID) error {
	en := s.now()
	abierta := false
	err := runTx(ctx, s.cajas.DB(), func(tx *gorm.DB) error {
		locked, err := s.cajas.FindByIDForUpdate(ctx, tx, caja.ID)
		if err != nil {
			return err
		}
		if locked.Abierta {
			*caja = *locked
			return nil
		}
		if err := s.cajas.AbrirTx(ctx, tx, caja.ID, monto, en); err != nil {
			return err
		}
		caja.Abierta = true
		caja.MontoInicial = monto
		caja.AbiertaEn = &en
		abierta = true
		return nil
	})
	if err != nil {
		return fmt.Errorf("abrir caja: %w", err)
	}
	if abierta {
		log.Info().
			Str("caja_id", caja.ID.String()).
			Str("monto_inicial", monto.String()).
			Msg("caja abierta")
		s.notificarApertura(ctx, caja, usuarioID)
	}
	return nil
}

// ─── Automatic close ─────────────────────────────────────────────────────────

// evaluarCierreAutomatico runs the due-check and, when due, the closing.
// Returns true when this call actually closed the register.
func (s *cajaService) evaluarCierreAutomatico(ctx context.Context, tenantID uuid.UUID, caja *model.Caja, cfg ConfiguracionOperativa) (bool, error) {
	if !caja.Abierta || caja.AbiertaEn == nil {
		return false, nil
	}
	if !cfg.Caja.CierreAutomaticoHabilitado || cfg.Caja.CierreAutomaticoHora == nil {
		return false, nil
	}
	horaObjetivo := *cfg.Caja.CierreAutomaticoHora
	h, m, err := parseHora(horaObjetivo)
	if err != nil {
		log.Warn().Str("hora", horaObjetivo).Msg("cierre automático: hora configurada inválida")
		return false, nil
	}

	loc := cargarZona(cfg.Regional.Timezone)
	abiertaEn := caja.AbiertaEn.In(loc)
	fechaOperativa := abiertaEn.Format("2006-01-02")
	ahora := s.now().In(loc)

	// An operating date before today is overdue outright. On the same date
	// the close is due only past the target hour, and only for a register
	// that opened at or before it — one that opened later the same day is
	// caught up the next calendar day.
	if fechaOperativa == ahora.Format("2006-01-02") {
		objetivo := time.Date(abiertaEn.Year(), abiertaEn.Month(), abiertaEn.Day(), h, m, 0, 0, loc)
		if ahora.Before(objetivo) || abiertaEn.After(objetivo) {
			return false, nil
		}
	}

	// no_permitir_cierre never blocks silently inside the transaction: the
	// automatic close just skips and leaves the register open for a human.
	if cfg.Consumos.AlCierreSinLiquidar == ReglaNoPermitirCierre {
		pendientes, err := s.consumos.CountPendientes(ctx, tenantID, caja.PuntoVentaID)
		if err != nil {
			return false, err
		}
		if pendientes > 0 {
			log.Warn().
				Str("caja_id", caja.ID.String()).
				Int64("pendientes", pendientes).
				Msg("cierre automático omitido: consumos sin liquidar")
			return false, nil
		}
	}

	var cierre *model.CierreCaja
	err = runTx(ctx, s.cajas.DB(), func(tx *gorm.DB) error {
		ok, err := s.cierres.AdquirirControlTx(ctx, tx, caja.ID, fechaOperativa, horaObjetivo)
		if err != nil {
			return err
		}
		if !ok {
			return errCierreNoAplica
		}
		locked, err := s.cajas.FindByIDForUpdate(ctx, tx, caja.ID)
		if err != nil {
			return err
		}
		if !locked.Abierta {
			return errCierreNoAplica
		}
		cierre, err = s.ejecutarCierreTx(ctx, tx, tenantID, locked, cfg, cierreParams{
			Automatico:     true,
			FechaOperativa: fechaOperativa,
		})
		return err
	})
	if errors.Is(err, errCierreNoAplica) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cierre automático: %w", err)
	}

	log.Info().
		Str("caja_id", caja.ID.String()).
		Str("fecha_operativa", fechaOperativa).
		Str("total_general", cierre.TotalGeneral.String()).
		Msg("cierre automático ejecutado")
	s.notificarCierre(ctx, cierre)
	return true, nil
}

func (s *cajaService) EjecutarBarridoCierres(ctx context.Context, tenantID uuid.UUID) (*dto.BarridoCierresResponse, error) {
	puntos, err := s.puntos.ListActivosPorTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	res := &dto.BarridoCierresResponse{PuntosVentaEvaluados: len(puntos)}
	for _, p := range puntos {
		pdv := p.ID
		caja, err := s.cajas.FindActivaPorPuntoVenta(ctx, tenantID, pdv)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue // never provisioned, nothing to close
			}
			return nil, err
		}
		cfg := s.config.Resolver(ctx, tenantID, &pdv)
		cerrada, err := s.evaluarCierreAutomatico(ctx, tenantID, caja, cfg)
		if err != nil {
			log.Error().Err(err).
				Str("punto_venta_id", pdv.String()).
				Msg("barrido: evaluación de cierre falló")
			continue
		}
		if cerrada {
			res.CierresEjecutados++
		}
	}
	return res, nil
}

// ─── Manual close ────────────────────────────────────────────────────────────

func (s *cajaService) CerrarManual(ctx context.Context, tenantID uuid.UUID, usuarioID *uuid.UUID, req *dto.CierreManualRequest) (*dto.CierreResponse, error) {
	cajaID, err := uuid.Parse(req.CajaID)
	if err != nil {
		return nil, apierror.NewCoded("CAJA_INVALIDA", "caja_id inválido")
	}
	caja, err := s.cajas.FindByID(ctx, cajaID)
	if err != nil {
		return nil, err
	}
	if caja.TenantID != tenantID {
		return nil, gorm.ErrRecordNotFound
	}
	if !caja.Abierta || caja.AbiertaEn == nil {
		return nil, apierror.ErrCajaYaCerrada
	}

	cfg := s.config.Resolver(ctx, tenantID, &caja.PuntoVentaID)

	// The blocking rule rejects before any mutation so the caller can settle
	// the pending consumptions and retry.
	if cfg.Consumos.AlCierreSinLiquidar == ReglaNoPermitirCierre {
		pendientes, err := s.consumos.CountPendientes(ctx, tenantID, caja.PuntoVentaID)
		if err != nil {
			return nil, err
		}
		if pendientes > 0 {
			return nil, apierror.ErrCierreConsumosPendientes
		}
	}

	loc := cargarZona(cfg.Regional.Timezone)
	fechaOperativa := caja.AbiertaEn.In(loc).Format("2006-01-02")

	var cierre *model.CierreCaja
	err = runTx(ctx, s.cajas.DB(), func(tx *gorm.DB) error {
		locked, err := s.cajas.FindByIDForUpdate(ctx, tx, caja.ID)
		if err != nil {
			return err
		}
		if !locked.Abierta {
			return apierror.ErrCajaYaCerrada
		}
		cierre, err = s.ejecutarCierreTx(ctx, tx, tenantID, locked, cfg, cierreParams{
			Automatico:     false,
			FechaOperativa: fechaOperativa,
			MontoDeclarado: &req.MontoDeclarado,
			UsuarioID:      usuarioID,
			Observaciones:  req.Observaciones,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("caja_id", caja.ID.String()).
		Str("desvio", cierre.Desvio.String()).
		Msg("cierre manual ejecutado")
	s.notificarCierre(ctx, cierre)
	return cierreToResponse(cierre), nil
}

// ─── Shared closing transaction ──────────────────────────────────────────────

type cierreParams struct {
	Automatico     bool
	FechaOperativa string
	// MontoDeclarado nil means "declare the expected amount" (automatic close).
	MontoDeclarado *decimal.Decimal
	UsuarioID      *uuid.UUID
	Observaciones  *string
}

// ejecutarCierreTx builds and persists the reconciliation snapshot, settles
// pending consumptions per the configured rule, stamps the period's sales
// with the cierre and flips the register closed. Caller holds the row lock.
func (s *cajaService) ejecutarCierreTx(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, caja *model.Caja, cfg ConfiguracionOperativa, p cierreParams) (*model.CierreCaja, error) {
	abiertaEn := *caja.AbiertaEn

	sumas, err := s.ventas.SumPorMetodoTx(ctx, tx, caja.PuntoVentaID, abiertaEn)
	if err != nil {
		return nil, err
	}

	var totalEfectivo, totalTarjeta, totalTransferencia, totalGeneral decimal.Decimal
	cantidad := 0
	for _, fila := range sumas {
		switch clasificarMetodo(fila.MetodoPago) {
		case "efectivo":
			totalEfectivo = totalEfectivo.Add(fila.Total)
		case "tarjeta":
			totalTarjeta = totalTarjeta.Add(fila.Total)
		case "transferencia":
			totalTransferencia = totalTransferencia.Add(fila.Total)
		}
		// Unmatched methods fall outside the three buckets but still count
		// in the overall total.
		totalGeneral = totalGeneral.Add(fila.Total)
		cantidad += fila.Cantidad
	}

	var fueraCajaIDs []uuid.UUID
	var totalFueraCaja decimal.Decimal
	if cfg.Caja.ManejoFueraCajaAlCerrar == "incluir_en_cierre" {
		pendientes, err := s.ventas.FueraCajaSinConciliarTx(ctx, tx, caja.PuntoVentaID)
		if err != nil {
			return nil, err
		}
		for _, v := range pendientes {
			fueraCajaIDs = append(fueraCajaIDs, v.ID)
			totalFueraCaja = totalFueraCaja.Add(v.Total)
		}
	}

	// Cash and the folded-in off-register sales move the drawer.
	montoEsperado := caja.MontoInicial.Add(totalEfectivo).Add(totalFueraCaja)
	montoDeclarado := montoEsperado
	if p.MontoDeclarado != nil {
		montoDeclarado = *p.MontoDeclarado
	}

	cierre := &model.CierreCaja{
		TenantID:           tenantID,
		PuntoVentaID:       caja.PuntoVentaID,
		CajaID:             caja.ID,
		FechaOperativa:     p.FechaOperativa,
		AbiertaEn:          abiertaEn,
		CerradaEn:          s.now(),
		MontoInicial:       caja.MontoInicial,
		MontoEsperado:      montoEsperado,
		MontoDeclarado:     montoDeclarado,
		Desvio:             montoDeclarado.Sub(montoEsperado),
		TotalEfectivo:      totalEfectivo,
		TotalTarjeta:       totalTarjeta,
		TotalTransferencia: totalTransferencia,
		TotalGeneral:       totalGeneral,
		CantidadVentas:     cantidad,
		IncluyeFueraCaja:   len(fueraCajaIDs) > 0,
		CantidadFueraCaja:  len(fueraCajaIDs),
		TotalFueraCaja:     totalFueraCaja,
		ReglaConsumos:      cfg.Consumos.AlCierreSinLiquidar,
		Automatico:         p.Automatico,
		UsuarioID:          p.UsuarioID,
		Observaciones:      p.Observaciones,
	}
	if err := s.cierres.CreateTx(ctx, tx, cierre); err != nil {
		return nil, err
	}

	resumen, err := liquidarPendientesEnCierre(ctx, tx, s.consumos, tenantID, caja.PuntoVentaID, cfg.Consumos.AlCierreSinLiquidar, cierre.ID)
	if err != nil {
		return nil, err
	}
	if resumen.Cantidad > 0 {
		if err := s.cierres.ActualizarResumenConsumosTx(ctx, tx, cierre.ID, resumen.Cantidad, resumen.TotalCobrado); err != nil {
			return nil, err
		}
		cierre.ConsumosLiquidados = resumen.Cantidad
		cierre.TotalConsumos = resumen.TotalCobrado
	}

	if err := s.ventas.ConciliarTx(ctx, tx, caja.PuntoVentaID, cierre.ID, abiertaEn, fueraCajaIDs); err != nil {
		return nil, err
	}
	if err := s.cajas.CerrarTx(ctx, tx, caja.ID); err != nil {
		return nil, err
	}
	return cierre, nil
}

// ─── Queries ─────────────────────────────────────────────────────────────────

func (s *cajaService) EstadoCaja(ctx context.Context, tenantID, puntoVentaID uuid.UUID) (*dto.EstadoCajaResponse, error) {
	caja, err := s.cajas.GetOrCreateActiva(ctx, tenantID, puntoVentaID)
	if err != nil {
		return nil, err
	}
	cfg := s.config.Resolver(ctx, tenantID, &puntoVentaID)
	if cerrada, err := s.evaluarCierreAutomatico(ctx, tenantID, caja, cfg); err != nil {
		return nil, err
	} else if cerrada {
		if caja, err = s.cajas.FindByID(ctx, caja.ID); err != nil {
			return nil, err
		}
	}

	res := &dto.EstadoCajaResponse{
		CajaID:       caja.ID.String(),
		Nombre:       caja.Nombre,
		Abierta:      caja.Abierta,
		MontoInicial: caja.MontoInicial,
		Virtual:      caja.Virtual,
	}
	if caja.AbiertaEn != nil {
		en := caja.AbiertaEn.Format(time.RFC3339)
		res.AbiertaEn = &en
	}
	return res, nil
}

func (s *cajaService) ListarCierres(ctx context.Context, tenantID, puntoVentaID uuid.UUID, limit int) ([]dto.CierreResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	cierres, err := s.cierres.ListPorPuntoVenta(ctx, tenantID, puntoVentaID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CierreResponse, 0, len(cierres))
	for i := range cierres {
		out = append(out, *cierreToResponse(&cierres[i]))
	}
	return out, nil
}

func (s *cajaService) ObtenerCierre(ctx context.Context, tenantID, cierreID uuid.UUID) (*dto.CierreResponse, error) {
	cierre, err := s.buscarCierre(ctx, tenantID, cierreID)
	if err != nil {
		return nil, err
	}
	return cierreToResponse(cierre), nil
}

func (s *cajaService) ResumenCierrePDF(ctx context.Context, tenantID, cierreID uuid.UUID) (string, error) {
	if s.pdf == nil {
		return "", apierror.NewCoded("RESUMEN_PDF_NO_DISPONIBLE",
			"La generación de PDF no está configurada")
	}
	cierre, err := s.buscarCierre(ctx, tenantID, cierreID)
	if err != nil {
		return "", err
	}
	return s.pdf.GenerarResumenCierre(cierre)
}

func (s *cajaService) buscarCierre(ctx context.Context, tenantID, cierreID uuid.UUID) (*model.CierreCaja, error) {
	cierre, err := s.cierres.FindByID(ctx, cierreID)
	if err != nil {
		return nil, err
	}
	if cierre.TenantID != tenantID {
		return nil, gorm.ErrRecordNotFound
	}
	return cierre, nil
}

// ─── Notifications ───────────────────────────────────────────────────────────

// notificarApertura emits the opening audit event. Best-effort.
func (s *cajaService) notificarApertura(ctx context.Context, caja *model.Caja, usuarioID uuid.UUID) {
	if s.dispatcher == nil {
		return
	}
	pdvID := caja.PuntoVentaID.String()
	uid := usuarioID.String()
	entidadTipo := "caja"
	entidadID := caja.ID.String()
	err := s.dispatcher.EnqueueAuditoria(ctx, worker.AuditoriaPayload{
		TenantID:     caja.TenantID.String(),
		PuntoVentaID: &pdvID,
		UsuarioID:    &uid,
		Accion:       "apertura_caja",
		EntidadTipo:  &entidadTipo,
		EntidadID:    &entidadID,
		Metadata: map[string]interface{}{
			"monto_inicial": caja.MontoInicial.String(),
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("apertura: no se pudo encolar auditoría")
	}
}

// notificarCierre emits the audit event and, when configured, the summary
// email. Best-effort: the closing already committed.
func (s *cajaService) notificarCierre(ctx context.Context, cierre *model.CierreCaja) {
	if s.dispatcher == nil {
		return
	}

	pdvID := cierre.PuntoVentaID.String()
	entidadTipo := "cierre_caja"
	entidadID := cierre.ID.String()
	payload := worker.AuditoriaPayload{
		TenantID:     cierre.TenantID.String(),
		PuntoVentaID: &pdvID,
		Accion:       "cierre_caja",
		EntidadTipo:  &entidadTipo,
		EntidadID:    &entidadID,
		Metadata: map[string]interface{}{
			"automatico":          cierre.Automatico,
			"total_general":       cierre.TotalGeneral.String(),
			"desvio":              cierre.Desvio.String(),
			"regla_consumos":      cierre.ReglaConsumos,
			"consumos_liquidados": cierre.ConsumosLiquidados,
			"total_consumos":      cierre.TotalConsumos.String(),
		},
	}
	if cierre.UsuarioID != nil {
		uid := cierre.UsuarioID.String()
		payload.UsuarioID = &uid
	}
	if err := s.dispatcher.EnqueueAuditoria(ctx, payload); err != nil {
		log.Error().Err(err).Msg("cierre: no se pudo encolar auditoría")
	}

	if s.emailTo == "" {
		return
	}
	pdfPath := ""
	if s.pdf != nil {
		path, err := s.pdf.GenerarResumenCierre(cierre)
		if err != nil {
			log.Error().Err(err).Msg("cierre: no se pudo generar el PDF")
		} else {
			pdfPath = path
		}
	}
	tipo := "manual"
	if cierre.Automatico {
		tipo = "automático"
	}
	err := s.dispatcher.EnqueueEmail(ctx, worker.EmailJobPayload{
		ToEmail: s.emailTo,
		Subject: fmt.Sprintf("Cierre de caja %s — %s", tipo, cierre.FechaOperativa),
		Body: fmt.Sprintf(
			"Cierre %s del %s.\nTotal general: %s\nEfectivo: %s\nDesvío: %s\nVentas: %d",
			tipo, cierre.FechaOperativa, cierre.TotalGeneral.String(),
			cierre.TotalEfectivo.String(), cierre.Desvio.String(), cierre.CantidadVentas),
		PDFPath: pdfPath,
	})
	if err != nil {
		log.Error().Err(err).Msg("cierre: no se pudo encolar el email")
	}
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func admitida(caja *model.Caja, fueraCaja bool) *dto.AdmisionResponse {
	return &dto.AdmisionResponse{
		Admitida:    true,
		FueraCaja:   fueraCaja,
		CajaID:      caja.ID.String(),
		CajaAbierta: caja.Abierta,
	}
}

func admitidaFueraCaja(caja *model.Caja) *dto.AdmisionResponse {
	res := admitida(caja, true)
	res.CajaAbierta = false
	return res
}

func decision(caja *model.Caja, d *dto.DecisionCaja) *dto.AdmisionResponse {
	return &dto.AdmisionResponse{
		Admitida:    false,
		CajaID:      caja.ID.String(),
		CajaAbierta: caja.Abierta,
		Decision:    d,
	}
}

func cierreToResponse(c *model.CierreCaja) *dto.CierreResponse {
	return &dto.CierreResponse{
		CierreID:           c.ID.String(),
		CajaID:             c.CajaID.String(),
		FechaOperativa:     c.FechaOperativa,
		MontoInicial:       c.MontoInicial,
		MontoEsperado:      c.MontoEsperado,
		MontoDeclarado:     c.MontoDeclarado,
		Desvio:             c.Desvio,
		TotalEfectivo:      c.TotalEfectivo,
		TotalTarjeta:       c.TotalTarjeta,
		TotalTransferencia: c.TotalTransferencia,
		TotalGeneral:       c.TotalGeneral,
		CantidadVentas:     c.CantidadVentas,
		IncluyeFueraCaja:   c.IncluyeFueraCaja,
		CantidadFueraCaja:  c.CantidadFueraCaja,
		TotalFueraCaja:     c.TotalFueraCaja,
		ReglaConsumos:      c.ReglaConsumos,
		ConsumosLiquidados: c.ConsumosLiquidados,
		TotalConsumos:      c.TotalConsumos,
		Automatico:         c.Automatico,
	}
}

// clasificarMetodo buckets a payment method into the three closing totals.
// An unrecognized method returns "" and lands in no bucket.
func clasificarMetodo(metodo string) string {
	m := strings.ToLower(strings.TrimSpace(metodo))
	switch {
	case m == "efectivo":
		return "efectivo"
	case strings.HasPrefix(m, "tarjeta"):
		return "tarjeta"
	case strings.HasPrefix(m, "transferencia"):
		return "transferencia"
	default:
		return ""
	}
}

func parseHora(hhmm string) (int, int, error) {
	partes := strings.SplitN(hhmm, ":", 2)
	if len(partes) != 2 {
		return 0, 0, fmt.Errorf("hora inválida: %q", hhmm)
	}
	h, err := strconv.Atoi(partes[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, fmt.Errorf("hora inválida: %q", hhmm)
	}
	m, err := strconv.Atoi(partes[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("hora inválida: %q", hhmm)
	}
	return h, m, nil
}

// cargarZona resolves the configured IANA timezone, falling back to the
// compiled-in default and finally UTC. A bad timezone must not break sales.
func cargarZona(nombre string) *time.Location {
	if loc, err := time.LoadLocation(nombre); err == nil {
		return loc
	}
	if loc, err := time.LoadLocation(DefaultConfiguracion().Regional.Timezone); err == nil {
		return loc
	}
	return time.UTC
}
