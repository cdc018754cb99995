package service

import (
	"context"
	"fmt"
	"time"

	"barbercontrol/internal/apierror"
	"barbercontrol/internal/dto"
	"barbercontrol/internal/model"
	"barbercontrol/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ConsumoService manages staff consumption records. Consumptions accumulate
// as pendiente and reach a terminal state either through the settlement rule
// applied at register closing or through explicit admin action here.
type ConsumoService interface {
	Registrar(ctx context.Context, tenantID, usuarioID uuid.UUID, req *dto.RegistrarConsumoRequest) (*dto.ConsumoResponse, error)
	Listar(ctx context.Context, tenantID, puntoVentaID uuid.UUID, estado string, limit int) ([]dto.ConsumoResponse, error)
	// LiquidarManual settles one consumption outside a closing. The resulting
	// liquidación row carries no cierre reference.
	LiquidarManual(ctx context.Context, tenantID, adminID, consumoID uuid.UUID, req *dto.LiquidarConsumoRequest) (*dto.ConsumoResponse, error)
}

type consumoService struct {
	consumos repository.ConsumoRepository
	cajas    CajaService
}

func NewConsumoService(consumos repository.ConsumoRepository, cajas CajaService) ConsumoService {
	return &consumoService{consumos: consumos, cajas: cajas}
}

func (s *consumoService) Registrar(ctx context.Context, tenantID, usuarioID uuid.UUID, req *dto.RegistrarConsumoRequest) (*dto.ConsumoResponse, error) {
	admision, err := s.cajas.AdmitirOperacion(ctx, tenantID, usuarioID, &dto.AdmitirOperacionRequest{
		PuntoVentaID:         req.PuntoVentaID,
		TipoOperacion:        "consumo",
		AccionCajaCerrada:    req.AccionCajaCerrada,
		MontoInicialApertura: req.MontoInicialApertura,
	})
	if err != nil {
		return nil, err
	}
	if !admision.Admitida {
		// The controller wants an explicit caller decision. Nothing recorded.
		return &dto.ConsumoResponse{Decision: admision.Decision}, nil
	}

	puntoVentaID, _ := uuid.Parse(req.PuntoVentaID)
	consumo := &model.ConsumoPersonal{
		TenantID:          tenantID,
		PuntoVentaID:      puntoVentaID,
		UsuarioID:         usuarioID,
		Descripcion:       req.Descripcion,
		TotalVenta:        req.TotalVenta,
		TotalCosto:        req.TotalCosto,
		EstadoLiquidacion: "pendiente",
	}
	if err := s.consumos.Create(ctx, consumo); err != nil {
		return nil, fmt.Errorf("registrar consumo: %w", err)
	}

	log.Info().
		Str("consumo_id", consumo.ID.String()).
		Str("usuario_id", usuarioID.String()).
		Str("total_venta", req.TotalVenta.String()).
		Msg("consumo personal registrado")
	return consumoToResponse(consumo), nil
}

func (s *consumoService) Listar(ctx context.Context, tenantID, puntoVentaID uuid.UUID, estado string, limit int) ([]dto.ConsumoResponse, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	consumos, err := s.consumos.List(ctx, tenantID, puntoVentaID, estado, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ConsumoResponse, 0, len(consumos))
	for i := range consumos {
		out = append(out, *consumoToResponse(&consumos[i]))
	}
	return out, nil
}

func (s *consumoService) LiquidarManual(ctx context.Context, tenantID, adminID, consumoID uuid.UUID, req *dto.LiquidarConsumoRequest) (*dto.ConsumoResponse, error) {
	consumo, err := s.consumos.FindByID(ctx, consumoID)
	if err != nil {
		return nil, err
	}
	if consumo.TenantID != tenantID {
		return nil, gorm.ErrRecordNotFound
	}
	if consumo.EstadoLiquidacion != "pendiente" {
		return nil, apierror.NewCoded("CONSUMO_YA_LIQUIDADO",
			"El consumo ya fue liquidado")
	}

	var regla string
	var monto decimal.Decimal
	estado := "cobrado"
	switch req.Accion {
	case "cobrar_venta":
		regla, monto = ReglaCobroAutomaticoVenta, consumo.TotalVenta
	case "cobrar_costo":
		regla, monto = ReglaCobroAutomaticoCosto, consumo.TotalCosto
	case "perdonar":
		regla, monto, estado = ReglaPerdonado, decimal.Zero, "perdonado"
	default:
		return nil, apierror.NewCoded("ACCION_LIQUIDACION_INVALIDA", "acción de liquidación inválida")
	}

	motivo := "liquidación manual"
	if req.Motivo != nil && *req.Motivo != "" {
		motivo = *req.Motivo
	}

	err = runTx(ctx, s.consumos.DB(), func(tx *gorm.DB) error {
		if err := s.consumos.CreateLiquidacionTx(ctx, tx, &model.LiquidacionConsumo{
			ConsumoID: consumo.ID,
			Regla:     regla,
			Monto:     monto,
			Motivo:    motivo,
			UsuarioID: &adminID,
		}); err != nil {
			return err
		}
		return s.consumos.ActualizarEstadoTx(ctx, tx, consumo.ID, estado)
	})
	if err != nil {
		return nil, fmt.Errorf("liquidar consumo: %w", err)
	}

	consumo.EstadoLiquidacion = estado
	log.Info().
		Str("consumo_id", consumo.ID.String()).
		Str("accion", req.Accion).
		Str("monto", monto.String()).
		Msg("consumo liquidado manualmente")
	return consumoToResponse(consumo), nil
}

// liquidarPendientesEnCierre applies the configured settlement rule to every
// pending consumption of the punto de venta, inside the closing transaction.
// pendiente_siguiente_caja leaves them untouched for the next closing;
// no_permitir_cierre never reaches here (callers guard before the tx).
func liquidarPendientesEnCierre(ctx context.Context, tx *gorm.DB, consumos repository.ConsumoRepository, tenantID, puntoVentaID uuid.UUID, regla string, cierreID uuid.UUID) (*dto.ResumenLiquidacion, error) {
	resumen := &dto.ResumenLiquidacion{Regla: regla}
	if regla == ReglaPendienteSiguienteCaja || regla == ReglaNoPermitirCierre {
		return resumen, nil
	}

	pendientes, err := consumos.ListPendientesTx(ctx, tx, tenantID, puntoVentaID)
	if err != nil {
		return nil, err
	}

	for i := range pendientes {
		c := &pendientes[i]
		var monto decimal.Decimal
		estado := "cobrado"
		switch regla {
		case ReglaCobroAutomaticoVenta:
			monto = c.TotalVenta
		case ReglaCobroAutomaticoCosto:
			monto = c.TotalCosto
		case ReglaPerdonado:
			monto, estado = decimal.Zero, "perdonado"
		default:
			return nil, fmt.Errorf("regla de liquidación desconocida: %q", regla)
		}

		if err := consumos.CreateLiquidacionTx(ctx, tx, &model.LiquidacionConsumo{
			ConsumoID:    c.ID,
			CierreCajaID: &cierreID,
			Regla:        regla,
			Monto:        monto,
			Motivo:       "liquidación automática al cierre de caja",
		}); err != nil {
			return nil, err
		}
		if err := consumos.ActualizarEstadoTx(ctx, tx, c.ID, estado); err != nil {
			return nil, err
		}
		resumen.Cantidad++
		resumen.TotalCobrado = resumen.TotalCobrado.Add(monto)
	}
	return resumen, nil
}

func consumoToResponse(c *model.ConsumoPersonal) *dto.ConsumoResponse {
	return &dto.ConsumoResponse{
		ID:                c.ID.String(),
		PuntoVentaID:      c.PuntoVentaID.String(),
		UsuarioID:         c.UsuarioID.String(),
		Descripcion:       c.Descripcion,
		TotalVenta:        c.TotalVenta,
		TotalCosto:        c.TotalCosto,
		EstadoLiquidacion: c.EstadoLiquidacion,
		CreatedAt:         c.CreatedAt.Format(time.RFC3339),
	}
}
