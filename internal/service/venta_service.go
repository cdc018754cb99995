package service

import (
	"context"
	"fmt"
	"time"

	"barbercontrol/internal/dto"
	"barbercontrol/internal/model"
	"barbercontrol/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// VentaService records sales. Every sale passes through the register
// lifecycle controller first; the row is only inserted after a positive
// admission (in-register or fuera de caja).
type VentaService interface {
	Registrar(ctx context.Context, tenantID, usuarioID uuid.UUID, req *dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	Listar(ctx context.Context, tenantID, puntoVentaID uuid.UUID, limit int) ([]dto.VentaResponse, error)
}

type ventaService struct {
	ventas repository.VentaRepository
	cajas  CajaService
}

func NewVentaService(ventas repository.VentaRepository, cajas CajaService) VentaService {
	return &ventaService{ventas: ventas, cajas: cajas}
}

func (s *ventaService) Registrar(ctx context.Context, tenantID, usuarioID uuid.UUID, req *dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	admision, err := s.cajas.AdmitirOperacion(ctx, tenantID, usuarioID, &dto.AdmitirOperacionRequest{
		PuntoVentaID:         req.PuntoVentaID,
		TipoOperacion:        "venta",
		AccionCajaCerrada:    req.AccionCajaCerrada,
		MontoInicialApertura: req.MontoInicialApertura,
	})
	if err != nil {
		return nil, err
	}
	if !admision.Admitida {
		// The controller wants an explicit caller decision. Nothing recorded.
		return &dto.VentaResponse{Decision: admision.Decision}, nil
	}

	puntoVentaID, _ := uuid.Parse(req.PuntoVentaID)
	venta := &model.Venta{
		TenantID:     tenantID,
		PuntoVentaID: puntoVentaID,
		UsuarioID:    usuarioID,
		MetodoPago:   req.MetodoPago,
		Total:        req.Total,
		Estado:       "confirmada",
		FueraCaja:    admision.FueraCaja,
	}
	if !admision.FueraCaja {
		cajaID, err := uuid.Parse(admision.CajaID)
		if err != nil {
			return nil, fmt.Errorf("registrar venta: caja_id inválido en la admisión: %w", err)
		}
		venta.CajaID = &cajaID
	}
	if err := s.ventas.Create(ctx, venta); err != nil {
		return nil, fmt.Errorf("registrar venta: %w", err)
	}

	log.Info().
		Str("venta_id", venta.ID.String()).
		Str("total", venta.Total.String()).
		Bool("fuera_caja", venta.FueraCaja).
		Msg("venta registrada")
	return ventaToResponse(venta), nil
}

func (s *ventaService) Listar(ctx context.Context, tenantID, puntoVentaID uuid.UUID, limit int) ([]dto.VentaResponse, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	ventas, err := s.ventas.List(ctx, tenantID, puntoVentaID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		out = append(out, *ventaToResponse(&ventas[i]))
	}
	return out, nil
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	res := &dto.VentaResponse{
		ID:         v.ID.String(),
		MetodoPago: v.MetodoPago,
		Total:      v.Total,
		Estado:     v.Estado,
		FueraCaja:  v.FueraCaja,
		CreatedAt:  v.CreatedAt.Format(time.RFC3339),
	}
	if v.CajaID != nil {
		id := v.CajaID.String()
		res.CajaID = &id
	}
	return res
}
