package service

import (
	"context"
	"errors"
	"fmt"

	"barbercontrol/internal/apierror"
	"barbercontrol/internal/dto"
	"barbercontrol/internal/model"
	"barbercontrol/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type PuntoVentaService interface {
	Crear(ctx context.Context, tenantID uuid.UUID, req *dto.CrearPuntoVentaRequest) (*dto.PuntoVentaResponse, error)
	Listar(ctx context.Context, tenantID uuid.UUID) ([]dto.PuntoVentaResponse, error)
	// Desactivar refuses while the punto de venta has an open register: an
	// open opening must be reconciled before the local disappears.
	Desactivar(ctx context.Context, tenantID, puntoVentaID uuid.UUID) error
}

type puntoVentaService struct {
	puntos repository.PuntoVentaRepository
	cajas  repository.CajaRepository
}

func NewPuntoVentaService(puntos repository.PuntoVentaRepository, cajas repository.CajaRepository) PuntoVentaService {
	return &puntoVentaService{puntos: puntos, cajas: cajas}
}

func (s *puntoVentaService) Crear(ctx context.Context, tenantID uuid.UUID, req *dto.CrearPuntoVentaRequest) (*dto.PuntoVentaResponse, error) {
	punto := &model.PuntoVenta{
		TenantID:  tenantID,
		Nombre:    req.Nombre,
		Direccion: req.Direccion,
		Activo:    true,
	}
	if err := s.puntos.Create(ctx, punto); err != nil {
		return nil, fmt.Errorf("crear punto de venta: %w", err)
	}
	log.Info().Str("punto_venta_id", punto.ID.String()).Msg("punto de venta creado")
	return puntoToResponse(punto), nil
}

func (s *puntoVentaService) Listar(ctx context.Context, tenantID uuid.UUID) ([]dto.PuntoVentaResponse, error) {
	puntos, err := s.puntos.ListActivosPorTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PuntoVentaResponse, 0, len(puntos))
	for i := range puntos {
		out = append(out, *puntoToResponse(&puntos[i]))
	}
	return out, nil
}

func (s *puntoVentaService) Desactivar(ctx context.Context, tenantID, puntoVentaID uuid.UUID) error {
	caja, err := s.cajas.FindActivaPorPuntoVenta(ctx, tenantID, puntoVentaID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if caja != nil && caja.Abierta {
		return apierror.ErrPuntoVentaCajaAbierta
	}
	if err := s.puntos.SetActivo(ctx, puntoVentaID, false); err != nil {
		return fmt.Errorf("desactivar punto de venta: %w", err)
	}
	log.Info().Str("punto_venta_id", puntoVentaID.String()).Msg("punto de venta desactivado")
	return nil
}

func puntoToResponse(p *model.PuntoVenta) *dto.PuntoVentaResponse {
	return &dto.PuntoVentaResponse{
		ID:        p.ID.String(),
		Nombre:    p.Nombre,
		Direccion: p.Direccion,
		Activo:    p.Activo,
	}
}
