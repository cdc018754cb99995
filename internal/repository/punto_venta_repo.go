package repository

import (
	"context"

	"barbercontrol/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PuntoVentaRepository interface {
	Create(ctx context.Context, p *model.PuntoVenta) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PuntoVenta, error)
	ListActivosPorTenant(ctx context.Context, tenantID uuid.UUID) ([]model.PuntoVenta, error)
	SetActivo(ctx context.Context, id uuid.UUID, activo bool) error
	// TenantDePuntoVenta resolves the owning tenant of a punto de venta.
	TenantDePuntoVenta(ctx context.Context, puntoVentaID uuid.UUID) (uuid.UUID, error)
	// TenantPorDefecto returns the system default tenant (oldest active row).
	TenantPorDefecto(ctx context.Context) (uuid.UUID, error)
	TenantsActivos(ctx context.Context) ([]uuid.UUID, error)
}

type puntoVentaRepo struct{ db *gorm.DB }

func NewPuntoVentaRepository(db *gorm.DB) PuntoVentaRepository { return &puntoVentaRepo{db: db} }

func (r *puntoVentaRepo) Create(ctx context.Context, p *model.PuntoVenta) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *puntoVentaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PuntoVenta, error) {
	var p model.PuntoVenta
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *puntoVentaRepo) ListActivosPorTenant(ctx context.Context, tenantID uuid.UUID) ([]model.PuntoVenta, error) {
	var puntos []model.PuntoVenta
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND activo = true", tenantID).
		Order("created_at ASC").
		Find(&puntos).Error
	return puntos, err
}

func (r *puntoVentaRepo) SetActivo(ctx context.Context, id uuid.UUID, activo bool) error {
	return r.db.WithContext(ctx).Model(&model.PuntoVenta{}).
		Where("id = ?", id).
		Update("activo", activo).Error
}

func (r *puntoVentaRepo) TenantDePuntoVenta(ctx context.Context, puntoVentaID uuid.UUID) (uuid.UUID, error) {
	var p model.PuntoVenta
	if err := r.db.WithContext(ctx).Select("tenant_id").First(&p, "id = ?", puntoVentaID).Error; err != nil {
		return uuid.Nil, err
	}
	return p.TenantID, nil
}

func (r *puntoVentaRepo) TenantPorDefecto(ctx context.Context) (uuid.UUID, error) {
	var t model.Tenant
	if err := r.db.WithContext(ctx).Where("activo = true").Order("created_at ASC").First(&t).Error; err != nil {
		return uuid.Nil, err
	}
	return t.ID, nil
}

func (r *puntoVentaRepo) TenantsActivos(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.Tenant{}).
		Where("activo = true").
		Pluck("id", &ids).Error
	return ids, err
}
