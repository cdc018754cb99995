package repository

import (
	"context"

	"barbercontrol/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConfiguracionRepository interface {
	// FindOverrides returns the override row for the scope: tenant-wide when
	// puntoVentaID is nil, per-punto-de-venta otherwise.
	FindOverrides(ctx context.Context, tenantID uuid.UUID, puntoVentaID *uuid.UUID) (*model.ConfiguracionNegocio, error)
	UpsertOverrides(ctx context.Context, cfg *model.ConfiguracionNegocio) error
}

type configuracionRepo struct{ db *gorm.DB }

func NewConfiguracionRepository(db *gorm.DB) ConfiguracionRepository {
	return &configuracionRepo{db: db}
}

func (r *configuracionRepo) FindOverrides(ctx context.Context, tenantID uuid.UUID, puntoVentaID *uuid.UUID) (*model.ConfiguracionNegocio, error) {
	q := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if puntoVentaID == nil {
		q = q.Where("punto_venta_id IS NULL")
	} else {
		q = q.Where("punto_venta_id = ?", *puntoVentaID)
	}
	var row model.ConfiguracionNegocio
	if err := q.First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *configuracionRepo) UpsertOverrides(ctx context.Context, cfg *model.ConfiguracionNegocio) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("tenant_id = ?", cfg.TenantID)
		if cfg.PuntoVentaID == nil {
			q = q.Where("punto_venta_id IS NULL")
		} else {
			q = q.Where("punto_venta_id = ?", *cfg.PuntoVentaID)
		}
		var existente model.ConfiguracionNegocio
		err := q.First(&existente).Error
		if err == gorm.ErrRecordNotFound {
			return tx.Create(cfg).Error
		}
		if err != nil {
			return err
		}
		existente.Overrides = cfg.Overrides
		return tx.Save(&existente).Error
	})
}
