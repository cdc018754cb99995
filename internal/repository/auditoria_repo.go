package repository

import (
	"context"

	"barbercontrol/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditoriaRepository interface {
	Create(ctx context.Context, e *model.EventoAuditoria) error
	ListPorTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]model.EventoAuditoria, error)
}

type auditoriaRepo struct{ db *gorm.DB }

func NewAuditoriaRepository(db *gorm.DB) AuditoriaRepository { return &auditoriaRepo{db: db} }

func (r *auditoriaRepo) Create(ctx context.Context, e *model.EventoAuditoria) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *auditoriaRepo) ListPorTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]model.EventoAuditoria, error) {
	var eventos []model.EventoAuditoria
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Limit(limit).
		Find(&eventos).Error
	return eventos, err
}
