package repository

import (
	"context"

	"barbercontrol/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConsumoRepository interface {
	Create(ctx context.Context, c *model.ConsumoPersonal) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ConsumoPersonal, error)
	CountPendientes(ctx context.Context, tenantID, puntoVentaID uuid.UUID) (int64, error)
	// ListPendientesTx row-locks the pending records so a concurrent manual
	// settlement cannot race the closing batch.
	ListPendientesTx(ctx context.Context, tx *gorm.DB, tenantID, puntoVentaID uuid.UUID) ([]model.ConsumoPersonal, error)
	ActualizarEstadoTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, estado string) error
	CreateLiquidacionTx(ctx context.Context, tx *gorm.DB, l *model.LiquidacionConsumo) error
	List(ctx context.Context, tenantID, puntoVentaID uuid.UUID, estado string, limit int) ([]model.ConsumoPersonal, error)
	DB() *gorm.DB
}

type consumoRepo struct{ db *gorm.DB }

func NewConsumoRepository(db *gorm.DB) ConsumoRepository { return &consumoRepo{db: db} }

func (r *consumoRepo) DB() *gorm.DB { return r.db }

func (r *consumoRepo) Create(ctx context.Context, c *model.ConsumoPersonal) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *consumoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ConsumoPersonal, error) {
	var c model.ConsumoPersonal
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *consumoRepo) CountPendientes(ctx context.Context, tenantID, puntoVentaID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ConsumoPersonal{}).
		Where("tenant_id = ? AND punto_venta_id = ? AND estado_liquidacion = 'pendiente'", tenantID, puntoVentaID).
		Count(&count).Error
	return count, err
}

func (r *consumoRepo) ListPendientesTx(ctx context.Context, tx *gorm.DB, tenantID, puntoVentaID uuid.UUID) ([]model.ConsumoPersonal, error) {
	var consumos []model.ConsumoPersonal
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND punto_venta_id = ? AND estado_liquidacion = 'pendiente'", tenantID, puntoVentaID).
		Order("created_at ASC").
		Find(&consumos).Error
	return consumos, err
}

func (r *consumoRepo) ActualizarEstadoTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, estado string) error {
	return tx.WithContext(ctx).Model(&model.ConsumoPersonal{}).
		Where("id = ?", id).
		Update("estado_liquidacion", estado).Error
}

func (r *consumoRepo) CreateLiquidacionTx(ctx context.Context, tx *gorm.DB, l *model.LiquidacionConsumo) error {
	return tx.WithContext(ctx).Create(l).Error
}

func (r *consumoRepo) List(ctx context.Context, tenantID, puntoVentaID uuid.UUID, estado string, limit int) ([]model.ConsumoPersonal, error) {
	q := r.db.WithContext(ctx).
		Where("tenant_id = ? AND punto_venta_id = ?", tenantID, puntoVentaID)
	if estado != "" {
		q = q.Where("estado_liquidacion = ?", estado)
	}
	var consumos []model.ConsumoPersonal
	err := q.Order("created_at DESC").Limit(limit).Find(&consumos).Error
	return consumos, err
}
