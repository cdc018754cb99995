package repository

import (
	"context"

	"barbercontrol/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CierreRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, c *model.CierreCaja) error
	// AdquirirControlTx inserts the idempotency fence row for one
	// (caja, fecha operativa, hora objetivo) triple. Returns false without
	// error when another evaluator already owns that closing.
	AdquirirControlTx(ctx context.Context, tx *gorm.DB, cajaID uuid.UUID, fechaOperativa, horaObjetivo string) (bool, error)
	// ActualizarResumenConsumosTx stamps the settlement summary after the
	// liquidación batch ran (the batch rows reference the cierre, so the
	// cierre row exists first).
	ActualizarResumenConsumosTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, cantidad int, total decimal.Decimal) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CierreCaja, error)
	ListPorPuntoVenta(ctx context.Context, tenantID, puntoVentaID uuid.UUID, limit int) ([]model.CierreCaja, error)
}

type cierreRepo struct{ db *gorm.DB }

func NewCierreRepository(db *gorm.DB) CierreRepository { return &cierreRepo{db: db} }

func (r *cierreRepo) CreateTx(ctx context.Context, tx *gorm.DB, c *model.CierreCaja) error {
	return tx.WithContext(ctx).Create(c).Error
}

func (r *cierreRepo) AdquirirControlTx(ctx context.Context, tx *gorm.DB, cajaID uuid.UUID, fechaOperativa, horaObjetivo string) (bool, error) {
	control := &model.ControlCierreAutomatico{
		CajaID:         cajaID,
		FechaOperativa: fechaOperativa,
		HoraObjetivo:   horaObjetivo,
	}
	res := tx.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(control)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *cierreRepo) ActualizarResumenConsumosTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, cantidad int, total decimal.Decimal) error {
	return tx.WithContext(ctx).Model(&model.CierreCaja{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"consumos_liquidados": cantidad,
			"total_consumos":      total,
		}).Error
}

func (r *cierreRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CierreCaja, error) {
	var c model.CierreCaja
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *cierreRepo) ListPorPuntoVenta(ctx context.Context, tenantID, puntoVentaID uuid.UUID, limit int) ([]model.CierreCaja, error) {
	var cierres []model.CierreCaja
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND punto_venta_id = ?", tenantID, puntoVentaID).
		Order("cerrada_en DESC").
		Limit(limit).
		Find(&cierres).Error
	return cierres, err
}
