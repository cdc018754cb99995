package repository

import (
	"context"
	"time"

	"barbercontrol/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MontoPorMetodo is one row of the GROUP BY metodo_pago aggregation.
type MontoPorMetodo struct {
	MetodoPago string
	Total      decimal.Decimal
	Cantidad   int
}

type VentaRepository interface {
	Create(ctx context.Context, v *model.Venta) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	// SumPorMetodoTx aggregates confirmed in-register sales of the current
	// opening (since desde, not yet folded into a cierre).
	SumPorMetodoTx(ctx context.Context, tx *gorm.DB, puntoVentaID uuid.UUID, desde time.Time) ([]MontoPorMetodo, error)
	// FueraCajaSinConciliarTx returns confirmed off-register sales not yet
	// reconciled into any prior cierre.
	FueraCajaSinConciliarTx(ctx context.Context, tx *gorm.DB, puntoVentaID uuid.UUID) ([]model.Venta, error)
	// ConciliarTx stamps cierreID on the given sales plus every confirmed
	// in-register sale of the period.
	ConciliarTx(ctx context.Context, tx *gorm.DB, puntoVentaID, cierreID uuid.UUID, desde time.Time, fueraCajaIDs []uuid.UUID) error
	List(ctx context.Context, tenantID, puntoVentaID uuid.UUID, limit int) ([]model.Venta, error)
	DB() *gorm.DB
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) Create(ctx context.Context, v *model.Venta) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	if err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *ventaRepo) SumPorMetodoTx(ctx context.Context, tx *gorm.DB, puntoVentaID uuid.UUID, desde time.Time) ([]MontoPorMetodo, error) {
	var rows []MontoPorMetodo
	err := tx.WithContext(ctx).Model(&model.Venta{}).
		Select("metodo_pago, SUM(total) AS total, COUNT(*) AS cantidad").
		Where("punto_venta_id = ? AND estado = 'confirmada' AND fuera_caja = false AND cierre_caja_id IS NULL AND created_at >= ?",
			puntoVentaID, desde).
		Group("metodo_pago").
		Scan(&rows).Error
	return rows, err
}

func (r *ventaRepo) FueraCajaSinConciliarTx(ctx context.Context, tx *gorm.DB, puntoVentaID uuid.UUID) ([]model.Venta, error) {
	var ventas []model.Venta
	err := tx.WithContext(ctx).
		Where("punto_venta_id = ? AND estado = 'confirmada' AND fuera_caja = true AND cierre_caja_id IS NULL", puntoVentaID).
		Find(&ventas).Error
	return ventas, err
}

func (r *ventaRepo) ConciliarTx(ctx context.Context, tx *gorm.DB, puntoVentaID, cierreID uuid.UUID, desde time.Time, fueraCajaIDs []uuid.UUID) error {
	if err := tx.WithContext(ctx).Model(&model.Venta{}).
		Where("punto_venta_id = ? AND estado = 'confirmada' AND fuera_caja = false AND cierre_caja_id IS NULL AND created_at >= ?",
			puntoVentaID, desde).
		Update("cierre_caja_id", cierreID).Error; err != nil {
		return err
	}
	if len(fueraCajaIDs) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Model(&model.Venta{}).
		Where("id IN ?", fueraCajaIDs).
		Update("cierre_caja_id", cierreID).Error
}

func (r *ventaRepo) List(ctx context.Context, tenantID, puntoVentaID uuid.UUID, limit int) ([]model.Venta, error) {
	var ventas []model.Venta
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND punto_venta_id = ?", tenantID, puntoVentaID).
		Order("created_at DESC").
		Limit(limit).
		Find(&ventas).Error
	return ventas, err
}
