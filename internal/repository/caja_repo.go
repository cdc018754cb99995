package repository

import (
	"context"
	"time"

	"barbercontrol/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CajaRepository interface {
	// GetOrCreateActiva returns the oldest activa=true caja for the punto de
	// venta, provisioning a virtual one when none exists. Safe under
	// concurrent first use: the partial unique index on (punto_venta_id)
	// WHERE activa collapses the create race to a single winner.
	GetOrCreateActiva(ctx context.Context, tenantID, puntoVentaID uuid.UUID) (*model.Caja, error)
	FindActivaPorPuntoVenta(ctx context.Context, tenantID, puntoVentaID uuid.UUID) (*model.Caja, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Caja, error)
	// FindByIDForUpdate locks the caja row inside tx (SELECT ... FOR UPDATE)
	// so open/close read-validate-write sequences cannot lose updates.
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Caja, error)
	AbrirTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, monto decimal.Decimal, en time.Time) error
	CerrarTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	DB() *gorm.DB
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) DB() *gorm.DB { return r.db }

func (r *cajaRepo) GetOrCreateActiva(ctx context.Context, tenantID, puntoVentaID uuid.UUID) (*model.Caja, error) {
	caja, err := r.FindActivaPorPuntoVenta(ctx, tenantID, puntoVentaID)
	if err == nil {
		return caja, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	nueva := &model.Caja{
		TenantID:     tenantID,
		PuntoVentaID: puntoVentaID,
		Nombre:       "Caja principal",
		Activa:       true,
		Abierta:      false,
		MontoInicial: decimal.Zero,
		Virtual:      true,
	}
	// Create-then-refetch-on-conflict: if a concurrent request won the race,
	// DoNothing leaves zero rows affected and the refetch returns the winner.
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(nueva).Error; err != nil {
		return nil, err
	}
	return r.FindActivaPorPuntoVenta(ctx, tenantID, puntoVentaID)
}

func (r *cajaRepo) FindActivaPorPuntoVenta(ctx context.Context, tenantID, puntoVentaID uuid.UUID) (*model.Caja, error) {
	var c model.Caja
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND punto_venta_id = ? AND activa = true", tenantID, puntoVentaID).
		Order("created_at ASC").
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *cajaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Caja, error) {
	var c model.Caja
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *cajaRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Caja, error) {
	var c model.Caja
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *cajaRepo) AbrirTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, monto decimal.Decimal, en time.Time) error {
	return tx.WithContext(ctx).Model(&model.Caja{}).
		Where("id = ? AND abierta = false", id).
		Updates(map[string]interface{}{
			"abierta":       true,
			"monto_inicial": monto,
			"abierta_en":    en,
		}).Error
}

func (r *cajaRepo) CerrarTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	// Closing always resets the float and clears the opening timestamp.
	return tx.WithContext(ctx).Model(&model.Caja{}).
		Where("id = ? AND abierta = true", id).
		Updates(map[string]interface{}{
			"abierta":       false,
			"monto_inicial": decimal.Zero,
			"abierta_en":    nil,
		}).Error
}
