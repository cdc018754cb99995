package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Caja is the cash-register row for a punto de venta. It is created once
// (lazily, on first use) and toggles abierta/cerrada indefinitely.
//
// Invariants:
//   - at most one activa=true caja per punto de venta (partial unique index,
//     see infra.NewDatabase)
//   - abierta=true implies abierta_en is non-null
//   - closing always resets monto_inicial to zero and clears abierta_en
type Caja struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID     uuid.UUID `gorm:"type:uuid;not null;index"`
	PuntoVentaID uuid.UUID `gorm:"type:uuid;not null;index"`
	Nombre       string    `gorm:"not null"`
	// Activa is the provisioning flag — distinct from Abierta.
	Activa       bool            `gorm:"not null;default:true"`
	Abierta      bool            `gorm:"not null;default:false"`
	MontoInicial decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	AbiertaEn    *time.Time
	// Virtual marks cajas auto-provisioned on first operation against a
	// punto de venta that had none.
	Virtual   bool `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CierreCaja is the immutable reconciliation snapshot written at every close,
// manual or automatic. Uniquely keyed by (punto_venta, caja, fecha_operativa)
// so the automatic closer is idempotent per operating day.
type CierreCaja struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID     uuid.UUID `gorm:"type:uuid;not null;index"`
	PuntoVentaID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uni_cierre_operativo,priority:1"`
	CajaID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uni_cierre_operativo,priority:2"`
	// FechaOperativa is the local calendar date of the register opening,
	// in the tenant's resolved timezone (YYYY-MM-DD).
	FechaOperativa string `gorm:"type:date;not null;uniqueIndex:uni_cierre_operativo,priority:3"`

	AbiertaEn time.Time
	CerradaEn time.Time

	MontoInicial   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MontoEsperado  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MontoDeclarado decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Desvio         decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	TotalEfectivo      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalTarjeta       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalTransferencia decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalGeneral       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CantidadVentas     int             `gorm:"not null"`

	IncluyeFueraCaja  bool            `gorm:"not null;default:false"`
	CantidadFueraCaja int             `gorm:"not null;default:0"`
	TotalFueraCaja    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	// Settlement outcome summary (see LiquidacionConsumo for the detail rows).
	ReglaConsumos      string          `gorm:"type:varchar(40);not null"`
	ConsumosLiquidados int             `gorm:"not null;default:0"`
	TotalConsumos      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	Automatico    bool `gorm:"not null;default:false"`
	UsuarioID     *uuid.UUID `gorm:"type:uuid"`
	Observaciones *string
	CreatedAt     time.Time
}

// ControlCierreAutomatico is the idempotency fence for the automatic closer:
// one row per (caja, fecha operativa, hora objetivo). The unique constraint
// is the sole guard against double execution under concurrent triggers.
type ControlCierreAutomatico struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CajaID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uni_control_cierre,priority:1"`
	FechaOperativa string    `gorm:"type:date;not null;uniqueIndex:uni_control_cierre,priority:2"`
	HoraObjetivo   string    `gorm:"type:varchar(5);not null;uniqueIndex:uni_control_cierre,priority:3"`
	CreatedAt      time.Time
}
