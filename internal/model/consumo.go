package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ConsumoPersonal is a staff consumption record. It is created by the
// consumption-registration endpoint and reaches a terminal estado only via
// the settlement policy or explicit admin action.
//
// EstadoLiquidacion: "pendiente" | "cobrado" | "perdonado" | "parcial"
type ConsumoPersonal struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID     uuid.UUID `gorm:"type:uuid;not null;index"`
	PuntoVentaID uuid.UUID `gorm:"type:uuid;not null;index"`
	UsuarioID    uuid.UUID `gorm:"type:uuid;not null"`
	Descripcion  string    `gorm:"not null"`
	// TotalVenta is the sale-price total, TotalCosto the cost-price total —
	// which one gets charged depends on the settlement rule at closing.
	TotalVenta        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalCosto        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	EstadoLiquidacion string          `gorm:"type:varchar(20);not null;default:'pendiente';index"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// LiquidacionConsumo records one settlement applied to one consumption:
// the rule, the resolved amount, a reason, and the closing it belongs to
// (nil for manual admin settlements outside a close).
type LiquidacionConsumo struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConsumoID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	CierreCajaID *uuid.UUID `gorm:"type:uuid;index"`
	Regla        string     `gorm:"type:varchar(40);not null"`
	Monto        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Motivo       string          `gorm:"not null"`
	UsuarioID    *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt    time.Time
}
