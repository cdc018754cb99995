package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Venta is a confirmed sale against a punto de venta. The cart/line-item
// detail lives in the (out-of-scope) ticket service; this row carries what
// the register reconciliation needs: total, payment method and the
// fuera_caja / conciliation linkage.
//
// Estado: "confirmada" | "anulada"
type Venta struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID     uuid.UUID `gorm:"type:uuid;not null;index"`
	PuntoVentaID uuid.UUID `gorm:"type:uuid;not null;index"`
	// CajaID is nil for fuera_caja sales recorded while the register was closed.
	CajaID     *uuid.UUID      `gorm:"type:uuid;index"`
	UsuarioID  uuid.UUID       `gorm:"type:uuid;not null"`
	MetodoPago string          `gorm:"type:varchar(40);not null"`
	Total      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Estado     string          `gorm:"type:varchar(20);not null;default:'confirmada'"`
	FueraCaja  bool            `gorm:"not null;default:false;index"`
	// CierreCajaID is set when the sale is folded into a closing; fuera_caja
	// sales stay unreconciled (nil) until the next close absorbs them.
	CierreCajaID *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt    time.Time
}
