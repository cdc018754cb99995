package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// RegistrarVentaRequest records a sale. The admission fields mirror
// AdmitirOperacionRequest: the sale endpoint asks the lifecycle controller
// first and only then inserts the row.
type RegistrarVentaRequest struct {
	PuntoVentaID         string           `json:"punto_venta_id"         validate:"required,uuid"`
	MetodoPago           string           `json:"metodo_pago"            validate:"required,min=2,max=40"`
	Total                decimal.Decimal  `json:"total"                  validate:"required,gt=0"`
	AccionCajaCerrada    *string          `json:"accion_caja_cerrada"    validate:"omitempty,oneof=abrir fuera_caja"`
	MontoInicialApertura *decimal.Decimal `json:"monto_inicial_apertura" validate:"omitempty"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type VentaResponse struct {
	ID         string          `json:"id"`
	CajaID     *string         `json:"caja_id"`
	MetodoPago string          `json:"metodo_pago"`
	Total      decimal.Decimal `json:"total"`
	Estado     string          `json:"estado"`
	FueraCaja  bool            `json:"fuera_caja"`
	CreatedAt  string          `json:"created_at"`
	// Decision is non-nil when the register controller requires an explicit
	// caller decision; in that case the sale was NOT recorded.
	Decision *DecisionCaja `json:"decision,omitempty"`
}
