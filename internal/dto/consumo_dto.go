package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// RegistrarConsumoRequest records a staff consumption. Like sales, the
// request passes the register lifecycle controller before anything is
// inserted; the admission fields mirror AdmitirOperacionRequest.
type RegistrarConsumoRequest struct {
	PuntoVentaID         string           `json:"punto_venta_id"         validate:"required,uuid"`
	Descripcion          string           `json:"descripcion"            validate:"required,min=3"`
	TotalVenta           decimal.Decimal  `json:"total_venta"            validate:"required,gt=0"`
	TotalCosto           decimal.Decimal  `json:"total_costo"            validate:"min=0"`
	AccionCajaCerrada    *string          `json:"accion_caja_cerrada"    validate:"omitempty,oneof=abrir fuera_caja"`
	MontoInicialApertura *decimal.Decimal `json:"monto_inicial_apertura" validate:"omitempty"`
}

// LiquidarConsumoRequest settles one consumption by explicit admin action.
// Accion: "cobrar_venta" | "cobrar_costo" | "perdonar"
type LiquidarConsumoRequest struct {
	Accion string  `json:"accion" validate:"required,oneof=cobrar_venta cobrar_costo perdonar"`
	Motivo *string `json:"motivo"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ConsumoResponse struct {
	ID                string          `json:"id"`
	PuntoVentaID      string          `json:"punto_venta_id"`
	UsuarioID         string          `json:"usuario_id"`
	Descripcion       string          `json:"descripcion"`
	TotalVenta        decimal.Decimal `json:"total_venta"`
	TotalCosto        decimal.Decimal `json:"total_costo"`
	EstadoLiquidacion string          `json:"estado_liquidacion"`
	CreatedAt         string          `json:"created_at"`
	// Decision is non-nil when the register controller requires an explicit
	// caller decision; in that case the consumption was NOT recorded.
	Decision *DecisionCaja `json:"decision,omitempty"`
}

// ResumenLiquidacion summarizes one settlement batch applied at closing.
type ResumenLiquidacion struct {
	Regla        string          `json:"regla"`
	Cantidad     int             `json:"cantidad"`
	TotalCobrado decimal.Decimal `json:"total_cobrado"`
}
