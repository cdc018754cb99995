package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// AdmitirOperacionRequest asks the lifecycle controller whether an operation
// may proceed against a punto de venta. AccionCajaCerrada is the caller's
// explicit decision when the register is closed: "abrir" | "fuera_caja".
type AdmitirOperacionRequest struct {
	PuntoVentaID         string           `json:"punto_venta_id"         validate:"required,uuid"`
	TipoOperacion        string           `json:"tipo_operacion"         validate:"required,oneof=venta consumo"`
	AccionCajaCerrada    *string          `json:"accion_caja_cerrada"    validate:"omitempty,oneof=abrir fuera_caja"`
	MontoInicialApertura *decimal.Decimal `json:"monto_inicial_apertura" validate:"omitempty"`
}

type CierreManualRequest struct {
	CajaID         string          `json:"caja_id"         validate:"required,uuid"`
	MontoDeclarado decimal.Decimal `json:"monto_declarado" validate:"min=0"`
	Observaciones  *string         `json:"observaciones"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// DecisionCaja is returned instead of admitting when the caller must decide.
// It is a structured outcome, not an error: re-invoke with an explicit action.
type DecisionCaja struct {
	Codigo                           string `json:"codigo"`
	AccionSugerida                   string `json:"accion_sugerida"` // abrir | fuera_caja
	PuedeAbrirCaja                   bool   `json:"puede_abrir_caja"`
	PermiteFueraCaja                 bool   `json:"permite_fuera_caja"`
	RequiereMontoInicialPrimeraVenta bool   `json:"requiere_monto_inicial_primera_venta"`
}

type AdmisionResponse struct {
	Admitida    bool          `json:"admitida"`
	FueraCaja   bool          `json:"fuera_caja"`
	CajaID      string        `json:"caja_id"`
	CajaAbierta bool          `json:"caja_abierta"`
	Decision    *DecisionCaja `json:"decision,omitempty"`
}

type CierreResponse struct {
	CierreID           string          `json:"cierre_id"`
	CajaID             string          `json:"caja_id"`
	FechaOperativa     string          `json:"fecha_operativa"`
	MontoInicial       decimal.Decimal `json:"monto_inicial"`
	MontoEsperado      decimal.Decimal `json:"monto_esperado"`
	MontoDeclarado     decimal.Decimal `json:"monto_declarado"`
	Desvio             decimal.Decimal `json:"desvio"`
	TotalEfectivo      decimal.Decimal `json:"total_efectivo"`
	TotalTarjeta       decimal.Decimal `json:"total_tarjeta"`
	TotalTransferencia decimal.Decimal `json:"total_transferencia"`
	TotalGeneral       decimal.Decimal `json:"total_general"`
	CantidadVentas     int             `json:"cantidad_ventas"`
	IncluyeFueraCaja   bool            `json:"incluye_fuera_caja"`
	CantidadFueraCaja  int             `json:"cantidad_fuera_caja"`
	TotalFueraCaja     decimal.Decimal `json:"total_fuera_caja"`
	ReglaConsumos      string          `json:"regla_consumos"`
	ConsumosLiquidados int             `json:"consumos_liquidados"`
	TotalConsumos      decimal.Decimal `json:"total_consumos"`
	Automatico         bool            `json:"automatico"`
}

type EstadoCajaResponse struct {
	CajaID       string          `json:"caja_id"`
	Nombre       string          `json:"nombre"`
	Abierta      bool            `json:"abierta"`
	MontoInicial decimal.Decimal `json:"monto_inicial"`
	AbiertaEn    *string         `json:"abierta_en"`
	Virtual      bool            `json:"virtual"`
}

type BarridoCierresResponse struct {
	PuntosVentaEvaluados int `json:"puntos_venta_evaluados"`
	CierresEjecutados    int `json:"cierres_ejecutados"`
}
