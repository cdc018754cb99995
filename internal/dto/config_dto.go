package dto

// GuardarConfiguracionRequest upserts the override document for a scope:
// tenant-wide when punto_venta_id is empty, per-punto-de-venta otherwise.
// Only the keys present in Overrides override the resolved configuration.
type GuardarConfiguracionRequest struct {
	PuntoVentaID *string                `json:"punto_venta_id" validate:"omitempty,uuid"`
	Overrides    map[string]interface{} `json:"overrides"      validate:"required"`
}
