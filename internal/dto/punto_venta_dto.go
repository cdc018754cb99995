package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearPuntoVentaRequest struct {
	Nombre    string  `json:"nombre"    validate:"required,min=2,max=100"`
	Direccion *string `json:"direccion"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PuntoVentaResponse struct {
	ID        string  `json:"id"`
	Nombre    string  `json:"nombre"`
	Direccion *string `json:"direccion"`
	Activo    bool    `json:"activo"`
}
