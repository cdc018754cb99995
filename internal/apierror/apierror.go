// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
// Code is a stable machine-readable identifier; Detail is for humans.
type APIError struct {
	Code   string `json:"code,omitempty"`
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}

// Coded is a domain error carrying a stable code alongside the message.
// Handlers match these with errors.As and render code + detail; anything
// else is surfaced as a generic internal error.
type Coded struct {
	Code   string
	Detail string
}

func (e *Coded) Error() string { return e.Detail }

func NewCoded(code, detail string) *Coded {
	return &Coded{Code: code, Detail: detail}
}

// Domain errors surfaced to the HTTP layer. These are user-actionable and
// never retried automatically without a different caller decision.
var (
	ErrFueraCajaDeshabilitado = NewCoded("FUERA_CAJA_DESHABILITADO",
		"Las ventas fuera de caja están deshabilitadas para este punto de venta")
	ErrCajaCerradaBloqueada = NewCoded("CAJA_CERRADA_BLOQUEADA",
		"La caja está cerrada y la operación está bloqueada")
	ErrCierreConsumosPendientes = NewCoded("CIERRE_CONSUMOS_PENDIENTES_BLOQUEADO",
		"No se puede cerrar la caja: existen consumos de personal sin liquidar")
	ErrPuntoVentaCajaAbierta = NewCoded("PUNTO_VENTA_TIENE_CAJA_ABIERTA",
		"No se puede desactivar el punto de venta: tiene una caja abierta")
	ErrCajaYaCerrada = NewCoded("CAJA_YA_CERRADA",
		"La caja ya se encuentra cerrada")
)
