package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventoAuditoria is an append-only audit trail entry. Rows are written
// best-effort by the audit worker; a failed write never aborts the primary
// operation that emitted the event.
type EventoAuditoria struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	PuntoVentaID *uuid.UUID `gorm:"type:uuid;index"`
	UsuarioID    *uuid.UUID `gorm:"type:uuid"`
	Accion       string     `gorm:"type:varchar(60);not null;index"`
	EntidadTipo  *string    `gorm:"type:varchar(40)"`
	EntidadID    *uuid.UUID `gorm:"type:uuid"`
	Metadata     json.RawMessage `gorm:"type:jsonb"`
	RequestID    *string         `gorm:"type:varchar(64)"`
	CreatedAt    time.Time       `gorm:"index"`
}
