package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ConfiguracionNegocio stores one override document: tenant-wide when
// PuntoVentaID is nil, per-punto-de-venta otherwise. Only explicitly present
// keys override; the resolver deep-merges defaults ← tenant ← punto de venta.
type ConfiguracionNegocio struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uni_config_ambito,priority:1"`
	PuntoVentaID *uuid.UUID `gorm:"type:uuid;uniqueIndex:uni_config_ambito,priority:2"`
	Overrides    json.RawMessage `gorm:"type:jsonb;not null;default:'{}'"`
	UpdatedAt    time.Time
}
