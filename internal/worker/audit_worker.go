package worker

// audit_worker.go
// Persists audit events dequeued from QueueAuditoria. Writes are best-effort:
// a failed write lands in the DLQ and never aborts the operation that emitted
// the event.

import (
	"context"
	"encoding/json"
	"fmt"

	"barbercontrol/internal/model"
	"barbercontrol/internal/repository"

	"github.com/google/uuid"
)

// AuditoriaPayload is the job envelope sent to QueueAuditoria.
type AuditoriaPayload struct {
	TenantID     string                 `json:"tenant_id"`
	PuntoVentaID *string                `json:"punto_venta_id,omitempty"`
	UsuarioID    *string                `json:"usuario_id,omitempty"`
	Accion       string                 `json:"accion"`
	EntidadTipo  *string                `json:"entidad_tipo,omitempty"`
	EntidadID    *string                `json:"entidad_id,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	RequestID    *string                `json:"request_id,omitempty"`
}

type AuditoriaWorker struct {
	repo repository.AuditoriaRepository
}

func NewAuditoriaWorker(repo repository.AuditoriaRepository) *AuditoriaWorker {
	return &AuditoriaWorker{repo: repo}
}

func (w *AuditoriaWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload AuditoriaPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("audit_worker: invalid payload: %w", err)
	}

	tenantID, err := uuid.Parse(payload.TenantID)
	if err != nil {
		return fmt.Errorf("audit_worker: tenant_id inválido: %w", err)
	}

	evento := &model.EventoAuditoria{
		TenantID:     tenantID,
		PuntoVentaID: parseOptionalUUID(payload.PuntoVentaID),
		UsuarioID:    parseOptionalUUID(payload.UsuarioID),
		Accion:       payload.Accion,
		EntidadTipo:  payload.EntidadTipo,
		EntidadID:    parseOptionalUUID(payload.EntidadID),
		RequestID:    payload.RequestID,
	}
	if payload.Metadata != nil {
		if meta, err := json.Marshal(payload.Metadata); err == nil {
			evento.Metadata = meta
		}
	}

	return w.repo.Create(ctx, evento)
}

func parseOptionalUUID(s *string) *uuid.UUID {
	if s == nil {
		return nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil
	}
	return &id
}
