package worker

// email_worker.go
// Processes email jobs from QueueEmail: sends the closing-summary report
// (optionally with the PDF attached) to the configured recipient.

import (
	"context"
	"encoding/json"
	"fmt"

	"barbercontrol/internal/infra"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	PDFPath string `json:"pdf_path"`
}

type EmailWorker struct {
	mailer *infra.Mailer
	cb     *infra.CircuitBreaker
}

// NewEmailWorker creates an EmailWorker. Sends go through the circuit
// breaker so a downed SMTP server is not hammered on every closing.
func NewEmailWorker(mailer *infra.Mailer, cb *infra.CircuitBreaker) *EmailWorker {
	return &EmailWorker{mailer: mailer, cb: cb}
}

func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("email_worker: invalid payload: %w", err)
	}
	if payload.ToEmail == "" {
		return nil // no recipient configured — nothing to send
	}

	return w.cb.Execute(func() error {
		return w.mailer.SendResumen(payload.ToEmail, payload.Subject, payload.Body, payload.PDFPath)
	})
}
