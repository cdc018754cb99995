package worker

// cierre_cron.go
// Optional background goroutine that periodically runs the automatic-closing
// sweep for every active tenant. The due-check normally runs inline on the
// request path; this cron covers operators whose locales have no traffic
// around closing time. Disabled by default (CIERRE_CRON_ENABLED).

import (
	"context"
	"time"

	"barbercontrol/internal/dto"
	"barbercontrol/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// BarridoEjecutor is the slice of the caja service the cron needs.
type BarridoEjecutor interface {
	EjecutarBarridoCierres(ctx context.Context, tenantID uuid.UUID) (*dto.BarridoCierresResponse, error)
}

type CierreCronConfig struct {
	Ejecutor BarridoEjecutor
	Puntos   repository.PuntoVentaRepository
	Interval time.Duration
}

// StartCierreCron launches the sweep goroutine. It respects the context for
// graceful shutdown.
func StartCierreCron(ctx context.Context, cfg CierreCronConfig) {
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Msg("cierre_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("cierre_cron: shutting down")
				return
			case <-ticker.C:
				runSweep(ctx, cfg)
			}
		}
	}()
}

func runSweep(ctx context.Context, cfg CierreCronConfig) {
	tenants, err := cfg.Puntos.TenantsActivos(ctx)
	if err != nil {
		log.Error().Err(err).Msg("cierre_cron: failed to list tenants")
		return
	}

	for _, tenantID := range tenants {
		res, err := cfg.Ejecutor.EjecutarBarridoCierres(ctx, tenantID)
		if err != nil {
			log.Error().Err(err).Str("tenant_id", tenantID.String()).
				Msg("cierre_cron: sweep failed")
			continue
		}
		if res.CierresEjecutados > 0 {
			log.Info().
				Str("tenant_id", tenantID.String()).
				Int("evaluados", res.PuntosVentaEvaluados).
				Int("cerrados", res.CierresEjecutados).
				Msg("cierre_cron: cierres automáticos ejecutados")
		}
	}
}
