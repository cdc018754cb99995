package infra

import (
	"fmt"

	"barbercontrol/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that
// GORM cannot express (partial unique indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates / updates the schema. Also used by integration tests
// against a throwaway database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Tenant{},
		&model.PuntoVenta{},
		&model.Usuario{},
		&model.Caja{},
		&model.CierreCaja{},
		&model.ControlCierreAutomatico{},
		&model.Venta{},
		&model.ConsumoPersonal{},
		&model.LiquidacionConsumo{},
		&model.ConfiguracionNegocio{},
		&model.EventoAuditoria{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
// Each statement uses IF NOT EXISTS semantics so re-running is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// At most one active caja per punto de venta. This partial unique
		// index is what collapses the concurrent auto-provision race in
		// CajaRepository.GetOrCreateActiva to a single winner.
		{"partial unique index cajas activa", `
CREATE UNIQUE INDEX IF NOT EXISTS uni_caja_activa_por_punto_venta
    ON cajas (punto_venta_id)
    WHERE activa`},
		// Tenant-wide configuration scope: punto_venta_id IS NULL rows also
		// need uniqueness per tenant, which the composite unique index with a
		// nullable column does not give us on its own.
		{"partial unique index configuracion tenant scope", `
CREATE UNIQUE INDEX IF NOT EXISTS uni_config_tenant_global
    ON configuracion_negocios (tenant_id)
    WHERE punto_venta_id IS NULL`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
