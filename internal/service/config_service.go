package service

import (
	"context"
	"encoding/json"
	"errors"

	"barbercontrol/internal/model"
	"barbercontrol/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Recognized enum values for the caja / consumos sections.
const (
	AperturaModoManual         = "manual"
	AperturaModoPrimeraVenta   = "primera_venta"
	AperturaModoHoraProgramada = "hora_programada"

	AccionCerradaPreguntar = "preguntar"
	AccionCerradaFueraCaja = "fuera_caja"
	AccionCerradaBloquear  = "bloquear"

	ReglaPendienteSiguienteCaja = "pendiente_siguiente_caja"
	ReglaCobroAutomaticoVenta   = "cobro_automatico_venta"
	ReglaCobroAutomaticoCosto   = "cobro_automatico_costo"
	ReglaPerdonado              = "perdonado"
	ReglaNoPermitirCierre       = "no_permitir_cierre"
)

// ConfiguracionOperativa is the fully resolved operating configuration for a
// (tenant, punto de venta) pair. Resolver always returns every key populated.
type ConfiguracionOperativa struct {
	Regional RegionalConfig `json:"regional"`
	Pin      PinConfig      `json:"pin"`
	Caja     CajaConfig     `json:"caja"`
	Consumos ConsumosConfig `json:"consumos"`
}

type RegionalConfig struct {
	Timezone string `json:"timezone"`
}

type PinConfig struct {
	IntentosMaximos int `json:"intentos_maximos"`
	BloqueoMinutos  int `json:"bloqueo_minutos"`
}

type CajaConfig struct {
	CierreAutomaticoHabilitado bool     `json:"cierre_automatico_habilitado"`
	CierreAutomaticoHora       *string  `json:"cierre_automatico_hora"`
	AperturaModo               string   `json:"apertura_modo"`
	AperturaHora               *string  `json:"apertura_hora"`
	AperturaRolesPermitidos    []string `json:"apertura_roles_permitidos"`
	AccionCajaCerrada          string   `json:"accion_caja_cerrada"`
	PermitirVentasFueraCaja    bool     `json:"permitir_ventas_fuera_caja"`
	ManejoFueraCajaAlCerrar    string   `json:"manejo_fuera_caja_al_cerrar"`
}

type ConsumosConfig struct {
	AlCierreSinLiquidar string `json:"al_cierre_sin_liquidar"`
}

// DefaultConfiguracion returns the compiled-in defaults. Every recognized key
// is present so downstream code never checks for absence.
func DefaultConfiguracion() ConfiguracionOperativa {
	return ConfiguracionOperativa{
		Regional: RegionalConfig{Timezone: "America/Argentina/Buenos_Aires"},
		Pin:      PinConfig{IntentosMaximos: 5, BloqueoMinutos: 15},
		Caja: CajaConfig{
			CierreAutomaticoHabilitado: false,
			CierreAutomaticoHora:       nil,
			AperturaModo:               AperturaModoManual,
			AperturaHora:               nil,
			AperturaRolesPermitidos:    []string{},
			AccionCajaCerrada:          AccionCerradaPreguntar,
			PermitirVentasFueraCaja:    true,
			ManejoFueraCajaAlCerrar:    "incluir_en_cierre",
		},
		Consumos: ConsumosConfig{AlCierreSinLiquidar: ReglaPendienteSiguienteCaja},
	}
}

type ConfigService interface {
	// Resolver merges compiled-in defaults ← tenant override ← punto de venta
	// override. It never fails: any read problem falls back to the defaults —
	// configuration resolution must never be the reason a sale fails.
	Resolver(ctx context.Context, tenantID uuid.UUID, puntoVentaID *uuid.UUID) ConfiguracionOperativa
	GuardarOverrides(ctx context.Context, tenantID uuid.UUID, puntoVentaID *uuid.UUID, overrides map[string]interface{}) error
}

type configService struct {
	repo repository.ConfiguracionRepository
}

func NewConfigService(repo repository.ConfiguracionRepository) ConfigService {
	return &configService{repo: repo}
}

func (s *configService) Resolver(ctx context.Context, tenantID uuid.UUID, puntoVentaID *uuid.UUID) ConfiguracionOperativa {
	merged, err := structToMap(DefaultConfiguracion())
	if err != nil {
		return DefaultConfiguracion()
	}

	scopes := []*uuid.UUID{nil}
	if puntoVentaID != nil {
		scopes = append(scopes, puntoVentaID)
	}
	for _, scope := range scopes {
		row, err := s.repo.FindOverrides(ctx, tenantID, scope)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			log.Warn().Err(err).Str("tenant_id", tenantID.String()).
				Msg("config: fallo leyendo overrides, usando defaults")
			return DefaultConfiguracion()
		}
		var override map[string]interface{}
		if err := json.Unmarshal(row.Overrides, &override); err != nil {
			log.Warn().Err(err).Str("tenant_id", tenantID.String()).
				Msg("config: overrides malformados, usando defaults")
			return DefaultConfiguracion()
		}
		merged = deepMerge(merged, override)
	}

	out, err := mapToStruct(merged)
	if err != nil {
		return DefaultConfiguracion()
	}
	return out
}

func (s *configService) GuardarOverrides(ctx context.Context, tenantID uuid.UUID, puntoVentaID *uuid.UUID, overrides map[string]interface{}) error {
	raw, err := json.Marshal(overrides)
	if err != nil {
		return err
	}
	return s.repo.UpsertOverrides(ctx, &model.ConfiguracionNegocio{
		TenantID:     tenantID,
		PuntoVentaID: puntoVentaID,
		Overrides:    raw,
	})
}

// deepMerge applies override onto base. Maps merge recursively; any other
// value (scalars and arrays alike) replaces the base value outright. A JSON
// null never overrides — it is treated as "not set".
func deepMerge(base, override map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(base))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		if v == nil {
			continue
		}
		if ov, ok := v.(map[string]interface{}); ok {
			if bv, ok := out[k].(map[string]interface{}); ok {
				out[k] = deepMerge(bv, ov)
				continue
			}
		}
		out[k] = v
	}
	return out
}

// structToMap / mapToStruct round-trip through JSON so that the merge works
// on plain maps while the resolved result is strongly typed. Unrecognized
// override keys are dropped by the typed decode.
func structToMap(cfg ConfiguracionOperativa) (map[string]interface{}, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func mapToStruct(m map[string]interface{}) (ConfiguracionOperativa, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return ConfiguracionOperativa{}, err
	}
	var cfg ConfiguracionOperativa
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return ConfiguracionOperativa{}, err
	}
	return cfg, nil
}
