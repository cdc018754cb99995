package service

// In-memory repository fakes shared by the service tests. The Tx variants
// ignore the *gorm.DB handle: runTx passes nil when the repo exposes no DB.

import (
	"context"
	"time"

	"barbercontrol/internal/model"
	"barbercontrol/internal/repository"
	"barbercontrol/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Caja ─────────────────────────────────────────────────────────────────────

type fakeCajaRepo struct {
	cajas map[uuid.UUID]*model.Caja
}

func newFakeCajaRepo() *fakeCajaRepo {
	return &fakeCajaRepo{cajas: make(map[uuid.UUID]*model.Caja)}
}

func (r *fakeCajaRepo) DB() *gorm.DB { return nil }

func (r *fakeCajaRepo) GetOrCreateActiva(_ context.Context, tenantID, puntoVentaID uuid.UUID) (*model.Caja, error) {
	if c := r.activa(tenantID, puntoVentaID); c != nil {
		return c, nil
	}
	nueva := &model.Caja{
		ID:           uuid.New(),
		TenantID:     tenantID,
		PuntoVentaID: puntoVentaID,
		Nombre:       "Caja principal",
		Activa:       true,
		MontoInicial: decimal.Zero,
		Virtual:      true,
		CreatedAt:    time.Now(),
	}
	r.cajas[nueva.ID] = nueva
	return r.copia(nueva), nil
}

func (r *fakeCajaRepo) FindActivaPorPuntoVenta(_ context.Context, tenantID, puntoVentaID uuid.UUID) (*model.Caja, error) {
	if c := r.activa(tenantID, puntoVentaID); c != nil {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCajaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Caja, error) {
	c, ok := r.cajas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.copia(c), nil
}

func (r *fakeCajaRepo) FindByIDForUpdate(ctx context.Context, _ *gorm.DB, id uuid.UUID) (*model.Caja, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeCajaRepo) AbrirTx(_ context.Context, _ *gorm.DB, id uuid.UUID, monto decimal.Decimal, en time.Time) error {
	if c, ok := r.cajas[id]; ok && !c.Abierta {
		c.Abierta = true
		c.MontoInicial = monto
		abierta := en
		c.AbiertaEn = &abierta
	}
	return nil
}

func (r *fakeCajaRepo) CerrarTx(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	if c, ok := r.cajas[id]; ok && c.Abierta {
		c.Abierta = false
		c.MontoInicial = decimal.Zero
		c.AbiertaEn = nil
	}
	return nil
}

func (r *fakeCajaRepo) activa(tenantID, puntoVentaID uuid.UUID) *model.Caja {
	for _, c := range r.cajas {
		if c.TenantID == tenantID && c.PuntoVentaID == puntoVentaID && c.Activa {
			return r.copia(c)
		}
	}
	return nil
}

func (r *fakeCajaRepo) copia(c *model.Caja) *model.Caja {
	cp := *c
	return &cp
}

// ── Cierres ──────────────────────────────────────────────────────────────────

type fakeCierreRepo struct {
	cierres map[uuid.UUID]*model.CierreCaja
	fences  map[string]bool
}

func newFakeCierreRepo() *fakeCierreRepo {
	return &fakeCierreRepo{
		cierres: make(map[uuid.UUID]*model.CierreCaja),
		fences:  make(map[string]bool),
	}
}

func (r *fakeCierreRepo) CreateTx(_ context.Context, _ *gorm.DB, c *model.CierreCaja) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	r.cierres[c.ID] = &cp
	return nil
}

func (r *fakeCierreRepo) AdquirirControlTx(_ context.Context, _ *gorm.DB, cajaID uuid.UUID, fechaOperativa, horaObjetivo string) (bool, error) {
	key := cajaID.String() + "|" + fechaOperativa + "|" + horaObjetivo
	if r.fences[key] {
		return false, nil
	}
	r.fences[key] = true
	return true, nil
}

func (r *fakeCierreRepo) ActualizarResumenConsumosTx(_ context.Context, _ *gorm.DB, id uuid.UUID, cantidad int, total decimal.Decimal) error {
	if c, ok := r.cierres[id]; ok {
		c.ConsumosLiquidados = cantidad
		c.TotalConsumos = total
	}
	return nil
}

func (r *fakeCierreRepo) FindByID(_ context.Context, id uuid.UUID) (*model.CierreCaja, error) {
	c, ok := r.cierres[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCierreRepo) ListPorPuntoVenta(_ context.Context, tenantID, puntoVentaID uuid.UUID, _ int) ([]model.CierreCaja, error) {
	var out []model.CierreCaja
	for _, c := range r.cierres {
		if c.TenantID == tenantID && c.PuntoVentaID == puntoVentaID {
			out = append(out, *c)
		}
	}
	return out, nil
}

// ── Ventas ───────────────────────────────────────────────────────────────────

type fakeVentaRepo struct {
	ventas map[uuid.UUID]*model.Venta
}

func newFakeVentaRepo() *fakeVentaRepo {
	return &fakeVentaRepo{ventas: make(map[uuid.UUID]*model.Venta)}
}

func (r *fakeVentaRepo) DB() *gorm.DB { return nil }

func (r *fakeVentaRepo) Create(_ context.Context, v *model.Venta) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	cp := *v
	r.ventas[v.ID] = &cp
	return nil
}

func (r *fakeVentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	v, ok := r.ventas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *fakeVentaRepo) SumPorMetodoTx(_ context.Context, _ *gorm.DB, puntoVentaID uuid.UUID, desde time.Time) ([]repository.MontoPorMetodo, error) {
	agg := make(map[string]*repository.MontoPorMetodo)
	for _, v := range r.ventas {
		if v.PuntoVentaID != puntoVentaID || v.Estado != "confirmada" || v.FueraCaja ||
			v.CierreCajaID != nil || v.CreatedAt.Before(desde) {
			continue
		}
		row, ok := agg[v.MetodoPago]
		if !ok {
			row = &repository.MontoPorMetodo{MetodoPago: v.MetodoPago}
			agg[v.MetodoPago] = row
		}
		row.Total = row.Total.Add(v.Total)
		row.Cantidad++
	}
	var out []repository.MontoPorMetodo
	for _, row := range agg {
		out = append(out, *row)
	}
	return out, nil
}

func (r *fakeVentaRepo) FueraCajaSinConciliarTx(_ context.Context, _ *gorm.DB, puntoVentaID uuid.UUID) ([]model.Venta, error) {
	var out []model.Venta
	for _, v := range r.ventas {
		if v.PuntoVentaID == puntoVentaID && v.Estado == "confirmada" && v.FueraCaja && v.CierreCajaID == nil {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *fakeVentaRepo) ConciliarTx(_ context.Context, _ *gorm.DB, puntoVentaID, cierreID uuid.UUID, desde time.Time, fueraCajaIDs []uuid.UUID) error {
	for _, v := range r.ventas {
		if v.PuntoVentaID == puntoVentaID && v.Estado == "confirmada" && !v.FueraCaja &&
			v.CierreCajaID == nil && !v.CreatedAt.Before(desde) {
			id := cierreID
			v.CierreCajaID = &id
		}
	}
	for _, vid := range fueraCajaIDs {
		if v, ok := r.ventas[vid]; ok {
			id := cierreID
			v.CierreCajaID = &id
		}
	}
	return nil
}

func (r *fakeVentaRepo) List(_ context.Context, tenantID, puntoVentaID uuid.UUID, _ int) ([]model.Venta, error) {
	var out []model.Venta
	for _, v := range r.ventas {
		if v.TenantID == tenantID && v.PuntoVentaID == puntoVentaID {
			out = append(out, *v)
		}
	}
	return out, nil
}

// ── Consumos ─────────────────────────────────────────────────────────────────

type fakeConsumoRepo struct {
	consumos      map[uuid.UUID]*model.ConsumoPersonal
	liquidaciones []model.LiquidacionConsumo
}

func newFakeConsumoRepo() *fakeConsumoRepo {
	return &fakeConsumoRepo{consumos: make(map[uuid.UUID]*model.ConsumoPersonal)}
}

func (r *fakeConsumoRepo) DB() *gorm.DB { return nil }

func (r *fakeConsumoRepo) Create(_ context.Context, c *model.ConsumoPersonal) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	cp := *c
	r.consumos[c.ID] = &cp
	return nil
}

func (r *fakeConsumoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ConsumoPersonal, error) {
	c, ok := r.consumos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeConsumoRepo) CountPendientes(_ context.Context, tenantID, puntoVentaID uuid.UUID) (int64, error) {
	var n int64
	for _, c := range r.consumos {
		if c.TenantID == tenantID && c.PuntoVentaID == puntoVentaID && c.EstadoLiquidacion == "pendiente" {
			n++
		}
	}
	return n, nil
}

func (r *fakeConsumoRepo) ListPendientesTx(_ context.Context, _ *gorm.DB, tenantID, puntoVentaID uuid.UUID) ([]model.ConsumoPersonal, error) {
	var out []model.ConsumoPersonal
	for _, c := range r.consumos {
		if c.TenantID == tenantID && c.PuntoVentaID == puntoVentaID && c.EstadoLiquidacion == "pendiente" {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeConsumoRepo) ActualizarEstadoTx(_ context.Context, _ *gorm.DB, id uuid.UUID, estado string) error {
	if c, ok := r.consumos[id]; ok {
		c.EstadoLiquidacion = estado
	}
	return nil
}

func (r *fakeConsumoRepo) CreateLiquidacionTx(_ context.Context, _ *gorm.DB, l *model.LiquidacionConsumo) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	r.liquidaciones = append(r.liquidaciones, *l)
	return nil
}

func (r *fakeConsumoRepo) List(_ context.Context, tenantID, puntoVentaID uuid.UUID, estado string, _ int) ([]model.ConsumoPersonal, error) {
	var out []model.ConsumoPersonal
	for _, c := range r.consumos {
		if c.TenantID != tenantID || c.PuntoVentaID != puntoVentaID {
			continue
		}
		if estado != "" && c.EstadoLiquidacion != estado {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

// ── Usuarios ─────────────────────────────────────────────────────────────────

type fakeUsuarioRepo struct {
	usuarios map[uuid.UUID]*model.Usuario
}

func newFakeUsuarioRepo() *fakeUsuarioRepo {
	return &fakeUsuarioRepo{usuarios: make(map[uuid.UUID]*model.Usuario)}
}

func (r *fakeUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	r.usuarios[u.ID] = &cp
	return nil
}

func (r *fakeUsuarioRepo) FindByUsername(_ context.Context, username string) (*model.Usuario, error) {
	for _, u := range r.usuarios {
		if u.Username == username && u.Activo {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	u, ok := r.usuarios[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUsuarioRepo) List(_ context.Context, tenantID uuid.UUID) ([]model.Usuario, error) {
	var out []model.Usuario
	for _, u := range r.usuarios {
		if u.TenantID == tenantID && u.Activo {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	cp := *u
	r.usuarios[u.ID] = &cp
	return nil
}

func (r *fakeUsuarioRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if u, ok := r.usuarios[id]; ok {
		u.Activo = false
	}
	return nil
}

// ── Puntos de venta ──────────────────────────────────────────────────────────

type fakePuntoVentaRepo struct {
	puntos  map[uuid.UUID]*model.PuntoVenta
	tenants []uuid.UUID
}

func newFakePuntoVentaRepo() *fakePuntoVentaRepo {
	return &fakePuntoVentaRepo{puntos: make(map[uuid.UUID]*model.PuntoVenta)}
}

func (r *fakePuntoVentaRepo) Create(_ context.Context, p *model.PuntoVenta) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	r.puntos[p.ID] = &cp
	return nil
}

func (r *fakePuntoVentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.PuntoVenta, error) {
	p, ok := r.puntos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePuntoVentaRepo) ListActivosPorTenant(_ context.Context, tenantID uuid.UUID) ([]model.PuntoVenta, error) {
	var out []model.PuntoVenta
	for _, p := range r.puntos {
		if p.TenantID == tenantID && p.Activo {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePuntoVentaRepo) SetActivo(_ context.Context, id uuid.UUID, activo bool) error {
	if p, ok := r.puntos[id]; ok {
		p.Activo = activo
	}
	return nil
}

func (r *fakePuntoVentaRepo) TenantDePuntoVenta(_ context.Context, puntoVentaID uuid.UUID) (uuid.UUID, error) {
	p, ok := r.puntos[puntoVentaID]
	if !ok {
		return uuid.Nil, gorm.ErrRecordNotFound
	}
	return p.TenantID, nil
}

func (r *fakePuntoVentaRepo) TenantPorDefecto(_ context.Context) (uuid.UUID, error) {
	if len(r.tenants) == 0 {
		return uuid.Nil, gorm.ErrRecordNotFound
	}
	return r.tenants[0], nil
}

func (r *fakePuntoVentaRepo) TenantsActivos(_ context.Context) ([]uuid.UUID, error) {
	return r.tenants, nil
}

// ── Dispatcher ───────────────────────────────────────────────────────────────

// fakeDispatcher captures enqueued jobs instead of pushing them to Redis.
type fakeDispatcher struct {
	auditorias []worker.AuditoriaPayload
	emails     []worker.EmailJobPayload
}

func (d *fakeDispatcher) EnqueueAuditoria(_ context.Context, payload interface{}) error {
	d.auditorias = append(d.auditorias, payload.(worker.AuditoriaPayload))
	return nil
}

func (d *fakeDispatcher) EnqueueEmail(_ context.Context, payload interface{}) error {
	d.emails = append(d.emails, payload.(worker.EmailJobPayload))
	return nil
}

// ── Config ───────────────────────────────────────────────────────────────────

// stubConfig returns a fixed resolved configuration, bypassing the merge.
type stubConfig struct {
	cfg ConfiguracionOperativa
}

func (s *stubConfig) Resolver(context.Context, uuid.UUID, *uuid.UUID) ConfiguracionOperativa {
	return s.cfg
}

func (s *stubConfig) GuardarOverrides(context.Context, uuid.UUID, *uuid.UUID, map[string]interface{}) error {
	return nil
}
