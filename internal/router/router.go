package router

import (
	"time"

	"barbercontrol/internal/config"
	"barbercontrol/internal/handler"
	"barbercontrol/internal/infra"
	"barbercontrol/internal/middleware"
	"barbercontrol/internal/repository"
	"barbercontrol/internal/service"
	"barbercontrol/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps groups the composition results the server entrypoint also needs
// (worker handlers, sweep executor) so everything is wired exactly once.
type Deps struct {
	Engine         *gin.Engine
	WorkerHandlers *worker.WorkerHandlers
	CajaService    service.CajaService
	Puntos         repository.PuntoVentaRepository
}

// New wires all dependencies and returns the configured engine plus the
// pieces cmd/server hands to the worker pool and the optional sweep cron.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, mailerCB *infra.CircuitBreaker) *Deps {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	mailer := infra.NewMailer(cfg)
	pdfs := infra.NewPDFGenerator(cfg.PDFStoragePath)

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	puntoVentaRepo := repository.NewPuntoVentaRepository(db)
	cajaRepo := repository.NewCajaRepository(db)
	cierreRepo := repository.NewCierreRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	consumoRepo := repository.NewConsumoRepository(db)
	configRepo := repository.NewConfiguracionRepository(db)
	auditoriaRepo := repository.NewAuditoriaRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	configSvc := service.NewConfigService(configRepo)
	cajaSvc := service.NewCajaService(cajaRepo, cierreRepo, ventaRepo, consumoRepo,
		usuarioRepo, puntoVentaRepo, configSvc, dispatcher, pdfs, cfg.CierreEmailTo)
	ventaSvc := service.NewVentaService(ventaRepo, cajaSvc)
	consumoSvc := service.NewConsumoService(consumoRepo, cajaSvc)
	puntoVentaSvc := service.NewPuntoVentaService(puntoVentaRepo, cajaRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	cajaH := handler.NewCajaHandler(cajaSvc)
	ventasH := handler.NewVentaHandler(ventaSvc)
	consumosH := handler.NewConsumoHandler(consumoSvc)
	puntosH := handler.NewPuntoVentaHandler(puntoVentaSvc)
	configH := handler.NewConfiguracionHandler(configSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, mailerCB))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: cajero, supervisor, administrador — declared per-endpoint
		operadores := middleware.RequireRole("cajero", "supervisor", "administrador")
		gestores := middleware.RequireRole("supervisor", "administrador")
		admin := middleware.RequireRole("administrador")

		v1.POST("/ventas", operadores, ventasH.Registrar)
		v1.GET("/ventas", operadores, ventasH.Listar)

		caja := v1.Group("/caja")
		{
			caja.POST("/admitir", operadores, cajaH.Admitir)
			caja.POST("/cerrar", operadores, cajaH.Cerrar)
			caja.POST("/barrido-cierres", gestores, cajaH.Barrido)
		}

		v1.POST("/consumos", operadores, consumosH.Registrar)
		v1.GET("/consumos", gestores, consumosH.Listar)
		v1.POST("/consumos/:id/liquidar", gestores, consumosH.Liquidar)

		puntos := v1.Group("/puntos-venta")
		{
			puntos.GET("", operadores, puntosH.Listar)
			puntos.POST("", admin, puntosH.Crear)
			puntos.DELETE("/:id", admin, puntosH.Desactivar)
			puntos.GET("/:id/caja", operadores, cajaH.Estado)
			puntos.GET("/:id/cierres", gestores, cajaH.Cierres)
		}

		cierres := v1.Group("/cierres")
		{
			cierres.GET("/:id", gestores, cajaH.Detalle)
			cierres.GET("/:id/pdf", gestores, cajaH.ResumenPDF)
		}

		v1.GET("/configuracion", gestores, configH.Resolver)
		v1.PUT("/configuracion", admin, configH.Guardar)

		usuarios := v1.Group("/usuarios", admin)
		{
			usuarios.POST("", authH.CrearUsuario)
			usuarios.GET("", authH.ListarUsuarios)
			usuarios.PUT("/:id", authH.ActualizarUsuario)
			usuarios.DELETE("/:id", authH.DesactivarUsuario)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return &Deps{
		Engine: r,
		WorkerHandlers: &worker.WorkerHandlers{
			Auditoria: worker.NewAuditoriaWorker(auditoriaRepo),
			Email:     worker.NewEmailWorker(mailer, mailerCB),
		},
		CajaService: cajaSvc,
		Puntos:      puntoVentaRepo,
	}
}
