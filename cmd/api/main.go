package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/fleetparts-api/internal/application/costing"
	"github.com/jhoicas/fleetparts-api/internal/application/issuance"
	"github.com/jhoicas/fleetparts-api/internal/application/ledger"
	appparts "github.com/jhoicas/fleetparts-api/internal/application/parts"
	"github.com/jhoicas/fleetparts-api/internal/application/reservation"
	"github.com/jhoicas/fleetparts-api/internal/application/workflow"
	"github.com/jhoicas/fleetparts-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/fleetparts-api/internal/interfaces/http"
	"github.com/jhoicas/fleetparts-api/pkg/config"
	"github.com/jhoicas/fleetparts-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Repos atados al pool: solo lecturas. Las mutaciones pasan por el TxRunner.
	partRepo := postgres.NewSparePartRepository(pool)
	priceHistoryRepo := postgres.NewPriceHistoryRepository(pool)
	levelRepo := postgres.NewInventoryLevelRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	requestRepo := postgres.NewPartRequestRepository(pool)
	approvalRepo := postgres.NewApprovalHistoryRepository(pool)
	installedRepo := postgres.NewInstalledPartRepository(pool)
	limitRepo := postgres.NewTechnicianLimitRepository(pool)
	costRepo := postgres.NewServiceCostRepository(pool)
	jobProvider := postgres.NewServiceJobProvider(pool)
	txRunner := postgres.NewTxRunner(pool)

	stockLedgerUC := ledger.NewStockLedgerUseCase(txRunner, partRepo, levelRepo, movementRepo)
	reservationUC := reservation.NewManagerUseCase(txRunner, cfg.Engine.ReservationTTL)
	allocatorUC := issuance.NewAllocatorUseCase()
	costingUC := costing.NewEngineUseCase(installedRepo, costRepo, jobProvider, jobProvider, costing.Config{
		TaxRate:        cfg.Engine.TaxRate,
		OverheadPct:    cfg.Engine.OverheadPct,
		LaborMarkupPct: cfg.Engine.LaborMarkupPct,
	})
	workflowUC := workflow.NewRequestWorkflowUseCase(
		txRunner, partRepo, limitRepo, requestRepo, approvalRepo, installedRepo,
		jobProvider, reservationUC, stockLedgerUC, allocatorUC, costingUC,
		workflow.Config{
			DefaultAutoApprove: cfg.Engine.AutoApproveLimit,
			AutoIssue:          cfg.Engine.AutoIssue,
		},
	)
	catalogUC := appparts.NewCatalogUseCase(partRepo, priceHistoryRepo)

	// Barrido periódico de reservas vencidas; la expiración perezosa en los
	// chequeos de disponibilidad cubre el intervalo entre corridas.
	sweepCtx, stopSweep := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(cfg.Engine.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				expired, err := reservationUC.ExpireStale(sweepCtx, cfg.Engine.SweepBatchSize)
				if err != nil {
					log.Error().Err(err).Msg("barrido de reservas vencidas")
					continue
				}
				if expired > 0 {
					log.Info().Int("expired", expired).Msg("reservas vencidas liberadas")
				}
			}
		}
	}()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "FleetParts API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		StockLedger: stockLedgerUC,
		Workflow:    workflowUC,
		Costing:     costingUC,
		Catalog:     catalogUC,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stopSweep()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
