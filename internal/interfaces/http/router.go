package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/fleetparts-api/internal/application/costing"
	"github.com/jhoicas/fleetparts-api/internal/application/ledger"
	"github.com/jhoicas/fleetparts-api/internal/application/parts"
	"github.com/jhoicas/fleetparts-api/internal/application/workflow"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	StockLedger *ledger.StockLedgerUseCase
	Workflow    *workflow.RequestWorkflowUseCase
	Costing     *costing.EngineUseCase
	Catalog     *parts.CatalogUseCase
	JWTSecret   string
}

// Router registra las rutas de la API. Todo el motor es protegido (Bearer).
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Inventario: libro de stock (protegido)
	inventory := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.StockLedger)
	inventory.Post("/levels", inventoryHandler.InitializeStock)
	inventory.Get("/levels/:spare_part_id/:store_id", inventoryHandler.GetLevel)
	inventory.Get("/levels/:spare_part_id/:store_id/movements", inventoryHandler.ListMovements)
	inventory.Post("/movements", inventoryHandler.RegisterMovement)
	inventory.Get("/low-stock", inventoryHandler.ListLowStock)
	inventory.Post("/stock-count", inventoryHandler.StockCount)

	// Solicitudes: workflow de aprobación y emisión (protegido)
	requests := protected.Group("/requests")
	requestHandler := NewRequestHandler(deps.Workflow)
	requests.Post("/", requestHandler.Create)
	requests.Get("/", requestHandler.List)
	requests.Post("/install", requestHandler.Install)
	requests.Post("/returns", requestHandler.Return)
	requests.Get("/:id", requestHandler.GetByID)
	requests.Post("/:id/approve", RequireRole("supervisor", "storekeeper"), requestHandler.Approve)
	requests.Post("/:id/reject", RequireRole("supervisor", "storekeeper"), requestHandler.Reject)
	requests.Post("/:id/cancel", requestHandler.Cancel)
	requests.Post("/:id/issue", requestHandler.Issue)
	requests.Get("/:id/approvals", requestHandler.ListApprovals)

	// Órdenes de servicio: costos e instalaciones (protegido)
	services := protected.Group("/services")
	costingHandler := NewCostingHandler(deps.Costing)
	services.Get("/:service_request_id/costs", costingHandler.GetBreakdown)
	services.Post("/:service_request_id/costs/recalculate", costingHandler.Recalculate)
	services.Get("/:service_request_id/installed-parts", requestHandler.ListInstalled)

	// Catálogo de repuestos (protegido)
	partsGroup := protected.Group("/parts")
	partsHandler := NewPartsHandler(deps.Catalog)
	partsGroup.Get("/:id", partsHandler.GetByID)
	partsGroup.Patch("/:id/price", partsHandler.ChangePrice)
	partsGroup.Post("/:id/discontinue", partsHandler.Discontinue)
	partsGroup.Get("/:id/price-history", partsHandler.ListPriceHistory)
}
