package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fleetparts-api/internal/application/costing"
	"github.com/jhoicas/fleetparts-api/internal/application/issuance"
	"github.com/jhoicas/fleetparts-api/internal/application/ledger"
	appparts "github.com/jhoicas/fleetparts-api/internal/application/parts"
	"github.com/jhoicas/fleetparts-api/internal/application/reservation"
	"github.com/jhoicas/fleetparts-api/internal/application/workflow"
	"github.com/jhoicas/fleetparts-api/internal/domain/entity"
	apphttp "github.com/jhoicas/fleetparts-api/internal/interfaces/http"
	"github.com/jhoicas/fleetparts-api/internal/testutil"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	apiPartID  = "part-filter"
	apiStoreID = "store-central"
	apiJobID   = "job-1"
)

// buildAPI arma la API completa sobre repos en memoria, con un repuesto activo
// y una orden de servicio sembrados.
func buildAPI(t *testing.T) (*fiber.App, *testutil.MemStore) {
	t.Helper()
	store := testutil.NewMemStore()
	store.Parts[apiPartID] = &entity.SparePart{
		ID:             apiPartID,
		Name:           "Filtro de aceite",
		CategoryID:     "cat-filters",
		CostPrice:      decimal.NewFromInt(100),
		SellingPrice:   decimal.NewFromInt(150),
		WarrantyMonths: 6,
		Lifecycle:      entity.PartLifecycleActive,
	}
	store.Jobs[apiJobID] = &entity.ServiceJob{ID: apiJobID, StoreID: apiStoreID, Status: entity.JobStatusInProgress}

	tx := testutil.NewTxRunner(store)
	partRepo := testutil.NewSparePartRepo(store)
	requestRepo := testutil.NewPartRequestRepo(store)
	jobs := testutil.NewServiceJobProvider(store)

	ledgerUC := ledger.NewStockLedgerUseCase(tx, partRepo,
		testutil.NewInventoryLevelRepo(store), testutil.NewStockMovementRepo(store))
	reservationUC := reservation.NewManagerUseCase(tx, 24*time.Hour)
	costingUC := costing.NewEngineUseCase(testutil.NewInstalledPartRepo(store), testutil.NewServiceCostRepo(store),
		jobs, jobs, costing.Config{
			TaxRate:        decimal.NewFromInt(18),
			OverheadPct:    decimal.NewFromInt(10),
			LaborMarkupPct: decimal.NewFromInt(25),
		})
	workflowUC := workflow.NewRequestWorkflowUseCase(
		tx, partRepo, testutil.NewTechnicianLimitRepo(store), requestRepo,
		testutil.NewApprovalHistoryRepo(store), testutil.NewInstalledPartRepo(store),
		jobs, reservationUC, ledgerUC, issuance.NewAllocatorUseCase(), costingUC,
		workflow.Config{DefaultAutoApprove: decimal.NewFromInt(500)},
	)
	catalogUC := appparts.NewCatalogUseCase(partRepo, testutil.NewPriceHistoryRepo(store))

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		StockLedger: ledgerUC,
		Workflow:    workflowUC,
		Costing:     costingUC,
		Catalog:     catalogUC,
		JWTSecret:   testJWTSecret,
	})
	return app, store
}

// call lanza una petición autenticada con el rol dado y decodifica el JSON.
func call(t *testing.T, app *fiber.App, method, path, role string, body any) (int, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, role))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	return resp.StatusCode, payload
}

func initStock(t *testing.T, app *fiber.App, initial int) {
	t.Helper()
	status, _ := call(t, app, http.MethodPost, "/api/inventory/levels", "storekeeper", map[string]any{
		"spare_part_id": apiPartID,
		"store_id":      apiStoreID,
		"initial_stock": initial,
		"reorder_level": 2,
	})
	require.Equal(t, http.StatusCreated, status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Inventario
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_InicializarYConsultarNivel(t *testing.T) {
	app, _ := buildAPI(t)
	initStock(t, app, 10)

	status, level := call(t, app, http.MethodGet,
		"/api/inventory/levels/"+apiPartID+"/"+apiStoreID, "technician", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 10, level["current_stock"])
	assert.EqualValues(t, 10, level["available_stock"])
	assert.Equal(t, false, level["below_reorder"])
}

func TestAPI_NivelDuplicadoEs409(t *testing.T) {
	app, _ := buildAPI(t)
	initStock(t, app, 10)

	status, payload := call(t, app, http.MethodPost, "/api/inventory/levels", "storekeeper", map[string]any{
		"spare_part_id": apiPartID,
		"store_id":      apiStoreID,
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE_INVENTORY", payload["code"])
}

// Una salida mayor al disponible devuelve 400 con la cantidad disponible, para
// que el cliente pueda reducir el pedido en vez de reintentar a ciegas.
func TestAPI_SalidaInsuficienteInformaDisponible(t *testing.T) {
	app, _ := buildAPI(t)
	initStock(t, app, 10)

	status, payload := call(t, app, http.MethodPost, "/api/inventory/movements", "storekeeper", map[string]any{
		"spare_part_id": apiPartID,
		"store_id":      apiStoreID,
		"type":          entity.MovementTypeOUT,
		"quantity":      15,
	})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", payload["code"])
	assert.EqualValues(t, 10, payload["available"])
}

func TestAPI_ConteoFisicoAjustaVarianzas(t *testing.T) {
	app, _ := buildAPI(t)
	initStock(t, app, 10)

	status, payload := call(t, app, http.MethodPost, "/api/inventory/stock-count", "storekeeper", map[string]any{
		"store_id": apiStoreID,
		"items": []map[string]any{
			{"spare_part_id": apiPartID, "physical_count": 8},
		},
	})
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, -2, payload["total_variance"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Workflow de solicitudes
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_FlujoCompletoDeSolicitud(t *testing.T) {
	app, store := buildAPI(t)
	initStock(t, app, 10)

	// Crear: ₹600 estimados superan el umbral, queda pendiente.
	status, request := call(t, app, http.MethodPost, "/api/requests", "technician", map[string]any{
		"service_request_id": apiJobID,
		"spare_part_id":      apiPartID,
		"quantity":           4,
		"justification":      "cambio programado",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, entity.RequestPending, request["status"])
	requestID := request["id"].(string)

	// Un técnico no puede aprobar.
	status, _ = call(t, app, http.MethodPost, "/api/requests/"+requestID+"/approve", "technician", nil)
	assert.Equal(t, http.StatusForbidden, status)

	// El supervisor sí.
	status, approved := call(t, app, http.MethodPost, "/api/requests/"+requestID+"/approve", "supervisor",
		map[string]any{"comments": "ok"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, entity.RequestApproved, approved["status"])

	// Emitir: 4 unidades al costo del lote inicial.
	status, issued := call(t, app, http.MethodPost, "/api/requests/"+requestID+"/issue", "storekeeper", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 4, issued["issued_quantity"])

	// Reaprobar una emitida es una transición ilegal.
	status, payload := call(t, app, http.MethodPost, "/api/requests/"+requestID+"/approve", "supervisor", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INVALID_TRANSITION", payload["code"])

	// Instalar y consultar el desglose de la orden.
	status, _ = call(t, app, http.MethodPost, "/api/requests/install", "technician", map[string]any{
		"service_request_id": apiJobID,
		"spare_part_id":      apiPartID,
		"quantity":           4,
	})
	require.Equal(t, http.StatusCreated, status)

	status, breakdown := call(t, app, http.MethodGet, "/api/services/"+apiJobID+"/costs", "supervisor", nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, breakdown["total_billed"])

	// Historial de aprobaciones: chequeo inicial + decisión del supervisor.
	status, history := call(t, app, http.MethodGet, "/api/requests/"+requestID+"/approvals", "supervisor", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, history["approvals"], 2)

	// El total facturable se propagó a la orden de servicio.
	_, ok := store.JobTotals[apiJobID]
	assert.True(t, ok)
}

func TestAPI_SolicitudInexistenteEs404(t *testing.T) {
	app, _ := buildAPI(t)
	status, payload := call(t, app, http.MethodGet, "/api/requests/no-existe", "technician", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", payload["code"])
}

func TestAPI_SinTokenTodoEs401(t *testing.T) {
	app, _ := buildAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/api/requests/abc", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Catálogo
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_CambioDePrecioConHistorial(t *testing.T) {
	app, _ := buildAPI(t)

	status, part := call(t, app, http.MethodPatch, "/api/parts/"+apiPartID+"/price", "storekeeper", map[string]any{
		"selling_price": "180",
		"reason":        "ajuste de margen",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "180", part["selling_price"])

	status, history := call(t, app, http.MethodGet, "/api/parts/"+apiPartID+"/price-history", "storekeeper", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, history["history"], 1)
}
