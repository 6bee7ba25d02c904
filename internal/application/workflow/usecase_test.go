package workflow_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fleetparts-api/internal/application/costing"
	"github.com/jhoicas/fleetparts-api/internal/application/issuance"
	"github.com/jhoicas/fleetparts-api/internal/application/ledger"
	"github.com/jhoicas/fleetparts-api/internal/application/reservation"
	"github.com/jhoicas/fleetparts-api/internal/application/workflow"
	"github.com/jhoicas/fleetparts-api/internal/domain"
	"github.com/jhoicas/fleetparts-api/internal/domain/entity"
	"github.com/jhoicas/fleetparts-api/internal/domain/repository"
	"github.com/jhoicas/fleetparts-api/internal/testutil"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	partID   = "part-filter"
	storeID  = "store-central"
	jobID    = "job-1"
	techID   = "tech-1"
	superID  = "supervisor-1"
	category = "cat-filters"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

type fixture struct {
	store    *testutil.MemStore
	workflow *workflow.RequestWorkflowUseCase
	ledger   *ledger.StockLedgerUseCase
	costs    *costing.EngineUseCase
}

// newFixture arma el workflow completo sobre el store en memoria: repuesto
// activo, orden de servicio en curso y nivel con el stock inicial dado.
func newFixture(t *testing.T, initialStock int, cfg workflow.Config) *fixture {
	t.Helper()
	store := testutil.NewMemStore()
	store.Parts[partID] = &entity.SparePart{
		ID:             partID,
		Name:           "Filtro de aceite",
		CategoryID:     category,
		CostPrice:      dec("100"),
		SellingPrice:   dec("150"),
		WarrantyMonths: 6,
		Lifecycle:      entity.PartLifecycleActive,
	}
	store.Jobs[jobID] = &entity.ServiceJob{ID: jobID, StoreID: storeID, Status: entity.JobStatusInProgress}

	tx := testutil.NewTxRunner(store)
	partRepo := testutil.NewSparePartRepo(store)
	requestRepo := testutil.NewPartRequestRepo(store)
	jobs := testutil.NewServiceJobProvider(store)

	ledgerUC := ledger.NewStockLedgerUseCase(tx, partRepo,
		testutil.NewInventoryLevelRepo(store), testutil.NewStockMovementRepo(store))
	reservationUC := reservation.NewManagerUseCase(tx, 24*time.Hour)
	allocatorUC := issuance.NewAllocatorUseCase()
	costingUC := costing.NewEngineUseCase(testutil.NewInstalledPartRepo(store), testutil.NewServiceCostRepo(store),
		jobs, jobs, costing.Config{TaxRate: dec("18"), OverheadPct: dec("10"), LaborMarkupPct: dec("25")})
	workflowUC := workflow.NewRequestWorkflowUseCase(
		tx, partRepo, testutil.NewTechnicianLimitRepo(store), requestRepo,
		testutil.NewApprovalHistoryRepo(store), testutil.NewInstalledPartRepo(store),
		jobs, reservationUC, ledgerUC, allocatorUC, costingUC, cfg,
	)

	if initialStock >= 0 {
		_, err := ledgerUC.InitializeStock(context.Background(), ledger.InitializeStockInput{
			SparePartID:  partID,
			StoreID:      storeID,
			InitialStock: initialStock,
			CreatedBy:    "storekeeper-1",
		})
		require.NoError(t, err)
	}
	return &fixture{store: store, workflow: workflowUC, ledger: ledgerUC, costs: costingUC}
}

func defaultConfig() workflow.Config {
	return workflow.Config{DefaultAutoApprove: dec("500")}
}

func (f *fixture) createRequest(t *testing.T, qty int) *entity.PartRequest {
	t.Helper()
	request, err := f.workflow.CreateRequest(context.Background(), workflow.CreateRequestInput{
		ServiceRequestID: jobID,
		SparePartID:      partID,
		TechnicianID:     techID,
		Quantity:         qty,
		Justification:    "cambio programado",
	})
	require.NoError(t, err)
	return request
}

func (f *fixture) level(t *testing.T) *entity.InventoryLevel {
	t.Helper()
	level, err := f.ledger.GetLevel(partID, storeID)
	require.NoError(t, err)
	return level
}

// ──────────────────────────────────────────────────────────────────────────────
// CreateRequest: auto-aprobación y colas
// ──────────────────────────────────────────────────────────────────────────────

// ₹300 estimados con umbral de ₹500 y stock suficiente: se auto-aprueba y reserva.
func TestCreateRequest_AutoApruebaDentroDelUmbral(t *testing.T) {
	f := newFixture(t, 10, defaultConfig())
	request := f.createRequest(t, 2)

	assert.Equal(t, entity.RequestApproved, request.Status)
	assert.Equal(t, 1, request.ApprovalLevel)
	assert.True(t, request.EstimatedCost.Equal(dec("300")))

	level := f.level(t)
	assert.Equal(t, 8, level.AvailableStock)
	assert.Equal(t, 2, level.ReservedStock)

	require.Len(t, f.store.Approvals, 1)
	h := f.store.Approvals[0]
	assert.Equal(t, entity.SystemApprover, h.Approver)
	assert.Equal(t, entity.DecisionApproved, h.Decision)
	assert.Equal(t, 10, h.AvailableAtCheck)

	res, err := testutil.NewStockReservationRepo(f.store).GetActiveByRequest(request.ID)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 2, res.ReservedQuantity)
}

// ₹600 estimados superan el umbral: queda Pending con historial del chequeo.
func TestCreateRequest_SobreElUmbralQuedaPendiente(t *testing.T) {
	f := newFixture(t, 10, defaultConfig())
	request := f.createRequest(t, 4)

	assert.Equal(t, entity.RequestPending, request.Status)
	level := f.level(t)
	assert.Equal(t, 10, level.AvailableStock, "pendiente no reserva")

	require.Len(t, f.store.Approvals, 1)
	assert.Equal(t, entity.DecisionPending, f.store.Approvals[0].Decision)
	// La orden sigue en curso: hay stock, solo falta la aprobación.
	assert.Equal(t, entity.JobStatusInProgress, f.store.Jobs[jobID].Status)
}

// 20 pedidas con 10 disponibles: Pending y la orden pasa a espera de repuestos.
func TestCreateRequest_StockInsuficienteDejaLaOrdenEnEspera(t *testing.T) {
	f := newFixture(t, 10, defaultConfig())
	request := f.createRequest(t, 20)

	assert.Equal(t, entity.RequestPending, request.Status)
	assert.Equal(t, entity.JobStatusAwaitingParts, f.store.Jobs[jobID].Status)
	require.Len(t, f.store.Approvals, 1)
	assert.Equal(t, 10, f.store.Approvals[0].AvailableAtCheck)
}

// Una reserva vencida de otra solicitud no bloquea la auto-aprobación: la
// expiración perezosa la libera dentro de la misma transacción.
func TestCreateRequest_ExpiraReservasVencidasAntesDelChequeo(t *testing.T) {
	f := newFixture(t, 5, defaultConfig())
	level := f.level(t)

	// Reserva vencida que retiene todo el stock.
	f.store.Reservations["res-stale"] = &entity.StockReservation{
		ID:               "res-stale",
		InventoryLevelID: level.ID,
		PartRequestID:    "req-vieja",
		ReservedQuantity: 5,
		Status:           entity.ReservationActive,
		ExpiresAt:        time.Now().Add(-time.Hour),
	}
	stored := f.store.Levels[level.ID]
	stored.AvailableStock = 0
	stored.ReservedStock = 5

	request := f.createRequest(t, 3)
	assert.Equal(t, entity.RequestApproved, request.Status)
	assert.Equal(t, entity.ReservationExpired, f.store.Reservations["res-stale"].Status)

	after := f.level(t)
	assert.Equal(t, 2, after.AvailableStock)
	assert.Equal(t, 3, after.ReservedStock)
}

func TestCreateRequest_RepuestoDescontinuadoEsConflicto(t *testing.T) {
	f := newFixture(t, 10, defaultConfig())
	f.store.Parts[partID].Lifecycle = entity.PartLifecycleDiscontinued

	_, err := f.workflow.CreateRequest(context.Background(), workflow.CreateRequestInput{
		ServiceRequestID: jobID, SparePartID: partID, TechnicianID: techID, Quantity: 1,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCreateRequest_OrdenInexistenteEsNotFound(t *testing.T) {
	f := newFixture(t, 10, defaultConfig())
	_, err := f.workflow.CreateRequest(context.Background(), workflow.CreateRequestInput{
		ServiceRequestID: "job-fantasma", SparePartID: partID, TechnicianID: techID, Quantity: 1,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateRequest_UrgenciaInvalidaFalla(t *testing.T) {
	f := newFixture(t, 10, defaultConfig())
	_, err := f.workflow.CreateRequest(context.Background(), workflow.CreateRequestInput{
		ServiceRequestID: jobID, SparePartID: partID, TechnicianID: techID,
		Quantity: 1, Urgency: "YESTERDAY",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Límites del técnico
// ──────────────────────────────────────────────────────────────────────────────

// El límite por repuesto manda sobre el de categoría y sobre el umbral default.
func TestCreateRequest_LimitePorRepuestoTienePrecedencia(t *testing.T) {
	f := newFixture(t, 10, defaultConfig())
	f.store.Limits = []*entity.TechnicianLimit{
		{ID: "lim-cat", TechnicianID: techID, CategoryID: category, AutoApproveBelow: dec("10000")},
		{ID: "lim-part", TechnicianID: techID, SparePartID: partID, CategoryID: category, RequiresApproval: true},
	}

	// ₹300 pasarían por categoría y por el default, pero el límite por
	// repuesto exige aprobación manual.
	request := f.createRequest(t, 2)
	assert.Equal(t, entity.RequestPending, request.Status)
}

func TestCreateRequest_TopeDuroDeCantidadEsViolacionDePolitica(t *testing.T) {
	f := newFixture(t, 10, defaultConfig())
	f.store.Limits = []*entity.TechnicianLimit{
		{ID: "lim-part", TechnicianID: techID, SparePartID: partID, MaxQuantityPerRequest: 2},
	}

	_, err := f.workflow.CreateRequest(context.Background(), workflow.CreateRequestInput{
		ServiceRequestID: jobID, SparePartID: partID, TechnicianID: techID, Quantity: 3,
	})
	assert.ErrorIs(t, err, domain.ErrPolicyViolation)
	assert.Empty(t, f.store.Requests, "una violación de política no crea la solicitud")
}

func TestCreateRequest_TopeDuroDeValorEsViolacionDePolitica(t *testing.T) {
	f := newFixture(t, 10, defaultConfig())
	f.store.Limits = []*entity.TechnicianLimit{
		{ID: "lim-part", TechnicianID: techID, SparePartID: partID, MaxValuePerRequest: dec("200")},
	}

	_, err := f.workflow.CreateRequest(context.Background(), workflow.CreateRequestInput{
		ServiceRequestID: jobID, SparePartID: partID, TechnicianID: techID, Quantity: 2,
	})
	assert.ErrorIs(t, err, domain.ErrPolicyViolation)
}

// ──────────────────────────────────────────────────────────────────────────────
// Approve / Reject / Cancel
// ──────────────────────────────────────────────────────────────────────────────

func TestApprove_ReservaYRegistraHistorial(t *testing.T) {
	f := newFixture(t, 10, defaultConfig())
	request := f.createRequest(t, 4) // ₹600: pendiente

	require.NoError(t, f.workflow.Approve(context.Background(), request.ID, superID, "aprobado en revisión"))

	got, err := f.workflow.GetRequest(request.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RequestApproved, got.Status)
	assert.Equal(t, 1, got.ApprovalLevel)

	level := f.level(t)
	assert.Equal(t, 6, level.AvailableStock)
	assert.Equal(t, 4, level.ReservedStock)

	history, err := f.workflow.ListApprovals(request.ID)
	require.NoError(t, err)
	require.Len(t, history, 2) // chequeo inicial + decisión manual
}

func TestApprove_RevalidaElStock(t *testing.T) {
	f := newFixture(t, 10, defaultConfig())
	request := f.createRequest(t, 4)

	// Entre la creación y la aprobación el stock se fue.
	_, err := f.ledger.RecordMovement(context.Background(), ledger.MovementInput{
		SparePartID: partID, StoreID: storeID,
		Type: entity.MovementTypeOUT, Quantity: 8, CreatedBy: "storekeeper-1",
	})
	require.NoError(t, err)

	err = f.workflow.Approve(context.Background(), request.ID, superID, "")
	var shortage *domain.StockShortage
	require.ErrorAs(t, err, &shortage)
	assert.Equal(t, 2, shortage.Available)

	got, _ := f.workflow.GetRequest(request.ID)
	assert.Equal(t, entity.RequestPending, got.Status, "la solicitud sigue pendiente")
}

func TestApprove_SoloDesdePendiente(t *testing.T) {
	f := newFixture(t, 10, defaultConfig())
	request := f.createRequest(t, 2) // auto-aprobada

	err := f.workflow.Approve(context.Background(), request.ID, superID, "")
	require.Error(t, err)
	var transition *domain.InvalidTransition
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, entity.RequestApproved, transition.From)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestReject_SoloDesdePendiente(t *testing.T) {
	f := newFixture(t, 10, defaultConfig())
	request := f.createRequest(t, 4)

	require.NoError(t, f.workflow.Reject(context.Background(), request.ID, superID, "no corresponde al diagnóstico"))
	got, _ := f.workflow.GetRequest(request.ID)
	assert.Equal(t, entity.RequestRejected, got.Status)

	// Rechazar lo rechazado no es legal.
	err := f.workflow.Reject(context.Background(), request.ID, superID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCancel_LiberaLaReserva(t *testing.T) {
	f := newFixture(t, 10, defaultConfig())
	request := f.createRequest(t, 2) // auto-aprobada con reserva

	require.NoError(t, f.workflow.Cancel(context.Background(), request.ID, techID, "el cliente desistió"))

	got, _ := f.workflow.GetRequest(request.ID)
	assert.Equal(t, entity.RequestCancelled, got.Status)
	assert.Contains(t, got.Justification, "cancelada: el cliente desistió")

	level := f.level(t)
	assert.Equal(t, 10, level.AvailableStock)
	assert.Equal(t, 0, level.ReservedStock)
}

func TestCancel_EmitidaNoSePuedeCancelar(t *testing.T) {
	f := newFixture(t, 10, defaultConfig())
	request := f.createRequest(t, 2)
	_, err := f.workflow.Issue(context.Background(), request.ID)
	require.NoError(t, err)

	err = f.workflow.Cancel(context.Background(), request.ID, techID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

// ──────────────────────────────────────────────────────────────────────────────
// Issue
// ──────────────────────────────────────────────────────────────────────────────

func TestIssue_ConsumeLaReservaYRegistraLotes(t *testing.T) {
	f := newFixture(t, 10, defaultConfig())
	request := f.createRequest(t, 2)

	result, err := f.workflow.Issue(context.Background(), request.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.IssuedQuantity)
	assert.True(t, result.TotalCost.Equal(dec("200")), "2 unidades al costo del lote inicial")
	assert.Len(t, result.BatchIDs, 1)

	got, _ := f.workflow.GetRequest(request.ID)
	assert.Equal(t, entity.RequestIssued, got.Status)
	assert.Equal(t, 2, got.IssuedQuantity)
	assert.Equal(t, result.BatchIDs, got.IssuedBatchIDs)
	require.NotNil(t, got.IssuedAt)

	level := f.level(t)
	assert.Equal(t, 8, level.CurrentStock)
	assert.Equal(t, 8, level.AvailableStock)
	assert.Equal(t, 0, level.ReservedStock, "la reserva se consumió, no se liberó")

	res, err := testutil.NewStockReservationRepo(f.store).GetActiveByRequest(request.ID)
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestIssue_SoloDesdeAprobada(t *testing.T) {
	f := newFixture(t, 10, defaultConfig())
	request := f.createRequest(t, 4) // pendiente

	_, err := f.workflow.Issue(context.Background(), request.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

// Dos solicitudes aprobadas, ya sin reservas vigentes, compiten por las
// últimas 5 unidades al emitir. El asignador revalida el disponible bajo el
// lock del nivel: exactamente una gana y la otra recibe el faltante.
func TestIssue_CarreraPorLasUltimasUnidadesEmiteUnaSola(t *testing.T) {
	f := newFixture(t, 10, workflow.Config{DefaultAutoApprove: dec("1000")})
	reqA := f.createRequest(t, 5)
	reqB := f.createRequest(t, 5)
	require.Equal(t, entity.RequestApproved, reqA.Status)
	require.Equal(t, entity.RequestApproved, reqB.Status)

	// Las dos reservas caducan y el barrido las libera.
	for _, res := range f.store.Reservations {
		res.ExpiresAt = time.Now().Add(-time.Hour)
	}
	sweeper := reservation.NewManagerUseCase(testutil.NewTxRunner(f.store), time.Hour)
	freed, err := sweeper.ExpireStale(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, 2, freed)

	// Entre el barrido y la emisión se van 5 unidades: quedan 5 para dos
	// solicitudes de 5.
	_, err = f.ledger.RecordMovement(context.Background(), ledger.MovementInput{
		SparePartID: partID, StoreID: storeID,
		Type: entity.MovementTypeOUT, Quantity: 5, CreatedBy: "storekeeper-1",
	})
	require.NoError(t, err)

	ids := []string{reqA.ID, reqB.ID}
	results := make([]*workflow.IssueResult, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.workflow.Issue(context.Background(), ids[i])
		}(i)
	}
	wg.Wait()

	issued, shortages := 0, 0
	for i := range ids {
		if errs[i] == nil {
			issued++
			assert.Equal(t, 5, results[i].IssuedQuantity)
			continue
		}
		shortages++
		var shortage *domain.StockShortage
		require.ErrorAs(t, errs[i], &shortage)
		assert.Equal(t, 0, shortage.Available, "la perdedora ve el stock ya emitido")
		got, _ := f.workflow.GetRequest(ids[i])
		assert.Equal(t, entity.RequestApproved, got.Status, "la perdedora sigue aprobada")
	}
	assert.Equal(t, 1, issued, "exactamente una emisión gana las últimas unidades")
	assert.Equal(t, 1, shortages)

	level := f.level(t)
	assert.Equal(t, 0, level.AvailableStock)
	assert.Equal(t, 0, level.CurrentStock)
}

// Con emisión automática la solicitud auto-aprobada sale emitida de la
// misma transacción de creación.
func TestCreateRequest_AutoIssueEmiteDeInmediato(t *testing.T) {
	f := newFixture(t, 10, workflow.Config{DefaultAutoApprove: dec("500"), AutoIssue: true})
	request := f.createRequest(t, 2)

	got, _ := f.workflow.GetRequest(request.ID)
	assert.Equal(t, entity.RequestIssued, got.Status)
	assert.Equal(t, 2, got.IssuedQuantity)

	level := f.level(t)
	assert.Equal(t, 8, level.CurrentStock)
	assert.Equal(t, 0, level.ReservedStock)
}

// ──────────────────────────────────────────────────────────────────────────────
// Install
// ──────────────────────────────────────────────────────────────────────────────

func TestInstall_RegistraGarantiaYRecalculaCostos(t *testing.T) {
	f := newFixture(t, 10, defaultConfig())
	request := f.createRequest(t, 2)
	_, err := f.workflow.Issue(context.Background(), request.ID)
	require.NoError(t, err)

	installed, err := f.workflow.Install(context.Background(), workflow.InstallInput{
		ServiceRequestID: jobID,
		SparePartID:      partID,
		TechnicianID:     techID,
		Quantity:         2,
		SerialNumber:     "SN-001",
	})
	require.NoError(t, err)
	assert.True(t, installed.UnitCost.Equal(dec("100")), "costo unitario = emitido / cantidad")
	assert.True(t, installed.TotalCost.Equal(dec("200")))
	assert.True(t, installed.TotalRevenue.Equal(dec("300")))
	assert.WithinDuration(t, time.Now().AddDate(0, 6, 0), installed.WarrantyExpiry, time.Minute)

	got, _ := f.workflow.GetRequest(request.ID)
	assert.Equal(t, entity.RequestInstalled, got.Status)

	// El recálculo corre al confirmar la instalación.
	breakdown, err := f.costs.GetBreakdown(jobID)
	require.NoError(t, err)
	assert.True(t, breakdown.PartsCost.Equal(dec("200")))
	assert.True(t, breakdown.PartsRevenue.Equal(dec("300")))
	total, ok := f.store.JobTotals[jobID]
	require.True(t, ok, "la orden recibe el total facturable")
	assert.True(t, total.Equal(breakdown.TotalBilled))
}

// Un costo unitario explícito en la instalación manda sobre el promedio de
// emisión y llega tal cual al desglose de la orden.
func TestInstall_CostoExplicitoLlegaAlDesglose(t *testing.T) {
	f := newFixture(t, 10, defaultConfig())
	request := f.createRequest(t, 2)
	_, err := f.workflow.Issue(context.Background(), request.ID)
	require.NoError(t, err)

	override := dec("80")
	installed, err := f.workflow.Install(context.Background(), workflow.InstallInput{
		ServiceRequestID: jobID,
		SparePartID:      partID,
		TechnicianID:     techID,
		Quantity:         2,
		UnitCost:         &override,
	})
	require.NoError(t, err)
	assert.True(t, installed.TotalCost.Equal(dec("160")))

	breakdown, err := f.costs.GetBreakdown(jobID)
	require.NoError(t, err)
	assert.True(t, breakdown.PartsCost.Equal(dec("160")), "parts cost: %s", breakdown.PartsCost)
	assert.True(t, breakdown.PartsRevenue.Equal(dec("300")))
}

func TestInstall_ReemplazoMarcaElAnteriorComoRemovido(t *testing.T) {
	f := newFixture(t, 10, defaultConfig())
	f.store.Installed["old-part"] = &entity.InstalledPart{
		ID:               "old-part",
		ServiceRequestID: jobID,
		SparePartID:      "part-viejo",
		InstalledAt:      time.Now().Add(-30 * 24 * time.Hour),
	}
	request := f.createRequest(t, 1)
	_, err := f.workflow.Issue(context.Background(), request.ID)
	require.NoError(t, err)

	installed, err := f.workflow.Install(context.Background(), workflow.InstallInput{
		ServiceRequestID: jobID,
		SparePartID:      partID,
		TechnicianID:     techID,
		Quantity:         1,
		ReplacedPartID:   "old-part",
	})
	require.NoError(t, err)
	assert.Equal(t, "old-part", installed.ReplacedPartID)

	old := f.store.Installed["old-part"]
	require.NotNil(t, old.RemovedAt)
	assert.Contains(t, old.RemovalReason, "reemplazado por")

	// El listado de vigentes excluye el removido.
	current, err := f.workflow.ListInstalled(jobID)
	require.NoError(t, err)
	require.Len(t, current, 1)
	assert.Equal(t, installed.ID, current[0].ID)
}

func TestInstall_MasDeLoEmitidoFalla(t *testing.T) {
	f := newFixture(t, 10, defaultConfig())
	request := f.createRequest(t, 2)
	_, err := f.workflow.Issue(context.Background(), request.ID)
	require.NoError(t, err)

	_, err = f.workflow.Install(context.Background(), workflow.InstallInput{
		ServiceRequestID: jobID, SparePartID: partID, TechnicianID: techID, Quantity: 3,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Return
// ──────────────────────────────────────────────────────────────────────────────

func TestReturn_ParcialBuenaCondicionRestauraDisponible(t *testing.T) {
	f := newFixture(t, 10, defaultConfig())
	request := f.createRequest(t, 3)
	_, err := f.workflow.Issue(context.Background(), request.ID)
	require.NoError(t, err)

	results, err := f.workflow.Return(context.Background(), jobID, []workflow.ReturnItem{
		{SparePartID: partID, Quantity: 1, Condition: workflow.ConditionGood, Reason: "sobró"},
	}, techID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Processed)

	got, _ := f.workflow.GetRequest(request.ID)
	assert.Equal(t, entity.RequestInstalled, got.Status, "devolución parcial no cierra la solicitud")
	assert.Equal(t, 1, got.ReturnedQuantity)

	level := f.level(t)
	assert.Equal(t, 8, level.CurrentStock)
	assert.Equal(t, 8, level.AvailableStock)
	assert.Equal(t, 0, level.DamagedStock)
}

func TestReturn_TotalConDanioCierraLaSolicitud(t *testing.T) {
	f := newFixture(t, 10, defaultConfig())
	request := f.createRequest(t, 2)
	_, err := f.workflow.Issue(context.Background(), request.ID)
	require.NoError(t, err)

	results, err := f.workflow.Return(context.Background(), jobID, []workflow.ReturnItem{
		{SparePartID: partID, Quantity: 2, Condition: workflow.ConditionDamaged, Reason: "defecto de fábrica"},
	}, techID)
	require.NoError(t, err)
	assert.True(t, results[0].Processed)

	got, _ := f.workflow.GetRequest(request.ID)
	assert.Equal(t, entity.RequestReturned, got.Status)

	// Dañada entra al stock total como dañado, nunca a disponible.
	level := f.level(t)
	assert.Equal(t, 10, level.CurrentStock)
	assert.Equal(t, 8, level.AvailableStock)
	assert.Equal(t, 2, level.DamagedStock)
}

// Las devoluciones son la única operación de éxito parcial: una línea mala no
// bloquea a las demás.
func TestReturn_LineaInvalidaNoBloqueaALasDemas(t *testing.T) {
	f := newFixture(t, 10, defaultConfig())
	request := f.createRequest(t, 2)
	_, err := f.workflow.Issue(context.Background(), request.ID)
	require.NoError(t, err)

	results, err := f.workflow.Return(context.Background(), jobID, []workflow.ReturnItem{
		{SparePartID: partID, Quantity: 1, Condition: "ROTO"},
		{SparePartID: "part-ajeno", Quantity: 1, Condition: workflow.ConditionGood},
		{SparePartID: partID, Quantity: 1, Condition: workflow.ConditionGood},
	}, techID)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.False(t, results[0].Processed)
	assert.NotEmpty(t, results[0].Error)
	assert.False(t, results[1].Processed)
	assert.True(t, results[2].Processed)

	got, _ := f.workflow.GetRequest(request.ID)
	assert.Equal(t, 1, got.ReturnedQuantity)
}

func TestReturn_MasDeLoEmitidoFallaLaLinea(t *testing.T) {
	f := newFixture(t, 10, defaultConfig())
	request := f.createRequest(t, 2)
	_, err := f.workflow.Issue(context.Background(), request.ID)
	require.NoError(t, err)

	results, err := f.workflow.Return(context.Background(), jobID, []workflow.ReturnItem{
		{SparePartID: partID, Quantity: 3, Condition: workflow.ConditionGood},
	}, techID)
	require.NoError(t, err)
	assert.False(t, results[0].Processed)

	got, _ := f.workflow.GetRequest(request.ID)
	assert.Equal(t, 0, got.ReturnedQuantity)
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia: las últimas unidades se adjudican una sola vez
// ──────────────────────────────────────────────────────────────────────────────

// Dos técnicos piden las últimas 5 unidades a la vez: exactamente uno queda
// aprobado con la reserva; el otro, pendiente con la orden en espera.
func TestCreateRequest_CarreraPorLasUltimasUnidades(t *testing.T) {
	f := newFixture(t, 5, workflow.Config{DefaultAutoApprove: dec("1000")})

	var wg sync.WaitGroup
	requests := make([]*entity.PartRequest, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			requests[i], errs[i] = f.workflow.CreateRequest(context.Background(), workflow.CreateRequestInput{
				ServiceRequestID: jobID,
				SparePartID:      partID,
				TechnicianID:     techID,
				Quantity:         5,
			})
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	approved, pending := 0, 0
	for _, request := range requests {
		got, err := f.workflow.GetRequest(request.ID)
		require.NoError(t, err)
		switch got.Status {
		case entity.RequestApproved:
			approved++
		case entity.RequestPending:
			pending++
		}
	}
	assert.Equal(t, 1, approved, "exactamente una solicitud gana el stock")
	assert.Equal(t, 1, pending)

	level := f.level(t)
	assert.Equal(t, 0, level.AvailableStock)
	assert.Equal(t, 5, level.ReservedStock)
	assert.Equal(t, entity.JobStatusAwaitingParts, f.store.Jobs[jobID].Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Listados
// ──────────────────────────────────────────────────────────────────────────────

func TestListRequests_FiltraPorEstado(t *testing.T) {
	f := newFixture(t, 10, defaultConfig())
	f.createRequest(t, 2) // auto-aprobada
	f.createRequest(t, 4) // pendiente

	pending, total, err := f.workflow.ListRequests(repositoryFilter(entity.RequestPending))
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, pending, 1)
	assert.Equal(t, entity.RequestPending, pending[0].Status)

	all, total, err := f.workflow.ListRequests(repositoryFilter(""))
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, all, 2)
}

func repositoryFilter(status string) repository.RequestFilter {
	return repository.RequestFilter{Status: status, Limit: 20}
}
