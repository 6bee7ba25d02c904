package costing_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fleetparts-api/internal/application/costing"
	"github.com/jhoicas/fleetparts-api/internal/domain"
	"github.com/jhoicas/fleetparts-api/internal/domain/entity"
	"github.com/jhoicas/fleetparts-api/internal/testutil"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const serviceID = "job-1"

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newEngine(t *testing.T) (*costing.EngineUseCase, *testutil.MemStore) {
	t.Helper()
	store := testutil.NewMemStore()
	jobs := testutil.NewServiceJobProvider(store)
	uc := costing.NewEngineUseCase(
		testutil.NewInstalledPartRepo(store),
		testutil.NewServiceCostRepo(store),
		jobs, jobs,
		costing.Config{TaxRate: dec("18"), OverheadPct: dec("10"), LaborMarkupPct: dec("25")},
	)
	return uc, store
}

// seedInstalled siembra una instalación vigente: qty unidades a unitCost con
// precio de venta price por unidad.
func seedInstalled(store *testutil.MemStore, id string, qty int, unitCost, price string) {
	repo := testutil.NewInstalledPartRepo(store)
	q := decimal.NewFromInt(int64(qty))
	_ = repo.Create(&entity.InstalledPart{
		ID:               id,
		ServiceRequestID: serviceID,
		SparePartID:      "part-" + id,
		Quantity:         qty,
		UnitCost:         dec(unitCost),
		TotalCost:        dec(unitCost).Mul(q),
		SellingPrice:     dec(price),
		TotalRevenue:     dec(price).Mul(q),
		InstalledAt:      time.Now(),
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Recalculate
// ──────────────────────────────────────────────────────────────────────────────

func TestRecalculate_SumaLasInstalacionesVigentes(t *testing.T) {
	uc, store := newEngine(t)
	seedInstalled(store, "inst-1", 2, "100", "150") // 200 / 300
	seedInstalled(store, "inst-2", 1, "120", "180") // 120 / 180
	store.Labor[serviceID] = dec("500")

	breakdown, err := uc.Recalculate(context.Background(), serviceID)
	require.NoError(t, err)

	assert.True(t, breakdown.PartsCost.Equal(dec("320")), "parts cost: %s", breakdown.PartsCost)
	assert.True(t, breakdown.PartsRevenue.Equal(dec("480")), "parts revenue: %s", breakdown.PartsRevenue)
	assert.True(t, breakdown.PartsMarkup.Equal(dec("160")))
	assert.True(t, breakdown.LaborCost.Equal(dec("500")))
	assert.True(t, breakdown.LaborMarkup.Equal(dec("125")))
	// Overhead 10% de (320 + 500).
	assert.True(t, breakdown.Overhead.Equal(dec("82")), "overhead: %s", breakdown.Overhead)
	// Subtotal = 480 + 500 + 125 + 82; impuesto 18%.
	assert.True(t, breakdown.Subtotal.Equal(dec("1187")))
	assert.True(t, breakdown.Tax.Equal(dec("213.66")))
	assert.True(t, breakdown.TotalBilled.Equal(dec("1400.66")))

	// El total facturable se propaga a la orden de servicio.
	total, ok := store.JobTotals[serviceID]
	require.True(t, ok)
	assert.True(t, total.Equal(breakdown.TotalBilled))
}

// Lo emitido pero no instalado no factura: una solicitud Issued sin
// instalación registrada deja el desglose de repuestos en cero.
func TestRecalculate_EmitidoSinInstalarNoFactura(t *testing.T) {
	uc, store := newEngine(t)
	_ = testutil.NewPartRequestRepo(store).Create(&entity.PartRequest{
		ID:                "req-1",
		ServiceRequestID:  serviceID,
		SparePartID:       "part-filter",
		StoreID:           "store-central",
		RequestedQuantity: 3,
		Status:            entity.RequestIssued,
		IssuedQuantity:    3,
		IssuedCost:        dec("300"),
		EstimatedCost:     dec("450"),
	})
	store.Labor[serviceID] = dec("500")

	breakdown, err := uc.Recalculate(context.Background(), serviceID)
	require.NoError(t, err)
	assert.True(t, breakdown.PartsCost.IsZero(), "parts cost: %s", breakdown.PartsCost)
	assert.True(t, breakdown.PartsRevenue.IsZero())
	assert.True(t, breakdown.LaborCost.Equal(dec("500")))
}

// Una instalación removida por reemplazo sale del desglose en la corrida
// siguiente.
func TestRecalculate_RemocionRebajaElDesglose(t *testing.T) {
	uc, store := newEngine(t)
	seedInstalled(store, "inst-1", 2, "100", "150")
	seedInstalled(store, "inst-2", 1, "120", "180")

	before, err := uc.Recalculate(context.Background(), serviceID)
	require.NoError(t, err)
	assert.True(t, before.PartsCost.Equal(dec("320")))

	repo := testutil.NewInstalledPartRepo(store)
	require.NoError(t, repo.MarkRemoved("inst-1", "reemplazado", "tech-1", time.Now()))

	after, err := uc.Recalculate(context.Background(), serviceID)
	require.NoError(t, err)
	assert.True(t, after.PartsCost.Equal(dec("120")), "parts cost tras remoción: %s", after.PartsCost)
	assert.True(t, after.PartsRevenue.Equal(dec("180")))
}

// El costo unitario registrado en la instalación manda sobre cualquier
// promedio de emisión: un override de costo llega al desglose tal cual.
func TestRecalculate_RespetaElCostoUnitarioDeLaInstalacion(t *testing.T) {
	uc, store := newEngine(t)
	seedInstalled(store, "inst-1", 2, "95", "150") // costo corregido a mano

	breakdown, err := uc.Recalculate(context.Background(), serviceID)
	require.NoError(t, err)
	assert.True(t, breakdown.PartsCost.Equal(dec("190")))
	assert.True(t, breakdown.PartsRevenue.Equal(dec("300")))
}

// Dos recálculos con el mismo estado producen el mismo desglose y una sola
// fila por orden.
func TestRecalculate_Idempotente(t *testing.T) {
	uc, store := newEngine(t)
	seedInstalled(store, "inst-1", 2, "100", "150")
	store.Labor[serviceID] = dec("100")

	first, err := uc.Recalculate(context.Background(), serviceID)
	require.NoError(t, err)
	second, err := uc.Recalculate(context.Background(), serviceID)
	require.NoError(t, err)

	assert.True(t, first.TotalBilled.Equal(second.TotalBilled))
	assert.True(t, first.NetMargin.Equal(second.NetMargin))
	assert.Len(t, store.Costs, 1, "una sola fila de desglose por orden")
}

// Sin instalaciones vigentes el desglose queda solo con la mano de obra.
func TestRecalculate_SinInstalacionesFacturaSoloManoDeObra(t *testing.T) {
	uc, store := newEngine(t)
	seedInstalled(store, "inst-1", 2, "100", "150")
	require.NoError(t, testutil.NewInstalledPartRepo(store).MarkRemoved("inst-1", "devuelto", "tech-1", time.Now()))
	store.Labor[serviceID] = dec("100")

	breakdown, err := uc.Recalculate(context.Background(), serviceID)
	require.NoError(t, err)
	assert.True(t, breakdown.PartsCost.IsZero())
	assert.True(t, breakdown.PartsRevenue.IsZero())
	assert.True(t, breakdown.LaborCost.Equal(dec("100")))
}

// ──────────────────────────────────────────────────────────────────────────────
// GetBreakdown
// ──────────────────────────────────────────────────────────────────────────────

func TestGetBreakdown_SinDesgloseEsNotFound(t *testing.T) {
	uc, _ := newEngine(t)
	_, err := uc.GetBreakdown(serviceID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetBreakdown_DevuelveElVigente(t *testing.T) {
	uc, store := newEngine(t)
	seedInstalled(store, "inst-1", 1, "100", "150")

	calculated, err := uc.Recalculate(context.Background(), serviceID)
	require.NoError(t, err)
	got, err := uc.GetBreakdown(serviceID)
	require.NoError(t, err)
	assert.Equal(t, calculated.ServiceRequestID, got.ServiceRequestID)
	assert.True(t, calculated.TotalBilled.Equal(got.TotalBilled))
}
