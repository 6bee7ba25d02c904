package parts_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fleetparts-api/internal/application/parts"
	"github.com/jhoicas/fleetparts-api/internal/domain"
	"github.com/jhoicas/fleetparts-api/internal/domain/entity"
	"github.com/jhoicas/fleetparts-api/internal/testutil"
)

const partID = "part-brake-pad"

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newCatalog(t *testing.T) (*parts.CatalogUseCase, *testutil.MemStore) {
	t.Helper()
	store := testutil.NewMemStore()
	store.Parts[partID] = &entity.SparePart{
		ID:           partID,
		Name:         "Pastilla de freno",
		CostPrice:    dec("100"),
		SellingPrice: dec("150"),
		Lifecycle:    entity.PartLifecycleActive,
	}
	uc := parts.NewCatalogUseCase(testutil.NewSparePartRepo(store), testutil.NewPriceHistoryRepo(store))
	return uc, store
}

// ──────────────────────────────────────────────────────────────────────────────
// ChangePrice
// ──────────────────────────────────────────────────────────────────────────────

func TestChangePrice_ActualizaYRegistraHistorial(t *testing.T) {
	uc, store := newCatalog(t)

	cost := dec("120")
	part, err := uc.ChangePrice(parts.ChangePriceInput{
		SparePartID: partID,
		CostPrice:   &cost,
		Reason:      "alza del proveedor",
		ChangedBy:   "storekeeper-1",
	})
	require.NoError(t, err)
	assert.True(t, part.CostPrice.Equal(dec("120")))
	assert.True(t, part.SellingPrice.Equal(dec("150")), "el precio no enviado se conserva")
	assert.True(t, part.MarkupPercent.Equal(dec("25")), "markup recalculado: %s", part.MarkupPercent)

	require.Len(t, store.PriceHistory, 1)
	entry := store.PriceHistory[0]
	assert.True(t, entry.OldCostPrice.Equal(dec("100")))
	assert.True(t, entry.NewCostPrice.Equal(dec("120")))
	assert.True(t, entry.OldSellingPrice.Equal(dec("150")))
	assert.True(t, entry.NewSellingPrice.Equal(dec("150")))
	assert.Equal(t, "alza del proveedor", entry.Reason)
}

func TestChangePrice_SinPreciosFalla(t *testing.T) {
	uc, _ := newCatalog(t)
	_, err := uc.ChangePrice(parts.ChangePriceInput{SparePartID: partID, ChangedBy: "storekeeper-1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestChangePrice_PrecioNegativoFalla(t *testing.T) {
	uc, store := newCatalog(t)
	negative := dec("-5")
	_, err := uc.ChangePrice(parts.ChangePriceInput{
		SparePartID: partID, SellingPrice: &negative, ChangedBy: "storekeeper-1",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, store.PriceHistory)
}

// ──────────────────────────────────────────────────────────────────────────────
// Discontinue / GetPart
// ──────────────────────────────────────────────────────────────────────────────

func TestDiscontinue_EsIdempotente(t *testing.T) {
	uc, _ := newCatalog(t)

	part, err := uc.Discontinue(partID)
	require.NoError(t, err)
	assert.Equal(t, entity.PartLifecycleDiscontinued, part.Lifecycle)

	// Descontinuar lo descontinuado no es un error.
	part, err = uc.Discontinue(partID)
	require.NoError(t, err)
	assert.Equal(t, entity.PartLifecycleDiscontinued, part.Lifecycle)
}

func TestGetPart_EliminadoEsNotFound(t *testing.T) {
	uc, store := newCatalog(t)
	store.Parts[partID].Lifecycle = entity.PartLifecycleDeleted
	_, err := uc.GetPart(partID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// ListPriceHistory / EstimateValue
// ──────────────────────────────────────────────────────────────────────────────

func TestListPriceHistory_MasRecientePrimero(t *testing.T) {
	uc, _ := newCatalog(t)
	for _, price := range []string{"110", "120", "130"} {
		p := dec(price)
		_, err := uc.ChangePrice(parts.ChangePriceInput{
			SparePartID: partID, CostPrice: &p, ChangedBy: "storekeeper-1",
		})
		require.NoError(t, err)
	}

	history, err := uc.ListPriceHistory(partID, 2, 0)
	require.NoError(t, err)
	require.Len(t, history, 2, "respeta el límite")
	assert.True(t, history[0].NewCostPrice.Equal(dec("130")))
	assert.True(t, history[1].NewCostPrice.Equal(dec("120")))
}

func TestEstimateValue_AlPrecioDeVentaVigente(t *testing.T) {
	uc, _ := newCatalog(t)
	value, err := uc.EstimateValue(partID, 3)
	require.NoError(t, err)
	assert.True(t, value.Equal(dec("450")))

	_, err = uc.EstimateValue(partID, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
