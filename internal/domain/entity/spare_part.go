package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de ciclo de vida de un repuesto. Un repuesto referenciado por stock
// o historial nunca se elimina: pasa a Discontinued.
const (
	PartLifecycleActive       = "ACTIVE"
	PartLifecycleDiscontinued = "DISCONTINUED"
	PartLifecycleDeleted      = "DELETED"
)

// SparePart entrada de catálogo de repuestos. La identidad es inmutable;
// los precios solo se mutan vía la operación de cambio de precio (con historial).
type SparePart struct {
	ID             string
	PartNumber     string
	Name           string
	CategoryID     string
	SupplierID     string
	CostPrice      decimal.Decimal
	SellingPrice   decimal.Decimal
	MarkupPercent  decimal.Decimal
	WarrantyMonths int
	Lifecycle      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PriceHistoryEntry registro inmutable de un cambio de precio de un repuesto.
type PriceHistoryEntry struct {
	ID              string
	SparePartID     string
	OldCostPrice    decimal.Decimal
	NewCostPrice    decimal.Decimal
	OldSellingPrice decimal.Decimal
	NewSellingPrice decimal.Decimal
	Reason          string
	ChangedBy       string
	ChangedAt       time.Time
}
