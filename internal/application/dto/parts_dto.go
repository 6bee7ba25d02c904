package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/fleetparts-api/internal/domain/entity"
)

// ChangePriceRequest body para PATCH /api/parts/:id/price.
// Un precio omitido se conserva.
type ChangePriceRequest struct {
	CostPrice    *decimal.Decimal `json:"cost_price,omitempty"`
	SellingPrice *decimal.Decimal `json:"selling_price,omitempty"`
	Reason       string           `json:"reason,omitempty"`
}

// SparePartDTO entrada de catálogo.
type SparePartDTO struct {
	ID             string          `json:"id"`
	PartNumber     string          `json:"part_number"`
	Name           string          `json:"name"`
	CategoryID     string          `json:"category_id,omitempty"`
	SupplierID     string          `json:"supplier_id,omitempty"`
	CostPrice      decimal.Decimal `json:"cost_price"`
	SellingPrice   decimal.Decimal `json:"selling_price"`
	MarkupPercent  decimal.Decimal `json:"markup_percent"`
	WarrantyMonths int             `json:"warranty_months"`
	Lifecycle      string          `json:"lifecycle"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// FromSparePart mapea la entidad al DTO de respuesta.
func FromSparePart(p *entity.SparePart) SparePartDTO {
	return SparePartDTO{
		ID:             p.ID,
		PartNumber:     p.PartNumber,
		Name:           p.Name,
		CategoryID:     p.CategoryID,
		SupplierID:     p.SupplierID,
		CostPrice:      p.CostPrice,
		SellingPrice:   p.SellingPrice,
		MarkupPercent:  p.MarkupPercent,
		WarrantyMonths: p.WarrantyMonths,
		Lifecycle:      p.Lifecycle,
		UpdatedAt:      p.UpdatedAt,
	}
}

// PriceHistoryDTO entrada del historial de precios.
type PriceHistoryDTO struct {
	ID              string          `json:"id"`
	OldCostPrice    decimal.Decimal `json:"old_cost_price"`
	NewCostPrice    decimal.Decimal `json:"new_cost_price"`
	OldSellingPrice decimal.Decimal `json:"old_selling_price"`
	NewSellingPrice decimal.Decimal `json:"new_selling_price"`
	Reason          string          `json:"reason,omitempty"`
	ChangedBy       string          `json:"changed_by"`
	ChangedAt       time.Time       `json:"changed_at"`
}

// FromPriceHistory mapea la entidad al DTO de respuesta.
func FromPriceHistory(e *entity.PriceHistoryEntry) PriceHistoryDTO {
	return PriceHistoryDTO{
		ID:              e.ID,
		OldCostPrice:    e.OldCostPrice,
		NewCostPrice:    e.NewCostPrice,
		OldSellingPrice: e.OldSellingPrice,
		NewSellingPrice: e.NewSellingPrice,
		Reason:          e.Reason,
		ChangedBy:       e.ChangedBy,
		ChangedAt:       e.ChangedAt,
	}
}
