package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/fleetparts-api/internal/domain/entity"
)

// InitializeStockRequest body para POST /api/inventory/levels.
type InitializeStockRequest struct {
	SparePartID  string `json:"spare_part_id"`
	StoreID      string `json:"store_id"`
	StoreName    string `json:"store_name,omitempty"`
	InitialStock int    `json:"initial_stock"`
	MinimumStock int    `json:"minimum_stock"`
	MaximumStock int    `json:"maximum_stock"`
	ReorderLevel int    `json:"reorder_level"`
}

// RegisterMovementRequest body para POST /api/inventory/movements.
// Para ADJUSTMENT quantity es el stock físico objetivo; para el resto,
// la cantidad positiva a mover.
type RegisterMovementRequest struct {
	SparePartID   string           `json:"spare_part_id"`
	StoreID       string           `json:"store_id"`
	Type          string           `json:"type"`
	Quantity      int              `json:"quantity"`
	UnitCost      *decimal.Decimal `json:"unit_cost,omitempty"`
	BatchNumber   string           `json:"batch_number,omitempty"`
	ReferenceType string           `json:"reference_type,omitempty"`
	ReferenceID   string           `json:"reference_id,omitempty"`
	Reason        string           `json:"reason,omitempty"`
}

// InventoryLevelDTO contadores de stock de un (repuesto, almacén).
type InventoryLevelDTO struct {
	ID             string    `json:"id"`
	SparePartID    string    `json:"spare_part_id"`
	StoreID        string    `json:"store_id"`
	StoreName      string    `json:"store_name,omitempty"`
	CurrentStock   int       `json:"current_stock"`
	AvailableStock int       `json:"available_stock"`
	ReservedStock  int       `json:"reserved_stock"`
	DamagedStock   int       `json:"damaged_stock"`
	MinimumStock   int       `json:"minimum_stock"`
	MaximumStock   int       `json:"maximum_stock"`
	ReorderLevel   int       `json:"reorder_level"`
	BelowReorder   bool      `json:"below_reorder"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// FromInventoryLevel mapea la entidad al DTO de respuesta.
func FromInventoryLevel(l *entity.InventoryLevel) InventoryLevelDTO {
	return InventoryLevelDTO{
		ID:             l.ID,
		SparePartID:    l.SparePartID,
		StoreID:        l.StoreID,
		StoreName:      l.StoreName,
		CurrentStock:   l.CurrentStock,
		AvailableStock: l.AvailableStock,
		ReservedStock:  l.ReservedStock,
		DamagedStock:   l.DamagedStock,
		MinimumStock:   l.MinimumStock,
		MaximumStock:   l.MaximumStock,
		ReorderLevel:   l.ReorderLevel,
		BelowReorder:   l.BelowReorder(),
		UpdatedAt:      l.UpdatedAt,
	}
}

// StockMovementDTO fila del libro de movimientos.
type StockMovementDTO struct {
	ID            string          `json:"id"`
	BatchID       string          `json:"batch_id,omitempty"`
	Type          string          `json:"type"`
	Quantity      int             `json:"quantity"`
	PreviousStock int             `json:"previous_stock"`
	NewStock      int             `json:"new_stock"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	ReferenceType string          `json:"reference_type,omitempty"`
	ReferenceID   string          `json:"reference_id,omitempty"`
	Reason        string          `json:"reason,omitempty"`
	CreatedBy     string          `json:"created_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// FromStockMovement mapea la entidad al DTO de respuesta.
func FromStockMovement(m *entity.StockMovement) StockMovementDTO {
	return StockMovementDTO{
		ID:            m.ID,
		BatchID:       m.BatchID,
		Type:          m.Type,
		Quantity:      m.Quantity,
		PreviousStock: m.PreviousStock,
		NewStock:      m.NewStock,
		UnitCost:      m.UnitCost,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		Reason:        m.Reason,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
}

// StockCountItem línea de un conteo físico.
type StockCountItem struct {
	SparePartID   string `json:"spare_part_id"`
	PhysicalCount int    `json:"physical_count"`
}

// StockCountRequest body para POST /api/inventory/stock-count.
type StockCountRequest struct {
	StoreID string           `json:"store_id"`
	Items   []StockCountItem `json:"items"`
}

// StockCountAdjustmentDTO resultado por línea del conteo.
type StockCountAdjustmentDTO struct {
	SparePartID string `json:"spare_part_id"`
	Previous    int    `json:"previous"`
	Counted     int    `json:"counted"`
	Variance    int    `json:"variance"`
	Adjusted    bool   `json:"adjusted"`
}

// StockCountResponse resumen del conteo físico.
type StockCountResponse struct {
	Adjustments   []StockCountAdjustmentDTO `json:"adjustments"`
	TotalVariance int                       `json:"total_variance"`
}
