package entity

import "time"

// InventoryLevel contadores de stock de un repuesto en un almacén.
// Invariante: CurrentStock = AvailableStock + ReservedStock + DamagedStock,
// y CurrentStock >= 0 después de cada operación.
type InventoryLevel struct {
	ID             string
	SparePartID    string
	StoreID        string
	StoreName      string
	CurrentStock   int
	AvailableStock int
	ReservedStock  int
	DamagedStock   int
	MinimumStock   int
	MaximumStock   int
	ReorderLevel   int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// BelowReorder indica si el stock actual está en o por debajo del nivel de reorden.
func (l *InventoryLevel) BelowReorder() bool {
	return l.CurrentStock <= l.ReorderLevel
}
