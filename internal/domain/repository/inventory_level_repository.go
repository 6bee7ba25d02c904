package repository

import (
	"context"

	"github.com/jhoicas/fleetparts-api/internal/domain/entity"
)

// InventoryLevelRepository puerto de los contadores de stock por (repuesto, almacén).
// Los decrementos de disponible son updates condicionales guardados por el estado
// actual de la fila, no read-then-write.
type InventoryLevelRepository interface {
	Get(sparePartID, storeID string) (*entity.InventoryLevel, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) dentro de una transacción.
	GetForUpdate(sparePartID, storeID string) (*entity.InventoryLevel, error)
	// Create falla con domain.ErrDuplicateInventory si el par ya existe.
	Create(level *entity.InventoryLevel) error
	Update(level *entity.InventoryLevel) error
	// Reserve mueve qty de disponible a reservado solo si available_stock >= qty.
	// Devuelve false si la guarda no se cumple.
	Reserve(levelID string, qty int) (bool, error)
	// ReleaseReserved devuelve qty de reservado a disponible solo si reserved_stock >= qty.
	ReleaseReserved(levelID string, qty int) (bool, error)
	// ListLowStock niveles con current_stock <= reorder_level (comparación
	// columna a columna en la consulta). storeID vacío = todos los almacenes.
	ListLowStock(ctx context.Context, storeID string) ([]*entity.InventoryLevel, error)
	ListByStore(storeID string, limit, offset int) ([]*entity.InventoryLevel, error)
}
