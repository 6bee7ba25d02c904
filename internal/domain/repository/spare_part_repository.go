package repository

import "github.com/jhoicas/fleetparts-api/internal/domain/entity"

// SparePartRepository puerto de catálogo de repuestos.
type SparePartRepository interface {
	GetByID(id string) (*entity.SparePart, error)
	Update(part *entity.SparePart) error
}

// PriceHistoryRepository puerto del historial de precios (append-only).
type PriceHistoryRepository interface {
	Create(entry *entity.PriceHistoryEntry) error
	ListBySparePart(sparePartID string, limit, offset int) ([]*entity.PriceHistoryEntry, error)
}
