package repository

import (
	"time"

	"github.com/jhoicas/fleetparts-api/internal/domain/entity"
)

// StockMovementRepository puerto del libro de movimientos (append-only:
// solo Create y lecturas).
type StockMovementRepository interface {
	Create(movement *entity.StockMovement) error
	ListByLevel(levelID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
	ListByReference(referenceType, referenceID string) ([]*entity.StockMovement, error)
}
