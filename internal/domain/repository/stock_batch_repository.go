package repository

import "github.com/jhoicas/fleetparts-api/internal/domain/entity"

// StockBatchRepository puerto de los lotes FIFO de un nivel de inventario.
type StockBatchRepository interface {
	Create(batch *entity.StockBatch) error
	// ListAvailableForUpdate lotes con remaining > 0 del nivel, más antiguos
	// primero, con las filas bloqueadas (SELECT FOR UPDATE).
	ListAvailableForUpdate(levelID string) ([]*entity.StockBatch, error)
	// Consume descuenta qty del lote solo si remaining >= qty.
	Consume(batchID string, qty int) (bool, error)
}
