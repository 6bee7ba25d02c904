package ledger

import (
	"context"

	"github.com/jhoicas/fleetparts-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que el InventoryLevel y su fila de
// movimiento se escriban como una unidad atómica.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		levelRepo repository.InventoryLevelRepository,
		movementRepo repository.StockMovementRepository,
		batchRepo repository.StockBatchRepository,
	) error) error
}
