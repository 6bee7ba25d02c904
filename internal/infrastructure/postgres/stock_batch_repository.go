package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/fleetparts-api/internal/domain/entity"
	"github.com/jhoicas/fleetparts-api/internal/domain/repository"
)

var _ repository.StockBatchRepository = (*StockBatchRepo)(nil)

// StockBatchRepo implementación de los lotes FIFO sobre PostgreSQL.
type StockBatchRepo struct {
	q Querier
}

// NewStockBatchRepository construye el adaptador. Acepta pool o tx (Querier).
func NewStockBatchRepository(q Querier) *StockBatchRepo {
	return &StockBatchRepo{q: q}
}

func (r *StockBatchRepo) Create(b *entity.StockBatch) error {
	query := `
		INSERT INTO stock_batches
			(id, inventory_level_id, batch_number, quantity, remaining, unit_cost,
			 reference_type, reference_id, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		b.ID, b.InventoryLevelID, b.BatchNumber, b.Quantity, b.Remaining,
		b.UnitCost, b.ReferenceType, b.ReferenceID, b.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock batch: %w", err)
	}
	return nil
}

// ListAvailableForUpdate lotes con remaining > 0 del nivel, más antiguos
// primero, con las filas bloqueadas (SELECT FOR UPDATE).
func (r *StockBatchRepo) ListAvailableForUpdate(levelID string) ([]*entity.StockBatch, error) {
	query := `
		SELECT id, inventory_level_id, batch_number, quantity, remaining, unit_cost,
		       reference_type, reference_id, received_at
		FROM stock_batches
		WHERE inventory_level_id = $1 AND remaining > 0
		ORDER BY received_at ASC, id ASC
		FOR UPDATE`
	rows, err := r.q.Query(context.Background(), query, levelID)
	if err != nil {
		return nil, fmt.Errorf("list available batches: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockBatch
	for rows.Next() {
		var b entity.StockBatch
		if err := rows.Scan(
			&b.ID, &b.InventoryLevelID, &b.BatchNumber, &b.Quantity, &b.Remaining,
			&b.UnitCost, &b.ReferenceType, &b.ReferenceID, &b.ReceivedAt,
		); err != nil {
			return nil, fmt.Errorf("scan stock batch: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}

// Consume descuenta qty del lote, guardado por la fila: solo aplica si
// remaining >= qty. Devuelve false si no se cumplió.
func (r *StockBatchRepo) Consume(batchID string, qty int) (bool, error) {
	query := `
		UPDATE stock_batches
		SET remaining = remaining - $2
		WHERE id = $1 AND remaining >= $2`
	tag, err := r.q.Exec(context.Background(), query, batchID, qty)
	if err != nil {
		return false, fmt.Errorf("consume stock batch: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
