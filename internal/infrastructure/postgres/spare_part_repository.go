package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/fleetparts-api/internal/domain/entity"
	"github.com/jhoicas/fleetparts-api/internal/domain/repository"
)

var _ repository.SparePartRepository = (*SparePartRepo)(nil)
var _ repository.PriceHistoryRepository = (*PriceHistoryRepo)(nil)

// SparePartRepo implementación del catálogo de repuestos sobre PostgreSQL.
type SparePartRepo struct {
	q Querier
}

// NewSparePartRepository construye el adaptador. Acepta pool o tx (Querier).
func NewSparePartRepository(q Querier) *SparePartRepo {
	return &SparePartRepo{q: q}
}

func (r *SparePartRepo) GetByID(id string) (*entity.SparePart, error) {
	query := `
		SELECT id, part_number, name, category_id, supplier_id, cost_price,
		       selling_price, markup_percent, warranty_months, lifecycle,
		       created_at, updated_at
		FROM spare_parts WHERE id = $1`
	var p entity.SparePart
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&p.ID, &p.PartNumber, &p.Name, &p.CategoryID, &p.SupplierID, &p.CostPrice,
		&p.SellingPrice, &p.MarkupPercent, &p.WarrantyMonths, &p.Lifecycle,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get spare part: %w", err)
	}
	return &p, nil
}

func (r *SparePartRepo) Update(p *entity.SparePart) error {
	query := `
		UPDATE spare_parts
		SET name = $2, category_id = $3, supplier_id = $4, cost_price = $5,
		    selling_price = $6, markup_percent = $7, warranty_months = $8,
		    lifecycle = $9, updated_at = $10
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		p.ID, p.Name, p.CategoryID, p.SupplierID, p.CostPrice,
		p.SellingPrice, p.MarkupPercent, p.WarrantyMonths, p.Lifecycle, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update spare part: %w", err)
	}
	return nil
}

// PriceHistoryRepo implementación del historial de precios (append-only).
type PriceHistoryRepo struct {
	q Querier
}

// NewPriceHistoryRepository construye el adaptador. Acepta pool o tx (Querier).
func NewPriceHistoryRepository(q Querier) *PriceHistoryRepo {
	return &PriceHistoryRepo{q: q}
}

func (r *PriceHistoryRepo) Create(e *entity.PriceHistoryEntry) error {
	query := `
		INSERT INTO price_history
			(id, spare_part_id, old_cost_price, new_cost_price, old_selling_price,
			 new_selling_price, reason, changed_by, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		e.ID, e.SparePartID, e.OldCostPrice, e.NewCostPrice, e.OldSellingPrice,
		e.NewSellingPrice, e.Reason, e.ChangedBy, e.ChangedAt,
	)
	if err != nil {
		return fmt.Errorf("insert price history: %w", err)
	}
	return nil
}

func (r *PriceHistoryRepo) ListBySparePart(sparePartID string, limit, offset int) ([]*entity.PriceHistoryEntry, error) {
	query := `
		SELECT id, spare_part_id, old_cost_price, new_cost_price, old_selling_price,
		       new_selling_price, reason, changed_by, changed_at
		FROM price_history
		WHERE spare_part_id = $1
		ORDER BY changed_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, sparePartID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list price history: %w", err)
	}
	defer rows.Close()
	var list []*entity.PriceHistoryEntry
	for rows.Next() {
		var e entity.PriceHistoryEntry
		if err := rows.Scan(
			&e.ID, &e.SparePartID, &e.OldCostPrice, &e.NewCostPrice,
			&e.OldSellingPrice, &e.NewSellingPrice, &e.Reason, &e.ChangedBy, &e.ChangedAt,
		); err != nil {
			return nil, fmt.Errorf("scan price history: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
