package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/fleetparts-api/internal/domain"
	"github.com/jhoicas/fleetparts-api/internal/domain/entity"
	"github.com/jhoicas/fleetparts-api/internal/domain/repository"
)

var _ repository.InventoryLevelRepository = (*InventoryLevelRepo)(nil)

const levelColumns = `id, spare_part_id, store_id, store_name, current_stock,
	available_stock, reserved_stock, damaged_stock, minimum_stock, maximum_stock,
	reorder_level, created_at, updated_at`

// InventoryLevelRepo implementación de InventoryLevelRepository sobre PostgreSQL.
type InventoryLevelRepo struct {
	q Querier
}

// NewInventoryLevelRepository construye el adaptador. Acepta pool o tx (Querier).
func NewInventoryLevelRepository(q Querier) *InventoryLevelRepo {
	return &InventoryLevelRepo{q: q}
}

func scanLevel(row pgx.Row) (*entity.InventoryLevel, error) {
	var l entity.InventoryLevel
	err := row.Scan(
		&l.ID, &l.SparePartID, &l.StoreID, &l.StoreName, &l.CurrentStock,
		&l.AvailableStock, &l.ReservedStock, &l.DamagedStock, &l.MinimumStock,
		&l.MaximumStock, &l.ReorderLevel, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *InventoryLevelRepo) Get(sparePartID, storeID string) (*entity.InventoryLevel, error) {
	query := `
		SELECT ` + levelColumns + `
		FROM inventory_levels
		WHERE spare_part_id = $1 AND store_id = $2`
	level, err := scanLevel(r.q.QueryRow(context.Background(), query, sparePartID, storeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory level: %w", err)
	}
	return level, nil
}

// GetForUpdate obtiene el nivel y bloquea la fila (SELECT FOR UPDATE).
func (r *InventoryLevelRepo) GetForUpdate(sparePartID, storeID string) (*entity.InventoryLevel, error) {
	query := `
		SELECT ` + levelColumns + `
		FROM inventory_levels
		WHERE spare_part_id = $1 AND store_id = $2
		FOR UPDATE`
	level, err := scanLevel(r.q.QueryRow(context.Background(), query, sparePartID, storeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory level for update: %w", err)
	}
	return level, nil
}

func (r *InventoryLevelRepo) Create(level *entity.InventoryLevel) error {
	query := `
		INSERT INTO inventory_levels
			(id, spare_part_id, store_id, store_name, current_stock, available_stock,
			 reserved_stock, damaged_stock, minimum_stock, maximum_stock, reorder_level,
			 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(context.Background(), query,
		level.ID, level.SparePartID, level.StoreID, level.StoreName,
		level.CurrentStock, level.AvailableStock, level.ReservedStock, level.DamagedStock,
		level.MinimumStock, level.MaximumStock, level.ReorderLevel,
		level.CreatedAt, level.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateInventory
		}
		return fmt.Errorf("insert inventory level: %w", err)
	}
	return nil
}

func (r *InventoryLevelRepo) Update(level *entity.InventoryLevel) error {
	query := `
		UPDATE inventory_levels
		SET store_name = $2, current_stock = $3, available_stock = $4,
		    reserved_stock = $5, damaged_stock = $6, minimum_stock = $7,
		    maximum_stock = $8, reorder_level = $9, updated_at = $10
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		level.ID, level.StoreName, level.CurrentStock, level.AvailableStock,
		level.ReservedStock, level.DamagedStock, level.MinimumStock,
		level.MaximumStock, level.ReorderLevel, level.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update inventory level: %w", err)
	}
	return nil
}

// Reserve mueve qty de disponible a reservado, guardado por la fila:
// solo aplica si available_stock >= qty. Devuelve false si no se cumplió.
func (r *InventoryLevelRepo) Reserve(levelID string, qty int) (bool, error) {
	query := `
		UPDATE inventory_levels
		SET available_stock = available_stock - $2,
		    reserved_stock = reserved_stock + $2,
		    updated_at = now()
		WHERE id = $1 AND available_stock >= $2`
	tag, err := r.q.Exec(context.Background(), query, levelID, qty)
	if err != nil {
		return false, fmt.Errorf("reserve stock: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ReleaseReserved devuelve qty de reservado a disponible, guardado por la fila.
func (r *InventoryLevelRepo) ReleaseReserved(levelID string, qty int) (bool, error) {
	query := `
		UPDATE inventory_levels
		SET available_stock = available_stock + $2,
		    reserved_stock = reserved_stock - $2,
		    updated_at = now()
		WHERE id = $1 AND reserved_stock >= $2`
	tag, err := r.q.Exec(context.Background(), query, levelID, qty)
	if err != nil {
		return false, fmt.Errorf("release reserved stock: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListLowStock niveles con current_stock <= reorder_level, mayor déficit primero.
// storeID vacío considera todos los almacenes.
func (r *InventoryLevelRepo) ListLowStock(ctx context.Context, storeID string) ([]*entity.InventoryLevel, error) {
	query := `
		SELECT ` + levelColumns + `
		FROM inventory_levels
		WHERE current_stock <= reorder_level`
	args := []any{}
	if storeID != "" {
		query += ` AND store_id = $1`
		args = append(args, storeID)
	}
	query += ` ORDER BY (reorder_level - current_stock) DESC`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryLevel
	for rows.Next() {
		level, err := scanLevel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory level: %w", err)
		}
		list = append(list, level)
	}
	return list, rows.Err()
}

func (r *InventoryLevelRepo) ListByStore(storeID string, limit, offset int) ([]*entity.InventoryLevel, error) {
	query := `
		SELECT ` + levelColumns + `
		FROM inventory_levels
		WHERE store_id = $1
		ORDER BY updated_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, storeID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list inventory levels by store: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryLevel
	for rows.Next() {
		level, err := scanLevel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory level: %w", err)
		}
		list = append(list, level)
	}
	return list, rows.Err()
}
