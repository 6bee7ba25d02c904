package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/fleetparts-api/internal/domain/entity"
	"github.com/jhoicas/fleetparts-api/internal/domain/repository"
)

var _ repository.StockReservationRepository = (*StockReservationRepo)(nil)

// StockReservationRepo implementación de reservas sobre PostgreSQL.
type StockReservationRepo struct {
	q Querier
}

// NewStockReservationRepository construye el adaptador. Acepta pool o tx (Querier).
func NewStockReservationRepository(q Querier) *StockReservationRepo {
	return &StockReservationRepo{q: q}
}

const reservationColumns = `id, inventory_level_id, part_request_id,
	reserved_quantity, status, expires_at, created_at, resolved_at`

func (r *StockReservationRepo) Create(res *entity.StockReservation) error {
	query := `
		INSERT INTO stock_reservations
			(id, inventory_level_id, part_request_id, reserved_quantity, status,
			 expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		res.ID, res.InventoryLevelID, res.PartRequestID, res.ReservedQuantity,
		res.Status, res.ExpiresAt, res.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock reservation: %w", err)
	}
	return nil
}

func (r *StockReservationRepo) GetActiveByRequest(partRequestID string) (*entity.StockReservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM stock_reservations
		WHERE part_request_id = $1 AND status = $2`
	var res entity.StockReservation
	err := r.q.QueryRow(context.Background(), query, partRequestID, entity.ReservationActive).Scan(
		&res.ID, &res.InventoryLevelID, &res.PartRequestID, &res.ReservedQuantity,
		&res.Status, &res.ExpiresAt, &res.CreatedAt, &res.ResolvedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active reservation: %w", err)
	}
	return &res, nil
}

// Resolve cambia el estado solo si la reserva sigue ACTIVE. Devuelve false si
// otra operación la resolvió antes.
func (r *StockReservationRepo) Resolve(id, status string, resolvedAt time.Time) (bool, error) {
	query := `
		UPDATE stock_reservations
		SET status = $2, resolved_at = $3
		WHERE id = $1 AND status = $4`
	tag, err := r.q.Exec(context.Background(), query, id, status, resolvedAt, entity.ReservationActive)
	if err != nil {
		return false, fmt.Errorf("resolve reservation: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *StockReservationRepo) ListStale(now time.Time, limit int) ([]*entity.StockReservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM stock_reservations
		WHERE status = $1 AND expires_at <= $2
		ORDER BY expires_at ASC
		LIMIT $3
		FOR UPDATE SKIP LOCKED`
	return r.queryReservations(query, entity.ReservationActive, now, limit)
}

func (r *StockReservationRepo) ListStaleByLevel(levelID string, now time.Time) ([]*entity.StockReservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM stock_reservations
		WHERE inventory_level_id = $1 AND status = $2 AND expires_at <= $3
		ORDER BY expires_at ASC
		FOR UPDATE`
	return r.queryReservations(query, levelID, entity.ReservationActive, now)
}

func (r *StockReservationRepo) queryReservations(query string, args ...any) ([]*entity.StockReservation, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockReservation
	for rows.Next() {
		var res entity.StockReservation
		if err := rows.Scan(
			&res.ID, &res.InventoryLevelID, &res.PartRequestID, &res.ReservedQuantity,
			&res.Status, &res.ExpiresAt, &res.CreatedAt, &res.ResolvedAt,
		); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		list = append(list, &res)
	}
	return list, rows.Err()
}
