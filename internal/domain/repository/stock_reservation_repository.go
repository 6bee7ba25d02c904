package repository

import (
	"time"

	"github.com/jhoicas/fleetparts-api/internal/domain/entity"
)

// StockReservationRepository puerto de reservas de stock.
type StockReservationRepository interface {
	Create(reservation *entity.StockReservation) error
	// GetActiveByRequest reserva en estado ACTIVE de la solicitud, o nil.
	GetActiveByRequest(partRequestID string) (*entity.StockReservation, error)
	// Resolve cambia el estado solo si la reserva sigue ACTIVE.
	// Devuelve false si otra operación la resolvió antes.
	Resolve(id, status string, resolvedAt time.Time) (bool, error)
	// ListStale reservas ACTIVE con expires_at <= now (candidatas al barrido).
	ListStale(now time.Time, limit int) ([]*entity.StockReservation, error)
	// ListStaleByLevel variante acotada a un nivel, para expiración perezosa.
	ListStaleByLevel(levelID string, now time.Time) ([]*entity.StockReservation, error)
}
