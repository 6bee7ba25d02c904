package entity

import "time"

// Estados de una reserva de stock.
const (
	ReservationActive   = "ACTIVE"
	ReservationExpired  = "EXPIRED"
	ReservationReleased = "RELEASED"
	ReservationConsumed = "CONSUMED"
)

// StockReservation reclamo temporal de unidades disponibles a favor de una
// solicitud de repuesto. Se consume en la emisión, se libera al cancelar o
// rechazar, y expira si nadie actúa antes de ExpiresAt.
type StockReservation struct {
	ID               string
	InventoryLevelID string
	PartRequestID    string
	ReservedQuantity int
	Status           string
	ExpiresAt        time.Time
	CreatedAt        time.Time
	ResolvedAt       *time.Time
}

// ActiveAt indica si la reserva sigue vigente en el instante dado.
// Una reserva expirada pero aún no barrida se trata como inactiva.
func (r *StockReservation) ActiveAt(now time.Time) bool {
	return r.Status == ReservationActive && now.Before(r.ExpiresAt)
}
