package reservation

import (
	"context"

	"github.com/jhoicas/fleetparts-api/internal/domain/repository"
)

// TxRunner transacción acotada a reservas: reserva + nivel se resuelven
// como unidad atómica (barrido de expiradas, liberaciones sueltas).
type TxRunner interface {
	RunReservation(ctx context.Context, fn func(
		reservationRepo repository.StockReservationRepository,
		levelRepo repository.InventoryLevelRepository,
	) error) error
}
