package reservation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/fleetparts-api/internal/domain"
	"github.com/jhoicas/fleetparts-api/internal/domain/entity"
	"github.com/jhoicas/fleetparts-api/internal/domain/repository"
)

// ManagerUseCase administra los reclamos temporales contra el stock disponible.
// El decremento de disponible es un update condicional guardado por la fila
// (WHERE available_stock >= qty), nunca read-then-write.
type ManagerUseCase struct {
	txRunner TxRunner
	ttl      time.Duration
}

// NewManagerUseCase construye el gestor. ttl es la vigencia de cada reserva.
func NewManagerUseCase(txRunner TxRunner, ttl time.Duration) *ManagerUseCase {
	return &ManagerUseCase{txRunner: txRunner, ttl: ttl}
}

// TTL vigencia configurada de las reservas.
func (uc *ManagerUseCase) TTL() time.Duration { return uc.ttl }

// ReserveInTx reserva qty unidades del nivel a favor de la solicitud, usando
// los repositorios del caller (misma transacción). El nivel debe venir
// bloqueado con GetForUpdate; sus contadores en memoria quedan sincronizados.
func (uc *ManagerUseCase) ReserveInTx(
	reservationRepo repository.StockReservationRepository,
	levelRepo repository.InventoryLevelRepository,
	level *entity.InventoryLevel,
	partRequestID string,
	qty int,
	now time.Time,
) (*entity.StockReservation, error) {
	ok, err := levelRepo.Reserve(level.ID, qty)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &domain.StockShortage{
			SparePartID: level.SparePartID, StoreID: level.StoreID,
			Requested: qty, Available: level.AvailableStock,
		}
	}
	level.AvailableStock -= qty
	level.ReservedStock += qty

	res := &entity.StockReservation{
		ID:               uuid.New().String(),
		InventoryLevelID: level.ID,
		PartRequestID:    partRequestID,
		ReservedQuantity: qty,
		Status:           entity.ReservationActive,
		ExpiresAt:        now.Add(uc.ttl),
		CreatedAt:        now,
	}
	if err := reservationRepo.Create(res); err != nil {
		return nil, err
	}
	return res, nil
}

// ReleaseInTx resuelve la reserva (RELEASED o EXPIRED) y devuelve las
// unidades a disponible. Idempotente: si otra operación la resolvió antes,
// no toca los contadores.
func (uc *ManagerUseCase) ReleaseInTx(
	reservationRepo repository.StockReservationRepository,
	levelRepo repository.InventoryLevelRepository,
	res *entity.StockReservation,
	status string,
	now time.Time,
) error {
	ok, err := reservationRepo.Resolve(res.ID, status, now)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	ok, err = levelRepo.ReleaseReserved(res.InventoryLevelID, res.ReservedQuantity)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrConflict
	}
	return nil
}

// ConsumeInTx marca la reserva como consumida en la emisión. Los contadores
// del nivel los ajusta el asignador, que descuenta de reservado y de total.
func (uc *ManagerUseCase) ConsumeInTx(
	reservationRepo repository.StockReservationRepository,
	res *entity.StockReservation,
	now time.Time,
) error {
	ok, err := reservationRepo.Resolve(res.ID, entity.ReservationConsumed, now)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrConflict
	}
	return nil
}

// ExpireStaleForLevelInTx expiración perezosa: antes de un chequeo de
// disponibilidad se liberan las reservas del nivel ya vencidas, de modo que
// una reserva expirada nunca bloquea stock aunque el barrido no haya corrido.
func (uc *ManagerUseCase) ExpireStaleForLevelInTx(
	reservationRepo repository.StockReservationRepository,
	levelRepo repository.InventoryLevelRepository,
	level *entity.InventoryLevel,
	now time.Time,
) error {
	stale, err := reservationRepo.ListStaleByLevel(level.ID, now)
	if err != nil {
		return err
	}
	for _, res := range stale {
		if err := uc.ReleaseInTx(reservationRepo, levelRepo, res, entity.ReservationExpired, now); err != nil {
			return err
		}
		level.AvailableStock += res.ReservedQuantity
		level.ReservedStock -= res.ReservedQuantity
	}
	return nil
}

// ExpireStale barrido periódico: libera hasta limit reservas vencidas.
// Devuelve cuántas expiró.
func (uc *ManagerUseCase) ExpireStale(ctx context.Context, limit int) (int, error) {
	expired := 0
	err := uc.txRunner.RunReservation(ctx, func(
		reservationRepo repository.StockReservationRepository,
		levelRepo repository.InventoryLevelRepository,
	) error {
		now := time.Now()
		stale, err := reservationRepo.ListStale(now, limit)
		if err != nil {
			return err
		}
		for _, res := range stale {
			if err := uc.ReleaseInTx(reservationRepo, levelRepo, res, entity.ReservationExpired, now); err != nil {
				return err
			}
			expired++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return expired, nil
}
