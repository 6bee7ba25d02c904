package issuance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/fleetparts-api/internal/domain"
	"github.com/jhoicas/fleetparts-api/internal/domain/entity"
	"github.com/jhoicas/fleetparts-api/internal/domain/repository"
)

// AllocatorUseCase selecciona qué unidades de stock consumir para una
// solicitud aprobada, con política FIFO: lotes más antiguos primero. La
// asignación es todo-o-nada; si los lotes no cubren la cantidad pedida la
// transacción se aborta y el stock queda intacto.
type AllocatorUseCase struct{}

// NewAllocatorUseCase construye el asignador.
func NewAllocatorUseCase() *AllocatorUseCase {
	return &AllocatorUseCase{}
}

// Allocation resultado agregado de una emisión.
type Allocation struct {
	IssuedQuantity int
	TotalCost      decimal.Decimal
	BatchIDs       []string // en el orden FIFO consumido
}

// AllocateInTx consume RequestedQuantity del nivel (ya bloqueado con
// GetForUpdate) usando los repositorios del caller. Cada lote consumido
// registra su propio movimiento OUT al costo unitario de ese lote, así que
// una emisión puede generar varias filas en el libro.
//
// fromReserved indica si las unidades salen del stock reservado (reserva
// activa consumida en esta misma transacción) o del disponible. La
// disponibilidad se revalida aquí, independiente del chequeo hecho al
// aprobar: entre ambos pasa tiempo y el stock puede haber cambiado.
func (uc *AllocatorUseCase) AllocateInTx(
	levelRepo repository.InventoryLevelRepository,
	movementRepo repository.StockMovementRepository,
	batchRepo repository.StockBatchRepository,
	level *entity.InventoryLevel,
	req *entity.PartRequest,
	fromReserved bool,
	now time.Time,
) (*Allocation, error) {
	qty := req.RequestedQuantity
	if fromReserved {
		if level.ReservedStock < qty {
			return nil, &domain.StockShortage{
				SparePartID: level.SparePartID, StoreID: level.StoreID,
				Requested: qty, Available: level.AvailableStock,
			}
		}
		level.ReservedStock -= qty
	} else {
		if level.AvailableStock < qty {
			return nil, &domain.StockShortage{
				SparePartID: level.SparePartID, StoreID: level.StoreID,
				Requested: qty, Available: level.AvailableStock,
			}
		}
		level.AvailableStock -= qty
	}
	level.CurrentStock -= qty

	batches, err := batchRepo.ListAvailableForUpdate(level.ID)
	if err != nil {
		return nil, err
	}

	alloc := &Allocation{TotalCost: decimal.Zero}
	remaining := qty
	running := level.CurrentStock + qty
	for _, b := range batches {
		if remaining == 0 {
			break
		}
		take := b.Remaining
		if take > remaining {
			take = remaining
		}
		ok, err := batchRepo.Consume(b.ID, take)
		if err != nil {
			return nil, err
		}
		if !ok {
			// Otro escritor drenó el lote entre el listado y el consumo.
			return nil, domain.ErrConflict
		}
		movement := &entity.StockMovement{
			ID:               uuid.New().String(),
			InventoryLevelID: level.ID,
			BatchID:          b.ID,
			Type:             entity.MovementTypeOUT,
			Quantity:         -take,
			PreviousStock:    running,
			NewStock:         running - take,
			UnitCost:         b.UnitCost,
			ReferenceType:    entity.ReferenceServiceRequest,
			ReferenceID:      req.ID,
			Reason:           "emisión de repuesto",
			CreatedBy:        req.RequestedBy,
			CreatedAt:        now,
		}
		if err := movementRepo.Create(movement); err != nil {
			return nil, err
		}
		running -= take
		remaining -= take
		alloc.IssuedQuantity += take
		alloc.TotalCost = alloc.TotalCost.Add(b.UnitCost.Mul(decimal.NewFromInt(int64(take))))
		alloc.BatchIDs = append(alloc.BatchIDs, b.ID)
	}
	if remaining > 0 {
		// Los lotes no cubren lo pedido: carrera entre el chequeo de
		// aprobación y el consumo. Nunca se emite de menos en silencio.
		return nil, &domain.StockShortage{
			SparePartID: level.SparePartID, StoreID: level.StoreID,
			Requested: qty, Available: qty - remaining,
		}
	}

	level.UpdatedAt = now
	if err := levelRepo.Update(level); err != nil {
		return nil, err
	}
	return alloc, nil
}
