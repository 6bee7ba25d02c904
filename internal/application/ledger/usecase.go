package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/fleetparts-api/internal/domain"
	"github.com/jhoicas/fleetparts-api/internal/domain/entity"
	"github.com/jhoicas/fleetparts-api/internal/domain/repository"
)

// StockLedgerUseCase punto único de mutación del stock. Cada llamada actualiza
// el InventoryLevel e inserta exactamente una fila de StockMovement en la misma
// transacción; la aplicación parcial nunca es observable.
type StockLedgerUseCase struct {
	txRunner     TxRunner
	partRepo     repository.SparePartRepository
	levelRepo    repository.InventoryLevelRepository
	movementRepo repository.StockMovementRepository
}

// NewStockLedgerUseCase construye el caso de uso. levelRepo y movementRepo
// van atados al pool y solo se usan para lecturas; las mutaciones pasan por txRunner.
func NewStockLedgerUseCase(
	txRunner TxRunner,
	partRepo repository.SparePartRepository,
	levelRepo repository.InventoryLevelRepository,
	movementRepo repository.StockMovementRepository,
) *StockLedgerUseCase {
	return &StockLedgerUseCase{
		txRunner:     txRunner,
		partRepo:     partRepo,
		levelRepo:    levelRepo,
		movementRepo: movementRepo,
	}
}

// InitializeStockInput entrada para crear el nivel de un (repuesto, almacén).
type InitializeStockInput struct {
	SparePartID  string
	StoreID      string
	StoreName    string
	InitialStock int
	MinimumStock int
	MaximumStock int
	ReorderLevel int
	CreatedBy    string
}

// MovementInput entrada para registrar un movimiento.
// Para ADJUSTMENT, Quantity es el stock físico objetivo (absoluto); para el
// resto, la cantidad positiva a mover. UnitCost es obligatorio en IN.
type MovementInput struct {
	SparePartID   string
	StoreID       string
	Type          string
	Quantity      int
	UnitCost      *decimal.Decimal
	BatchNumber   string
	ReferenceType string
	ReferenceID   string
	Reason        string
	CreatedBy     string
}

// InitializeStock crea el nivel para el par (repuesto, almacén). Falla con
// ErrDuplicateInventory si ya existe. Con stock inicial > 0 registra además
// un movimiento IN con referencia INITIALIZATION, todo en una transacción.
func (uc *StockLedgerUseCase) InitializeStock(ctx context.Context, in InitializeStockInput) (*entity.InventoryLevel, error) {
	if in.SparePartID == "" || in.StoreID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.InitialStock < 0 || in.MinimumStock < 0 || in.MaximumStock < 0 || in.ReorderLevel < 0 {
		return nil, domain.ErrInvalidInput
	}
	part, err := uc.partRepo.GetByID(in.SparePartID)
	if err != nil {
		return nil, err
	}
	if part == nil || part.Lifecycle == entity.PartLifecycleDeleted {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	level := &entity.InventoryLevel{
		ID:           uuid.New().String(),
		SparePartID:  in.SparePartID,
		StoreID:      in.StoreID,
		StoreName:    in.StoreName,
		MinimumStock: in.MinimumStock,
		MaximumStock: in.MaximumStock,
		ReorderLevel: in.ReorderLevel,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = uc.txRunner.Run(ctx, func(
		levelRepo repository.InventoryLevelRepository,
		movementRepo repository.StockMovementRepository,
		batchRepo repository.StockBatchRepository,
	) error {
		if err := levelRepo.Create(level); err != nil {
			return err
		}
		if in.InitialStock == 0 {
			return nil
		}
		cost := part.CostPrice
		_, err := uc.applyMovement(levelRepo, movementRepo, batchRepo, level, MovementInput{
			SparePartID:   in.SparePartID,
			StoreID:       in.StoreID,
			Type:          entity.MovementTypeIN,
			Quantity:      in.InitialStock,
			UnitCost:      &cost,
			ReferenceType: entity.ReferenceInitialization,
			ReferenceID:   level.ID,
			Reason:        "stock inicial",
			CreatedBy:     in.CreatedBy,
		}, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return level, nil
}

// RecordMovement valida y registra un movimiento sobre el nivel del par
// (repuesto, almacén), bloqueando la fila dentro de la transacción.
func (uc *StockLedgerUseCase) RecordMovement(ctx context.Context, in MovementInput) (*entity.StockMovement, error) {
	if err := validateMovement(in); err != nil {
		return nil, err
	}
	part, err := uc.partRepo.GetByID(in.SparePartID)
	if err != nil {
		return nil, err
	}
	if part == nil {
		return nil, domain.ErrNotFound
	}
	if in.UnitCost == nil {
		in.UnitCost = &part.CostPrice
	}

	now := time.Now()
	var movement *entity.StockMovement
	err = uc.txRunner.Run(ctx, func(
		levelRepo repository.InventoryLevelRepository,
		movementRepo repository.StockMovementRepository,
		batchRepo repository.StockBatchRepository,
	) error {
		level, err := levelRepo.GetForUpdate(in.SparePartID, in.StoreID)
		if err != nil {
			return err
		}
		if level == nil {
			return domain.ErrNotFound
		}
		movement, err = uc.applyMovement(levelRepo, movementRepo, batchRepo, level, in, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

// ApplyMovementInTx aplica un movimiento usando los repositorios del caller
// (misma transacción). El nivel debe venir ya bloqueado con GetForUpdate.
func (uc *StockLedgerUseCase) ApplyMovementInTx(
	levelRepo repository.InventoryLevelRepository,
	movementRepo repository.StockMovementRepository,
	batchRepo repository.StockBatchRepository,
	level *entity.InventoryLevel,
	in MovementInput,
	now time.Time,
) (*entity.StockMovement, error) {
	return uc.applyMovement(levelRepo, movementRepo, batchRepo, level, in, now)
}

// applyMovement calcula el delta según el tipo, actualiza los contadores y
// escribe la fila del libro. Los tipos de salida fallan con StockShortage si
// la cantidad supera lo disponible (no el total).
func (uc *StockLedgerUseCase) applyMovement(
	levelRepo repository.InventoryLevelRepository,
	movementRepo repository.StockMovementRepository,
	batchRepo repository.StockBatchRepository,
	level *entity.InventoryLevel,
	in MovementInput,
	now time.Time,
) (*entity.StockMovement, error) {
	previous := level.CurrentStock
	unitCost := decimal.Zero
	if in.UnitCost != nil {
		unitCost = *in.UnitCost
	}
	quantity := in.Quantity // con signo en la fila del libro
	batchID := ""

	switch in.Type {
	case entity.MovementTypeIN, entity.MovementTypeRETURN:
		level.CurrentStock += in.Quantity
		level.AvailableStock += in.Quantity
		batch, err := uc.createBatch(batchRepo, level, in, unitCost, now)
		if err != nil {
			return nil, err
		}
		batchID = batch.ID

	case entity.MovementTypeDAMAGED:
		if in.Quantity > level.AvailableStock {
			return nil, &domain.StockShortage{
				SparePartID: level.SparePartID, StoreID: level.StoreID,
				Requested: in.Quantity, Available: level.AvailableStock,
			}
		}
		// Reclasificación disponible -> dañado; el stock total no cambia.
		level.AvailableStock -= in.Quantity
		level.DamagedStock += in.Quantity
		if err := uc.drainBatches(batchRepo, level.ID, in.Quantity); err != nil {
			return nil, err
		}
		quantity = -in.Quantity

	case entity.MovementTypeOUT, entity.MovementTypeTRANSFER:
		if in.Quantity > level.AvailableStock {
			return nil, &domain.StockShortage{
				SparePartID: level.SparePartID, StoreID: level.StoreID,
				Requested: in.Quantity, Available: level.AvailableStock,
			}
		}
		level.CurrentStock -= in.Quantity
		level.AvailableStock -= in.Quantity
		if err := uc.drainBatches(batchRepo, level.ID, in.Quantity); err != nil {
			return nil, err
		}
		quantity = -in.Quantity

	case entity.MovementTypeADJUSTMENT:
		// Quantity trae el objetivo absoluto; el libro registra el delta.
		delta := in.Quantity - level.CurrentStock
		if delta == 0 {
			return nil, domain.ErrInvalidInput
		}
		if delta > 0 {
			level.CurrentStock += delta
			level.AvailableStock += delta
			batch, err := uc.createBatch(batchRepo, level, MovementInput{
				Quantity:      delta,
				BatchNumber:   in.BatchNumber,
				ReferenceType: in.ReferenceType,
				ReferenceID:   in.ReferenceID,
			}, unitCost, now)
			if err != nil {
				return nil, err
			}
			batchID = batch.ID
		} else {
			if -delta > level.AvailableStock {
				return nil, &domain.StockShortage{
					SparePartID: level.SparePartID, StoreID: level.StoreID,
					Requested: -delta, Available: level.AvailableStock,
				}
			}
			level.CurrentStock += delta
			level.AvailableStock += delta
			if err := uc.drainBatches(batchRepo, level.ID, -delta); err != nil {
				return nil, err
			}
		}
		quantity = delta

	default:
		return nil, domain.ErrInvalidInput
	}

	level.UpdatedAt = now
	if err := levelRepo.Update(level); err != nil {
		return nil, err
	}
	movement := &entity.StockMovement{
		ID:               uuid.New().String(),
		InventoryLevelID: level.ID,
		BatchID:          batchID,
		Type:             in.Type,
		Quantity:         quantity,
		PreviousStock:    previous,
		NewStock:         level.CurrentStock,
		UnitCost:         unitCost,
		ReferenceType:    in.ReferenceType,
		ReferenceID:      in.ReferenceID,
		Reason:           in.Reason,
		CreatedBy:        in.CreatedBy,
		CreatedAt:        now,
	}
	if err := movementRepo.Create(movement); err != nil {
		return nil, err
	}
	return movement, nil
}

// createBatch crea el lote FIFO de una entrada.
func (uc *StockLedgerUseCase) createBatch(
	batchRepo repository.StockBatchRepository,
	level *entity.InventoryLevel,
	in MovementInput,
	unitCost decimal.Decimal,
	now time.Time,
) (*entity.StockBatch, error) {
	batch := &entity.StockBatch{
		ID:               uuid.New().String(),
		InventoryLevelID: level.ID,
		BatchNumber:      in.BatchNumber,
		Quantity:         in.Quantity,
		Remaining:        in.Quantity,
		UnitCost:         unitCost,
		ReferenceType:    in.ReferenceType,
		ReferenceID:      in.ReferenceID,
		ReceivedAt:       now,
	}
	if err := batchRepo.Create(batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// drainBatches consume qty de los lotes más antiguos primero. El caller ya
// validó contra el disponible del nivel; si los lotes no alcanzan, los datos
// están inconsistentes y se aborta la transacción.
func (uc *StockLedgerUseCase) drainBatches(batchRepo repository.StockBatchRepository, levelID string, qty int) error {
	batches, err := batchRepo.ListAvailableForUpdate(levelID)
	if err != nil {
		return err
	}
	remaining := qty
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
			return err
		}
		if !ok {
			return domain.ErrConflict
		}
		remaining -= take
	}
	if remaining > 0 {
		return domain.ErrConflict
	}
	return nil
}

// ReturnInTx registra la devolución de unidades emitidas, usando los
// repositorios del caller (misma transacción; nivel bloqueado). En buena
// condición restaura el disponible con un movimiento RETURN y un lote
// re-emitible; en condición dañada el movimiento es DAMAGED entrante:
// aumenta el stock total y el dañado sin tocar el disponible.
func (uc *StockLedgerUseCase) ReturnInTx(
	levelRepo repository.InventoryLevelRepository,
	movementRepo repository.StockMovementRepository,
	batchRepo repository.StockBatchRepository,
	level *entity.InventoryLevel,
	qty int,
	damaged bool,
	unitCost decimal.Decimal,
	referenceID, reason, actor string,
	now time.Time,
) (*entity.StockMovement, error) {
	if qty <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if !damaged {
		return uc.applyMovement(levelRepo, movementRepo, batchRepo, level, MovementInput{
			SparePartID:   level.SparePartID,
			StoreID:       level.StoreID,
			Type:          entity.MovementTypeRETURN,
			Quantity:      qty,
			UnitCost:      &unitCost,
			ReferenceType: entity.ReferenceReturn,
			ReferenceID:   referenceID,
			Reason:        reason,
			CreatedBy:     actor,
		}, now)
	}

	previous := level.CurrentStock
	level.CurrentStock += qty
	level.DamagedStock += qty
	level.UpdatedAt = now
	if err := levelRepo.Update(level); err != nil {
		return nil, err
	}
	movement := &entity.StockMovement{
		ID:               uuid.New().String(),
		InventoryLevelID: level.ID,
		Type:             entity.MovementTypeDAMAGED,
		Quantity:         qty,
		PreviousStock:    previous,
		NewStock:         level.CurrentStock,
		UnitCost:         unitCost,
		ReferenceType:    entity.ReferenceReturn,
		ReferenceID:      referenceID,
		Reason:           reason,
		CreatedBy:        actor,
		CreatedAt:        now,
	}
	if err := movementRepo.Create(movement); err != nil {
		return nil, err
	}
	return movement, nil
}

// GetLevel devuelve el nivel del par (repuesto, almacén).
func (uc *StockLedgerUseCase) GetLevel(sparePartID, storeID string) (*entity.InventoryLevel, error) {
	if sparePartID == "" || storeID == "" {
		return nil, domain.ErrInvalidInput
	}
	level, err := uc.levelRepo.Get(sparePartID, storeID)
	if err != nil {
		return nil, err
	}
	if level == nil {
		return nil, domain.ErrNotFound
	}
	return level, nil
}

// ListLowStock niveles en o por debajo de su nivel de reorden.
func (uc *StockLedgerUseCase) ListLowStock(ctx context.Context, storeID string) ([]*entity.InventoryLevel, error) {
	return uc.levelRepo.ListLowStock(ctx, storeID)
}

// ListMovements movimientos del nivel del par (repuesto, almacén).
func (uc *StockLedgerUseCase) ListMovements(sparePartID, storeID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	level, err := uc.GetLevel(sparePartID, storeID)
	if err != nil {
		return nil, err
	}
	return uc.movementRepo.ListByLevel(level.ID, from, to, limit, offset)
}

// CountItem una línea del conteo físico.
type CountItem struct {
	SparePartID   string
	PhysicalCount int
}

// CountAdjustment resultado por línea del conteo.
type CountAdjustment struct {
	SparePartID string
	Previous    int
	Counted     int
	Variance    int
	Adjusted    bool
}

// StockCount registra un conteo físico: por cada línea con varianza aplica un
// ADJUSTMENT con referencia STOCK_COUNT. Todo el conteo corre en una transacción.
func (uc *StockLedgerUseCase) StockCount(ctx context.Context, storeID string, items []CountItem, countedBy string) ([]CountAdjustment, int, error) {
	if storeID == "" || len(items) == 0 {
		return nil, 0, domain.ErrInvalidInput
	}
	results := make([]CountAdjustment, 0, len(items))
	totalVariance := 0
	err := uc.txRunner.Run(ctx, func(
		levelRepo repository.InventoryLevelRepository,
		movementRepo repository.StockMovementRepository,
		batchRepo repository.StockBatchRepository,
	) error {
		now := time.Now()
		for _, item := range items {
			if item.PhysicalCount < 0 {
				return domain.ErrInvalidInput
			}
			level, err := levelRepo.GetForUpdate(item.SparePartID, storeID)
			if err != nil {
				return err
			}
			if level == nil {
				return domain.ErrNotFound
			}
			variance := item.PhysicalCount - level.CurrentStock
			adj := CountAdjustment{
				SparePartID: item.SparePartID,
				Previous:    level.CurrentStock,
				Counted:     item.PhysicalCount,
				Variance:    variance,
			}
			if variance != 0 {
				_, err = uc.applyMovement(levelRepo, movementRepo, batchRepo, level, MovementInput{
					SparePartID:   item.SparePartID,
					StoreID:       storeID,
					Type:          entity.MovementTypeADJUSTMENT,
					Quantity:      item.PhysicalCount,
					ReferenceType: entity.ReferenceStockCount,
					Reason:        "conteo físico",
					CreatedBy:     countedBy,
				}, now)
				if err != nil {
					return err
				}
				adj.Adjusted = true
			}
			totalVariance += variance
			results = append(results, adj)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return results, totalVariance, nil
}

func validateMovement(in MovementInput) error {
	if in.SparePartID == "" || in.StoreID == "" {
		return domain.ErrInvalidInput
	}
	switch in.Type {
	case entity.MovementTypeADJUSTMENT:
		if in.Quantity < 0 {
			return domain.ErrInvalidInput
		}
	case entity.MovementTypeIN:
		if in.Quantity <= 0 || in.UnitCost == nil || in.UnitCost.LessThan(decimal.Zero) {
			return domain.ErrInvalidInput
		}
	case entity.MovementTypeOUT, entity.MovementTypeTRANSFER, entity.MovementTypeDAMAGED, entity.MovementTypeRETURN:
		if in.Quantity <= 0 {
			return domain.ErrInvalidInput
		}
	default:
		return domain.ErrInvalidInput
	}
	return nil
}
