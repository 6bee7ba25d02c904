package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/fleetparts-api/internal/application/ledger"
	"github.com/jhoicas/fleetparts-api/internal/application/reservation"
	"github.com/jhoicas/fleetparts-api/internal/application/workflow"
	"github.com/jhoicas/fleetparts-api/internal/domain/repository"
)

// Ensure TxRunner implements the application-level transaction ports.
var _ ledger.TxRunner = (*TxRunner)(nil)
var _ reservation.TxRunner = (*TxRunner)(nil)
var _ workflow.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción con los repos del libro de stock y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	levelRepo repository.InventoryLevelRepository,
	movementRepo repository.StockMovementRepository,
	batchRepo repository.StockBatchRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	levelRepo := NewInventoryLevelRepository(tx)
	movementRepo := NewStockMovementRepository(tx)
	batchRepo := NewStockBatchRepository(tx)

	if err := fn(levelRepo, movementRepo, batchRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunReservation inicia una transacción con los repos del gestor de reservas
// (para el barrido de expiración).
func (r *TxRunner) RunReservation(ctx context.Context, fn func(
	reservationRepo repository.StockReservationRepository,
	levelRepo repository.InventoryLevelRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	reservationRepo := NewStockReservationRepository(tx)
	levelRepo := NewInventoryLevelRepository(tx)

	if err := fn(reservationRepo, levelRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunWorkflow inicia una transacción con todos los repos que toca la máquina
// de estados de solicitudes: solicitud, historial, reserva y libro de stock
// se escriben como una unidad atómica.
func (r *TxRunner) RunWorkflow(ctx context.Context, fn func(
	requestRepo repository.PartRequestRepository,
	approvalRepo repository.ApprovalHistoryRepository,
	reservationRepo repository.StockReservationRepository,
	levelRepo repository.InventoryLevelRepository,
	movementRepo repository.StockMovementRepository,
	batchRepo repository.StockBatchRepository,
	installedRepo repository.InstalledPartRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	requestRepo := NewPartRequestRepository(tx)
	approvalRepo := NewApprovalHistoryRepository(tx)
	reservationRepo := NewStockReservationRepository(tx)
	levelRepo := NewInventoryLevelRepository(tx)
	movementRepo := NewStockMovementRepository(tx)
	batchRepo := NewStockBatchRepository(tx)
	installedRepo := NewInstalledPartRepository(tx)

	if err := fn(requestRepo, approvalRepo, reservationRepo, levelRepo, movementRepo, batchRepo, installedRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
