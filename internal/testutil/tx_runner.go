package testutil

import (
	"context"

	"github.com/jhoicas/fleetparts-api/internal/application/ledger"
	"github.com/jhoicas/fleetparts-api/internal/application/reservation"
	"github.com/jhoicas/fleetparts-api/internal/application/workflow"
	"github.com/jhoicas/fleetparts-api/internal/domain/repository"
)

var (
	_ ledger.TxRunner      = (*TxRunner)(nil)
	_ reservation.TxRunner = (*TxRunner)(nil)
	_ workflow.TxRunner    = (*TxRunner)(nil)
)

// TxRunner fake que ejecuta los callbacks sobre los repos en memoria. El mutex
// de transacción serializa los callbacks, igual que los locks de fila en las
// transacciones reales: dos workflows concurrentes sobre el mismo nivel nunca
// se intercalan.
type TxRunner struct {
	s *MemStore
}

// NewTxRunner construye el runner fake sobre el store dado.
func NewTxRunner(s *MemStore) *TxRunner {
	return &TxRunner{s: s}
}

// Run ejecuta fn con repos del libro de stock.
func (r *TxRunner) Run(_ context.Context, fn func(
	levelRepo repository.InventoryLevelRepository,
	movementRepo repository.StockMovementRepository,
	batchRepo repository.StockBatchRepository,
) error) error {
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()
	return fn(NewInventoryLevelRepo(r.s), NewStockMovementRepo(r.s), NewStockBatchRepo(r.s))
}

// RunReservation ejecuta fn con repos de reservas.
func (r *TxRunner) RunReservation(_ context.Context, fn func(
	reservationRepo repository.StockReservationRepository,
	levelRepo repository.InventoryLevelRepository,
) error) error {
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()
	return fn(NewStockReservationRepo(r.s), NewInventoryLevelRepo(r.s))
}

// RunWorkflow ejecuta fn con el juego completo de repos del workflow.
func (r *TxRunner) RunWorkflow(_ context.Context, fn func(
	requestRepo repository.PartRequestRepository,
	approvalRepo repository.ApprovalHistoryRepository,
	reservationRepo repository.StockReservationRepository,
	levelRepo repository.InventoryLevelRepository,
	movementRepo repository.StockMovementRepository,
	batchRepo repository.StockBatchRepository,
	installedRepo repository.InstalledPartRepository,
) error) error {
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()
	return fn(
		NewPartRequestRepo(r.s),
		NewApprovalHistoryRepo(r.s),
		NewStockReservationRepo(r.s),
		NewInventoryLevelRepo(r.s),
		NewStockMovementRepo(r.s),
		NewStockBatchRepo(r.s),
		NewInstalledPartRepo(r.s),
	)
}
