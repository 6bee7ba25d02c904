package workflow

import (
	"context"

	"github.com/jhoicas/fleetparts-api/internal/domain/entity"
	"github.com/jhoicas/fleetparts-api/internal/domain/repository"
)

// TxRunner transacción del workflow: estado de la solicitud, historial de
// aprobación, reserva y libro de stock se escriben como una unidad atómica.
type TxRunner interface {
	RunWorkflow(ctx context.Context, fn func(
		requestRepo repository.PartRequestRepository,
		approvalRepo repository.ApprovalHistoryRepository,
		reservationRepo repository.StockReservationRepository,
		levelRepo repository.InventoryLevelRepository,
		movementRepo repository.StockMovementRepository,
		batchRepo repository.StockBatchRepository,
		installedRepo repository.InstalledPartRepository,
	) error) error
}

// ServiceJobProvider colaborador externo dueño de las órdenes de servicio.
type ServiceJobProvider interface {
	GetJob(id string) (*entity.ServiceJob, error)
	SetJobStatus(id, status string) error
}

// CostRecalculator recalcula el desglose de costos de una orden; se invoca
// después de cada instalación, devolución o reemplazo.
type CostRecalculator interface {
	Recalculate(ctx context.Context, serviceRequestID string) (*entity.ServiceCostBreakdown, error)
}
