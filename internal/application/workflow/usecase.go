package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/fleetparts-api/internal/application/issuance"
	"github.com/jhoicas/fleetparts-api/internal/application/ledger"
	"github.com/jhoicas/fleetparts-api/internal/application/reservation"
	"github.com/jhoicas/fleetparts-api/internal/domain"
	"github.com/jhoicas/fleetparts-api/internal/domain/entity"
	"github.com/jhoicas/fleetparts-api/internal/domain/parts"
	"github.com/jhoicas/fleetparts-api/internal/domain/repository"
)

// Config políticas del workflow inyectadas por despliegue.
type Config struct {
	// DefaultAutoApprove umbral de auto-aprobación cuando el técnico no tiene
	// límite configurado (₹500 por defecto).
	DefaultAutoApprove decimal.Decimal
	// AutoIssue si las solicitudes aprobadas se emiten en la misma operación.
	AutoIssue bool
}

// RequestWorkflowUseCase máquina de estados de la solicitud de repuesto:
// Pending -> Approved -> Issued -> Installed -> Returned, con Rejected solo
// desde Pending y cancelación desde Pending o Approved.
type RequestWorkflowUseCase struct {
	txRunner      TxRunner
	partRepo      repository.SparePartRepository
	limitRepo     repository.TechnicianLimitRepository
	requestRepo   repository.PartRequestRepository
	approvalRepo  repository.ApprovalHistoryRepository
	installedRepo repository.InstalledPartRepository
	jobs          ServiceJobProvider
	reservations  *reservation.ManagerUseCase
	stockLedger   *ledger.StockLedgerUseCase
	allocator     *issuance.AllocatorUseCase
	costs         CostRecalculator
	cfg           Config
}

// NewRequestWorkflowUseCase construye el workflow. requestRepo, approvalRepo e
// installedRepo van atados al pool y solo se usan para lecturas; las
// mutaciones pasan por txRunner.
func NewRequestWorkflowUseCase(
	txRunner TxRunner,
	partRepo repository.SparePartRepository,
	limitRepo repository.TechnicianLimitRepository,
	requestRepo repository.PartRequestRepository,
	approvalRepo repository.ApprovalHistoryRepository,
	installedRepo repository.InstalledPartRepository,
	jobs ServiceJobProvider,
	reservations *reservation.ManagerUseCase,
	stockLedger *ledger.StockLedgerUseCase,
	allocator *issuance.AllocatorUseCase,
	costs CostRecalculator,
	cfg Config,
) *RequestWorkflowUseCase {
	return &RequestWorkflowUseCase{
		txRunner:      txRunner,
		partRepo:      partRepo,
		limitRepo:     limitRepo,
		requestRepo:   requestRepo,
		approvalRepo:  approvalRepo,
		installedRepo: installedRepo,
		jobs:          jobs,
		reservations:  reservations,
		stockLedger:   stockLedger,
		allocator:     allocator,
		costs:         costs,
		cfg:           cfg,
	}
}

// CreateRequestInput entrada para crear una solicitud.
type CreateRequestInput struct {
	ServiceRequestID string
	SparePartID      string
	TechnicianID     string
	StoreID          string // vacío = almacén de la orden de servicio
	Quantity         int
	Urgency          string
	Justification    string
}

// CreateRequest valida la orden y el repuesto, calcula el costo estimado,
// evalúa el límite del técnico y decide auto-aprobación. Auto-aprueba solo si
// el disponible cubre lo pedido y el límite lo permite; en ese caso reserva y,
// según política, emite de inmediato. Si no, queda Pending y, con stock
// insuficiente, la orden pasa a "en espera de repuestos".
func (uc *RequestWorkflowUseCase) CreateRequest(ctx context.Context, in CreateRequestInput) (*entity.PartRequest, error) {
	if in.ServiceRequestID == "" || in.SparePartID == "" || in.TechnicianID == "" || in.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	urgency := in.Urgency
	switch urgency {
	case "":
		urgency = entity.UrgencyNormal
	case entity.UrgencyNormal, entity.UrgencyUrgent, entity.UrgencyEmergency:
	default:
		return nil, domain.ErrInvalidInput
	}

	job, err := uc.jobs.GetJob(in.ServiceRequestID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, domain.ErrNotFound
	}
	part, err := uc.partRepo.GetByID(in.SparePartID)
	if err != nil {
		return nil, err
	}
	if part == nil || part.Lifecycle == entity.PartLifecycleDeleted {
		return nil, domain.ErrNotFound
	}
	if part.Lifecycle != entity.PartLifecycleActive {
		return nil, domain.ErrConflict
	}
	storeID := in.StoreID
	if storeID == "" {
		storeID = job.StoreID
	}

	estimated := parts.EstimatedCost(part.SellingPrice, in.Quantity)
	autoApprove, err := uc.evaluateLimit(in.TechnicianID, part, in.Quantity, estimated)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	request := &entity.PartRequest{
		ID:                uuid.New().String(),
		ServiceRequestID:  in.ServiceRequestID,
		SparePartID:       in.SparePartID,
		StoreID:           storeID,
		RequestedBy:       in.TechnicianID,
		RequestedQuantity: in.Quantity,
		Urgency:           urgency,
		Justification:     in.Justification,
		EstimatedCost:     estimated,
		Status:            entity.RequestPending,
		IssuedCost:        decimal.Zero,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	stockShort := false
	err = uc.txRunner.RunWorkflow(ctx, func(
		requestRepo repository.PartRequestRepository,
		approvalRepo repository.ApprovalHistoryRepository,
		reservationRepo repository.StockReservationRepository,
		levelRepo repository.InventoryLevelRepository,
		movementRepo repository.StockMovementRepository,
		batchRepo repository.StockBatchRepository,
		_ repository.InstalledPartRepository,
	) error {
		level, err := levelRepo.GetForUpdate(in.SparePartID, storeID)
		if err != nil {
			return err
		}
		available := 0
		if level != nil {
			if err := uc.reservations.ExpireStaleForLevelInTx(reservationRepo, levelRepo, level, now); err != nil {
				return err
			}
			available = level.AvailableStock
		}
		stockOK := available >= in.Quantity

		if autoApprove && stockOK {
			request.Status = entity.RequestApproved
			request.ApprovalLevel = 1
			if err := requestRepo.Create(request); err != nil {
				return err
			}
			if err := approvalRepo.Create(&entity.ApprovalHistory{
				ID:               uuid.New().String(),
				PartRequestID:    request.ID,
				Level:            1,
				Approver:         entity.SystemApprover,
				Decision:         entity.DecisionApproved,
				Comments:         "auto-aprobada dentro del límite del técnico",
				AvailableAtCheck: available,
				CreatedAt:        now,
			}); err != nil {
				return err
			}
			if _, err := uc.reservations.ReserveInTx(reservationRepo, levelRepo, level, request.ID, in.Quantity, now); err != nil {
				return err
			}
			if uc.cfg.AutoIssue {
				if _, err := uc.issueLocked(requestRepo, reservationRepo, levelRepo, movementRepo, batchRepo, request, level, now); err != nil {
					return err
				}
			}
			return nil
		}

		stockShort = !stockOK
		comment := "requiere aprobación manual"
		if stockShort {
			comment = "stock insuficiente al crear la solicitud"
		}
		if err := requestRepo.Create(request); err != nil {
			return err
		}
		return approvalRepo.Create(&entity.ApprovalHistory{
			ID:               uuid.New().String(),
			PartRequestID:    request.ID,
			Approver:         entity.SystemApprover,
			Decision:         entity.DecisionPending,
			Comments:         comment,
			AvailableAtCheck: available,
			CreatedAt:        now,
		})
	})
	if err != nil {
		return nil, err
	}

	if stockShort {
		if err := uc.jobs.SetJobStatus(job.ID, entity.JobStatusAwaitingParts); err != nil {
			return nil, err
		}
	}
	return request, nil
}

// evaluateLimit aplica el límite del técnico: el límite por repuesto tiene
// precedencia sobre el de categoría; sin límite rige el umbral por defecto.
// Superar un tope duro sin vía de aprobación es ErrPolicyViolation.
func (uc *RequestWorkflowUseCase) evaluateLimit(technicianID string, part *entity.SparePart, qty int, estimated decimal.Decimal) (bool, error) {
	limit, err := uc.limitRepo.GetForPart(technicianID, part.ID)
	if err != nil {
		return false, err
	}
	if limit == nil {
		limit, err = uc.limitRepo.GetForCategory(technicianID, part.CategoryID)
		if err != nil {
			return false, err
		}
	}
	if limit == nil {
		return estimated.LessThanOrEqual(uc.cfg.DefaultAutoApprove), nil
	}
	if limit.MaxQuantityPerRequest > 0 && qty > limit.MaxQuantityPerRequest {
		return false, domain.ErrPolicyViolation
	}
	if limit.MaxValuePerRequest.IsPositive() && estimated.GreaterThan(limit.MaxValuePerRequest) {
		return false, domain.ErrPolicyViolation
	}
	if limit.RequiresApproval {
		return false, nil
	}
	if limit.AutoApproveBelow.IsPositive() {
		return estimated.LessThanOrEqual(limit.AutoApproveBelow), nil
	}
	return true, nil
}

// Approve aprueba una solicitud Pending. Revalida la disponibilidad (el stock
// pudo cambiar desde la creación), reserva y, según política, emite.
func (uc *RequestWorkflowUseCase) Approve(ctx context.Context, requestID, approverID, comments string) error {
	if requestID == "" || approverID == "" {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.RunWorkflow(ctx, func(
		requestRepo repository.PartRequestRepository,
		approvalRepo repository.ApprovalHistoryRepository,
		reservationRepo repository.StockReservationRepository,
		levelRepo repository.InventoryLevelRepository,
		movementRepo repository.StockMovementRepository,
		batchRepo repository.StockBatchRepository,
		_ repository.InstalledPartRepository,
	) error {
		now := time.Now()
		request, err := requestRepo.GetForUpdate(requestID)
		if err != nil {
			return err
		}
		if request == nil {
			return domain.ErrNotFound
		}
		if request.Status != entity.RequestPending {
			return &domain.InvalidTransition{RequestID: requestID, From: request.Status, Op: "approve"}
		}
		level, err := levelRepo.GetForUpdate(request.SparePartID, request.StoreID)
		if err != nil {
			return err
		}
		if level == nil {
			return &domain.StockShortage{
				SparePartID: request.SparePartID, StoreID: request.StoreID,
				Requested: request.RequestedQuantity, Available: 0,
			}
		}
		if err := uc.reservations.ExpireStaleForLevelInTx(reservationRepo, levelRepo, level, now); err != nil {
			return err
		}
		if level.AvailableStock < request.RequestedQuantity {
			return &domain.StockShortage{
				SparePartID: request.SparePartID, StoreID: request.StoreID,
				Requested: request.RequestedQuantity, Available: level.AvailableStock,
			}
		}

		request.Status = entity.RequestApproved
		request.ApprovalLevel++
		request.UpdatedAt = now
		if err := requestRepo.Update(request); err != nil {
			return err
		}
		if err := approvalRepo.Create(&entity.ApprovalHistory{
			ID:               uuid.New().String(),
			PartRequestID:    request.ID,
			Level:            request.ApprovalLevel,
			Approver:         approverID,
			Decision:         entity.DecisionApproved,
			Comments:         comments,
			AvailableAtCheck: level.AvailableStock,
			CreatedAt:        now,
		}); err != nil {
			return err
		}
		if _, err := uc.reservations.ReserveInTx(reservationRepo, levelRepo, level, request.ID, request.RequestedQuantity, now); err != nil {
			return err
		}
		if uc.cfg.AutoIssue {
			_, err = uc.issueLocked(requestRepo, reservationRepo, levelRepo, movementRepo, batchRepo, request, level, now)
			return err
		}
		return nil
	})
}

// Reject rechaza una solicitud; solo es legal desde Pending.
func (uc *RequestWorkflowUseCase) Reject(ctx context.Context, requestID, approverID, comments string) error {
	if requestID == "" || approverID == "" {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.RunWorkflow(ctx, func(
		requestRepo repository.PartRequestRepository,
		approvalRepo repository.ApprovalHistoryRepository,
		_ repository.StockReservationRepository,
		_ repository.InventoryLevelRepository,
		_ repository.StockMovementRepository,
		_ repository.StockBatchRepository,
		_ repository.InstalledPartRepository,
	) error {
		now := time.Now()
		request, err := requestRepo.GetForUpdate(requestID)
		if err != nil {
			return err
		}
		if request == nil {
			return domain.ErrNotFound
		}
		if request.Status != entity.RequestPending {
			return &domain.InvalidTransition{RequestID: requestID, From: request.Status, Op: "reject"}
		}
		request.Status = entity.RequestRejected
		request.UpdatedAt = now
		if err := requestRepo.Update(request); err != nil {
			return err
		}
		return approvalRepo.Create(&entity.ApprovalHistory{
			ID:            uuid.New().String(),
			PartRequestID: request.ID,
			Level:         request.ApprovalLevel + 1,
			Approver:      approverID,
			Decision:      entity.DecisionRejected,
			Comments:      comments,
			CreatedAt:     now,
		})
	})
}

// Cancel cancela una solicitud Pending o Approved, liberando la reserva si existe.
func (uc *RequestWorkflowUseCase) Cancel(ctx context.Context, requestID, actor, reason string) error {
	if requestID == "" {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.RunWorkflow(ctx, func(
		requestRepo repository.PartRequestRepository,
		_ repository.ApprovalHistoryRepository,
		reservationRepo repository.StockReservationRepository,
		levelRepo repository.InventoryLevelRepository,
		_ repository.StockMovementRepository,
		_ repository.StockBatchRepository,
		_ repository.InstalledPartRepository,
	) error {
		now := time.Now()
		request, err := requestRepo.GetForUpdate(requestID)
		if err != nil {
			return err
		}
		if request == nil {
			return domain.ErrNotFound
		}
		if !request.CanCancel() {
			return &domain.InvalidTransition{RequestID: requestID, From: request.Status, Op: "cancel"}
		}
		res, err := reservationRepo.GetActiveByRequest(request.ID)
		if err != nil {
			return err
		}
		if res != nil {
			if err := uc.reservations.ReleaseInTx(reservationRepo, levelRepo, res, entity.ReservationReleased, now); err != nil {
				return err
			}
		}
		request.Status = entity.RequestCancelled
		if reason != "" {
			request.Justification = request.Justification + " | cancelada: " + reason
		}
		request.UpdatedAt = now
		return requestRepo.Update(request)
	})
}

// IssueResult resultado de la emisión de una solicitud.
type IssueResult struct {
	IssuedQuantity int
	TotalCost      decimal.Decimal
	BatchIDs       []string
}

// Issue emite una solicitud Approved delegando en el asignador FIFO.
func (uc *RequestWorkflowUseCase) Issue(ctx context.Context, requestID string) (*IssueResult, error) {
	if requestID == "" {
		return nil, domain.ErrInvalidInput
	}
	var result *IssueResult
	err := uc.txRunner.RunWorkflow(ctx, func(
		requestRepo repository.PartRequestRepository,
		_ repository.ApprovalHistoryRepository,
		reservationRepo repository.StockReservationRepository,
		levelRepo repository.InventoryLevelRepository,
		movementRepo repository.StockMovementRepository,
		batchRepo repository.StockBatchRepository,
		_ repository.InstalledPartRepository,
	) error {
		now := time.Now()
		request, err := requestRepo.GetForUpdate(requestID)
		if err != nil {
			return err
		}
		if request == nil {
			return domain.ErrNotFound
		}
		if request.Status != entity.RequestApproved {
			return &domain.InvalidTransition{RequestID: requestID, From: request.Status, Op: "issue"}
		}
		level, err := levelRepo.GetForUpdate(request.SparePartID, request.StoreID)
		if err != nil {
			return err
		}
		if level == nil {
			return domain.ErrNotFound
		}
		alloc, err := uc.issueLocked(requestRepo, reservationRepo, levelRepo, movementRepo, batchRepo, request, level, now)
		if err != nil {
			return err
		}
		result = &IssueResult{
			IssuedQuantity: alloc.IssuedQuantity,
			TotalCost:      alloc.TotalCost,
			BatchIDs:       alloc.BatchIDs,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// issueLocked emite con la solicitud y el nivel ya bloqueados. Consume la
// reserva activa si existe; una reserva expirada se libera primero y la
// emisión sale del disponible, revalidado por el asignador.
func (uc *RequestWorkflowUseCase) issueLocked(
	requestRepo repository.PartRequestRepository,
	reservationRepo repository.StockReservationRepository,
	levelRepo repository.InventoryLevelRepository,
	movementRepo repository.StockMovementRepository,
	batchRepo repository.StockBatchRepository,
	request *entity.PartRequest,
	level *entity.InventoryLevel,
	now time.Time,
) (*issuance.Allocation, error) {
	res, err := reservationRepo.GetActiveByRequest(request.ID)
	if err != nil {
		return nil, err
	}
	fromReserved := false
	if res != nil {
		if res.ActiveAt(now) {
			if err := uc.reservations.ConsumeInTx(reservationRepo, res, now); err != nil {
				return nil, err
			}
			fromReserved = true
		} else {
			if err := uc.reservations.ReleaseInTx(reservationRepo, levelRepo, res, entity.ReservationExpired, now); err != nil {
				return nil, err
			}
			level.AvailableStock += res.ReservedQuantity
			level.ReservedStock -= res.ReservedQuantity
		}
	}
	alloc, err := uc.allocator.AllocateInTx(levelRepo, movementRepo, batchRepo, level, request, fromReserved, now)
	if err != nil {
		return nil, err
	}
	request.Status = entity.RequestIssued
	request.IssuedQuantity = alloc.IssuedQuantity
	request.IssuedCost = alloc.TotalCost
	request.IssuedAt = &now
	request.IssuedBatchIDs = alloc.BatchIDs
	request.UpdatedAt = now
	if err := requestRepo.Update(request); err != nil {
		return nil, err
	}
	return alloc, nil
}

// InstallInput entrada para registrar la instalación de un repuesto.
type InstallInput struct {
	ServiceRequestID string
	SparePartID      string
	TechnicianID     string
	Quantity         int
	UnitCost         *decimal.Decimal // vacío = costo promedio emitido
	BatchNumber      string
	SerialNumber     string
	ReplacedPartID   string
}

// Install registra el consumo real en el vehículo. Exige una solicitud Issued
// del par (orden, repuesto) con cantidad suficiente; calcula la garantía a
// partir de los meses del repuesto y dispara el recálculo de costos.
func (uc *RequestWorkflowUseCase) Install(ctx context.Context, in InstallInput) (*entity.InstalledPart, error) {
	if in.ServiceRequestID == "" || in.SparePartID == "" || in.TechnicianID == "" || in.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	part, err := uc.partRepo.GetByID(in.SparePartID)
	if err != nil {
		return nil, err
	}
	if part == nil {
		return nil, domain.ErrNotFound
	}

	var installed *entity.InstalledPart
	err = uc.txRunner.RunWorkflow(ctx, func(
		requestRepo repository.PartRequestRepository,
		_ repository.ApprovalHistoryRepository,
		_ repository.StockReservationRepository,
		_ repository.InventoryLevelRepository,
		_ repository.StockMovementRepository,
		_ repository.StockBatchRepository,
		installedRepo repository.InstalledPartRepository,
	) error {
		now := time.Now()
		requests, err := requestRepo.ListByServiceAndPart(in.ServiceRequestID, in.SparePartID, []string{entity.RequestIssued})
		if err != nil {
			return err
		}
		if len(requests) == 0 {
			return domain.ErrNotFound
		}
		request := requests[0]
		if in.Quantity > request.IssuedQuantity {
			return domain.ErrInvalidInput
		}

		unitCost := decimal.Zero
		if in.UnitCost != nil {
			unitCost = *in.UnitCost
		} else if request.IssuedQuantity > 0 {
			unitCost = request.IssuedCost.Div(decimal.NewFromInt(int64(request.IssuedQuantity)))
		}
		qty := decimal.NewFromInt(int64(in.Quantity))

		if in.ReplacedPartID != "" {
			replaced, err := installedRepo.GetByID(in.ReplacedPartID)
			if err != nil {
				return err
			}
			if replaced == nil {
				return domain.ErrNotFound
			}
			if err := installedRepo.MarkRemoved(in.ReplacedPartID, "reemplazado por "+in.SparePartID, in.TechnicianID, now); err != nil {
				return err
			}
		}

		installed = &entity.InstalledPart{
			ID:               uuid.New().String(),
			ServiceRequestID: in.ServiceRequestID,
			SparePartID:      in.SparePartID,
			TechnicianID:     in.TechnicianID,
			Quantity:         in.Quantity,
			UnitCost:         unitCost,
			TotalCost:        unitCost.Mul(qty),
			SellingPrice:     part.SellingPrice,
			TotalRevenue:     part.SellingPrice.Mul(qty),
			BatchNumber:      in.BatchNumber,
			SerialNumber:     in.SerialNumber,
			WarrantyExpiry:   parts.WarrantyExpiry(now, part.WarrantyMonths),
			ReplacedPartID:   in.ReplacedPartID,
			InstalledAt:      now,
		}
		if err := installedRepo.Create(installed); err != nil {
			return err
		}
		request.Status = entity.RequestInstalled
		request.UpdatedAt = now
		return requestRepo.Update(request)
	})
	if err != nil {
		return nil, err
	}
	if _, err := uc.costs.Recalculate(ctx, in.ServiceRequestID); err != nil {
		return nil, err
	}
	return installed, nil
}

// Condiciones de una devolución.
const (
	ConditionGood    = "GOOD"
	ConditionDamaged = "DAMAGED"
)

// ReturnItem una línea de devolución.
type ReturnItem struct {
	SparePartID string
	Quantity    int
	Condition   string
	Reason      string
}

// ReturnItemResult resultado por línea: las devoluciones son la única
// operación con éxito parcial, cada línea se evalúa y reporta por separado.
type ReturnItemResult struct {
	SparePartID string
	Processed   bool
	Error       string
}

// Return procesa las devoluciones de una orden. Buenas condiciones restauran
// el disponible (RETURN); dañadas entran como stock dañado (DAMAGED). El
// estado pasa a Returned solo si se devolvió todo lo emitido.
func (uc *RequestWorkflowUseCase) Return(ctx context.Context, serviceRequestID string, items []ReturnItem, actor string) ([]ReturnItemResult, error) {
	if serviceRequestID == "" || len(items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	results := make([]ReturnItemResult, 0, len(items))
	processedAny := false
	for _, item := range items {
		err := uc.returnOne(ctx, serviceRequestID, item, actor)
		r := ReturnItemResult{SparePartID: item.SparePartID, Processed: err == nil}
		if err != nil {
			r.Error = err.Error()
		} else {
			processedAny = true
		}
		results = append(results, r)
	}
	if processedAny {
		if _, err := uc.costs.Recalculate(ctx, serviceRequestID); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// returnOne procesa una línea en su propia transacción.
func (uc *RequestWorkflowUseCase) returnOne(ctx context.Context, serviceRequestID string, item ReturnItem, actor string) error {
	if item.Quantity <= 0 {
		return domain.ErrInvalidInput
	}
	if item.Condition != ConditionGood && item.Condition != ConditionDamaged {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.RunWorkflow(ctx, func(
		requestRepo repository.PartRequestRepository,
		_ repository.ApprovalHistoryRepository,
		_ repository.StockReservationRepository,
		levelRepo repository.InventoryLevelRepository,
		movementRepo repository.StockMovementRepository,
		batchRepo repository.StockBatchRepository,
		_ repository.InstalledPartRepository,
	) error {
		now := time.Now()
		requests, err := requestRepo.ListByServiceAndPart(serviceRequestID, item.SparePartID,
			[]string{entity.RequestIssued, entity.RequestInstalled})
		if err != nil {
			return err
		}
		if len(requests) == 0 {
			return domain.ErrNotFound
		}
		request := requests[0]
		outstanding := request.IssuedQuantity - request.ReturnedQuantity
		if item.Quantity > outstanding {
			return domain.ErrInvalidInput
		}
		level, err := levelRepo.GetForUpdate(request.SparePartID, request.StoreID)
		if err != nil {
			return err
		}
		if level == nil {
			return domain.ErrNotFound
		}
		unitCost := decimal.Zero
		if request.IssuedQuantity > 0 {
			unitCost = request.IssuedCost.Div(decimal.NewFromInt(int64(request.IssuedQuantity)))
		}
		damaged := item.Condition == ConditionDamaged
		if _, err := uc.stockLedger.ReturnInTx(levelRepo, movementRepo, batchRepo, level,
			item.Quantity, damaged, unitCost, request.ID, item.Reason, actor, now); err != nil {
			return err
		}
		request.ReturnedQuantity += item.Quantity
		if request.ReturnedQuantity == request.IssuedQuantity {
			request.Status = entity.RequestReturned
		} else {
			request.Status = entity.RequestInstalled
		}
		request.UpdatedAt = now
		return requestRepo.Update(request)
	})
}

// GetRequest devuelve una solicitud por ID.
func (uc *RequestWorkflowUseCase) GetRequest(id string) (*entity.PartRequest, error) {
	request, err := uc.requestRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, domain.ErrNotFound
	}
	return request, nil
}

// ListRequests lista solicitudes con filtros y paginación.
func (uc *RequestWorkflowUseCase) ListRequests(filter repository.RequestFilter) ([]*entity.PartRequest, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	return uc.requestRepo.List(filter)
}

// ListApprovals historial de aprobaciones de una solicitud.
func (uc *RequestWorkflowUseCase) ListApprovals(requestID string) ([]*entity.ApprovalHistory, error) {
	request, err := uc.requestRepo.GetByID(requestID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, domain.ErrNotFound
	}
	return uc.approvalRepo.ListByRequest(requestID)
}

// ListInstalled repuestos instalados vigentes de una orden de servicio.
func (uc *RequestWorkflowUseCase) ListInstalled(serviceRequestID string) ([]*entity.InstalledPart, error) {
	return uc.installedRepo.ListByService(serviceRequestID)
}
