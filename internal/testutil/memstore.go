// Package testutil provee dobles en memoria de los puertos de persistencia,
// para probar los casos de uso sin PostgreSQL. Los updates condicionales
// (Reserve, Consume, Resolve) son atómicos bajo el mutex del store, y el
// TxRunner serializa los callbacks, imitando el aislamiento de las
// transacciones reales. No hay rollback: los tests no dependen de él.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/fleetparts-api/internal/domain"
	"github.com/jhoicas/fleetparts-api/internal/domain/entity"
	"github.com/jhoicas/fleetparts-api/internal/domain/repository"
)

var (
	_ repository.SparePartRepository       = (*SparePartRepo)(nil)
	_ repository.PriceHistoryRepository    = (*PriceHistoryRepo)(nil)
	_ repository.InventoryLevelRepository  = (*InventoryLevelRepo)(nil)
	_ repository.StockMovementRepository   = (*StockMovementRepo)(nil)
	_ repository.StockBatchRepository      = (*StockBatchRepo)(nil)
	_ repository.StockReservationRepository = (*StockReservationRepo)(nil)
	_ repository.PartRequestRepository     = (*PartRequestRepo)(nil)
	_ repository.ApprovalHistoryRepository = (*ApprovalHistoryRepo)(nil)
	_ repository.InstalledPartRepository   = (*InstalledPartRepo)(nil)
	_ repository.TechnicianLimitRepository = (*TechnicianLimitRepo)(nil)
	_ repository.ServiceCostRepository     = (*ServiceCostRepo)(nil)
)

// MemStore estado compartido de todos los repos fake.
type MemStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	Parts        map[string]*entity.SparePart
	PriceHistory []*entity.PriceHistoryEntry
	Levels       map[string]*entity.InventoryLevel
	Movements    []*entity.StockMovement
	Batches      []*entity.StockBatch
	Reservations map[string]*entity.StockReservation
	Requests     map[string]*entity.PartRequest
	requestOrder []string
	Approvals    []*entity.ApprovalHistory
	Installed    map[string]*entity.InstalledPart
	Limits       []*entity.TechnicianLimit
	Costs        map[string]*entity.ServiceCostBreakdown
	Jobs         map[string]*entity.ServiceJob
	Labor        map[string]decimal.Decimal
	JobTotals    map[string]decimal.Decimal
}

// NewMemStore construye un store vacío.
func NewMemStore() *MemStore {
	return &MemStore{
		Parts:        map[string]*entity.SparePart{},
		Levels:       map[string]*entity.InventoryLevel{},
		Reservations: map[string]*entity.StockReservation{},
		Requests:     map[string]*entity.PartRequest{},
		Installed:    map[string]*entity.InstalledPart{},
		Costs:        map[string]*entity.ServiceCostBreakdown{},
		Jobs:         map[string]*entity.ServiceJob{},
		Labor:        map[string]decimal.Decimal{},
		JobTotals:    map[string]decimal.Decimal{},
	}
}

func copyLevel(l *entity.InventoryLevel) *entity.InventoryLevel {
	c := *l
	return &c
}

func copyRequest(r *entity.PartRequest) *entity.PartRequest {
	c := *r
	c.IssuedBatchIDs = append([]string(nil), r.IssuedBatchIDs...)
	return &c
}

// ─── SparePartRepository / PriceHistoryRepository ────────────────────────────

// SparePartRepo fake en memoria.
type SparePartRepo struct{ s *MemStore }

func NewSparePartRepo(s *MemStore) *SparePartRepo { return &SparePartRepo{s} }

func (r *SparePartRepo) GetByID(id string) (*entity.SparePart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.Parts[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (r *SparePartRepo) Update(p *entity.SparePart) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *p
	r.s.Parts[p.ID] = &c
	return nil
}

// PriceHistoryRepo fake en memoria.
type PriceHistoryRepo struct{ s *MemStore }

func NewPriceHistoryRepo(s *MemStore) *PriceHistoryRepo { return &PriceHistoryRepo{s} }

func (r *PriceHistoryRepo) Create(e *entity.PriceHistoryEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *e
	r.s.PriceHistory = append(r.s.PriceHistory, &c)
	return nil
}

func (r *PriceHistoryRepo) ListBySparePart(sparePartID string, limit, offset int) ([]*entity.PriceHistoryEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.PriceHistoryEntry
	for i := len(r.s.PriceHistory) - 1; i >= 0; i-- {
		if r.s.PriceHistory[i].SparePartID == sparePartID {
			c := *r.s.PriceHistory[i]
			list = append(list, &c)
		}
	}
	return paginate(list, limit, offset), nil
}

// ─── InventoryLevelRepository ────────────────────────────────────────────────

// InventoryLevelRepo fake en memoria.
type InventoryLevelRepo struct{ s *MemStore }

func NewInventoryLevelRepo(s *MemStore) *InventoryLevelRepo { return &InventoryLevelRepo{s} }

func (r *InventoryLevelRepo) find(sparePartID, storeID string) *entity.InventoryLevel {
	for _, l := range r.s.Levels {
		if l.SparePartID == sparePartID && l.StoreID == storeID {
			return l
		}
	}
	return nil
}

func (r *InventoryLevelRepo) Get(sparePartID, storeID string) (*entity.InventoryLevel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if l := r.find(sparePartID, storeID); l != nil {
		return copyLevel(l), nil
	}
	return nil, nil
}

func (r *InventoryLevelRepo) GetForUpdate(sparePartID, storeID string) (*entity.InventoryLevel, error) {
	return r.Get(sparePartID, storeID)
}

func (r *InventoryLevelRepo) Create(l *entity.InventoryLevel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.find(l.SparePartID, l.StoreID) != nil {
		return domain.ErrDuplicateInventory
	}
	r.s.Levels[l.ID] = copyLevel(l)
	return nil
}

func (r *InventoryLevelRepo) Update(l *entity.InventoryLevel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Levels[l.ID] = copyLevel(l)
	return nil
}

func (r *InventoryLevelRepo) Reserve(levelID string, qty int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.Levels[levelID]
	if !ok || l.AvailableStock < qty {
		return false, nil
	}
	l.AvailableStock -= qty
	l.ReservedStock += qty
	return true, nil
}

func (r *InventoryLevelRepo) ReleaseReserved(levelID string, qty int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.Levels[levelID]
	if !ok || l.ReservedStock < qty {
		return false, nil
	}
	l.ReservedStock -= qty
	l.AvailableStock += qty
	return true, nil
}

func (r *InventoryLevelRepo) ListLowStock(_ context.Context, storeID string) ([]*entity.InventoryLevel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.InventoryLevel
	for _, l := range r.s.Levels {
		if storeID != "" && l.StoreID != storeID {
			continue
		}
		if l.CurrentStock <= l.ReorderLevel {
			list = append(list, copyLevel(l))
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return (list[i].ReorderLevel - list[i].CurrentStock) > (list[j].ReorderLevel - list[j].CurrentStock)
	})
	return list, nil
}

func (r *InventoryLevelRepo) ListByStore(storeID string, limit, offset int) ([]*entity.InventoryLevel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.InventoryLevel
	for _, l := range r.s.Levels {
		if l.StoreID == storeID {
			list = append(list, copyLevel(l))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return paginate(list, limit, offset), nil
}

// ─── StockMovementRepository ─────────────────────────────────────────────────

// StockMovementRepo fake en memoria.
type StockMovementRepo struct{ s *MemStore }

func NewStockMovementRepo(s *MemStore) *StockMovementRepo { return &StockMovementRepo{s} }

func (r *StockMovementRepo) Create(m *entity.StockMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *m
	r.s.Movements = append(r.s.Movements, &c)
	return nil
}

func (r *StockMovementRepo) ListByLevel(levelID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.StockMovement
	for i := len(r.s.Movements) - 1; i >= 0; i-- {
		m := r.s.Movements[i]
		if m.InventoryLevelID != levelID {
			continue
		}
		if from != nil && m.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && m.CreatedAt.After(*to) {
			continue
		}
		c := *m
		list = append(list, &c)
	}
	return paginate(list, limit, offset), nil
}

func (r *StockMovementRepo) ListByReference(referenceType, referenceID string) ([]*entity.StockMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.StockMovement
	for _, m := range r.s.Movements {
		if m.ReferenceType == referenceType && m.ReferenceID == referenceID {
			c := *m
			list = append(list, &c)
		}
	}
	return list, nil
}

// ─── StockBatchRepository ────────────────────────────────────────────────────

// StockBatchRepo fake en memoria.
type StockBatchRepo struct{ s *MemStore }

func NewStockBatchRepo(s *MemStore) *StockBatchRepo { return &StockBatchRepo{s} }

func (r *StockBatchRepo) Create(b *entity.StockBatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *b
	r.s.Batches = append(r.s.Batches, &c)
	return nil
}

func (r *StockBatchRepo) ListAvailableForUpdate(levelID string) ([]*entity.StockBatch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.StockBatch
	for _, b := range r.s.Batches {
		if b.InventoryLevelID == levelID && b.Remaining > 0 {
			c := *b
			list = append(list, &c)
		}
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].ReceivedAt.Before(list[j].ReceivedAt) })
	return list, nil
}

func (r *StockBatchRepo) Consume(batchID string, qty int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.Batches {
		if b.ID == batchID {
			if b.Remaining < qty {
				return false, nil
			}
			b.Remaining -= qty
			return true, nil
		}
	}
	return false, nil
}

// ─── StockReservationRepository ──────────────────────────────────────────────

// StockReservationRepo fake en memoria.
type StockReservationRepo struct{ s *MemStore }

func NewStockReservationRepo(s *MemStore) *StockReservationRepo { return &StockReservationRepo{s} }

func (r *StockReservationRepo) Create(res *entity.StockReservation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *res
	r.s.Reservations[res.ID] = &c
	return nil
}

func (r *StockReservationRepo) GetActiveByRequest(partRequestID string) (*entity.StockReservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, res := range r.s.Reservations {
		if res.PartRequestID == partRequestID && res.Status == entity.ReservationActive {
			c := *res
			return &c, nil
		}
	}
	return nil, nil
}

func (r *StockReservationRepo) Resolve(id, status string, resolvedAt time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res, ok := r.s.Reservations[id]
	if !ok || res.Status != entity.ReservationActive {
		return false, nil
	}
	res.Status = status
	at := resolvedAt
	res.ResolvedAt = &at
	return true, nil
}

func (r *StockReservationRepo) ListStale(now time.Time, limit int) ([]*entity.StockReservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.StockReservation
	for _, res := range r.s.Reservations {
		if res.Status == entity.ReservationActive && !res.ExpiresAt.After(now) {
			c := *res
			list = append(list, &c)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ExpiresAt.Before(list[j].ExpiresAt) })
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r *StockReservationRepo) ListStaleByLevel(levelID string, now time.Time) ([]*entity.StockReservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.StockReservation
	for _, res := range r.s.Reservations {
		if res.InventoryLevelID == levelID && res.Status == entity.ReservationActive && !res.ExpiresAt.After(now) {
			c := *res
			list = append(list, &c)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ExpiresAt.Before(list[j].ExpiresAt) })
	return list, nil
}

// ─── PartRequestRepository / ApprovalHistoryRepository ───────────────────────

// PartRequestRepo fake en memoria.
type PartRequestRepo struct{ s *MemStore }

func NewPartRequestRepo(s *MemStore) *PartRequestRepo { return &PartRequestRepo{s} }

func (r *PartRequestRepo) Create(req *entity.PartRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Requests[req.ID] = copyRequest(req)
	r.s.requestOrder = append(r.s.requestOrder, req.ID)
	return nil
}

func (r *PartRequestRepo) GetByID(id string) (*entity.PartRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.Requests[id]
	if !ok {
		return nil, nil
	}
	return copyRequest(req), nil
}

func (r *PartRequestRepo) GetForUpdate(id string) (*entity.PartRequest, error) {
	return r.GetByID(id)
}

func (r *PartRequestRepo) Update(req *entity.PartRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Requests[req.ID] = copyRequest(req)
	return nil
}

func (r *PartRequestRepo) List(filter repository.RequestFilter) ([]*entity.PartRequest, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []*entity.PartRequest
	for i := len(r.s.requestOrder) - 1; i >= 0; i-- {
		req := r.s.Requests[r.s.requestOrder[i]]
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		if filter.Urgency != "" && req.Urgency != filter.Urgency {
			continue
		}
		if filter.TechnicianID != "" && req.RequestedBy != filter.TechnicianID {
			continue
		}
		if filter.StoreID != "" && req.StoreID != filter.StoreID {
			continue
		}
		if filter.From != nil && req.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && req.CreatedAt.After(*filter.To) {
			continue
		}
		all = append(all, copyRequest(req))
	}
	return paginate(all, filter.Limit, filter.Offset), len(all), nil
}

func (r *PartRequestRepo) ListByServiceAndPart(serviceRequestID, sparePartID string, statuses []string) ([]*entity.PartRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.PartRequest
	for i := len(r.s.requestOrder) - 1; i >= 0; i-- {
		req := r.s.Requests[r.s.requestOrder[i]]
		if req.ServiceRequestID != serviceRequestID || req.SparePartID != sparePartID {
			continue
		}
		for _, st := range statuses {
			if req.Status == st {
				list = append(list, copyRequest(req))
				break
			}
		}
	}
	return list, nil
}

// ApprovalHistoryRepo fake en memoria.
type ApprovalHistoryRepo struct{ s *MemStore }

func NewApprovalHistoryRepo(s *MemStore) *ApprovalHistoryRepo { return &ApprovalHistoryRepo{s} }

func (r *ApprovalHistoryRepo) Create(h *entity.ApprovalHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *h
	r.s.Approvals = append(r.s.Approvals, &c)
	return nil
}

func (r *ApprovalHistoryRepo) ListByRequest(partRequestID string) ([]*entity.ApprovalHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.ApprovalHistory
	for _, h := range r.s.Approvals {
		if h.PartRequestID == partRequestID {
			c := *h
			list = append(list, &c)
		}
	}
	return list, nil
}

// ─── InstalledPartRepository ─────────────────────────────────────────────────

// InstalledPartRepo fake en memoria.
type InstalledPartRepo struct{ s *MemStore }

func NewInstalledPartRepo(s *MemStore) *InstalledPartRepo { return &InstalledPartRepo{s} }

func (r *InstalledPartRepo) Create(p *entity.InstalledPart) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *p
	r.s.Installed[p.ID] = &c
	return nil
}

func (r *InstalledPartRepo) GetByID(id string) (*entity.InstalledPart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.Installed[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (r *InstalledPartRepo) ListByService(serviceRequestID string) ([]*entity.InstalledPart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.InstalledPart
	for _, p := range r.s.Installed {
		if p.ServiceRequestID == serviceRequestID && p.RemovedAt == nil {
			c := *p
			list = append(list, &c)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].InstalledAt.Before(list[j].InstalledAt) })
	return list, nil
}

func (r *InstalledPartRepo) MarkRemoved(id, reason, removedBy string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.Installed[id]
	if !ok || p.RemovedAt != nil {
		return nil
	}
	t := at
	p.RemovedAt = &t
	p.RemovalReason = reason
	p.RemovedBy = removedBy
	return nil
}

// ─── TechnicianLimitRepository ───────────────────────────────────────────────

// TechnicianLimitRepo fake en memoria.
type TechnicianLimitRepo struct{ s *MemStore }

func NewTechnicianLimitRepo(s *MemStore) *TechnicianLimitRepo { return &TechnicianLimitRepo{s} }

func (r *TechnicianLimitRepo) GetForPart(technicianID, sparePartID string) (*entity.TechnicianLimit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.Limits {
		if l.TechnicianID == technicianID && l.SparePartID == sparePartID && l.SparePartID != "" {
			c := *l
			return &c, nil
		}
	}
	return nil, nil
}

func (r *TechnicianLimitRepo) GetForCategory(technicianID, categoryID string) (*entity.TechnicianLimit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.Limits {
		if l.TechnicianID == technicianID && l.SparePartID == "" && l.CategoryID == categoryID {
			c := *l
			return &c, nil
		}
	}
	return nil, nil
}

// ─── ServiceCostRepository ───────────────────────────────────────────────────

// ServiceCostRepo fake en memoria.
type ServiceCostRepo struct{ s *MemStore }

func NewServiceCostRepo(s *MemStore) *ServiceCostRepo { return &ServiceCostRepo{s} }

func (r *ServiceCostRepo) Upsert(b *entity.ServiceCostBreakdown) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *b
	r.s.Costs[b.ServiceRequestID] = &c
	return nil
}

func (r *ServiceCostRepo) GetByService(serviceRequestID string) (*entity.ServiceCostBreakdown, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.Costs[serviceRequestID]
	if !ok {
		return nil, nil
	}
	c := *b
	return &c, nil
}

// ─── ServiceJobProvider / LaborCostProvider / JobCostWriter ──────────────────

// ServiceJobProvider fake en memoria.
type ServiceJobProvider struct{ s *MemStore }

func NewServiceJobProvider(s *MemStore) *ServiceJobProvider { return &ServiceJobProvider{s} }

func (p *ServiceJobProvider) GetJob(id string) (*entity.ServiceJob, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	job, ok := p.s.Jobs[id]
	if !ok {
		return nil, nil
	}
	c := *job
	return &c, nil
}

func (p *ServiceJobProvider) SetJobStatus(id, status string) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if job, ok := p.s.Jobs[id]; ok {
		job.Status = status
	}
	return nil
}

func (p *ServiceJobProvider) LaborCost(serviceRequestID string) (decimal.Decimal, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if cost, ok := p.s.Labor[serviceRequestID]; ok {
		return cost, nil
	}
	return decimal.Zero, nil
}

func (p *ServiceJobProvider) SetJobCost(serviceRequestID string, totalBilled decimal.Decimal) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	p.s.JobTotals[serviceRequestID] = totalBilled
	return nil
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list
}
