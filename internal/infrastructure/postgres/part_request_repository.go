package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/fleetparts-api/internal/domain/entity"
	"github.com/jhoicas/fleetparts-api/internal/domain/repository"
)

var _ repository.PartRequestRepository = (*PartRequestRepo)(nil)
var _ repository.ApprovalHistoryRepository = (*ApprovalHistoryRepo)(nil)

const requestColumns = `id, service_request_id, spare_part_id, store_id,
	requested_by, requested_quantity, urgency, justification, estimated_cost,
	approval_level, status, issued_quantity, issued_cost, issued_at,
	issued_batch_ids, returned_quantity, created_at, updated_at`

// PartRequestRepo implementación de solicitudes de repuesto sobre PostgreSQL.
// issued_batch_ids es text[]: el orden FIFO de los lotes consumidos importa.
type PartRequestRepo struct {
	q Querier
}

// NewPartRequestRepository construye el adaptador. Acepta pool o tx (Querier).
func NewPartRequestRepository(q Querier) *PartRequestRepo {
	return &PartRequestRepo{q: q}
}

func scanRequest(row pgx.Row) (*entity.PartRequest, error) {
	var req entity.PartRequest
	err := row.Scan(
		&req.ID, &req.ServiceRequestID, &req.SparePartID, &req.StoreID,
		&req.RequestedBy, &req.RequestedQuantity, &req.Urgency, &req.Justification,
		&req.EstimatedCost, &req.ApprovalLevel, &req.Status, &req.IssuedQuantity,
		&req.IssuedCost, &req.IssuedAt, &req.IssuedBatchIDs, &req.ReturnedQuantity,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *PartRequestRepo) Create(req *entity.PartRequest) error {
	query := `
		INSERT INTO part_requests
			(id, service_request_id, spare_part_id, store_id, requested_by,
			 requested_quantity, urgency, justification, estimated_cost,
			 approval_level, status, issued_quantity, issued_cost, issued_at,
			 issued_batch_ids, returned_quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(context.Background(), query,
		req.ID, req.ServiceRequestID, req.SparePartID, req.StoreID, req.RequestedBy,
		req.RequestedQuantity, req.Urgency, req.Justification, req.EstimatedCost,
		req.ApprovalLevel, req.Status, req.IssuedQuantity, req.IssuedCost, req.IssuedAt,
		req.IssuedBatchIDs, req.ReturnedQuantity, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert part request: %w", err)
	}
	return nil
}

func (r *PartRequestRepo) GetByID(id string) (*entity.PartRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM part_requests WHERE id = $1`
	req, err := scanRequest(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get part request: %w", err)
	}
	return req, nil
}

// GetForUpdate obtiene la solicitud y bloquea la fila (SELECT FOR UPDATE).
func (r *PartRequestRepo) GetForUpdate(id string) (*entity.PartRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM part_requests WHERE id = $1 FOR UPDATE`
	req, err := scanRequest(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get part request for update: %w", err)
	}
	return req, nil
}

func (r *PartRequestRepo) Update(req *entity.PartRequest) error {
	query := `
		UPDATE part_requests
		SET urgency = $2, justification = $3, approval_level = $4, status = $5,
		    issued_quantity = $6, issued_cost = $7, issued_at = $8,
		    issued_batch_ids = $9, returned_quantity = $10, updated_at = $11
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		req.ID, req.Urgency, req.Justification, req.ApprovalLevel, req.Status,
		req.IssuedQuantity, req.IssuedCost, req.IssuedAt, req.IssuedBatchIDs,
		req.ReturnedQuantity, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update part request: %w", err)
	}
	return nil
}

// List devuelve la página filtrada y el total sin paginar.
func (r *PartRequestRepo) List(filter repository.RequestFilter) ([]*entity.PartRequest, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	addFilter := func(cond string, val any) {
		args = append(args, val)
		where += fmt.Sprintf(" AND "+cond, len(args))
	}
	if filter.Status != "" {
		addFilter("status = $%d", filter.Status)
	}
	if filter.Urgency != "" {
		addFilter("urgency = $%d", filter.Urgency)
	}
	if filter.TechnicianID != "" {
		addFilter("requested_by = $%d", filter.TechnicianID)
	}
	if filter.StoreID != "" {
		addFilter("store_id = $%d", filter.StoreID)
	}
	if filter.From != nil {
		addFilter("created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		addFilter("created_at <= $%d", *filter.To)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM part_requests` + where
	if err := r.q.QueryRow(context.Background(), countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count part requests: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset)
	query := `SELECT ` + requestColumns + ` FROM part_requests` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	list, err := r.queryRequests(query, args...)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *PartRequestRepo) ListByServiceAndPart(serviceRequestID, sparePartID string, statuses []string) ([]*entity.PartRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM part_requests
		WHERE service_request_id = $1 AND spare_part_id = $2 AND status = ANY($3)
		ORDER BY created_at DESC`
	return r.queryRequests(query, serviceRequestID, sparePartID, statuses)
}

func (r *PartRequestRepo) queryRequests(query string, args ...any) ([]*entity.PartRequest, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list part requests: %w", err)
	}
	defer rows.Close()
	var list []*entity.PartRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan part request: %w", err)
		}
		list = append(list, req)
	}
	return list, rows.Err()
}

// ApprovalHistoryRepo implementación del historial de aprobaciones (append-only).
type ApprovalHistoryRepo struct {
	q Querier
}

// NewApprovalHistoryRepository construye el adaptador. Acepta pool o tx (Querier).
func NewApprovalHistoryRepository(q Querier) *ApprovalHistoryRepo {
	return &ApprovalHistoryRepo{q: q}
}

func (r *ApprovalHistoryRepo) Create(h *entity.ApprovalHistory) error {
	query := `
		INSERT INTO approval_history
			(id, part_request_id, level, approver, decision, comments,
			 available_at_check, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		h.ID, h.PartRequestID, h.Level, h.Approver, h.Decision, h.Comments,
		h.AvailableAtCheck, h.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert approval history: %w", err)
	}
	return nil
}

func (r *ApprovalHistoryRepo) ListByRequest(partRequestID string) ([]*entity.ApprovalHistory, error) {
	query := `
		SELECT id, part_request_id, level, approver, decision, comments,
		       available_at_check, created_at
		FROM approval_history
		WHERE part_request_id = $1
		ORDER BY created_at ASC`
	rows, err := r.q.Query(context.Background(), query, partRequestID)
	if err != nil {
		return nil, fmt.Errorf("list approval history: %w", err)
	}
	defer rows.Close()
	var list []*entity.ApprovalHistory
	for rows.Next() {
		var h entity.ApprovalHistory
		if err := rows.Scan(
			&h.ID, &h.PartRequestID, &h.Level, &h.Approver, &h.Decision,
			&h.Comments, &h.AvailableAtCheck, &h.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan approval history: %w", err)
		}
		list = append(list, &h)
	}
	return list, rows.Err()
}
