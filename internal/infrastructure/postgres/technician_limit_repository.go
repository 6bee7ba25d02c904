package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/fleetparts-api/internal/domain/entity"
	"github.com/jhoicas/fleetparts-api/internal/domain/repository"
)

var _ repository.TechnicianLimitRepository = (*TechnicianLimitRepo)(nil)

// TechnicianLimitRepo implementación de límites de auto-aprobación sobre PostgreSQL.
type TechnicianLimitRepo struct {
	q Querier
}

// NewTechnicianLimitRepository construye el adaptador. Acepta pool o tx (Querier).
func NewTechnicianLimitRepository(q Querier) *TechnicianLimitRepo {
	return &TechnicianLimitRepo{q: q}
}

const limitColumns = `id, technician_id, COALESCE(spare_part_id, ''),
	COALESCE(category_id, ''), max_value_per_request, max_quantity_per_request,
	requires_approval, auto_approve_below`

func (r *TechnicianLimitRepo) GetForPart(technicianID, sparePartID string) (*entity.TechnicianLimit, error) {
	query := `
		SELECT ` + limitColumns + `
		FROM technician_limits
		WHERE technician_id = $1 AND spare_part_id = $2`
	return r.getLimit(query, technicianID, sparePartID)
}

func (r *TechnicianLimitRepo) GetForCategory(technicianID, categoryID string) (*entity.TechnicianLimit, error) {
	query := `
		SELECT ` + limitColumns + `
		FROM technician_limits
		WHERE technician_id = $1 AND category_id = $2 AND spare_part_id IS NULL`
	return r.getLimit(query, technicianID, categoryID)
}

func (r *TechnicianLimitRepo) getLimit(query string, args ...any) (*entity.TechnicianLimit, error) {
	var l entity.TechnicianLimit
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&l.ID, &l.TechnicianID, &l.SparePartID, &l.CategoryID,
		&l.MaxValuePerRequest, &l.MaxQuantityPerRequest,
		&l.RequiresApproval, &l.AutoApproveBelow,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get technician limit: %w", err)
	}
	return &l, nil
}
