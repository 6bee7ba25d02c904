package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/fleetparts-api/internal/domain/entity"
	"github.com/jhoicas/fleetparts-api/internal/domain/repository"
)

var _ repository.InstalledPartRepository = (*InstalledPartRepo)(nil)

const installedColumns = `id, service_request_id, spare_part_id, technician_id,
	quantity, unit_cost, total_cost, selling_price, total_revenue, batch_number,
	serial_number, warranty_expiry, COALESCE(replaced_part_id, ''), removed_at,
	removal_reason, removed_by, installed_at`

// InstalledPartRepo implementación de repuestos instalados sobre PostgreSQL.
type InstalledPartRepo struct {
	q Querier
}

// NewInstalledPartRepository construye el adaptador. Acepta pool o tx (Querier).
func NewInstalledPartRepository(q Querier) *InstalledPartRepo {
	return &InstalledPartRepo{q: q}
}

func scanInstalled(row pgx.Row) (*entity.InstalledPart, error) {
	var p entity.InstalledPart
	err := row.Scan(
		&p.ID, &p.ServiceRequestID, &p.SparePartID, &p.TechnicianID,
		&p.Quantity, &p.UnitCost, &p.TotalCost, &p.SellingPrice, &p.TotalRevenue,
		&p.BatchNumber, &p.SerialNumber, &p.WarrantyExpiry, &p.ReplacedPartID,
		&p.RemovedAt, &p.RemovalReason, &p.RemovedBy, &p.InstalledAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *InstalledPartRepo) Create(p *entity.InstalledPart) error {
	query := `
		INSERT INTO installed_parts
			(id, service_request_id, spare_part_id, technician_id, quantity,
			 unit_cost, total_cost, selling_price, total_revenue, batch_number,
			 serial_number, warranty_expiry, replaced_part_id, removal_reason,
			 removed_by, installed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NULLIF($13, ''), $14, $15, $16)`
	_, err := r.q.Exec(context.Background(), query,
		p.ID, p.ServiceRequestID, p.SparePartID, p.TechnicianID, p.Quantity,
		p.UnitCost, p.TotalCost, p.SellingPrice, p.TotalRevenue, p.BatchNumber,
		p.SerialNumber, p.WarrantyExpiry, p.ReplacedPartID, p.RemovalReason,
		p.RemovedBy, p.InstalledAt,
	)
	if err != nil {
		return fmt.Errorf("insert installed part: %w", err)
	}
	return nil
}

func (r *InstalledPartRepo) GetByID(id string) (*entity.InstalledPart, error) {
	query := `SELECT ` + installedColumns + ` FROM installed_parts WHERE id = $1`
	p, err := scanInstalled(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get installed part: %w", err)
	}
	return p, nil
}

// ListByService solo instalaciones vigentes (no removidas).
func (r *InstalledPartRepo) ListByService(serviceRequestID string) ([]*entity.InstalledPart, error) {
	query := `
		SELECT ` + installedColumns + `
		FROM installed_parts
		WHERE service_request_id = $1 AND removed_at IS NULL
		ORDER BY installed_at ASC`
	rows, err := r.q.Query(context.Background(), query, serviceRequestID)
	if err != nil {
		return nil, fmt.Errorf("list installed parts: %w", err)
	}
	defer rows.Close()
	var list []*entity.InstalledPart
	for rows.Next() {
		p, err := scanInstalled(rows)
		if err != nil {
			return nil, fmt.Errorf("scan installed part: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *InstalledPartRepo) MarkRemoved(id, reason, removedBy string, at time.Time) error {
	query := `
		UPDATE installed_parts
		SET removed_at = $2, removal_reason = $3, removed_by = $4
		WHERE id = $1 AND removed_at IS NULL`
	_, err := r.q.Exec(context.Background(), query, id, at, reason, removedBy)
	if err != nil {
		return fmt.Errorf("mark installed part removed: %w", err)
	}
	return nil
}
