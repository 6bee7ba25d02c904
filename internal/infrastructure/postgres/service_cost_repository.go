package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/fleetparts-api/internal/domain/entity"
	"github.com/jhoicas/fleetparts-api/internal/domain/repository"
)

var _ repository.ServiceCostRepository = (*ServiceCostRepo)(nil)

// ServiceCostRepo implementación del desglose de costos sobre PostgreSQL.
// Una fila por orden de servicio: upsert por service_request_id.
type ServiceCostRepo struct {
	q Querier
}

// NewServiceCostRepository construye el adaptador. Acepta pool o tx (Querier).
func NewServiceCostRepository(q Querier) *ServiceCostRepo {
	return &ServiceCostRepo{q: q}
}

func (r *ServiceCostRepo) Upsert(b *entity.ServiceCostBreakdown) error {
	query := `
		INSERT INTO service_costs
			(id, service_request_id, parts_cost, parts_revenue, parts_markup,
			 labor_cost, labor_markup, overhead, subtotal, tax, total_cost,
			 total_billed, net_margin, margin_percent, calculated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (service_request_id)
		DO UPDATE SET parts_cost = EXCLUDED.parts_cost,
		              parts_revenue = EXCLUDED.parts_revenue,
		              parts_markup = EXCLUDED.parts_markup,
		              labor_cost = EXCLUDED.labor_cost,
		              labor_markup = EXCLUDED.labor_markup,
		              overhead = EXCLUDED.overhead,
		              subtotal = EXCLUDED.subtotal,
		              tax = EXCLUDED.tax,
		              total_cost = EXCLUDED.total_cost,
		              total_billed = EXCLUDED.total_billed,
		              net_margin = EXCLUDED.net_margin,
		              margin_percent = EXCLUDED.margin_percent,
		              calculated_at = EXCLUDED.calculated_at`
	_, err := r.q.Exec(context.Background(), query,
		b.ID, b.ServiceRequestID, b.PartsCost, b.PartsRevenue, b.PartsMarkup,
		b.LaborCost, b.LaborMarkup, b.Overhead, b.Subtotal, b.Tax, b.TotalCost,
		b.TotalBilled, b.NetMargin, b.MarginPercent, b.CalculatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert service cost: %w", err)
	}
	return nil
}

func (r *ServiceCostRepo) GetByService(serviceRequestID string) (*entity.ServiceCostBreakdown, error) {
	query := `
		SELECT id, service_request_id, parts_cost, parts_revenue, parts_markup,
		       labor_cost, labor_markup, overhead, subtotal, tax, total_cost,
		       total_billed, net_margin, margin_percent, calculated_at
		FROM service_costs WHERE service_request_id = $1`
	var b entity.ServiceCostBreakdown
	err := r.q.QueryRow(context.Background(), query, serviceRequestID).Scan(
		&b.ID, &b.ServiceRequestID, &b.PartsCost, &b.PartsRevenue, &b.PartsMarkup,
		&b.LaborCost, &b.LaborMarkup, &b.Overhead, &b.Subtotal, &b.Tax,
		&b.TotalCost, &b.TotalBilled, &b.NetMargin, &b.MarginPercent, &b.CalculatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get service cost: %w", err)
	}
	return &b, nil
}
