package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/fleetparts-api/internal/application/costing"
	"github.com/jhoicas/fleetparts-api/internal/application/workflow"
	"github.com/jhoicas/fleetparts-api/internal/domain/entity"
)

var _ workflow.ServiceJobProvider = (*ServiceJobProvider)(nil)
var _ costing.LaborCostProvider = (*ServiceJobProvider)(nil)
var _ costing.JobCostWriter = (*ServiceJobProvider)(nil)

// ServiceJobProvider adaptador de solo-lo-necesario sobre la tabla de órdenes
// de servicio, que pertenece al módulo de flota. El motor de repuestos solo
// lee la vista mínima, cambia el estado y publica el total facturable.
type ServiceJobProvider struct {
	pool *pgxpool.Pool
}

// NewServiceJobProvider construye el adaptador.
func NewServiceJobProvider(pool *pgxpool.Pool) *ServiceJobProvider {
	return &ServiceJobProvider{pool: pool}
}

func (p *ServiceJobProvider) GetJob(id string) (*entity.ServiceJob, error) {
	query := `SELECT id, store_id, status FROM service_requests WHERE id = $1`
	var job entity.ServiceJob
	err := p.pool.QueryRow(context.Background(), query, id).Scan(&job.ID, &job.StoreID, &job.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get service request: %w", err)
	}
	return &job, nil
}

func (p *ServiceJobProvider) SetJobStatus(id, status string) error {
	query := `UPDATE service_requests SET status = $2, updated_at = now() WHERE id = $1`
	_, err := p.pool.Exec(context.Background(), query, id, status)
	if err != nil {
		return fmt.Errorf("set service request status: %w", err)
	}
	return nil
}

// LaborCost suma la mano de obra registrada de la orden.
func (p *ServiceJobProvider) LaborCost(serviceRequestID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(hours * hourly_rate), 0)
		FROM labor_entries WHERE service_request_id = $1`
	var cost decimal.Decimal
	err := p.pool.QueryRow(context.Background(), query, serviceRequestID).Scan(&cost)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum labor cost: %w", err)
	}
	return cost, nil
}

// SetJobCost publica el total facturable hacia la orden.
func (p *ServiceJobProvider) SetJobCost(serviceRequestID string, totalBilled decimal.Decimal) error {
	query := `UPDATE service_requests SET parts_total = $2, updated_at = now() WHERE id = $1`
	_, err := p.pool.Exec(context.Background(), query, serviceRequestID, totalBilled)
	if err != nil {
		return fmt.Errorf("set service request cost: %w", err)
	}
	return nil
}
