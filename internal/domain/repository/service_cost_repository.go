package repository

import "github.com/jhoicas/fleetparts-api/internal/domain/entity"

// ServiceCostRepository puerto del desglose de costos por orden de servicio.
// Una fila por orden: Upsert, no histórico.
type ServiceCostRepository interface {
	Upsert(breakdown *entity.ServiceCostBreakdown) error
	GetByService(serviceRequestID string) (*entity.ServiceCostBreakdown, error)
}
