package costing

import "github.com/shopspring/decimal"

// LaborCostProvider colaborador externo dueño de las horas de mano de obra.
type LaborCostProvider interface {
	LaborCost(serviceRequestID string) (decimal.Decimal, error)
}

// JobCostWriter publica el total facturable hacia la orden de servicio.
type JobCostWriter interface {
	SetJobCost(serviceRequestID string, totalBilled decimal.Decimal) error
}
