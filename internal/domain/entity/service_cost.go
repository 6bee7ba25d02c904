package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServiceCostBreakdown desglose de costos de una orden de servicio.
// Una fila por orden, upserted (no histórico); se recalcula completo en cada
// llamada al motor de costos.
type ServiceCostBreakdown struct {
	ID               string
	ServiceRequestID string
	PartsCost        decimal.Decimal
	PartsRevenue     decimal.Decimal
	PartsMarkup      decimal.Decimal
	LaborCost        decimal.Decimal
	LaborMarkup      decimal.Decimal
	Overhead         decimal.Decimal
	Subtotal         decimal.Decimal
	Tax              decimal.Decimal
	TotalCost        decimal.Decimal
	TotalBilled      decimal.Decimal
	NetMargin        decimal.Decimal
	MarginPercent    decimal.Decimal
	CalculatedAt     time.Time
}
