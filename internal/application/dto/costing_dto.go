package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/fleetparts-api/internal/domain/entity"
)

// ServiceCostDTO desglose de costos de una orden de servicio.
type ServiceCostDTO struct {
	ServiceRequestID string          `json:"service_request_id"`
	PartsCost        decimal.Decimal `json:"parts_cost"`
	PartsRevenue     decimal.Decimal `json:"parts_revenue"`
	PartsMarkup      decimal.Decimal `json:"parts_markup"`
	LaborCost        decimal.Decimal `json:"labor_cost"`
	LaborMarkup      decimal.Decimal `json:"labor_markup"`
	Overhead         decimal.Decimal `json:"overhead"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	Tax              decimal.Decimal `json:"tax"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	TotalBilled      decimal.Decimal `json:"total_billed"`
	NetMargin        decimal.Decimal `json:"net_margin"`
	MarginPercent    decimal.Decimal `json:"margin_percent"`
	CalculatedAt     time.Time       `json:"calculated_at"`
}

// FromServiceCost mapea la entidad al DTO de respuesta.
func FromServiceCost(b *entity.ServiceCostBreakdown) ServiceCostDTO {
	return ServiceCostDTO{
		ServiceRequestID: b.ServiceRequestID,
		PartsCost:        b.PartsCost,
		PartsRevenue:     b.PartsRevenue,
		PartsMarkup:      b.PartsMarkup,
		LaborCost:        b.LaborCost,
		LaborMarkup:      b.LaborMarkup,
		Overhead:         b.Overhead,
		Subtotal:         b.Subtotal,
		Tax:              b.Tax,
		TotalCost:        b.TotalCost,
		TotalBilled:      b.TotalBilled,
		NetMargin:        b.NetMargin,
		MarginPercent:    b.MarginPercent,
		CalculatedAt:     b.CalculatedAt,
	}
}
