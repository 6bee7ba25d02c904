package entity

import "github.com/shopspring/decimal"

// TechnicianLimit política de auto-aprobación de un técnico, por repuesto o
// por categoría. El límite por repuesto tiene precedencia sobre el de categoría.
type TechnicianLimit struct {
	ID                    string
	TechnicianID          string
	SparePartID           string // vacío si el límite es por categoría
	CategoryID            string
	MaxValuePerRequest    decimal.Decimal
	MaxQuantityPerRequest int
	RequiresApproval      bool
	AutoApproveBelow      decimal.Decimal
}
