package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InstalledPart consumo real de un repuesto en un vehículo.
// WarrantyExpiry se calcula al instalar: fecha de instalación + meses de
// garantía del repuesto.
type InstalledPart struct {
	ID               string
	ServiceRequestID string
	SparePartID      string
	TechnicianID     string
	Quantity         int
	UnitCost         decimal.Decimal
	TotalCost        decimal.Decimal
	SellingPrice     decimal.Decimal
	TotalRevenue     decimal.Decimal
	BatchNumber      string
	SerialNumber     string
	WarrantyExpiry   time.Time
	ReplacedPartID   string // InstalledPart sustituido, vacío si no aplica
	RemovedAt        *time.Time
	RemovalReason    string
	RemovedBy        string
	InstalledAt      time.Time
}
