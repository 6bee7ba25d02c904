package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una solicitud de repuesto.
// Pending -> Approved -> Issued -> Installed -> Returned.
// Rejected solo desde Pending; Cancelled desde Pending o Approved.
// Una devolución parcial deja el estado en Installed.
const (
	RequestPending   = "PENDING"
	RequestApproved  = "APPROVED"
	RequestRejected  = "REJECTED"
	RequestIssued    = "ISSUED"
	RequestInstalled = "INSTALLED"
	RequestReturned  = "RETURNED"
	RequestCancelled = "CANCELLED"
)

// Urgencia de la solicitud.
const (
	UrgencyNormal    = "NORMAL"
	UrgencyUrgent    = "URGENT"
	UrgencyEmergency = "EMERGENCY"
)

// PartRequest solicitud de un técnico por repuestos para una orden de servicio.
// Mapea a lo sumo a una reserva activa; tras la emisión guarda cantidad,
// costo y los lotes consumidos (en orden FIFO).
type PartRequest struct {
	ID                string
	ServiceRequestID  string
	SparePartID       string
	StoreID           string
	RequestedBy       string
	RequestedQuantity int
	Urgency           string
	Justification     string
	EstimatedCost     decimal.Decimal
	ApprovalLevel     int
	Status            string
	IssuedQuantity    int
	IssuedCost        decimal.Decimal
	IssuedAt          *time.Time
	IssuedBatchIDs    []string
	ReturnedQuantity  int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CanCancel indica si la solicitud admite cancelación en su estado actual.
func (r *PartRequest) CanCancel() bool {
	return r.Status == RequestPending || r.Status == RequestApproved
}
