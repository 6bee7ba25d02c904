package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/fleetparts-api/internal/domain/entity"
)

// CreatePartRequestRequest body para POST /api/requests.
type CreatePartRequestRequest struct {
	ServiceRequestID string `json:"service_request_id"`
	SparePartID      string `json:"spare_part_id"`
	StoreID          string `json:"store_id,omitempty"`
	Quantity         int    `json:"quantity"`
	Urgency          string `json:"urgency,omitempty"`
	Justification    string `json:"justification,omitempty"`
}

// DecisionRequest body para aprobar o rechazar una solicitud.
type DecisionRequest struct {
	Comments string `json:"comments,omitempty"`
}

// CancelRequest body para cancelar una solicitud.
type CancelRequest struct {
	Reason string `json:"reason,omitempty"`
}

// PartRequestDTO solicitud de repuesto.
type PartRequestDTO struct {
	ID                string          `json:"id"`
	ServiceRequestID  string          `json:"service_request_id"`
	SparePartID       string          `json:"spare_part_id"`
	StoreID           string          `json:"store_id"`
	RequestedBy       string          `json:"requested_by"`
	RequestedQuantity int             `json:"requested_quantity"`
	Urgency           string          `json:"urgency"`
	Justification     string          `json:"justification,omitempty"`
	EstimatedCost     decimal.Decimal `json:"estimated_cost"`
	Status            string          `json:"status"`
	IssuedQuantity    int             `json:"issued_quantity,omitempty"`
	IssuedCost        decimal.Decimal `json:"issued_cost"`
	IssuedAt          *time.Time      `json:"issued_at,omitempty"`
	IssuedBatchIDs    []string        `json:"issued_batch_ids,omitempty"`
	ReturnedQuantity  int             `json:"returned_quantity,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// FromPartRequest mapea la entidad al DTO de respuesta.
func FromPartRequest(r *entity.PartRequest) PartRequestDTO {
	return PartRequestDTO{
		ID:                r.ID,
		ServiceRequestID:  r.ServiceRequestID,
		SparePartID:       r.SparePartID,
		StoreID:           r.StoreID,
		RequestedBy:       r.RequestedBy,
		RequestedQuantity: r.RequestedQuantity,
		Urgency:           r.Urgency,
		Justification:     r.Justification,
		EstimatedCost:     r.EstimatedCost,
		Status:            r.Status,
		IssuedQuantity:    r.IssuedQuantity,
		IssuedCost:        r.IssuedCost,
		IssuedAt:          r.IssuedAt,
		IssuedBatchIDs:    r.IssuedBatchIDs,
		ReturnedQuantity:  r.ReturnedQuantity,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

// IssueResponse resultado de la emisión.
type IssueResponse struct {
	IssuedQuantity int             `json:"issued_quantity"`
	TotalCost      decimal.Decimal `json:"total_cost"`
	BatchIDs       []string        `json:"batch_ids"`
}

// InstallPartRequest body para POST /api/requests/install.
type InstallPartRequest struct {
	ServiceRequestID string           `json:"service_request_id"`
	SparePartID      string           `json:"spare_part_id"`
	Quantity         int              `json:"quantity"`
	UnitCost         *decimal.Decimal `json:"unit_cost,omitempty"`
	BatchNumber      string           `json:"batch_number,omitempty"`
	SerialNumber     string           `json:"serial_number,omitempty"`
	ReplacedPartID   string           `json:"replaced_part_id,omitempty"`
}

// InstalledPartDTO repuesto instalado en un vehículo.
type InstalledPartDTO struct {
	ID               string          `json:"id"`
	ServiceRequestID string          `json:"service_request_id"`
	SparePartID      string          `json:"spare_part_id"`
	TechnicianID     string          `json:"technician_id"`
	Quantity         int             `json:"quantity"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	SellingPrice     decimal.Decimal `json:"selling_price"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	BatchNumber      string          `json:"batch_number,omitempty"`
	SerialNumber     string          `json:"serial_number,omitempty"`
	WarrantyExpiry   time.Time       `json:"warranty_expiry"`
	ReplacedPartID   string          `json:"replaced_part_id,omitempty"`
	InstalledAt      time.Time       `json:"installed_at"`
}

// FromInstalledPart mapea la entidad al DTO de respuesta.
func FromInstalledPart(p *entity.InstalledPart) InstalledPartDTO {
	return InstalledPartDTO{
		ID:               p.ID,
		ServiceRequestID: p.ServiceRequestID,
		SparePartID:      p.SparePartID,
		TechnicianID:     p.TechnicianID,
		Quantity:         p.Quantity,
		UnitCost:         p.UnitCost,
		TotalCost:        p.TotalCost,
		SellingPrice:     p.SellingPrice,
		TotalRevenue:     p.TotalRevenue,
		BatchNumber:      p.BatchNumber,
		SerialNumber:     p.SerialNumber,
		WarrantyExpiry:   p.WarrantyExpiry,
		ReplacedPartID:   p.ReplacedPartID,
		InstalledAt:      p.InstalledAt,
	}
}

// ReturnItemRequest línea de devolución.
type ReturnItemRequest struct {
	SparePartID string `json:"spare_part_id"`
	Quantity    int    `json:"quantity"`
	Condition   string `json:"condition"` // GOOD o DAMAGED
	Reason      string `json:"reason,omitempty"`
}

// ReturnPartsRequest body para POST /api/requests/returns.
type ReturnPartsRequest struct {
	ServiceRequestID string              `json:"service_request_id"`
	Items            []ReturnItemRequest `json:"items"`
}

// ReturnItemResultDTO resultado por línea de devolución.
type ReturnItemResultDTO struct {
	SparePartID string `json:"spare_part_id"`
	Processed   bool   `json:"processed"`
	Error       string `json:"error,omitempty"`
}

// ApprovalHistoryDTO entrada del historial de aprobaciones.
type ApprovalHistoryDTO struct {
	ID               string    `json:"id"`
	Level            int       `json:"level,omitempty"`
	Approver         string    `json:"approver"`
	Decision         string    `json:"decision"`
	Comments         string    `json:"comments,omitempty"`
	AvailableAtCheck int       `json:"available_at_check"`
	CreatedAt        time.Time `json:"created_at"`
}

// FromApprovalHistory mapea la entidad al DTO de respuesta.
func FromApprovalHistory(h *entity.ApprovalHistory) ApprovalHistoryDTO {
	return ApprovalHistoryDTO{
		ID:               h.ID,
		Level:            h.Level,
		Approver:         h.Approver,
		Decision:         h.Decision,
		Comments:         h.Comments,
		AvailableAtCheck: h.AvailableAtCheck,
		CreatedAt:        h.CreatedAt,
	}
}
