package repository

import (
	"time"

	"github.com/jhoicas/fleetparts-api/internal/domain/entity"
)

// RequestFilter filtros de listado de solicitudes.
type RequestFilter struct {
	Status       string
	Urgency      string
	TechnicianID string
	StoreID      string
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}

// PartRequestRepository puerto de solicitudes de repuesto.
type PartRequestRepository interface {
	Create(request *entity.PartRequest) error
	GetByID(id string) (*entity.PartRequest, error)
	// GetForUpdate bloquea la fila de la solicitud dentro de una transacción.
	GetForUpdate(id string) (*entity.PartRequest, error)
	Update(request *entity.PartRequest) error
	// List devuelve la página y el total sin paginar.
	List(filter RequestFilter) ([]*entity.PartRequest, int, error)
	// ListByServiceAndPart solicitudes de la orden para un repuesto, en
	// cualquiera de los estados dados.
	ListByServiceAndPart(serviceRequestID, sparePartID string, statuses []string) ([]*entity.PartRequest, error)
}

// ApprovalHistoryRepository puerto del historial de aprobaciones (append-only).
type ApprovalHistoryRepository interface {
	Create(h *entity.ApprovalHistory) error
	ListByRequest(partRequestID string) ([]*entity.ApprovalHistory, error)
}
