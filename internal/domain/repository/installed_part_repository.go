package repository

import (
	"time"

	"github.com/jhoicas/fleetparts-api/internal/domain/entity"
)

// InstalledPartRepository puerto de repuestos instalados en vehículos.
type InstalledPartRepository interface {
	Create(part *entity.InstalledPart) error
	GetByID(id string) (*entity.InstalledPart, error)
	// ListByService solo instalaciones vigentes (no removidas).
	ListByService(serviceRequestID string) ([]*entity.InstalledPart, error)
	MarkRemoved(id, reason, removedBy string, at time.Time) error
}
