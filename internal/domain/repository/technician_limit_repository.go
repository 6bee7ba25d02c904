package repository

import "github.com/jhoicas/fleetparts-api/internal/domain/entity"

// TechnicianLimitRepository puerto de límites de auto-aprobación por técnico.
// Ambos métodos devuelven nil sin error cuando no hay límite configurado.
type TechnicianLimitRepository interface {
	GetForPart(technicianID, sparePartID string) (*entity.TechnicianLimit, error)
	GetForCategory(technicianID, categoryID string) (*entity.TechnicianLimit, error)
}
