package entity

import "time"

// Decisiones posibles sobre una solicitud.
const (
	DecisionApproved = "APPROVED"
	DecisionRejected = "REJECTED"
	DecisionPending  = "PENDING"
)

// SystemApprover actor registrado cuando la aprobación es automática.
const SystemApprover = "system"

// ApprovalHistory registro inmutable de una decisión de aprobación.
// Una solicitud escalada por niveles acumula varias entradas.
type ApprovalHistory struct {
	ID               string
	PartRequestID    string
	Level            int
	Approver         string // "system" en aprobaciones automáticas
	Decision         string
	Comments         string
	AvailableAtCheck int // foto de disponibilidad al decidir
	CreatedAt        time.Time
}
