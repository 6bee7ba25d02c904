package entity

// Estados de orden de servicio relevantes para el motor de repuestos.
// La orden pertenece a un colaborador externo; aquí solo la vista mínima.
const (
	JobStatusAwaitingParts = "AWAITING_PARTS"
	JobStatusInProgress    = "IN_PROGRESS"
)

// ServiceJob vista mínima de una orden de servicio (colaborador externo).
type ServiceJob struct {
	ID      string
	StoreID string
	Status  string
}
