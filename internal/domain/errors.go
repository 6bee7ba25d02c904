package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicateInventory = errors.New("nivel de inventario ya existe")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrInvalidTransition  = errors.New("transición de estado no permitida")
	ErrPolicyViolation    = errors.New("límite del técnico excedido sin vía de aprobación")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrUnauthorized       = errors.New("no autorizado")
)

// StockShortage indica stock insuficiente e informa la cantidad realmente
// disponible, para que el caller pueda reducir la solicitud en vez de reintentar.
type StockShortage struct {
	SparePartID string
	StoreID     string
	Requested   int
	Available   int
}

func (e *StockShortage) Error() string {
	return fmt.Sprintf("stock insuficiente para repuesto %s en almacén %s: solicitado %d, disponible %d",
		e.SparePartID, e.StoreID, e.Requested, e.Available)
}

// Is permite errors.Is(err, ErrInsufficientStock) sobre un StockShortage.
func (e *StockShortage) Is(target error) bool {
	return target == ErrInsufficientStock
}

// InvalidTransition indica que la operación no es legal desde el estado actual.
type InvalidTransition struct {
	RequestID string
	From      string
	Op        string
}

func (e *InvalidTransition) Error() string {
	return fmt.Sprintf("solicitud %s: operación %s no permitida desde estado %s", e.RequestID, e.Op, e.From)
}

func (e *InvalidTransition) Is(target error) bool {
	return target == ErrInvalidTransition
}
