package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock.
const (
	MovementTypeIN         = "IN"
	MovementTypeOUT        = "OUT"
	MovementTypeTRANSFER   = "TRANSFER"
	MovementTypeADJUSTMENT = "ADJUSTMENT"
	MovementTypeDAMAGED    = "DAMAGED"
	MovementTypeRETURN     = "RETURN"
)

// Tipos de referencia: qué originó el movimiento.
const (
	ReferenceInitialization = "INITIALIZATION"
	ReferencePurchaseOrder  = "PURCHASE_ORDER"
	ReferenceServiceRequest = "SERVICE_REQUEST"
	ReferenceStockCount     = "STOCK_COUNT"
	ReferenceReturn         = "RETURN"
)

// StockMovement fila append-only del libro de movimientos. Nunca se muta ni
// se borra; cada mutación de stock produce exactamente una fila en la misma
// transacción que la actualización del InventoryLevel.
type StockMovement struct {
	ID               string
	InventoryLevelID string
	BatchID          string // lote consumido/creado, vacío si no aplica
	Type             string
	Quantity         int // con signo: negativo para salidas
	PreviousStock    int
	NewStock         int
	UnitCost         decimal.Decimal
	ReferenceType    string
	ReferenceID      string
	Reason           string
	CreatedBy        string
	CreatedAt        time.Time
}
