package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockBatch lote de recepción de un nivel de inventario: una fila por
// entrada con costo propio. La emisión FIFO consume los lotes más antiguos
// primero (ReceivedAt ascendente).
type StockBatch struct {
	ID               string
	InventoryLevelID string
	BatchNumber      string
	Quantity         int // cantidad recibida
	Remaining        int // cantidad aún disponible del lote
	UnitCost         decimal.Decimal
	ReferenceType    string
	ReferenceID      string
	ReceivedAt       time.Time
}
