package parts

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// EstimatedCost costo estimado de una solicitud: precio de venta * cantidad.
func EstimatedCost(sellingPrice decimal.Decimal, quantity int) decimal.Decimal {
	return sellingPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// WarrantyExpiry fecha de vencimiento de garantía: instalación + meses.
func WarrantyExpiry(installedAt time.Time, warrantyMonths int) time.Time {
	return installedAt.AddDate(0, warrantyMonths, 0)
}

// CostRollup componentes del desglose de costos de una orden de servicio.
// Cálculo puro y determinista: las mismas entradas producen el mismo desglose.
type CostRollup struct {
	LaborMarkup   decimal.Decimal
	Overhead      decimal.Decimal
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	TotalCost     decimal.Decimal
	TotalBilled   decimal.Decimal
	NetMargin     decimal.Decimal
	MarginPercent decimal.Decimal
}

// Rollup aplica el recargo de mano de obra y el porcentaje de overhead sobre
// (repuestos + mano de obra), y el impuesto sobre el subtotal post-overhead.
// Los porcentajes se expresan como 18 = 18%.
func Rollup(partsCost, partsRevenue, laborCost, laborMarkupPct, overheadPct, taxRate decimal.Decimal) CostRollup {
	laborMarkup := laborCost.Mul(laborMarkupPct).Div(hundred)
	overhead := partsCost.Add(laborCost).Mul(overheadPct).Div(hundred)

	subtotal := partsRevenue.Add(laborCost).Add(laborMarkup).Add(overhead)
	tax := subtotal.Mul(taxRate).Div(hundred)

	totalCost := partsCost.Add(laborCost).Add(overhead)
	totalBilled := subtotal.Add(tax)
	netMargin := subtotal.Sub(totalCost)

	marginPercent := decimal.Zero
	if subtotal.IsPositive() {
		marginPercent = netMargin.Mul(hundred).Div(subtotal)
	}
	return CostRollup{
		LaborMarkup:   laborMarkup,
		Overhead:      overhead,
		Subtotal:      subtotal,
		Tax:           tax,
		TotalCost:     totalCost,
		TotalBilled:   totalBilled,
		NetMargin:     netMargin,
		MarginPercent: marginPercent,
	}
}
