package costing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/fleetparts-api/internal/domain"
	"github.com/jhoicas/fleetparts-api/internal/domain/entity"
	"github.com/jhoicas/fleetparts-api/internal/domain/parts"
	"github.com/jhoicas/fleetparts-api/internal/domain/repository"
)

// Config porcentajes del motor de costos, expresados como 18 = 18%.
type Config struct {
	TaxRate        decimal.Decimal
	OverheadPct    decimal.Decimal
	LaborMarkupPct decimal.Decimal
}

// EngineUseCase motor de costos por orden de servicio. El recálculo es
// idempotente: lee las instalaciones vigentes y sobreescribe la única fila de
// desglose de la orden.
type EngineUseCase struct {
	installedRepo repository.InstalledPartRepository
	costRepo      repository.ServiceCostRepository
	labor         LaborCostProvider
	jobCosts      JobCostWriter
	cfg           Config
}

// NewEngineUseCase construye el motor. jobCosts puede ser nil si la orden de
// servicio no recibe el total facturable.
func NewEngineUseCase(
	installedRepo repository.InstalledPartRepository,
	costRepo repository.ServiceCostRepository,
	labor LaborCostProvider,
	jobCosts JobCostWriter,
	cfg Config,
) *EngineUseCase {
	return &EngineUseCase{
		installedRepo: installedRepo,
		costRepo:      costRepo,
		labor:         labor,
		jobCosts:      jobCosts,
		cfg:           cfg,
	}
}

// Recalculate reconstruye el desglose completo de la orden. Se factura lo
// instalado en el vehículo, no lo emitido: cada instalación vigente aporta su
// costo y precio reales, y una instalación removida (reemplazo) sale del
// desglose en la siguiente corrida. Las devoluciones mueven stock, no el
// desglose.
func (uc *EngineUseCase) Recalculate(ctx context.Context, serviceRequestID string) (*entity.ServiceCostBreakdown, error) {
	if serviceRequestID == "" {
		return nil, domain.ErrInvalidInput
	}
	installed, err := uc.installedRepo.ListByService(serviceRequestID)
	if err != nil {
		return nil, err
	}

	partsCost := decimal.Zero
	partsRevenue := decimal.Zero
	for _, p := range installed {
		partsCost = partsCost.Add(p.TotalCost)
		partsRevenue = partsRevenue.Add(p.TotalRevenue)
	}

	laborCost := decimal.Zero
	if uc.labor != nil {
		laborCost, err = uc.labor.LaborCost(serviceRequestID)
		if err != nil {
			return nil, err
		}
	}

	rollup := parts.Rollup(partsCost, partsRevenue, laborCost,
		uc.cfg.LaborMarkupPct, uc.cfg.OverheadPct, uc.cfg.TaxRate)

	breakdown := &entity.ServiceCostBreakdown{
		ID:               uuid.New().String(),
		ServiceRequestID: serviceRequestID,
		PartsCost:        partsCost,
		PartsRevenue:     partsRevenue,
		PartsMarkup:      partsRevenue.Sub(partsCost),
		LaborCost:        laborCost,
		LaborMarkup:      rollup.LaborMarkup,
		Overhead:         rollup.Overhead,
		Subtotal:         rollup.Subtotal,
		Tax:              rollup.Tax,
		TotalCost:        rollup.TotalCost,
		TotalBilled:      rollup.TotalBilled,
		NetMargin:        rollup.NetMargin,
		MarginPercent:    rollup.MarginPercent,
		CalculatedAt:     time.Now(),
	}
	if err := uc.costRepo.Upsert(breakdown); err != nil {
		return nil, err
	}
	if uc.jobCosts != nil {
		if err := uc.jobCosts.SetJobCost(serviceRequestID, rollup.TotalBilled); err != nil {
			return nil, err
		}
	}
	return breakdown, nil
}

// GetBreakdown devuelve el desglose vigente de la orden.
func (uc *EngineUseCase) GetBreakdown(serviceRequestID string) (*entity.ServiceCostBreakdown, error) {
	breakdown, err := uc.costRepo.GetByService(serviceRequestID)
	if err != nil {
		return nil, err
	}
	if breakdown == nil {
		return nil, domain.ErrNotFound
	}
	return breakdown, nil
}
