package parts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/fleetparts-api/internal/domain"
	"github.com/jhoicas/fleetparts-api/internal/domain/entity"
	domainparts "github.com/jhoicas/fleetparts-api/internal/domain/parts"
	"github.com/jhoicas/fleetparts-api/internal/domain/repository"
)

// CatalogUseCase operaciones de catálogo: cambio de precio con historial y
// ciclo de vida del repuesto.
type CatalogUseCase struct {
	partRepo    repository.SparePartRepository
	historyRepo repository.PriceHistoryRepository
}

// NewCatalogUseCase construye el caso de uso de catálogo.
func NewCatalogUseCase(partRepo repository.SparePartRepository, historyRepo repository.PriceHistoryRepository) *CatalogUseCase {
	return &CatalogUseCase{partRepo: partRepo, historyRepo: historyRepo}
}

// ChangePriceInput entrada del cambio de precio. Un precio nil se conserva.
type ChangePriceInput struct {
	SparePartID  string
	CostPrice    *decimal.Decimal
	SellingPrice *decimal.Decimal
	Reason       string
	ChangedBy    string
}

// ChangePrice actualiza los precios del repuesto y registra la entrada de
// historial con los valores anterior y nuevo. Rechaza precios negativos y
// cambios vacíos.
func (uc *CatalogUseCase) ChangePrice(in ChangePriceInput) (*entity.SparePart, error) {
	if in.SparePartID == "" || in.ChangedBy == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.CostPrice == nil && in.SellingPrice == nil {
		return nil, domain.ErrInvalidInput
	}
	if (in.CostPrice != nil && in.CostPrice.IsNegative()) ||
		(in.SellingPrice != nil && in.SellingPrice.IsNegative()) {
		return nil, domain.ErrInvalidInput
	}
	part, err := uc.partRepo.GetByID(in.SparePartID)
	if err != nil {
		return nil, err
	}
	if part == nil || part.Lifecycle == entity.PartLifecycleDeleted {
		return nil, domain.ErrNotFound
	}

	entry := &entity.PriceHistoryEntry{
		ID:              uuid.New().String(),
		SparePartID:     part.ID,
		OldCostPrice:    part.CostPrice,
		NewCostPrice:    part.CostPrice,
		OldSellingPrice: part.SellingPrice,
		NewSellingPrice: part.SellingPrice,
		Reason:          in.Reason,
		ChangedBy:       in.ChangedBy,
		ChangedAt:       time.Now(),
	}
	if in.CostPrice != nil {
		part.CostPrice = *in.CostPrice
		entry.NewCostPrice = *in.CostPrice
	}
	if in.SellingPrice != nil {
		part.SellingPrice = *in.SellingPrice
		entry.NewSellingPrice = *in.SellingPrice
	}
	if part.CostPrice.IsPositive() {
		part.MarkupPercent = part.SellingPrice.Sub(part.CostPrice).
			Mul(decimal.NewFromInt(100)).Div(part.CostPrice)
	}
	part.UpdatedAt = entry.ChangedAt

	if err := uc.partRepo.Update(part); err != nil {
		return nil, err
	}
	if err := uc.historyRepo.Create(entry); err != nil {
		return nil, err
	}
	return part, nil
}

// Discontinue retira el repuesto del catálogo activo. Las existencias y el
// historial quedan intactos; solo se bloquean nuevas solicitudes.
func (uc *CatalogUseCase) Discontinue(sparePartID string) (*entity.SparePart, error) {
	part, err := uc.partRepo.GetByID(sparePartID)
	if err != nil {
		return nil, err
	}
	if part == nil || part.Lifecycle == entity.PartLifecycleDeleted {
		return nil, domain.ErrNotFound
	}
	if part.Lifecycle == entity.PartLifecycleDiscontinued {
		return part, nil
	}
	part.Lifecycle = entity.PartLifecycleDiscontinued
	part.UpdatedAt = time.Now()
	if err := uc.partRepo.Update(part); err != nil {
		return nil, err
	}
	return part, nil
}

// GetPart devuelve un repuesto por ID.
func (uc *CatalogUseCase) GetPart(id string) (*entity.SparePart, error) {
	part, err := uc.partRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if part == nil || part.Lifecycle == entity.PartLifecycleDeleted {
		return nil, domain.ErrNotFound
	}
	return part, nil
}

// ListPriceHistory historial de precios del repuesto, más reciente primero.
func (uc *CatalogUseCase) ListPriceHistory(sparePartID string, limit, offset int) ([]*entity.PriceHistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	return uc.historyRepo.ListBySparePart(sparePartID, limit, offset)
}

// EstimateValue valoración rápida de una cantidad al precio de venta vigente.
func (uc *CatalogUseCase) EstimateValue(sparePartID string, quantity int) (decimal.Decimal, error) {
	if quantity <= 0 {
		return decimal.Zero, domain.ErrInvalidInput
	}
	part, err := uc.GetPart(sparePartID)
	if err != nil {
		return decimal.Zero, err
	}
	return domainparts.EstimatedCost(part.SellingPrice, quantity), nil
}
