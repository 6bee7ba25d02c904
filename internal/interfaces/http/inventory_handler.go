package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/fleetparts-api/internal/application/dto"
	"github.com/jhoicas/fleetparts-api/internal/application/ledger"
)

// InventoryHandler maneja las peticiones HTTP del libro de stock (protegido).
type InventoryHandler struct {
	uc *ledger.StockLedgerUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *ledger.StockLedgerUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// InitializeStock godoc
// @Summary      Inicializar nivel de stock de un (repuesto, almacén)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.InitializeStockRequest  true  "spare_part_id, store_id, initial_stock, reorder_level"
// @Success      201   {object}  dto.InventoryLevelDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/levels [post]
func (h *InventoryHandler) InitializeStock(c *fiber.Ctx) error {
	userID := GetUserID(c)
	var in dto.InitializeStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	level, err := h.uc.InitializeStock(c.Context(), ledger.InitializeStockInput{
		SparePartID:  in.SparePartID,
		StoreID:      in.StoreID,
		StoreName:    in.StoreName,
		InitialStock: in.InitialStock,
		MinimumStock: in.MinimumStock,
		MaximumStock: in.MaximumStock,
		ReorderLevel: in.ReorderLevel,
		CreatedBy:    userID,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromInventoryLevel(level))
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de stock
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "spare_part_id, store_id, type, quantity, unit_cost (entradas)"
// @Success      201   {object}  dto.StockMovementDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	userID := GetUserID(c)
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	movement, err := h.uc.RecordMovement(c.Context(), ledger.MovementInput{
		SparePartID:   in.SparePartID,
		StoreID:       in.StoreID,
		Type:          in.Type,
		Quantity:      in.Quantity,
		UnitCost:      in.UnitCost,
		BatchNumber:   in.BatchNumber,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		Reason:        in.Reason,
		CreatedBy:     userID,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromStockMovement(movement))
}

// GetLevel godoc
// @Summary      Nivel de stock de un (repuesto, almacén)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        spare_part_id  path  string  true  "ID del repuesto"
// @Param        store_id       path  string  true  "ID del almacén"
// @Success      200  {object}  dto.InventoryLevelDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/levels/{spare_part_id}/{store_id} [get]
func (h *InventoryHandler) GetLevel(c *fiber.Ctx) error {
	level, err := h.uc.GetLevel(c.Params("spare_part_id"), c.Params("store_id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(dto.FromInventoryLevel(level))
}

// ListMovements godoc
// @Summary      Movimientos de un (repuesto, almacén)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        spare_part_id  path   string  true   "ID del repuesto"
// @Param        store_id       path   string  true   "ID del almacén"
// @Param        from           query  string  false  "Fecha desde (RFC3339)"
// @Param        to             query  string  false  "Fecha hasta (RFC3339)"
// @Success      200  {array}   dto.StockMovementDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/levels/{spare_part_id}/{store_id}/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "query inválida"})
	}
	page.DefaultPage()
	from, to, err := parseTimeRange(c.Query("from"), c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "rango de fechas inválido"})
	}
	movements, err := h.uc.ListMovements(c.Params("spare_part_id"), c.Params("store_id"), from, to, page.Limit, page.Offset)
	if err != nil {
		return errorResponse(c, err)
	}
	out := make([]dto.StockMovementDTO, 0, len(movements))
	for _, m := range movements {
		out = append(out, dto.FromStockMovement(m))
	}
	return c.JSON(fiber.Map{
		"movements": out,
		"page":      dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// ListLowStock godoc
// @Summary      Niveles en o por debajo del nivel de reorden
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        store_id  query  string  false  "Filtrar por almacén. Vacío = todos."
// @Success      200  {array}  dto.InventoryLevelDTO
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) ListLowStock(c *fiber.Ctx) error {
	levels, err := h.uc.ListLowStock(c.Context(), c.Query("store_id"))
	if err != nil {
		return errorResponse(c, err)
	}
	out := make([]dto.InventoryLevelDTO, 0, len(levels))
	for _, l := range levels {
		out = append(out, dto.FromInventoryLevel(l))
	}
	return c.JSON(fiber.Map{"total": len(out), "levels": out})
}

// StockCount godoc
// @Summary      Registrar un conteo físico de stock
// @Description  Por cada línea con varianza aplica un ADJUSTMENT con referencia
//
//	STOCK_COUNT; todo el conteo corre en una transacción.
//
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockCountRequest  true  "store_id, items"
// @Success      200   {object}  dto.StockCountResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/stock-count [post]
func (h *InventoryHandler) StockCount(c *fiber.Ctx) error {
	userID := GetUserID(c)
	var in dto.StockCountRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	items := make([]ledger.CountItem, 0, len(in.Items))
	for _, item := range in.Items {
		items = append(items, ledger.CountItem{SparePartID: item.SparePartID, PhysicalCount: item.PhysicalCount})
	}
	adjustments, totalVariance, err := h.uc.StockCount(c.Context(), in.StoreID, items, userID)
	if err != nil {
		return errorResponse(c, err)
	}
	out := dto.StockCountResponse{TotalVariance: totalVariance}
	for _, adj := range adjustments {
		out.Adjustments = append(out.Adjustments, dto.StockCountAdjustmentDTO{
			SparePartID: adj.SparePartID,
			Previous:    adj.Previous,
			Counted:     adj.Counted,
			Variance:    adj.Variance,
			Adjusted:    adj.Adjusted,
		})
	}
	return c.JSON(out)
}

func parseTimeRange(fromStr, toStr string) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if fromStr != "" {
		t, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			return nil, nil, err
		}
		from = &t
	}
	if toStr != "" {
		t, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			return nil, nil, err
		}
		to = &t
	}
	return from, to, nil
}
