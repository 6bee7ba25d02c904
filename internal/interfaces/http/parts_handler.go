package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/fleetparts-api/internal/application/dto"
	"github.com/jhoicas/fleetparts-api/internal/application/parts"
)

// PartsHandler maneja las peticiones HTTP del catálogo de repuestos (protegido).
type PartsHandler struct {
	uc *parts.CatalogUseCase
}

// NewPartsHandler construye el handler.
func NewPartsHandler(uc *parts.CatalogUseCase) *PartsHandler {
	return &PartsHandler{uc: uc}
}

// GetByID godoc
// @Summary      Detalle de un repuesto
// @Tags         parts
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del repuesto"
// @Success      200  {object}  dto.SparePartDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/parts/{id} [get]
func (h *PartsHandler) GetByID(c *fiber.Ctx) error {
	part, err := h.uc.GetPart(c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(dto.FromSparePart(part))
}

// ChangePrice godoc
// @Summary      Cambiar precios de un repuesto (con historial)
// @Tags         parts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del repuesto"
// @Param        body  body  dto.ChangePriceRequest  true  "cost_price y/o selling_price"
// @Success      200   {object}  dto.SparePartDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/parts/{id}/price [patch]
func (h *PartsHandler) ChangePrice(c *fiber.Ctx) error {
	userID := GetUserID(c)
	var in dto.ChangePriceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	part, err := h.uc.ChangePrice(parts.ChangePriceInput{
		SparePartID:  c.Params("id"),
		CostPrice:    in.CostPrice,
		SellingPrice: in.SellingPrice,
		Reason:       in.Reason,
		ChangedBy:    userID,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(dto.FromSparePart(part))
}

// Discontinue godoc
// @Summary      Retirar un repuesto del catálogo activo
// @Tags         parts
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del repuesto"
// @Success      200  {object}  dto.SparePartDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/parts/{id}/discontinue [post]
func (h *PartsHandler) Discontinue(c *fiber.Ctx) error {
	part, err := h.uc.Discontinue(c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(dto.FromSparePart(part))
}

// ListPriceHistory godoc
// @Summary      Historial de precios de un repuesto
// @Tags         parts
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del repuesto"
// @Success      200  {array}  dto.PriceHistoryDTO
// @Router       /api/parts/{id}/price-history [get]
func (h *PartsHandler) ListPriceHistory(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "query inválida"})
	}
	page.DefaultPage()
	history, err := h.uc.ListPriceHistory(c.Params("id"), page.Limit, page.Offset)
	if err != nil {
		return errorResponse(c, err)
	}
	out := make([]dto.PriceHistoryDTO, 0, len(history))
	for _, e := range history {
		out = append(out, dto.FromPriceHistory(e))
	}
	return c.JSON(fiber.Map{
		"history": out,
		"page":    dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}
