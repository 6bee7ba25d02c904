package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/fleetparts-api/internal/application/costing"
	"github.com/jhoicas/fleetparts-api/internal/application/dto"
)

// CostingHandler maneja las peticiones HTTP del motor de costos (protegido).
type CostingHandler struct {
	uc *costing.EngineUseCase
}

// NewCostingHandler construye el handler.
func NewCostingHandler(uc *costing.EngineUseCase) *CostingHandler {
	return &CostingHandler{uc: uc}
}

// GetBreakdown godoc
// @Summary      Desglose de costos vigente de una orden de servicio
// @Tags         costing
// @Security     Bearer
// @Produce      json
// @Param        service_request_id  path  string  true  "ID de la orden de servicio"
// @Success      200  {object}  dto.ServiceCostDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/services/{service_request_id}/costs [get]
func (h *CostingHandler) GetBreakdown(c *fiber.Ctx) error {
	breakdown, err := h.uc.GetBreakdown(c.Params("service_request_id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(dto.FromServiceCost(breakdown))
}

// Recalculate godoc
// @Summary      Recalcular el desglose de costos de una orden
// @Description  Idempotente: reconstruye el desglose completo desde el estado
//
//	vigente de las solicitudes y sobreescribe la fila de la orden.
//
// @Tags         costing
// @Security     Bearer
// @Produce      json
// @Param        service_request_id  path  string  true  "ID de la orden de servicio"
// @Success      200  {object}  dto.ServiceCostDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/services/{service_request_id}/costs/recalculate [post]
func (h *CostingHandler) Recalculate(c *fiber.Ctx) error {
	breakdown, err := h.uc.Recalculate(c.Context(), c.Params("service_request_id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(dto.FromServiceCost(breakdown))
}
