package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/fleetparts-api/internal/application/dto"
	"github.com/jhoicas/fleetparts-api/internal/application/workflow"
	"github.com/jhoicas/fleetparts-api/internal/domain/repository"
)

// RequestHandler maneja las peticiones HTTP del workflow de solicitudes (protegido).
type RequestHandler struct {
	uc *workflow.RequestWorkflowUseCase
}

// NewRequestHandler construye el handler.
func NewRequestHandler(uc *workflow.RequestWorkflowUseCase) *RequestHandler {
	return &RequestHandler{uc: uc}
}

// Create godoc
// @Summary      Crear solicitud de repuesto
// @Description  Evalúa el límite del técnico y la disponibilidad; puede quedar
//
//	auto-aprobada (y emitida, según política) en la misma operación.
//
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePartRequestRequest  true  "service_request_id, spare_part_id, quantity"
// @Success      201   {object}  dto.PartRequestDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/requests [post]
func (h *RequestHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	var in dto.CreatePartRequestRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	request, err := h.uc.CreateRequest(c.Context(), workflow.CreateRequestInput{
		ServiceRequestID: in.ServiceRequestID,
		SparePartID:      in.SparePartID,
		TechnicianID:     userID,
		StoreID:          in.StoreID,
		Quantity:         in.Quantity,
		Urgency:          in.Urgency,
		Justification:    in.Justification,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromPartRequest(request))
}

// GetByID godoc
// @Summary      Detalle de una solicitud
// @Tags         requests
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.PartRequestDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/requests/{id} [get]
func (h *RequestHandler) GetByID(c *fiber.Ctx) error {
	request, err := h.uc.GetRequest(c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(dto.FromPartRequest(request))
}

// List godoc
// @Summary      Listar solicitudes con filtros
// @Tags         requests
// @Security     Bearer
// @Produce      json
// @Param        status         query  string  false  "PENDING, APPROVED, ..."
// @Param        urgency        query  string  false  "NORMAL, URGENT, EMERGENCY"
// @Param        technician_id  query  string  false  "Filtrar por técnico"
// @Param        store_id       query  string  false  "Filtrar por almacén"
// @Success      200  {array}  dto.PartRequestDTO
// @Router       /api/requests [get]
func (h *RequestHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "query inválida"})
	}
	page.DefaultPage()
	from, to, err := parseTimeRange(c.Query("from"), c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "rango de fechas inválido"})
	}
	requests, total, err := h.uc.ListRequests(repository.RequestFilter{
		Status:       c.Query("status"),
		Urgency:      c.Query("urgency"),
		TechnicianID: c.Query("technician_id"),
		StoreID:      c.Query("store_id"),
		From:         from,
		To:           to,
		Limit:        page.Limit,
		Offset:       page.Offset,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	out := make([]dto.PartRequestDTO, 0, len(requests))
	for _, r := range requests {
		out = append(out, dto.FromPartRequest(r))
	}
	return c.JSON(fiber.Map{
		"requests": out,
		"page":     dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	})
}

// Approve godoc
// @Summary      Aprobar una solicitud Pending
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true   "ID de la solicitud"
// @Param        body  body  dto.DecisionRequest  false  "comments"
// @Success      200   {object}  dto.PartRequestDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/approve [post]
func (h *RequestHandler) Approve(c *fiber.Ctx) error {
	userID := GetUserID(c)
	var in dto.DecisionRequest
	_ = c.BodyParser(&in) // body opcional
	if err := h.uc.Approve(c.Context(), c.Params("id"), userID, in.Comments); err != nil {
		return errorResponse(c, err)
	}
	request, err := h.uc.GetRequest(c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(dto.FromPartRequest(request))
}

// Reject godoc
// @Summary      Rechazar una solicitud Pending
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true   "ID de la solicitud"
// @Param        body  body  dto.DecisionRequest  false  "comments"
// @Success      200   {object}  dto.PartRequestDTO
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/reject [post]
func (h *RequestHandler) Reject(c *fiber.Ctx) error {
	userID := GetUserID(c)
	var in dto.DecisionRequest
	_ = c.BodyParser(&in)
	if err := h.uc.Reject(c.Context(), c.Params("id"), userID, in.Comments); err != nil {
		return errorResponse(c, err)
	}
	request, err := h.uc.GetRequest(c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(dto.FromPartRequest(request))
}

// Cancel godoc
// @Summary      Cancelar una solicitud Pending o Approved
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true   "ID de la solicitud"
// @Param        body  body  dto.CancelRequest  false  "reason"
// @Success      200   {object}  dto.PartRequestDTO
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/cancel [post]
func (h *RequestHandler) Cancel(c *fiber.Ctx) error {
	userID := GetUserID(c)
	var in dto.CancelRequest
	_ = c.BodyParser(&in)
	if err := h.uc.Cancel(c.Context(), c.Params("id"), userID, in.Reason); err != nil {
		return errorResponse(c, err)
	}
	request, err := h.uc.GetRequest(c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(dto.FromPartRequest(request))
}

// Issue godoc
// @Summary      Emitir una solicitud Approved (asignación FIFO)
// @Tags         requests
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.IssueResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/issue [post]
func (h *RequestHandler) Issue(c *fiber.Ctx) error {
	result, err := h.uc.Issue(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(dto.IssueResponse{
		IssuedQuantity: result.IssuedQuantity,
		TotalCost:      result.TotalCost,
		BatchIDs:       result.BatchIDs,
	})
}

// ListApprovals godoc
// @Summary      Historial de aprobaciones de una solicitud
// @Tags         requests
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la solicitud"
// @Success      200  {array}   dto.ApprovalHistoryDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/approvals [get]
func (h *RequestHandler) ListApprovals(c *fiber.Ctx) error {
	history, err := h.uc.ListApprovals(c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	out := make([]dto.ApprovalHistoryDTO, 0, len(history))
	for _, entry := range history {
		out = append(out, dto.FromApprovalHistory(entry))
	}
	return c.JSON(fiber.Map{"total": len(out), "approvals": out})
}

// Install godoc
// @Summary      Registrar la instalación de un repuesto emitido
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.InstallPartRequest  true  "service_request_id, spare_part_id, quantity"
// @Success      201   {object}  dto.InstalledPartDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/requests/install [post]
func (h *RequestHandler) Install(c *fiber.Ctx) error {
	userID := GetUserID(c)
	var in dto.InstallPartRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	installed, err := h.uc.Install(c.Context(), workflow.InstallInput{
		ServiceRequestID: in.ServiceRequestID,
		SparePartID:      in.SparePartID,
		TechnicianID:     userID,
		Quantity:         in.Quantity,
		UnitCost:         in.UnitCost,
		BatchNumber:      in.BatchNumber,
		SerialNumber:     in.SerialNumber,
		ReplacedPartID:   in.ReplacedPartID,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromInstalledPart(installed))
}

// Return godoc
// @Summary      Procesar devoluciones de una orden de servicio
// @Description  Única operación con éxito parcial: cada línea se evalúa por
//
//	separado y el resultado se reporta línea a línea.
//
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReturnPartsRequest  true  "service_request_id, items"
// @Success      200   {array}   dto.ReturnItemResultDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/requests/returns [post]
func (h *RequestHandler) Return(c *fiber.Ctx) error {
	userID := GetUserID(c)
	var in dto.ReturnPartsRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	items := make([]workflow.ReturnItem, 0, len(in.Items))
	for _, item := range in.Items {
		items = append(items, workflow.ReturnItem{
			SparePartID: item.SparePartID,
			Quantity:    item.Quantity,
			Condition:   item.Condition,
			Reason:      item.Reason,
		})
	}
	results, err := h.uc.Return(c.Context(), in.ServiceRequestID, items, userID)
	if err != nil {
		return errorResponse(c, err)
	}
	out := make([]dto.ReturnItemResultDTO, 0, len(results))
	for _, r := range results {
		out = append(out, dto.ReturnItemResultDTO{SparePartID: r.SparePartID, Processed: r.Processed, Error: r.Error})
	}
	return c.JSON(fiber.Map{"results": out})
}

// ListInstalled godoc
// @Summary      Repuestos instalados vigentes de una orden de servicio
// @Tags         requests
// @Security     Bearer
// @Produce      json
// @Param        service_request_id  path  string  true  "ID de la orden de servicio"
// @Success      200  {array}  dto.InstalledPartDTO
// @Router       /api/services/{service_request_id}/installed-parts [get]
func (h *RequestHandler) ListInstalled(c *fiber.Ctx) error {
	installed, err := h.uc.ListInstalled(c.Params("service_request_id"))
	if err != nil {
		return errorResponse(c, err)
	}
	out := make([]dto.InstalledPartDTO, 0, len(installed))
	for _, p := range installed {
		out = append(out, dto.FromInstalledPart(p))
	}
	return c.JSON(fiber.Map{"total": len(out), "installed_parts": out})
}
