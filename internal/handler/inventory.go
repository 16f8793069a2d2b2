package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"multipos/internal/dto"
	"multipos/internal/middleware"
	"multipos/internal/service"
)

type InventoryHandler struct{ svc service.InventoryService }

func NewInventoryHandler(svc service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// Create godoc
// @Summary      Create an inventory record
// @Description  Registers a product in a shop with an initial quantity and prices.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateInventoryRequest true "Record"
// @Success      201  {object} dto.InventoryResponse
// @Failure      400  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/inventory [post]
func (h *InventoryHandler) Create(c *gin.Context) {
	var req dto.CreateInventoryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), middleware.ActorID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      List inventory records
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        shop_id    query string false "Shop"
// @Param        product_id query string false "Product"
// @Param        status     query string false "IN_STOCK | LOW_STOCK | OUT_OF_STOCK"
// @Param        search     query string false "Name or SKU"
// @Param        page       query int    false "Page"
// @Param        limit      query int    false "Page size"
// @Success      200  {object} dto.ListResponse[dto.InventoryResponse]
// @Router       /v1/inventory [get]
func (h *InventoryHandler) List(c *gin.Context) {
	var filter dto.InventoryFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Get an inventory record
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Inventory record ID"
// @Success      200  {object} dto.InventoryResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/inventory/{id} [get]
func (h *InventoryHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary      Update prices and quantity
// @Description  Applies only the supplied fields. Price changes are recorded in the price history.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "Inventory record ID"
// @Param        body body dto.UpdateInventoryRequest true "Changes"
// @Success      200  {object} dto.InventoryResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Router       /v1/inventory/{id} [patch]
func (h *InventoryHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateInventoryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdatePricingAndQuantity(c.Request.Context(), middleware.ActorID(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Status godoc
// @Summary      Stock status
// @Description  Available units, LOW_STOCK/OUT_OF_STOCK/IN_STOCK classification and margin.
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Inventory record ID"
// @Success      200  {object} dto.StatusResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/inventory/{id}/status [get]
func (h *InventoryHandler) Status(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetStatus(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RecordMovement godoc
// @Summary      Record a stock movement
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "Inventory record ID"
// @Param        body body dto.RecordMovementRequest true "Movement"
// @Success      201  {object} dto.MovementResponse
// @Failure      400  {object} apierror.InsufficientStockError
// @Failure      404  {object} apierror.APIError
// @Router       /v1/inventory/{id}/movements [post]
func (h *InventoryHandler) RecordMovement(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.RecordMovementRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RecordMovement(c.Request.Context(), middleware.ActorID(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListMovements godoc
// @Summary      Movement ledger of a record
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string true  "Inventory record ID"
// @Param        type  query string false "Movement type"
// @Param        page  query int    false "Page"
// @Param        limit query int    false "Page size"
// @Success      200  {object} dto.ListResponse[dto.StockMovementResponse]
// @Router       /v1/inventory/{id}/movements [get]
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var filter dto.MovementFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListMovements(c.Request.Context(), id, filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListPriceHistory godoc
// @Summary      Price changes of a record
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Inventory record ID"
// @Success      200  {array} dto.PriceHistoryResponse
// @Router       /v1/inventory/{id}/price-history [get]
func (h *InventoryHandler) ListPriceHistory(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ListPriceHistory(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
