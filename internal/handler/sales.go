package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"multipos/internal/apierror"
	"multipos/internal/dto"
	"multipos/internal/middleware"
	"multipos/internal/model"
	"multipos/internal/service"
)

type SalesHandler struct{ svc service.SaleService }

func NewSalesHandler(svc service.SaleService) *SalesHandler { return &SalesHandler{svc: svc} }

// Create godoc
// @Summary      Register a sale
// @Description  Validates every line, then decrements stock and writes the sale atomically. Any failing line rejects the whole sale.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateSaleRequest true "Sale"
// @Success      201  {object} dto.CreateSaleResponse
// @Failure      400  {object} apierror.InsufficientStockError
// @Failure      403  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Router       /v1/sales [post]
func (h *SalesHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if !cashierMaySell(c, req) {
		c.JSON(http.StatusForbidden, apierror.New("cashier is not assigned to this shop"))
		return
	}
	resp, err := h.svc.CreateSale(c.Request.Context(), middleware.ActorID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// cashierMaySell rejects cashiers bound to a shop selling from another one.
func cashierMaySell(c *gin.Context, req dto.CreateSaleRequest) bool {
	claims := middleware.GetClaims(c)
	bound := middleware.BoundShopID(c)
	if claims == nil || claims.Role != model.RoleCashier || bound == nil {
		return true
	}
	shops := []string{req.ShopID}
	for _, it := range req.Items {
		if it.ShopID != nil {
			shops = append(shops, *it.ShopID)
		}
	}
	for _, s := range shops {
		id, err := uuid.Parse(s)
		if err != nil || id != *bound {
			return false
		}
	}
	return true
}

// List godoc
// @Summary      List sales
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        shop_id query string false "Shop"
// @Param        date    query string false "Day (YYYY-MM-DD)"
// @Param        status  query string false "completed | voided | all"
// @Param        page    query int    false "Page"
// @Param        limit   query int    false "Page size"
// @Success      200  {object} dto.ListResponse[dto.SaleResponse]
// @Router       /v1/sales [get]
func (h *SalesHandler) List(c *gin.Context) {
	var filter dto.SaleFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListSales(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Get a sale with its items
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Sale ID"
// @Success      200  {object} dto.SaleResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/sales/{id} [get]
func (h *SalesHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetSale(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Void godoc
// @Summary      Void a sale
// @Description  Returns every sold unit to stock through RETURN movements and marks the sale voided.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string              true "Sale ID"
// @Param        body body dto.VoidSaleRequest true "Reason"
// @Success      200  {object} dto.SaleResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Router       /v1/sales/{id}/void [post]
func (h *SalesHandler) Void(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.VoidSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.VoidSale(c.Request.Context(), middleware.ActorID(c), id, req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
