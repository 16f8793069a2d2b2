package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"multipos/internal/dto"
	"multipos/internal/service"
)

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

// ProfitLoss godoc
// @Summary      Profit and loss
// @Description  Revenue, cost of goods and gross margin of completed sales in an inclusive day range. Defaults to today.
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        shop_id query string false "Shop"
// @Param        from    query string false "First day (YYYY-MM-DD)"
// @Param        to      query string false "Last day (YYYY-MM-DD)"
// @Success      200  {object} dto.ProfitLossResponse
// @Router       /v1/reports/profit-loss [get]
func (h *ReportsHandler) ProfitLoss(c *gin.Context) {
	var filter dto.ReportFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ProfitAndLoss(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// LowStock godoc
// @Summary      Records at or below their minimum stock
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        shop_id query string false "Shop"
// @Success      200  {array} dto.LowStockItem
// @Router       /v1/reports/low-stock [get]
func (h *ReportsHandler) LowStock(c *gin.Context) {
	shopID, ok := optionalShopQuery(c)
	if !ok {
		return
	}
	resp, err := h.svc.LowStock(c.Request.Context(), shopID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Dashboard godoc
// @Summary      Today's figures and stock alerts
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        shop_id query string false "Shop"
// @Success      200  {object} dto.DashboardResponse
// @Router       /v1/reports/dashboard [get]
func (h *ReportsHandler) Dashboard(c *gin.Context) {
	shopID, ok := optionalShopQuery(c)
	if !ok {
		return
	}
	resp, err := h.svc.Dashboard(c.Request.Context(), shopID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
