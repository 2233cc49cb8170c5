package admin

import (
	"github.com/gin-gonic/gin"

	"shipdesk/internal/services"
	"shipdesk/internal/utils"
	"shipdesk/internal/validators"
	"shipdesk/pkg/logger"
)

type AnalyticsHandler struct {
	analyticsService services.AnalyticsService
	logger           *logger.Logger
}

func NewAnalyticsHandler(analyticsService services.AnalyticsService, log *logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		logger:           log,
	}
}

func (h *AnalyticsHandler) GetStats(c *gin.Context) {
	stats, err := h.analyticsService.GetStats(c.Request.Context(), c.Query("companyId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Rate card statistics retrieved successfully", stats)
}

func (h *AnalyticsHandler) GetRateCardAnalytics(c *gin.Context) {
	analytics, err := h.analyticsService.GetRateCardAnalytics(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Rate card analytics retrieved successfully", analytics)
}

func (h *AnalyticsHandler) GetRevenueSeries(c *gin.Context) {
	var query validators.RevenueSeriesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.BadRequestResponse(c, "invalid query: "+err.Error())
		return
	}

	series, err := h.analyticsService.GetRevenueSeries(c.Request.Context(), c.Param("id"), &query)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Revenue series retrieved successfully", series)
}

func (h *AnalyticsHandler) GetHistory(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	entries, total, err := h.analyticsService.GetHistory(c.Request.Context(), c.Param("id"), params)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.PaginatedResponse(c, "Rate card history retrieved successfully", entries, utils.CreatePaginationMeta(params, total))
}
