package admin

import (
	"github.com/gin-gonic/gin"

	"shipdesk/internal/services"
	"shipdesk/internal/utils"
	"shipdesk/internal/validators"
	"shipdesk/pkg/logger"
)

type RateCardHandler struct {
	rateCardService services.RateCardService
	logger          *logger.Logger
}

func NewRateCardHandler(rateCardService services.RateCardService, log *logger.Logger) *RateCardHandler {
	return &RateCardHandler{
		rateCardService: rateCardService,
		logger:          log,
	}
}

// ListRateCards returns a filtered, paginated page of rate cards
func (h *RateCardHandler) ListRateCards(c *gin.Context) {
	var query validators.ListRateCardsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.BadRequestResponse(c, "invalid query: "+err.Error())
		return
	}

	filter, err := query.ToFilter()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	params := utils.GetPaginationParams(c)
	cards, total, err := h.rateCardService.List(c.Request.Context(), filter, params)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.PaginatedResponse(c, "Rate cards retrieved successfully", cards, utils.CreatePaginationMeta(params, total))
}

func (h *RateCardHandler) GetRateCard(c *gin.Context) {
	card, err := h.rateCardService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Rate card retrieved successfully", card)
}

func (h *RateCardHandler) CreateRateCard(c *gin.Context) {
	var req validators.CreateRateCardRequest
	if !bindJSON(c, &req) {
		return
	}

	card, err := h.rateCardService.Create(c.Request.Context(), &req, actorFromContext(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.CreatedResponse(c, "Rate card created successfully", card)
}

// UpdateRateCard applies a partial patch; absent fields are left unchanged
func (h *RateCardHandler) UpdateRateCard(c *gin.Context) {
	var req validators.UpdateRateCardRequest
	if !bindJSON(c, &req) {
		return
	}

	card, err := h.rateCardService.Update(c.Request.Context(), c.Param("id"), &req, actorFromContext(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Rate card updated successfully", card)
}

func (h *RateCardHandler) DeleteRateCard(c *gin.Context) {
	if err := h.rateCardService.Delete(c.Request.Context(), c.Param("id"), actorFromContext(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Rate card deleted successfully", nil)
}

func (h *RateCardHandler) CloneRateCard(c *gin.Context) {
	card, err := h.rateCardService.Clone(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.CreatedResponse(c, "Rate card cloned successfully", card)
}

func (h *RateCardHandler) BulkUpdate(c *gin.Context) {
	var req validators.BulkUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.rateCardService.BulkUpdate(c.Request.Context(), &req, actorFromContext(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Rate cards updated successfully", result)
}
