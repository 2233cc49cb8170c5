package admin

import (
	"github.com/gin-gonic/gin"

	"shipdesk/internal/services"
	"shipdesk/internal/utils"
	"shipdesk/internal/validators"
	"shipdesk/pkg/logger"
)

type AssignmentHandler struct {
	assignmentService services.AssignmentService
	logger            *logger.Logger
}

func NewAssignmentHandler(assignmentService services.AssignmentService, log *logger.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentService: assignmentService,
		logger:            log,
	}
}

func (h *AssignmentHandler) Assign(c *gin.Context) {
	var req validators.AssignRequest
	if !bindJSON(c, &req) {
		return
	}

	assignment, err := h.assignmentService.Assign(c.Request.Context(), &req, actorFromContext(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Rate card assigned successfully", gin.H{
		"sellerId":   assignment.CompanyID.Hex(),
		"rateCardId": assignment.RateCardID.Hex(),
	})
}

// Unassign clears a company's default rate card. The path id is the company.
func (h *AssignmentHandler) Unassign(c *gin.Context) {
	if err := h.assignmentService.Unassign(c.Request.Context(), c.Param("id"), actorFromContext(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Rate card unassigned successfully", nil)
}

func (h *AssignmentHandler) BulkAssign(c *gin.Context) {
	var req validators.BulkAssignRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.assignmentService.BulkAssign(c.Request.Context(), &req, actorFromContext(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Rate cards assigned successfully", result)
}

func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	assignments, total, err := h.assignmentService.ListAssignments(c.Request.Context(), c.Query("rateCardId"), params)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.PaginatedResponse(c, "Assignments retrieved successfully", assignments, utils.CreatePaginationMeta(params, total))
}
