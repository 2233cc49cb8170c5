package routes

import (
	"github.com/gin-gonic/gin"

	"shipdesk/internal/handlers/admin"
	"shipdesk/pkg/websocket"
)

// RateCardHandlers groups everything mounted under /admin/ratecards.
type RateCardHandlers struct {
	RateCards   *admin.RateCardHandler
	Assignments *admin.AssignmentHandler
	Transfers   *admin.TransferHandler
	Analytics   *admin.AnalyticsHandler
	Events      *websocket.Handler
}

// SetupRateCardRoutes mounts the rate-card admin API. guards run before every
// route, in order (rate limit, authentication, admin check).
func SetupRateCardRoutes(r *gin.RouterGroup, h *RateCardHandlers, guards ...gin.HandlerFunc) {
	ratecards := r.Group("/admin/ratecards")
	ratecards.Use(guards...)
	{
		// Collection-level routes are registered before /:id
		ratecards.GET("", h.RateCards.ListRateCards)
		ratecards.POST("", h.RateCards.CreateRateCard)
		ratecards.GET("/stats", h.Analytics.GetStats)
		ratecards.POST("/bulk-update", h.RateCards.BulkUpdate)

		// Import / export
		ratecards.GET("/export", h.Transfers.ExportRateCards)
		ratecards.POST("/import", h.Transfers.ImportRateCards)

		// Company assignments
		ratecards.GET("/assignments", h.Assignments.ListAssignments)
		ratecards.POST("/assign", h.Assignments.Assign)
		ratecards.DELETE("/unassign/:id", h.Assignments.Unassign)
		ratecards.POST("/bulk-assign", h.Assignments.BulkAssign)

		// Live change feed for dashboards
		ratecards.GET("/events", h.Events.HandleWebSocket)

		// Single rate card
		ratecards.GET("/:id", h.RateCards.GetRateCard)
		ratecards.PATCH("/:id", h.RateCards.UpdateRateCard)
		ratecards.DELETE("/:id", h.RateCards.DeleteRateCard)
		ratecards.POST("/:id/clone", h.RateCards.CloneRateCard)
		ratecards.GET("/:id/analytics", h.Analytics.GetRateCardAnalytics)
		ratecards.GET("/:id/revenue-series", h.Analytics.GetRevenueSeries)
		ratecards.GET("/:id/history", h.Analytics.GetHistory)
	}
}
