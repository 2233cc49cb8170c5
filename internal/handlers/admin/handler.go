package admin

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shipdesk/internal/apperrors"
	"shipdesk/internal/models"
	"shipdesk/internal/utils"
	"shipdesk/pkg/logger"
)

// respondError maps service errors onto the response envelope. Client errors
// are logged at warn level; anything else is logged and hidden behind a 500.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	entry := log.WithContext(c.Request.Context()).
		WithRequestID(c.GetString(utils.ContextRequestID)).
		WithError(err).
		WithFields(map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		})

	if verr, ok := apperrors.AsValidation(err); ok {
		entry.Warn("Rate card request rejected")
		utils.ValidationErrorResponse(c, verr.Message, verr.Fields)
		return
	}

	switch {
	case apperrors.IsNotFound(err):
		entry.Warn("Rate card request rejected")
		utils.NotFoundResponse(c)
	case apperrors.IsConflict(err):
		entry.Warn("Rate card request rejected")
		utils.ConflictResponse(c, err.Error())
	default:
		entry.Error("Rate card request failed")
		utils.InternalServerErrorResponse(c)
	}
}

// actorFromContext identifies the admin making the request for auditing.
func actorFromContext(c *gin.Context) models.Actor {
	actor := models.Actor{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	if userID, ok := c.Get(utils.ContextUserID); ok {
		if id, ok := userID.(primitive.ObjectID); ok {
			actor.UserID = &id
		}
	}
	return actor
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.BadRequestResponse(c, "invalid request body: "+err.Error())
		return false
	}
	return true
}
