package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/latum0/exonyb-sub001/services"
)

type NotificationController struct {
	notificationService *services.NotificationService
}

func NewNotificationController(notificationService *services.NotificationService) *NotificationController {
	return &NotificationController{notificationService: notificationService}
}

// GetNotifications lists stock notifications, optionally filtered by
// resolved state
// GET /notifications?resolved=true|false
func (nc *NotificationController) GetNotifications(ctx *gin.Context) {
	page, limit := parsePaginationParams(ctx)

	var resolved *bool
	if raw := ctx.Query("resolved"); raw != "" {
		val, err := strconv.ParseBool(raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid resolved filter"})
			return
		}
		resolved = &val
	}

	notifications, total, svcErr := nc.notificationService.GetNotifications(ctx.Request.Context(), resolved, page, limit)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, pagedResponse{Data: notifications, Page: page, Limit: limit, Total: total})
}
