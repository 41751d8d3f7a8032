package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/latum0/exonyb-sub001/services"
)

type AuditController struct {
	auditService *services.AuditService
}

func NewAuditController(auditService *services.AuditService) *AuditController {
	return &AuditController{auditService: auditService}
}

// GetAuditTrail lists audit entries, newest first (admin only)
// GET /admin/audit
func (ac *AuditController) GetAuditTrail(ctx *gin.Context) {
	role, exists := ctx.Get("role")
	if !exists {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}
	roleStr, ok := role.(string)
	if !ok || roleStr != "admin" {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		return
	}

	page, limit := parsePaginationParams(ctx)

	entries, total, svcErr := ac.auditService.GetAuditTrail(ctx.Request.Context(), page, limit)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, pagedResponse{Data: entries, Page: page, Limit: limit, Total: total})
}
