package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/latum0/exonyb-sub001/middleware"
	"github.com/latum0/exonyb-sub001/models"
	"github.com/latum0/exonyb-sub001/services"
)

type ReturnController struct {
	returnService *services.ReturnService
}

func NewReturnController(returnService *services.ReturnService) *ReturnController {
	return &ReturnController{returnService: returnService}
}

// CreateReturn registers a product return and restocks the returned units
// POST /returns
func (rc *ReturnController) CreateReturn(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateReturnRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	ret, svcErr := rc.returnService.CreateReturn(ctx.Request.Context(), userID, &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"return": ret})
}

// GetReturns returns the paginated return list
// GET /returns
func (rc *ReturnController) GetReturns(ctx *gin.Context) {
	page, limit := parsePaginationParams(ctx)

	returns, total, svcErr := rc.returnService.GetReturns(ctx.Request.Context(), page, limit)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, pagedResponse{Data: returns, Page: page, Limit: limit, Total: total})
}
