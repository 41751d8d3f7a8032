package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/latum0/exonyb-sub001/models"
	"github.com/latum0/exonyb-sub001/services"
)

type ClientController struct {
	clientService *services.ClientService
}

func NewClientController(clientService *services.ClientService) *ClientController {
	return &ClientController{clientService: clientService}
}

// CreateClient registers a client
// POST /clients
func (cc *ClientController) CreateClient(ctx *gin.Context) {
	var req models.CreateClientRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	client, svcErr := cc.clientService.CreateClient(ctx.Request.Context(), &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"client": client})
}

// GetClients returns the paginated client list
// GET /clients
func (cc *ClientController) GetClients(ctx *gin.Context) {
	page, limit := parsePaginationParams(ctx)

	clients, total, svcErr := cc.clientService.GetClients(ctx.Request.Context(), page, limit)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, pagedResponse{Data: clients, Page: page, Limit: limit, Total: total})
}

// GetClientByID returns one client
// GET /clients/:id
func (cc *ClientController) GetClientByID(ctx *gin.Context) {
	clientID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid client ID format"})
		return
	}

	client, svcErr := cc.clientService.GetClientByID(ctx.Request.Context(), clientID)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"client": client})
}
