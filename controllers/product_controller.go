package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/latum0/exonyb-sub001/middleware"
	"github.com/latum0/exonyb-sub001/models"
	"github.com/latum0/exonyb-sub001/services"
)

type ProductController struct {
	catalogService *services.CatalogService
}

func NewProductController(catalogService *services.CatalogService) *ProductController {
	return &ProductController{catalogService: catalogService}
}

// CreateProduct adds a product to the catalog
// POST /products
func (pc *ProductController) CreateProduct(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	product, svcErr := pc.catalogService.CreateProduct(ctx.Request.Context(), userID, &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"product": product})
}

// Restock adds stock to a product through the ledger
// POST /products/:id/restock
func (pc *ProductController) Restock(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	productID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID format"})
		return
	}

	var req models.RestockRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	product, svcErr := pc.catalogService.Restock(ctx.Request.Context(), userID, productID, req.Quantity)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"product": product})
}

// GetProducts returns the paginated product list
// GET /products
func (pc *ProductController) GetProducts(ctx *gin.Context) {
	page, limit := parsePaginationParams(ctx)

	products, total, svcErr := pc.catalogService.GetProducts(ctx.Request.Context(), page, limit)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, pagedResponse{Data: products, Page: page, Limit: limit, Total: total})
}

// GetProductByID returns one product
// GET /products/:id
func (pc *ProductController) GetProductByID(ctx *gin.Context) {
	productID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID format"})
		return
	}

	product, svcErr := pc.catalogService.GetProductByID(ctx.Request.Context(), productID)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"product": product})
}

// CreateSupplier registers a supplier
// POST /suppliers
func (pc *ProductController) CreateSupplier(ctx *gin.Context) {
	var req models.CreateSupplierRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	supplier, svcErr := pc.catalogService.CreateSupplier(ctx.Request.Context(), &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"supplier": supplier})
}

// GetSuppliers returns the paginated supplier list
// GET /suppliers
func (pc *ProductController) GetSuppliers(ctx *gin.Context) {
	page, limit := parsePaginationParams(ctx)

	suppliers, total, svcErr := pc.catalogService.GetSuppliers(ctx.Request.Context(), page, limit)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, pagedResponse{Data: suppliers, Page: page, Limit: limit, Total: total})
}
