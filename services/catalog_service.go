package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/latum0/exonyb-sub001/logger"
	"github.com/latum0/exonyb-sub001/models"
	"github.com/latum0/exonyb-sub001/repository"
)

// CatalogService owns products and suppliers. Restocking goes through the
// stock ledger so the notification invariant holds for catalog writes too.
type CatalogService struct {
	txm           repository.TxManager
	products      repository.ProductRepository
	suppliers     repository.SupplierRepository
	audit         repository.AuditRepository
	notifications *NotificationService
}

func NewCatalogService(
	txm repository.TxManager,
	products repository.ProductRepository,
	suppliers repository.SupplierRepository,
	audit repository.AuditRepository,
	notifications *NotificationService,
) *CatalogService {
	return &CatalogService{
		txm:           txm,
		products:      products,
		suppliers:     suppliers,
		audit:         audit,
		notifications: notifications,
	}
}

func (s *CatalogService) CreateProduct(ctx context.Context, userID string, req *models.CreateProductRequest) (*models.Product, *ServiceError) {
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return nil, badRequest("Invalid price value")
	}
	if price.IsNegative() {
		return nil, badRequest("Price must not be negative")
	}

	product := &models.Product{
		ID:         uuid.New(),
		Name:       req.Name,
		Price:      price.Round(2),
		Discount:   req.Discount,
		Stock:      req.Stock,
		SupplierID: req.SupplierID,
	}

	txErr := s.txm.InTx(ctx, func(tx *gorm.DB) error {
		if err := s.products.WithTx(tx).Create(ctx, product); err != nil {
			return err
		}
		return s.audit.WithTx(tx).Create(ctx, &models.AuditLog{
			UserID:      userID,
			Description: fmt.Sprintf("Created product %s (%s), initial stock %d", product.ID, product.Name, product.Stock),
		})
	})
	if txErr != nil {
		return nil, asServiceError(txErr)
	}

	logger.Info(ctx, "Product created", zap.String("product_id", product.ID.String()))
	return product, nil
}

// Restock adds quantity to a product through the ledger and resolves any
// open stock-out notification, in one transaction.
func (s *CatalogService) Restock(ctx context.Context, userID string, productID uuid.UUID, quantity int) (*models.Product, *ServiceError) {
	if quantity <= 0 {
		return nil, badRequest("Quantity must be a positive integer")
	}

	var product *models.Product

	txErr := s.txm.InTx(ctx, func(tx *gorm.DB) error {
		products := s.products.WithTx(tx)

		if err := products.ReleaseStock(ctx, productID, quantity); err != nil {
			return mapRepoError(err, "Product not found")
		}
		if _, err := s.notifications.ResolveForRestock(ctx, tx, []uuid.UUID{productID}); err != nil {
			return err
		}
		if err := s.audit.WithTx(tx).Create(ctx, &models.AuditLog{
			UserID:      userID,
			Description: fmt.Sprintf("Restocked product %s by %d", productID, quantity),
		}); err != nil {
			return err
		}

		var err error
		product, err = products.FindByID(ctx, productID)
		return err
	})
	if txErr != nil {
		return nil, asServiceError(txErr)
	}

	logger.Info(ctx, "Product restocked",
		zap.String("product_id", productID.String()),
		zap.Int("quantity", quantity),
	)
	return product, nil
}

func (s *CatalogService) GetProducts(ctx context.Context, page, limit int) ([]models.Product, int64, *ServiceError) {
	products, total, err := s.products.FindAll(ctx, page, limit)
	if err != nil {
		logger.Error(ctx, "Failed to fetch products", err)
		return nil, 0, internal("Failed to fetch products")
	}
	return products, total, nil
}

func (s *CatalogService) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, *ServiceError) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "Product not found")
	}
	return product, nil
}

func (s *CatalogService) CreateSupplier(ctx context.Context, req *models.CreateSupplierRequest) (*models.Supplier, *ServiceError) {
	supplier := &models.Supplier{
		ID:    uuid.New(),
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	}
	if err := s.suppliers.Create(ctx, supplier); err != nil {
		logger.Error(ctx, "Failed to create supplier", err)
		return nil, internal("Failed to create supplier")
	}
	return supplier, nil
}

func (s *CatalogService) GetSuppliers(ctx context.Context, page, limit int) ([]models.Supplier, int64, *ServiceError) {
	suppliers, total, err := s.suppliers.FindAll(ctx, page, limit)
	if err != nil {
		logger.Error(ctx, "Failed to fetch suppliers", err)
		return nil, 0, internal("Failed to fetch suppliers")
	}
	return suppliers, total, nil
}
