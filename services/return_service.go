package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/latum0/exonyb-sub001/logger"
	"github.com/latum0/exonyb-sub001/models"
	"github.com/latum0/exonyb-sub001/repository"
)

// ReturnService records product returns. Returned units go back to stock
// through the ledger and stale stock-out notifications are resolved, all in
// one transaction. The order line itself is untouched so the order total
// invariant is unaffected.
type ReturnService struct {
	txm           repository.TxManager
	returns       repository.ReturnRepository
	orders        repository.OrderRepository
	products      repository.ProductRepository
	audit         repository.AuditRepository
	notifications *NotificationService
}

func NewReturnService(
	txm repository.TxManager,
	returns repository.ReturnRepository,
	orders repository.OrderRepository,
	products repository.ProductRepository,
	audit repository.AuditRepository,
	notifications *NotificationService,
) *ReturnService {
	return &ReturnService{
		txm:           txm,
		returns:       returns,
		orders:        orders,
		products:      products,
		audit:         audit,
		notifications: notifications,
	}
}

func (s *ReturnService) CreateReturn(ctx context.Context, userID string, req *models.CreateReturnRequest) (*models.Return, *ServiceError) {
	ret := &models.Return{
		ID:        uuid.New(),
		OrderID:   req.OrderID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Reason:    req.Reason,
	}

	txErr := s.txm.InTx(ctx, func(tx *gorm.DB) error {
		orders := s.orders.WithTx(tx)

		line, err := orders.FindLine(ctx, req.OrderID, req.ProductID)
		if err != nil {
			return mapRepoError(err, "Order line not found")
		}
		if req.Quantity > line.Quantity {
			return badRequest("Cannot return more units than the order line holds")
		}

		if err := s.returns.WithTx(tx).Create(ctx, ret); err != nil {
			return err
		}
		if err := s.products.WithTx(tx).ReleaseStock(ctx, req.ProductID, req.Quantity); err != nil {
			return mapRepoError(err, "Product not found")
		}
		if _, err := s.notifications.ResolveForRestock(ctx, tx, []uuid.UUID{req.ProductID}); err != nil {
			return err
		}

		return s.audit.WithTx(tx).Create(ctx, &models.AuditLog{
			UserID:      userID,
			Description: fmt.Sprintf("Registered return of %d unit(s) of product %s for order %s", req.Quantity, req.ProductID, req.OrderID),
		})
	})
	if txErr != nil {
		return nil, asServiceError(txErr)
	}

	logger.Info(ctx, "Return registered",
		zap.String("order_id", req.OrderID.String()),
		zap.String("product_id", req.ProductID.String()),
		zap.Int("quantity", req.Quantity),
	)
	return ret, nil
}

func (s *ReturnService) GetReturns(ctx context.Context, page, limit int) ([]models.Return, int64, *ServiceError) {
	returns, total, err := s.returns.FindAll(ctx, page, limit)
	if err != nil {
		logger.Error(ctx, "Failed to fetch returns", err)
		return nil, 0, internal("Failed to fetch returns")
	}
	return returns, total, nil
}
