package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/latum0/exonyb-sub001/logger"
	"github.com/latum0/exonyb-sub001/models"
	"github.com/latum0/exonyb-sub001/repository"
)

// NotificationService is the single writer of stock notification state.
// Invariant: at most one unresolved notification per (product, kind); the
// pre-check plus the partial unique index make concurrent raises idempotent.
type NotificationService struct {
	notifications repository.NotificationRepository
	products      repository.ProductRepository
}

func NewNotificationService(notifications repository.NotificationRepository, products repository.ProductRepository) *NotificationService {
	return &NotificationService{notifications: notifications, products: products}
}

func (s *NotificationService) repo(tx *gorm.DB) repository.NotificationRepository {
	if tx == nil {
		return s.notifications
	}
	return s.notifications.WithTx(tx)
}

func (s *NotificationService) productRepo(tx *gorm.DB) repository.ProductRepository {
	if tx == nil {
		return s.products
	}
	return s.products.WithTx(tx)
}

// RaiseIfOutOfStock creates an out-of-stock notification for every given
// product whose stock is exactly zero and which has no open notification.
// trigger is embedded in the message (e.g. "triggered by order X").
// Returns the notifications created, so callers can fan them out post-commit.
func (s *NotificationService) RaiseIfOutOfStock(ctx context.Context, tx *gorm.DB, productIDs []uuid.UUID, trigger string) ([]models.StockNotification, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	products, err := s.productRepo(tx).FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	var created []models.StockNotification
	for i := range products {
		p := &products[i]
		if p.Stock != 0 {
			continue
		}

		open, err := s.repo(tx).HasUnresolved(ctx, p.ID, models.NotificationKindOutOfStock)
		if err != nil {
			return created, err
		}
		if open {
			continue
		}

		message := fmt.Sprintf("Product %q is out of stock", p.Name)
		if trigger != "" {
			message = fmt.Sprintf("%s (%s)", message, trigger)
		}

		n := models.StockNotification{
			ProductID: p.ID,
			Kind:      models.NotificationKindOutOfStock,
			Message:   message,
		}
		if err := s.repo(tx).Create(ctx, &n); err != nil {
			// A concurrent raise won the insert; the alert exists either way.
			if errors.Is(err, repository.ErrDuplicateNotification) {
				continue
			}
			return created, err
		}
		created = append(created, n)
		logger.Info(ctx, "Stock notification raised",
			zap.String("product_id", p.ID.String()),
			zap.String("product_name", p.Name),
		)
	}
	return created, nil
}

// ResolveForRestock marks every unresolved out-of-stock notification for the
// given products as resolved. Idempotent: a second call resolves zero.
func (s *NotificationService) ResolveForRestock(ctx context.Context, tx *gorm.DB, productIDs []uuid.UUID) (int64, error) {
	resolved, err := s.repo(tx).ResolveForProducts(ctx, productIDs, models.NotificationKindOutOfStock)
	if err != nil {
		return 0, err
	}
	if resolved > 0 {
		logger.Info(ctx, "Stock notifications resolved", zap.Int64("count", resolved))
	}
	return resolved, nil
}

// GetNotifications returns the paginated notification list, optionally
// filtered by resolved state.
func (s *NotificationService) GetNotifications(ctx context.Context, resolved *bool, page, limit int) ([]models.StockNotification, int64, *ServiceError) {
	notifications, total, err := s.notifications.FindAll(ctx, resolved, page, limit)
	if err != nil {
		logger.Error(ctx, "Failed to fetch notifications", err)
		return nil, 0, internal("Failed to fetch notifications")
	}
	return notifications, total, nil
}
