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

// OrderService orchestrates whole-order operations. Every mutation runs in
// exactly one database transaction covering stock movement, line writes, the
// total recompute and the audit entry; a failure anywhere rolls back all of
// it. Event publication happens after commit and is best-effort.
type OrderService struct {
	txm           repository.TxManager
	orders        repository.OrderRepository
	products      repository.ProductRepository
	clients       repository.ClientRepository
	audit         repository.AuditRepository
	notifications *NotificationService
	reconciler    *LineReconciler
	events        *EventPublisher
}

func NewOrderService(
	txm repository.TxManager,
	orders repository.OrderRepository,
	products repository.ProductRepository,
	clients repository.ClientRepository,
	audit repository.AuditRepository,
	notifications *NotificationService,
	reconciler *LineReconciler,
	events *EventPublisher,
) *OrderService {
	return &OrderService{
		txm:           txm,
		orders:        orders,
		products:      products,
		clients:       clients,
		audit:         audit,
		notifications: notifications,
		reconciler:    reconciler,
		events:        events,
	}
}

type OrderListResponse struct {
	Orders []models.Order `json:"orders"`
	Meta   MetaData       `json:"meta"`
}

type MetaData struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasMore    bool  `json:"has_more"`
}

// CreateOrder reserves stock for every requested line and persists the order
// with its derived total. Duplicate product ids in the request are merged
// before any reservation. If any single reservation fails the whole creation
// aborts with nothing applied.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, req *models.CreateOrderRequest) (*models.Order, *ServiceError) {
	merged := mergeRequestedItems(req.Items)
	for _, item := range merged {
		if item.Quantity <= 0 {
			return nil, badRequest("Quantity must be a positive integer")
		}
	}

	status := req.Status
	if status == "" {
		status = models.OrderStatusPending
	}

	order := &models.Order{
		ID:              uuid.New(),
		ClientID:        req.ClientID,
		Status:          status,
		DeliveryAddress: req.DeliveryAddress,
	}

	var raised []models.StockNotification

	err := s.txm.InTx(ctx, func(tx *gorm.DB) error {
		exists, err := s.clients.WithTx(tx).Exists(ctx, req.ClientID)
		if err != nil {
			return err
		}
		if !exists {
			return notFound("Client not found")
		}

		products := s.products.WithTx(tx)
		total := decimal.Zero
		productIDs := make([]uuid.UUID, 0, len(merged))

		for _, item := range merged {
			product, err := products.FindByID(ctx, item.ProductID)
			if err != nil {
				return mapRepoError(err, fmt.Sprintf("Product %s not found", item.ProductID))
			}

			unitPrice := product.DiscountedUnitPrice()
			if unitPrice.IsNegative() {
				return badRequest(fmt.Sprintf("Product %s has an invalid price", product.ID))
			}

			if err := products.ReserveStock(ctx, item.ProductID, item.Quantity); err != nil {
				return mapRepoError(err, fmt.Sprintf("Product %s not found", item.ProductID))
			}

			line := models.OrderLine{
				OrderID:   order.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: unitPrice,
			}
			order.Lines = append(order.Lines, line)
			total = total.Add(line.LineTotal())
			productIDs = append(productIDs, item.ProductID)
		}

		order.Total = total.Round(2)
		if err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}

		if err := s.audit.WithTx(tx).Create(ctx, &models.AuditLog{
			UserID:      userID,
			Description: fmt.Sprintf("Created order %s with %d line(s), total %s", order.ID, len(order.Lines), order.Total),
		}); err != nil {
			return err
		}

		raised, err = s.notifications.RaiseIfOutOfStock(ctx, tx, productIDs, "triggered by order "+order.ID.String())
		return err
	})
	if err != nil {
		return nil, asServiceError(err)
	}

	logger.Info(ctx, "Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("client_id", order.ClientID.String()),
	)
	s.events.PublishOrderEvent(ctx, order, models.OrderActionCreated, userID)
	s.publishStockAlerts(ctx, raised)

	return order, nil
}

// UpdateOrder applies scalar field changes and an ordered sequence of line
// patches in one transaction, recomputing the total once after all patches.
func (s *OrderService) UpdateOrder(ctx context.Context, userID string, orderID uuid.UUID, req *models.UpdateOrderRequest) (*models.Order, *ServiceError) {
	var updated *models.Order
	var raised []models.StockNotification

	err := s.txm.InTx(ctx, func(tx *gorm.DB) error {
		orders := s.orders.WithTx(tx)

		if _, err := orders.FindByID(ctx, orderID); err != nil {
			return mapRepoError(err, "Order not found")
		}

		// Patches apply strictly in request order so a list touching the
		// same product twice has a deterministic outcome.
		raised = raised[:0]
		for _, patch := range req.Lines {
			alerts, err := s.reconciler.ApplyPatch(ctx, tx, orderID, patch)
			if err != nil {
				return err
			}
			raised = append(raised, alerts...)
		}

		updates := map[string]interface{}{}
		if req.Status != nil {
			updates["status"] = *req.Status
		}
		if req.DeliveryAddress != nil {
			updates["delivery_address"] = *req.DeliveryAddress
		}
		if req.ClientID != nil {
			exists, err := s.clients.WithTx(tx).Exists(ctx, *req.ClientID)
			if err != nil {
				return err
			}
			if !exists {
				return notFound("Client not found")
			}
			updates["client_id"] = *req.ClientID
		}

		total, err := s.reconciler.RecomputeTotal(ctx, tx, orderID)
		if err != nil {
			return err
		}
		updates["total"] = total

		if err := orders.UpdateFields(ctx, orderID, updates); err != nil {
			return mapRepoError(err, "Order not found")
		}

		if err := s.audit.WithTx(tx).Create(ctx, &models.AuditLog{
			UserID:      userID,
			Description: fmt.Sprintf("Updated order %s (%d line patch(es)), total %s", orderID, len(req.Lines), total),
		}); err != nil {
			return err
		}

		updated, err = orders.FindByID(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, asServiceError(err)
	}

	logger.Info(ctx, "Order updated", zap.String("order_id", orderID.String()))
	s.events.PublishOrderEvent(ctx, updated, models.OrderActionUpdated, userID)
	s.publishStockAlerts(ctx, raised)

	return updated, nil
}

// DeleteOrder returns every line's quantity to stock, resolves now-stale
// stock-out notifications and removes the order. Only a missing order fails.
func (s *OrderService) DeleteOrder(ctx context.Context, userID string, orderID uuid.UUID) *ServiceError {
	var deleted *models.Order

	err := s.txm.InTx(ctx, func(tx *gorm.DB) error {
		orders := s.orders.WithTx(tx)
		products := s.products.WithTx(tx)

		order, err := orders.FindByID(ctx, orderID)
		if err != nil {
			return mapRepoError(err, "Order not found")
		}

		productIDs := make([]uuid.UUID, 0, len(order.Lines))
		for i := range order.Lines {
			line := &order.Lines[i]
			if err := products.ReleaseStock(ctx, line.ProductID, line.Quantity); err != nil {
				return mapRepoError(err, fmt.Sprintf("Product %s not found", line.ProductID))
			}
			productIDs = append(productIDs, line.ProductID)
		}

		if _, err := s.notifications.ResolveForRestock(ctx, tx, productIDs); err != nil {
			return err
		}

		if err := orders.Delete(ctx, orderID); err != nil {
			return mapRepoError(err, "Order not found")
		}

		deleted = order
		return s.audit.WithTx(tx).Create(ctx, &models.AuditLog{
			UserID:      userID,
			Description: fmt.Sprintf("Deleted order %s, restored stock for %d line(s)", orderID, len(order.Lines)),
		})
	})
	if err != nil {
		return asServiceError(err)
	}

	logger.Info(ctx, "Order deleted", zap.String("order_id", orderID.String()))
	s.events.PublishOrderEvent(ctx, deleted, models.OrderActionDeleted, userID)

	return nil
}

// OverrideTotal replaces the order total with an administrative value,
// bypassing the line-derived recompute. The resulting inconsistency window
// is deliberate; the audit entry records who did it.
func (s *OrderService) OverrideTotal(ctx context.Context, userID string, orderID uuid.UUID, montant string) (*models.Order, *ServiceError) {
	value, err := decimal.NewFromString(montant)
	if err != nil {
		return nil, badRequest("Invalid decimal value")
	}
	if value.IsNegative() {
		return nil, badRequest("Total must not be negative")
	}
	if !value.Equal(value.Round(2)) {
		return nil, badRequest("Total must have at most 2 decimal places")
	}

	var updated *models.Order

	txErr := s.txm.InTx(ctx, func(tx *gorm.DB) error {
		orders := s.orders.WithTx(tx)

		if err := orders.UpdateTotal(ctx, orderID, value); err != nil {
			return mapRepoError(err, "Order not found")
		}

		if err := s.audit.WithTx(tx).Create(ctx, &models.AuditLog{
			UserID:      userID,
			Description: fmt.Sprintf("Overrode total of order %s to %s", orderID, value),
		}); err != nil {
			return err
		}

		var err error
		updated, err = orders.FindByID(ctx, orderID)
		return err
	})
	if txErr != nil {
		return nil, asServiceError(txErr)
	}

	logger.Warn(ctx, "Order total overridden",
		zap.String("order_id", orderID.String()),
		zap.String("total", value.String()),
		zap.String("user_id", userID),
	)
	s.events.PublishOrderEvent(ctx, updated, models.OrderActionTotalOverride, userID)

	return updated, nil
}

// GetOrders returns the paginated order list with lines preloaded.
func (s *OrderService) GetOrders(ctx context.Context, page, limit int) (*OrderListResponse, *ServiceError) {
	orders, total, err := s.orders.FindAll(ctx, page, limit)
	if err != nil {
		logger.Error(ctx, "Failed to fetch orders", err)
		return nil, internal("Failed to fetch orders")
	}
	return &OrderListResponse{
		Orders: orders,
		Meta: MetaData{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: calculateTotalPages(total, limit),
			HasMore:    total > int64(page*limit),
		},
	}, nil
}

// GetOrderByID returns one order with its lines.
func (s *OrderService) GetOrderByID(ctx context.Context, orderID uuid.UUID) (*models.Order, *ServiceError) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, mapRepoError(err, "Order not found")
	}
	return order, nil
}

func (s *OrderService) publishStockAlerts(ctx context.Context, raised []models.StockNotification) {
	for i := range raised {
		s.events.PublishStockAlert(ctx, models.StockAlertEvent{
			ProductID: raised[i].ProductID.String(),
			Message:   raised[i].Message,
		})
	}
}

// mergeRequestedItems folds duplicate product ids into single summed
// quantities, preserving first-seen order.
func mergeRequestedItems(items []models.OrderItemRequest) []models.OrderItemRequest {
	merged := make([]models.OrderItemRequest, 0, len(items))
	index := make(map[uuid.UUID]int, len(items))
	for _, item := range items {
		if i, ok := index[item.ProductID]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged
}

func calculateTotalPages(total int64, limit int) int64 {
	if limit == 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
