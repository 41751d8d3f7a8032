package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/latum0/exonyb-sub001/models"
	"github.com/latum0/exonyb-sub001/repository"
)

// LineReconciler applies add/update/remove patches to one order line while
// keeping product stock and notifications consistent. Every call happens
// inside the caller's ambient transaction; a returned error aborts it, so a
// failed patch can never leave earlier stock movement behind.
type LineReconciler struct {
	orders        repository.OrderRepository
	products      repository.ProductRepository
	notifications *NotificationService
}

func NewLineReconciler(orders repository.OrderRepository, products repository.ProductRepository, notifications *NotificationService) *LineReconciler {
	return &LineReconciler{orders: orders, products: products, notifications: notifications}
}

// ApplyPatch mutates one line of the order and returns any stock-out
// notifications it raised. Quantity semantics: add is relative (folds into
// an update when the line exists), update is an absolute target, remove
// ignores quantity. A zero or negative quantity on add/update is rejected;
// removing all units requires an explicit remove.
func (r *LineReconciler) ApplyPatch(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, patch models.LinePatch) ([]models.StockNotification, error) {
	orders := r.orders.WithTx(tx)
	products := r.products.WithTx(tx)

	switch patch.Op {
	case models.LineOpAdd:
		if patch.Quantity <= 0 {
			return nil, badRequest("Quantity must be a positive integer")
		}
		line, err := orders.FindLine(ctx, orderID, patch.ProductID)
		if err == nil {
			// One line per (order, product): adding folds into an update.
			return r.setQuantity(ctx, tx, orderID, line, line.Quantity+patch.Quantity)
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return r.addLine(ctx, tx, orderID, patch.ProductID, patch.Quantity)

	case models.LineOpUpdate:
		if patch.Quantity <= 0 {
			return nil, badRequest("Quantity must be a positive integer; use remove to delete the line")
		}
		line, err := orders.FindLine(ctx, orderID, patch.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, notFound("Order line not found")
			}
			return nil, err
		}
		return r.setQuantity(ctx, tx, orderID, line, patch.Quantity)

	case models.LineOpRemove:
		line, err := orders.FindLine(ctx, orderID, patch.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, notFound("Order line not found")
			}
			return nil, err
		}
		if err := products.ReleaseStock(ctx, line.ProductID, line.Quantity); err != nil {
			return nil, mapRepoError(err, "Product not found")
		}
		if _, err := r.notifications.ResolveForRestock(ctx, tx, []uuid.UUID{line.ProductID}); err != nil {
			return nil, err
		}
		return nil, orders.DeleteLine(ctx, line.ID)

	default:
		return nil, badRequest(fmt.Sprintf("Unknown line operation %q", patch.Op))
	}
}

func (r *LineReconciler) addLine(ctx context.Context, tx *gorm.DB, orderID, productID uuid.UUID, quantity int) ([]models.StockNotification, error) {
	orders := r.orders.WithTx(tx)
	products := r.products.WithTx(tx)

	product, err := products.FindByID(ctx, productID)
	if err != nil {
		return nil, mapRepoError(err, "Product not found")
	}

	unitPrice := product.DiscountedUnitPrice()
	if unitPrice.IsNegative() {
		return nil, badRequest("Product has an invalid price")
	}

	if err := products.ReserveStock(ctx, productID, quantity); err != nil {
		return nil, mapRepoError(err, "Product not found")
	}

	if err := orders.CreateLine(ctx, &models.OrderLine{
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
	}); err != nil {
		return nil, err
	}

	return r.notifications.RaiseIfOutOfStock(ctx, tx, []uuid.UUID{productID}, "triggered by order "+orderID.String())
}

// setQuantity moves the line to an absolute target quantity, reserving or
// releasing only the delta.
func (r *LineReconciler) setQuantity(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, line *models.OrderLine, target int) ([]models.StockNotification, error) {
	orders := r.orders.WithTx(tx)
	products := r.products.WithTx(tx)

	delta := target - line.Quantity
	if delta > 0 {
		if err := products.ReserveStock(ctx, line.ProductID, delta); err != nil {
			return nil, mapRepoError(err, "Product not found")
		}
	} else if delta < 0 {
		if err := products.ReleaseStock(ctx, line.ProductID, -delta); err != nil {
			return nil, mapRepoError(err, "Product not found")
		}
		if _, err := r.notifications.ResolveForRestock(ctx, tx, []uuid.UUID{line.ProductID}); err != nil {
			return nil, err
		}
	}

	if err := orders.UpdateLineQuantity(ctx, line.ID, target); err != nil {
		return nil, err
	}

	if delta > 0 {
		return r.notifications.RaiseIfOutOfStock(ctx, tx, []uuid.UUID{line.ProductID}, "triggered by order "+orderID.String())
	}
	return nil, nil
}

// RecomputeTotal derives the order total from the full current line set,
// never trusting the previously stored value.
func (r *LineReconciler) RecomputeTotal(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (decimal.Decimal, error) {
	lines, err := r.orders.WithTx(tx).FindLines(ctx, orderID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for i := range lines {
		total = total.Add(lines[i].LineTotal())
	}
	return total.Round(2), nil
}
