package services_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/latum0/exonyb-sub001/models"
	"github.com/latum0/exonyb-sub001/services"
)

// --- Harness ---

type harness struct {
	store         *memStore
	producer      *fakeProducer
	sns           *fakeSNS
	orders        *services.OrderService
	catalog       *services.CatalogService
	returns       *services.ReturnService
	notifications *services.NotificationService
}

func newHarness() *harness {
	store := newMemStore()
	txm := &fakeTxManager{store: store}
	orderRepo := &fakeOrderRepo{store: store}
	productRepo := &fakeProductRepo{store: store}
	clientRepo := &fakeClientRepo{store: store}
	supplierRepo := &fakeSupplierRepo{store: store}
	notificationRepo := &fakeNotificationRepo{store: store}
	returnRepo := &fakeReturnRepo{store: store}
	auditRepo := &fakeAuditRepo{store: store}

	producer := &fakeProducer{}
	sns := &fakeSNS{}

	notificationSvc := services.NewNotificationService(notificationRepo, productRepo)
	reconciler := services.NewLineReconciler(orderRepo, productRepo, notificationSvc)
	events := services.NewEventPublisher(producer, sns, "arn:aws:sns:us-east-1:000000000000:stock-alerts")

	return &harness{
		store:         store,
		producer:      producer,
		sns:           sns,
		orders:        services.NewOrderService(txm, orderRepo, productRepo, clientRepo, auditRepo, notificationSvc, reconciler, events),
		catalog:       services.NewCatalogService(txm, productRepo, supplierRepo, auditRepo, notificationSvc),
		returns:       services.NewReturnService(txm, returnRepo, orderRepo, productRepo, auditRepo, notificationSvc),
		notifications: notificationSvc,
	}
}

func (h *harness) seedClient() uuid.UUID {
	id := uuid.New()
	h.store.clients[id] = models.Client{ID: id, Name: "Test Client", Email: id.String() + "@example.com"}
	return id
}

func (h *harness) seedProduct(name, price string, discount, stock int) uuid.UUID {
	id := uuid.New()
	h.store.products[id] = models.Product{
		ID:       id,
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Discount: discount,
		Stock:    stock,
	}
	return id
}

func (h *harness) stock(t *testing.T, productID uuid.UUID) int {
	t.Helper()
	p, ok := h.store.products[productID]
	assert.True(t, ok, "product %s not in store", productID)
	return p.Stock
}

// --- CreateOrder ---

func TestCreateOrder_MergesDuplicateProducts(t *testing.T) {
	h := newHarness()
	clientID := h.seedClient()
	productID := h.seedProduct("Keyboard", "50.00", 0, 10)

	order, svcErr := h.orders.CreateOrder(context.Background(), "admin-1", &models.CreateOrderRequest{
		ClientID:        clientID,
		DeliveryAddress: "12 Rue des Lilas",
		Items: []models.OrderItemRequest{
			{ProductID: productID, Quantity: 2},
			{ProductID: productID, Quantity: 3},
		},
	})

	assert.Nil(t, svcErr)
	assert.Len(t, order.Lines, 1)
	assert.Equal(t, 5, order.Lines[0].Quantity)
	assert.Equal(t, 5, h.stock(t, productID))
	assert.True(t, order.Total.Equal(decimal.RequireFromString("250.00")), "total = %s", order.Total)
}

func TestCreateOrder_CapturesDiscountedUnitPrice(t *testing.T) {
	h := newHarness()
	clientID := h.seedClient()
	productID := h.seedProduct("Monitor", "100.00", 25, 10)

	order, svcErr := h.orders.CreateOrder(context.Background(), "admin-1", &models.CreateOrderRequest{
		ClientID:        clientID,
		DeliveryAddress: "12 Rue des Lilas",
		Items:           []models.OrderItemRequest{{ProductID: productID, Quantity: 2}},
	})

	assert.Nil(t, svcErr)
	assert.True(t, order.Lines[0].UnitPrice.Equal(decimal.RequireFromString("75.00")))
	assert.True(t, order.Total.Equal(decimal.RequireFromString("150.00")))
}

func TestCreateOrder_InsufficientStockRollsBackEverything(t *testing.T) {
	h := newHarness()
	clientID := h.seedClient()
	okProduct := h.seedProduct("Keyboard", "50.00", 0, 10)
	scarceProduct := h.seedProduct("Mouse", "20.00", 0, 1)

	_, svcErr := h.orders.CreateOrder(context.Background(), "admin-1", &models.CreateOrderRequest{
		ClientID:        clientID,
		DeliveryAddress: "12 Rue des Lilas",
		Items: []models.OrderItemRequest{
			{ProductID: okProduct, Quantity: 4},
			{ProductID: scarceProduct, Quantity: 2},
		},
	})

	assert.NotNil(t, svcErr)
	assert.Equal(t, http.StatusConflict, svcErr.StatusCode)
	assert.Equal(t, 10, h.stock(t, okProduct), "first reservation must be rolled back")
	assert.Equal(t, 1, h.stock(t, scarceProduct))
	assert.Empty(t, h.store.orders)
	assert.Empty(t, h.store.audits)
}

func TestCreateOrder_UnknownClient(t *testing.T) {
	h := newHarness()
	productID := h.seedProduct("Keyboard", "50.00", 0, 10)

	_, svcErr := h.orders.CreateOrder(context.Background(), "admin-1", &models.CreateOrderRequest{
		ClientID:        uuid.New(),
		DeliveryAddress: "12 Rue des Lilas",
		Items:           []models.OrderItemRequest{{ProductID: productID, Quantity: 1}},
	})

	assert.NotNil(t, svcErr)
	assert.Equal(t, http.StatusNotFound, svcErr.StatusCode)
	assert.Equal(t, 10, h.stock(t, productID))
}

func TestCreateOrder_ExactExhaustionRaisesNotification(t *testing.T) {
	h := newHarness()
	clientID := h.seedClient()
	productID := h.seedProduct("Keyboard", "50.00", 0, 5)

	_, svcErr := h.orders.CreateOrder(context.Background(), "admin-1", &models.CreateOrderRequest{
		ClientID:        clientID,
		DeliveryAddress: "12 Rue des Lilas",
		Items:           []models.OrderItemRequest{{ProductID: productID, Quantity: 5}},
	})

	assert.Nil(t, svcErr)
	assert.Equal(t, 0, h.stock(t, productID))
	assert.Len(t, h.store.openNotifications(productID), 1)

	// Alerts fan out to Kafka and SNS after the commit.
	assert.Len(t, h.producer.stockAlerts, 1)
	assert.Equal(t, productID.String(), h.producer.stockAlerts[0].ProductID)
	assert.Len(t, h.producer.orderEvents, 1)
	assert.Equal(t, models.OrderActionCreated, h.producer.orderEvents[0].Action)
	assert.Len(t, h.sns.published, 2)
}

func TestCreateOrder_WritesAuditEntry(t *testing.T) {
	h := newHarness()
	clientID := h.seedClient()
	productID := h.seedProduct("Keyboard", "50.00", 0, 10)

	_, svcErr := h.orders.CreateOrder(context.Background(), "admin-7", &models.CreateOrderRequest{
		ClientID:        clientID,
		DeliveryAddress: "12 Rue des Lilas",
		Items:           []models.OrderItemRequest{{ProductID: productID, Quantity: 1}},
	})

	assert.Nil(t, svcErr)
	assert.Len(t, h.store.audits, 1)
	assert.Equal(t, "admin-7", h.store.audits[0].UserID)
	assert.Contains(t, h.store.audits[0].Description, "Created order")
}

// --- UpdateOrder ---

func (h *harness) seedOrder(t *testing.T, clientID, productID uuid.UUID, quantity int) *models.Order {
	t.Helper()
	order, svcErr := h.orders.CreateOrder(context.Background(), "seed", &models.CreateOrderRequest{
		ClientID:        clientID,
		DeliveryAddress: "12 Rue des Lilas",
		Items:           []models.OrderItemRequest{{ProductID: productID, Quantity: quantity}},
	})
	assert.Nil(t, svcErr)
	return order
}

func TestUpdateOrder_AddOnExistingLineMergesQuantities(t *testing.T) {
	h := newHarness()
	clientID := h.seedClient()
	productID := h.seedProduct("Keyboard", "50.00", 0, 10)
	order := h.seedOrder(t, clientID, productID, 2)

	updated, svcErr := h.orders.UpdateOrder(context.Background(), "admin-1", order.ID, &models.UpdateOrderRequest{
		Lines: []models.LinePatch{{ProductID: productID, Op: models.LineOpAdd, Quantity: 3}},
	})

	assert.Nil(t, svcErr)
	assert.Len(t, updated.Lines, 1)
	assert.Equal(t, 5, updated.Lines[0].Quantity)
	assert.Equal(t, 5, h.stock(t, productID))
	assert.True(t, updated.Total.Equal(decimal.RequireFromString("250.00")))
}

func TestUpdateOrder_UpdateShrinksLineAndReleasesStock(t *testing.T) {
	h := newHarness()
	clientID := h.seedClient()
	productID := h.seedProduct("Keyboard", "50.00", 0, 10)
	order := h.seedOrder(t, clientID, productID, 6)

	updated, svcErr := h.orders.UpdateOrder(context.Background(), "admin-1", order.ID, &models.UpdateOrderRequest{
		Lines: []models.LinePatch{{ProductID: productID, Op: models.LineOpUpdate, Quantity: 2}},
	})

	assert.Nil(t, svcErr)
	assert.Equal(t, 2, updated.Lines[0].Quantity)
	assert.Equal(t, 8, h.stock(t, productID))
	assert.True(t, updated.Total.Equal(decimal.RequireFromString("100.00")))
}

func TestUpdateOrder_ZeroQuantityUpdateRejected(t *testing.T) {
	h := newHarness()
	clientID := h.seedClient()
	productID := h.seedProduct("Keyboard", "50.00", 0, 10)
	order := h.seedOrder(t, clientID, productID, 2)

	_, svcErr := h.orders.UpdateOrder(context.Background(), "admin-1", order.ID, &models.UpdateOrderRequest{
		Lines: []models.LinePatch{{ProductID: productID, Op: models.LineOpUpdate, Quantity: 0}},
	})

	assert.NotNil(t, svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)
	assert.Equal(t, 8, h.stock(t, productID), "stock untouched")
}

func TestUpdateOrder_FailedPatchRollsBackEarlierPatches(t *testing.T) {
	h := newHarness()
	clientID := h.seedClient()
	first := h.seedProduct("Keyboard", "50.00", 0, 10)
	second := h.seedProduct("Mouse", "20.00", 0, 10)
	order, svcErr := h.orders.CreateOrder(context.Background(), "seed", &models.CreateOrderRequest{
		ClientID:        clientID,
		DeliveryAddress: "12 Rue des Lilas",
		Items: []models.OrderItemRequest{
			{ProductID: first, Quantity: 2},
			{ProductID: second, Quantity: 2},
		},
	})
	assert.Nil(t, svcErr)

	_, svcErr = h.orders.UpdateOrder(context.Background(), "admin-1", order.ID, &models.UpdateOrderRequest{
		Lines: []models.LinePatch{
			{ProductID: first, Op: models.LineOpAdd, Quantity: 3},
			{ProductID: second, Op: models.LineOpUpdate, Quantity: 50},
		},
	})

	assert.NotNil(t, svcErr)
	assert.Equal(t, http.StatusConflict, svcErr.StatusCode)
	assert.Equal(t, 8, h.stock(t, first), "first patch must be rolled back")
	assert.Equal(t, 8, h.stock(t, second))

	reloaded, getErr := h.orders.GetOrderByID(context.Background(), order.ID)
	assert.Nil(t, getErr)
	for _, line := range reloaded.Lines {
		assert.Equal(t, 2, line.Quantity)
	}
	assert.True(t, reloaded.Total.Equal(order.Total))
}

func TestUpdateOrder_RemoveLineRestoresStockAndResolvesNotification(t *testing.T) {
	h := newHarness()
	clientID := h.seedClient()
	productID := h.seedProduct("Keyboard", "50.00", 0, 2)
	order := h.seedOrder(t, clientID, productID, 2)
	assert.Len(t, h.store.openNotifications(productID), 1, "exhaustion raised a notification")

	updated, svcErr := h.orders.UpdateOrder(context.Background(), "admin-1", order.ID, &models.UpdateOrderRequest{
		Lines: []models.LinePatch{{ProductID: productID, Op: models.LineOpRemove}},
	})

	assert.Nil(t, svcErr)
	assert.Empty(t, updated.Lines)
	assert.Equal(t, 2, h.stock(t, productID))
	assert.Empty(t, h.store.openNotifications(productID))
	assert.True(t, updated.Total.Equal(decimal.Zero))
}

func TestUpdateOrder_ScalarFieldsAndTotalRecompute(t *testing.T) {
	h := newHarness()
	clientID := h.seedClient()
	otherClient := h.seedClient()
	productID := h.seedProduct("Keyboard", "50.00", 0, 10)
	order := h.seedOrder(t, clientID, productID, 2)

	status := models.OrderStatusInProgress
	address := "99 Avenue Neuve"
	updated, svcErr := h.orders.UpdateOrder(context.Background(), "admin-1", order.ID, &models.UpdateOrderRequest{
		Status:          &status,
		DeliveryAddress: &address,
		ClientID:        &otherClient,
	})

	assert.Nil(t, svcErr)
	assert.Equal(t, models.OrderStatusInProgress, updated.Status)
	assert.Equal(t, "99 Avenue Neuve", updated.DeliveryAddress)
	assert.Equal(t, otherClient, updated.ClientID)
	assert.True(t, updated.Total.Equal(decimal.RequireFromString("100.00")))
}

func TestUpdateOrder_UnknownClientRejected(t *testing.T) {
	h := newHarness()
	clientID := h.seedClient()
	productID := h.seedProduct("Keyboard", "50.00", 0, 10)
	order := h.seedOrder(t, clientID, productID, 2)

	ghost := uuid.New()
	_, svcErr := h.orders.UpdateOrder(context.Background(), "admin-1", order.ID, &models.UpdateOrderRequest{
		ClientID: &ghost,
	})

	assert.NotNil(t, svcErr)
	assert.Equal(t, http.StatusNotFound, svcErr.StatusCode)
	reloaded, _ := h.orders.GetOrderByID(context.Background(), order.ID)
	assert.Equal(t, clientID, reloaded.ClientID)
}

// --- DeleteOrder ---

func TestDeleteOrder_RestoresStockAndResolvesNotifications(t *testing.T) {
	h := newHarness()
	clientID := h.seedClient()
	productID := h.seedProduct("Keyboard", "50.00", 0, 3)
	order := h.seedOrder(t, clientID, productID, 3)
	assert.Len(t, h.store.openNotifications(productID), 1)

	svcErr := h.orders.DeleteOrder(context.Background(), "admin-1", order.ID)

	assert.Nil(t, svcErr)
	assert.Equal(t, 3, h.stock(t, productID))
	assert.Empty(t, h.store.openNotifications(productID))
	assert.Empty(t, h.store.linesFor(order.ID))
	_, getErr := h.orders.GetOrderByID(context.Background(), order.ID)
	assert.Equal(t, http.StatusNotFound, getErr.StatusCode)
}

func TestDeleteOrder_NotFound(t *testing.T) {
	h := newHarness()
	svcErr := h.orders.DeleteOrder(context.Background(), "admin-1", uuid.New())
	assert.NotNil(t, svcErr)
	assert.Equal(t, http.StatusNotFound, svcErr.StatusCode)
}

// --- OverrideTotal ---

func TestOverrideTotal_SetsValueAndAudits(t *testing.T) {
	h := newHarness()
	clientID := h.seedClient()
	productID := h.seedProduct("Keyboard", "50.00", 0, 10)
	order := h.seedOrder(t, clientID, productID, 2)

	updated, svcErr := h.orders.OverrideTotal(context.Background(), "admin-1", order.ID, "123.45")

	assert.Nil(t, svcErr)
	assert.True(t, updated.Total.Equal(decimal.RequireFromString("123.45")))
	assert.Contains(t, h.store.audits[len(h.store.audits)-1].Description, "Overrode total")
}

func TestOverrideTotal_RejectsInvalidValues(t *testing.T) {
	h := newHarness()
	clientID := h.seedClient()
	productID := h.seedProduct("Keyboard", "50.00", 0, 10)
	order := h.seedOrder(t, clientID, productID, 2)

	for _, montant := range []string{"not-a-number", "-5.00", "10.999"} {
		_, svcErr := h.orders.OverrideTotal(context.Background(), "admin-1", order.ID, montant)
		assert.NotNil(t, svcErr, "montant %q", montant)
		assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode, "montant %q", montant)
	}

	reloaded, _ := h.orders.GetOrderByID(context.Background(), order.ID)
	assert.True(t, reloaded.Total.Equal(decimal.RequireFromString("100.00")))
}

func TestOverrideTotal_OrderNotFound(t *testing.T) {
	h := newHarness()
	_, svcErr := h.orders.OverrideTotal(context.Background(), "admin-1", uuid.New(), "10.00")
	assert.NotNil(t, svcErr)
	assert.Equal(t, http.StatusNotFound, svcErr.StatusCode)
}
