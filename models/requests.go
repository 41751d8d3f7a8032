package models

import "github.com/google/uuid"

// Line patch operations accepted by PATCH /orders/:id.
const (
	LineOpAdd    = "add"
	LineOpUpdate = "update"
	LineOpRemove = "remove"
)

type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

type CreateOrderRequest struct {
	ClientID        uuid.UUID          `json:"client_id" binding:"required"`
	DeliveryAddress string             `json:"delivery_address" binding:"required"`
	Status          string             `json:"status"`
	Items           []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// LinePatch is one add/update/remove instruction against a single order line.
// Quantity is required for add and update; ignored for remove.
type LinePatch struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Op        string    `json:"op" binding:"required,oneof=add update remove"`
	Quantity  int       `json:"quantity"`
}

type UpdateOrderRequest struct {
	Status          *string     `json:"status"`
	DeliveryAddress *string     `json:"delivery_address"`
	ClientID        *uuid.UUID  `json:"client_id"`
	Lines           []LinePatch `json:"lines" binding:"omitempty,dive"`
}

// OverrideTotalRequest carries the raw decimal string for the administrative
// total override. Parsing is done by the service so rejects are uniform.
type OverrideTotalRequest struct {
	Montant string `json:"montant" binding:"required"`
}

type CreateProductRequest struct {
	Name       string     `json:"name" binding:"required"`
	Price      string     `json:"price" binding:"required"`
	Discount   int        `json:"discount" binding:"min=0,max=100"`
	Stock      int        `json:"stock" binding:"min=0"`
	SupplierID *uuid.UUID `json:"supplier_id"`
}

type RestockRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

type CreateClientRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type CreateSupplierRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone"`
}

type CreateReturnRequest struct {
	OrderID   uuid.UUID `json:"order_id" binding:"required"`
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
	Reason    string    `json:"reason"`
}
