package models

import "time"

// Event actions published after commit.
const (
	OrderActionCreated       = "created"
	OrderActionUpdated       = "updated"
	OrderActionDeleted       = "deleted"
	OrderActionTotalOverride = "total_override"
)

type OrderEvent struct {
	OrderID   string    `json:"order_id"`
	ClientID  string    `json:"client_id"`
	Action    string    `json:"action"`
	Total     string    `json:"total"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

type StockAlertEvent struct {
	ProductID string    `json:"product_id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
