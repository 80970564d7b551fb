package models

// Dashboard event names, broadcast to all connected restaurant panels.
const (
	EventOrderCreated    = "order_created"
	EventPaymentDeclared = "payment_declared"
	EventStatusUpdated   = "status_updated"
)

// Event is the envelope delivered to each dashboard subscriber.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

// OrderEvent is the payload carried by order lifecycle events. Total is
// pre-formatted with two fractional digits.
type OrderEvent struct {
	OrderID       string        `json:"order_id"`
	TableNumber   int           `json:"table_number"`
	CustomerName  string        `json:"customer_name"`
	Total         string        `json:"total"`
	Status        OrderStatus   `json:"status"`
	PaymentMethod PaymentMethod `json:"payment_method"`
}
