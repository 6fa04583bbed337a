package domain

import "github.com/shopspring/decimal"

const (
	ProductEventsTopic = "product_events"
	OrderEventsTopic   = "order_events"

	ProductAggregate = "product"
	OrderAggregate   = "order"
)

const (
	EventProductCreated     = "ProductCreated"
	EventProductUpdated     = "ProductUpdated"
	EventProductHidden      = "ProductHidden"
	EventOrderCreated       = "OrderCreated"
	EventOrderDelivered     = "OrderDelivered"
	EventOrderCanceled      = "OrderCanceled"
	EventOrderLineItemAdded = "OrderLineItemAdded"
)

type ProductChangedEvent struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	InOrder   bool            `json:"in_order"`
}

type OrderItemEvent struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type OrderCreatedEvent struct {
	OrderID int64            `json:"order_id"`
	UserID  *int64           `json:"user_id"`
	Items   []OrderItemEvent `json:"items"`
}

type OrderStatusChangedEvent struct {
	OrderID int64       `json:"order_id"`
	Status  OrderStatus `json:"status"`
}

type OrderLineItemAddedEvent struct {
	OrderID   int64 `json:"order_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

func NewProductChangedEvent(p *Product) ProductChangedEvent {
	return ProductChangedEvent{
		ProductID: p.ID,
		Name:      p.Name,
		Category:  p.Category,
		Price:     p.Price,
		InOrder:   p.InOrder,
	}
}
