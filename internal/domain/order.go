package domain

import (
	"errors"
	"time"
)

var ErrInvalidTransition = errors.New("invalid order status transition")

type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "new"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCanceled  OrderStatus = "canceled"
)

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCanceled
}

type Order struct {
	ID        int64           `db:"id" json:"id"`
	UserID    *int64          `db:"user_id" json:"user_id"`
	FirstName string          `db:"first_name" json:"first_name"`
	LastName  string          `db:"last_name" json:"last_name"`
	Phone     string          `db:"phone" json:"phone"`
	Email     string          `db:"email" json:"email"`
	Status    OrderStatus     `db:"status" json:"status"`
	Items     []OrderLineItem `db:"items" json:"items,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type OrderLineItem struct {
	ID        int64 `db:"id" json:"id"`
	OrderID   int64 `db:"order_id" json:"order_id"`
	ProductID int64 `db:"product_id" json:"product_id"`
	Quantity  int   `db:"quantity" json:"quantity"`
}

// OrderContact is the customer part of an order, filled at checkout and
// editable afterwards.
type OrderContact struct {
	FirstName string `json:"first_name" validate:"required,max=50"`
	LastName  string `json:"last_name" validate:"max=50"`
	Phone     string `json:"phone" validate:"required,max=20"`
	Email     string `json:"email" validate:"omitempty,email,max=254"`
}

// CreateOrderInput is the staff form: it may assign any owner and initial
// status.
type CreateOrderInput struct {
	OrderContact
	UserID *int64      `json:"user_id" validate:"omitempty,gt=0"`
	Status OrderStatus `json:"status" validate:"omitempty,oneof=new delivered canceled"`
}

type LineItemInput struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0,lte=2147483647"`
}

func (o *Order) SetContact(c OrderContact) {
	o.FirstName = c.FirstName
	o.LastName = c.LastName
	o.Phone = c.Phone
	o.Email = c.Email
}

func (o *Order) IsOwnedBy(actor Actor) bool {
	return actor.IsAuthenticated() && o.UserID != nil && *o.UserID == actor.UserID
}

func (o *Order) CanAddLineItems() bool {
	return o.Status == OrderStatusNew
}

func (o *Order) Deliver() error {
	return o.transition(OrderStatusDelivered)
}

// Cancel marks the order canceled. The row is kept.
func (o *Order) Cancel() error {
	return o.transition(OrderStatusCanceled)
}

func (o *Order) transition(to OrderStatus) error {
	if o.Status != OrderStatusNew {
		return ErrInvalidTransition
	}
	o.Status = to
	return nil
}
