// Package policy decides whether an actor may perform an action. Every
// function returns nil, ErrUnauthenticated or ErrForbidden.
package policy

import (
	"errors"

	"github.com/sakashimaa/webshop/internal/domain"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("access denied")
)

// OrderRule is a check that needs the order it guards.
type OrderRule func(actor domain.Actor, order *domain.Order) error

func require(actor domain.Actor, perm domain.Permission) error {
	if !actor.IsAuthenticated() {
		return ErrUnauthenticated
	}
	if !actor.Has(perm) {
		return ErrForbidden
	}
	return nil
}

func authenticated(actor domain.Actor) error {
	if !actor.IsAuthenticated() {
		return ErrUnauthenticated
	}
	return nil
}

func CreateProduct(actor domain.Actor) error {
	return require(actor, domain.PermAddProduct)
}

func UpdateProduct(actor domain.Actor) error {
	return authenticated(actor)
}

func HideProduct(actor domain.Actor) error {
	return authenticated(actor)
}

// ListOrders reports whether actor may list orders and, if so, whether the
// listing covers every order or only the actor's own.
func ListOrders(actor domain.Actor) (all bool, err error) {
	if err := authenticated(actor); err != nil {
		return false, err
	}
	return actor.Has(domain.PermViewOrder), nil
}

func ViewOrder(actor domain.Actor, order *domain.Order) error {
	if actor.Has(domain.PermViewOrder) || order.IsOwnedBy(actor) {
		return nil
	}
	return deny(actor)
}

func CreateOrder(actor domain.Actor) error {
	return require(actor, domain.PermAddOrder)
}

func UpdateOrder(actor domain.Actor, order *domain.Order) error {
	if actor.Has(domain.PermChangeOrder) {
		return nil
	}
	if order.IsOwnedBy(actor) && order.Status == domain.OrderStatusNew {
		return nil
	}
	return deny(actor)
}

func DeliverOrder(actor domain.Actor) error {
	return require(actor, domain.PermCourier)
}

func CancelOrder(actor domain.Actor) error {
	return require(actor, domain.PermDeleteOrder)
}

// AddLineItem holds for owners and staff alike only while the order is new.
func AddLineItem(actor domain.Actor, order *domain.Order) error {
	if !order.CanAddLineItems() {
		if !actor.IsAuthenticated() {
			return ErrUnauthenticated
		}
		return ErrForbidden
	}
	if order.IsOwnedBy(actor) || actor.Has(domain.PermAddOrderProduct) {
		return nil
	}
	return deny(actor)
}

func deny(actor domain.Actor) error {
	if !actor.IsAuthenticated() {
		return ErrUnauthenticated
	}
	return ErrForbidden
}
