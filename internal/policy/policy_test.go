package policy

import (
	"testing"

	"github.com/sakashimaa/webshop/internal/domain"
	"github.com/stretchr/testify/assert"
	trequire "github.com/stretchr/testify/require"
)

func actor(id int64, perms ...domain.Permission) domain.Actor {
	return domain.NewActor(&domain.User{ID: id, Permissions: perms})
}

func order(owner int64, status domain.OrderStatus) *domain.Order {
	o := &domain.Order{ID: 1, Status: status}
	if owner != 0 {
		o.UserID = &owner
	}
	return o
}

func TestActionsWithoutResource(t *testing.T) {
	tests := []struct {
		name  string
		check func(domain.Actor) error
		perm  domain.Permission
	}{
		{"create product", CreateProduct, domain.PermAddProduct},
		{"create order", CreateOrder, domain.PermAddOrder},
		{"deliver order", DeliverOrder, domain.PermCourier},
		{"cancel order", CancelOrder, domain.PermDeleteOrder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.check(domain.Anonymous()), ErrUnauthenticated)
			assert.ErrorIs(t, tt.check(actor(1)), ErrForbidden)
			assert.ErrorIs(t, tt.check(actor(1, domain.PermViewOrder)), ErrForbidden)
			assert.NoError(t, tt.check(actor(1, tt.perm)))
		})
	}
}

func TestProductMutationsNeedLogin(t *testing.T) {
	for _, check := range []func(domain.Actor) error{UpdateProduct, HideProduct} {
		assert.ErrorIs(t, check(domain.Anonymous()), ErrUnauthenticated)
		assert.NoError(t, check(actor(5)))
	}
}

func TestListOrders(t *testing.T) {
	_, err := ListOrders(domain.Anonymous())
	trequire.ErrorIs(t, err, ErrUnauthenticated)

	all, err := ListOrders(actor(1))
	trequire.NoError(t, err)
	assert.False(t, all)

	all, err = ListOrders(actor(1, domain.PermViewOrder))
	trequire.NoError(t, err)
	assert.True(t, all)
}

func TestViewOrder(t *testing.T) {
	o := order(7, domain.OrderStatusDelivered)

	assert.NoError(t, ViewOrder(actor(7), o))
	assert.NoError(t, ViewOrder(actor(2, domain.PermViewOrder), o))
	assert.ErrorIs(t, ViewOrder(actor(2), o), ErrForbidden)
	assert.ErrorIs(t, ViewOrder(domain.Anonymous(), o), ErrUnauthenticated)
	assert.ErrorIs(t, ViewOrder(actor(2), order(0, domain.OrderStatusNew)), ErrForbidden)
}

func TestUpdateOrder(t *testing.T) {
	assert.NoError(t, UpdateOrder(actor(7), order(7, domain.OrderStatusNew)))
	assert.ErrorIs(t, UpdateOrder(actor(7), order(7, domain.OrderStatusDelivered)), ErrForbidden)
	assert.ErrorIs(t, UpdateOrder(actor(2), order(7, domain.OrderStatusNew)), ErrForbidden)
	assert.NoError(t, UpdateOrder(actor(2, domain.PermChangeOrder), order(7, domain.OrderStatusCanceled)))
	assert.ErrorIs(t, UpdateOrder(domain.Anonymous(), order(0, domain.OrderStatusNew)), ErrUnauthenticated)
}

func TestAddLineItem(t *testing.T) {
	staff := actor(2, domain.PermAddOrderProduct)

	assert.NoError(t, AddLineItem(actor(7), order(7, domain.OrderStatusNew)))
	assert.NoError(t, AddLineItem(staff, order(7, domain.OrderStatusNew)))
	assert.ErrorIs(t, AddLineItem(actor(3), order(7, domain.OrderStatusNew)), ErrForbidden)

	for _, status := range []domain.OrderStatus{domain.OrderStatusDelivered, domain.OrderStatusCanceled} {
		assert.ErrorIs(t, AddLineItem(actor(7), order(7, status)), ErrForbidden)
		assert.ErrorIs(t, AddLineItem(staff, order(7, status)), ErrForbidden)
	}
	assert.ErrorIs(t, AddLineItem(domain.Anonymous(), order(0, domain.OrderStatusNew)), ErrUnauthenticated)
}
