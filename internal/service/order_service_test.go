package service_test

import (
	"strconv"

	"github.com/sakashimaa/webshop/internal/domain"
	"github.com/sakashimaa/webshop/internal/policy"
	"github.com/sakashimaa/webshop/internal/repository"
)

func (s *IntegrationTestSuite) checkout(actor domain.Actor, products ...*domain.Product) *domain.Order {
	items := make([]string, 0, len(products))
	for _, p := range products {
		items = append(items, strconv.FormatInt(p.ID, 10))
	}

	order, err := s.Orders.Checkout(s.Ctx, actor, contact, domain.NewBasket(items))
	s.Require().NoError(err)

	return order
}

func (s *IntegrationTestSuite) TestDeliver_Success() {
	owner := s.seedUser("owner")
	courier := s.seedUser("courier", domain.PermCourier)
	order := s.checkout(owner, s.seedProduct("pizza", "10.00", true))

	delivered, err := s.Orders.Deliver(s.Ctx, courier, order.ID)
	s.Require().NoError(err)
	s.Require().Equal(domain.OrderStatusDelivered, delivered.Status)

	_, err = s.Orders.Cancel(s.Ctx, s.seedUser("manager", domain.PermDeleteOrder), order.ID)
	s.Require().ErrorIs(err, domain.ErrInvalidTransition)

	_, err = s.Orders.Deliver(s.Ctx, courier, order.ID)
	s.Require().ErrorIs(err, domain.ErrInvalidTransition)

	s.requireEventPublished(order.ID, domain.EventOrderDelivered)
}

func (s *IntegrationTestSuite) TestDeliver_WithoutPermission_Forbidden() {
	owner := s.seedUser("owner")
	order := s.checkout(owner, s.seedProduct("pizza", "10.00", true))

	_, err := s.Orders.Deliver(s.Ctx, owner, order.ID)
	s.Require().ErrorIs(err, policy.ErrForbidden)

	stored, err := s.Orders.Get(s.Ctx, owner, order.ID)
	s.Require().NoError(err)
	s.Require().Equal(domain.OrderStatusNew, stored.Status)
}

func (s *IntegrationTestSuite) TestCancel_KeepsOrder() {
	owner := s.seedUser("owner")
	manager := s.seedUser("manager", domain.PermDeleteOrder, domain.PermViewOrder)
	order := s.checkout(owner, s.seedProduct("pizza", "10.00", true))

	canceled, err := s.Orders.Cancel(s.Ctx, manager, order.ID)
	s.Require().NoError(err)
	s.Require().Equal(domain.OrderStatusCanceled, canceled.Status)

	stored, err := s.Orders.Get(s.Ctx, manager, order.ID)
	s.Require().NoError(err)
	s.Require().Equal(domain.OrderStatusCanceled, stored.Status)
	s.Require().Len(stored.Items, 1)

	_, err = s.Orders.Deliver(s.Ctx, s.seedUser("courier", domain.PermCourier), order.ID)
	s.Require().ErrorIs(err, domain.ErrInvalidTransition)
}

func (s *IntegrationTestSuite) TestCancel_NotFound() {
	_, err := s.Orders.Cancel(s.Ctx, s.seedUser("manager", domain.PermDeleteOrder), 424242)
	s.Require().ErrorIs(err, repository.ErrOrderNotFound)
}

func (s *IntegrationTestSuite) TestAddLineItem_OnlyWhileNew() {
	owner := s.seedUser("owner")
	staff := s.seedUser("staff", domain.PermAddOrderProduct)
	courier := s.seedUser("courier", domain.PermCourier)
	pizza := s.seedProduct("pizza", "10.00", true)
	cola := s.seedProduct("cola", "2.00", true)
	order := s.checkout(owner, pizza)

	item, err := s.Orders.AddLineItem(s.Ctx, owner, order.ID, domain.LineItemInput{ProductID: cola.ID, Quantity: 3})
	s.Require().NoError(err)
	s.Require().NotZero(item.ID)

	_, err = s.Orders.AddLineItem(s.Ctx, s.seedUser("stranger"), order.ID, domain.LineItemInput{ProductID: cola.ID, Quantity: 1})
	s.Require().ErrorIs(err, policy.ErrForbidden)

	_, err = s.Orders.Deliver(s.Ctx, courier, order.ID)
	s.Require().NoError(err)

	_, err = s.Orders.AddLineItem(s.Ctx, owner, order.ID, domain.LineItemInput{ProductID: cola.ID, Quantity: 1})
	s.Require().ErrorIs(err, policy.ErrForbidden)

	_, err = s.Orders.AddLineItem(s.Ctx, staff, order.ID, domain.LineItemInput{ProductID: cola.ID, Quantity: 1})
	s.Require().ErrorIs(err, policy.ErrForbidden)

	stored, err := s.Orders.Get(s.Ctx, owner, order.ID)
	s.Require().NoError(err)
	s.Require().Len(stored.Items, 2)
}

func (s *IntegrationTestSuite) TestAddLineItem_UnknownProduct() {
	owner := s.seedUser("owner")
	order := s.checkout(owner, s.seedProduct("pizza", "10.00", true))

	_, err := s.Orders.AddLineItem(s.Ctx, owner, order.ID, domain.LineItemInput{ProductID: 999999, Quantity: 1})
	s.Require().ErrorIs(err, repository.ErrProductNotFound)
}

func (s *IntegrationTestSuite) TestList_OwnVersusAll() {
	alice := s.seedUser("alice")
	bob := s.seedUser("bob")
	staff := s.seedUser("staff", domain.PermViewOrder)
	pizza := s.seedProduct("pizza", "10.00", true)

	first := s.checkout(alice, pizza)
	second := s.checkout(bob, pizza)
	third := s.checkout(alice, pizza)

	own, err := s.Orders.List(s.Ctx, alice)
	s.Require().NoError(err)
	s.Require().Len(own, 2)
	for _, o := range own {
		s.Require().Equal(alice.UserID, *o.UserID)
	}

	all, err := s.Orders.List(s.Ctx, staff)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Require().Equal([]int64{third.ID, second.ID, first.ID}, []int64{all[0].ID, all[1].ID, all[2].ID})

	_, err = s.Orders.List(s.Ctx, domain.Anonymous())
	s.Require().ErrorIs(err, policy.ErrUnauthenticated)
}

func (s *IntegrationTestSuite) TestGet_ForeignOrder_Forbidden() {
	order := s.checkout(s.seedUser("alice"), s.seedProduct("pizza", "10.00", true))

	got, err := s.Orders.Get(s.Ctx, s.seedUser("bob"), order.ID)
	s.Require().ErrorIs(err, policy.ErrForbidden)
	s.Require().Nil(got)
}

func (s *IntegrationTestSuite) TestUpdateContact() {
	owner := s.seedUser("owner")
	order := s.checkout(owner, s.seedProduct("pizza", "10.00", true))

	changed := contact
	changed.Phone = "+77000000000"

	updated, err := s.Orders.UpdateContact(s.Ctx, owner, order.ID, changed)
	s.Require().NoError(err)
	s.Require().Equal("+77000000000", updated.Phone)

	_, err = s.Orders.Cancel(s.Ctx, s.seedUser("manager", domain.PermDeleteOrder), order.ID)
	s.Require().NoError(err)

	_, err = s.Orders.UpdateContact(s.Ctx, owner, order.ID, contact)
	s.Require().ErrorIs(err, policy.ErrForbidden)

	_, err = s.Orders.UpdateContact(s.Ctx, s.seedUser("editor", domain.PermChangeOrder), order.ID, contact)
	s.Require().NoError(err)
}

func (s *IntegrationTestSuite) TestCreate_StaffForm() {
	owner := s.seedUser("owner")
	clerk := s.seedUser("clerk", domain.PermAddOrder)

	_, err := s.Orders.Create(s.Ctx, owner, domain.CreateOrderInput{OrderContact: contact})
	s.Require().ErrorIs(err, policy.ErrForbidden)

	order, err := s.Orders.Create(s.Ctx, clerk, domain.CreateOrderInput{
		OrderContact: contact,
		UserID:       owner.OwnerID(),
	})
	s.Require().NoError(err)
	s.Require().Equal(domain.OrderStatusNew, order.Status)

	own, err := s.Orders.List(s.Ctx, owner)
	s.Require().NoError(err)
	s.Require().Len(own, 1)
	s.Require().Equal(order.ID, own[0].ID)
}

func (s *IntegrationTestSuite) TestCreateOrder_UnknownOwner() {
	clerk := s.seedUser("clerk", domain.PermAddOrder)
	missing := int64(999999)

	_, err := s.Orders.Create(s.Ctx, clerk, domain.CreateOrderInput{
		OrderContact: contact,
		UserID:       &missing,
	})
	s.Require().ErrorIs(err, repository.ErrUserNotFound)
	s.Require().Equal(0, s.countRows("orders"))
}
