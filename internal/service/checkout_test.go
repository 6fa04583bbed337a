package service_test

import (
	"strconv"

	"github.com/sakashimaa/webshop/internal/domain"
	"github.com/sakashimaa/webshop/internal/repository"
)

var contact = domain.OrderContact{
	FirstName: "Ivan",
	LastName:  "Petrov",
	Phone:     "+77001234567",
	Email:     "ivan@example.com",
}

func (s *IntegrationTestSuite) TestCheckout_EmptyBasket_Failed() {
	order, err := s.Orders.Checkout(s.Ctx, domain.Anonymous(), contact, domain.NewBasket(nil))

	s.Require().ErrorIs(err, domain.ErrEmptyBasket)
	s.Require().Nil(order)
	s.Require().Zero(s.countRows("orders"))
	s.Require().Zero(s.countRows("order_line_items"))
}

func (s *IntegrationTestSuite) TestCheckout_AggregatesBasket() {
	actor := s.seedUser("buyer")
	p3 := s.seedProduct("pizza", "10.50", true)
	p5 := s.seedProduct("cola", "2.00", true)

	id3, id5 := strconv.FormatInt(p3.ID, 10), strconv.FormatInt(p5.ID, 10)
	basket := domain.NewBasket([]string{id3, id3, id5})

	order, err := s.Orders.Checkout(s.Ctx, actor, contact, basket)
	s.Require().NoError(err)
	s.Require().NotZero(order.ID)
	s.Require().Equal(domain.OrderStatusNew, order.Status)
	s.Require().NotNil(order.UserID)
	s.Require().Equal(actor.UserID, *order.UserID)

	stored, err := s.Orders.Get(s.Ctx, actor, order.ID)
	s.Require().NoError(err)
	s.Require().Len(stored.Items, 2)
	s.Require().Equal(p3.ID, stored.Items[0].ProductID)
	s.Require().Equal(2, stored.Items[0].Quantity)
	s.Require().Equal(p5.ID, stored.Items[1].ProductID)
	s.Require().Equal(1, stored.Items[1].Quantity)

	s.Require().Equal(1, s.countRows("orders"))
	s.requireEventPublished(order.ID, domain.EventOrderCreated)
}

func (s *IntegrationTestSuite) TestCheckout_GuestOrderHasNoOwner() {
	p := s.seedProduct("tea", "1.00", true)

	order, err := s.Orders.Checkout(s.Ctx, domain.Anonymous(), contact, domain.NewBasket([]string{strconv.FormatInt(p.ID, 10)}))

	s.Require().NoError(err)
	s.Require().Nil(order.UserID)
}

func (s *IntegrationTestSuite) TestCheckout_MissingProduct_RolledBack() {
	p := s.seedProduct("pizza", "10.50", true)
	basket := domain.NewBasket([]string{strconv.FormatInt(p.ID, 10), "999999"})

	order, err := s.Orders.Checkout(s.Ctx, domain.Anonymous(), contact, basket)

	s.Require().ErrorIs(err, repository.ErrProductNotFound)
	s.Require().Nil(order)
	s.Require().Zero(s.countRows("orders"))
	s.Require().Zero(s.countRows("order_line_items"))
	s.Require().Zero(s.countRows("outbox"))
}

func (s *IntegrationTestSuite) TestBasketView_Totals() {
	p1 := s.seedProduct("pizza", "10.50", true)
	p2 := s.seedProduct("cola", "2.25", true)
	id1, id2 := strconv.FormatInt(p1.ID, 10), strconv.FormatInt(p2.ID, 10)

	view, err := s.Baskets.View(s.Ctx, domain.NewBasket([]string{id2, id1, id2}))
	s.Require().NoError(err)

	s.Require().Len(view.Lines, 2)
	s.Require().Equal(p2.ID, view.Lines[0].Product.ID)
	s.Require().Equal(2, view.Lines[0].Quantity)
	s.Require().Equal("4.5", view.Lines[0].Total.String())
	s.Require().Equal("15", view.Total.String())
	s.Require().Equal(3, view.Count)
}

func (s *IntegrationTestSuite) TestBasketChange_HiddenProductIgnored() {
	hidden := s.seedProduct("ghost", "5.00", false)

	basket, err := s.Baskets.Change(s.Ctx, domain.NewBasket(nil), strconv.FormatInt(hidden.ID, 10), "add")

	s.Require().NoError(err)
	s.Require().True(basket.IsEmpty())
}
