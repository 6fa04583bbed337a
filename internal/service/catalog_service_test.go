package service_test

import (
	"encoding/json"
	"fmt"

	"github.com/sakashimaa/webshop/internal/domain"
	"github.com/sakashimaa/webshop/internal/policy"
	"github.com/sakashimaa/webshop/internal/repository"
	"github.com/shopspring/decimal"
)

var pizzaInput = domain.ProductInput{
	Name:     "Margherita",
	Category: "pizza",
	Price:    decimal.RequireFromString("12.99"),
	Photo:    "photos/margherita.png",
	InOrder:  true,
}

func (s *IntegrationTestSuite) TestCreateProduct_RequiresPermission() {
	_, err := s.Catalog.Create(s.Ctx, domain.Anonymous(), pizzaInput)
	s.Require().ErrorIs(err, policy.ErrUnauthenticated)

	_, err = s.Catalog.Create(s.Ctx, s.seedUser("user"), pizzaInput)
	s.Require().ErrorIs(err, policy.ErrForbidden)

	product, err := s.Catalog.Create(s.Ctx, s.seedUser("admin", domain.PermAddProduct), pizzaInput)
	s.Require().NoError(err)
	s.Require().NotZero(product.ID)
	s.Require().True(pizzaInput.Price.Equal(product.Price))

	s.requireEventPublished(product.ID, domain.EventProductCreated)
}

func (s *IntegrationTestSuite) TestHideProduct_RemovesFromListing() {
	visible := s.seedProduct("pizza", "10.00", true)
	s.seedProduct("hidden", "1.00", false)

	products, err := s.Catalog.List(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(products, 1)

	_, err = s.Catalog.Hide(s.Ctx, domain.Anonymous(), visible.ID)
	s.Require().ErrorIs(err, policy.ErrUnauthenticated)

	hidden, err := s.Catalog.Hide(s.Ctx, s.seedUser("user"), visible.ID)
	s.Require().NoError(err)
	s.Require().False(hidden.InOrder)

	products, err = s.Catalog.List(s.Ctx)
	s.Require().NoError(err)
	s.Require().Empty(products)

	detail, err := s.Catalog.Get(s.Ctx, visible.ID)
	s.Require().NoError(err)
	s.Require().False(detail.InOrder)
}

func (s *IntegrationTestSuite) TestGetProduct_CachedAndEvicted() {
	p := s.seedProduct("pizza", "10.00", true)
	key := fmt.Sprintf("product:%d", p.ID)

	_, err := s.Catalog.Get(s.Ctx, p.ID)
	s.Require().NoError(err)

	raw, err := s.Redis.Get(s.Ctx, key).Bytes()
	s.Require().NoError(err)

	var cached domain.Product
	s.Require().NoError(json.Unmarshal(raw, &cached))
	s.Require().Equal(p.ID, cached.ID)

	in := pizzaInput
	in.Name = "Renamed"
	_, err = s.Catalog.Update(s.Ctx, s.seedUser("editor"), p.ID, in)
	s.Require().NoError(err)

	exists, err := s.Redis.Exists(s.Ctx, key).Result()
	s.Require().NoError(err)
	s.Require().Zero(exists)

	fresh, err := s.Catalog.Get(s.Ctx, p.ID)
	s.Require().NoError(err)
	s.Require().Equal("Renamed", fresh.Name)
}

func (s *IntegrationTestSuite) TestGetProduct_NotFound() {
	_, err := s.Catalog.Get(s.Ctx, 987654)
	s.Require().ErrorIs(err, repository.ErrProductNotFound)

	_, err = s.Catalog.Update(s.Ctx, s.seedUser("editor"), 987654, pizzaInput)
	s.Require().ErrorIs(err, repository.ErrProductNotFound)
}
