package service

import (
	"context"
	"strconv"

	"github.com/sakashimaa/webshop/internal/domain"
	"github.com/sakashimaa/webshop/internal/repository"
	"github.com/shopspring/decimal"
)

const (
	BasketActionAdd    = "add"
	BasketActionRemove = "remove"
)

// ProductGetter is the read side of the catalog needed by the basket.
type ProductGetter interface {
	Get(ctx context.Context, id int64) (*domain.Product, error)
}

type BasketService interface {
	Change(ctx context.Context, basket domain.Basket, productID, action string) (domain.Basket, error)
	View(ctx context.Context, basket domain.Basket) (*domain.BasketView, error)
}

type basketService struct {
	products ProductGetter
}

func NewBasketService(products ProductGetter) BasketService {
	return &basketService{products: products}
}

// Change adds one unit when action is "add" and removes one otherwise.
// Adding an unknown product fails; adding a hidden one is a no-op. Removing an
// id that does not parse is a no-op.
func (s *basketService) Change(ctx context.Context, basket domain.Basket, productID, action string) (domain.Basket, error) {
	if action != BasketActionAdd {
		id, err := strconv.ParseInt(productID, 10, 64)
		if err != nil {
			return basket, nil
		}
		return basket.Remove(strconv.FormatInt(id, 10)), nil
	}

	product, err := s.lookup(ctx, productID)
	if err != nil {
		return basket, err
	}

	return basket.Add(product), nil
}

// View prices every distinct product of the basket. A product that no longer
// exists fails the whole view.
func (s *basketService) View(ctx context.Context, basket domain.Basket) (*domain.BasketView, error) {
	totals := basket.Totals()

	view := &domain.BasketView{
		Lines: make([]domain.BasketLine, 0, len(totals)),
		Total: decimal.Zero,
		Count: basket.Len(),
	}

	for _, t := range totals {
		product, err := s.lookup(ctx, t.ProductID)
		if err != nil {
			return nil, err
		}

		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(t.Quantity)))
		view.Total = view.Total.Add(lineTotal)
		view.Lines = append(view.Lines, domain.BasketLine{
			Product:  product,
			Quantity: t.Quantity,
			Total:    lineTotal,
		})
	}

	return view, nil
}

func (s *basketService) lookup(ctx context.Context, productID string) (*domain.Product, error) {
	id, err := strconv.ParseInt(productID, 10, 64)
	if err != nil || id <= 0 {
		return nil, repository.ErrProductNotFound
	}

	return s.products.Get(ctx, id)
}
