package service

import (
	"context"
	"testing"

	"github.com/sakashimaa/webshop/internal/domain"
	"github.com/sakashimaa/webshop/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProducts map[int64]*domain.Product

func (f fakeProducts) Get(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := f[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

func newFakeProducts() fakeProducts {
	return fakeProducts{
		3: {ID: 3, Name: "pizza", Price: decimal.RequireFromString("10.50"), InOrder: true},
		5: {ID: 5, Name: "cola", Price: decimal.RequireFromString("2.00"), InOrder: true},
		7: {ID: 7, Name: "retired", Price: decimal.RequireFromString("1.00"), InOrder: false},
	}
}

func TestBasketService_View(t *testing.T) {
	svc := NewBasketService(newFakeProducts())

	view, err := svc.View(context.Background(), domain.NewBasket([]string{"3", "3", "5"}))
	require.NoError(t, err)

	require.Len(t, view.Lines, 2)
	assert.Equal(t, int64(3), view.Lines[0].Product.ID)
	assert.Equal(t, 2, view.Lines[0].Quantity)
	assert.True(t, decimal.RequireFromString("21").Equal(view.Lines[0].Total))
	assert.Equal(t, int64(5), view.Lines[1].Product.ID)
	assert.True(t, decimal.RequireFromString("23").Equal(view.Total))
	assert.Equal(t, 3, view.Count)
}

func TestBasketService_ViewMissingProductFails(t *testing.T) {
	svc := NewBasketService(newFakeProducts())

	_, err := svc.View(context.Background(), domain.NewBasket([]string{"3", "42"}))
	require.ErrorIs(t, err, repository.ErrProductNotFound)

	_, err = svc.View(context.Background(), domain.NewBasket([]string{"abc"}))
	require.ErrorIs(t, err, repository.ErrProductNotFound)
}

func TestBasketService_EmptyView(t *testing.T) {
	view, err := NewBasketService(newFakeProducts()).View(context.Background(), domain.NewBasket(nil))
	require.NoError(t, err)

	assert.Empty(t, view.Lines)
	assert.True(t, view.Total.IsZero())
}

func TestBasketService_Change(t *testing.T) {
	svc := NewBasketService(newFakeProducts())
	ctx := context.Background()
	b := domain.NewBasket(nil)

	b, err := svc.Change(ctx, b, "3", BasketActionAdd)
	require.NoError(t, err)
	b, err = svc.Change(ctx, b, "7", BasketActionAdd)
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, b.Items())

	_, err = svc.Change(ctx, b, "42", BasketActionAdd)
	require.ErrorIs(t, err, repository.ErrProductNotFound)

	b, err = svc.Change(ctx, b, "3", "anything-else")
	require.NoError(t, err)
	assert.True(t, b.IsEmpty())

	b, err = svc.Change(ctx, b, "42", BasketActionRemove)
	require.NoError(t, err)
	assert.True(t, b.IsEmpty())
}

func TestBasketService_ChangeCanonicalisesIDs(t *testing.T) {
	svc := NewBasketService(newFakeProducts())
	ctx := context.Background()

	b, err := svc.Change(ctx, domain.NewBasket(nil), "03", BasketActionAdd)
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, b.Items())

	b, err = svc.Change(ctx, b, "abc", BasketActionRemove)
	require.NoError(t, err)
	assert.Equal(t, 1, b.Len())

	b, err = svc.Change(ctx, b, "03", BasketActionRemove)
	require.NoError(t, err)
	assert.True(t, b.IsEmpty())
}
