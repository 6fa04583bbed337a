package domain

import (
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id int64, visible bool) *Product {
	return &Product{ID: id, Name: "p", Price: decimal.RequireFromString("10.50"), InOrder: visible}
}

func TestBasket_TotalsFirstSeenOrder(t *testing.T) {
	b := NewBasket([]string{"3", "3", "5"})

	assert.Equal(t, []BasketTotal{
		{ProductID: "3", Quantity: 2},
		{ProductID: "5", Quantity: 1},
	}, b.Totals())
	assert.Equal(t, 3, b.Len())
}

func TestBasket_AddHiddenProductIsNoop(t *testing.T) {
	b := NewBasket([]string{"1"})

	b = b.Add(product(2, false))
	assert.Equal(t, []string{"1"}, b.Items())

	b = b.Add(nil)
	assert.Equal(t, []string{"1"}, b.Items())
}

func TestBasket_RemoveFirstOccurrence(t *testing.T) {
	b := NewBasket([]string{"1", "2", "1"})

	b = b.Remove("1")
	assert.Equal(t, []string{"2", "1"}, b.Items())

	b = b.Remove("42")
	assert.Equal(t, []string{"2", "1"}, b.Items())
}

func TestBasket_DoesNotAliasInput(t *testing.T) {
	raw := []string{"1", "2"}
	b := NewBasket(raw)

	_ = b.Remove("1")
	b2 := b.Add(product(3, true))

	assert.Equal(t, []string{"1", "2"}, raw)
	assert.Equal(t, []string{"1", "2"}, b.Items())
	assert.Equal(t, []string{"1", "2", "3"}, b2.Items())
}

func TestBasket_CountsMatchAddsMinusRemoves(t *testing.T) {
	b := NewBasket(nil)
	require.True(t, b.IsEmpty())

	ops := []struct {
		add bool
		id  int64
	}{
		{true, 1}, {true, 2}, {true, 1}, {false, 1}, {false, 3}, {true, 2}, {true, 1}, {false, 2},
	}
	for _, op := range ops {
		if op.add {
			b = b.Add(product(op.id, true))
		} else {
			b = b.Remove(strconv.FormatInt(op.id, 10))
		}
	}

	sum := 0
	for _, tot := range b.Totals() {
		sum += tot.Quantity
	}

	assert.Equal(t, b.Len(), sum)
	assert.Equal(t, []BasketTotal{
		{ProductID: "2", Quantity: 1},
		{ProductID: "1", Quantity: 2},
	}, b.Totals())
}
