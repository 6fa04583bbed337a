package domain

import (
	"errors"
	"slices"
	"strconv"

	"github.com/shopspring/decimal"
)

var ErrEmptyBasket = errors.New("basket is empty")

// Basket is the list of product ids kept in the session, one entry per unit.
// Methods never mutate the receiver's backing array.
type Basket struct {
	items []string
}

func NewBasket(items []string) Basket {
	return Basket{items: slices.Clone(items)}
}

// BasketTotal is a distinct product id with the number of units selected.
type BasketTotal struct {
	ProductID string
	Quantity  int
}

// BasketLine is a priced row of the basket view.
type BasketLine struct {
	Product  *Product        `json:"product"`
	Quantity int             `json:"qty"`
	Total    decimal.Decimal `json:"total"`
}

type BasketView struct {
	Lines []BasketLine    `json:"basket"`
	Total decimal.Decimal `json:"basket_total"`
	Count int             `json:"products_count"`
}

// Add appends one unit of p. Products hidden from the catalog are ignored.
func (b Basket) Add(p *Product) Basket {
	if p == nil || !p.InOrder {
		return b
	}

	items := make([]string, 0, len(b.items)+1)
	items = append(items, b.items...)
	items = append(items, strconv.FormatInt(p.ID, 10))

	return Basket{items: items}
}

// Remove drops the first unit of productID, if any.
func (b Basket) Remove(productID string) Basket {
	idx := slices.Index(b.items, productID)
	if idx < 0 {
		return b
	}

	return Basket{items: slices.Delete(slices.Clone(b.items), idx, idx+1)}
}

func (b Basket) IsEmpty() bool {
	return len(b.items) == 0
}

func (b Basket) Len() int {
	return len(b.items)
}

func (b Basket) Items() []string {
	return slices.Clone(b.items)
}

// Totals counts units per product id in first-seen order.
func (b Basket) Totals() []BasketTotal {
	index := make(map[string]int, len(b.items))
	totals := make([]BasketTotal, 0, len(b.items))

	for _, id := range b.items {
		if i, ok := index[id]; ok {
			totals[i].Quantity++
			continue
		}
		index[id] = len(totals)
		totals = append(totals, BasketTotal{ProductID: id, Quantity: 1})
	}

	return totals
}
