package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID        int64           `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	Category  string          `db:"category" json:"category"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Photo     string          `db:"photo" json:"photo"`
	InOrder   bool            `db:"in_order" json:"in_order"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// ProductInput is the create/update form of a product.
type ProductInput struct {
	Name     string          `json:"name" validate:"required,max=100"`
	Category string          `json:"category" validate:"required,max=100"`
	Price    decimal.Decimal `json:"price" validate:"gt=0,lte=99999999.99"`
	Photo    string          `json:"photo" validate:"max=255"`
	InOrder  bool            `json:"in_order"`
}

func (in ProductInput) Apply(p *Product) {
	p.Name = in.Name
	p.Category = in.Category
	p.Price = in.Price.Round(2)
	p.Photo = in.Photo
	p.InOrder = in.InOrder
}
