package domain

import (
	"time"

	cartdomain "github.com/nahomjim91/spice-marketplace/internal/cart/domain"
	"github.com/shopspring/decimal"
)

// Product is a read-only storefront catalog record.
type Product struct {
	ID        string          `json:"id" gorm:"primaryKey;type:varchar(128)"`
	Name      string          `json:"name" gorm:"type:text;not null"`
	Category  string          `json:"category" gorm:"type:varchar(64);not null;index"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Weight    string          `json:"weight" gorm:"type:varchar(64)"`
	Region    string          `json:"region" gorm:"type:text"`
	InStock   bool            `json:"in_stock" gorm:"not null"`
	CreatedAt time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time       `json:"updated_at" gorm:"not null"`
}

func (Product) TableName() string { return "products" }

// CartProduct projects the catalog record onto the value a line item carries.
func (p Product) CartProduct() cartdomain.Product {
	return cartdomain.Product{
		ID:       p.ID,
		Name:     p.Name,
		Category: p.Category,
		Price:    p.Price,
		Weight:   p.Weight,
		Region:   p.Region,
	}
}
