package domain

import (
	"time"

	cartdomain "github.com/nahomjim91/spice-marketplace/internal/cart/domain"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ShippingInfo is where the order goes. Names, email and street address are required.
type ShippingInfo struct {
	FirstName            string `json:"firstName"`
	LastName             string `json:"lastName"`
	Email                string `json:"email"`
	Phone                string `json:"phone,omitempty"`
	Address              string `json:"address"`
	City                 string `json:"city,omitempty"`
	State                string `json:"state,omitempty"`
	ZipCode              string `json:"zipCode,omitempty"`
	Country              string `json:"country,omitempty"`
	DeliveryInstructions string `json:"deliveryInstructions,omitempty"`
}

type Request struct {
	Shipping ShippingInfo
	Currency string
}

type Receipt struct {
	OrderID           string
	PaymentIntentID   string
	Amount            decimal.Decimal
	Currency          string
	ItemCount         int
	Items             []cartdomain.LineItem
	Totals            cartdomain.Totals
	EstimatedDelivery string
	PlacedAt          time.Time
}

// Order is the durable record of a paid checkout.
type Order struct {
	ID              string          `json:"id" gorm:"primaryKey;type:varchar(26)"`
	SessionID       string          `json:"session_id" gorm:"type:varchar(191);index"`
	Email           string          `json:"email" gorm:"type:varchar(255)"`
	Provider        string          `json:"provider" gorm:"type:varchar(64);not null"`
	PaymentIntentID string          `json:"payment_intent_id" gorm:"type:varchar(64);not null"`
	Currency        string          `json:"currency" gorm:"type:varchar(8);not null"`
	ItemCount       int             `json:"item_count" gorm:"not null"`
	Subtotal        decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2);not null"`
	Shipping        decimal.Decimal `json:"shipping" gorm:"type:decimal(12,2);not null"`
	Tax             decimal.Decimal `json:"tax" gorm:"type:decimal(12,2);not null"`
	GrandTotal      decimal.Decimal `json:"grand_total" gorm:"type:decimal(12,2);not null"`
	Cart            datatypes.JSON  `json:"cart" gorm:"not null"`
	ShippingInfo    datatypes.JSON  `json:"shipping_info" gorm:"not null"`
	CreatedAt       time.Time       `json:"created_at" gorm:"not null"`
}

func (Order) TableName() string { return "orders" }
