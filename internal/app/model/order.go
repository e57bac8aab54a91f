package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusOpen      OrderStatus = "open"      // the user's cart
	OrderStatusCompleted OrderStatus = "completed" // checked out
)

type Order struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	UserID    uint            `gorm:"not null;index" json:"user_id"`
	TotalSum  decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"total_sum"`
	Status    OrderStatus     `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	User  *User       `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"user,omitempty"`
	Lines []OrderLine `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"lines,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderLine is one catalog item in an order. A product appears at most once per order.
type OrderLine struct {
	ID        uint `gorm:"primarykey" json:"id"`
	OrderID   uint `gorm:"not null;uniqueIndex:idx_order_lines_order_product" json:"order_id"`
	ProductID uint `gorm:"not null;uniqueIndex:idx_order_lines_order_product;index" json:"product_id"`
	Count     int  `gorm:"not null;default:1" json:"count"`

	Product *CatalogItem `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"product,omitempty"`
}

func (OrderLine) TableName() string {
	return "order_lines"
}

// ComputeTotal sums count x price over lines whose product is loaded.
func ComputeTotal(lines []OrderLine) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, line := range lines {
		if line.Product == nil {
			continue
		}
		price, err := line.Product.PriceValue()
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(line.Count))))
	}
	return total.Round(2), nil
}
