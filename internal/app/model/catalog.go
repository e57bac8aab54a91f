package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidPrice = errors.New("price must be a non-negative decimal")

type CatalogItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Title     string    `gorm:"type:varchar(255);not null;index" json:"title"`
	Author    string    `gorm:"type:varchar(255);index" json:"author"`
	Publisher string    `gorm:"type:varchar(255)" json:"publisher"`
	Year      *int      `json:"year,omitempty"`
	Price     string    `gorm:"type:varchar(32);not null" json:"price"` // decimal text, e.g. "12.50"
	CoverURL  string    `gorm:"type:text" json:"cover_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Categories  []Category `gorm:"many2many:catalog_item_categories;constraint:OnDelete:CASCADE" json:"categories,omitempty"`
	CategoryIDs []uint     `gorm:"-" json:"category_ids,omitempty"` // write-only link set for create/replace
	Reviews     []Review   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
}

func (CatalogItem) TableName() string {
	return "catalog_items"
}

// PriceValue parses the stored price text.
func (c *CatalogItem) PriceValue() (decimal.Decimal, error) {
	return ParsePrice(c.Price)
}

// ParsePrice accepts plain decimal text and rejects negative amounts.
func ParsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, ErrInvalidPrice
	}
	return d, nil
}

type Category struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Name string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
}

func (Category) TableName() string {
	return "categories"
}
