package model

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	Rating    int       `gorm:"not null" json:"rating"` // 1-5
	CreatedAt time.Time `json:"created_at"`

	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"user,omitempty"`
}

func (Review) TableName() string {
	return "reviews"
}

// RatingSummary is the aggregate exposed by the average-rating endpoint.
type RatingSummary struct {
	ProductID     uint    `json:"product_id"`
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int64   `json:"review_count"`
}
