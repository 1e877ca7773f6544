package domain

import "time"

// Book status values
const (
	BookAvailable = "available" // Listed and open for offers
	BookSold      = "sold"      // An offer was accepted, listing closed
)

// Book Model
type Book struct {
	ID            uint      `gorm:"primaryKey" json:"id"`                  // Primary key
	BookName      string    `gorm:"not null" json:"bookName"`              // Title of the book
	Category      string    `gorm:"not null" json:"category"`              // Category or subject
	CollegeName   string    `gorm:"not null" json:"collegeName"`           // College the book is used at
	PickupAddress string    `gorm:"not null" json:"pickupAddress"`         // Where the buyer collects the book
	Price         float64   `gorm:"not null" json:"price"`                 // Asking price, non-negative
	Image         string    `gorm:"not null" json:"image"`                 // Storage path of the cover image
	SellerID      uint      `gorm:"index;not null" json:"sellerId"`        // System ID of the selling user
	Status        string    `gorm:"default:available" json:"status"`       // available or sold
	CreatedAt     time.Time `json:"createdAt"`                             // Timestamp of creation
	UpdatedAt     time.Time `json:"updatedAt"`                             // Timestamp of last update
}
