package domain

import "time"

// Offer status values. Accepted and rejected are terminal: once an
// offer leaves pending it never transitions again.
const (
	OfferPending  = "pending"  // Awaiting the seller's decision
	OfferAccepted = "accepted" // Seller accepted, book marked sold
	OfferRejected = "rejected" // Seller declined
)

// Offer Model
type Offer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`          // Primary key
	BookID    uint      `gorm:"index;not null" json:"bookId"`  // System ID of the book
	BuyerID   uint      `gorm:"index;not null" json:"buyerId"` // System ID of the buying user
	Message   string    `gorm:"not null" json:"message"`       // Free-text interest message
	Status    string    `gorm:"default:pending" json:"status"` // pending, accepted or rejected
	CreatedAt time.Time `json:"createdAt"`                     // Timestamp of creation
	UpdatedAt time.Time `json:"updatedAt"`                     // Timestamp of last update
}
