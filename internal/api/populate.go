package api

import (
	"github.com/zaidzaid0342-dotcom/bookhub/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// loadUsersByID fetches all users for a set of IDs in a single query
// and returns them keyed by ID. Callers treat a missing key as a
// deleted user and attach null instead of failing the request.
func loadUsersByID(db *gorm.DB, ids []uint) (map[uint]domain.User, error) {
	byID := make(map[uint]domain.User, len(ids)) // Result map keyed by user ID
	if len(ids) == 0 {
		return byID, nil // Nothing to fetch
	}
	var users []domain.User // Slice to hold the batch
	if err := db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err // Surface the store failure
	}
	// Index the batch by ID
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}

// loadBooksByID fetches all books for a set of IDs in a single query
// and returns them keyed by ID. Missing keys resolve to null on read.
func loadBooksByID(db *gorm.DB, ids []uint) (map[uint]domain.Book, error) {
	byID := make(map[uint]domain.Book, len(ids)) // Result map keyed by book ID
	if len(ids) == 0 {
		return byID, nil // Nothing to fetch
	}
	var books []domain.Book // Slice to hold the batch
	if err := db.Where("id IN ?", ids).Find(&books).Error; err != nil {
		return nil, err // Surface the store failure
	}
	// Index the batch by ID
	for _, b := range books {
		byID[b.ID] = b
	}
	return byID, nil
}

// sellerIDs collects the distinct seller IDs of a book slice
func sellerIDs(books []domain.Book) []uint {
	seen := make(map[uint]bool, len(books)) // Track IDs already collected
	ids := make([]uint, 0, len(books))      // Distinct seller IDs
	for _, b := range books {
		if !seen[b.SellerID] {
			seen[b.SellerID] = true        // Mark as collected
			ids = append(ids, b.SellerID) // Collect the ID
		}
	}
	return ids
}
