package api

import (
	"context"  // Context for Redis operations
	"errors"   // Sentinel error comparison
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Time durations

	"github.com/zaidzaid0342-dotcom/bookhub/internal/domain" // Importing domain models
	"github.com/zaidzaid0342-dotcom/bookhub/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// parsePagination reads page/page_size query parameters with the same
// defaults and bounds on every admin list
func parsePagination(c *gin.Context) (page, pageSize, offset int) {
	page = 1      // Default page number
	pageSize = 20 // Default page size
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v // Set page if valid
		}
	}
	// Check and set page size within limits
	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v // Set page size
		}
	}
	offset = (page - 1) * pageSize // Calculate offset for pagination
	return page, pageSize, offset
}

// findUserByRef resolves a path parameter that may be either the
// numeric system ID or the human handle, system ID first
func findUserByRef(db *gorm.DB, ref string) (*domain.User, error) {
	var user domain.User // User record to resolve
	if n, err := strconv.Atoi(ref); err == nil {
		// Numeric reference: try the system ID
		if err := db.First(&user, n).Error; err == nil {
			return &user, nil // Found by system ID
		}
	}
	// Fall back to the handle
	if err := db.Where("handle = ?", ref).First(&user).Error; err != nil {
		return nil, err // Not found either way
	}
	return &user, nil
}

// ListUsersHandler returns all users, paginated, passwords stripped
func ListUsersHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background() // Use background context for Redis
		// Create a cache key based on pagination parameters
		cacheKey := "admin:users:page=" + c.DefaultQuery("page", "1") + ":size=" + c.DefaultQuery("page_size", "20")
		var cached gin.H // Cached response body
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			cached["cached"] = true        // Indicate response is from cache
			c.JSON(http.StatusOK, cached)  // Return the cached page
			return
		}
		page, pageSize, offset := parsePagination(c) // Pagination parameters
		var total int64                              // Total user count
		if err := db.Model(&domain.User{}).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to count users"}) // Return on error
			return
		}
		var users []domain.User // Slice to hold users
		// Apply offset and limit for pagination
		if err := db.Offset(offset).Limit(pageSize).Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to fetch users"}) // Return on error
			return
		}
		// The total number of pages
		totalPages := (int(total) + pageSize - 1) / pageSize
		respData := gin.H{
			"users":       users,      // List of users, passwords stripped by the model
			"page":        page,       // Current page
			"page_size":   pageSize,   // Page size
			"total":       total,      // Total number of users
			"total_pages": totalPages, // Total pages
			"cached":      false,      // Indicate response is not from cache
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, 60*time.Second)
		c.JSON(http.StatusOK, respData) // Return the response
	}
}

// GetUserHandler returns a single user by system ID or handle
func GetUserHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := findUserByRef(db, c.Param("id")) // Dual lookup
		if err != nil {
			// If the user does not exist, return not found
			c.JSON(http.StatusNotFound, gin.H{"msg": "User not found"})
			return
		}
		c.JSON(http.StatusOK, user) // Password is stripped by the model
	}
}

// AdminUpdateUserRequest extends the profile update with the admin flag
type AdminUpdateUserRequest struct {
	UpdateProfileRequest       // Shared profile fields
	IsAdmin              *bool `json:"isAdmin"` // Admin flag, absent means unchanged
}

// UpdateUserHandler lets an admin update any user's profile and admin flag
func UpdateUserHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AdminUpdateUserRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid request"})
			return
		}
		user, err := findUserByRef(db, c.Param("id")) // Dual lookup
		if err != nil {
			// If the user does not exist, return not found
			c.JSON(http.StatusNotFound, gin.H{"msg": "User not found"})
			return
		}
		// Apply the provided profile fields
		if !applyProfileUpdate(user, &req.UpdateProfileRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Required fields cannot be empty"})
			return
		}
		// Apply the admin flag if provided
		if req.IsAdmin != nil {
			user.IsAdmin = *req.IsAdmin
		}
		// Persist the update
		if err := db.Save(user).Error; err != nil {
			// Most likely a uniqueness violation on handle/username/email
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Handle, username or email already in use"})
			return
		}
		c.JSON(http.StatusOK, user) // Return the updated record
	}
}

// DeleteUserHandler hard-deletes a user. Books and offers referencing
// the account are left in place and resolve to null on read.
func DeleteUserHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := findUserByRef(db, c.Param("id")) // Dual lookup
		if err != nil {
			// If the user does not exist, return not found
			c.JSON(http.StatusNotFound, gin.H{"msg": "User not found"})
			return
		}
		// Hard delete, no cascade
		if err := db.Delete(&domain.User{}, user.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to delete user"})
			return
		}
		// Log the moderation action
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID,     // Deleted user's system ID
			"handle":  user.Handle, // Deleted user's handle
		}).Info("User removed by admin")
		c.JSON(http.StatusOK, gin.H{"msg": "User removed"})
	}
}

// AdminListBooksHandler returns listings for moderation. Unlike the
// public browse, no status filter means every status is returned.
func AdminListBooksHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize, offset := parsePagination(c) // Pagination parameters
		query := db.Model(&domain.Book{})            // Start building the query
		// Admin browse is unfiltered unless a status is supplied
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status) // Filter by status
		}
		var total int64 // Total listing count
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to count listings"})
			return
		}
		var books []domain.Book // Slice to hold listings
		if err := query.Offset(offset).Limit(pageSize).Find(&books).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to fetch listings"})
			return
		}
		// Admins see full seller profiles, contact included
		sellers, err := loadUsersByID(db, sellerIDs(books))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to fetch listings"})
			return
		}
		resp := make([]BookResponse, len(books)) // Enriched response rows
		for i, b := range books {
			var seller *domain.Profile // Null when the seller row is gone
			if u, ok := sellers[b.SellerID]; ok {
				seller = u.Profile(true) // Full profile for moderation
			}
			resp[i] = BookResponse{Book: b, Seller: seller}
		}
		// The total number of pages
		totalPages := (int(total) + pageSize - 1) / pageSize
		c.JSON(http.StatusOK, gin.H{
			"books":       resp,       // List of listings
			"page":        page,       // Current page
			"page_size":   pageSize,   // Page size
			"total":       total,      // Total number of listings
			"total_pages": totalPages, // Total pages
		})
	}
}

// AdminDeleteBookHandler hard-deletes a listing. Offers referencing it
// are left in place and resolve to null on read.
func AdminDeleteBookHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var book domain.Book // Resolve the listing
		if err := db.First(&book, c.Param("id")).Error; err != nil {
			// If the listing does not exist, return not found
			c.JSON(http.StatusNotFound, gin.H{"msg": "Book not found"})
			return
		}
		// Hard delete, no cascade
		if err := db.Delete(&domain.Book{}, book.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to delete listing"})
			return
		}
		invalidateBookCaches(rdb, book.ID) // Drop stale cached listing views
		// Log the moderation action
		logrus.WithFields(logrus.Fields{
			"book_id":   book.ID,       // Deleted listing ID
			"seller_id": book.SellerID, // Its seller
		}).Info("Listing removed by admin")
		c.JSON(http.StatusOK, gin.H{"msg": "Book removed"})
	}
}

// AdminListOffersHandler returns all offers for moderation, paginated
func AdminListOffersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize, offset := parsePagination(c) // Pagination parameters
		query := db.Model(&domain.Offer{})           // Start building the query
		// Optional status filter
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status) // Filter by status
		}
		var total int64 // Total offer count
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to count offers"})
			return
		}
		var offers []domain.Offer // Slice to hold offers
		if err := query.Offset(offset).Limit(pageSize).Find(&offers).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to fetch offers"})
			return
		}
		// Admins see full buyer profiles, contact included
		buyers, err := loadUsersByID(db, buyerIDs(offers))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to fetch offers"})
			return
		}
		resp := make([]OfferResponse, len(offers)) // Enriched response rows
		for i, o := range offers {
			var buyer *domain.Profile // Null when the buyer row is gone
			if u, ok := buyers[o.BuyerID]; ok {
				buyer = u.Profile(true) // Full profile for moderation
			}
			resp[i] = OfferResponse{Offer: o, Buyer: buyer}
		}
		// The total number of pages
		totalPages := (int(total) + pageSize - 1) / pageSize
		c.JSON(http.StatusOK, gin.H{
			"offers":      resp,       // List of offers
			"page":        page,       // Current page
			"page_size":   pageSize,   // Page size
			"total":       total,      // Total number of offers
			"total_pages": totalPages, // Total pages
		})
	}
}

// AdminGetOfferHandler returns a single offer with its buyer and book
func AdminGetOfferHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var offer domain.Offer // Resolve the offer
		if err := db.First(&offer, c.Param("id")).Error; err != nil {
			// If the offer does not exist, return not found
			c.JSON(http.StatusNotFound, gin.H{"msg": "Offer not found"})
			return
		}
		var buyer *domain.Profile // Null when the buyer row is gone
		var user domain.User      // Resolve the buyer
		if err := db.First(&user, offer.BuyerID).Error; err == nil {
			buyer = user.Profile(true) // Full profile for moderation
		}
		var book *domain.Book // Null when the listing was deleted
		var b domain.Book     // Resolve the listing
		if err := db.First(&b, offer.BookID).Error; err == nil {
			book = &b
		}
		c.JSON(http.StatusOK, gin.H{
			"offer": offer, // The offer itself
			"buyer": buyer, // Its buyer, null if deleted
			"book":  book,  // Its listing, null if deleted
		})
	}
}

// AdminUpdateOfferHandler lets an admin force a decision on a pending
// offer. The same conditional transition applies: a non-pending offer
// fails with a conflict, and acceptance marks the book sold.
func AdminUpdateOfferHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RespondRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid request"})
			return
		}
		// Only the two terminal decisions are accepted
		if req.Status != domain.OfferAccepted && req.Status != domain.OfferRejected {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Status must be accepted or rejected"})
			return
		}
		var offer domain.Offer // Resolve the offer
		if err := db.First(&offer, c.Param("id")).Error; err != nil {
			// If the offer does not exist, return not found
			c.JSON(http.StatusNotFound, gin.H{"msg": "Offer not found"})
			return
		}
		// Apply the decision atomically
		if err := transitionOffer(db, &offer, req.Status); err != nil {
			// A decided offer cannot be decided again
			if errors.Is(err, errOfferNotPending) {
				c.JSON(http.StatusConflict, gin.H{"msg": "Offer has already been responded to"})
				return
			}
			logrus.WithFields(logrus.Fields{
				"offer_id": offer.ID,    // Offer ID
				"decision": req.Status,  // Attempted decision
				"error":    err.Error(), // Error message
			}).Error("Admin offer update failed") // Log the failure
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to update offer"})
			return
		}
		offer.Status = req.Status           // Reflect the applied decision
		invalidateBookCaches(rdb, offer.BookID) // The listing view may have changed
		// Log the moderation action
		logrus.WithFields(logrus.Fields{
			"offer_id": offer.ID,   // Offer ID
			"decision": req.Status, // Applied decision
		}).Info("Offer updated by admin")
		c.JSON(http.StatusOK, offer) // Return the updated offer
	}
}
