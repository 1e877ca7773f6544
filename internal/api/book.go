package api

import (
	"context"       // Context for Redis operations
	"net/http"      // HTTP status codes
	"path/filepath" // Filename extension handling
	"strconv"       // String conversion
	"strings"       // String manipulation
	"time"          // Time durations

	"github.com/zaidzaid0342-dotcom/bookhub/internal/domain" // Importing domain models
	"github.com/zaidzaid0342-dotcom/bookhub/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// BookResponse is a book enriched with its seller's public profile.
// Seller is null when the seller account no longer exists.
type BookResponse struct {
	domain.Book                 // Embedded book fields
	Seller      *domain.Profile `json:"seller"` // Seller's public profile, contact withheld
}

// attachSellers resolves the seller of every book in one batched query
// and pairs each book with the seller's contact-free profile. A missing
// seller yields null rather than an error.
func attachSellers(db *gorm.DB, books []domain.Book) ([]BookResponse, error) {
	sellers, err := loadUsersByID(db, sellerIDs(books)) // Batched seller lookup
	if err != nil {
		return nil, err // Surface the store failure
	}
	resp := make([]BookResponse, len(books)) // Enriched response rows
	for i, b := range books {
		var seller *domain.Profile // Null when the seller row is gone
		if u, ok := sellers[b.SellerID]; ok {
			seller = u.Profile(false) // Public profile without contact fields
		}
		resp[i] = BookResponse{Book: b, Seller: seller}
	}
	return resp, nil
}

// invalidateBookCaches drops the cached book views after any write
func invalidateBookCaches(rdb *redis.Client, bookID uint) {
	ctx := context.Background()                                                  // Context for Redis operations
	_ = utils.DeleteCache(ctx, rdb, "book:"+strconv.Itoa(int(bookID)))           // Single book view
	_ = utils.DeleteCache(ctx, rdb, "books:status:"+domain.BookAvailable)        // Available listing view
	_ = utils.DeleteCache(ctx, rdb, "books:status:"+domain.BookSold)             // Sold listing view
}

// CreateBookHandler creates a new listing from a multipart form with a cover image
func CreateBookHandler(db *gorm.DB, rdb *redis.Client, uploadDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "Unauthorized"})
			return
		}
		var seller domain.User // Resolve the seller account
		if err := db.First(&seller, userID).Error; err != nil {
			// If the token's user no longer exists, return not found
			c.JSON(http.StatusNotFound, gin.H{"msg": "User not found"})
			return
		}
		// Read the required text fields from the multipart form
		bookName := strings.TrimSpace(c.PostForm("bookName"))           // Title
		category := strings.TrimSpace(c.PostForm("category"))           // Category
		collegeName := strings.TrimSpace(c.PostForm("collegeName"))     // College
		pickupAddress := strings.TrimSpace(c.PostForm("pickupAddress")) // Pickup address
		if bookName == "" || category == "" || collegeName == "" || pickupAddress == "" {
			// Any missing text field fails validation
			c.JSON(http.StatusBadRequest, gin.H{"msg": "All fields are required"})
			return
		}
		// Parse and validate the price
		price, err := strconv.ParseFloat(c.PostForm("price"), 64)
		if err != nil || price < 0 {
			// Price must be a non-negative number
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Price must be a non-negative number"})
			return
		}
		// The cover image is required
		file, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Image is required"})
			return
		}
		// Store the image under a timestamped name, keeping the original extension
		filename := strconv.FormatInt(time.Now().UnixNano(), 10) + filepath.Ext(file.Filename)
		imagePath := uploadDir + "/" + filename // Retrievable path persisted on the book
		// Write the blob before creating the listing; a blob orphaned by a
		// later failure is tolerated
		if err := c.SaveUploadedFile(file, filepath.Join(uploadDir, filename)); err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": seller.ID,   // Seller's system ID
				"error":   err.Error(), // Error message
			}).Error("Failed to store cover image") // Log the storage failure
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to store image"})
			return
		}
		// Create the listing, open for offers
		book := domain.Book{
			BookName:      bookName,             // Title
			Category:      category,             // Category
			CollegeName:   collegeName,          // College
			PickupAddress: pickupAddress,        // Pickup address
			Price:         price,                // Asking price
			Image:         imagePath,            // Stored image path
			SellerID:      seller.ID,            // Owning seller by system ID
			Status:        domain.BookAvailable, // New listings start available
		}
		if err := db.Create(&book).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": seller.ID,   // Seller's system ID
				"error":   err.Error(), // Error message
			}).Error("Failed to create listing") // Log the failure
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to create listing"})
			return
		}
		invalidateBookCaches(rdb, book.ID) // Drop stale cached listing views
		// Log the new listing
		logrus.WithFields(logrus.Fields{
			"book_id":   book.ID,   // New listing ID
			"seller_id": seller.ID, // Seller's system ID
			"price":     price,     // Asking price
		}).Info("Listing created")
		c.JSON(http.StatusCreated, book) // Return the created listing
	}
}

// ListBooksHandler returns listings for public browsing. Without an
// explicit status filter only available listings are returned.
func ListBooksHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := c.DefaultQuery("status", domain.BookAvailable) // Public browse defaults to available
		// Reject unknown status values
		if status != domain.BookAvailable && status != domain.BookSold {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid status filter"})
			return
		}
		ctx := context.Background()        // Context for Redis operations
		cacheKey := "books:status:" + status // Cache key per status view
		var cached []BookResponse          // Cached response rows
		// Serve from cache when possible
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, cached) // Return the cached view
			return
		}
		var books []domain.Book // Listings matching the filter
		if err := db.Where("status = ?", status).Find(&books).Error; err != nil {
			// If fetching fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to fetch listings"})
			return
		}
		// Enrich with seller profiles, batched
		resp, err := attachSellers(db, books)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to fetch listings"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, 60*time.Second) // Cache the view for 60 seconds
		c.JSON(http.StatusOK, resp)                                  // Return the listings
	}
}

// SearchBooksHandler filters available listings by category substring
// and an inclusive, independently optional price range
func SearchBooksHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Where("status = ?", domain.BookAvailable) // Search never returns sold listings
		// Case-insensitive substring match on category
		if category := c.Query("category"); category != "" {
			query = query.Where("LOWER(category) LIKE ?", "%"+strings.ToLower(category)+"%")
		}
		// Inclusive lower price bound
		if minPrice := c.Query("minPrice"); minPrice != "" {
			v, err := strconv.ParseFloat(minPrice, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid minPrice"})
				return
			}
			query = query.Where("price >= ?", v) // Apply the lower bound
		}
		// Inclusive upper price bound
		if maxPrice := c.Query("maxPrice"); maxPrice != "" {
			v, err := strconv.ParseFloat(maxPrice, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid maxPrice"})
				return
			}
			query = query.Where("price <= ?", v) // Apply the upper bound
		}
		var books []domain.Book // Listings matching the filters
		if err := query.Find(&books).Error; err != nil {
			// If fetching fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to search listings"})
			return
		}
		// Enrich with seller profiles, batched
		resp, err := attachSellers(db, books)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to search listings"})
			return
		}
		c.JSON(http.StatusOK, resp) // Return the matches
	}
}

// GetBookHandler returns a single listing by ID with its seller attached
func GetBookHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")         // Listing ID from the path
		ctx := context.Background() // Context for Redis operations
		cacheKey := "book:" + id    // Cache key for this listing
		var cached BookResponse     // Cached response
		// Serve from cache when possible
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, cached) // Return the cached listing
			return
		}
		var book domain.Book // Point lookup by primary key
		if err := db.First(&book, id).Error; err != nil {
			// If the listing does not exist, return not found
			c.JSON(http.StatusNotFound, gin.H{"msg": "Book not found"})
			return
		}
		var seller *domain.Profile // Null when the seller row is gone
		var user domain.User       // Resolve the seller
		if err := db.First(&user, book.SellerID).Error; err == nil {
			seller = user.Profile(false) // Public profile without contact fields
		}
		resp := BookResponse{Book: book, Seller: seller}             // Enriched listing
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, 60*time.Second) // Cache for 60 seconds
		c.JSON(http.StatusOK, resp)                                  // Return the listing
	}
}
