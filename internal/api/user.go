package api

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"github.com/zaidzaid0342-dotcom/bookhub/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// UpdateProfileRequest updates a user's own profile. Pointer fields
// distinguish "leave unchanged" (absent) from "set to this value"
// (present), so optional fields can be cleared explicitly.
type UpdateProfileRequest struct {
	Handle      *string `json:"handle"`      // Human-chosen identifier
	Username    *string `json:"username"`    // Display name
	Email       *string `json:"email"`       // Email address
	Phone       *string `json:"phone"`       // Phone number
	City        *string `json:"city"`        // City of residence
	State       *string `json:"state"`       // State of residence
	ClassName   *string `json:"className"`   // Class or year
	SchoolName  *string `json:"schoolName"`  // Optional school name
	CollegeName *string `json:"collegeName"` // Optional college name
}

// applyProfileUpdate copies the provided fields onto the user record.
// Required fields reject empty values; optional ones may be cleared.
func applyProfileUpdate(user *domain.User, req *UpdateProfileRequest) bool {
	// Required fields must stay non-empty
	required := []struct {
		src *string // Incoming value, nil when absent
		dst *string // Field on the user record
	}{
		{req.Handle, &user.Handle},       // Human-chosen identifier
		{req.Username, &user.Username},   // Display name
		{req.Phone, &user.Phone},         // Phone number
		{req.City, &user.City},           // City of residence
		{req.State, &user.State},         // State of residence
		{req.ClassName, &user.ClassName}, // Class or year
	}
	for _, f := range required {
		if f.src == nil {
			continue // Absent means unchanged
		}
		v := strings.TrimSpace(*f.src) // Normalize whitespace
		if v == "" {
			return false // Required fields cannot be cleared
		}
		*f.dst = v // Apply the update
	}
	// Email is required and kept lowercase
	if req.Email != nil {
		v := strings.TrimSpace(strings.ToLower(*req.Email))
		if v == "" {
			return false // Email cannot be cleared
		}
		user.Email = v // Apply the update
	}
	// Optional fields may be set to empty
	if req.SchoolName != nil {
		user.SchoolName = strings.TrimSpace(*req.SchoolName)
	}
	if req.CollegeName != nil {
		user.CollegeName = strings.TrimSpace(*req.CollegeName)
	}
	return true
}

// GetProfileHandler returns the authenticated user's own record
func GetProfileHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "Unauthorized"})
			return
		}
		var user domain.User // Fetch the caller's record
		if err := db.First(&user, userID).Error; err != nil {
			// If the user no longer exists, return not found
			c.JSON(http.StatusNotFound, gin.H{"msg": "User not found"})
			return
		}
		c.JSON(http.StatusOK, user) // Password is stripped by the model
	}
}

// UpdateProfileHandler applies a partial update to the caller's profile
func UpdateProfileHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "Unauthorized"})
			return
		}
		var req UpdateProfileRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid request"})
			return
		}
		var user domain.User // Fetch the caller's record
		if err := db.First(&user, userID).Error; err != nil {
			// If the user no longer exists, return not found
			c.JSON(http.StatusNotFound, gin.H{"msg": "User not found"})
			return
		}
		// Apply the provided fields
		if !applyProfileUpdate(&user, &req) {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Required fields cannot be empty"})
			return
		}
		// Persist the update
		if err := db.Save(&user).Error; err != nil {
			// Most likely a uniqueness violation on handle/username/email
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Handle, username or email already in use"})
			return
		}
		c.JSON(http.StatusOK, user) // Return the updated record
	}
}

// MyBooksHandler returns the caller's own listings
func MyBooksHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "Unauthorized"})
			return
		}
		var user domain.User // Verify the caller still exists
		if err := db.First(&user, userID).Error; err != nil {
			// If the user no longer exists, return not found
			c.JSON(http.StatusNotFound, gin.H{"msg": "User not found"})
			return
		}
		var books []domain.Book // The caller's listings
		if err := db.Where("seller_id = ?", user.ID).Find(&books).Error; err != nil {
			// If fetching fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to fetch listings"})
			return
		}
		c.JSON(http.StatusOK, books) // Return the listings
	}
}

// MyOfferResponse is one of the caller's submitted offers with the
// referenced listing and that listing's seller attached. The seller's
// contact details appear only once this offer has been accepted.
type MyOfferResponse struct {
	domain.Offer                 // Embedded offer fields
	Book         *BookResponse   `json:"book"`  // Referenced listing, null if deleted
	Buyer        *domain.Profile `json:"buyer"` // The caller's own profile
}

// MyOffersHandler returns all offers the caller has submitted, each
// enriched with its listing and the listing's seller via batched lookups
func MyOffersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "Unauthorized"})
			return
		}
		var buyer domain.User // Resolve the caller
		if err := db.First(&buyer, userID).Error; err != nil {
			// If the user no longer exists, return not found
			c.JSON(http.StatusNotFound, gin.H{"msg": "User not found"})
			return
		}
		var offers []domain.Offer // The caller's submitted offers
		if err := db.Where("buyer_id = ?", buyer.ID).Find(&offers).Error; err != nil {
			// If fetching fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to fetch offers"})
			return
		}
		// Batched lookup of the referenced listings
		bookIDs := make([]uint, 0, len(offers)) // Distinct book IDs
		seen := make(map[uint]bool, len(offers))
		for _, o := range offers {
			if !seen[o.BookID] {
				seen[o.BookID] = true
				bookIDs = append(bookIDs, o.BookID)
			}
		}
		books, err := loadBooksByID(db, bookIDs)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to fetch offers"})
			return
		}
		// Batched lookup of the listings' sellers
		bookList := make([]domain.Book, 0, len(books))
		for _, b := range books {
			bookList = append(bookList, b)
		}
		sellers, err := loadUsersByID(db, sellerIDs(bookList))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to fetch offers"})
			return
		}
		resp := make([]MyOfferResponse, len(offers)) // Enriched response rows
		for i, o := range offers {
			var bookResp *BookResponse // Null when the listing was deleted
			if b, ok := books[o.BookID]; ok {
				var seller *domain.Profile // Null when the seller row is gone
				if u, ok := sellers[b.SellerID]; ok {
					// The seller's contact opens up once this offer is accepted
					seller = u.Profile(o.Status == domain.OfferAccepted)
				}
				bookResp = &BookResponse{Book: b, Seller: seller}
			}
			resp[i] = MyOfferResponse{
				Offer: o,                   // The offer itself
				Book:  bookResp,            // Its listing with seller attached
				Buyer: buyer.Profile(true), // The caller sees their own contact
			}
		}
		c.JSON(http.StatusOK, resp) // Return the offers
	}
}
