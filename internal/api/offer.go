package api

import (
	"errors"   // Sentinel errors
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"github.com/zaidzaid0342-dotcom/bookhub/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// errOfferNotPending signals a lost transition race: the offer left the
// pending state before this request's update was applied
var errOfferNotPending = errors.New("offer is not pending")

// OfferRequest carries the buyer's interest message
type OfferRequest struct {
	Message string `json:"message" binding:"required"` // Free-text message
}

// RespondRequest carries the seller's decision on an offer
type RespondRequest struct {
	Status string `json:"status" binding:"required"` // accepted or rejected
}

// OfferResponse is an offer enriched with the buyer's profile. Contact
// fields appear only once the offer has been accepted.
type OfferResponse struct {
	domain.Offer                 // Embedded offer fields
	Buyer        *domain.Profile `json:"buyer"` // Buyer's profile, null if the account is gone
}

// buyerIDs collects the distinct buyer IDs of an offer slice
func buyerIDs(offers []domain.Offer) []uint {
	seen := make(map[uint]bool, len(offers)) // Track IDs already collected
	ids := make([]uint, 0, len(offers))      // Distinct buyer IDs
	for _, o := range offers {
		if !seen[o.BuyerID] {
			seen[o.BuyerID] = true        // Mark as collected
			ids = append(ids, o.BuyerID) // Collect the ID
		}
	}
	return ids
}

// transitionOffer applies the seller's decision as one atomic unit: the
// offer moves out of pending only if it is still pending, and on accept
// the book is marked sold in the same transaction. A decision on a
// non-pending offer returns errOfferNotPending and writes nothing.
func transitionOffer(db *gorm.DB, offer *domain.Offer, decision string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		// Conditional update guards against two concurrent decisions
		res := tx.Model(&domain.Offer{}).
			Where("id = ? AND status = ?", offer.ID, domain.OfferPending).
			Update("status", decision)
		if res.Error != nil {
			return res.Error // Return error to rollback
		}
		// Zero rows means another request already decided this offer
		if res.RowsAffected == 0 {
			return errOfferNotPending
		}
		// Accepting closes the listing; the book transition is guarded
		// the same way so it happens at most once
		if decision == domain.OfferAccepted {
			if err := tx.Model(&domain.Book{}).
				Where("id = ? AND status = ?", offer.BookID, domain.BookAvailable).
				Update("status", domain.BookSold).Error; err != nil {
				return err // Return error to rollback
			}
		}
		return nil // Commit transaction
	})
}

// SubmitOfferHandler records a buyer's interest message on a listing
func SubmitOfferHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "Unauthorized"})
			return
		}
		var req OfferRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
			// A non-empty message is required
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Message is required"})
			return
		}
		var book domain.Book // Resolve the listing
		if err := db.First(&book, c.Param("id")).Error; err != nil {
			// If the listing does not exist, return not found
			c.JSON(http.StatusNotFound, gin.H{"msg": "Book not found"})
			return
		}
		var buyer domain.User // Resolve the buyer account
		if err := db.First(&buyer, userID).Error; err != nil {
			// If the token's user no longer exists, return not found
			c.JSON(http.StatusNotFound, gin.H{"msg": "User not found"})
			return
		}
		// A seller cannot message their own listing
		if book.SellerID == buyer.ID {
			c.JSON(http.StatusForbidden, gin.H{"msg": "Cannot send a message for your own book"})
			return
		}
		// Sold listings no longer take offers
		if book.Status == domain.BookSold {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Book no longer available"})
			return
		}
		// Create the offer in the pending state
		offer := domain.Offer{
			BookID:  book.ID,                      // Referenced listing
			BuyerID: buyer.ID,                     // Offering buyer
			Message: strings.TrimSpace(req.Message), // Trimmed message
			Status:  domain.OfferPending,          // Awaiting the seller
		}
		if err := db.Create(&offer).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"book_id":  book.ID,     // Listing ID
				"buyer_id": buyer.ID,    // Buyer's system ID
				"error":    err.Error(), // Error message
			}).Error("Failed to create offer") // Log the failure
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to create offer"})
			return
		}
		// Log the new offer
		logrus.WithFields(logrus.Fields{
			"offer_id": offer.ID, // New offer ID
			"book_id":  book.ID,  // Listing ID
			"buyer_id": buyer.ID, // Buyer's system ID
		}).Info("Offer submitted")
		c.JSON(http.StatusCreated, offer) // Return the created offer
	}
}

// ListBookOffersHandler returns all offers on a listing with buyer
// profiles attached. Buyer contact details appear only on accepted
// offers; a deleted buyer resolves to null.
func ListBookOffersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var offers []domain.Offer // Offers referencing the listing
		if err := db.Where("book_id = ?", c.Param("id")).Find(&offers).Error; err != nil {
			// If fetching fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to fetch offers"})
			return
		}
		// Batched buyer lookup
		buyers, err := loadUsersByID(db, buyerIDs(offers))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to fetch offers"})
			return
		}
		resp := make([]OfferResponse, len(offers)) // Enriched response rows
		for i, o := range offers {
			var buyer *domain.Profile // Null when the buyer row is gone
			if u, ok := buyers[o.BuyerID]; ok {
				// Contact only crosses an accepted offer
				buyer = u.Profile(o.Status == domain.OfferAccepted)
			}
			resp[i] = OfferResponse{Offer: o, Buyer: buyer}
		}
		c.JSON(http.StatusOK, resp) // Return the offers
	}
}

// RespondToOfferHandler lets the seller accept or reject a pending
// offer. Accepting also marks the listing sold; both writes happen in
// one transaction and a decision on an already-decided offer fails
// with a conflict.
func RespondToOfferHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "Unauthorized"})
			return
		}
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
		var book domain.Book // Resolve the parent listing
		if err := db.First(&book, offer.BookID).Error; err != nil {
			// If the listing does not exist, return not found
			c.JSON(http.StatusNotFound, gin.H{"msg": "Book not found"})
			return
		}
		var seller domain.User // Resolve the caller
		if err := db.First(&seller, userID).Error; err != nil {
			// If the token's user no longer exists, return not found
			c.JSON(http.StatusNotFound, gin.H{"msg": "User not found"})
			return
		}
		// Only the listing's seller may decide
		if book.SellerID != seller.ID {
			c.JSON(http.StatusForbidden, gin.H{"msg": "Not authorized"})
			return
		}
		// Apply the decision atomically
		if err := transitionOffer(db, &offer, req.Status); err != nil {
			// A lost race surfaces as a conflict
			if errors.Is(err, errOfferNotPending) {
				c.JSON(http.StatusConflict, gin.H{"msg": "Offer has already been responded to"})
				return
			}
			logrus.WithFields(logrus.Fields{
				"offer_id": offer.ID,    // Offer ID
				"book_id":  book.ID,     // Listing ID
				"decision": req.Status,  // Attempted decision
				"error":    err.Error(), // Error message
			}).Error("Offer response failed") // Log the failure
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to respond to offer"})
			return
		}
		offer.Status = req.Status          // Reflect the applied decision
		invalidateBookCaches(rdb, book.ID) // The listing view may have changed
		// Log the decision
		logrus.WithFields(logrus.Fields{
			"offer_id":  offer.ID,   // Offer ID
			"book_id":   book.ID,    // Listing ID
			"seller_id": seller.ID,  // Deciding seller
			"decision":  req.Status, // Applied decision
		}).Info("Offer responded")
		c.JSON(http.StatusOK, offer) // Return the updated offer
	}
}
