package api

import (
	"github.com/zaidzaid0342-dotcom/bookhub/internal/middleware" // Auth middleware

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// RegisterRoutes mounts every endpoint on the router
func RegisterRoutes(r *gin.Engine, db *gorm.DB, rdb *redis.Client, jwtSecret, uploadDir string) {
	auth := middleware.JWTAuthMiddleware(jwtSecret) // Bearer-token middleware

	// Uploaded cover images are served statically
	r.Static("/uploads", uploadDir)

	// User routes
	userGroup := r.Group("/users")
	userGroup.POST("/register", RegisterHandler(db))           // Registration endpoint
	userGroup.POST("/login", LoginHandler(db, jwtSecret))      // Login endpoint
	userGroup.GET("/profile", auth, GetProfileHandler(db))     // Own profile endpoint
	userGroup.PUT("/profile", auth, UpdateProfileHandler(db))  // Profile update endpoint
	userGroup.GET("/mybooks", auth, MyBooksHandler(db))        // Own listings endpoint
	userGroup.GET("/offers", auth, MyOffersHandler(db))        // Submitted offers endpoint

	// Book routes; browsing is public, everything else needs a token
	bookGroup := r.Group("/books")
	bookGroup.POST("", auth, CreateBookHandler(db, rdb, uploadDir)) // Create listing endpoint
	bookGroup.GET("", ListBooksHandler(db, rdb))                    // Public browse endpoint
	bookGroup.GET("/search", SearchBooksHandler(db))                // Search endpoint
	bookGroup.GET("/:id", GetBookHandler(db, rdb))                  // Single listing endpoint
	bookGroup.POST("/offer/:id", auth, SubmitOfferHandler(db))      // Submit offer endpoint
	bookGroup.GET("/offers/:id", auth, ListBookOffersHandler(db))   // Offers for a listing endpoint
	bookGroup.PUT("/offer/:id", auth, RespondToOfferHandler(db, rdb)) // Respond to offer endpoint

	// Admin routes (protected, admin only)
	adminGroup := r.Group("/admin")
	adminGroup.Use(auth, middleware.AdminOnlyMiddleware(db))
	adminGroup.GET("/users", ListUsersHandler(db, rdb))            // List users endpoint
	adminGroup.GET("/users/:id", GetUserHandler(db))               // Get user endpoint
	adminGroup.PUT("/users/:id", UpdateUserHandler(db))            // Update user endpoint
	adminGroup.DELETE("/users/:id", DeleteUserHandler(db))         // Delete user endpoint
	adminGroup.GET("/books", AdminListBooksHandler(db))            // List listings endpoint
	adminGroup.DELETE("/books/:id", AdminDeleteBookHandler(db, rdb)) // Delete listing endpoint
	adminGroup.GET("/offers", AdminListOffersHandler(db))          // List offers endpoint
	adminGroup.GET("/offers/:id", AdminGetOfferHandler(db))        // Get offer endpoint
	adminGroup.PUT("/offers/:id", AdminUpdateOfferHandler(db, rdb)) // Update offer endpoint
}
