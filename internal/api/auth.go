package api

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"github.com/zaidzaid0342-dotcom/bookhub/internal/domain" // Importing domain models
	"github.com/zaidzaid0342-dotcom/bookhub/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// RegisterRequest carries the fields collected at registration
type RegisterRequest struct {
	Handle      string `json:"handle" binding:"required"`      // Human-chosen unique identifier
	Username    string `json:"username" binding:"required"`    // Display name
	Email       string `json:"email" binding:"required,email"` // Email address
	Phone       string `json:"phone" binding:"required"`       // Phone number
	Password    string `json:"password" binding:"required"`    // Plain password, hashed before storage
	City        string `json:"city" binding:"required"`        // City of residence
	State       string `json:"state" binding:"required"`       // State of residence
	ClassName   string `json:"className" binding:"required"`   // Class or year
	SchoolName  string `json:"schoolName"`                     // Optional school name
	CollegeName string `json:"collegeName"`                    // Optional college name
}

// LoginRequest carries the login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// AuthResponse carries the issued token
type AuthResponse struct {
	Token string `json:"token"` // JWT token
}

// isValidPassword checks if the password length is between 8 and 15 characters
func isValidPassword(password string) bool {
	return len(password) >= 8 && len(password) <= 15 // Return true if length is valid
}

// RegisterHandler creates a new user account
func RegisterHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid request"})
			return
		}
		// Validate password length
		if !isValidPassword(req.Password) {
			// If password is invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Password must be 8-15 characters"})
			return
		}
		// Hash the password and create the user
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			// If hashing fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to hash password"})
			return
		}
		// Build the user record, email lowercased to keep uniqueness case-insensitive
		user := domain.User{
			Handle:      req.Handle,                   // Human-chosen identifier
			Username:    req.Username,                 // Display name
			Email:       strings.ToLower(req.Email),   // Email address
			Phone:       req.Phone,                    // Phone number
			Password:    string(hash),                 // Hashed password
			City:        req.City,                     // City of residence
			State:       req.State,                    // State of residence
			ClassName:   req.ClassName,                // Class or year
			SchoolName:  req.SchoolName,               // Optional school name
			CollegeName: req.CollegeName,              // Optional college name
		}
		// Attempt to create the user in the database
		if err := db.Create(&user).Error; err != nil {
			// If creation fails (e.g., duplicate handle/username/email), return bad request
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Handle, username or email already in use"})
			return
		}
		// Log the registration
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID,     // New user's system ID
			"handle":  user.Handle, // New user's handle
		}).Info("User registered")
		// Return the created user (password stripped by the model)
		c.JSON(http.StatusCreated, user)
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid request"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
			// If user not found, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "Invalid credentials"})
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "Invalid credentials"})
			return
		}
		// Generate JWT token
		token, err := utils.GenerateJWT(user.ID, jwtSecret)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to generate token"})
			return
		}
		// Return the token in the response
		c.JSON(http.StatusOK, AuthResponse{Token: token})
	}
}
