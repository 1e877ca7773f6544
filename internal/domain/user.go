package domain

import "time"

// User Model
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`            // System-assigned primary key
	Handle      string    `gorm:"unique;not null" json:"handle"`   // Human-chosen unique identifier
	Username    string    `gorm:"unique;not null" json:"username"` // Unique display name
	Email       string    `gorm:"unique;not null" json:"email"`    // Unique email address
	Phone       string    `gorm:"not null" json:"phone"`           // Contact phone number
	Password    string    `gorm:"not null" json:"-"`               // Hashed password, never serialized
	City        string    `gorm:"not null" json:"city"`            // City of residence
	State       string    `gorm:"not null" json:"state"`           // State of residence
	ClassName   string    `gorm:"not null" json:"className"`       // Class or year
	SchoolName  string    `json:"schoolName"`                      // Optional school name
	CollegeName string    `json:"collegeName"`                     // Optional college name
	IsAdmin     bool      `gorm:"default:false" json:"isAdmin"`    // Admin flag
	CreatedAt   time.Time `json:"createdAt"`                       // Timestamp of creation
	UpdatedAt   time.Time `json:"updatedAt"`                       // Timestamp of last update
}

// Profile is the user shape attached to listings and offers. Email and
// Phone are populated only once the offer joining the two parties has
// been accepted; before that they stay empty and are omitted from the
// JSON output.
type Profile struct {
	ID          uint   `json:"id"`              // System-assigned ID
	Handle      string `json:"handle"`          // Human-chosen identifier
	Username    string `json:"username"`        // Display name
	City        string `json:"city"`            // City of residence
	State       string `json:"state"`           // State of residence
	ClassName   string `json:"className"`       // Class or year
	SchoolName  string `json:"schoolName"`      // Optional school name
	CollegeName string `json:"collegeName"`     // Optional college name
	Email       string `json:"email,omitempty"` // Contact email, gated by offer acceptance
	Phone       string `json:"phone,omitempty"` // Contact phone, gated by offer acceptance
}

// Profile builds the public shape for a user. Contact fields are
// included only when withContact is true.
func (u *User) Profile(withContact bool) *Profile {
	p := &Profile{
		ID:          u.ID,          // System-assigned ID
		Handle:      u.Handle,      // Human-chosen identifier
		Username:    u.Username,    // Display name
		City:        u.City,        // City of residence
		State:       u.State,       // State of residence
		ClassName:   u.ClassName,   // Class or year
		SchoolName:  u.SchoolName,  // Optional school name
		CollegeName: u.CollegeName, // Optional college name
	}
	// Reveal contact details only across an accepted offer
	if withContact {
		p.Email = u.Email // Contact email
		p.Phone = u.Phone // Contact phone
	}
	return p
}
