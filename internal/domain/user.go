package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin" // Manages the program catalog
)

// User is an account that can enroll in programs.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	LastName     string             `bson:"lastName" json:"lastName"`
	FirstName    string             `bson:"firstName" json:"firstName"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Email        string             `bson:"email" json:"email"`    // Unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never exposed
	BirthDate    string             `bson:"birthDate,omitempty" json:"birthDate,omitempty"` // YYYY-MM-DD
	Role         Role               `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
