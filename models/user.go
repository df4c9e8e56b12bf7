// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// BreakGlassID is the reserved subject carried by break-glass tokens. No user
// document ever has this id.
var BreakGlassID = primitive.ObjectID{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

// User model
type User struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	Email        string             `json:"email" bson:"email"`
	Password     string             `json:"-" bson:"password"`
	Role         string             `json:"role" bson:"role"`
	IsActive     bool               `json:"isActive" bson:"isActive"`
	ProfilePhoto string             `json:"profilePhoto,omitempty" bson:"profilePhoto,omitempty"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Ref returns the display fields other documents expand a user reference to.
func (u *User) Ref() *UserRef {
	return &UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
}

// UserRef is an expanded user reference.
type UserRef struct {
	ID    primitive.ObjectID `json:"_id" bson:"_id"`
	Name  string             `json:"name" bson:"name"`
	Email string             `json:"email" bson:"email"`
}

// Principal is the authenticated caller attached to the request context.
type Principal struct {
	ID           primitive.ObjectID `json:"id"`
	Name         string             `json:"name"`
	Email        string             `json:"email"`
	Role         string             `json:"role"`
	IsActive     bool               `json:"isActive"`
	ProfilePhoto string             `json:"profilePhoto,omitempty"`
	BreakGlass   bool               `json:"-"`
}

// IsAdmin reports whether the principal holds the admin role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// PrincipalFromUser builds the request principal for a stored user.
func PrincipalFromUser(u *User) *Principal {
	return &Principal{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		IsActive:     u.IsActive,
		ProfilePhoto: u.ProfilePhoto,
	}
}

// CreateUserRequest is the admin user-creation body
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=admin staff"`
}

// UpdateUserRequest is the admin user-update body; absent fields stay unchanged
type UpdateUserRequest struct {
	Name     *string `json:"name" bson:"name,omitempty" validate:"omitempty,min=1"`
	Email    *string `json:"email" bson:"email,omitempty" validate:"omitempty,email"`
	Role     *string `json:"role" bson:"role,omitempty" validate:"omitempty,oneof=admin staff"`
	IsActive *bool   `json:"isActive" bson:"isActive,omitempty"`
}

// LoginRequest is the login body
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the bearer token and the caller's identity
type LoginResponse struct {
	Token string     `json:"token"`
	User  *Principal `json:"user"`
}

// CreateUserResponse acknowledges an admin user creation
type CreateUserResponse struct {
	Message string     `json:"message"`
	User    *Principal `json:"user"`
}
