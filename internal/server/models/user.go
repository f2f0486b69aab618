// Package models defines server-side data models persisted in the database
// and the projections the server hands out.
package models

import "time"

// User is a stored account. It carries the password verifier and must
// never be serialized outward; use Public instead.
type User struct {
	ID           int64
	Email        string
	PasswordHash []byte `json:"-"`
	Name         string
	Phone        *string
	AvatarKey    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the outward view of a User. It has no password field.
type PublicUser struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	Avatar    *string   `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Public projects u onto PublicUser.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Avatar:    u.AvatarKey,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// UserUpdate lists the profile fields to change; nil means "keep". An empty
// Phone removes the number.
// PasswordHash, when set, replaces the stored verifier.
type UserUpdate struct {
	Name         *string
	Email        *string
	Phone        *string
	PasswordHash []byte
}
