package models

import (
	"time"
)

// User is the account behind a session together with its editable profile
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	ProfileImage string    `json:"profileImage,omitempty"`
	Role         string    `json:"role"`
	Bio          string    `json:"bio"`
	Experience   string    `json:"experience"`
	Education    string    `json:"education"`
	Interests    []string  `json:"interests"`
	Skills       []string  `json:"skills"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Session is a logged-in user session.
// Created at login, torn down at logout or when ExpiresAt passes.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired checks if the session TTL has elapsed
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// TimeRemaining returns the duration until expiry (0 if expired)
func (s *Session) TimeRemaining() time.Duration {
	remaining := time.Until(s.ExpiresAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// LoginRequest represents a login attempt
type LoginRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	CaptchaID string `json:"captcha_id"`
}

// LoginResponse is returned after a successful login
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}

// ProfileUpdate carries a partial profile change; nil fields are left untouched
type ProfileUpdate struct {
	Name         *string   `json:"name,omitempty"`
	Email        *string   `json:"email,omitempty"`
	ProfileImage *string   `json:"profileImage,omitempty"`
	Role         *string   `json:"role,omitempty"`
	Bio          *string   `json:"bio,omitempty"`
	Experience   *string   `json:"experience,omitempty"`
	Education    *string   `json:"education,omitempty"`
	Interests    *[]string `json:"interests,omitempty"`
	Skills       *[]string `json:"skills,omitempty"`
}

// Apply merges the update into u
func (p ProfileUpdate) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.ProfileImage != nil {
		u.ProfileImage = *p.ProfileImage
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.Experience != nil {
		u.Experience = *p.Experience
	}
	if p.Education != nil {
		u.Education = *p.Education
	}
	if p.Interests != nil {
		u.Interests = append([]string(nil), (*p.Interests)...)
	}
	if p.Skills != nil {
		u.Skills = append([]string(nil), (*p.Skills)...)
	}
}

// ProfileItemRequest adds a value to a profile list field
type ProfileItemRequest struct {
	Value string `json:"value"`
}
