package domain

import "time"

// Session is the payload held in the client cookie. The server keeps no durable copy.
type Session struct {
	ID        string    `json:"-"`
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session's expiry lies strictly before now.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}

// User projects the session into the authenticated user shape.
func (s *Session) User() *AuthenticatedUser {
	return &AuthenticatedUser{
		ID:       s.UserID,
		Email:    s.Email,
		FullName: s.FullName,
		Role:     s.Role,
	}
}
