package dto

import "github.com/maho-na510/aquarium-visit-log/internal/api/models"

// LoginRequest: payload for POST /login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest: payload for POST /register
type RegisterRequest struct {
	User RegisterInput `json:"user"`
}

type RegisterInput struct {
	Email                string `json:"email" binding:"omitempty,email"`
	Password             string `json:"password" binding:"omitempty,min=6"`
	PasswordConfirmation string `json:"password_confirmation"`
	Name                 string `json:"name"`
	Username             string `json:"username"`
}

// SessionUser is the signed-in user as returned by /login, /register and /me
type SessionUser struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// SessionResponse: token is only filled for API clients that cannot keep cookies
type SessionResponse struct {
	User  SessionUser `json:"user"`
	Token string      `json:"token,omitempty"`
}

func NewSessionUser(u *models.User) SessionUser {
	return SessionUser{
		ID:       u.ID,
		Name:     u.Name,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}
