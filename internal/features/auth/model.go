package auth

import "go-lms/internal/features/user"

// DefaultRoleName is assigned to self-registered users when such a role exists.
const DefaultRoleName = "Learner"

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8"`
	Email    string `json:"email" validate:"required,email"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string         `json:"token"`
	User  *user.UserView `json:"user"`
}
