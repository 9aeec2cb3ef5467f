package model

import "time"

// User represents a registered account
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"` // Do not expose password hash in JSON responses
	Role         string    `json:"role"`
	PhoneNumber  *string   `json:"phone_number"`
	CreatedAt    time.Time `json:"created_at"`
}

// SignupRequest is the body of POST /auth/signup
type SignupRequest struct {
	Username    string  `json:"username" binding:"required,min=6"`
	Email       string  `json:"email" binding:"required"`
	FirstName   string  `json:"first_name" binding:"required"`
	LastName    string  `json:"last_name" binding:"required"`
	Password    string  `json:"password" binding:"required,min=8,max=72"`
	Role        string  `json:"role" binding:"required"`
	PhoneNumber *string `json:"phone_number" binding:"omitempty,min=5"`
}

// SigninRequest is the OAuth2 password-grant form posted to /auth/signin
type SigninRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type PasswordChangeRequest struct {
	Password    string `json:"password" binding:"required,min=8,max=72"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

type PhoneNumberChangeRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required,min=5"`
}

// TokenResponse is returned by a successful sign in
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
