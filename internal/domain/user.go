package domain

import "time"

type User struct {
	UserID           string    `json:"id" dynamodbav:"user_id"`
	Email            string    `json:"email" dynamodbav:"email"`
	Name             string    `json:"name" dynamodbav:"name"`
	PasswordHash     string    `json:"-" dynamodbav:"password_hash"`
	Verified         bool      `json:"verified" dynamodbav:"verified"`
	VerificationCode string    `json:"-" dynamodbav:"verification_code,omitempty"`
	SessionToken     string    `json:"-" dynamodbav:"session_token"`
	AvatarURL        string    `json:"avatar_url" dynamodbav:"avatar_url"`
	AuthProvider     string    `json:"auth_provider,omitempty" dynamodbav:"auth_provider"` // "local" | "google"
	CreatedAt        time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt        time.Time `json:"updated" dynamodbav:"updated_at"`
}

const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ResendVerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8,max=72"`
}
