package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims is the token payload issued after a successful OTP confirmation.
type JWTClaims struct {
	AccountID string      `json:"accountId"`
	Email     string      `json:"email"`
	Role      AccountRole `json:"role"`
	jwt.RegisteredClaims
}

// LoginRequest is the OTP issuance payload.
type LoginRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ConfirmRequest is the OTP verification payload.
type ConfirmRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required"`
}

// ConfirmResponse is returned on a successful OTP confirmation.
type ConfirmResponse struct {
	Flag      bool        `json:"flag"`
	Role      AccountRole `json:"role"`
	Token     string      `json:"token"`
	ExpiresIn int64       `json:"expiresIn"`
}
