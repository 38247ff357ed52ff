package dto

import "time"

// AdminLoginRequest is the body of POST /api/admin/login.
type AdminLoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// AdminLoginResponse carries the issued admin token.
type AdminLoginResponse struct {
	Success   bool      `json:"success"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
