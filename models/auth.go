package models

import (
	"github.com/golang-jwt/jwt/v5"
)

type TelegramAuthRequest struct {
	InitData string `json:"initData" binding:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
}

// Claims is the payload of session tokens issued by the backend.
type Claims struct {
	UserID     int   `json:"user_id"`
	TelegramID int64 `json:"telegram_id,omitempty"`
	jwt.RegisteredClaims
}
