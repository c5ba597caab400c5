package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"course_miniapp/models"
)

// Context keys set by BearerAuth.
const (
	UserIDKey = "userID"
	TokenKey  = "token"
	ClaimsKey = "claims"
)

var errTokenRequired = errors.New("authorization header is required")

// BearerAuth rejects requests without a valid HS256 session token. Failures
// answer 401 with the backend error shape {message}.
func BearerAuth(tokens *TokenService, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
			return
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			log.WithError(err).Debug("token validation failed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(TokenKey, tokenString)
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errTokenRequired
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", errors.New("authorization header must be in the format: Bearer {token}")
	}
	return parts[1], nil
}

// TokenService issues and validates session tokens.
type TokenService struct {
	JWTSecret []byte
	TTL       time.Duration
	now       func() time.Time
}

// NewTokenService creates a token service. Tokens live for a day.
func NewTokenService(jwtSecret []byte) *TokenService {
	return &TokenService{
		JWTSecret: jwtSecret,
		TTL:       24 * time.Hour,
		now:       time.Now,
	}
}

// GenerateToken signs a session token for the user.
func (s *TokenService) GenerateToken(user models.User) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.Claims{
		UserID:     user.ID,
		TelegramID: user.TelegramID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(user.ID),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	signed, err := token.SignedString(s.JWTSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse validates the signature and expiry and returns the claims.
func (s *TokenService) Parse(tokenString string) (*models.Claims, error) {
	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.JWTSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
