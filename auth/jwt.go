package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/carlosalbertovr/intratime-killer/models"
)

// Claims are the API session claims. The vendor token travels inside the
// signed claims so authenticated requests stay stateless; no ambient
// global holds it.
type Claims struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	VendorToken string `json:"vendor_token"`
	jwt.RegisteredClaims
}

// SessionManager issues and validates the API's own session tokens.
type SessionManager struct {
	secretKey  []byte
	expiration time.Duration
}

// NewSessionManager creates a new session manager.
func NewSessionManager(secretKey string, expiration time.Duration) *SessionManager {
	return &SessionManager{
		secretKey:  []byte(secretKey),
		expiration: expiration,
	}
}

// GenerateToken wraps a fresh vendor session into a signed API token.
func (m *SessionManager) GenerateToken(user models.User, vendorToken string) (string, error) {
	claims := Claims{
		UserID:      user.ID,
		Username:    user.Username,
		VendorToken: vendorToken,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "intratime-killer-api",
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signedToken, nil
}

// ValidateToken validates an API token and returns its claims.
func (m *SessionManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secretKey, nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// ExtractToken extracts the token from the Authorization header.
// Expected format: "Bearer <token>"
func ExtractToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", errors.New("authorization header is empty")
	}

	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return "", errors.New("invalid authorization header format")
	}

	return authHeader[7:], nil
}
