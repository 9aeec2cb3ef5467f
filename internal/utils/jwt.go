package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken wraps every token verification failure
var ErrInvalidToken = errors.New("invalid token")

// JWTClaims custom claims for JWT. Subject holds the username.
type JWTClaims struct {
	UserID int    `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTUtil provides JWT generation and validation
type JWTUtil struct {
	secretKey []byte
	method    jwt.SigningMethod
	ttl       time.Duration
	now       func() time.Time
}

// NewJWTUtil creates a new JWTUtil. algorithm must name an HMAC method (HS256, HS384, HS512).
func NewJWTUtil(secretKey, algorithm string, ttl time.Duration) (*JWTUtil, error) {
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	return &JWTUtil{
		secretKey: []byte(secretKey),
		method:    method,
		ttl:       ttl,
		now:       time.Now,
	}, nil
}

// WithClock replaces the time source used for issuing and validating tokens.
func (ju *JWTUtil) WithClock(now func() time.Time) *JWTUtil {
	ju.now = now
	return ju
}

// TTL returns the lifetime given to issued tokens
func (ju *JWTUtil) TTL() time.Duration {
	return ju.ttl
}

// GenerateToken generates a new JWT token
func (ju *JWTUtil) GenerateToken(username string, userID int, role string) (string, error) {
	issuedAt := ju.now()
	claims := &JWTClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ju.ttl)),
		},
	}

	token := jwt.NewWithClaims(ju.method, claims)
	tokenString, err := token.SignedString(ju.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken validates the JWT token
func (ju *JWTUtil) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ju.secretKey, nil
	},
		jwt.WithValidMethods([]string{ju.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ju.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	// ids start at 1, so a zero id means the claim was missing
	if claims.Subject == "" || claims.UserID == 0 {
		return nil, fmt.Errorf("%w: missing sub or id claim", ErrInvalidToken)
	}
	return claims, nil
}
