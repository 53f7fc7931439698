package jwtauth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/domain/models"
	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

type Claims struct {
	jwt.StandardClaims
	Role string `json:"role"`
	// IssuedAtMs refines iat so a revocation cutoff can be told apart from
	// a login in the same second.
	IssuedAtMs int64 `json:"iat_ms,omitempty"`
}

// GetToken signs an HS256 access token for u valid for ttl.
func GetToken(u models.User, ttl time.Duration, secret string) (string, error) {
	now := time.Now()

	claims := Claims{
		StandardClaims: jwt.StandardClaims{ //nolint:exhaustruct
			Id:        uuid.NewString(),
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
		Role:       u.Role.String(),
		IssuedAtMs: now.UnixMilli(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signed string error: %w", err)
	}

	return token, nil
}

// ParseToken verifies signature, algorithm and expiry and returns the
// identity carried by the token. Revocation is not checked here.
func ParseToken(tokenString, secret string) (models.Identity, error) {
	var claims Claims

	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: unexpected signing method %v", ErrInvalidToken, t.Header["alg"])
		}

		return []byte(secret), nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors == jwt.ValidationErrorExpired {
			return models.Identity{}, ErrExpiredToken
		}

		return models.Identity{}, fmt.Errorf("%w: %s", ErrInvalidToken, err.Error())
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}

	role, err := models.ParseRole(claims.Role)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %s", ErrInvalidToken, err.Error())
	}

	if claims.Id == "" {
		return models.Identity{}, fmt.Errorf("%w: no token id", ErrInvalidToken)
	}

	issuedAt := time.Unix(claims.IssuedAt, 0)
	if claims.IssuedAtMs != 0 {
		issuedAt = time.UnixMilli(claims.IssuedAtMs)
	}

	return models.Identity{
		UserID:    userID,
		Role:      role,
		TokenID:   claims.Id,
		IssuedAt:  issuedAt,
		ExpiresAt: time.Unix(claims.ExpiresAt, 0),
	}, nil
}
