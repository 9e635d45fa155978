package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dtroode/authkeeper/internal/model"
)

// Claims represents JWT claims with token kind, user ID and email.
type Claims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Kind   string    `json:"typ"`
}

// JWT implements TokenManager backed by symmetric HMAC. Access and refresh
// tokens are signed with independent secrets so one kind can never verify
// under the other kind's configuration.
type JWT struct {
	accessSecret  string
	refreshSecret string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewJWT creates a new JWT token manager with independent access and refresh
// secrets and TTLs.
func NewJWT(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) model.TokenManager {
	return &JWT{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// RefreshTTL returns the configured refresh token lifetime.
func (j *JWT) RefreshTTL() time.Duration {
	return j.refreshTTL
}

// GenerateAccessToken creates a short-lived access token.
func (j *JWT) GenerateAccessToken(userID uuid.UUID, email string) (string, error) {
	return j.generate(userID, email, model.TokenKindAccess, j.accessSecret, j.accessTTL)
}

// GenerateRefreshToken creates a long-lived refresh token.
func (j *JWT) GenerateRefreshToken(userID uuid.UUID, email string) (string, error) {
	return j.generate(userID, email, model.TokenKindRefresh, j.refreshSecret, j.refreshTTL)
}

func (j *JWT) generate(userID uuid.UUID, email string, kind model.TokenKind, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
		Email:  email,
		Kind:   string(kind),
	})

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", kind, err)
	}

	return tokenString, nil
}

// ParseAccessToken validates an access token and extracts its claims.
func (j *JWT) ParseAccessToken(tokenString string) (model.TokenClaims, error) {
	return j.parse(tokenString, model.TokenKindAccess, j.accessSecret)
}

// ParseRefreshToken validates a refresh token and extracts its claims.
func (j *JWT) ParseRefreshToken(tokenString string) (model.TokenClaims, error) {
	return j.parse(tokenString, model.TokenKindRefresh, j.refreshSecret)
}

func (j *JWT) parse(tokenString string, kind model.TokenKind, secret string) (model.TokenClaims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		// Algorithm is pinned, not negotiated.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return model.TokenClaims{}, model.ErrTokenExpired
		}
		return model.TokenClaims{}, fmt.Errorf("%w: %v", model.ErrTokenInvalid, err)
	}
	if !token.Valid {
		return model.TokenClaims{}, model.ErrTokenInvalid
	}
	if claims.Kind != string(kind) {
		return model.TokenClaims{}, fmt.Errorf("%w: token kind mismatch", model.ErrTokenInvalid)
	}

	return model.TokenClaims{
		UserID: claims.UserID,
		Email:  claims.Email,
		Kind:   kind,
	}, nil
}
