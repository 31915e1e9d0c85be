package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TypeAccess        = "access"
	TypeRefresh       = "refresh"
	TypePasswordReset = "password_reset"
)

// Password reset tokens always expire after one hour, regardless of the
// configured access/refresh lifetimes.
const ResetTokenTTL = time.Hour

var ErrInvalidToken = errors.New("invalid or expired token")

type Claims struct {
	TokenType string `json:"token_type"`
	Email     string `json:"email,omitempty"`
	Nonce     string `json:"nonce,omitempty"`
	jwt.RegisteredClaims
}

type Manager struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (m *Manager) sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.Secret)
}

func (m *Manager) CreateAccessToken(username string) (string, error) {
	now := time.Now()
	return m.sign(Claims{
		TokenType: TypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.AccessTTL)),
		},
	})
}

func (m *Manager) CreateRefreshToken(username string) (string, error) {
	now := time.Now()
	return m.sign(Claims{
		TokenType: TypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.RefreshTTL)),
		},
	})
}

// CreatePasswordResetToken embeds the target email and a random nonce. The
// nonce is not tracked server-side, it only makes two tokens for the same
// email distinct.
func (m *Manager) CreatePasswordResetToken(email string) (string, error) {
	now := time.Now()
	return m.sign(Claims{
		TokenType: TypePasswordReset,
		Email:     email,
		Nonce:     uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ResetTokenTTL)),
		},
	})
}

func (m *Manager) Parse(raw string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signature method: %v", t.Header["alg"])
		}
		return m.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !t.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := t.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
