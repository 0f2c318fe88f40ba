package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/loankeeper/internal/common"
	"github.com/dmitrijs2005/loankeeper/internal/models"
)

// Claims carries the signed-in identity inside the persisted session
// token. UserID is the value consumers use as the owner equality filter.
type Claims struct {
	jwt.RegisteredClaims
	UserID        string `json:"userId"`
	Email         string `json:"email"`
	DisplayName   string `json:"displayName,omitempty"`
	AvatarKey     string `json:"avatarKey,omitempty"`
	EmailVerified bool   `json:"emailVerified"`
}

// GenerateToken signs a session token (HS256) valid for validityDuration.
func GenerateToken(sess *models.Session, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserID:        sess.UserID,
		Email:         sess.Email,
		DisplayName:   sess.DisplayName,
		AvatarKey:     sess.AvatarKey,
		EmailVerified: sess.EmailVerified,
	})

	return token.SignedString(secretKey)
}

// ParseToken validates a session token and returns the identity it
// carries. Expired or tampered tokens yield common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*models.Session, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return nil, errors.Join(common.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return &models.Session{
		UserID:        claims.UserID,
		Email:         claims.Email,
		DisplayName:   claims.DisplayName,
		AvatarKey:     claims.AvatarKey,
		EmailVerified: claims.EmailVerified,
	}, nil
}
