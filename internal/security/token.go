package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"jobdesk/api/internal/models"
)

// ErrInvalidToken is returned for any verification failure. Malformed
// tokens, bad signatures, and expired timestamps are deliberately not
// distinguished to the caller.
var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is the resolved caller attached to a request. It is built
// only here, from a verified token, never from a raw payload.
type Identity struct {
	Subject string
	Role    models.UserRole
	Email   string
}

type accessClaims struct {
	Role  string `json:"role"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type refreshClaims struct {
	jwt.RegisteredClaims
}

// TokenService signs and verifies the access/refresh token pair with a
// single process-wide HS256 secret.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (s *TokenService) AccessTTL() time.Duration { return s.accessTTL }

func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

// SignAccess embeds {subject, role, email}.
func (s *TokenService) SignAccess(user models.User) (string, error) {
	now := time.Now()
	claims := accessClaims{
		Role:  string(user.Role),
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// SignRefresh embeds the subject only. Role and suspension are re-read
// from the user store on refresh, so a role change or suspension takes
// effect within one access-token TTL of outstanding tokens.
func (s *TokenService) SignRefresh(userID string) (string, error) {
	now := time.Now()
	claims := refreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign refresh token: %w", err)
	}
	return signed, nil
}

// VerifyAccess resolves an Identity from an access token.
func (s *TokenService) VerifyAccess(tokenStr string) (Identity, error) {
	var claims accessClaims
	if err := s.parse(tokenStr, &claims); err != nil {
		return Identity{}, ErrInvalidToken
	}

	role, ok := models.ParseRole(claims.Role)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	return Identity{
		Subject: claims.Subject,
		Role:    role,
		Email:   claims.Email,
	}, nil
}

// VerifyRefresh returns the subject carried by a refresh token.
func (s *TokenService) VerifyRefresh(tokenStr string) (string, error) {
	var claims refreshClaims
	if err := s.parse(tokenStr, &claims); err != nil {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

func (s *TokenService) parse(tokenStr string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
