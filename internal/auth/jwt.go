package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/isdelr/todo-manager-be/internal/config"
	"github.com/isdelr/todo-manager-be/internal/models"
)

// Claims defines the JWT claims structure.
type Claims struct {
	UserID   string   `json:"userId"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenService issues and validates signed bearer tokens. Tokens are not
// persisted server-side; validity is purely a function of the signature
// and the embedded expiry.
type TokenService struct {
	key      []byte
	issuer   string
	audience string
	lifetime time.Duration
	now      func() time.Time
}

// NewTokenService creates a TokenService from the loaded configuration.
// config.Load already guarantees the signing key is present.
func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{
		key:      []byte(cfg.JWTSecret),
		issuer:   cfg.JWTIssuer,
		audience: cfg.JWTAudience,
		lifetime: time.Duration(cfg.JWTExpiryMinutes) * time.Minute,
		now:      time.Now,
	}
}

// Generate creates a new signed token carrying the user's identity and
// one role claim per role.
func (s *TokenService) Generate(user models.User, roles []string) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		Roles:    roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.key)
}

// Expiry reports when a token issued now would expire. Informational
// only; enforcement happens at validation time against the expiry
// embedded in each token.
func (s *TokenService) Expiry() time.Time {
	return s.now().Add(s.lifetime)
}

// Validate parses and validates a JWT string.
func (s *TokenService) Validate(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
