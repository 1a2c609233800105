package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrWeakSecret    = errors.New("secret key must be at least 32 bytes")
	ErrBadCredential = errors.New("bad operator credentials")
)

// DefaultTokenTTL - срок жизни токена оператора
const DefaultTokenTTL = 12 * time.Hour

// Claims represents JWT claims of an operator token
type Claims struct {
	Operator string `json:"operator"`
	IsAdmin  bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// TokenService выпускает и проверяет токены операторов REST API
type TokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// NewTokenService создаёт сервис. Пустой secret - генерируется случайный ключ
// (токены перестанут действовать после перезапуска).
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: key, ttl: ttl, issuer: "cauldron-witchery"}, nil
}

func decodeSecret(secret string) ([]byte, error) {
	if secret == "" {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate secret: %w", err)
		}
		return key, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, err
	}
	if len(decoded) < 32 {
		return nil, ErrWeakSecret
	}
	return decoded, nil
}

// Issue creates a signed token for the operator
func (ts *TokenService) Issue(operator string, isAdmin bool) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(ts.ttl)
	claims := &Claims{
		Operator: operator,
		IsAdmin:  isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    ts.issuer,
			Subject:   operator,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ts.secret)
	return signed, expires, err
}

// Validate checks token validity and returns its claims
func (ts *TokenService) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return ts.secret, nil
	}, jwt.WithIssuer(ts.issuer))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

// GenerateSecureSecret generates a new secure secret key
func GenerateSecureSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return base64.StdEncoding.EncodeToString(b)
}
