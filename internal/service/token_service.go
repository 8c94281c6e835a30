package service

import (
	"errors"
	"fmt"
	"time"

	"pooled-multisender/internal/core/domain"
	"pooled-multisender/internal/core/ports"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// callerClaims identifies the account a request acts for. The subject is
// the caller's account id; Audience pins tokens to the ledger API.
type callerClaims struct {
	jwt.RegisteredClaims
}

const tokenAudience = "ledger"

// JWTTokenService issues and checks HS256 caller tokens.
type JWTTokenService struct {
	secret []byte
	expiry time.Duration
	issuer string
	now    func() time.Time
}

func NewJWTTokenService(secret string, expiry time.Duration, issuer string) *JWTTokenService {
	return &JWTTokenService{
		secret: []byte(secret),
		expiry: expiry,
		issuer: issuer,
		now:    time.Now,
	}
}

// Generate signs a token naming account as the caller.
func (s *JWTTokenService) Generate(account string) (string, time.Time, error) {
	if !domain.IsValidAccountID(account) {
		return "", time.Time{}, fmt.Errorf("account %q is invalid", account)
	}

	now := s.now()
	expiresAt := now.Add(s.expiry)

	claims := callerClaims{RegisteredClaims: jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   account,
		Issuer:    s.issuer,
		Audience:  jwt.ClaimStrings{tokenAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate checks signature, issuer, audience and expiry, and returns the
// caller account.
func (s *JWTTokenService) Validate(tokenString string) (*ports.TokenClaims, error) {
	var claims callerClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims,
		func(*jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	if claims.Subject == "" {
		return nil, errors.New("missing subject claim")
	}
	if !domain.IsValidAccountID(claims.Subject) {
		return nil, fmt.Errorf("invalid account in token: %q", claims.Subject)
	}
	return &ports.TokenClaims{Account: claims.Subject}, nil
}
