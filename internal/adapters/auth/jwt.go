// Package auth issues and verifies the bearer tokens handed out at login.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"pine_hotel/internal/domain"
)

const issuer = "pine-hotel"

type claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type JWT struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

var _ domain.TokenIssuer = (*JWT)(nil)

func NewJWT(secret string, ttl time.Duration) (*JWT, error) {
	if len(secret) < 16 {
		return nil, errors.New("jwt secret must be at least 16 bytes")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWT{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (j *JWT) Issue(u domain.User) (string, time.Time, error) {
	now := j.now()
	exp := now.Add(j.ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: u.Email,
		Role:  string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	s, err := tok.SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return s, exp, nil
}

// Parse verifies signature, expiry and issuer. Every failure is ErrUnauthorized.
func (j *JWT) Parse(token string) (domain.Principal, error) {
	var c claims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) { return j.secret, nil })
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%v: %w", err, domain.ErrUnauthorized)
	}
	if c.Issuer != issuer {
		return domain.Principal{}, fmt.Errorf("issuer %q: %w", c.Issuer, domain.ErrUnauthorized)
	}
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return domain.Principal{}, fmt.Errorf("subject %q: %w", c.Subject, domain.ErrUnauthorized)
	}
	role, err := domain.ParseRole(c.Role)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("role %q: %w", c.Role, domain.ErrUnauthorized)
	}
	return domain.Principal{UserID: id, Email: c.Email, Role: role}, nil
}
