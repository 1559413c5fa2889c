package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"pine_hotel/internal/domain"
)

const (
	minPasswordLen   = 8
	maxPasswordBytes = 72
)

type AuthService struct {
	users  domain.UserRepository
	tokens domain.TokenIssuer
	cost   int
}

func NewAuthService(u domain.UserRepository, t domain.TokenIssuer) *AuthService {
	return &AuthService{users: u, tokens: t, cost: bcrypt.DefaultCost}
}

// WithHashCost lowers the bcrypt cost, for tests.
func (s *AuthService) WithHashCost(cost int) *AuthService {
	s.cost = cost
	return s
}

type NewUser struct {
	Email    string
	Name     string
	Password string
	Role     domain.Role
}

type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      domain.User `json:"user"`
}

// Register creates a guest account.
func (s *AuthService) Register(ctx context.Context, in NewUser) (domain.User, error) {
	in.Role = domain.RoleGuest
	return s.create(ctx, in)
}

// CreateUser lets a super-admin open accounts of any role, hotel owners included.
func (s *AuthService) CreateUser(ctx context.Context, caller domain.Principal, in NewUser) (domain.User, error) {
	if err := requireRole(caller, domain.RoleSuperAdmin); err != nil {
		return domain.User{}, err
	}
	role, err := domain.ParseRole(string(in.Role))
	if err != nil {
		return domain.User{}, err
	}
	in.Role = role
	return s.create(ctx, in)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return Session{}, domain.ErrUnauthorized
		}
		return Session{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return Session{}, domain.ErrUnauthorized
	}
	tok, exp, err := s.tokens.Issue(u)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{Token: tok, ExpiresAt: exp, User: u}, nil
}

func (s *AuthService) Me(ctx context.Context, caller domain.Principal) (domain.User, error) {
	if caller.UserID == 0 {
		return domain.User{}, domain.ErrUnauthorized
	}
	return s.users.GetUser(ctx, caller.UserID)
}

// EnsureSuperAdmin creates the bootstrap super-admin unless the email is already taken.
func (s *AuthService) EnsureSuperAdmin(ctx context.Context, email, password string) error {
	if email == "" {
		return nil
	}
	_, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	u, err := s.create(ctx, NewUser{Email: email, Name: "Super Admin", Password: password, Role: domain.RoleSuperAdmin})
	if err != nil {
		return err
	}
	log.Info().Int64("user_id", u.ID).Str("email", u.Email).Msg("super-admin created")
	return nil
}

func (s *AuthService) create(ctx context.Context, in NewUser) (domain.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.User{}, domain.Invalid("email", "must be a valid address")
	}
	if len(in.Password) < minPasswordLen {
		return domain.User{}, domain.Invalid("password", fmt.Sprintf("must be at least %d characters", minPasswordLen))
	}
	// bcrypt only looks at the first 72 bytes and refuses anything longer.
	if len(in.Password) > maxPasswordBytes {
		return domain.User{}, domain.Invalid("password", fmt.Sprintf("must be at most %d bytes", maxPasswordBytes))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = email
	}
	return s.users.CreateUser(ctx, domain.User{
		Email:        email,
		Name:         name,
		Role:         in.Role,
		PasswordHash: string(hash),
	})
}

func normalizeEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }
