package service

import (
	"context"
	"errors"
	"strings"

	"bloodalert/config"
	"bloodalert/internal/auth"
	"bloodalert/internal/domain"
	"bloodalert/internal/models"
	"bloodalert/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailExists     = errors.New("email already registered")
	ErrInvalidCreds    = errors.New("invalid email or password")
	ErrInvalidPassword = errors.New("current password is incorrect")
)

type AuthService struct {
	cfg   *config.JWTConfig
	users repository.Users
}

func NewAuthService(cfg *config.JWTConfig, users repository.Users) *AuthService {
	return &AuthService{cfg: cfg, users: users}
}

type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	Role       string
	BloodGroup string
	Phone      string
	Location   string
}

// Register creates a donor or recipient account. Admin accounts cannot be self-registered.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	_, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, "", ErrEmailExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}
	role := domain.ResolveRole(in.Role, "")
	if role.IsAdmin() {
		role = domain.RoleDonor
	}
	u := &models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         string(role),
		BloodGroup:   in.BloodGroup,
		Phone:        in.Phone,
		Location:     in.Location,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, "", err
	}
	token, err := auth.GenerateAccessToken(s.cfg, u.ID, u.Email, role)
	if err != nil {
		return u, "", err
	}
	return u, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	u, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCreds
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCreds
	}
	token, err := auth.GenerateAccessToken(s.cfg, u.ID, u.Email, u.ResolvedRole())
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Me loads the user behind an authenticated session.
func (s *AuthService) Me(ctx context.Context, sess *auth.Session) (*models.User, error) {
	return s.users.GetUserByID(ctx, sess.UserID)
}

// EnsureAdmin creates the bootstrap admin account if no user owns email yet.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	_, err := s.users.GetUserByEmail(ctx, strings.ToLower(email))
	if err == nil || !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.CreateUser(ctx, &models.User{
		Name:         "Administrator",
		Email:        strings.ToLower(email),
		PasswordHash: string(hash),
		Role:         string(domain.RoleAdmin),
		AdminType:    string(domain.RoleAdmin),
	})
}
