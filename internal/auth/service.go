package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/lvcu04/fashion_shop/internal/models"
	"github.com/lvcu04/fashion_shop/pkg/hash"
	"github.com/lvcu04/fashion_shop/pkg/logging"
	"github.com/lvcu04/fashion_shop/pkg/tokens"
)

var (
	ErrValidation         = errors.New("validation")
	ErrConflict           = errors.New("conflict")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

const minPasswordLen = 6

type LoginResult struct {
	AccessToken string
	AccessExp   time.Time
	IsAdmin     bool
}

type Service struct {
	DB        *gorm.DB
	JWTSecret []byte
	AccessTTL time.Duration
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (s *Service) Register(ctx context.Context, email, name, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLen)
	}

	var n int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	u := &models.User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: pwHash,
		Role:         models.RoleUser,
	}
	if err := s.DB.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return nil, err
	}
	l.Info("register_success", "user_id", u.ID)
	return u, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	l := logging.FromContext(ctx).With("svc", "auth.login", "email", email)

	var u models.User
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		l.Warn("login_failed", "reason", "unknown email")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !hash.CheckPassword(u.PasswordHash, password) {
		l.Warn("login_failed", "reason", "wrong password")
		return nil, ErrInvalidCredentials
	}

	exp := time.Now().Add(s.AccessTTL)
	tok, err := tokens.SignAccess(u.ID, u.Role, exp, s.JWTSecret)
	if err != nil {
		return nil, err
	}
	return &LoginResult{AccessToken: tok, AccessExp: exp, IsAdmin: u.Role == models.RoleAdmin}, nil
}

func (s *Service) Me(ctx context.Context, userID uint) (*models.User, error) {
	var u models.User
	err := s.DB.WithContext(ctx).First(&u, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
