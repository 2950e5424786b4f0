package auth

import (
	"errors"
	"fmt"
	"time"

	"ms-topup/internal/models"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials covers both unknown usernames and wrong
	// passwords so login responses never leak which one it was.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrAdminExists signals a duplicate username at registration.
	ErrAdminExists = errors.New("username already taken")
)

type AdminDB interface {
	GetAdminByUsername(username string) (*models.Admin, error)
	CreateAdmin(admin models.Admin) error
}

type Service struct {
	DB     AdminDB
	Issuer *TokenIssuer
}

func NewService(db AdminDB, issuer *TokenIssuer) *Service {
	return &Service{DB: db, Issuer: issuer}
}

// Login exchanges admin credentials for a bearer token.
func (s *Service) Login(username, password string) (string, error) {
	admin, err := s.DB.GetAdminByUsername(username)
	if errors.Is(err, ErrAdminNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up admin: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	return s.Issuer.Issue(admin.Username)
}

// Register creates a new admin record with a bcrypt password hash.
func (s *Service) Register(username, password string) error {
	if _, err := s.DB.GetAdminByUsername(username); err == nil {
		return ErrAdminExists
	} else if !errors.Is(err, ErrAdminNotFound) {
		return fmt.Errorf("failed to look up admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.DB.CreateAdmin(models.Admin{
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	})
}
