package auth

import (
	"context"
	"database/sql"
	"errors"

	"ms-topup/internal/models"

	"github.com/uptrace/bun"
)

// ErrAdminNotFound is returned when no admin matches the username.
var ErrAdminNotFound = errors.New("admin not found")

// AdminStore is the credential record store used by login and
// registration. No business logic lives here.
type AdminStore struct {
	Bun *bun.DB
}

func (s *AdminStore) GetAdminByUsername(username string) (*models.Admin, error) {
	var admin models.Admin
	err := s.Bun.NewSelect().
		Model(&admin).
		Where("username = ?", username).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAdminNotFound
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (s *AdminStore) CreateAdmin(admin models.Admin) error {
	_, err := s.Bun.NewInsert().Model(&admin).Exec(context.Background())
	return err
}
