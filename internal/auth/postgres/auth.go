package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/frahmantamala/plant-dashboard/internal/auth"
	userDatamodel "github.com/frahmantamala/plant-dashboard/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetCredentials(ctx context.Context, username string) (*auth.Credentials, error) {
	var creds auth.Credentials
	query := `SELECT id, password_hash, is_active FROM users WHERE username = ?`

	row := r.db.WithContext(ctx).Raw(query, username).Row()
	if err := row.Scan(&creds.UserID, &creds.PasswordHash, &creds.IsActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &creds, nil
}

func (r *Repository) GetProfile(ctx context.Context, userID int64) (*userDatamodel.Profile, error) {
	var profile userDatamodel.Profile
	query := `SELECT u.id, u.username, u.name, u.role, u.department_id, d.name AS department_name, u.is_active
	          FROM users u
	          LEFT JOIN departments d ON d.id = u.department_id
	          WHERE u.id = ?`

	res := r.db.WithContext(ctx).Raw(query, userID).Scan(&profile)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &profile, nil
}
