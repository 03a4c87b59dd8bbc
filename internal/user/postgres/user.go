package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/plant-dashboard/internal/user"
	"github.com/jmoiron/sqlx"
)

type pgRepo struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) user.Repository {
	return &pgRepo{db: db}
}

const selectUser = `
SELECT u.id, u.username, u.name, u.password_hash, u.role, u.department_id,
       d.name AS department_name, u.is_active, u.created_at, u.updated_at
FROM users u
LEFT JOIN departments d ON d.id = u.department_id
`

func (p *pgRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return p.get(ctx, selectUser+"WHERE u.id = ?", id)
}

func (p *pgRepo) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return p.get(ctx, selectUser+"WHERE u.username = ?", username)
}

func (p *pgRepo) Create(ctx context.Context, u *user.User) error {
	now := time.Now().UTC()
	query := p.db.Rebind(`
INSERT INTO users (username, name, password_hash, role, department_id, is_active, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id`)

	if err := p.db.QueryRowxContext(ctx, query,
		u.Username, u.Name, u.PasswordHash, string(u.Role), u.DepartmentID, u.IsActive, now, now,
	).Scan(&u.ID); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	u.CreatedAt, u.UpdatedAt = now, now
	return nil
}

func (p *pgRepo) get(ctx context.Context, query string, arg interface{}) (*user.User, error) {
	var u user.User
	if err := p.db.GetContext(ctx, &u, p.db.Rebind(query), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
