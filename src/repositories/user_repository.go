package repositories

import (
	"context"
	"fmt"

	"cryptotracker/src/database"
	"cryptotracker/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByLogin(ctx context.Context, usernameOrEmail string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

const userColumns = `id, username, email, password_hash, profile_picture, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.ProfilePicture, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

type userRepo struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, profile_picture)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		u.Username, u.Email, u.PasswordHash, u.ProfilePicture,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if database.IsUniqueViolation(err, "") {
		return fmt.Errorf("user %s: %w", u.Username, ErrDuplicate)
	}
	return err
}

func (r *userRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *userRepo) GetByLogin(ctx context.Context, usernameOrEmail string) (*models.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+`
		FROM users
		WHERE username = $1 OR email = $1
		LIMIT 1`, usernameOrEmail))
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}
