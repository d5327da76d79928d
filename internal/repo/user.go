package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/todo-app-api/internal/model"
)

const userColumns = "id, email, name, password_hash, created_at, updated_at"

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{
		pool: pool,
	}
}

func (r *UserRepo) Create(ctx context.Context, u model.User) (model.User, error) {
	u.ID = uuid.New()
	// Уникальность email держит constraint - при нарушении пишущая транзакция откатывается
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, `
			INSERT INTO users (id, email, name, password_hash)
			VALUES ($1, $2, $3, $4)
			RETURNING `+userColumns+`
		`, u.ID, u.Email, u.Name, u.PasswordHash).Scan(
			&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
		)
	})
	return u, mapError(err)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1
	`, email).Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return u, ErrorNotFound
	}
	return u, err
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id).Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return u, ErrorNotFound
	}
	return u, err
}
