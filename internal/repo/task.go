package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/todo-app-api/internal/model"
)

var (
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")
)

const taskColumns = "id, user_id, title, description, completed, created_at, updated_at"

type TaskRepo struct { // Репозиторий для работы непосредственно с БД
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo { // Конструктор
	return &TaskRepo{
		pool: pool,
	}
}

func (r *TaskRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	// Каждая мутация - одна транзакция: commit или rollback на любом пути выхода
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, `
			INSERT INTO tasks (user_id, title, description)
			VALUES ($1, $2, $3)
			RETURNING `+taskColumns+`
		`, t.UserID, t.Title, t.Description).Scan(
			&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt,
		)
	})
	return t, mapError(err)
}

func (r *TaskRepo) Get(ctx context.Context, userID uuid.UUID, id int64) (model.Task, error) {
	var t model.Task
	err := r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return t, ErrorNotFound
	}
	return t, err
}

func (r *TaskRepo) List(ctx context.Context, userID uuid.UUID, filter model.TaskFilter) ([]model.Task, error) {
	var completed *bool
	if filter.Status != nil {
		switch *filter.Status {
		case "pending":
			v := false
			completed = &v
		case "completed":
			v := true
			completed = &v
		}
		// Любое другое значение - без фильтра
	}

	order := "created_at DESC, id DESC" // По умолчанию: новые первыми
	switch filter.Sort {
	case "title":
		order = "title ASC"
	case "completed":
		order = "completed ASC, created_at DESC, id DESC"
	}

	query := fmt.Sprintf(`
		SELECT `+taskColumns+`
		FROM tasks
		WHERE user_id = $1 AND ($2::boolean IS NULL OR completed = $2)
		ORDER BY %s
	`, order)

	rows, err := r.pool.Query(ctx, query, userID, completed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepo) Update(ctx context.Context, userID uuid.UUID, id int64, patch model.TaskPatch) (model.Task, error) {
	var t model.Task
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, `
			UPDATE tasks
			SET title = COALESCE($3, title),
			    description = COALESCE($4, description),
			    completed = COALESCE($5, completed),
			    updated_at = now()
			WHERE id = $1 AND user_id = $2
			RETURNING `+taskColumns+`
		`, id, userID, patch.Title, patch.Description, patch.Completed).Scan(
			&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt,
		)
	})

	if errors.Is(err, pgx.ErrNoRows) {
		return t, ErrorNotFound
	}
	return t, err
}

func (r *TaskRepo) Delete(ctx context.Context, userID uuid.UUID, id int64) (model.Task, error) {
	var t model.Task
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, `
			DELETE FROM tasks
			WHERE id = $1 AND user_id = $2
			RETURNING `+taskColumns+`
		`, id, userID).Scan(
			&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt,
		)
	})

	if errors.Is(err, pgx.ErrNoRows) {
		return t, ErrorNotFound
	}
	return t, err
}

func (r *TaskRepo) SaveIdempotencyKey(ctx context.Context, userID uuid.UUID, key string, resourceID int64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO idempotency_keys (user_id, key, resource_id) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, key) DO NOTHING
	`, userID, key, resourceID)
	return err
}

func (r *TaskRepo) GetIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		SELECT resource_id FROM idempotency_keys WHERE user_id = $1 AND key = $2
	`, userID, key).Scan(&id)

	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrorNotFound
	}
	return id, err
}

func (r *TaskRepo) GetStats(ctx context.Context, userID uuid.UUID) (Stats, error) {
	stats := Stats{ByStatus: map[string]int{"pending": 0, "completed": 0}}

	rows, err := r.pool.Query(ctx, `
		SELECT completed, COUNT(*) FROM tasks WHERE user_id = $1 GROUP BY completed
	`, userID)
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	for rows.Next() {
		var completed bool
		var count int
		if err := rows.Scan(&completed, &count); err != nil {
			return stats, err
		}
		if completed {
			stats.ByStatus["completed"] = count
		} else {
			stats.ByStatus["pending"] = count
		}
		stats.TotalTasks += count
	}
	return stats, rows.Err()
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" { // unique_violation
			return ErrorConflict
		}
	}
	return err
}
