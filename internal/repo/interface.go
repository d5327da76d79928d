package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/BuzzLyutic/todo-app-api/internal/model"
)

// TaskRepository определяет интерфейс для работы с задачами.
// Каждая операция ограничена владельцем - чужие задачи неотличимы от несуществующих.
type TaskRepository interface {
	Create(ctx context.Context, t model.Task) (model.Task, error)
	Get(ctx context.Context, userID uuid.UUID, id int64) (model.Task, error)
	List(ctx context.Context, userID uuid.UUID, filter model.TaskFilter) ([]model.Task, error)
	Update(ctx context.Context, userID uuid.UUID, id int64, patch model.TaskPatch) (model.Task, error)
	Delete(ctx context.Context, userID uuid.UUID, id int64) (model.Task, error)
	SaveIdempotencyKey(ctx context.Context, userID uuid.UUID, key string, resourceID int64) error
	GetIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (int64, error)
	GetStats(ctx context.Context, userID uuid.UUID) (Stats, error)
}

// UserRepository определяет интерфейс для работы с пользователями
type UserRepository interface {
	Create(ctx context.Context, u model.User) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (model.User, error)
}

type Stats struct {
	ByStatus   map[string]int `json:"by_status"`
	TotalTasks int            `json:"total_tasks"`
}
