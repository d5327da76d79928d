package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/BuzzLyutic/todo-app-api/internal/model"
	"github.com/BuzzLyutic/todo-app-api/internal/repo"
)

var (
	ErrValidation = errors.New("validation error")
)

type TaskService struct {
	repo repo.TaskRepository
}

func NewTaskService(repo repo.TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

func (s *TaskService) Create(ctx context.Context, userID uuid.UUID, title string, description *string, idempKey string) (model.Task, error) {
	if strings.TrimSpace(title) == "" {
		return model.Task{}, ErrValidation
	}

	if idempKey != "" { // Обеспечение идемпотентности - если ключ с ресурсом уже существует, мы не создаем его еще раз
		if existingID, err := s.repo.GetIdempotencyKey(ctx, userID, idempKey); err == nil {
			return s.repo.Get(ctx, userID, existingID)
		}
	}

	task, err := s.repo.Create(ctx, model.Task{
		UserID:      userID,
		Title:       title,
		Description: description,
	})
	if err != nil {
		return task, err
	}

	if idempKey != "" {
		s.repo.SaveIdempotencyKey(ctx, userID, idempKey, task.ID)
	}

	return task, nil
}

func (s *TaskService) Get(ctx context.Context, userID uuid.UUID, id int64) (model.Task, error) {
	return s.repo.Get(ctx, userID, id)
}

func (s *TaskService) List(ctx context.Context, userID uuid.UUID, filter model.TaskFilter) ([]model.Task, error) {
	return s.repo.List(ctx, userID, filter)
}

func (s *TaskService) Update(ctx context.Context, userID uuid.UUID, id int64, patch model.TaskPatch) (model.Task, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return model.Task{}, ErrValidation
	}
	return s.repo.Update(ctx, userID, id, patch)
}

func (s *TaskService) Delete(ctx context.Context, userID uuid.UUID, id int64) (model.Task, error) {
	return s.repo.Delete(ctx, userID, id)
}

func (s *TaskService) GetStats(ctx context.Context, userID uuid.UUID) (repo.Stats, error) {
	return s.repo.GetStats(ctx, userID)
}
