package model

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID          int64     `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type TaskFilter struct {
	Status *string
	Sort   string
}

// TaskPatch - частичное обновление: nil-поля не трогаем
type TaskPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}
