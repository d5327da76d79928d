// internal/repo/task_test.go
package repo

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/todo-app-api/internal/model"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	pool, err := pgxpool.New(context.Background(), dbURL)
	if err != nil {
		t.Fatal(err)
	}

	// Очистка
	pool.Exec(context.Background(), "TRUNCATE tasks, idempotency_keys, users CASCADE")

	return pool
}

func seedUser(t *testing.T, pool *pgxpool.Pool, email string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO users (id, email, name, password_hash) VALUES ($1, $2, 'Test', 'x')
	`, id, email)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func TestTaskRepo_Create(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	owner := seedUser(t, pool, "repo-create@example.com")
	repo := NewTaskRepo(pool)

	created, err := repo.Create(context.Background(), model.Task{UserID: owner, Title: "Test"})
	if err != nil {
		t.Fatal(err)
	}

	if created.ID == 0 {
		t.Error("expected non-zero ID")
	}
	if created.Completed {
		t.Error("expected completed=false by default")
	}
	if created.UserID != owner {
		t.Errorf("expected user_id=%s, got %s", owner, created.UserID)
	}
}

func TestTaskRepo_OwnerScoping(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	owner := seedUser(t, pool, "repo-owner@example.com")
	stranger := seedUser(t, pool, "repo-stranger@example.com")
	repo := NewTaskRepo(pool)
	ctx := context.Background()

	created, err := repo.Create(ctx, model.Task{UserID: owner, Title: "Private"})
	if err != nil {
		t.Fatal(err)
	}

	// Чужая задача неотличима от несуществующей
	if _, err := repo.Get(ctx, stranger, created.ID); err != ErrorNotFound {
		t.Errorf("Get: expected ErrorNotFound, got %v", err)
	}
	title := "Hijacked"
	if _, err := repo.Update(ctx, stranger, created.ID, model.TaskPatch{Title: &title}); err != ErrorNotFound {
		t.Errorf("Update: expected ErrorNotFound, got %v", err)
	}
	if _, err := repo.Delete(ctx, stranger, created.ID); err != ErrorNotFound {
		t.Errorf("Delete: expected ErrorNotFound, got %v", err)
	}

	// Владелец видит задачу нетронутой
	got, err := repo.Get(ctx, owner, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Private" {
		t.Errorf("expected title=Private, got %s", got.Title)
	}
}

func TestTaskRepo_PartialUpdate(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	owner := seedUser(t, pool, "repo-patch@example.com")
	repo := NewTaskRepo(pool)
	ctx := context.Background()

	desc := "keep me"
	created, err := repo.Create(ctx, model.Task{UserID: owner, Title: "Patch Test", Description: &desc})
	if err != nil {
		t.Fatal(err)
	}

	completed := true
	updated, err := repo.Update(ctx, owner, created.ID, model.TaskPatch{Completed: &completed})
	if err != nil {
		t.Fatal(err)
	}

	if updated.Title != "Patch Test" {
		t.Errorf("title changed: %s", updated.Title)
	}
	if updated.Description == nil || *updated.Description != "keep me" {
		t.Error("description changed")
	}
	if !updated.Completed {
		t.Error("completed not updated")
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Error("updated_at not refreshed")
	}
}
