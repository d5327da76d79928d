package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-app-api/internal/model"
	"github.com/BuzzLyutic/todo-app-api/internal/repo"
	"github.com/BuzzLyutic/todo-app-api/internal/service"
	"github.com/BuzzLyutic/todo-app-api/pkg/respond"
)

type TaskHandler struct {
	service *service.TaskService
	logger  *zap.Logger
}

func NewTaskHandler(srv *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		service: srv,
		logger:  logger,
	}
}

type createTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

type taskMutationResponse struct {
	TaskID    int64  `json:"task_id"`
	Status    string `json:"status"`
	Title     string `json:"title"`
	Completed *bool  `json:"completed,omitempty"`
}

type taskListResponse struct {
	Tasks        []model.Task `json:"tasks"`
	Total        int          `json:"total"`
	StatusFilter *string      `json:"status_filter"`
	SortOrder    *string      `json:"sort_order"`
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var req createTaskRequest
	if err := respond.Decode(r, &req); err != nil {
		h.logger.Error("failed to decode json", zap.Error(err))
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	idempKey := r.Header.Get("Idempotency-Key")
	task, err := h.service.Create(r.Context(), userID, req.Title, req.Description, idempKey)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/tasks/%d", task.ID))
	respond.JSON(w, r, http.StatusOK, taskMutationResponse{
		TaskID: task.ID,
		Status: "created",
		Title:  task.Title,
	})
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var filter model.TaskFilter
	var statusFilter, sortOrder *string
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = &status
		statusFilter = &status
	}
	if sort := r.URL.Query().Get("sort"); sort != "" {
		filter.Sort = sort
		sortOrder = &sort
	}

	tasks, err := h.service.List(r.Context(), userID, filter)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, taskListResponse{
		Tasks:        tasks,
		Total:        len(tasks),
		StatusFilter: statusFilter,
		SortOrder:    sortOrder,
	})
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.requestScope(w, r)
	if !ok {
		return
	}

	task, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.requestScope(w, r)
	if !ok {
		return
	}

	var patch model.TaskPatch
	if err := respond.Decode(r, &patch); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	task, err := h.service.Update(r.Context(), userID, id, patch)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, taskMutationResponse{
		TaskID:    task.ID,
		Status:    "updated",
		Title:     task.Title,
		Completed: &task.Completed,
	})
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.requestScope(w, r)
	if !ok {
		return
	}

	task, err := h.service.Delete(r.Context(), userID, id)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, taskMutationResponse{
		TaskID: task.ID,
		Status: "deleted",
		Title:  task.Title,
	})
}

func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "missing bearer token")
		return
	}

	stats, err := h.service.GetStats(r.Context(), userID)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, stats)
}

// requestScope достает владельца из контекста и id задачи из пути
func (h *TaskHandler) requestScope(w http.ResponseWriter, r *http.Request) (uuid.UUID, int64, bool) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "missing bearer token")
		return uuid.Nil, 0, false
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respond.Error(w, r, http.StatusNotFound, "task not found")
		return uuid.Nil, 0, false
	}
	return userID, id, true
}

func (h *TaskHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repo.ErrorNotFound):
		respond.Error(w, r, http.StatusNotFound, "task not found")
	case errors.Is(err, repo.ErrorConflict):
		respond.Error(w, r, http.StatusConflict, "conflict")
	case errors.Is(err, service.ErrValidation):
		respond.Error(w, r, http.StatusBadRequest, "validation error")
	default:
		h.logger.Error("internal error", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}
