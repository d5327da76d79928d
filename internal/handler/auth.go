package handler

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-app-api/internal/repo"
	"github.com/BuzzLyutic/todo-app-api/internal/service"
	"github.com/BuzzLyutic/todo-app-api/pkg/respond"
)

type AuthHandler struct {
	service  *service.AuthService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewAuthHandler(srv *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service:  srv,
		validate: validator.New(),
		logger:   logger,
	}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "validation error")
		return
	}

	token, err := h.service.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, token)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "validation error")
		return
	}

	token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, token)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "missing bearer token")
		return
	}

	user, err := h.service.CurrentUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repo.ErrorNotFound) {
			respond.Error(w, r, http.StatusUnauthorized, "user not found")
			return
		}
		h.handleErrors(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, user)
}

func (h *AuthHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrDuplicateEmail):
		respond.Error(w, r, http.StatusBadRequest, "email already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		respond.Error(w, r, http.StatusUnauthorized, "invalid email or password")
	default:
		h.logger.Error("internal error", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}
