package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/BuzzLyutic/todo-app-api/internal/model"
	"github.com/BuzzLyutic/todo-app-api/internal/repo"
)

var (
	ErrDuplicateEmail = errors.New("email already registered")
	// Единая ошибка для неизвестного email и неверного пароля,
	// чтобы не раскрывать, что именно не совпало
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
)

const defaultTokenTTL = 30 * time.Minute

// Token - то, что уходит клиенту после register/login
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type tokenClaims struct {
	UserID uuid.UUID `json:"user_id"`
	jwt.RegisteredClaims
}

type AuthService struct {
	users    repo.UserRepository
	secret   []byte
	tokenTTL time.Duration
}

func NewAuthService(users repo.UserRepository, secret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &AuthService{
		users:    users,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

func (s *AuthService) Register(ctx context.Context, email, name, password string) (Token, error) {
	// Свежая соль на каждый вызов - два хэша одного пароля различаются
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Token{}, err
	}

	user, err := s.users.Create(ctx, model.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, repo.ErrorConflict) {
			return Token{}, ErrDuplicateEmail
		}
		return Token{}, err
	}

	return s.IssueToken(user.ID)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (Token, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrorNotFound) {
			return Token{}, ErrInvalidCredentials
		}
		return Token{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Token{}, ErrInvalidCredentials
	}

	return s.IssueToken(user.ID)
}

// IssueToken подписывает HS256-токен с id пользователя и сроком жизни
func (s *AuthService) IssueToken(userID uuid.UUID) (Token, error) {
	now := time.Now()
	claims := tokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Token{}, err
	}

	return Token{
		AccessToken: signed,
		TokenType:   "bearer",
		ExpiresIn:   int(s.tokenTTL.Seconds()),
	}, nil
}

// VerifyToken возвращает id пользователя из валидного токена.
// Просроченный, подделанный или неразборчивый токен - ErrInvalidToken, без деталей.
func (s *AuthService) VerifyToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{},
		func(t *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
	)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid || claims.UserID == uuid.Nil {
		return uuid.Nil, ErrInvalidToken
	}
	return claims.UserID, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID uuid.UUID) (model.User, error) {
	return s.users.GetByID(ctx, userID)
}
