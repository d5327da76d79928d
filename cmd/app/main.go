package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-app-api/internal/config"
	"github.com/BuzzLyutic/todo-app-api/internal/handler"
	"github.com/BuzzLyutic/todo-app-api/internal/repo"
	"github.com/BuzzLyutic/todo-app-api/internal/service"
	"github.com/BuzzLyutic/todo-app-api/internal/worker"
)

func main() {
	// Подключаем логгер
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Загрузка конфигурации
	cfg := config.Load()

	// Подключаем БД
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to Database.") // Fatal потому что дальнейшая работа теряет смысл
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal("Failed to ping the Database.")
	}
	logger.Info("Successfully connected to the Database!")

	userRepo := repo.NewUserRepo(pool)
	taskRepo := repo.NewTaskRepo(pool)
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	taskService := service.NewTaskService(taskRepo)
	authHandler := handler.NewAuthHandler(authService, logger)
	taskHandler := handler.NewTaskHandler(taskService, logger)

	r := handler.NewRouter(authHandler, taskHandler, authService, logger, cfg.CORSOrigins)

	// Фоновая сводка по задачам
	reporter := worker.NewReporter(pool, logger, cfg.StatsInterval)
	reporter.Start(context.Background())
	defer reporter.Stop()

	srv := http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() { // Запуск сервера и обработка ошибок
		logger.Info("Server started at ", zap.String("port", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed: ", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Shutdown error: ", zap.Error(err))
	}
	logger.Info("Server stopped succsessfully!")
}
