package worker

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Reporter периодически пишет в лог сводку по задачам.
// Только читает - пользовательские данные никогда не трогает.
type Reporter struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	period time.Duration
	wg     sync.WaitGroup
	stop   chan struct{}
}

func NewReporter(pool *pgxpool.Pool, logger *zap.Logger, period time.Duration) *Reporter {
	if period <= 0 {
		period = time.Minute
	}
	return &Reporter{
		pool:   pool,
		logger: logger,
		period: period,
		stop:   make(chan struct{}),
	}
}

func (p *Reporter) Start(ctx context.Context) {
	p.logger.Info("Starting stats reporter", zap.Duration("period", p.period))

	p.wg.Add(1)
	go p.run(ctx)
}

func (p *Reporter) Stop() {
	p.logger.Info("Stopping stats reporter...")
	close(p.stop)
	p.wg.Wait()
	p.logger.Info("Stats reporter stopped")
}

func (p *Reporter) run(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.period)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.report(ctx); err != nil {
				p.logger.Error("reporter error", zap.Error(err))
			}
		}
	}
}

func (p *Reporter) report(ctx context.Context) error {
	var total, completed, users int
	err := p.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE completed),
		       COUNT(DISTINCT user_id)
		FROM tasks
	`).Scan(&total, &completed, &users)
	if err != nil {
		return err
	}

	p.logger.Info("Task stats",
		zap.Int("total", total),
		zap.Int("pending", total-completed),
		zap.Int("completed", completed),
		zap.Int("users", users),
	)
	return nil
}
