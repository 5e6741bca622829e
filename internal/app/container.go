// Package app assembles the application dependency graph.
package app

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/wordpace/internal/adapter/httpapi"
	adapterrepo "github.com/eslsoft/wordpace/internal/adapter/repository"
	"github.com/eslsoft/wordpace/internal/infrastructure/config"
	"github.com/eslsoft/wordpace/internal/infrastructure/database"
	"github.com/eslsoft/wordpace/internal/infrastructure/scheduler"
	"github.com/eslsoft/wordpace/internal/infrastructure/server"
	"github.com/eslsoft/wordpace/internal/usecase"
)

// Container aggregates the application dependencies.
type Container struct {
	Config    *config.Config
	Logger    *logrus.Logger
	Pool      *pgxpool.Pool
	Server    *server.Server
	Scheduler *scheduler.Scheduler
}

// Build wires config, storage, usecases, the HTTP API, and the batch
// scheduler into a ready-to-run container.
func Build() (*Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger, err := server.NewLogger(cfg)
	if err != nil {
		return nil, err
	}
	pool, err := database.NewConnection(cfg, logger)
	if err != nil {
		return nil, err
	}

	wordRepo := adapterrepo.NewWordRecordRepository(pool)
	attemptRepo := adapterrepo.NewAttemptRepository(pool)

	practiceUC := usecase.NewPracticeUsecase(wordRepo)
	sessionUC := usecase.NewSessionUsecase(wordRepo, cfg.Engine.SessionSize)
	reevalUC := usecase.NewReevaluateUsecase(wordRepo, attemptRepo)

	svc := httpapi.NewPracticeService(practiceUC, sessionUC, reevalUC, cfg.Engine.DifficultyThreshold, logger)
	srv := server.NewServer(cfg, logger, svc)
	sched := scheduler.New(reevalUC, cfg.Engine.DifficultyThreshold, cfg.Engine.ReevaluateInterval, logger)

	return &Container{
		Config:    cfg,
		Logger:    logger,
		Pool:      pool,
		Server:    srv,
		Scheduler: sched,
	}, nil
}

// Close releases held resources.
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}
