// Package app собирает слои сервиса: хранилище, сервисы, обработчики и роутер.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/niklvrr/ReviewerRotation/internal/infrastructure/memory"
	"github.com/niklvrr/ReviewerRotation/internal/infrastructure/repository"
	"github.com/niklvrr/ReviewerRotation/internal/transport"
	"github.com/niklvrr/ReviewerRotation/internal/transport/handler"
	"github.com/niklvrr/ReviewerRotation/internal/usecase/service"
	"go.uber.org/zap"
)

func PostgresRepositories(db *pgxpool.Pool, log *zap.Logger) *service.Repositories {
	return &service.Repositories{
		Tx:                repository.NewTransactor(db, log),
		Teams:             repository.NewTeamRepository(db, log),
		Reviewers:         repository.NewReviewerRepository(db, log),
		Tags:              repository.NewTagRepository(db, log),
		Ledger:            repository.NewLedgerRepository(db, log),
		Feed:              repository.NewFeedRepository(db, log),
		Snapshots:         repository.NewSnapshotRepository(db, log),
		ActiveAssignments: repository.NewActiveAssignmentRepository(db, log),
	}
}

func MemoryRepositories(log *zap.Logger) *service.Repositories {
	s := memory.NewStore(log)
	return &service.Repositories{
		Tx:                s,
		Teams:             memory.NewTeamRepository(s),
		Reviewers:         memory.NewReviewerRepository(s),
		Tags:              memory.NewTagRepository(s),
		Ledger:            memory.NewLedgerRepository(s),
		Feed:              memory.NewFeedRepository(s),
		Snapshots:         memory.NewSnapshotRepository(s),
		ActiveAssignments: memory.NewActiveAssignmentRepository(s),
	}
}

// App собранный HTTP обработчик и фоновая работа сервисов
type App struct {
	Handler http.Handler

	assignments *service.AssignmentService
}

// New pinger может быть nil, тогда /health не проверяет хранилище
func New(
	repos *service.Repositories,
	notifier service.Notifier,
	pinger handler.Pinger,
	requestTimeout time.Duration,
	log *zap.Logger,
) *App {
	// Сервисы
	teamService := service.NewTeamService(repos, log)
	reviewerService := service.NewReviewerService(repos, log)
	assignmentService := service.NewAssignmentService(repos, notifier, log)
	tagService := service.NewTagService(repos, log)
	snapshotService := service.NewSnapshotService(repos, log)
	activeService := service.NewActiveAssignmentService(repos, log)

	// Обработчики
	handlers := transport.Handlers{
		Team:             handler.NewTeamHandler(teamService, log),
		Reviewer:         handler.NewReviewerHandler(reviewerService, log),
		Assignment:       handler.NewAssignmentHandler(assignmentService, log),
		Tag:              handler.NewTagHandler(tagService, log),
		Snapshot:         handler.NewSnapshotHandler(snapshotService, log),
		ActiveAssignment: handler.NewActiveAssignmentHandler(activeService, log),
		Health:           handler.NewHealthHandler(pinger, log),
	}

	return &App{
		Handler:     transport.NewRouter(handlers, requestTimeout, log),
		assignments: assignmentService,
	}
}

// Drain дожидается уведомлений после остановки HTTP сервера
func (a *App) Drain(ctx context.Context) error {
	return a.assignments.Wait(ctx)
}
