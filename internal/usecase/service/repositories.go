package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/niklvrr/ReviewerRotation/internal/domain"
	"github.com/niklvrr/ReviewerRotation/internal/infrastructure/models/dto"
	"go.uber.org/zap"
)

// Transactor сериализует мутации одной команды. Вложенный вызов для той же
// команды переиспользует уже открытую транзакцию.
type Transactor interface {
	RunInTeamTx(ctx context.Context, teamId string, fn func(ctx context.Context) error) error
}

type TeamRepository interface {
	Add(ctx context.Context, d *dto.AddTeamDTO) (*domain.Team, error)
	Get(ctx context.Context, teamId string) (*domain.Team, error)
}

// Ревьюеры всегда возвращаются в порядке createdAt, затем порядка вставки
type ReviewerRepository interface {
	List(ctx context.Context, teamId string) ([]*domain.Reviewer, error)
	Get(ctx context.Context, teamId, reviewerId string) (*domain.Reviewer, error)
	Add(ctx context.Context, d *dto.AddReviewerDTO) (*domain.Reviewer, error)
	Update(ctx context.Context, d *dto.UpdateReviewerDTO) (*domain.Reviewer, error)
	SetAbsence(ctx context.Context, d *dto.SetAbsenceDTO) (*domain.Reviewer, error)
	SetAssignmentCount(ctx context.Context, d *dto.SetAssignmentCountDTO) (*domain.Reviewer, error)
	IncrementCount(ctx context.Context, teamId, reviewerId string) (*domain.Reviewer, error)
	DecrementCount(ctx context.Context, teamId, reviewerId string) (*domain.Reviewer, error)
	Delete(ctx context.Context, teamId, reviewerId string) error
	ResetCounts(ctx context.Context, teamId string) error
	ReplaceAll(ctx context.Context, teamId string, reviewers []*domain.Reviewer) error
	RemoveTag(ctx context.Context, teamId, tagId string) error
}

type TagRepository interface {
	List(ctx context.Context, teamId string) ([]*domain.Tag, error)
	Get(ctx context.Context, teamId, tagId string) (*domain.Tag, error)
	Add(ctx context.Context, d *dto.AddTagDTO) (*domain.Tag, error)
	Update(ctx context.Context, d *dto.UpdateTagDTO) (*domain.Tag, error)
	Delete(ctx context.Context, teamId, tagId string) error
}

// События отдаются от новых к старым
type LedgerRepository interface {
	Append(ctx context.Context, d *dto.AppendEventDTO) (*domain.AssignmentEvent, error)
	Prune(ctx context.Context, teamId string, keep int) error
	Newest(ctx context.Context, teamId string) (*domain.AssignmentEvent, error)
	Delete(ctx context.Context, teamId, eventId string) error
	List(ctx context.Context, teamId string, limit int, includeAbsentSkips bool) ([]*domain.AssignmentEvent, error)
	Clear(ctx context.Context, teamId string) error
}

type FeedRepository interface {
	Record(ctx context.Context, teamId string, item *domain.FeedItem, size int) error
	Replace(ctx context.Context, teamId string, items []*domain.FeedItem) error
	List(ctx context.Context, teamId string) ([]*domain.FeedItem, error)
	Clear(ctx context.Context, teamId string) error
}

type SnapshotRepository interface {
	Add(ctx context.Context, d *dto.CaptureSnapshotDTO) (*domain.Snapshot, error)
	Prune(ctx context.Context, teamId string, keep int) error
	List(ctx context.Context, teamId string) ([]*domain.Snapshot, error)
	Get(ctx context.Context, teamId, snapshotId string) (*domain.Snapshot, error)
}

type ActiveAssignmentRepository interface {
	Add(ctx context.Context, d *dto.CreateActiveAssignmentDTO) (*domain.ActiveAssignment, error)
	Get(ctx context.Context, teamId, id string) (*domain.ActiveAssignment, error)
	List(ctx context.Context, teamId string, reviewerId *string) ([]*domain.ActiveAssignment, error)
	Delete(ctx context.Context, teamId, id string) error
}

// Repositories набор хранилищ, общий для всех сервисов
type Repositories struct {
	Tx                Transactor
	Teams             TeamRepository
	Reviewers         ReviewerRepository
	Tags              TagRepository
	Ledger            LedgerRepository
	Feed              FeedRepository
	Snapshots         SnapshotRepository
	ActiveAssignments ActiveAssignmentRepository
}

var now = func() time.Time {
	return time.Now().UTC()
}

// checkpoint снимает полную копию пула в рамках текущей транзакции команды
func checkpoint(ctx context.Context, repos *Repositories, log *zap.Logger, teamId, reason string) (*domain.Snapshot, error) {
	reviewers, err := repos.Reviewers.List(ctx, teamId)
	if err != nil {
		return nil, err
	}

	copies := make([]*domain.Reviewer, 0, len(reviewers))
	for _, r := range reviewers {
		copies = append(copies, r.Clone())
	}

	snap, err := repos.Snapshots.Add(ctx, &dto.CaptureSnapshotDTO{
		Id:        uuid.NewString(),
		TeamId:    teamId,
		Reason:    reason,
		Reviewers: copies,
		CreatedAt: now(),
	})
	if err != nil {
		return nil, err
	}

	// Храним только последние снимки
	if err := repos.Snapshots.Prune(ctx, teamId, domain.SnapshotRetention); err != nil {
		return nil, err
	}

	log.Debug("snapshot captured",
		zap.String("team_id", teamId),
		zap.String("snapshot_id", snap.Id),
		zap.String("reason", reason),
	)
	return snap, nil
}

// ensureTeam для операций чтения вне транзакции
func ensureTeam(ctx context.Context, repos *Repositories, teamId string) error {
	_, err := repos.Teams.Get(ctx, teamId)
	return err
}

// mapError переводит ошибки хранилища в доменные коды
func mapError(err error, notFound *DomainError, conflict *DomainError, opError error) error {
	if err == nil {
		return nil
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	if errors.Is(err, domain.ErrTeamNotFound) {
		return WrapError(ErrTeamNotFound, err)
	}
	if errors.Is(err, domain.ErrNotFound) && notFound != nil {
		return WrapError(notFound, err)
	}
	if errors.Is(err, domain.ErrAlreadyExists) && conflict != nil {
		return WrapError(conflict, err)
	}
	if errors.Is(err, domain.ErrInvalidInput) {
		return WrapError(ErrInvalidInput, err)
	}

	// Неизвестная ошибка
	return fmt.Errorf("%w: %w", opError, err)
}
