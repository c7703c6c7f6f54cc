package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/niklvrr/ReviewerRotation/internal/domain"
	"github.com/niklvrr/ReviewerRotation/internal/infrastructure/models/dto"
	"github.com/niklvrr/ReviewerRotation/internal/transport/dto/request"
	"github.com/niklvrr/ReviewerRotation/internal/transport/dto/response"
	"go.uber.org/zap"
)

var (
	assignError  = errors.New("assign reviewer error")
	skipError    = errors.New("skip reviewer error")
	undoError    = errors.New("undo assignment error")
	historyError = errors.New("read assignment history error")
	feedError    = errors.New("read activity feed error")
	nextError    = errors.New("select next reviewer error")
)

const AbsentWarning = "reviewer is absent"

// Notifier внешний слой уведомлений, вызывается после коммита
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}

type AssignmentService struct {
	repos    *Repositories
	notifier Notifier
	log      *zap.Logger

	// уведомления, ещё не переданные наружу
	inflight sync.WaitGroup
}

func NewAssignmentService(repos *Repositories, notifier Notifier, log *zap.Logger) *AssignmentService {
	return &AssignmentService{
		repos:    repos,
		notifier: notifier,
		log:      log,
	}
}

type assignOptions struct {
	forced     bool
	skipped    bool
	tagId      *string
	actionBy   *domain.ActionBy
	prUrl      *string
	assignerId *string
}

type assignOutcome struct {
	reviewer *domain.Reviewer
	event    *domain.AssignmentEvent
	active   *domain.ActiveAssignment
	warning  string
	email    string
}

func (o *assignOutcome) response() *response.AssignResponse {
	return &response.AssignResponse{
		Reviewer:         o.reviewer,
		Event:            o.event,
		ActiveAssignment: o.active,
		Warning:          o.warning,
	}
}

// Next только предпросмотр, состояние не меняется
func (s *AssignmentService) Next(ctx context.Context, req *request.NextRequest) (*response.NextResponse, error) {
	teamId, err := normalizeID(req.TeamId, "team_id")
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}
	tagId, excludeId := trimOptional(req.TagId), trimOptional(req.ExcludeId)

	if err := ensureTeam(ctx, s.repos, teamId); err != nil {
		return nil, mapError(err, ErrTeamNotFound, nil, nextError)
	}
	if tagId != nil {
		if _, err := s.repos.Tags.Get(ctx, teamId, *tagId); err != nil {
			return nil, mapError(err, ErrTagNotFound, nil, nextError)
		}
	}

	reviewers, err := s.repos.Reviewers.List(ctx, teamId)
	if err != nil {
		s.log.Error("failed to load reviewers for selection", zap.String("team_id", teamId), zap.Error(err))
		return nil, mapError(err, nil, nil, nextError)
	}

	next, ok := SelectNext(reviewers, tagId, excludeId)
	return &response.NextResponse{
		TeamId:    teamId,
		Available: ok,
		Reviewer:  next,
	}, nil
}

// Assign назначает конкретного ревьюера. Отсутствие не мешает, но возвращается предупреждение.
func (s *AssignmentService) Assign(ctx context.Context, req *request.AssignRequest) (*response.AssignResponse, error) {
	s.log.Info("assign request accepted",
		zap.String("team_id", req.TeamId),
		zap.String("reviewer_id", req.ReviewerId),
		zap.Bool("forced", req.Forced),
		zap.Bool("skipped", req.Skipped),
	)

	teamId, reviewerId, err := normalizePair(req.TeamId, req.ReviewerId)
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}
	if req.Forced && req.Skipped {
		return nil, WrapError(ErrInvalidInput, errors.New("forced and skipped are mutually exclusive"))
	}

	opts := assignOptions{
		forced:     req.Forced,
		skipped:    req.Skipped,
		tagId:      trimOptional(req.TagId),
		actionBy:   req.ActionBy,
		prUrl:      trimOptional(req.PrUrl),
		assignerId: trimOptional(req.AssignerId),
	}

	var out *assignOutcome
	err = s.repos.Tx.RunInTeamTx(ctx, teamId, func(ctx context.Context) error {
		target, err := s.repos.Reviewers.Get(ctx, teamId, reviewerId)
		if err != nil {
			return mapError(err, ErrReviewerNotFound, nil, assignError)
		}

		out, err = s.assign(ctx, teamId, target, opts)
		return err
	})
	if err != nil {
		s.log.Error("failed to assign reviewer",
			zap.String("team_id", teamId),
			zap.String("reviewer_id", reviewerId),
			zap.Error(err),
		)
		return nil, mapError(err, ErrReviewerNotFound, nil, assignError)
	}

	s.afterCommit(ctx, teamId, out, opts)
	return out.response(), nil
}

// AssignNext выбирает следующего по ротации и назначает в той же транзакции
func (s *AssignmentService) AssignNext(ctx context.Context, req *request.AssignNextRequest) (*response.AssignResponse, error) {
	s.log.Info("assign next request accepted", zap.String("team_id", req.TeamId))

	teamId, err := normalizeID(req.TeamId, "team_id")
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}

	opts := assignOptions{
		actionBy:   req.ActionBy,
		prUrl:      trimOptional(req.PrUrl),
		assignerId: trimOptional(req.AssignerId),
	}
	out, err := s.selectAndAssign(ctx, teamId, nil, trimOptional(req.ExcludeId), opts)
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, teamId, out, opts)
	return out.response(), nil
}

// AssignByTag ротация внутри трека, событие помечается тегом
func (s *AssignmentService) AssignByTag(ctx context.Context, req *request.AssignByTagRequest) (*response.AssignResponse, error) {
	s.log.Info("assign by tag request accepted",
		zap.String("team_id", req.TeamId),
		zap.String("tag_id", req.TagId),
	)

	teamId, err := normalizeID(req.TeamId, "team_id")
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}
	tagId, err := normalizeID(req.TagId, "tag_id")
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}

	opts := assignOptions{
		tagId:      &tagId,
		actionBy:   req.ActionBy,
		prUrl:      trimOptional(req.PrUrl),
		assignerId: trimOptional(req.AssignerId),
	}
	out, err := s.selectAndAssign(ctx, teamId, &tagId, trimOptional(req.ExcludeId), opts)
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, teamId, out, opts)
	return out.response(), nil
}

func (s *AssignmentService) selectAndAssign(ctx context.Context, teamId string, tagId, excludeId *string, opts assignOptions) (*assignOutcome, error) {
	var out *assignOutcome
	err := s.repos.Tx.RunInTeamTx(ctx, teamId, func(ctx context.Context) error {
		if tagId != nil {
			if _, err := s.repos.Tags.Get(ctx, teamId, *tagId); err != nil {
				return mapError(err, ErrTagNotFound, nil, assignError)
			}
		}

		reviewers, err := s.repos.Reviewers.List(ctx, teamId)
		if err != nil {
			return err
		}

		next, ok := SelectNext(reviewers, tagId, excludeId)
		if !ok {
			noCandidateTotal.Inc()
			return ErrNoCandidate
		}

		out, err = s.assign(ctx, teamId, next, opts)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrNoCandidate) {
			s.log.Info("no available reviewer", zap.String("team_id", teamId))
		} else {
			s.log.Error("failed to assign next reviewer", zap.String("team_id", teamId), zap.Error(err))
		}
		return nil, mapError(err, ErrReviewerNotFound, nil, assignError)
	}
	return out, nil
}

// Skip засчитывает ход без ревью. Пропуск отсутствующего пишется только в аудит.
func (s *AssignmentService) Skip(ctx context.Context, req *request.SkipRequest) (*response.AssignResponse, error) {
	s.log.Info("skip request accepted",
		zap.String("team_id", req.TeamId),
		zap.String("reviewer_id", req.ReviewerId),
	)

	teamId, reviewerId, err := normalizePair(req.TeamId, req.ReviewerId)
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}

	opts := assignOptions{
		skipped:  true,
		actionBy: req.ActionBy,
	}

	var (
		out  *assignOutcome
		next *domain.Reviewer
	)
	err = s.repos.Tx.RunInTeamTx(ctx, teamId, func(ctx context.Context) error {
		target, err := s.repos.Reviewers.Get(ctx, teamId, reviewerId)
		if err != nil {
			return mapError(err, ErrReviewerNotFound, nil, skipError)
		}

		out, err = s.assign(ctx, teamId, target, opts)
		if err != nil {
			return err
		}

		reviewers, err := s.repos.Reviewers.List(ctx, teamId)
		if err != nil {
			return err
		}
		next, _ = SelectNextExcluding(reviewers, nil, reviewerId)
		return nil
	})
	if err != nil {
		s.log.Error("failed to skip reviewer",
			zap.String("team_id", teamId),
			zap.String("reviewer_id", reviewerId),
			zap.Error(err),
		)
		return nil, mapError(err, ErrReviewerNotFound, nil, skipError)
	}

	resp := out.response()
	resp.Next = next
	return resp, nil
}

// Undo откатывает ровно одно самое новое событие
func (s *AssignmentService) Undo(ctx context.Context, req *request.UndoRequest) (*response.UndoResponse, error) {
	s.log.Info("undo request accepted", zap.String("team_id", req.TeamId))

	teamId, err := normalizeID(req.TeamId, "team_id")
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}

	var (
		reviewer *domain.Reviewer
		event    *domain.AssignmentEvent
	)
	err = s.repos.Tx.RunInTeamTx(ctx, teamId, func(ctx context.Context) error {
		event, err = s.repos.Ledger.Newest(ctx, teamId)
		if err != nil {
			return mapError(err, ErrNothingToUndo, nil, undoError)
		}

		// Ревьюер мог быть удалён после назначения
		if _, err := s.repos.Reviewers.Get(ctx, teamId, event.ReviewerId); err != nil {
			return mapError(err, ErrReviewerNotFound, nil, undoError)
		}

		// Счётчик не уходит ниже нуля
		reviewer, err = s.repos.Reviewers.DecrementCount(ctx, teamId, event.ReviewerId)
		if err != nil {
			return err
		}
		if err := s.repos.Ledger.Delete(ctx, teamId, event.Id); err != nil {
			return err
		}
		// Долг мог быть уже закрыт или не создавался
		if err := s.repos.ActiveAssignments.Delete(ctx, teamId, event.Id); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if err := s.rebuildFeed(ctx, teamId); err != nil {
			return err
		}

		reason := fmt.Sprintf("undo %s assignment of %s", event.Kind(), event.ReviewerName)
		_, err = checkpoint(ctx, s.repos, s.log, teamId, reason)
		return err
	})
	if err != nil {
		s.log.Error("failed to undo assignment", zap.String("team_id", teamId), zap.Error(err))
		return nil, mapError(err, ErrReviewerNotFound, nil, undoError)
	}

	undoTotal.Inc()
	s.log.Info("assignment undone",
		zap.String("team_id", teamId),
		zap.String("event_id", event.Id),
		zap.String("reviewer_id", reviewer.Id),
		zap.Int("assignment_count", reviewer.AssignmentCount),
	)

	return &response.UndoResponse{
		Reviewer: reviewer,
		Event:    event,
	}, nil
}

func (s *AssignmentService) History(ctx context.Context, req *request.HistoryRequest) (*response.HistoryResponse, error) {
	teamId, err := normalizeID(req.TeamId, "team_id")
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}
	limit := req.Limit
	if limit <= 0 || limit > domain.LedgerRetention {
		limit = domain.LedgerRetention
	}

	if err := ensureTeam(ctx, s.repos, teamId); err != nil {
		return nil, mapError(err, ErrTeamNotFound, nil, historyError)
	}

	// В истории остаются и пропуски отсутствующих
	events, err := s.repos.Ledger.List(ctx, teamId, limit, true)
	if err != nil {
		s.log.Error("failed to read history", zap.String("team_id", teamId), zap.Error(err))
		return nil, mapError(err, nil, nil, historyError)
	}

	return &response.HistoryResponse{
		TeamId: teamId,
		Events: nonNil(events),
	}, nil
}

func (s *AssignmentService) Feed(ctx context.Context, req *request.FeedRequest) (*response.FeedResponse, error) {
	teamId, err := normalizeID(req.TeamId, "team_id")
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}

	if err := ensureTeam(ctx, s.repos, teamId); err != nil {
		return nil, mapError(err, ErrTeamNotFound, nil, feedError)
	}

	items, err := s.repos.Feed.List(ctx, teamId)
	if err != nil {
		s.log.Error("failed to read feed", zap.String("team_id", teamId), zap.Error(err))
		return nil, mapError(err, nil, nil, feedError)
	}

	feed := domain.NewFeed(items)
	return &response.FeedResponse{
		TeamId:       teamId,
		Items:        feed.Items,
		LastAssigned: feed.LastAssigned,
	}, nil
}

// assign общий шаг всех путей назначения, выполняется внутри транзакции команды
func (s *AssignmentService) assign(ctx context.Context, teamId string, target *domain.Reviewer, opts assignOptions) (*assignOutcome, error) {
	var tagName string
	if opts.tagId != nil {
		tag, err := s.repos.Tags.Get(ctx, teamId, *opts.tagId)
		if err != nil {
			return nil, mapError(err, ErrTagNotFound, nil, assignError)
		}
		tagName = tag.Name
	}

	absentSkip := opts.skipped && target.IsAbsent

	updated, err := s.repos.Reviewers.IncrementCount(ctx, teamId, target.Id)
	if err != nil {
		return nil, err
	}

	// Имя копируется в событие и переживает переименование и удаление
	event, err := s.repos.Ledger.Append(ctx, &dto.AppendEventDTO{
		Id:           uuid.NewString(),
		TeamId:       teamId,
		ReviewerId:   target.Id,
		ReviewerName: target.Name,
		Timestamp:    now(),
		Forced:       opts.forced,
		Skipped:      opts.skipped,
		IsAbsentSkip: absentSkip,
		TagId:        opts.tagId,
		ActionBy:     opts.actionBy,
		PrUrl:        opts.prUrl,
	})
	if err != nil {
		return nil, err
	}
	if err := s.repos.Ledger.Prune(ctx, teamId, domain.LedgerRetention); err != nil {
		return nil, err
	}

	if !event.IsAbsentSkip {
		if err := s.repos.Feed.Record(ctx, teamId, domain.NewFeedItem(event), domain.FeedSize); err != nil {
			return nil, err
		}
	}

	out := &assignOutcome{
		reviewer: updated,
		event:    event,
		email:    target.Email,
	}
	if target.IsAbsent && !absentSkip {
		out.warning = AbsentWarning
	}

	if opts.assignerId != nil && !opts.skipped {
		if _, err := s.repos.Reviewers.Get(ctx, teamId, *opts.assignerId); err != nil {
			return nil, mapError(err, ErrReviewerNotFound, nil, assignError)
		}
		// Id события связывает долг с назначением, Undo снимает их вместе
		out.active, err = s.repos.ActiveAssignments.Add(ctx, &dto.CreateActiveAssignmentDTO{
			Id:         event.Id,
			TeamId:     teamId,
			AssigneeId: target.Id,
			AssignerId: *opts.assignerId,
			PrUrl:      opts.prUrl,
			CreatedAt:  event.Timestamp,
		})
		if err != nil {
			return nil, err
		}
	}

	if _, err := checkpoint(ctx, s.repos, s.log, teamId, assignReason(event, tagName)); err != nil {
		return nil, err
	}

	assignmentsTotal.WithLabelValues(event.Kind()).Inc()
	s.log.Info("reviewer assigned",
		zap.String("team_id", teamId),
		zap.String("reviewer_id", updated.Id),
		zap.String("kind", event.Kind()),
		zap.Int("assignment_count", updated.AssignmentCount),
	)
	return out, nil
}

// rebuildFeed пересобирает ленту целиком из последних событий истории
func (s *AssignmentService) rebuildFeed(ctx context.Context, teamId string) error {
	events, err := s.repos.Ledger.List(ctx, teamId, domain.FeedSize, false)
	if err != nil {
		return err
	}

	items := make([]*domain.FeedItem, 0, len(events))
	for _, e := range events {
		items = append(items, domain.NewFeedItem(e))
	}
	return s.repos.Feed.Replace(ctx, teamId, items)
}

// Wait дожидается уведомлений, запущенных после коммита. Вызывается при
// остановке сервиса, когда новые назначения уже не принимаются
func (s *AssignmentService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("pending notifications: %w", ctx.Err())
	}
}

// afterCommit передаёт уведомление наружу, его ошибки не откатывают назначение
func (s *AssignmentService) afterCommit(ctx context.Context, teamId string, out *assignOutcome, opts assignOptions) {
	if s.notifier == nil || out.event.Skipped {
		return
	}

	n := domain.Notification{
		TeamId:        teamId,
		ReviewerId:    out.reviewer.Id,
		ReviewerName:  out.event.ReviewerName,
		ReviewerEmail: out.email,
		PrUrl:         opts.prUrl,
		Assigner:      opts.actionBy,
		Forced:        opts.forced,
	}

	ctx = context.WithoutCancel(ctx)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		if err := s.notifier.Notify(ctx, n); err != nil {
			s.log.Warn("notification hand-off failed",
				zap.String("team_id", teamId),
				zap.String("reviewer_id", n.ReviewerId),
				zap.Error(err),
			)
		}
	}()
}

func assignReason(e *domain.AssignmentEvent, tagName string) string {
	switch e.Kind() {
	case domain.KindAbsentSkip:
		return fmt.Sprintf("absent skip of %s", e.ReviewerName)
	case domain.KindSkipped:
		return fmt.Sprintf("skipped %s", e.ReviewerName)
	case domain.KindForced:
		return fmt.Sprintf("forced assignment to %s", e.ReviewerName)
	case domain.KindTag:
		return fmt.Sprintf("%s track assignment to %s", tagName, e.ReviewerName)
	default:
		return fmt.Sprintf("assigned %s", e.ReviewerName)
	}
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
