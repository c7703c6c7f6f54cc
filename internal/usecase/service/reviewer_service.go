package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/niklvrr/ReviewerRotation/internal/domain"
	"github.com/niklvrr/ReviewerRotation/internal/infrastructure/models/dto"
	"github.com/niklvrr/ReviewerRotation/internal/transport/dto/request"
	"github.com/niklvrr/ReviewerRotation/internal/transport/dto/response"
	"go.uber.org/zap"
)

var (
	listReviewersError  = errors.New("list reviewers error")
	getReviewerError    = errors.New("get reviewer error")
	addReviewerError    = errors.New("add reviewer error")
	importError         = errors.New("import reviewers error")
	updateReviewerError = errors.New("update reviewer error")
	removeReviewerError = errors.New("remove reviewer error")
	toggleAbsenceError  = errors.New("toggle absence error")
	updateCountError    = errors.New("update assignment count error")
	resetError          = errors.New("reset rotation error")
)

type ReviewerService struct {
	repos *Repositories
	log   *zap.Logger
}

func NewReviewerService(repos *Repositories, log *zap.Logger) *ReviewerService {
	return &ReviewerService{
		repos: repos,
		log:   log,
	}
}

func (s *ReviewerService) List(ctx context.Context, req *request.ListReviewersRequest) (*response.ReviewersResponse, error) {
	teamId, err := normalizeID(req.TeamId, "team_id")
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}

	if err := ensureTeam(ctx, s.repos, teamId); err != nil {
		return nil, mapError(err, ErrTeamNotFound, nil, listReviewersError)
	}

	reviewers, err := s.repos.Reviewers.List(ctx, teamId)
	if err != nil {
		s.log.Error("failed to list reviewers", zap.String("team_id", teamId), zap.Error(err))
		return nil, mapError(err, ErrTeamNotFound, nil, listReviewersError)
	}

	return &response.ReviewersResponse{
		TeamId:    teamId,
		Reviewers: nonNil(reviewers),
	}, nil
}

func (s *ReviewerService) Get(ctx context.Context, req *request.GetReviewerRequest) (*response.ReviewerResponse, error) {
	teamId, reviewerId, err := normalizePair(req.TeamId, req.ReviewerId)
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}

	reviewer, err := s.repos.Reviewers.Get(ctx, teamId, reviewerId)
	if err != nil {
		return nil, mapError(err, ErrReviewerNotFound, nil, getReviewerError)
	}

	return &response.ReviewerResponse{Reviewer: reviewer}, nil
}

func (s *ReviewerService) Add(ctx context.Context, req *request.AddReviewerRequest) (*response.ReviewerResponse, error) {
	s.log.Info("add reviewer request accepted",
		zap.String("team_id", req.TeamId),
		zap.String("email", req.Email),
	)

	teamId, err := normalizeID(req.TeamId, "team_id")
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}
	name, email, err := validateIdentity(req.Name, req.Email)
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}

	var added *domain.Reviewer
	err = s.repos.Tx.RunInTeamTx(ctx, teamId, func(ctx context.Context) error {
		reviewers, err := s.repos.Reviewers.List(ctx, teamId)
		if err != nil {
			return err
		}
		if emailInUse(reviewers, email, "") {
			return WrapError(ErrEmailTaken, fmt.Errorf("email %q", email))
		}

		tags, err := s.checkTags(ctx, teamId, req.Tags)
		if err != nil {
			return err
		}

		// Новичок встаёт в начало очереди: стартовая загрузка равна текущему минимуму
		added, err = s.repos.Reviewers.Add(ctx, &dto.AddReviewerDTO{
			Id:              uuid.NewString(),
			TeamId:          teamId,
			Name:            name,
			Email:           email,
			AssignmentCount: MinCount(reviewers),
			Tags:            tags,
			CreatedAt:       now(),
		})
		if err != nil {
			return err
		}

		_, err = checkpoint(ctx, s.repos, s.log, teamId, fmt.Sprintf("added reviewer %s", name))
		return err
	})
	if err != nil {
		s.log.Error("failed to add reviewer",
			zap.String("team_id", teamId),
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, mapError(err, ErrTagNotFound, ErrEmailTaken, addReviewerError)
	}

	s.log.Info("reviewer added",
		zap.String("team_id", teamId),
		zap.String("reviewer_id", added.Id),
		zap.Int("assignment_count", added.AssignmentCount),
	)

	// Ответ
	return &response.ReviewerResponse{Reviewer: added}, nil
}

func (s *ReviewerService) Import(ctx context.Context, req *request.ImportReviewersRequest) (*response.ReviewersResponse, error) {
	s.log.Info("import reviewers request accepted",
		zap.String("team_id", req.TeamId),
		zap.Int("reviewers", len(req.Reviewers)),
	)

	teamId, err := normalizeID(req.TeamId, "team_id")
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}
	if len(req.Reviewers) == 0 {
		return nil, WrapError(ErrInvalidInput, errors.New("reviewers list is empty"))
	}

	// Проверяем пачку целиком до открытия транзакции
	type entry struct{ name, email string }
	entries := make([]entry, 0, len(req.Reviewers))
	seen := make(map[string]struct{}, len(req.Reviewers))
	for i, r := range req.Reviewers {
		name, email, err := validateIdentity(r.Name, r.Email)
		if err != nil {
			return nil, WrapError(ErrInvalidInput, fmt.Errorf("reviewers[%d]: %w", i, err))
		}
		key := normalizeEmail(email)
		if _, dup := seen[key]; dup {
			return nil, WrapError(ErrEmailTaken, fmt.Errorf("duplicate email %q in batch", email))
		}
		seen[key] = struct{}{}
		entries = append(entries, entry{name: name, email: email})
	}

	var imported []*domain.Reviewer
	err = s.repos.Tx.RunInTeamTx(ctx, teamId, func(ctx context.Context) error {
		existing, err := s.repos.Reviewers.List(ctx, teamId)
		if err != nil {
			return err
		}
		startCount := MinCount(existing)

		imported = make([]*domain.Reviewer, 0, len(entries))
		for _, e := range entries {
			if emailInUse(existing, e.email, "") {
				return WrapError(ErrEmailTaken, fmt.Errorf("email %q", e.email))
			}
			added, err := s.repos.Reviewers.Add(ctx, &dto.AddReviewerDTO{
				Id:              uuid.NewString(),
				TeamId:          teamId,
				Name:            e.name,
				Email:           e.email,
				AssignmentCount: startCount,
				Tags:            []string{},
				CreatedAt:       now(),
			})
			if err != nil {
				return err
			}
			imported = append(imported, added)
		}

		_, err = checkpoint(ctx, s.repos, s.log, teamId, fmt.Sprintf("imported %d reviewers", len(imported)))
		return err
	})
	if err != nil {
		s.log.Error("failed to import reviewers", zap.String("team_id", teamId), zap.Error(err))
		return nil, mapError(err, nil, ErrEmailTaken, importError)
	}

	s.log.Info("reviewers imported", zap.String("team_id", teamId), zap.Int("reviewers", len(imported)))

	return &response.ReviewersResponse{
		TeamId:    teamId,
		Reviewers: imported,
	}, nil
}

func (s *ReviewerService) Update(ctx context.Context, req *request.UpdateReviewerRequest) (*response.ReviewerResponse, error) {
	teamId, reviewerId, err := normalizePair(req.TeamId, req.ReviewerId)
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}

	d := &dto.UpdateReviewerDTO{
		TeamId:     teamId,
		ReviewerId: reviewerId,
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, WrapError(ErrInvalidInput, errors.New("name is empty"))
		}
		d.Name = &name
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if !strings.Contains(email, "@") {
			return nil, WrapError(ErrInvalidInput, errors.New("email is invalid"))
		}
		d.Email = &email
	}

	var updated *domain.Reviewer
	err = s.repos.Tx.RunInTeamTx(ctx, teamId, func(ctx context.Context) error {
		current, err := s.repos.Reviewers.Get(ctx, teamId, reviewerId)
		if err != nil {
			return err
		}

		if d.Email != nil {
			reviewers, err := s.repos.Reviewers.List(ctx, teamId)
			if err != nil {
				return err
			}
			if emailInUse(reviewers, *d.Email, reviewerId) {
				return WrapError(ErrEmailTaken, fmt.Errorf("email %q", *d.Email))
			}
		}

		if req.Tags != nil {
			tags, err := s.checkTags(ctx, teamId, *req.Tags)
			if err != nil {
				return err
			}
			d.Tags = tags
			d.SetTags = true
		}

		updated, err = s.repos.Reviewers.Update(ctx, d)
		if err != nil {
			return err
		}

		_, err = checkpoint(ctx, s.repos, s.log, teamId, fmt.Sprintf("updated reviewer %s", current.Name))
		return err
	})
	if err != nil {
		s.log.Error("failed to update reviewer",
			zap.String("team_id", teamId),
			zap.String("reviewer_id", reviewerId),
			zap.Error(err),
		)
		return nil, mapError(err, ErrReviewerNotFound, ErrEmailTaken, updateReviewerError)
	}

	s.log.Info("reviewer updated", zap.String("team_id", teamId), zap.String("reviewer_id", reviewerId))

	return &response.ReviewerResponse{Reviewer: updated}, nil
}

func (s *ReviewerService) Remove(ctx context.Context, req *request.RemoveReviewerRequest) error {
	teamId, reviewerId, err := normalizePair(req.TeamId, req.ReviewerId)
	if err != nil {
		return WrapError(ErrInvalidInput, err)
	}

	err = s.repos.Tx.RunInTeamTx(ctx, teamId, func(ctx context.Context) error {
		reviewer, err := s.repos.Reviewers.Get(ctx, teamId, reviewerId)
		if err != nil {
			return err
		}

		// События в истории сохраняют имя, поэтому ledger не трогаем
		if err := s.repos.Reviewers.Delete(ctx, teamId, reviewerId); err != nil {
			return err
		}

		_, err = checkpoint(ctx, s.repos, s.log, teamId, fmt.Sprintf("removed reviewer %s", reviewer.Name))
		return err
	})
	if err != nil {
		s.log.Error("failed to remove reviewer",
			zap.String("team_id", teamId),
			zap.String("reviewer_id", reviewerId),
			zap.Error(err),
		)
		return mapError(err, ErrReviewerNotFound, nil, removeReviewerError)
	}

	s.log.Info("reviewer removed", zap.String("team_id", teamId), zap.String("reviewer_id", reviewerId))
	return nil
}

func (s *ReviewerService) ToggleAbsence(ctx context.Context, req *request.ToggleAbsenceRequest) (*response.ReviewerResponse, error) {
	s.log.Info("toggle absence request accepted",
		zap.String("team_id", req.TeamId),
		zap.String("reviewer_id", req.ReviewerId),
	)

	teamId, reviewerId, err := normalizePair(req.TeamId, req.ReviewerId)
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}

	var updated *domain.Reviewer
	err = s.repos.Tx.RunInTeamTx(ctx, teamId, func(ctx context.Context) error {
		reviewer, err := s.repos.Reviewers.Get(ctx, teamId, reviewerId)
		if err != nil {
			return err
		}

		d := &dto.SetAbsenceDTO{
			TeamId:          teamId,
			ReviewerId:      reviewerId,
			IsAbsent:        !reviewer.IsAbsent,
			AssignmentCount: reviewer.AssignmentCount,
		}

		var reason string
		if d.IsAbsent {
			d.AbsentUntil = req.AbsentUntil
			reason = fmt.Sprintf("%s marked absent", reviewer.Name)
		} else {
			// Возвращающийся встаёт на текущий уровень активного пула
			reviewers, err := s.repos.Reviewers.List(ctx, teamId)
			if err != nil {
				return err
			}
			d.AssignmentCount = ReturningCount(reviewers, reviewer)
			reason = fmt.Sprintf("%s is back, count %d -> %d", reviewer.Name, reviewer.AssignmentCount, d.AssignmentCount)
		}

		updated, err = s.repos.Reviewers.SetAbsence(ctx, d)
		if err != nil {
			return err
		}

		_, err = checkpoint(ctx, s.repos, s.log, teamId, reason)
		return err
	})
	if err != nil {
		s.log.Error("failed to toggle absence",
			zap.String("team_id", teamId),
			zap.String("reviewer_id", reviewerId),
			zap.Error(err),
		)
		return nil, mapError(err, ErrReviewerNotFound, nil, toggleAbsenceError)
	}

	s.log.Info("reviewer absence toggled",
		zap.String("team_id", teamId),
		zap.String("reviewer_id", reviewerId),
		zap.Bool("is_absent", updated.IsAbsent),
		zap.Int("assignment_count", updated.AssignmentCount),
	)

	return &response.ReviewerResponse{Reviewer: updated}, nil
}

func (s *ReviewerService) UpdateAssignmentCount(ctx context.Context, req *request.UpdateAssignmentCountRequest) (*response.ReviewerResponse, error) {
	teamId, reviewerId, err := normalizePair(req.TeamId, req.ReviewerId)
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}
	if req.AssignmentCount == nil || *req.AssignmentCount < 0 {
		return nil, WrapError(ErrInvalidInput, errors.New("assignment_count must be >= 0"))
	}
	count := *req.AssignmentCount

	var updated *domain.Reviewer
	err = s.repos.Tx.RunInTeamTx(ctx, teamId, func(ctx context.Context) error {
		updated, err = s.repos.Reviewers.SetAssignmentCount(ctx, &dto.SetAssignmentCountDTO{
			TeamId:          teamId,
			ReviewerId:      reviewerId,
			AssignmentCount: count,
		})
		if err != nil {
			return err
		}

		_, err = checkpoint(ctx, s.repos, s.log, teamId,
			fmt.Sprintf("assignment count of %s set to %d", updated.Name, count))
		return err
	})
	if err != nil {
		s.log.Error("failed to update assignment count",
			zap.String("team_id", teamId),
			zap.String("reviewer_id", reviewerId),
			zap.Error(err),
		)
		return nil, mapError(err, ErrReviewerNotFound, nil, updateCountError)
	}

	return &response.ReviewerResponse{Reviewer: updated}, nil
}

// ResetAll единственная операция, которая сознательно стирает историю
func (s *ReviewerService) ResetAll(ctx context.Context, req *request.ResetAllRequest) (*response.ReviewersResponse, error) {
	s.log.Info("reset rotation request accepted", zap.String("team_id", req.TeamId))

	teamId, err := normalizeID(req.TeamId, "team_id")
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}

	var reviewers []*domain.Reviewer
	err = s.repos.Tx.RunInTeamTx(ctx, teamId, func(ctx context.Context) error {
		if err := s.repos.Reviewers.ResetCounts(ctx, teamId); err != nil {
			return err
		}
		if err := s.repos.Ledger.Clear(ctx, teamId); err != nil {
			return err
		}
		if err := s.repos.Feed.Clear(ctx, teamId); err != nil {
			return err
		}

		snap, err := checkpoint(ctx, s.repos, s.log, teamId, "reset all assignment counts")
		if err != nil {
			return err
		}
		reviewers = snap.Reviewers
		return nil
	})
	if err != nil {
		s.log.Error("failed to reset rotation", zap.String("team_id", teamId), zap.Error(err))
		return nil, mapError(err, ErrTeamNotFound, nil, resetError)
	}

	s.log.Info("rotation reset", zap.String("team_id", teamId), zap.Int("reviewers", len(reviewers)))

	return &response.ReviewersResponse{
		TeamId:    teamId,
		Reviewers: nonNil(reviewers),
	}, nil
}

// checkTags проверяет существование тегов и убирает дубликаты
func (s *ReviewerService) checkTags(ctx context.Context, teamId string, tagIds []string) ([]string, error) {
	tags := make([]string, 0, len(tagIds))
	for _, tagId := range tagIds {
		tagId = strings.TrimSpace(tagId)
		if tagId == "" || slices.Contains(tags, tagId) {
			continue
		}
		if _, err := s.repos.Tags.Get(ctx, teamId, tagId); err != nil {
			return nil, mapError(err, ErrTagNotFound, nil, errors.New("check tags error"))
		}
		tags = append(tags, tagId)
	}
	return tags, nil
}

func validateIdentity(name, email string) (string, string, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return "", "", errors.New("name is empty")
	}
	if !strings.Contains(email, "@") {
		return "", "", errors.New("email is invalid")
	}
	return name, email, nil
}

// emailInUse сравнивает без учёта регистра
func emailInUse(reviewers []*domain.Reviewer, email, exceptId string) bool {
	key := normalizeEmail(email)
	for _, r := range reviewers {
		if r.Id != exceptId && normalizeEmail(r.Email) == key {
			return true
		}
	}
	return false
}

func normalizePair(teamId, reviewerId string) (string, string, error) {
	teamId, err := normalizeID(teamId, "team_id")
	if err != nil {
		return "", "", err
	}
	reviewerId, err = normalizeID(reviewerId, "reviewer_id")
	if err != nil {
		return "", "", err
	}
	return teamId, reviewerId, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
