package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/niklvrr/ReviewerRotation/internal/domain"
	"github.com/niklvrr/ReviewerRotation/internal/infrastructure/models/dto"
	"github.com/niklvrr/ReviewerRotation/internal/transport/dto/request"
	"github.com/niklvrr/ReviewerRotation/internal/transport/dto/response"
	"go.uber.org/zap"
)

var (
	createActiveError   = errors.New("create active assignment error")
	listActiveError     = errors.New("list active assignments error")
	completeActiveError = errors.New("complete active assignment error")
)

// ActiveAssignmentService ведёт долги по ревью и не трогает счётчики ротации
type ActiveAssignmentService struct {
	repos *Repositories
	log   *zap.Logger
}

func NewActiveAssignmentService(repos *Repositories, log *zap.Logger) *ActiveAssignmentService {
	return &ActiveAssignmentService{
		repos: repos,
		log:   log,
	}
}

func (s *ActiveAssignmentService) Create(ctx context.Context, req *request.CreateActiveAssignmentRequest) (*response.ActiveAssignmentResponse, error) {
	s.log.Info("create active assignment request accepted",
		zap.String("team_id", req.TeamId),
		zap.String("assignee_id", req.AssigneeId),
		zap.String("assigner_id", req.AssignerId),
	)

	teamId, assigneeId, err := normalizePair(req.TeamId, req.AssigneeId)
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}
	assignerId, err := normalizeID(req.AssignerId, "assigner_id")
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}

	var active *domain.ActiveAssignment
	err = s.repos.Tx.RunInTeamTx(ctx, teamId, func(ctx context.Context) error {
		// Обе стороны должны быть ревьюерами команды
		for _, id := range []string{assigneeId, assignerId} {
			if _, err := s.repos.Reviewers.Get(ctx, teamId, id); err != nil {
				return err
			}
		}

		active, err = s.repos.ActiveAssignments.Add(ctx, &dto.CreateActiveAssignmentDTO{
			Id:         uuid.NewString(),
			TeamId:     teamId,
			AssigneeId: assigneeId,
			AssignerId: assignerId,
			PrUrl:      trimOptional(req.PrUrl),
			CreatedAt:  now(),
		})
		return err
	})
	if err != nil {
		s.log.Error("failed to create active assignment", zap.String("team_id", teamId), zap.Error(err))
		return nil, mapError(err, ErrReviewerNotFound, nil, createActiveError)
	}

	s.log.Info("active assignment created",
		zap.String("team_id", teamId),
		zap.String("active_assignment_id", active.Id),
	)
	return &response.ActiveAssignmentResponse{ActiveAssignment: active}, nil
}

func (s *ActiveAssignmentService) List(ctx context.Context, req *request.ListActiveAssignmentsRequest) (*response.ActiveAssignmentsResponse, error) {
	teamId, err := normalizeID(req.TeamId, "team_id")
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}

	if err := ensureTeam(ctx, s.repos, teamId); err != nil {
		return nil, mapError(err, ErrTeamNotFound, nil, listActiveError)
	}

	items, err := s.repos.ActiveAssignments.List(ctx, teamId, trimOptional(req.ReviewerId))
	if err != nil {
		s.log.Error("failed to list active assignments", zap.String("team_id", teamId), zap.Error(err))
		return nil, mapError(err, nil, nil, listActiveError)
	}

	return &response.ActiveAssignmentsResponse{
		TeamId:            teamId,
		ActiveAssignments: nonNil(items),
	}, nil
}

// Complete закрывает долг удалением строки. Закрыть может только одна из сторон.
func (s *ActiveAssignmentService) Complete(ctx context.Context, req *request.CompleteActiveAssignmentRequest) error {
	s.log.Info("complete active assignment request accepted",
		zap.String("team_id", req.TeamId),
		zap.String("active_assignment_id", req.ActiveAssignmentId),
		zap.String("acting_reviewer_id", req.ActingReviewerId),
	)

	teamId, id, err := normalizePair(req.TeamId, req.ActiveAssignmentId)
	if err != nil {
		return WrapError(ErrInvalidInput, err)
	}
	actingId, err := normalizeID(req.ActingReviewerId, "acting_reviewer_id")
	if err != nil {
		return WrapError(ErrInvalidInput, err)
	}

	err = s.repos.Tx.RunInTeamTx(ctx, teamId, func(ctx context.Context) error {
		active, err := s.repos.ActiveAssignments.Get(ctx, teamId, id)
		if err != nil {
			return mapError(err, ErrActiveAssignmentNotFound, nil, completeActiveError)
		}
		if !active.IsParty(actingId) {
			return ErrNotParty
		}
		return s.repos.ActiveAssignments.Delete(ctx, teamId, id)
	})
	if err != nil {
		s.log.Error("failed to complete active assignment",
			zap.String("team_id", teamId),
			zap.String("active_assignment_id", id),
			zap.Error(err),
		)
		return mapError(err, ErrActiveAssignmentNotFound, nil, completeActiveError)
	}

	s.log.Info("active assignment completed",
		zap.String("team_id", teamId),
		zap.String("active_assignment_id", id),
	)
	return nil
}
