package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/niklvrr/ReviewerRotation/internal/domain"
	"github.com/niklvrr/ReviewerRotation/internal/infrastructure/models/dto"
	"github.com/niklvrr/ReviewerRotation/internal/transport/dto/request"
	"github.com/niklvrr/ReviewerRotation/internal/transport/dto/response"
	"go.uber.org/zap"
)

var (
	listTagsError  = errors.New("list tags error")
	getTagError    = errors.New("get tag error")
	createTagError = errors.New("create tag error")
	updateTagError = errors.New("update tag error")
	deleteTagError = errors.New("delete tag error")
)

type TagService struct {
	repos *Repositories
	log   *zap.Logger
}

func NewTagService(repos *Repositories, log *zap.Logger) *TagService {
	return &TagService{
		repos: repos,
		log:   log,
	}
}

func (s *TagService) List(ctx context.Context, req *request.ListTagsRequest) (*response.TagsResponse, error) {
	teamId, err := normalizeID(req.TeamId, "team_id")
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}

	if err := ensureTeam(ctx, s.repos, teamId); err != nil {
		return nil, mapError(err, ErrTeamNotFound, nil, listTagsError)
	}

	tags, err := s.repos.Tags.List(ctx, teamId)
	if err != nil {
		s.log.Error("failed to list tags", zap.String("team_id", teamId), zap.Error(err))
		return nil, mapError(err, nil, nil, listTagsError)
	}

	return &response.TagsResponse{
		TeamId: teamId,
		Tags:   nonNil(tags),
	}, nil
}

func (s *TagService) Get(ctx context.Context, req *request.GetTagRequest) (*response.TagResponse, error) {
	teamId, tagId, err := normalizeTagPair(req.TeamId, req.TagId)
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}

	tag, err := s.repos.Tags.Get(ctx, teamId, tagId)
	if err != nil {
		return nil, mapError(err, ErrTagNotFound, nil, getTagError)
	}

	return &response.TagResponse{Tag: tag}, nil
}

func (s *TagService) Create(ctx context.Context, req *request.CreateTagRequest) (*response.TagResponse, error) {
	s.log.Info("create tag request accepted",
		zap.String("team_id", req.TeamId),
		zap.String("name", req.Name),
	)

	teamId, err := normalizeID(req.TeamId, "team_id")
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}
	name, color := strings.TrimSpace(req.Name), strings.TrimSpace(req.Color)
	if name == "" || color == "" {
		return nil, WrapError(ErrInvalidInput, errors.New("tag name and color are required"))
	}

	var tag *domain.Tag
	err = s.repos.Tx.RunInTeamTx(ctx, teamId, func(ctx context.Context) error {
		existing, err := s.repos.Tags.List(ctx, teamId)
		if err != nil {
			return err
		}
		if nameInUse(existing, name, "") {
			return ErrTagExists
		}

		// Запрос в бд
		tag, err = s.repos.Tags.Add(ctx, &dto.AddTagDTO{
			Id:          uuid.NewString(),
			TeamId:      teamId,
			Name:        name,
			Color:       color,
			Description: trimOptional(req.Description),
			CreatedAt:   now(),
		})
		return err
	})
	if err != nil {
		s.log.Error("failed to create tag", zap.String("team_id", teamId), zap.Error(err))
		return nil, mapError(err, nil, ErrTagExists, createTagError)
	}

	s.log.Info("tag created", zap.String("team_id", teamId), zap.String("tag_id", tag.Id))
	return &response.TagResponse{Tag: tag}, nil
}

func (s *TagService) Update(ctx context.Context, req *request.UpdateTagRequest) (*response.TagResponse, error) {
	teamId, tagId, err := normalizeTagPair(req.TeamId, req.TagId)
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}

	d := &dto.UpdateTagDTO{
		TeamId:      teamId,
		TagId:       tagId,
		Description: req.Description,
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, WrapError(ErrInvalidInput, errors.New("tag name is empty"))
		}
		d.Name = &name
	}
	if req.Color != nil {
		color := strings.TrimSpace(*req.Color)
		if color == "" {
			return nil, WrapError(ErrInvalidInput, errors.New("tag color is empty"))
		}
		d.Color = &color
	}

	var tag *domain.Tag
	err = s.repos.Tx.RunInTeamTx(ctx, teamId, func(ctx context.Context) error {
		if d.Name != nil {
			existing, err := s.repos.Tags.List(ctx, teamId)
			if err != nil {
				return err
			}
			if nameInUse(existing, *d.Name, tagId) {
				return ErrTagExists
			}
		}

		tag, err = s.repos.Tags.Update(ctx, d)
		return err
	})
	if err != nil {
		s.log.Error("failed to update tag",
			zap.String("team_id", teamId),
			zap.String("tag_id", tagId),
			zap.Error(err),
		)
		return nil, mapError(err, ErrTagNotFound, ErrTagExists, updateTagError)
	}

	return &response.TagResponse{Tag: tag}, nil
}

// Delete убирает тег у всех ревьюеров и из реестра
func (s *TagService) Delete(ctx context.Context, req *request.DeleteTagRequest) error {
	s.log.Info("delete tag request accepted",
		zap.String("team_id", req.TeamId),
		zap.String("tag_id", req.TagId),
	)

	teamId, tagId, err := normalizeTagPair(req.TeamId, req.TagId)
	if err != nil {
		return WrapError(ErrInvalidInput, err)
	}

	err = s.repos.Tx.RunInTeamTx(ctx, teamId, func(ctx context.Context) error {
		tag, err := s.repos.Tags.Get(ctx, teamId, tagId)
		if err != nil {
			return err
		}

		if err := s.repos.Reviewers.RemoveTag(ctx, teamId, tagId); err != nil {
			return err
		}
		if err := s.repos.Tags.Delete(ctx, teamId, tagId); err != nil {
			return err
		}

		_, err = checkpoint(ctx, s.repos, s.log, teamId, fmt.Sprintf("deleted tag %s", tag.Name))
		return err
	})
	if err != nil {
		s.log.Error("failed to delete tag",
			zap.String("team_id", teamId),
			zap.String("tag_id", tagId),
			zap.Error(err),
		)
		return mapError(err, ErrTagNotFound, nil, deleteTagError)
	}

	s.log.Info("tag deleted", zap.String("team_id", teamId), zap.String("tag_id", tagId))
	return nil
}

func nameInUse(tags []*domain.Tag, name, exceptId string) bool {
	for _, t := range tags {
		if t.Id != exceptId && strings.EqualFold(t.Name, name) {
			return true
		}
	}
	return false
}

func normalizeTagPair(teamId, tagId string) (string, string, error) {
	teamId, err := normalizeID(teamId, "team_id")
	if err != nil {
		return "", "", err
	}
	tagId, err = normalizeID(tagId, "tag_id")
	if err != nil {
		return "", "", err
	}
	return teamId, tagId, nil
}
