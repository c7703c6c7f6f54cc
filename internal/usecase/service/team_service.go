package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/niklvrr/ReviewerRotation/internal/infrastructure/models/dto"
	"github.com/niklvrr/ReviewerRotation/internal/transport/dto/request"
	"github.com/niklvrr/ReviewerRotation/internal/transport/dto/response"
	"go.uber.org/zap"
)

var (
	createTeamError = errors.New("create team error")
	getTeamError    = errors.New("get team error")
)

type TeamService struct {
	repos *Repositories
	log   *zap.Logger
}

func NewTeamService(repos *Repositories, log *zap.Logger) *TeamService {
	return &TeamService{
		repos: repos,
		log:   log,
	}
}

func (s *TeamService) Create(ctx context.Context, req *request.CreateTeamRequest) (*response.TeamResponse, error) {
	s.log.Info("create team request accepted", zap.String("team_name", req.TeamName))

	name := strings.TrimSpace(req.TeamName)
	if name == "" {
		return nil, WrapError(ErrInvalidInput, errors.New("team_name is empty"))
	}

	// Собираем dto
	d := &dto.AddTeamDTO{
		Id:        uuid.NewString(),
		Name:      name,
		CreatedAt: now(),
	}

	// Запрос в бд
	team, err := s.repos.Teams.Add(ctx, d)
	if err != nil {
		s.log.Error("failed to create team", zap.String("team_name", name), zap.Error(err))
		return nil, mapError(err, nil, ErrTeamExists, createTeamError)
	}

	s.log.Info("team created", zap.String("team_id", team.Id), zap.String("team_name", team.Name))

	// Ответ
	return &response.TeamResponse{Team: team}, nil
}

func (s *TeamService) Get(ctx context.Context, req *request.GetTeamRequest) (*response.TeamResponse, error) {
	teamId, err := normalizeID(req.TeamId, "team_id")
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}

	team, err := s.repos.Teams.Get(ctx, teamId)
	if err != nil {
		return nil, mapError(err, ErrTeamNotFound, nil, getTeamError)
	}

	return &response.TeamResponse{Team: team}, nil
}
