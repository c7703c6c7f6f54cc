package memory

import (
	"context"
	"fmt"

	"github.com/niklvrr/ReviewerRotation/internal/domain"
	"github.com/niklvrr/ReviewerRotation/internal/infrastructure/models/dto"
)

type TeamRepository struct {
	s *Store
}

func NewTeamRepository(s *Store) *TeamRepository {
	return &TeamRepository{s: s}
}

func (r *TeamRepository) Add(ctx context.Context, d *dto.AddTeamDTO) (*domain.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := nameKey(d.Name)
	if _, ok := r.s.names[key]; ok {
		return nil, fmt.Errorf("team %q: %w", d.Name, domain.ErrAlreadyExists)
	}
	if _, ok := r.s.teams[d.Id]; ok {
		return nil, fmt.Errorf("team %s: %w", d.Id, domain.ErrAlreadyExists)
	}

	team := domain.Team{
		Id:        d.Id,
		Name:      d.Name,
		CreatedAt: d.CreatedAt,
	}
	r.s.teams[d.Id] = &teamState{data: &teamData{team: team}}
	r.s.names[key] = d.Id

	return &team, nil
}

func (r *TeamRepository) Get(ctx context.Context, teamId string) (*domain.Team, error) {
	var team domain.Team
	err := r.s.read(ctx, teamId, func(d *teamData) error {
		team = d.team
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &team, nil
}
