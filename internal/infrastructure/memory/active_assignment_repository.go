package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/niklvrr/ReviewerRotation/internal/domain"
	"github.com/niklvrr/ReviewerRotation/internal/infrastructure/models/dto"
)

var errActiveNotFound = fmt.Errorf("active assignment %w", domain.ErrNotFound)

type ActiveAssignmentRepository struct {
	s *Store
}

func NewActiveAssignmentRepository(s *Store) *ActiveAssignmentRepository {
	return &ActiveAssignmentRepository{s: s}
}

func (r *ActiveAssignmentRepository) Add(ctx context.Context, in *dto.CreateActiveAssignmentDTO) (*domain.ActiveAssignment, error) {
	a := &domain.ActiveAssignment{
		Id:         in.Id,
		TeamId:     in.TeamId,
		AssigneeId: in.AssigneeId,
		AssignerId: in.AssignerId,
		PrUrl:      in.PrUrl,
		Status:     domain.ActiveAssignmentPending,
		CreatedAt:  in.CreatedAt,
		UpdatedAt:  in.CreatedAt,
	}

	err := r.s.write(ctx, in.TeamId, func(d *teamData) error {
		d.active = append(d.active, a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	c := *a
	return &c, nil
}

func (r *ActiveAssignmentRepository) Get(ctx context.Context, teamId, id string) (*domain.ActiveAssignment, error) {
	var out *domain.ActiveAssignment
	err := r.s.read(ctx, teamId, func(d *teamData) error {
		for _, a := range d.active {
			if a.Id == id {
				c := *a
				out = &c
				return nil
			}
		}
		return errActiveNotFound
	})
	return out, err
}

func (r *ActiveAssignmentRepository) List(ctx context.Context, teamId string, reviewerId *string) ([]*domain.ActiveAssignment, error) {
	var out []*domain.ActiveAssignment
	err := r.s.read(ctx, teamId, func(d *teamData) error {
		out = make([]*domain.ActiveAssignment, 0, len(d.active))
		for _, a := range d.active {
			if reviewerId != nil && !a.IsParty(*reviewerId) {
				continue
			}
			c := *a
			out = append(out, &c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(out, func(a, b *domain.ActiveAssignment) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

func (r *ActiveAssignmentRepository) Delete(ctx context.Context, teamId, id string) error {
	return r.s.write(ctx, teamId, func(d *teamData) error {
		i := slices.IndexFunc(d.active, func(a *domain.ActiveAssignment) bool { return a.Id == id })
		if i < 0 {
			return errActiveNotFound
		}
		d.active = slices.Delete(d.active, i, i+1)
		return nil
	})
}
