package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/niklvrr/ReviewerRotation/internal/domain"
	"github.com/niklvrr/ReviewerRotation/internal/infrastructure/models/dto"
)

var errReviewerNotFound = fmt.Errorf("reviewer %w", domain.ErrNotFound)

type ReviewerRepository struct {
	s *Store
}

func NewReviewerRepository(s *Store) *ReviewerRepository {
	return &ReviewerRepository{s: s}
}

func findReviewer(d *teamData, reviewerId string) (*domain.Reviewer, error) {
	for _, r := range d.reviewers {
		if r.Id == reviewerId {
			return r, nil
		}
	}
	return nil, errReviewerNotFound
}

func emailTaken(d *teamData, email, exceptId string) bool {
	key := nameKey(email)
	for _, r := range d.reviewers {
		if r.Id != exceptId && nameKey(r.Email) == key {
			return true
		}
	}
	return false
}

func (r *ReviewerRepository) List(ctx context.Context, teamId string) ([]*domain.Reviewer, error) {
	var out []*domain.Reviewer
	err := r.s.read(ctx, teamId, func(d *teamData) error {
		out = make([]*domain.Reviewer, 0, len(d.reviewers))
		for _, rv := range d.reviewers {
			out = append(out, rv.Clone())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Стабильная сортировка сохраняет порядок вставки при равном createdAt
	slices.SortStableFunc(out, func(a, b *domain.Reviewer) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

func (r *ReviewerRepository) Get(ctx context.Context, teamId, reviewerId string) (*domain.Reviewer, error) {
	var out *domain.Reviewer
	err := r.s.read(ctx, teamId, func(d *teamData) error {
		rv, err := findReviewer(d, reviewerId)
		if err != nil {
			return err
		}
		out = rv.Clone()
		return nil
	})
	return out, err
}

func (r *ReviewerRepository) Add(ctx context.Context, in *dto.AddReviewerDTO) (*domain.Reviewer, error) {
	var out *domain.Reviewer
	err := r.s.write(ctx, in.TeamId, func(d *teamData) error {
		if emailTaken(d, in.Email, "") {
			return fmt.Errorf("reviewer email %s: %w", in.Email, domain.ErrAlreadyExists)
		}

		rv := &domain.Reviewer{
			Id:              in.Id,
			TeamId:          in.TeamId,
			Name:            in.Name,
			Email:           in.Email,
			AssignmentCount: in.AssignmentCount,
			Tags:            slices.Clone(in.Tags),
			CreatedAt:       in.CreatedAt,
		}
		d.reviewers = append(d.reviewers, rv)
		out = rv.Clone()
		return nil
	})
	return out, err
}

func (r *ReviewerRepository) Update(ctx context.Context, in *dto.UpdateReviewerDTO) (*domain.Reviewer, error) {
	return r.mutate(ctx, in.TeamId, in.ReviewerId, func(d *teamData, rv *domain.Reviewer) error {
		if in.Email != nil {
			if emailTaken(d, *in.Email, rv.Id) {
				return fmt.Errorf("reviewer email %s: %w", *in.Email, domain.ErrAlreadyExists)
			}
			rv.Email = *in.Email
		}
		if in.Name != nil {
			rv.Name = *in.Name
		}
		if in.SetTags {
			rv.Tags = slices.Clone(in.Tags)
		}
		return nil
	})
}

func (r *ReviewerRepository) SetAbsence(ctx context.Context, in *dto.SetAbsenceDTO) (*domain.Reviewer, error) {
	return r.mutate(ctx, in.TeamId, in.ReviewerId, func(_ *teamData, rv *domain.Reviewer) error {
		rv.IsAbsent = in.IsAbsent
		rv.AbsentUntil = in.AbsentUntil
		rv.AssignmentCount = in.AssignmentCount
		return nil
	})
}

func (r *ReviewerRepository) SetAssignmentCount(ctx context.Context, in *dto.SetAssignmentCountDTO) (*domain.Reviewer, error) {
	if in.AssignmentCount < 0 {
		return nil, fmt.Errorf("assignment count %d: %w", in.AssignmentCount, domain.ErrInvalidInput)
	}
	return r.mutate(ctx, in.TeamId, in.ReviewerId, func(_ *teamData, rv *domain.Reviewer) error {
		rv.AssignmentCount = in.AssignmentCount
		return nil
	})
}

func (r *ReviewerRepository) IncrementCount(ctx context.Context, teamId, reviewerId string) (*domain.Reviewer, error) {
	return r.mutate(ctx, teamId, reviewerId, func(_ *teamData, rv *domain.Reviewer) error {
		rv.AssignmentCount++
		return nil
	})
}

func (r *ReviewerRepository) DecrementCount(ctx context.Context, teamId, reviewerId string) (*domain.Reviewer, error) {
	return r.mutate(ctx, teamId, reviewerId, func(_ *teamData, rv *domain.Reviewer) error {
		if rv.AssignmentCount > 0 {
			rv.AssignmentCount--
		}
		return nil
	})
}

func (r *ReviewerRepository) Delete(ctx context.Context, teamId, reviewerId string) error {
	return r.s.write(ctx, teamId, func(d *teamData) error {
		i := slices.IndexFunc(d.reviewers, func(rv *domain.Reviewer) bool { return rv.Id == reviewerId })
		if i < 0 {
			return errReviewerNotFound
		}
		d.reviewers = slices.Delete(d.reviewers, i, i+1)
		return nil
	})
}

func (r *ReviewerRepository) ResetCounts(ctx context.Context, teamId string) error {
	return r.s.write(ctx, teamId, func(d *teamData) error {
		for _, rv := range d.reviewers {
			rv.AssignmentCount = 0
		}
		return nil
	})
}

func (r *ReviewerRepository) ReplaceAll(ctx context.Context, teamId string, reviewers []*domain.Reviewer) error {
	return r.s.write(ctx, teamId, func(d *teamData) error {
		next := make([]*domain.Reviewer, 0, len(reviewers))
		seen := make(map[string]struct{}, len(reviewers))
		for _, rv := range reviewers {
			key := nameKey(rv.Email)
			if _, ok := seen[key]; ok {
				return fmt.Errorf("reviewer email %s: %w", rv.Email, domain.ErrAlreadyExists)
			}
			seen[key] = struct{}{}

			c := rv.Clone()
			c.TeamId = teamId
			next = append(next, c)
		}
		d.reviewers = next
		return nil
	})
}

func (r *ReviewerRepository) RemoveTag(ctx context.Context, teamId, tagId string) error {
	return r.s.write(ctx, teamId, func(d *teamData) error {
		for _, rv := range d.reviewers {
			rv.Tags = slices.DeleteFunc(rv.Tags, func(t string) bool { return t == tagId })
		}
		return nil
	})
}

func (r *ReviewerRepository) mutate(ctx context.Context, teamId, reviewerId string, fn func(d *teamData, rv *domain.Reviewer) error) (*domain.Reviewer, error) {
	var out *domain.Reviewer
	err := r.s.write(ctx, teamId, func(d *teamData) error {
		rv, err := findReviewer(d, reviewerId)
		if err != nil {
			return err
		}
		if err := fn(d, rv); err != nil {
			return err
		}
		out = rv.Clone()
		return nil
	})
	return out, err
}
