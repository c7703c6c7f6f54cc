package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/niklvrr/ReviewerRotation/internal/domain"
	"github.com/niklvrr/ReviewerRotation/internal/infrastructure/models/dto"
)

var errTagNotFound = fmt.Errorf("tag %w", domain.ErrNotFound)

type TagRepository struct {
	s *Store
}

func NewTagRepository(s *Store) *TagRepository {
	return &TagRepository{s: s}
}

func tagNameTaken(d *teamData, name, exceptId string) bool {
	key := nameKey(name)
	for _, t := range d.tags {
		if t.Id != exceptId && nameKey(t.Name) == key {
			return true
		}
	}
	return false
}

func (r *TagRepository) List(ctx context.Context, teamId string) ([]*domain.Tag, error) {
	var out []*domain.Tag
	err := r.s.read(ctx, teamId, func(d *teamData) error {
		out = make([]*domain.Tag, 0, len(d.tags))
		for _, t := range d.tags {
			out = append(out, cloneTag(t))
		}
		return nil
	})
	return out, err
}

func (r *TagRepository) Get(ctx context.Context, teamId, tagId string) (*domain.Tag, error) {
	var out *domain.Tag
	err := r.s.read(ctx, teamId, func(d *teamData) error {
		for _, t := range d.tags {
			if t.Id == tagId {
				out = cloneTag(t)
				return nil
			}
		}
		return errTagNotFound
	})
	return out, err
}

func (r *TagRepository) Add(ctx context.Context, in *dto.AddTagDTO) (*domain.Tag, error) {
	var out *domain.Tag
	err := r.s.write(ctx, in.TeamId, func(d *teamData) error {
		if tagNameTaken(d, in.Name, "") {
			return fmt.Errorf("tag %q: %w", in.Name, domain.ErrAlreadyExists)
		}

		t := &domain.Tag{
			Id:          in.Id,
			TeamId:      in.TeamId,
			Name:        in.Name,
			Color:       in.Color,
			Description: in.Description,
			CreatedAt:   in.CreatedAt,
		}
		d.tags = append(d.tags, t)
		out = cloneTag(t)
		return nil
	})
	return out, err
}

func (r *TagRepository) Update(ctx context.Context, in *dto.UpdateTagDTO) (*domain.Tag, error) {
	var out *domain.Tag
	err := r.s.write(ctx, in.TeamId, func(d *teamData) error {
		i := slices.IndexFunc(d.tags, func(t *domain.Tag) bool { return t.Id == in.TagId })
		if i < 0 {
			return errTagNotFound
		}
		t := d.tags[i]

		if in.Name != nil {
			if tagNameTaken(d, *in.Name, t.Id) {
				return fmt.Errorf("tag %q: %w", *in.Name, domain.ErrAlreadyExists)
			}
			t.Name = *in.Name
		}
		if in.Color != nil {
			t.Color = *in.Color
		}
		if in.Description != nil {
			t.Description = in.Description
		}
		out = cloneTag(t)
		return nil
	})
	return out, err
}

func (r *TagRepository) Delete(ctx context.Context, teamId, tagId string) error {
	return r.s.write(ctx, teamId, func(d *teamData) error {
		i := slices.IndexFunc(d.tags, func(t *domain.Tag) bool { return t.Id == tagId })
		if i < 0 {
			return errTagNotFound
		}
		d.tags = slices.Delete(d.tags, i, i+1)
		return nil
	})
}
