package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/niklvrr/ReviewerRotation/internal/domain"
	"github.com/niklvrr/ReviewerRotation/internal/infrastructure/models/dto"
)

var errSnapshotNotFound = fmt.Errorf("snapshot %w", domain.ErrNotFound)

type SnapshotRepository struct {
	s *Store
}

func NewSnapshotRepository(s *Store) *SnapshotRepository {
	return &SnapshotRepository{s: s}
}

func cloneSnapshot(snap *domain.Snapshot) *domain.Snapshot {
	c := *snap
	c.Reviewers = make([]*domain.Reviewer, 0, len(snap.Reviewers))
	for _, r := range snap.Reviewers {
		c.Reviewers = append(c.Reviewers, r.Clone())
	}
	return &c
}

func (r *SnapshotRepository) Add(ctx context.Context, in *dto.CaptureSnapshotDTO) (*domain.Snapshot, error) {
	snap := cloneSnapshot(&domain.Snapshot{
		Id:        in.Id,
		TeamId:    in.TeamId,
		Reason:    in.Reason,
		Reviewers: in.Reviewers,
		CreatedAt: in.CreatedAt,
	})

	err := r.s.write(ctx, in.TeamId, func(d *teamData) error {
		d.snapshots = append(d.snapshots, snap)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cloneSnapshot(snap), nil
}

func (r *SnapshotRepository) Prune(ctx context.Context, teamId string, keep int) error {
	return r.s.write(ctx, teamId, func(d *teamData) error {
		if len(d.snapshots) > keep {
			d.snapshots = slices.Clone(d.snapshots[len(d.snapshots)-keep:])
		}
		return nil
	})
}

func (r *SnapshotRepository) List(ctx context.Context, teamId string) ([]*domain.Snapshot, error) {
	var out []*domain.Snapshot
	err := r.s.read(ctx, teamId, func(d *teamData) error {
		out = make([]*domain.Snapshot, 0, len(d.snapshots))
		for i := len(d.snapshots) - 1; i >= 0; i-- {
			out = append(out, cloneSnapshot(d.snapshots[i]))
		}
		return nil
	})
	return out, err
}

func (r *SnapshotRepository) Get(ctx context.Context, teamId, snapshotId string) (*domain.Snapshot, error) {
	var out *domain.Snapshot
	err := r.s.read(ctx, teamId, func(d *teamData) error {
		for _, snap := range d.snapshots {
			if snap.Id == snapshotId {
				out = cloneSnapshot(snap)
				return nil
			}
		}
		return errSnapshotNotFound
	})
	return out, err
}
