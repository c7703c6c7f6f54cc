package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/niklvrr/ReviewerRotation/internal/domain"
	"github.com/niklvrr/ReviewerRotation/internal/transport/dto/request"
	"github.com/niklvrr/ReviewerRotation/internal/transport/dto/response"
	"go.uber.org/zap"
)

var (
	listSnapshotsError   = errors.New("list snapshots error")
	captureSnapshotError = errors.New("capture snapshot error")
	restoreSnapshotError = errors.New("restore snapshot error")
)

const manualSnapshotReason = "manual snapshot"

type SnapshotService struct {
	repos *Repositories
	log   *zap.Logger
}

func NewSnapshotService(repos *Repositories, log *zap.Logger) *SnapshotService {
	return &SnapshotService{
		repos: repos,
		log:   log,
	}
}

func (s *SnapshotService) List(ctx context.Context, req *request.ListSnapshotsRequest) (*response.SnapshotsResponse, error) {
	teamId, err := normalizeID(req.TeamId, "team_id")
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}

	if err := ensureTeam(ctx, s.repos, teamId); err != nil {
		return nil, mapError(err, ErrTeamNotFound, nil, listSnapshotsError)
	}

	snapshots, err := s.repos.Snapshots.List(ctx, teamId)
	if err != nil {
		s.log.Error("failed to list snapshots", zap.String("team_id", teamId), zap.Error(err))
		return nil, mapError(err, nil, nil, listSnapshotsError)
	}

	return &response.SnapshotsResponse{
		TeamId:    teamId,
		Snapshots: nonNil(snapshots),
	}, nil
}

// Capture ручной снимок пула, подчиняется тому же лимиту хранения
func (s *SnapshotService) Capture(ctx context.Context, req *request.CaptureSnapshotRequest) (*response.SnapshotResponse, error) {
	teamId, err := normalizeID(req.TeamId, "team_id")
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = manualSnapshotReason
	}

	var snap *domain.Snapshot
	err = s.repos.Tx.RunInTeamTx(ctx, teamId, func(ctx context.Context) error {
		snap, err = checkpoint(ctx, s.repos, s.log, teamId, reason)
		return err
	})
	if err != nil {
		s.log.Error("failed to capture snapshot", zap.String("team_id", teamId), zap.Error(err))
		return nil, mapError(err, nil, nil, captureSnapshotError)
	}

	s.log.Info("snapshot captured", zap.String("team_id", teamId), zap.String("snapshot_id", snap.Id))
	return &response.SnapshotResponse{Snapshot: snap}, nil
}

// Restore заменяет пул целиком. История назначений не откатывается, лента очищается.
func (s *SnapshotService) Restore(ctx context.Context, req *request.RestoreSnapshotRequest) (*response.RestoreResponse, error) {
	s.log.Info("restore request accepted",
		zap.String("team_id", req.TeamId),
		zap.String("snapshot_id", req.SnapshotId),
	)

	teamId, err := normalizeID(req.TeamId, "team_id")
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}
	snapshotId, err := normalizeID(req.SnapshotId, "snapshot_id")
	if err != nil {
		return nil, WrapError(ErrInvalidInput, err)
	}

	var source, snap *domain.Snapshot
	err = s.repos.Tx.RunInTeamTx(ctx, teamId, func(ctx context.Context) error {
		// Снимок чужой команды для нас не существует
		source, err = s.repos.Snapshots.Get(ctx, teamId, snapshotId)
		if err != nil {
			return mapError(err, ErrSnapshotNotFound, nil, restoreSnapshotError)
		}

		tags, err := s.repos.Tags.List(ctx, teamId)
		if err != nil {
			return err
		}
		known := make(map[string]struct{}, len(tags))
		for _, t := range tags {
			known[t.Id] = struct{}{}
		}

		reviewers := make([]*domain.Reviewer, 0, len(source.Reviewers))
		for _, r := range source.Reviewers {
			c := r.Clone()
			c.TeamId = teamId
			c.Tags = dropUnknownTags(c.Tags, known)
			reviewers = append(reviewers, c)
		}

		if err := s.repos.Reviewers.ReplaceAll(ctx, teamId, reviewers); err != nil {
			return err
		}
		if err := s.repos.Feed.Clear(ctx, teamId); err != nil {
			return err
		}

		reason := fmt.Sprintf("restored from snapshot of %s (%s)", source.CreatedAt.UTC().Format(time.RFC3339), source.Reason)
		snap, err = checkpoint(ctx, s.repos, s.log, teamId, reason)
		return err
	})
	if err != nil {
		s.log.Error("failed to restore snapshot",
			zap.String("team_id", teamId),
			zap.String("snapshot_id", snapshotId),
			zap.Error(err),
		)
		return nil, mapError(err, ErrSnapshotNotFound, ErrEmailTaken, restoreSnapshotError)
	}

	snapshotRestoresTotal.Inc()
	s.log.Info("snapshot restored",
		zap.String("team_id", teamId),
		zap.String("snapshot_id", snapshotId),
		zap.Int("reviewers", len(snap.Reviewers)),
	)

	return &response.RestoreResponse{
		RestoredFrom: source,
		Snapshot:     snap,
		Reviewers:    snap.Reviewers,
	}, nil
}

func dropUnknownTags(tags []string, known map[string]struct{}) []string {
	kept := make([]string, 0, len(tags))
	for _, t := range tags {
		if _, ok := known[t]; ok {
			kept = append(kept, t)
		}
	}
	return kept
}
