package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/niklvrr/ReviewerRotation/internal/domain"
	"github.com/niklvrr/ReviewerRotation/internal/infrastructure/models/dto"
	"go.uber.org/zap"
)

const (
	snapshotColumns = `id, team_id, reason, reviewers, created_at`

	insertSnapshotQuery = `
INSERT INTO snapshots (id, team_id, reason, reviewers, created_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + snapshotColumns + `;`

	pruneSnapshotsQuery = `
DELETE FROM snapshots
WHERE team_id = $1
  AND id NOT IN (
    SELECT id FROM snapshots
    WHERE team_id = $1
    ORDER BY created_at DESC, seq DESC
    LIMIT $2
  );`

	listSnapshotsQuery = `
SELECT ` + snapshotColumns + `
FROM snapshots
WHERE team_id = $1
ORDER BY created_at DESC, seq DESC;`

	getSnapshotQuery = `
SELECT ` + snapshotColumns + `
FROM snapshots
WHERE team_id = $1 AND id = $2;`
)

// SnapshotRepository хранит пул ревьюеров целиком в jsonb
type SnapshotRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewSnapshotRepository(db *pgxpool.Pool, log *zap.Logger) *SnapshotRepository {
	return &SnapshotRepository{
		db:  db,
		log: log,
	}
}

func scanSnapshot(row pgx.Row) (*domain.Snapshot, error) {
	s := &domain.Snapshot{}
	err := row.Scan(
		&s.Id,
		&s.TeamId,
		&s.Reason,
		&s.Reviewers,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if s.Reviewers == nil {
		s.Reviewers = []*domain.Reviewer{}
	}
	return s, nil
}

func (r *SnapshotRepository) Add(ctx context.Context, d *dto.CaptureSnapshotDTO) (*domain.Snapshot, error) {
	reviewers := d.Reviewers
	if reviewers == nil {
		reviewers = []*domain.Reviewer{}
	}

	row := getQuerier(ctx, r.db, d.TeamId).QueryRow(ctx, insertSnapshotQuery,
		d.Id,
		d.TeamId,
		d.Reason,
		reviewers,
		d.CreatedAt,
	)
	s, err := scanSnapshot(row)
	if err != nil {
		r.log.Debug("insert snapshot failed", zap.String("team_id", d.TeamId), zap.Error(err))
		return nil, handleDBError(err)
	}
	return s, nil
}

func (r *SnapshotRepository) Prune(ctx context.Context, teamId string, keep int) error {
	_, err := getQuerier(ctx, r.db, teamId).Exec(ctx, pruneSnapshotsQuery, teamId, keep)
	return handleDBError(err)
}

func (r *SnapshotRepository) List(ctx context.Context, teamId string) ([]*domain.Snapshot, error) {
	rows, err := getQuerier(ctx, r.db, teamId).Query(ctx, listSnapshotsQuery, teamId)
	if err != nil {
		return nil, handleDBError(err)
	}
	defer rows.Close()

	var snapshots []*domain.Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, handleDBError(err)
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, handleDBError(err)
	}

	return snapshots, nil
}

// Get фильтрует по команде, снимок другой команды не найден
func (r *SnapshotRepository) Get(ctx context.Context, teamId, snapshotId string) (*domain.Snapshot, error) {
	s, err := scanSnapshot(getQuerier(ctx, r.db, teamId).QueryRow(ctx, getSnapshotQuery, teamId, snapshotId))
	if err != nil {
		return nil, notFound("snapshot", err)
	}
	return s, nil
}
