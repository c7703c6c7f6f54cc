package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/niklvrr/ReviewerRotation/internal/domain"
	"github.com/niklvrr/ReviewerRotation/internal/infrastructure/models/dto"
	"go.uber.org/zap"
)

const (
	eventColumns = `id, team_id, reviewer_id, reviewer_name, ts, seq, forced, skipped, is_absent_skip, tag_id, action_by, pr_url`

	insertEventQuery = `
INSERT INTO assignment_events (id, team_id, reviewer_id, reviewer_name, ts, forced, skipped, is_absent_skip, tag_id, action_by, pr_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING ` + eventColumns + `;`

	// Оставляем keep самых новых событий
	pruneEventsQuery = `
DELETE FROM assignment_events
WHERE team_id = $1
  AND id NOT IN (
    SELECT id FROM assignment_events
    WHERE team_id = $1
    ORDER BY ts DESC, seq DESC
    LIMIT $2
  );`

	newestEventQuery = `
SELECT ` + eventColumns + `
FROM assignment_events
WHERE team_id = $1
ORDER BY ts DESC, seq DESC
LIMIT 1;`

	deleteEventQuery = `
DELETE FROM assignment_events
WHERE team_id = $1 AND id = $2;`

	listEventsQuery = `
SELECT ` + eventColumns + `
FROM assignment_events
WHERE team_id = $1
  AND ($3 OR NOT is_absent_skip)
ORDER BY ts DESC, seq DESC
LIMIT $2;`

	clearEventsQuery = `
DELETE FROM assignment_events
WHERE team_id = $1;`
)

type LedgerRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewLedgerRepository(db *pgxpool.Pool, log *zap.Logger) *LedgerRepository {
	return &LedgerRepository{
		db:  db,
		log: log,
	}
}

func scanEvent(row pgx.Row) (*domain.AssignmentEvent, error) {
	e := &domain.AssignmentEvent{}
	err := row.Scan(
		&e.Id,
		&e.TeamId,
		&e.ReviewerId,
		&e.ReviewerName,
		&e.Timestamp,
		&e.Seq,
		&e.Forced,
		&e.Skipped,
		&e.IsAbsentSkip,
		&e.TagId,
		&e.ActionBy,
		&e.PrUrl,
	)
	return e, err
}

func (r *LedgerRepository) Append(ctx context.Context, d *dto.AppendEventDTO) (*domain.AssignmentEvent, error) {
	row := getQuerier(ctx, r.db, d.TeamId).QueryRow(ctx, insertEventQuery,
		d.Id,
		d.TeamId,
		d.ReviewerId,
		d.ReviewerName,
		d.Timestamp,
		d.Forced,
		d.Skipped,
		d.IsAbsentSkip,
		d.TagId,
		d.ActionBy,
		d.PrUrl,
	)
	e, err := scanEvent(row)
	if err != nil {
		r.log.Debug("append event failed", zap.String("team_id", d.TeamId), zap.Error(err))
		return nil, handleDBError(err)
	}
	return e, nil
}

func (r *LedgerRepository) Prune(ctx context.Context, teamId string, keep int) error {
	tag, err := getQuerier(ctx, r.db, teamId).Exec(ctx, pruneEventsQuery, teamId, keep)
	if err != nil {
		return handleDBError(err)
	}
	if n := tag.RowsAffected(); n > 0 {
		r.log.Debug("ledger pruned", zap.String("team_id", teamId), zap.Int64("removed", n))
	}
	return nil
}

func (r *LedgerRepository) Newest(ctx context.Context, teamId string) (*domain.AssignmentEvent, error) {
	e, err := scanEvent(getQuerier(ctx, r.db, teamId).QueryRow(ctx, newestEventQuery, teamId))
	if err != nil {
		return nil, notFound("assignment event", err)
	}
	return e, nil
}

func (r *LedgerRepository) Delete(ctx context.Context, teamId, eventId string) error {
	tag, err := getQuerier(ctx, r.db, teamId).Exec(ctx, deleteEventQuery, teamId, eventId)
	if err != nil {
		return handleDBError(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("assignment event %w", domain.ErrNotFound)
	}
	return nil
}

func (r *LedgerRepository) List(ctx context.Context, teamId string, limit int, includeAbsentSkips bool) ([]*domain.AssignmentEvent, error) {
	rows, err := getQuerier(ctx, r.db, teamId).Query(ctx, listEventsQuery, teamId, limit, includeAbsentSkips)
	if err != nil {
		return nil, handleDBError(err)
	}
	defer rows.Close()

	var events []*domain.AssignmentEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, handleDBError(err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, handleDBError(err)
	}

	return events, nil
}

func (r *LedgerRepository) Clear(ctx context.Context, teamId string) error {
	_, err := getQuerier(ctx, r.db, teamId).Exec(ctx, clearEventsQuery, teamId)
	return handleDBError(err)
}
