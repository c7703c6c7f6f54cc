package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/niklvrr/ReviewerRotation/internal/domain"
	"go.uber.org/zap"
)

const (
	insertFeedItemQuery = `
INSERT INTO feed_items (team_id, event_id, reviewer_id, reviewer_name, ts, seq, forced, skipped, tag_id, action_by, pr_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`

	trimFeedQuery = `
DELETE FROM feed_items
WHERE team_id = $1
  AND event_id NOT IN (
    SELECT event_id FROM feed_items
    WHERE team_id = $1
    ORDER BY ts DESC, seq DESC
    LIMIT $2
  );`

	listFeedQuery = `
SELECT event_id, reviewer_id, reviewer_name, ts, seq, forced, skipped, tag_id, action_by, pr_url
FROM feed_items
WHERE team_id = $1
ORDER BY ts DESC, seq DESC;`

	clearFeedQuery = `
DELETE FROM feed_items
WHERE team_id = $1;`
)

type FeedRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewFeedRepository(db *pgxpool.Pool, log *zap.Logger) *FeedRepository {
	return &FeedRepository{
		db:  db,
		log: log,
	}
}

func queueFeedItem(b *pgx.Batch, teamId string, it *domain.FeedItem) {
	b.Queue(insertFeedItemQuery,
		teamId,
		it.EventId,
		it.ReviewerId,
		it.ReviewerName,
		it.Timestamp,
		it.Seq,
		it.Forced,
		it.Skipped,
		it.TagId,
		it.ActionBy,
		it.PrUrl,
	)
}

func (r *FeedRepository) exec(ctx context.Context, teamId string, b *pgx.Batch) error {
	br := getQuerier(ctx, r.db, teamId).SendBatch(ctx, b)
	defer br.Close()

	for i := 0; i < b.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			r.log.Debug("feed batch failed", zap.String("team_id", teamId), zap.Error(err))
			return handleDBError(err)
		}
	}
	return nil
}

// Record добавляет элемент в голову и обрезает ленту до size
func (r *FeedRepository) Record(ctx context.Context, teamId string, item *domain.FeedItem, size int) error {
	b := &pgx.Batch{}
	queueFeedItem(b, teamId, item)
	b.Queue(trimFeedQuery, teamId, size)
	return r.exec(ctx, teamId, b)
}

func (r *FeedRepository) Replace(ctx context.Context, teamId string, items []*domain.FeedItem) error {
	b := &pgx.Batch{}
	b.Queue(clearFeedQuery, teamId)
	for _, it := range items {
		queueFeedItem(b, teamId, it)
	}
	return r.exec(ctx, teamId, b)
}

func (r *FeedRepository) List(ctx context.Context, teamId string) ([]*domain.FeedItem, error) {
	rows, err := getQuerier(ctx, r.db, teamId).Query(ctx, listFeedQuery, teamId)
	if err != nil {
		return nil, handleDBError(err)
	}
	defer rows.Close()

	var items []*domain.FeedItem
	for rows.Next() {
		it := &domain.FeedItem{}
		err := rows.Scan(
			&it.EventId,
			&it.ReviewerId,
			&it.ReviewerName,
			&it.Timestamp,
			&it.Seq,
			&it.Forced,
			&it.Skipped,
			&it.TagId,
			&it.ActionBy,
			&it.PrUrl,
		)
		if err != nil {
			return nil, handleDBError(err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, handleDBError(err)
	}

	return items, nil
}

func (r *FeedRepository) Clear(ctx context.Context, teamId string) error {
	_, err := getQuerier(ctx, r.db, teamId).Exec(ctx, clearFeedQuery, teamId)
	return handleDBError(err)
}
