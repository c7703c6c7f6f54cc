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
	tagColumns = `id, team_id, name, color, description, created_at`

	listTagsQuery = `
SELECT ` + tagColumns + `
FROM tags
WHERE team_id = $1
ORDER BY created_at ASC, name ASC;`

	getTagQuery = `
SELECT ` + tagColumns + `
FROM tags
WHERE team_id = $1 AND id = $2;`

	insertTagQuery = `
INSERT INTO tags (id, team_id, name, color, description, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + tagColumns + `;`

	updateTagQuery = `
UPDATE tags
SET name        = COALESCE($3, name),
    color       = COALESCE($4, color),
    description = COALESCE($5, description)
WHERE team_id = $1 AND id = $2
RETURNING ` + tagColumns + `;`

	deleteTagQuery = `
DELETE FROM tags
WHERE team_id = $1 AND id = $2;`
)

type TagRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewTagRepository(db *pgxpool.Pool, log *zap.Logger) *TagRepository {
	return &TagRepository{
		db:  db,
		log: log,
	}
}

func scanTag(row pgx.Row) (*domain.Tag, error) {
	t := &domain.Tag{}
	err := row.Scan(
		&t.Id,
		&t.TeamId,
		&t.Name,
		&t.Color,
		&t.Description,
		&t.CreatedAt,
	)
	return t, err
}

func (r *TagRepository) List(ctx context.Context, teamId string) ([]*domain.Tag, error) {
	rows, err := getQuerier(ctx, r.db, teamId).Query(ctx, listTagsQuery, teamId)
	if err != nil {
		return nil, handleDBError(err)
	}
	defer rows.Close()

	var tags []*domain.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, handleDBError(err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, handleDBError(err)
	}

	return tags, nil
}

func (r *TagRepository) Get(ctx context.Context, teamId, tagId string) (*domain.Tag, error) {
	t, err := scanTag(getQuerier(ctx, r.db, teamId).QueryRow(ctx, getTagQuery, teamId, tagId))
	if err != nil {
		return nil, notFound("tag", err)
	}
	return t, nil
}

func (r *TagRepository) Add(ctx context.Context, d *dto.AddTagDTO) (*domain.Tag, error) {
	row := getQuerier(ctx, r.db, d.TeamId).QueryRow(ctx, insertTagQuery,
		d.Id,
		d.TeamId,
		d.Name,
		d.Color,
		d.Description,
		d.CreatedAt,
	)
	t, err := scanTag(row)
	if err != nil {
		r.log.Debug("insert tag failed", zap.String("team_id", d.TeamId), zap.Error(err))
		return nil, handleDBError(err)
	}
	return t, nil
}

func (r *TagRepository) Update(ctx context.Context, d *dto.UpdateTagDTO) (*domain.Tag, error) {
	row := getQuerier(ctx, r.db, d.TeamId).QueryRow(ctx, updateTagQuery,
		d.TeamId,
		d.TagId,
		d.Name,
		d.Color,
		d.Description,
	)
	t, err := scanTag(row)
	if err != nil {
		return nil, notFound("tag", err)
	}
	return t, nil
}

func (r *TagRepository) Delete(ctx context.Context, teamId, tagId string) error {
	tag, err := getQuerier(ctx, r.db, teamId).Exec(ctx, deleteTagQuery, teamId, tagId)
	if err != nil {
		return handleDBError(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("tag %w", domain.ErrNotFound)
	}
	return nil
}
