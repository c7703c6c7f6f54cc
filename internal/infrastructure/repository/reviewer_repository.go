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
	reviewerColumns = `id, team_id, name, email, assignment_count, is_absent, absent_until, tags, created_at`

	listReviewersQuery = `
SELECT ` + reviewerColumns + `
FROM reviewers
WHERE team_id = $1
ORDER BY created_at ASC, seq ASC;`

	getReviewerQuery = `
SELECT ` + reviewerColumns + `
FROM reviewers
WHERE team_id = $1 AND id = $2;`

	insertReviewerQuery = `
INSERT INTO reviewers (id, team_id, name, email, assignment_count, is_absent, absent_until, tags, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + reviewerColumns + `;`

	updateReviewerQuery = `
UPDATE reviewers
SET name  = COALESCE($3, name),
    email = COALESCE($4, email),
    tags  = CASE WHEN $5::boolean THEN $6::text[] ELSE tags END
WHERE team_id = $1 AND id = $2
RETURNING ` + reviewerColumns + `;`

	setAbsenceQuery = `
UPDATE reviewers
SET is_absent = $3,
    absent_until = $4,
    assignment_count = $5
WHERE team_id = $1 AND id = $2
RETURNING ` + reviewerColumns + `;`

	setCountQuery = `
UPDATE reviewers
SET assignment_count = $3
WHERE team_id = $1 AND id = $2
RETURNING ` + reviewerColumns + `;`

	incrementCountQuery = `
UPDATE reviewers
SET assignment_count = assignment_count + 1
WHERE team_id = $1 AND id = $2
RETURNING ` + reviewerColumns + `;`

	decrementCountQuery = `
UPDATE reviewers
SET assignment_count = GREATEST(assignment_count - 1, 0)
WHERE team_id = $1 AND id = $2
RETURNING ` + reviewerColumns + `;`

	deleteReviewerQuery = `
DELETE FROM reviewers
WHERE team_id = $1 AND id = $2;`

	deleteAllReviewersQuery = `
DELETE FROM reviewers
WHERE team_id = $1;`

	resetCountsQuery = `
UPDATE reviewers
SET assignment_count = 0
WHERE team_id = $1;`

	removeTagQuery = `
UPDATE reviewers
SET tags = array_remove(tags, $2)
WHERE team_id = $1 AND $2 = ANY(tags);`
)

type ReviewerRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewReviewerRepository(db *pgxpool.Pool, log *zap.Logger) *ReviewerRepository {
	return &ReviewerRepository{
		db:  db,
		log: log,
	}
}

func scanReviewer(row pgx.Row) (*domain.Reviewer, error) {
	r := &domain.Reviewer{}
	err := row.Scan(
		&r.Id,
		&r.TeamId,
		&r.Name,
		&r.Email,
		&r.AssignmentCount,
		&r.IsAbsent,
		&r.AbsentUntil,
		&r.Tags,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}
	return r, nil
}

func (r *ReviewerRepository) List(ctx context.Context, teamId string) ([]*domain.Reviewer, error) {
	rows, err := getQuerier(ctx, r.db, teamId).Query(ctx, listReviewersQuery, teamId)
	if err != nil {
		return nil, handleDBError(err)
	}
	defer rows.Close()

	var reviewers []*domain.Reviewer
	for rows.Next() {
		rv, err := scanReviewer(rows)
		if err != nil {
			return nil, handleDBError(err)
		}
		reviewers = append(reviewers, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, handleDBError(err)
	}

	return reviewers, nil
}

func (r *ReviewerRepository) Get(ctx context.Context, teamId, reviewerId string) (*domain.Reviewer, error) {
	row := getQuerier(ctx, r.db, teamId).QueryRow(ctx, getReviewerQuery, teamId, reviewerId)
	rv, err := scanReviewer(row)
	if err != nil {
		return nil, notFound("reviewer", err)
	}
	return rv, nil
}

func (r *ReviewerRepository) Add(ctx context.Context, d *dto.AddReviewerDTO) (*domain.Reviewer, error) {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}

	row := getQuerier(ctx, r.db, d.TeamId).QueryRow(ctx, insertReviewerQuery,
		d.Id,
		d.TeamId,
		d.Name,
		d.Email,
		d.AssignmentCount,
		false,
		nil,
		tags,
		d.CreatedAt,
	)
	rv, err := scanReviewer(row)
	if err != nil {
		r.log.Debug("insert reviewer failed", zap.String("team_id", d.TeamId), zap.Error(err))
		return nil, handleDBError(err)
	}
	return rv, nil
}

func (r *ReviewerRepository) Update(ctx context.Context, d *dto.UpdateReviewerDTO) (*domain.Reviewer, error) {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}

	row := getQuerier(ctx, r.db, d.TeamId).QueryRow(ctx, updateReviewerQuery,
		d.TeamId,
		d.ReviewerId,
		d.Name,
		d.Email,
		d.SetTags,
		tags,
	)
	rv, err := scanReviewer(row)
	if err != nil {
		return nil, notFound("reviewer", err)
	}
	return rv, nil
}

func (r *ReviewerRepository) SetAbsence(ctx context.Context, d *dto.SetAbsenceDTO) (*domain.Reviewer, error) {
	row := getQuerier(ctx, r.db, d.TeamId).QueryRow(ctx, setAbsenceQuery,
		d.TeamId,
		d.ReviewerId,
		d.IsAbsent,
		d.AbsentUntil,
		d.AssignmentCount,
	)
	rv, err := scanReviewer(row)
	if err != nil {
		return nil, notFound("reviewer", err)
	}
	return rv, nil
}

func (r *ReviewerRepository) SetAssignmentCount(ctx context.Context, d *dto.SetAssignmentCountDTO) (*domain.Reviewer, error) {
	row := getQuerier(ctx, r.db, d.TeamId).QueryRow(ctx, setCountQuery, d.TeamId, d.ReviewerId, d.AssignmentCount)
	rv, err := scanReviewer(row)
	if err != nil {
		return nil, notFound("reviewer", err)
	}
	return rv, nil
}

func (r *ReviewerRepository) IncrementCount(ctx context.Context, teamId, reviewerId string) (*domain.Reviewer, error) {
	row := getQuerier(ctx, r.db, teamId).QueryRow(ctx, incrementCountQuery, teamId, reviewerId)
	rv, err := scanReviewer(row)
	if err != nil {
		return nil, notFound("reviewer", err)
	}
	return rv, nil
}

// DecrementCount не опускает счётчик ниже нуля
func (r *ReviewerRepository) DecrementCount(ctx context.Context, teamId, reviewerId string) (*domain.Reviewer, error) {
	row := getQuerier(ctx, r.db, teamId).QueryRow(ctx, decrementCountQuery, teamId, reviewerId)
	rv, err := scanReviewer(row)
	if err != nil {
		return nil, notFound("reviewer", err)
	}
	return rv, nil
}

func (r *ReviewerRepository) Delete(ctx context.Context, teamId, reviewerId string) error {
	tag, err := getQuerier(ctx, r.db, teamId).Exec(ctx, deleteReviewerQuery, teamId, reviewerId)
	if err != nil {
		return handleDBError(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("reviewer %w", domain.ErrNotFound)
	}
	return nil
}

func (r *ReviewerRepository) ResetCounts(ctx context.Context, teamId string) error {
	_, err := getQuerier(ctx, r.db, teamId).Exec(ctx, resetCountsQuery, teamId)
	return handleDBError(err)
}

// ReplaceAll переписывает пул одним батчем, порядок вставки сохраняет порядок снимка
func (r *ReviewerRepository) ReplaceAll(ctx context.Context, teamId string, reviewers []*domain.Reviewer) error {
	b := &pgx.Batch{}
	b.Queue(deleteAllReviewersQuery, teamId)
	for _, rv := range reviewers {
		tags := rv.Tags
		if tags == nil {
			tags = []string{}
		}
		b.Queue(insertReviewerQuery,
			rv.Id,
			teamId,
			rv.Name,
			rv.Email,
			rv.AssignmentCount,
			rv.IsAbsent,
			rv.AbsentUntil,
			tags,
			rv.CreatedAt,
		)
	}

	br := getQuerier(ctx, r.db, teamId).SendBatch(ctx, b)
	defer br.Close()

	for i := 0; i < b.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			r.log.Debug("replace reviewers failed", zap.String("team_id", teamId), zap.Int("statement", i), zap.Error(err))
			return handleDBError(err)
		}
	}
	return nil
}

func (r *ReviewerRepository) RemoveTag(ctx context.Context, teamId, tagId string) error {
	_, err := getQuerier(ctx, r.db, teamId).Exec(ctx, removeTagQuery, teamId, tagId)
	return handleDBError(err)
}
