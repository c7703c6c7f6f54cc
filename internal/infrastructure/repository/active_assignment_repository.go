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
	activeColumns = `id, team_id, assignee_id, assigner_id, pr_url, status, created_at, updated_at`

	insertActiveQuery = `
INSERT INTO active_assignments (id, team_id, assignee_id, assigner_id, pr_url, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
RETURNING ` + activeColumns + `;`

	getActiveQuery = `
SELECT ` + activeColumns + `
FROM active_assignments
WHERE team_id = $1 AND id = $2;`

	listActiveQuery = `
SELECT ` + activeColumns + `
FROM active_assignments
WHERE team_id = $1
  AND ($2::text IS NULL OR assignee_id = $2 OR assigner_id = $2)
ORDER BY created_at ASC;`

	deleteActiveQuery = `
DELETE FROM active_assignments
WHERE team_id = $1 AND id = $2;`
)

type ActiveAssignmentRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewActiveAssignmentRepository(db *pgxpool.Pool, log *zap.Logger) *ActiveAssignmentRepository {
	return &ActiveAssignmentRepository{
		db:  db,
		log: log,
	}
}

func scanActive(row pgx.Row) (*domain.ActiveAssignment, error) {
	a := &domain.ActiveAssignment{}
	err := row.Scan(
		&a.Id,
		&a.TeamId,
		&a.AssigneeId,
		&a.AssignerId,
		&a.PrUrl,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}

func (r *ActiveAssignmentRepository) Add(ctx context.Context, d *dto.CreateActiveAssignmentDTO) (*domain.ActiveAssignment, error) {
	row := getQuerier(ctx, r.db, d.TeamId).QueryRow(ctx, insertActiveQuery,
		d.Id,
		d.TeamId,
		d.AssigneeId,
		d.AssignerId,
		d.PrUrl,
		domain.ActiveAssignmentPending,
		d.CreatedAt,
	)
	a, err := scanActive(row)
	if err != nil {
		r.log.Debug("insert active assignment failed", zap.String("team_id", d.TeamId), zap.Error(err))
		return nil, handleDBError(err)
	}
	return a, nil
}

func (r *ActiveAssignmentRepository) Get(ctx context.Context, teamId, id string) (*domain.ActiveAssignment, error) {
	a, err := scanActive(getQuerier(ctx, r.db, teamId).QueryRow(ctx, getActiveQuery, teamId, id))
	if err != nil {
		return nil, notFound("active assignment", err)
	}
	return a, nil
}

func (r *ActiveAssignmentRepository) List(ctx context.Context, teamId string, reviewerId *string) ([]*domain.ActiveAssignment, error) {
	rows, err := getQuerier(ctx, r.db, teamId).Query(ctx, listActiveQuery, teamId, reviewerId)
	if err != nil {
		return nil, handleDBError(err)
	}
	defer rows.Close()

	var items []*domain.ActiveAssignment
	for rows.Next() {
		a, err := scanActive(rows)
		if err != nil {
			return nil, handleDBError(err)
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, handleDBError(err)
	}

	return items, nil
}

// Delete завершение долга, строка не хранится после закрытия
func (r *ActiveAssignmentRepository) Delete(ctx context.Context, teamId, id string) error {
	tag, err := getQuerier(ctx, r.db, teamId).Exec(ctx, deleteActiveQuery, teamId, id)
	if err != nil {
		return handleDBError(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("active assignment %w", domain.ErrNotFound)
	}
	return nil
}
