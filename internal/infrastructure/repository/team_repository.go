package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/niklvrr/ReviewerRotation/internal/domain"
	"github.com/niklvrr/ReviewerRotation/internal/infrastructure/models/dto"
	"go.uber.org/zap"
)

const (
	insertTeamQuery = `
INSERT INTO teams (id, name, created_at)
VALUES ($1, $2, $3)
RETURNING id, name, created_at;`

	getTeamQuery = `
SELECT id, name, created_at
FROM teams
WHERE id = $1;`
)

type TeamRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewTeamRepository(db *pgxpool.Pool, log *zap.Logger) *TeamRepository {
	return &TeamRepository{
		db:  db,
		log: log,
	}
}

func (r *TeamRepository) Add(ctx context.Context, d *dto.AddTeamDTO) (*domain.Team, error) {
	team := &domain.Team{}

	// Уникальность имени проверяет индекс
	err := r.db.QueryRow(ctx, insertTeamQuery, d.Id, d.Name, d.CreatedAt).Scan(
		&team.Id,
		&team.Name,
		&team.CreatedAt,
	)
	if err != nil {
		r.log.Debug("insert team failed", zap.String("team_name", d.Name), zap.Error(err))
		return nil, handleDBError(err)
	}

	return team, nil
}

func (r *TeamRepository) Get(ctx context.Context, teamId string) (*domain.Team, error) {
	team := &domain.Team{}

	err := getQuerier(ctx, r.db, teamId).QueryRow(ctx, getTeamQuery, teamId).Scan(
		&team.Id,
		&team.Name,
		&team.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTeamNotFound
		}
		return nil, handleDBError(err)
	}

	return team, nil
}
