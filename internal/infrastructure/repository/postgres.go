package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/niklvrr/ReviewerRotation/internal/domain"
	"go.uber.org/zap"
)

const lockTeamQuery = `
SELECT id FROM teams
WHERE id = $1
FOR UPDATE;`

type txKey struct {
	teamId string
}

type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Transactor держит блокировку строки команды на всё время транзакции.
// Писатели одной команды идут по очереди, разные команды параллельно.
type Transactor struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewTransactor(db *pgxpool.Pool, log *zap.Logger) *Transactor {
	return &Transactor{
		db:  db,
		log: log,
	}
}

func (t *Transactor) RunInTeamTx(ctx context.Context, teamId string, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{teamId: teamId}).(pgx.Tx); ok {
		return fn(ctx)
	}

	tx, err := t.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				t.log.Warn("rollback failed", zap.String("team_id", teamId), zap.Error(rbErr))
			}
		}
	}()

	// Блокировка команды
	var id string
	if err = tx.QueryRow(ctx, lockTeamQuery, teamId).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTeamNotFound
		}
		return handleDBError(err)
	}

	if err = fn(context.WithValue(ctx, txKey{teamId: teamId}, tx)); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// getQuerier возвращает транзакцию команды, если она открыта в контексте
func getQuerier(ctx context.Context, db *pgxpool.Pool, teamId string) querier {
	if tx, ok := ctx.Value(txKey{teamId: teamId}).(pgx.Tx); ok {
		return tx
	}
	return db
}

// notFound уточняет сущность для ErrNoRows, остальное через handleDBError
func notFound(entity string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %w", entity, domain.ErrNotFound)
	}
	return handleDBError(err)
}
