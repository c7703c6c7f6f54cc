// Package memory хранит состояние команд в памяти процесса. Используется
// для встроенного режима и в тестах сервисов.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/niklvrr/ReviewerRotation/internal/domain"
	"go.uber.org/zap"
)

type txKey struct{}

// memTx рабочая копия состояния одной команды
type memTx struct {
	teamId string
	data   *teamData
}

type teamState struct {
	writer sync.Mutex
	mu     sync.RWMutex
	data   *teamData
}

// teamData всё состояние одной команды. События и снимки неизменяемы после записи.
type teamData struct {
	team      domain.Team
	reviewers []*domain.Reviewer
	tags      []*domain.Tag
	ledger    []*domain.AssignmentEvent
	feed      []*domain.FeedItem
	snapshots []*domain.Snapshot
	active    []*domain.ActiveAssignment
}

func (d *teamData) clone() *teamData {
	c := &teamData{
		team:      d.team,
		reviewers: make([]*domain.Reviewer, 0, len(d.reviewers)),
		tags:      make([]*domain.Tag, 0, len(d.tags)),
		ledger:    slices.Clone(d.ledger),
		feed:      slices.Clone(d.feed),
		snapshots: slices.Clone(d.snapshots),
		active:    slices.Clone(d.active),
	}
	for _, r := range d.reviewers {
		c.reviewers = append(c.reviewers, r.Clone())
	}
	for _, t := range d.tags {
		c.tags = append(c.tags, cloneTag(t))
	}
	return c
}

type Store struct {
	mu    sync.RWMutex
	teams map[string]*teamState
	names map[string]string

	seq atomic.Int64
	log *zap.Logger
}

func NewStore(log *zap.Logger) *Store {
	return &Store{
		teams: make(map[string]*teamState),
		names: make(map[string]string),
		log:   log,
	}
}

func (s *Store) team(teamId string) (*teamState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.teams[teamId]
	return st, ok
}

// RunInTeamTx один писатель на команду. Изменения применяются к копии и
// подменяют состояние только при успешном fn.
func (s *Store) RunInTeamTx(ctx context.Context, teamId string, fn func(ctx context.Context) error) error {
	if tx, ok := ctx.Value(txKey{}).(*memTx); ok && tx.teamId == teamId {
		return fn(ctx)
	}

	st, ok := s.team(teamId)
	if !ok {
		return domain.ErrTeamNotFound
	}

	st.writer.Lock()
	defer st.writer.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	st.mu.RLock()
	work := st.data.clone()
	st.mu.RUnlock()

	tx := &memTx{teamId: teamId, data: work}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		s.log.Debug("team transaction discarded", zap.String("team_id", teamId), zap.Error(err))
		return err
	}

	st.mu.Lock()
	st.data = work
	st.mu.Unlock()
	return nil
}

// read отдаёт рабочую копию транзакции или зафиксированное состояние под RLock
func (s *Store) read(ctx context.Context, teamId string, fn func(d *teamData) error) error {
	if tx, ok := ctx.Value(txKey{}).(*memTx); ok && tx.teamId == teamId {
		return fn(tx.data)
	}

	st, ok := s.team(teamId)
	if !ok {
		return domain.ErrTeamNotFound
	}

	st.mu.RLock()
	defer st.mu.RUnlock()
	return fn(st.data)
}

// write вне транзакции открывает собственную
func (s *Store) write(ctx context.Context, teamId string, fn func(d *teamData) error) error {
	if tx, ok := ctx.Value(txKey{}).(*memTx); ok && tx.teamId == teamId {
		return fn(tx.data)
	}

	return s.RunInTeamTx(ctx, teamId, func(ctx context.Context) error {
		tx := ctx.Value(txKey{}).(*memTx)
		return fn(tx.data)
	})
}

func (s *Store) nextSeq() int64 {
	return s.seq.Add(1)
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func cloneTag(t *domain.Tag) *domain.Tag {
	c := *t
	if t.Description != nil {
		d := *t.Description
		c.Description = &d
	}
	return &c
}
