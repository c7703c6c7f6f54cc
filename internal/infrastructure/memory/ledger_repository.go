package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/niklvrr/ReviewerRotation/internal/domain"
	"github.com/niklvrr/ReviewerRotation/internal/infrastructure/models/dto"
)

var errEventNotFound = fmt.Errorf("assignment event %w", domain.ErrNotFound)

// LedgerRepository хранит события от старых к новым, отдаёт от новых к старым
type LedgerRepository struct {
	s *Store
}

func NewLedgerRepository(s *Store) *LedgerRepository {
	return &LedgerRepository{s: s}
}

func (r *LedgerRepository) Append(ctx context.Context, in *dto.AppendEventDTO) (*domain.AssignmentEvent, error) {
	e := &domain.AssignmentEvent{
		Id:           in.Id,
		TeamId:       in.TeamId,
		ReviewerId:   in.ReviewerId,
		ReviewerName: in.ReviewerName,
		Timestamp:    in.Timestamp,
		Seq:          r.s.nextSeq(),
		Forced:       in.Forced,
		Skipped:      in.Skipped,
		IsAbsentSkip: in.IsAbsentSkip,
		TagId:        in.TagId,
		ActionBy:     in.ActionBy,
		PrUrl:        in.PrUrl,
	}

	err := r.s.write(ctx, in.TeamId, func(d *teamData) error {
		d.ledger = append(d.ledger, e)
		sortEvents(d.ledger)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *LedgerRepository) Prune(ctx context.Context, teamId string, keep int) error {
	return r.s.write(ctx, teamId, func(d *teamData) error {
		if len(d.ledger) > keep {
			d.ledger = slices.Clone(d.ledger[len(d.ledger)-keep:])
		}
		return nil
	})
}

func (r *LedgerRepository) Newest(ctx context.Context, teamId string) (*domain.AssignmentEvent, error) {
	var out *domain.AssignmentEvent
	err := r.s.read(ctx, teamId, func(d *teamData) error {
		if len(d.ledger) == 0 {
			return errEventNotFound
		}
		out = d.ledger[len(d.ledger)-1]
		return nil
	})
	return out, err
}

func (r *LedgerRepository) Delete(ctx context.Context, teamId, eventId string) error {
	return r.s.write(ctx, teamId, func(d *teamData) error {
		i := slices.IndexFunc(d.ledger, func(e *domain.AssignmentEvent) bool { return e.Id == eventId })
		if i < 0 {
			return errEventNotFound
		}
		d.ledger = slices.Delete(d.ledger, i, i+1)
		return nil
	})
}

func (r *LedgerRepository) List(ctx context.Context, teamId string, limit int, includeAbsentSkips bool) ([]*domain.AssignmentEvent, error) {
	var out []*domain.AssignmentEvent
	err := r.s.read(ctx, teamId, func(d *teamData) error {
		out = make([]*domain.AssignmentEvent, 0, min(limit, len(d.ledger)))
		for i := len(d.ledger) - 1; i >= 0 && len(out) < limit; i-- {
			e := d.ledger[i]
			if e.IsAbsentSkip && !includeAbsentSkips {
				continue
			}
			out = append(out, e)
		}
		return nil
	})
	return out, err
}

func (r *LedgerRepository) Clear(ctx context.Context, teamId string) error {
	return r.s.write(ctx, teamId, func(d *teamData) error {
		d.ledger = nil
		return nil
	})
}

// sortEvents по времени, при равенстве по порядку вставки
func sortEvents(events []*domain.AssignmentEvent) {
	slices.SortStableFunc(events, func(a, b *domain.AssignmentEvent) int {
		switch {
		case b.NewerThan(a):
			return -1
		case a.NewerThan(b):
			return 1
		default:
			return 0
		}
	})
}

type FeedRepository struct {
	s *Store
}

func NewFeedRepository(s *Store) *FeedRepository {
	return &FeedRepository{s: s}
}

func (r *FeedRepository) Record(ctx context.Context, teamId string, item *domain.FeedItem, size int) error {
	return r.s.write(ctx, teamId, func(d *teamData) error {
		feed := make([]*domain.FeedItem, 0, size)
		feed = append(feed, item)
		for _, it := range d.feed {
			if len(feed) == size {
				break
			}
			feed = append(feed, it)
		}
		d.feed = feed
		return nil
	})
}

func (r *FeedRepository) Replace(ctx context.Context, teamId string, items []*domain.FeedItem) error {
	return r.s.write(ctx, teamId, func(d *teamData) error {
		d.feed = slices.Clone(items)
		return nil
	})
}

func (r *FeedRepository) List(ctx context.Context, teamId string) ([]*domain.FeedItem, error) {
	var out []*domain.FeedItem
	err := r.s.read(ctx, teamId, func(d *teamData) error {
		out = slices.Clone(d.feed)
		return nil
	})
	return out, err
}

func (r *FeedRepository) Clear(ctx context.Context, teamId string) error {
	return r.s.write(ctx, teamId, func(d *teamData) error {
		d.feed = nil
		return nil
	})
}
