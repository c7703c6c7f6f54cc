package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/niklvrr/ReviewerRotation/internal/domain"
	"github.com/niklvrr/ReviewerRotation/internal/infrastructure/models/dto"
	"github.com/niklvrr/ReviewerRotation/internal/transport/dto/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAssignmentService_AssignNext_RotatesFairly(t *testing.T) {
	stepClock(t)
	env := newTestEnv(t)
	ctx := context.Background()
	teamId := env.createTeam(t, "core")
	env.addReviewer(t, teamId, "alice")
	env.addReviewer(t, teamId, "bob")
	env.addReviewer(t, teamId, "carol")

	var order []string
	for i := 0; i < 6; i++ {
		resp, err := env.assignments.AssignNext(ctx, &request.AssignNextRequest{TeamId: teamId})
		require.NoError(t, err)
		order = append(order, resp.Reviewer.Name)
		assert.Equal(t, domain.KindRegular, resp.Event.Kind())
	}

	assert.Equal(t, []string{"alice", "bob", "carol", "alice", "bob", "carol"}, order)
	assert.Equal(t, map[string]int{"alice": 2, "bob": 2, "carol": 2}, env.counts(t, teamId))
}

func TestAssignmentService_AssignNext_SpreadStaysWithinOne(t *testing.T) {
	tests := []struct {
		name   string
		pool   int
		steps  int
		joinAt int // шаг прихода новичка, 0 без новичка
	}{
		{"single reviewer", 1, 5, 0},
		{"pair", 2, 9, 0},
		{"five reviewers", 5, 23, 0},
		{"newcomer mid rotation", 3, 14, 7},
		{"newcomer after uneven step", 4, 19, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stepClock(t)
			env := newTestEnv(t)
			ctx := context.Background()
			teamId := env.createTeam(t, "core")
			for i := 0; i < tt.pool; i++ {
				env.addReviewer(t, teamId, fmt.Sprintf("r%d", i))
			}

			for step := 1; step <= tt.steps; step++ {
				if step == tt.joinAt {
					env.addReviewer(t, teamId, "newcomer")
				}

				_, err := env.assignments.AssignNext(ctx, &request.AssignNextRequest{TeamId: teamId})
				require.NoError(t, err)

				counts := env.counts(t, teamId)
				lo, hi := spread(counts)
				if lo >= 1 {
					assert.LessOrEqual(t, hi-lo, 1, "step %d: %v", step, counts)
				}
			}

			lo, hi := spread(env.counts(t, teamId))
			assert.GreaterOrEqual(t, lo, 1)
			assert.LessOrEqual(t, hi-lo, 1)
		})
	}
}

func spread(counts map[string]int) (lo, hi int) {
	first := true
	for _, c := range counts {
		if first {
			lo, hi, first = c, c, false
			continue
		}
		lo = min(lo, c)
		hi = max(hi, c)
	}
	return lo, hi
}

func TestAssignmentService_Next_IsReadOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teamId := env.createTeam(t, "core")
	alice := env.addReviewer(t, teamId, "alice")

	resp, err := env.assignments.Next(ctx, &request.NextRequest{TeamId: teamId})
	require.NoError(t, err)
	require.True(t, resp.Available)
	assert.Equal(t, alice.Id, resp.Reviewer.Id)
	assert.Equal(t, 0, env.counts(t, teamId)["alice"])

	resp, err = env.assignments.Next(ctx, &request.NextRequest{TeamId: teamId, ExcludeId: strPtr(alice.Id)})
	require.NoError(t, err)
	assert.False(t, resp.Available)
	assert.Nil(t, resp.Reviewer)
}

func TestAssignmentService_Next_UnknownTeam(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.assignments.Next(context.Background(), &request.NextRequest{TeamId: "missing"})

	requireCode(t, err, "NOT_FOUND")
}

func TestAssignmentService_AssignNext_NoCandidate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teamId := env.createTeam(t, "core")
	alice := env.addReviewer(t, teamId, "alice")
	_, err := env.reviewers.ToggleAbsence(ctx, &request.ToggleAbsenceRequest{TeamId: teamId, ReviewerId: alice.Id})
	require.NoError(t, err)

	_, err = env.assignments.AssignNext(ctx, &request.AssignNextRequest{TeamId: teamId})

	requireCode(t, err, "NO_CANDIDATE")
	history, err := env.assignments.History(ctx, &request.HistoryRequest{TeamId: teamId})
	require.NoError(t, err)
	assert.Empty(t, history.Events)
}

func TestAssignmentService_Assign_ForcedToAbsentWarns(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teamId := env.createTeam(t, "core")
	alice := env.addReviewer(t, teamId, "alice")
	_, err := env.reviewers.ToggleAbsence(ctx, &request.ToggleAbsenceRequest{TeamId: teamId, ReviewerId: alice.Id})
	require.NoError(t, err)

	resp, err := env.assignments.Assign(ctx, &request.AssignRequest{
		TeamId:     teamId,
		ReviewerId: alice.Id,
		Forced:     true,
	})

	require.NoError(t, err)
	assert.Equal(t, AbsentWarning, resp.Warning)
	assert.Equal(t, 1, resp.Reviewer.AssignmentCount)
	assert.Equal(t, domain.KindForced, resp.Event.Kind())
}

func TestAssignmentService_Assign_ForcedAndSkippedRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teamId := env.createTeam(t, "core")
	alice := env.addReviewer(t, teamId, "alice")

	_, err := env.assignments.Assign(ctx, &request.AssignRequest{
		TeamId:     teamId,
		ReviewerId: alice.Id,
		Forced:     true,
		Skipped:    true,
	})

	requireCode(t, err, "INVALID_INPUT")
}

func TestAssignmentService_Assign_UnknownReviewer(t *testing.T) {
	env := newTestEnv(t)
	teamId := env.createTeam(t, "core")

	_, err := env.assignments.Assign(context.Background(), &request.AssignRequest{TeamId: teamId, ReviewerId: "ghost"})

	requireCode(t, err, "NOT_FOUND")
	assert.ErrorIs(t, err, ErrReviewerNotFound)
}

func TestAssignmentService_AssignByTag(t *testing.T) {
	stepClock(t)
	env := newTestEnv(t)
	ctx := context.Background()
	teamId := env.createTeam(t, "core")
	backend := env.createTag(t, teamId, "backend")
	env.addReviewer(t, teamId, "alice")
	bob := env.addReviewer(t, teamId, "bob", backend)

	resp, err := env.assignments.AssignByTag(ctx, &request.AssignByTagRequest{TeamId: teamId, TagId: backend})
	require.NoError(t, err)
	assert.Equal(t, bob.Id, resp.Reviewer.Id)
	require.NotNil(t, resp.Event.TagId)
	assert.Equal(t, backend, *resp.Event.TagId)
	assert.Equal(t, domain.KindTag, resp.Event.Kind())

	_, err = env.assignments.AssignByTag(ctx, &request.AssignByTagRequest{
		TeamId:    teamId,
		TagId:     backend,
		ExcludeId: strPtr(bob.Id),
	})
	requireCode(t, err, "NO_CANDIDATE")

	_, err = env.assignments.AssignByTag(ctx, &request.AssignByTagRequest{TeamId: teamId, TagId: "missing"})
	requireCode(t, err, "NOT_FOUND")
	assert.ErrorIs(t, err, ErrTagNotFound)
}

func TestAssignmentService_Skip_AdvancesRotation(t *testing.T) {
	stepClock(t)
	env := newTestEnv(t)
	ctx := context.Background()
	teamId := env.createTeam(t, "core")
	alice := env.addReviewer(t, teamId, "alice")
	bob := env.addReviewer(t, teamId, "bob")

	resp, err := env.assignments.Skip(ctx, &request.SkipRequest{TeamId: teamId, ReviewerId: alice.Id})

	require.NoError(t, err)
	assert.Equal(t, domain.KindSkipped, resp.Event.Kind())
	assert.Equal(t, 1, resp.Reviewer.AssignmentCount)
	require.NotNil(t, resp.Next)
	assert.Equal(t, bob.Id, resp.Next.Id)

	feed, err := env.assignments.Feed(ctx, &request.FeedRequest{TeamId: teamId})
	require.NoError(t, err)
	require.Len(t, feed.Items, 1)
	assert.True(t, feed.Items[0].Skipped)
}

func TestAssignmentService_Skip_AbsentStaysOutOfFeed(t *testing.T) {
	stepClock(t)
	env := newTestEnv(t)
	ctx := context.Background()
	teamId := env.createTeam(t, "core")
	alice := env.addReviewer(t, teamId, "alice")
	env.addReviewer(t, teamId, "bob")
	_, err := env.reviewers.ToggleAbsence(ctx, &request.ToggleAbsenceRequest{TeamId: teamId, ReviewerId: alice.Id})
	require.NoError(t, err)

	resp, err := env.assignments.Skip(ctx, &request.SkipRequest{TeamId: teamId, ReviewerId: alice.Id})
	require.NoError(t, err)
	assert.True(t, resp.Event.IsAbsentSkip)
	assert.Empty(t, resp.Warning)

	feed, err := env.assignments.Feed(ctx, &request.FeedRequest{TeamId: teamId})
	require.NoError(t, err)
	assert.Empty(t, feed.Items)
	assert.Nil(t, feed.LastAssigned)

	history, err := env.assignments.History(ctx, &request.HistoryRequest{TeamId: teamId})
	require.NoError(t, err)
	require.Len(t, history.Events, 1)
	assert.Equal(t, domain.KindAbsentSkip, history.Events[0].Kind())
}

func TestAssignmentService_Undo_RestoresCounts(t *testing.T) {
	stepClock(t)
	env := newTestEnv(t)
	ctx := context.Background()
	teamId := env.createTeam(t, "core")
	env.addReviewer(t, teamId, "alice")
	env.addReviewer(t, teamId, "bob")

	_, err := env.assignments.AssignNext(ctx, &request.AssignNextRequest{TeamId: teamId})
	require.NoError(t, err)
	before := env.counts(t, teamId)

	assigned, err := env.assignments.AssignNext(ctx, &request.AssignNextRequest{TeamId: teamId})
	require.NoError(t, err)

	undone, err := env.assignments.Undo(ctx, &request.UndoRequest{TeamId: teamId})
	require.NoError(t, err)

	assert.Equal(t, assigned.Event.Id, undone.Event.Id)
	assert.Equal(t, before, env.counts(t, teamId))

	history, err := env.assignments.History(ctx, &request.HistoryRequest{TeamId: teamId})
	require.NoError(t, err)
	require.Len(t, history.Events, 1)
	assert.NotEqual(t, assigned.Event.Id, history.Events[0].Id)
}

func TestAssignmentService_Undo_RemovesActiveAssignmentOfEvent(t *testing.T) {
	stepClock(t)
	env := newTestEnv(t)
	ctx := context.Background()
	teamId := env.createTeam(t, "core")
	alice := env.addReviewer(t, teamId, "alice")
	bob := env.addReviewer(t, teamId, "bob")

	// Долг, заведённый вручную, с ротацией не связан
	manual, err := env.active.Create(ctx, &request.CreateActiveAssignmentRequest{
		TeamId:     teamId,
		AssigneeId: bob.Id,
		AssignerId: alice.Id,
	})
	require.NoError(t, err)

	assigned, err := env.assignments.Assign(ctx, &request.AssignRequest{
		TeamId:     teamId,
		ReviewerId: alice.Id,
		AssignerId: strPtr(bob.Id),
	})
	require.NoError(t, err)
	require.NotNil(t, assigned.ActiveAssignment)
	assert.Equal(t, assigned.Event.Id, assigned.ActiveAssignment.Id)

	_, err = env.assignments.Undo(ctx, &request.UndoRequest{TeamId: teamId})
	require.NoError(t, err)

	left, err := env.active.List(ctx, &request.ListActiveAssignmentsRequest{TeamId: teamId})
	require.NoError(t, err)
	require.Len(t, left.ActiveAssignments, 1)
	assert.Equal(t, manual.ActiveAssignment.Id, left.ActiveAssignments[0].Id)
}

func TestAssignmentService_Undo_AfterActiveAssignmentCompleted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teamId := env.createTeam(t, "core")
	alice := env.addReviewer(t, teamId, "alice")
	bob := env.addReviewer(t, teamId, "bob")

	assigned, err := env.assignments.Assign(ctx, &request.AssignRequest{
		TeamId:     teamId,
		ReviewerId: alice.Id,
		AssignerId: strPtr(bob.Id),
	})
	require.NoError(t, err)

	err = env.active.Complete(ctx, &request.CompleteActiveAssignmentRequest{
		TeamId:             teamId,
		ActiveAssignmentId: assigned.ActiveAssignment.Id,
		ActingReviewerId:   alice.Id,
	})
	require.NoError(t, err)

	_, err = env.assignments.Undo(ctx, &request.UndoRequest{TeamId: teamId})
	require.NoError(t, err)
	assert.Equal(t, 0, env.counts(t, teamId)["alice"])
}

func TestAssignmentService_Undo_EmptyLedger(t *testing.T) {
	env := newTestEnv(t)
	teamId := env.createTeam(t, "core")

	_, err := env.assignments.Undo(context.Background(), &request.UndoRequest{TeamId: teamId})

	requireCode(t, err, "NOTHING_TO_UNDO")
}

func TestAssignmentService_Undo_FloorsAtZero(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teamId := env.createTeam(t, "core")
	alice := env.addReviewer(t, teamId, "alice")

	_, err := env.assignments.Assign(ctx, &request.AssignRequest{TeamId: teamId, ReviewerId: alice.Id})
	require.NoError(t, err)
	_, err = env.reviewers.UpdateAssignmentCount(ctx, &request.UpdateAssignmentCountRequest{
		TeamId:          teamId,
		ReviewerId:      alice.Id,
		AssignmentCount: new(int),
	})
	require.NoError(t, err)

	resp, err := env.assignments.Undo(ctx, &request.UndoRequest{TeamId: teamId})

	require.NoError(t, err)
	assert.Equal(t, 0, resp.Reviewer.AssignmentCount)
}

func TestAssignmentService_Undo_RemovedReviewerAborts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teamId := env.createTeam(t, "core")
	alice := env.addReviewer(t, teamId, "alice")

	_, err := env.assignments.Assign(ctx, &request.AssignRequest{TeamId: teamId, ReviewerId: alice.Id})
	require.NoError(t, err)
	require.NoError(t, env.reviewers.Remove(ctx, &request.RemoveReviewerRequest{TeamId: teamId, ReviewerId: alice.Id}))

	_, err = env.assignments.Undo(ctx, &request.UndoRequest{TeamId: teamId})

	requireCode(t, err, "NOT_FOUND")
	history, err := env.assignments.History(ctx, &request.HistoryRequest{TeamId: teamId})
	require.NoError(t, err)
	assert.Len(t, history.Events, 1)
}

func TestAssignmentService_Undo_RebuildsFeed(t *testing.T) {
	stepClock(t)
	env := newTestEnv(t)
	ctx := context.Background()
	teamId := env.createTeam(t, "core")
	env.addReviewer(t, teamId, "alice")
	env.addReviewer(t, teamId, "bob")

	var events []string
	for i := 0; i < domain.FeedSize+2; i++ {
		resp, err := env.assignments.AssignNext(ctx, &request.AssignNextRequest{TeamId: teamId})
		require.NoError(t, err)
		events = append(events, resp.Event.Id)
	}

	feed, err := env.assignments.Feed(ctx, &request.FeedRequest{TeamId: teamId})
	require.NoError(t, err)
	require.Len(t, feed.Items, domain.FeedSize)
	assert.Equal(t, events[len(events)-1], feed.LastAssigned.EventId)

	_, err = env.assignments.Undo(ctx, &request.UndoRequest{TeamId: teamId})
	require.NoError(t, err)

	feed, err = env.assignments.Feed(ctx, &request.FeedRequest{TeamId: teamId})
	require.NoError(t, err)
	require.Len(t, feed.Items, domain.FeedSize)
	for i, item := range feed.Items {
		assert.Equal(t, events[len(events)-2-i], item.EventId)
	}
}

func TestAssignmentService_LedgerRetention(t *testing.T) {
	stepClock(t)
	env := newTestEnv(t)
	ctx := context.Background()
	teamId := env.createTeam(t, "core")
	env.addReviewer(t, teamId, "alice")
	env.addReviewer(t, teamId, "bob")

	var first string
	for i := 0; i < domain.LedgerRetention+5; i++ {
		resp, err := env.assignments.AssignNext(ctx, &request.AssignNextRequest{TeamId: teamId})
		require.NoError(t, err)
		if i == 0 {
			first = resp.Event.Id
		}
	}

	history, err := env.assignments.History(ctx, &request.HistoryRequest{TeamId: teamId})
	require.NoError(t, err)
	assert.Len(t, history.Events, domain.LedgerRetention)
	for _, e := range history.Events {
		assert.NotEqual(t, first, e.Id)
	}

	snapshots, err := env.snapshots.List(ctx, &request.ListSnapshotsRequest{TeamId: teamId})
	require.NoError(t, err)
	assert.Len(t, snapshots.Snapshots, domain.SnapshotRetention)
}

func TestAssignmentService_History_NewestFirstWithLimit(t *testing.T) {
	stepClock(t)
	env := newTestEnv(t)
	ctx := context.Background()
	teamId := env.createTeam(t, "core")
	env.addReviewer(t, teamId, "alice")

	var last string
	for i := 0; i < 3; i++ {
		resp, err := env.assignments.AssignNext(ctx, &request.AssignNextRequest{TeamId: teamId})
		require.NoError(t, err)
		last = resp.Event.Id
	}

	history, err := env.assignments.History(ctx, &request.HistoryRequest{TeamId: teamId, Limit: 2})

	require.NoError(t, err)
	require.Len(t, history.Events, 2)
	assert.Equal(t, last, history.Events[0].Id)
	assert.True(t, history.Events[0].NewerThan(history.Events[1]))
}

func TestAssignmentService_AssignWithAssigner_CreatesActiveAssignment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teamId := env.createTeam(t, "core")
	alice := env.addReviewer(t, teamId, "alice")
	bob := env.addReviewer(t, teamId, "bob")

	resp, err := env.assignments.AssignNext(ctx, &request.AssignNextRequest{
		TeamId:     teamId,
		ExcludeId:  strPtr(bob.Id),
		AssignerId: strPtr(bob.Id),
		PrUrl:      strPtr("https://git.example.com/core/pull/7"),
	})

	require.NoError(t, err)
	require.NotNil(t, resp.ActiveAssignment)
	assert.Equal(t, alice.Id, resp.ActiveAssignment.AssigneeId)
	assert.Equal(t, bob.Id, resp.ActiveAssignment.AssignerId)
	assert.Equal(t, domain.ActiveAssignmentPending, resp.ActiveAssignment.Status)
}

func TestAssignmentService_NotifiesAfterCommit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teamId := env.createTeam(t, "core")
	alice := env.addReviewer(t, teamId, "alice")

	_, err := env.assignments.Assign(ctx, &request.AssignRequest{
		TeamId:     teamId,
		ReviewerId: alice.Id,
		PrUrl:      strPtr("https://git.example.com/core/pull/1"),
		ActionBy:   &domain.ActionBy{Email: "lead@example.com"},
	})
	require.NoError(t, err)

	select {
	case n := <-env.notifier.sent:
		assert.Equal(t, alice.Id, n.ReviewerId)
		assert.Equal(t, "alice@example.com", n.ReviewerEmail)
		require.NotNil(t, n.Assigner)
		assert.Equal(t, "lead@example.com", n.Assigner.Email)
	case <-time.After(time.Second):
		t.Fatal("notification was not sent")
	}
}

func TestAssignmentService_ConcurrentAssignNextIsSerialized(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teamId := env.createTeam(t, "core")
	for _, name := range []string{"alice", "bob", "carol", "dave"} {
		env.addReviewer(t, teamId, name)
	}

	const workers = 40
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.assignments.AssignNext(ctx, &request.AssignNextRequest{TeamId: teamId})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	// Сериализация даёт идеально ровную загрузку
	assert.Equal(t, map[string]int{"alice": 10, "bob": 10, "carol": 10, "dave": 10}, env.counts(t, teamId))
}

func TestAssignmentService_TeamsAreIsolated(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	core := env.createTeam(t, "core")
	infra := env.createTeam(t, "infra")
	alice := env.addReviewer(t, core, "alice")
	env.addReviewer(t, infra, "bob")

	_, err := env.assignments.Assign(ctx, &request.AssignRequest{TeamId: infra, ReviewerId: alice.Id})
	requireCode(t, err, "NOT_FOUND")

	_, err = env.assignments.AssignNext(ctx, &request.AssignNextRequest{TeamId: core})
	require.NoError(t, err)

	history, err := env.assignments.History(ctx, &request.HistoryRequest{TeamId: infra})
	require.NoError(t, err)
	assert.Empty(t, history.Events)
}

// MockLedgerRepository подменяет запись в историю поверх настоящего хранилища
type MockLedgerRepository struct {
	LedgerRepository
	mock.Mock
}

func (m *MockLedgerRepository) Append(ctx context.Context, d *dto.AppendEventDTO) (*domain.AssignmentEvent, error) {
	args := m.Called(ctx, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AssignmentEvent), args.Error(1)
}

func TestAssignmentService_LedgerFailureLeavesNoTrace(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teamId := env.createTeam(t, "core")
	alice := env.addReviewer(t, teamId, "alice")

	dbErr := errors.New("disk full")
	ledger := &MockLedgerRepository{LedgerRepository: env.repos.Ledger}
	ledger.On("Append", mock.Anything, mock.Anything).Return(nil, dbErr)
	env.repos.Ledger = ledger

	_, err := env.assignments.Assign(ctx, &request.AssignRequest{TeamId: teamId, ReviewerId: alice.Id})

	assert.ErrorIs(t, err, assignError)
	assert.ErrorIs(t, err, dbErr)
	assert.Equal(t, 0, env.counts(t, teamId)["alice"])
	ledger.AssertExpectations(t)
}

// gatedNotifier держит отправку до release
type gatedNotifier struct {
	release   chan struct{}
	delivered chan domain.Notification
}

func (n *gatedNotifier) Notify(_ context.Context, msg domain.Notification) error {
	<-n.release
	n.delivered <- msg
	return nil
}

func TestAssignmentService_Wait_DrainsPendingNotifications(t *testing.T) {
	repos := newMemoryRepositories()
	notifier := &gatedNotifier{release: make(chan struct{}), delivered: make(chan domain.Notification, 1)}
	assignments := NewAssignmentService(repos, notifier, zap.NewNop())
	env := &testEnv{teams: NewTeamService(repos, zap.NewNop()), reviewers: NewReviewerService(repos, zap.NewNop())}
	ctx := context.Background()
	teamId := env.createTeam(t, "core")
	alice := env.addReviewer(t, teamId, "alice")

	_, err := assignments.Assign(ctx, &request.AssignRequest{TeamId: teamId, ReviewerId: alice.Id})
	require.NoError(t, err)

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, assignments.Wait(short), context.DeadlineExceeded)

	close(notifier.release)
	require.NoError(t, assignments.Wait(ctx))
	select {
	case n := <-notifier.delivered:
		assert.Equal(t, alice.Id, n.ReviewerId)
	default:
		t.Fatal("notification was not delivered before Wait returned")
	}
}
