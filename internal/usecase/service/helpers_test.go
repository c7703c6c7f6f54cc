package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/niklvrr/ReviewerRotation/internal/domain"
	"github.com/niklvrr/ReviewerRotation/internal/infrastructure/memory"
	"github.com/niklvrr/ReviewerRotation/internal/transport/dto/request"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testEnv все сервисы поверх одного хранилища в памяти
type testEnv struct {
	repos       *Repositories
	teams       *TeamService
	reviewers   *ReviewerService
	assignments *AssignmentService
	tags        *TagService
	snapshots   *SnapshotService
	active      *ActiveAssignmentService
	notifier    *recordingNotifier
}

func newMemoryRepositories() *Repositories {
	store := memory.NewStore(zap.NewNop())
	return &Repositories{
		Tx:                store,
		Teams:             memory.NewTeamRepository(store),
		Reviewers:         memory.NewReviewerRepository(store),
		Tags:              memory.NewTagRepository(store),
		Ledger:            memory.NewLedgerRepository(store),
		Feed:              memory.NewFeedRepository(store),
		Snapshots:         memory.NewSnapshotRepository(store),
		ActiveAssignments: memory.NewActiveAssignmentRepository(store),
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zap.NewNop()
	repos := newMemoryRepositories()
	notifier := &recordingNotifier{sent: make(chan domain.Notification, 16)}

	return &testEnv{
		repos:       repos,
		teams:       NewTeamService(repos, logger),
		reviewers:   NewReviewerService(repos, logger),
		assignments: NewAssignmentService(repos, notifier, logger),
		tags:        NewTagService(repos, logger),
		snapshots:   NewSnapshotService(repos, logger),
		active:      NewActiveAssignmentService(repos, logger),
		notifier:    notifier,
	}
}

func (e *testEnv) createTeam(t *testing.T, name string) string {
	t.Helper()
	resp, err := e.teams.Create(context.Background(), &request.CreateTeamRequest{TeamName: name})
	require.NoError(t, err)
	return resp.Team.Id
}

func (e *testEnv) addReviewer(t *testing.T, teamId, name string, tags ...string) *domain.Reviewer {
	t.Helper()
	resp, err := e.reviewers.Add(context.Background(), &request.AddReviewerRequest{
		TeamId: teamId,
		Name:   name,
		Email:  fmt.Sprintf("%s@example.com", name),
		Tags:   tags,
	})
	require.NoError(t, err)
	return resp.Reviewer
}

func (e *testEnv) createTag(t *testing.T, teamId, name string) string {
	t.Helper()
	resp, err := e.tags.Create(context.Background(), &request.CreateTagRequest{
		TeamId: teamId,
		Name:   name,
		Color:  "#00aaff",
	})
	require.NoError(t, err)
	return resp.Tag.Id
}

func (e *testEnv) counts(t *testing.T, teamId string) map[string]int {
	t.Helper()
	resp, err := e.reviewers.List(context.Background(), &request.ListReviewersRequest{TeamId: teamId})
	require.NoError(t, err)

	out := make(map[string]int, len(resp.Reviewers))
	for _, r := range resp.Reviewers {
		out[r.Name] = r.AssignmentCount
	}
	return out
}

// stepClock подменяет now на часы с шагом в секунду
func stepClock(t *testing.T) {
	t.Helper()

	var mu sync.Mutex
	current := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	prev := now
	now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
	t.Cleanup(func() { now = prev })
}

type recordingNotifier struct {
	sent chan domain.Notification
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, msg domain.Notification) error {
	select {
	case n.sent <- msg:
	default:
	}
	return n.err
}

func strPtr(s string) *string {
	return &s
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, code, domainErr.Code, err.Error())
}
