package service

import (
	"context"
	"testing"

	"github.com/niklvrr/ReviewerRotation/internal/transport/dto/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotService_CapturedAfterEveryMutation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teamId := env.createTeam(t, "core")
	alice := env.addReviewer(t, teamId, "alice")

	_, err := env.assignments.Assign(ctx, &request.AssignRequest{TeamId: teamId, ReviewerId: alice.Id})
	require.NoError(t, err)
	_, err = env.assignments.Undo(ctx, &request.UndoRequest{TeamId: teamId})
	require.NoError(t, err)

	resp, err := env.snapshots.List(ctx, &request.ListSnapshotsRequest{TeamId: teamId})
	require.NoError(t, err)
	require.Len(t, resp.Snapshots, 3)
	assert.Equal(t, "undo regular assignment of alice", resp.Snapshots[0].Reason)
	assert.Equal(t, "assigned alice", resp.Snapshots[1].Reason)
	assert.Equal(t, "added reviewer alice", resp.Snapshots[2].Reason)
	assert.Equal(t, 1, resp.Snapshots[1].Reviewers[0].AssignmentCount)
}

func TestSnapshotService_Capture_Manual(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teamId := env.createTeam(t, "core")
	env.addReviewer(t, teamId, "alice")

	resp, err := env.snapshots.Capture(ctx, &request.CaptureSnapshotRequest{TeamId: teamId})

	require.NoError(t, err)
	assert.Equal(t, manualSnapshotReason, resp.Snapshot.Reason)
	assert.Len(t, resp.Snapshot.Reviewers, 1)
}

func TestSnapshotService_Restore(t *testing.T) {
	stepClock(t)
	env := newTestEnv(t)
	ctx := context.Background()
	teamId := env.createTeam(t, "core")
	backend := env.createTag(t, teamId, "backend")
	alice := env.addReviewer(t, teamId, "alice", backend)
	env.addReviewer(t, teamId, "bob")

	point, err := env.snapshots.Capture(ctx, &request.CaptureSnapshotRequest{TeamId: teamId, Reason: "before sprint"})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := env.assignments.AssignNext(ctx, &request.AssignNextRequest{TeamId: teamId})
		require.NoError(t, err)
	}
	env.addReviewer(t, teamId, "carol")
	require.NoError(t, env.tags.Delete(ctx, &request.DeleteTagRequest{TeamId: teamId, TagId: backend}))

	resp, err := env.snapshots.Restore(ctx, &request.RestoreSnapshotRequest{TeamId: teamId, SnapshotId: point.Snapshot.Id})
	require.NoError(t, err)

	assert.Equal(t, point.Snapshot.Id, resp.RestoredFrom.Id)
	assert.Contains(t, resp.Snapshot.Reason, "(before sprint)")
	assert.Equal(t, map[string]int{"alice": 0, "bob": 0}, env.counts(t, teamId))

	// Удалённый тег не возвращается вместе со снимком
	restored, err := env.reviewers.Get(ctx, &request.GetReviewerRequest{TeamId: teamId, ReviewerId: alice.Id})
	require.NoError(t, err)
	assert.Empty(t, restored.Reviewer.Tags)

	feed, err := env.assignments.Feed(ctx, &request.FeedRequest{TeamId: teamId})
	require.NoError(t, err)
	assert.Empty(t, feed.Items)

	history, err := env.assignments.History(ctx, &request.HistoryRequest{TeamId: teamId})
	require.NoError(t, err)
	assert.Len(t, history.Events, 3)
}

func TestSnapshotService_Restore_OtherTeamSnapshot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	core := env.createTeam(t, "core")
	infra := env.createTeam(t, "infra")
	env.addReviewer(t, core, "alice")

	foreign, err := env.snapshots.Capture(ctx, &request.CaptureSnapshotRequest{TeamId: core})
	require.NoError(t, err)

	_, err = env.snapshots.Restore(ctx, &request.RestoreSnapshotRequest{TeamId: infra, SnapshotId: foreign.Snapshot.Id})

	requireCode(t, err, "NOT_FOUND")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}
