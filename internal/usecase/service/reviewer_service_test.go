package service

import (
	"context"
	"testing"
	"time"

	"github.com/niklvrr/ReviewerRotation/internal/transport/dto/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewerService_Add_StartsAtMinimum(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teamId := env.createTeam(t, "core")
	alice := env.addReviewer(t, teamId, "alice")
	bob := env.addReviewer(t, teamId, "bob")
	assert.Equal(t, 0, alice.AssignmentCount)
	assert.Equal(t, 0, bob.AssignmentCount)

	for i := 0; i < 5; i++ {
		_, err := env.assignments.AssignNext(ctx, &request.AssignNextRequest{TeamId: teamId})
		require.NoError(t, err)
	}

	carol := env.addReviewer(t, teamId, "carol")
	assert.Equal(t, 2, carol.AssignmentCount)
}

func TestReviewerService_Add_DuplicateEmailIgnoresCase(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teamId := env.createTeam(t, "core")
	env.addReviewer(t, teamId, "alice")

	_, err := env.reviewers.Add(ctx, &request.AddReviewerRequest{
		TeamId: teamId,
		Name:   "Alice Again",
		Email:  "  ALICE@Example.com ",
	})

	requireCode(t, err, "CONFLICT")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestReviewerService_Add_SameEmailOtherTeam(t *testing.T) {
	env := newTestEnv(t)
	core := env.createTeam(t, "core")
	infra := env.createTeam(t, "infra")

	env.addReviewer(t, core, "alice")
	env.addReviewer(t, infra, "alice")
}

func TestReviewerService_Add_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teamId := env.createTeam(t, "core")

	tests := []struct {
		name string
		req  *request.AddReviewerRequest
		code string
	}{
		{name: "empty name", req: &request.AddReviewerRequest{TeamId: teamId, Email: "x@example.com"}, code: "INVALID_INPUT"},
		{name: "bad email", req: &request.AddReviewerRequest{TeamId: teamId, Name: "x", Email: "nope"}, code: "INVALID_INPUT"},
		{name: "unknown tag", req: &request.AddReviewerRequest{TeamId: teamId, Name: "x", Email: "x@example.com", Tags: []string{"ghost"}}, code: "NOT_FOUND"},
		{name: "unknown team", req: &request.AddReviewerRequest{TeamId: "ghost", Name: "x", Email: "x@example.com"}, code: "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.reviewers.Add(ctx, tt.req)
			requireCode(t, err, tt.code)
		})
	}
}

func TestReviewerService_Import_AllOrNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teamId := env.createTeam(t, "core")
	env.addReviewer(t, teamId, "alice")

	_, err := env.reviewers.Import(ctx, &request.ImportReviewersRequest{
		TeamId: teamId,
		Reviewers: []request.ImportReviewer{
			{Name: "bob", Email: "bob@example.com"},
			{Name: "alice2", Email: "alice@example.com"},
		},
	})
	requireCode(t, err, "CONFLICT")
	assert.Len(t, env.counts(t, teamId), 1)

	_, err = env.reviewers.Import(ctx, &request.ImportReviewersRequest{
		TeamId: teamId,
		Reviewers: []request.ImportReviewer{
			{Name: "bob", Email: "bob@example.com"},
			{Name: "bobby", Email: "BOB@example.com"},
		},
	})
	requireCode(t, err, "CONFLICT")
	assert.Len(t, env.counts(t, teamId), 1)
}

func TestReviewerService_Import_SharedStartCount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teamId := env.createTeam(t, "core")
	alice := env.addReviewer(t, teamId, "alice")
	count := 3
	_, err := env.reviewers.UpdateAssignmentCount(ctx, &request.UpdateAssignmentCountRequest{
		TeamId:          teamId,
		ReviewerId:      alice.Id,
		AssignmentCount: &count,
	})
	require.NoError(t, err)

	resp, err := env.reviewers.Import(ctx, &request.ImportReviewersRequest{
		TeamId: teamId,
		Reviewers: []request.ImportReviewer{
			{Name: "bob", Email: "bob@example.com"},
			{Name: "carol", Email: "carol@example.com"},
		},
	})

	require.NoError(t, err)
	require.Len(t, resp.Reviewers, 2)
	for _, r := range resp.Reviewers {
		assert.Equal(t, 3, r.AssignmentCount)
	}

	snapshots, err := env.snapshots.List(ctx, &request.ListSnapshotsRequest{TeamId: teamId})
	require.NoError(t, err)
	assert.Equal(t, "imported 2 reviewers", snapshots.Snapshots[0].Reason)
}

func TestReviewerService_Update(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teamId := env.createTeam(t, "core")
	backend := env.createTag(t, teamId, "backend")
	alice := env.addReviewer(t, teamId, "alice")
	env.addReviewer(t, teamId, "bob")

	name := "Alice Liddell"
	tags := []string{backend, backend}
	resp, err := env.reviewers.Update(ctx, &request.UpdateReviewerRequest{
		TeamId:     teamId,
		ReviewerId: alice.Id,
		Name:       &name,
		Tags:       &tags,
	})
	require.NoError(t, err)
	assert.Equal(t, name, resp.Reviewer.Name)
	assert.Equal(t, []string{backend}, resp.Reviewer.Tags)

	// Свой же email не конфликт
	own := "ALICE@example.com"
	_, err = env.reviewers.Update(ctx, &request.UpdateReviewerRequest{TeamId: teamId, ReviewerId: alice.Id, Email: &own})
	require.NoError(t, err)

	taken := "bob@example.com"
	_, err = env.reviewers.Update(ctx, &request.UpdateReviewerRequest{TeamId: teamId, ReviewerId: alice.Id, Email: &taken})
	requireCode(t, err, "CONFLICT")
}

func TestReviewerService_Remove_KeepsHistoryName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teamId := env.createTeam(t, "core")
	alice := env.addReviewer(t, teamId, "alice")

	_, err := env.assignments.Assign(ctx, &request.AssignRequest{TeamId: teamId, ReviewerId: alice.Id})
	require.NoError(t, err)
	require.NoError(t, env.reviewers.Remove(ctx, &request.RemoveReviewerRequest{TeamId: teamId, ReviewerId: alice.Id}))

	history, err := env.assignments.History(ctx, &request.HistoryRequest{TeamId: teamId})
	require.NoError(t, err)
	require.Len(t, history.Events, 1)
	assert.Equal(t, "alice", history.Events[0].ReviewerName)

	err = env.reviewers.Remove(ctx, &request.RemoveReviewerRequest{TeamId: teamId, ReviewerId: alice.Id})
	requireCode(t, err, "NOT_FOUND")
}

func TestReviewerService_ToggleAbsence_ReturnsAtModeCount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teamId := env.createTeam(t, "core")
	alice := env.addReviewer(t, teamId, "alice")
	env.addReviewer(t, teamId, "bob")
	env.addReviewer(t, teamId, "carol")

	until := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	away, err := env.reviewers.ToggleAbsence(ctx, &request.ToggleAbsenceRequest{
		TeamId:      teamId,
		ReviewerId:  alice.Id,
		AbsentUntil: &until,
	})
	require.NoError(t, err)
	assert.True(t, away.Reviewer.IsAbsent)
	require.NotNil(t, away.Reviewer.AbsentUntil)

	for i := 0; i < 8; i++ {
		_, err := env.assignments.AssignNext(ctx, &request.AssignNextRequest{TeamId: teamId})
		require.NoError(t, err)
	}
	assert.Equal(t, 0, env.counts(t, teamId)["alice"])

	back, err := env.reviewers.ToggleAbsence(ctx, &request.ToggleAbsenceRequest{TeamId: teamId, ReviewerId: alice.Id})
	require.NoError(t, err)
	assert.False(t, back.Reviewer.IsAbsent)
	assert.Nil(t, back.Reviewer.AbsentUntil)
	assert.Equal(t, 4, back.Reviewer.AssignmentCount)
}

func TestReviewerService_UpdateAssignmentCount_RejectsNegative(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teamId := env.createTeam(t, "core")
	alice := env.addReviewer(t, teamId, "alice")
	negative := -1

	_, err := env.reviewers.UpdateAssignmentCount(ctx, &request.UpdateAssignmentCountRequest{
		TeamId:          teamId,
		ReviewerId:      alice.Id,
		AssignmentCount: &negative,
	})
	requireCode(t, err, "INVALID_INPUT")

	_, err = env.reviewers.UpdateAssignmentCount(ctx, &request.UpdateAssignmentCountRequest{
		TeamId:     teamId,
		ReviewerId: alice.Id,
	})
	requireCode(t, err, "INVALID_INPUT")
}

func TestReviewerService_ResetAll(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teamId := env.createTeam(t, "core")
	env.addReviewer(t, teamId, "alice")
	env.addReviewer(t, teamId, "bob")
	for i := 0; i < 3; i++ {
		_, err := env.assignments.AssignNext(ctx, &request.AssignNextRequest{TeamId: teamId})
		require.NoError(t, err)
	}

	resp, err := env.reviewers.ResetAll(ctx, &request.ResetAllRequest{TeamId: teamId})
	require.NoError(t, err)
	for _, r := range resp.Reviewers {
		assert.Equal(t, 0, r.AssignmentCount)
	}

	history, err := env.assignments.History(ctx, &request.HistoryRequest{TeamId: teamId})
	require.NoError(t, err)
	assert.Empty(t, history.Events)

	feed, err := env.assignments.Feed(ctx, &request.FeedRequest{TeamId: teamId})
	require.NoError(t, err)
	assert.Empty(t, feed.Items)

	_, err = env.assignments.Undo(ctx, &request.UndoRequest{TeamId: teamId})
	requireCode(t, err, "NOTHING_TO_UNDO")
}

func TestReviewerService_List_OrderedByCreation(t *testing.T) {
	stepClock(t)
	env := newTestEnv(t)
	teamId := env.createTeam(t, "core")
	env.addReviewer(t, teamId, "zed")
	env.addReviewer(t, teamId, "amy")

	resp, err := env.reviewers.List(context.Background(), &request.ListReviewersRequest{TeamId: teamId})

	require.NoError(t, err)
	require.Len(t, resp.Reviewers, 2)
	assert.Equal(t, "zed", resp.Reviewers[0].Name)
	assert.Equal(t, "amy", resp.Reviewers[1].Name)
}
