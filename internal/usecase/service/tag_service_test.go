package service

import (
	"context"
	"testing"

	"github.com/niklvrr/ReviewerRotation/internal/transport/dto/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagService_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teamId := env.createTeam(t, "core")

	resp, err := env.tags.Create(ctx, &request.CreateTagRequest{
		TeamId:      teamId,
		Name:        " backend ",
		Color:       "#112233",
		Description: strPtr("server side"),
	})
	require.NoError(t, err)
	assert.Equal(t, "backend", resp.Tag.Name)

	_, err = env.tags.Create(ctx, &request.CreateTagRequest{TeamId: teamId, Name: "Backend", Color: "#000000"})
	requireCode(t, err, "CONFLICT")

	_, err = env.tags.Create(ctx, &request.CreateTagRequest{TeamId: teamId, Name: "frontend"})
	requireCode(t, err, "INVALID_INPUT")
}

func TestTagService_Update(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teamId := env.createTeam(t, "core")
	backend := env.createTag(t, teamId, "backend")
	env.createTag(t, teamId, "frontend")

	color := "#ff0000"
	resp, err := env.tags.Update(ctx, &request.UpdateTagRequest{TeamId: teamId, TagId: backend, Color: &color})
	require.NoError(t, err)
	assert.Equal(t, color, resp.Tag.Color)
	assert.Equal(t, "backend", resp.Tag.Name)

	clash := "frontend"
	_, err = env.tags.Update(ctx, &request.UpdateTagRequest{TeamId: teamId, TagId: backend, Name: &clash})
	requireCode(t, err, "CONFLICT")

	_, err = env.tags.Update(ctx, &request.UpdateTagRequest{TeamId: teamId, TagId: "ghost", Color: &color})
	requireCode(t, err, "NOT_FOUND")
}

func TestTagService_Delete_CascadesToReviewers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teamId := env.createTeam(t, "core")
	backend := env.createTag(t, teamId, "backend")
	frontend := env.createTag(t, teamId, "frontend")
	alice := env.addReviewer(t, teamId, "alice", backend, frontend)

	require.NoError(t, env.tags.Delete(ctx, &request.DeleteTagRequest{TeamId: teamId, TagId: backend}))

	got, err := env.reviewers.Get(ctx, &request.GetReviewerRequest{TeamId: teamId, ReviewerId: alice.Id})
	require.NoError(t, err)
	assert.Equal(t, []string{frontend}, got.Reviewer.Tags)

	list, err := env.tags.List(ctx, &request.ListTagsRequest{TeamId: teamId})
	require.NoError(t, err)
	require.Len(t, list.Tags, 1)
	assert.Equal(t, frontend, list.Tags[0].Id)

	_, err = env.tags.Get(ctx, &request.GetTagRequest{TeamId: teamId, TagId: backend})
	requireCode(t, err, "NOT_FOUND")

	snapshots, err := env.snapshots.List(ctx, &request.ListSnapshotsRequest{TeamId: teamId})
	require.NoError(t, err)
	assert.Equal(t, "deleted tag backend", snapshots.Snapshots[0].Reason)
}
