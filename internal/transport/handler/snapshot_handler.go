package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/niklvrr/ReviewerRotation/internal/transport/dto/request"
	"github.com/niklvrr/ReviewerRotation/internal/transport/dto/response"
	"go.uber.org/zap"
)

type SnapshotService interface {
	List(ctx context.Context, req *request.ListSnapshotsRequest) (*response.SnapshotsResponse, error)
	Capture(ctx context.Context, req *request.CaptureSnapshotRequest) (*response.SnapshotResponse, error)
	Restore(ctx context.Context, req *request.RestoreSnapshotRequest) (*response.RestoreResponse, error)
}

type SnapshotHandler struct {
	svc SnapshotService
	log *zap.Logger
}

func NewSnapshotHandler(svc SnapshotService, log *zap.Logger) *SnapshotHandler {
	return &SnapshotHandler{
		svc: svc,
		log: log,
	}
}

func (h *SnapshotHandler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	req := request.ListSnapshotsRequest{TeamId: teamID(r)}

	resp, err := h.svc.List(r.Context(), &req)
	if err != nil {
		h.log.Error("failed to list snapshots", zap.String("team_id", req.TeamId), zap.Error(err))
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *SnapshotHandler) CaptureSnapshot(w http.ResponseWriter, r *http.Request) {
	var req request.CaptureSnapshotRequest
	if err := decodeBody(r, &req); err != nil {
		h.log.Warn("failed to decode request body", zap.Error(err))
		writeErr(w, err)
		return
	}
	req.TeamId = teamID(r)

	resp, err := h.svc.Capture(r.Context(), &req)
	if err != nil {
		h.log.Error("failed to capture snapshot", zap.String("team_id", req.TeamId), zap.Error(err))
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *SnapshotHandler) RestoreSnapshot(w http.ResponseWriter, r *http.Request) {
	h.log.Info("restoreSnapshot request received",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)

	req := request.RestoreSnapshotRequest{
		TeamId:     teamID(r),
		SnapshotId: chi.URLParam(r, "snapshotId"),
	}

	resp, err := h.svc.Restore(r.Context(), &req)
	if err != nil {
		h.log.Error("failed to restore snapshot",
			zap.String("team_id", req.TeamId),
			zap.String("snapshot_id", req.SnapshotId),
			zap.Error(err),
		)
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
