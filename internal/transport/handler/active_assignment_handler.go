package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/niklvrr/ReviewerRotation/internal/transport/dto/request"
	"github.com/niklvrr/ReviewerRotation/internal/transport/dto/response"
	"go.uber.org/zap"
)

type ActiveAssignmentService interface {
	Create(ctx context.Context, req *request.CreateActiveAssignmentRequest) (*response.ActiveAssignmentResponse, error)
	List(ctx context.Context, req *request.ListActiveAssignmentsRequest) (*response.ActiveAssignmentsResponse, error)
	Complete(ctx context.Context, req *request.CompleteActiveAssignmentRequest) error
}

type ActiveAssignmentHandler struct {
	svc ActiveAssignmentService
	log *zap.Logger
}

func NewActiveAssignmentHandler(svc ActiveAssignmentService, log *zap.Logger) *ActiveAssignmentHandler {
	return &ActiveAssignmentHandler{
		svc: svc,
		log: log,
	}
}

func (h *ActiveAssignmentHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	req := request.ListActiveAssignmentsRequest{
		TeamId:     teamID(r),
		ReviewerId: optionalQuery(r, "reviewer_id"),
	}

	resp, err := h.svc.List(r.Context(), &req)
	if err != nil {
		h.log.Error("failed to list active assignments", zap.String("team_id", req.TeamId), zap.Error(err))
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *ActiveAssignmentHandler) CreateActive(w http.ResponseWriter, r *http.Request) {
	var req request.CreateActiveAssignmentRequest
	if err := decodeBody(r, &req); err != nil {
		h.log.Warn("failed to decode request body", zap.Error(err))
		writeErr(w, err)
		return
	}
	req.TeamId = teamID(r)

	resp, err := h.svc.Create(r.Context(), &req)
	if err != nil {
		h.log.Error("failed to create active assignment",
			zap.String("team_id", req.TeamId),
			zap.String("assignee_id", req.AssigneeId),
			zap.Error(err),
		)
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *ActiveAssignmentHandler) CompleteActive(w http.ResponseWriter, r *http.Request) {
	var req request.CompleteActiveAssignmentRequest
	if err := decodeBody(r, &req); err != nil {
		h.log.Warn("failed to decode request body", zap.Error(err))
		writeErr(w, err)
		return
	}
	req.TeamId = teamID(r)
	req.ActiveAssignmentId = chi.URLParam(r, "id")

	if err := h.svc.Complete(r.Context(), &req); err != nil {
		h.log.Error("failed to complete active assignment",
			zap.String("team_id", req.TeamId),
			zap.String("active_assignment_id", req.ActiveAssignmentId),
			zap.Error(err),
		)
		writeErr(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
