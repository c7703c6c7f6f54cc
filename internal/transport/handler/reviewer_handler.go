package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/niklvrr/ReviewerRotation/internal/transport/dto/request"
	"github.com/niklvrr/ReviewerRotation/internal/transport/dto/response"
	"go.uber.org/zap"
)

type ReviewerService interface {
	List(ctx context.Context, req *request.ListReviewersRequest) (*response.ReviewersResponse, error)
	Get(ctx context.Context, req *request.GetReviewerRequest) (*response.ReviewerResponse, error)
	Add(ctx context.Context, req *request.AddReviewerRequest) (*response.ReviewerResponse, error)
	Import(ctx context.Context, req *request.ImportReviewersRequest) (*response.ReviewersResponse, error)
	Update(ctx context.Context, req *request.UpdateReviewerRequest) (*response.ReviewerResponse, error)
	Remove(ctx context.Context, req *request.RemoveReviewerRequest) error
	ToggleAbsence(ctx context.Context, req *request.ToggleAbsenceRequest) (*response.ReviewerResponse, error)
	UpdateAssignmentCount(ctx context.Context, req *request.UpdateAssignmentCountRequest) (*response.ReviewerResponse, error)
	ResetAll(ctx context.Context, req *request.ResetAllRequest) (*response.ReviewersResponse, error)
}

type ReviewerHandler struct {
	svc ReviewerService
	log *zap.Logger
}

func NewReviewerHandler(svc ReviewerService, log *zap.Logger) *ReviewerHandler {
	return &ReviewerHandler{
		svc: svc,
		log: log,
	}
}

func reviewerID(r *http.Request) string {
	return chi.URLParam(r, "reviewerId")
}

func (h *ReviewerHandler) ListReviewers(w http.ResponseWriter, r *http.Request) {
	req := request.ListReviewersRequest{TeamId: teamID(r)}

	resp, err := h.svc.List(r.Context(), &req)
	if err != nil {
		h.log.Error("failed to list reviewers", zap.String("team_id", req.TeamId), zap.Error(err))
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *ReviewerHandler) GetReviewer(w http.ResponseWriter, r *http.Request) {
	req := request.GetReviewerRequest{
		TeamId:     teamID(r),
		ReviewerId: reviewerID(r),
	}

	resp, err := h.svc.Get(r.Context(), &req)
	if err != nil {
		h.log.Error("failed to get reviewer",
			zap.String("team_id", req.TeamId),
			zap.String("reviewer_id", req.ReviewerId),
			zap.Error(err),
		)
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *ReviewerHandler) AddReviewer(w http.ResponseWriter, r *http.Request) {
	h.log.Info("addReviewer request received",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)

	var req request.AddReviewerRequest
	if err := decodeBody(r, &req); err != nil {
		h.log.Warn("failed to decode request body", zap.Error(err))
		writeErr(w, err)
		return
	}
	req.TeamId = teamID(r)

	resp, err := h.svc.Add(r.Context(), &req)
	if err != nil {
		h.log.Error("failed to add reviewer",
			zap.String("team_id", req.TeamId),
			zap.String("email", req.Email),
			zap.Error(err),
		)
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *ReviewerHandler) ImportReviewers(w http.ResponseWriter, r *http.Request) {
	h.log.Info("importReviewers request received",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)

	var req request.ImportReviewersRequest
	if err := decodeBody(r, &req); err != nil {
		h.log.Warn("failed to decode request body", zap.Error(err))
		writeErr(w, err)
		return
	}
	req.TeamId = teamID(r)

	resp, err := h.svc.Import(r.Context(), &req)
	if err != nil {
		h.log.Error("failed to import reviewers",
			zap.String("team_id", req.TeamId),
			zap.Int("count", len(req.Reviewers)),
			zap.Error(err),
		)
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *ReviewerHandler) UpdateReviewer(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateReviewerRequest
	if err := decodeBody(r, &req); err != nil {
		h.log.Warn("failed to decode request body", zap.Error(err))
		writeErr(w, err)
		return
	}
	req.TeamId = teamID(r)
	req.ReviewerId = reviewerID(r)

	resp, err := h.svc.Update(r.Context(), &req)
	if err != nil {
		h.log.Error("failed to update reviewer",
			zap.String("team_id", req.TeamId),
			zap.String("reviewer_id", req.ReviewerId),
			zap.Error(err),
		)
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *ReviewerHandler) RemoveReviewer(w http.ResponseWriter, r *http.Request) {
	req := request.RemoveReviewerRequest{
		TeamId:     teamID(r),
		ReviewerId: reviewerID(r),
	}

	if err := h.svc.Remove(r.Context(), &req); err != nil {
		h.log.Error("failed to remove reviewer",
			zap.String("team_id", req.TeamId),
			zap.String("reviewer_id", req.ReviewerId),
			zap.Error(err),
		)
		writeErr(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ReviewerHandler) ToggleAbsence(w http.ResponseWriter, r *http.Request) {
	var req request.ToggleAbsenceRequest
	if err := decodeBody(r, &req); err != nil {
		h.log.Warn("failed to decode request body", zap.Error(err))
		writeErr(w, err)
		return
	}
	req.TeamId = teamID(r)
	req.ReviewerId = reviewerID(r)

	resp, err := h.svc.ToggleAbsence(r.Context(), &req)
	if err != nil {
		h.log.Error("failed to toggle absence",
			zap.String("team_id", req.TeamId),
			zap.String("reviewer_id", req.ReviewerId),
			zap.Error(err),
		)
		writeErr(w, err)
		return
	}

	h.log.Info("absence toggled",
		zap.String("team_id", req.TeamId),
		zap.String("reviewer_id", req.ReviewerId),
		zap.Bool("is_absent", resp.Reviewer.IsAbsent),
	)
	writeJSON(w, http.StatusOK, resp)
}

func (h *ReviewerHandler) UpdateAssignmentCount(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateAssignmentCountRequest
	if err := decodeBody(r, &req); err != nil {
		h.log.Warn("failed to decode request body", zap.Error(err))
		writeErr(w, err)
		return
	}
	req.TeamId = teamID(r)
	req.ReviewerId = reviewerID(r)

	resp, err := h.svc.UpdateAssignmentCount(r.Context(), &req)
	if err != nil {
		h.log.Error("failed to update assignment count",
			zap.String("team_id", req.TeamId),
			zap.String("reviewer_id", req.ReviewerId),
			zap.Error(err),
		)
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *ReviewerHandler) ResetAll(w http.ResponseWriter, r *http.Request) {
	req := request.ResetAllRequest{TeamId: teamID(r)}

	resp, err := h.svc.ResetAll(r.Context(), &req)
	if err != nil {
		h.log.Error("failed to reset counts", zap.String("team_id", req.TeamId), zap.Error(err))
		writeErr(w, err)
		return
	}

	h.log.Info("assignment counts reset", zap.String("team_id", req.TeamId))
	writeJSON(w, http.StatusOK, resp)
}
