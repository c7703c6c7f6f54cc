package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/niklvrr/ReviewerRotation/internal/transport/dto/request"
	"github.com/niklvrr/ReviewerRotation/internal/transport/dto/response"
	"github.com/niklvrr/ReviewerRotation/internal/usecase/service"
	"go.uber.org/zap"
)

type AssignmentService interface {
	Next(ctx context.Context, req *request.NextRequest) (*response.NextResponse, error)
	Assign(ctx context.Context, req *request.AssignRequest) (*response.AssignResponse, error)
	AssignNext(ctx context.Context, req *request.AssignNextRequest) (*response.AssignResponse, error)
	AssignByTag(ctx context.Context, req *request.AssignByTagRequest) (*response.AssignResponse, error)
	Skip(ctx context.Context, req *request.SkipRequest) (*response.AssignResponse, error)
	Undo(ctx context.Context, req *request.UndoRequest) (*response.UndoResponse, error)
	History(ctx context.Context, req *request.HistoryRequest) (*response.HistoryResponse, error)
	Feed(ctx context.Context, req *request.FeedRequest) (*response.FeedResponse, error)
}

type AssignmentHandler struct {
	svc AssignmentService
	log *zap.Logger
}

func NewAssignmentHandler(svc AssignmentService, log *zap.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		svc: svc,
		log: log,
	}
}

// Next только показывает кандидата, ротация не двигается
func (h *AssignmentHandler) Next(w http.ResponseWriter, r *http.Request) {
	req := request.NextRequest{
		TeamId:    teamID(r),
		TagId:     optionalQuery(r, "tag_id"),
		ExcludeId: optionalQuery(r, "exclude_id"),
	}

	resp, err := h.svc.Next(r.Context(), &req)
	if err != nil {
		h.log.Error("failed to compute next reviewer", zap.String("team_id", req.TeamId), zap.Error(err))
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *AssignmentHandler) Assign(w http.ResponseWriter, r *http.Request) {
	h.log.Info("assign request received",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)

	var req request.AssignRequest
	if err := decodeBody(r, &req); err != nil {
		h.log.Warn("failed to decode request body", zap.Error(err))
		writeErr(w, err)
		return
	}
	req.TeamId = teamID(r)
	req.ActionBy = actionBy(r, req.ActionBy)

	resp, err := h.svc.Assign(r.Context(), &req)
	if err != nil {
		h.log.Error("failed to assign reviewer",
			zap.String("team_id", req.TeamId),
			zap.String("reviewer_id", req.ReviewerId),
			zap.Bool("forced", req.Forced),
			zap.Bool("skipped", req.Skipped),
			zap.Error(err),
		)
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *AssignmentHandler) AssignNext(w http.ResponseWriter, r *http.Request) {
	h.log.Info("assignNext request received",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)

	var req request.AssignNextRequest
	if err := decodeBody(r, &req); err != nil {
		h.log.Warn("failed to decode request body", zap.Error(err))
		writeErr(w, err)
		return
	}
	req.TeamId = teamID(r)
	req.ActionBy = actionBy(r, req.ActionBy)

	resp, err := h.svc.AssignNext(r.Context(), &req)
	if err != nil {
		h.log.Error("failed to assign next reviewer", zap.String("team_id", req.TeamId), zap.Error(err))
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *AssignmentHandler) AssignByTag(w http.ResponseWriter, r *http.Request) {
	h.log.Info("assignByTag request received",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)

	var req request.AssignByTagRequest
	if err := decodeBody(r, &req); err != nil {
		h.log.Warn("failed to decode request body", zap.Error(err))
		writeErr(w, err)
		return
	}
	req.TeamId = teamID(r)
	req.ActionBy = actionBy(r, req.ActionBy)

	resp, err := h.svc.AssignByTag(r.Context(), &req)
	if err != nil {
		h.log.Error("failed to assign by tag",
			zap.String("team_id", req.TeamId),
			zap.String("tag_id", req.TagId),
			zap.Error(err),
		)
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *AssignmentHandler) Skip(w http.ResponseWriter, r *http.Request) {
	var req request.SkipRequest
	if err := decodeBody(r, &req); err != nil {
		h.log.Warn("failed to decode request body", zap.Error(err))
		writeErr(w, err)
		return
	}
	req.TeamId = teamID(r)
	req.ActionBy = actionBy(r, req.ActionBy)

	resp, err := h.svc.Skip(r.Context(), &req)
	if err != nil {
		h.log.Error("failed to skip reviewer",
			zap.String("team_id", req.TeamId),
			zap.String("reviewer_id", req.ReviewerId),
			zap.Error(err),
		)
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *AssignmentHandler) Undo(w http.ResponseWriter, r *http.Request) {
	var req request.UndoRequest
	if err := decodeBody(r, &req); err != nil {
		h.log.Warn("failed to decode request body", zap.Error(err))
		writeErr(w, err)
		return
	}
	req.TeamId = teamID(r)
	req.ActionBy = actionBy(r, req.ActionBy)

	resp, err := h.svc.Undo(r.Context(), &req)
	if err != nil {
		h.log.Error("failed to undo assignment", zap.String("team_id", req.TeamId), zap.Error(err))
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *AssignmentHandler) History(w http.ResponseWriter, r *http.Request) {
	req := request.HistoryRequest{TeamId: teamID(r)}

	// limit необязателен, по умолчанию весь журнал
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			h.log.Warn("validation failed: bad limit", zap.String("limit", raw))
			writeErr(w, service.WrapError(service.ErrInvalidInput, err))
			return
		}
		req.Limit = limit
	}

	resp, err := h.svc.History(r.Context(), &req)
	if err != nil {
		h.log.Error("failed to get history", zap.String("team_id", req.TeamId), zap.Error(err))
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *AssignmentHandler) Feed(w http.ResponseWriter, r *http.Request) {
	req := request.FeedRequest{TeamId: teamID(r)}

	resp, err := h.svc.Feed(r.Context(), &req)
	if err != nil {
		h.log.Error("failed to get feed", zap.String("team_id", req.TeamId), zap.Error(err))
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
