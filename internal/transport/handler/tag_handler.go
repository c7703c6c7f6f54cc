package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/niklvrr/ReviewerRotation/internal/transport/dto/request"
	"github.com/niklvrr/ReviewerRotation/internal/transport/dto/response"
	"go.uber.org/zap"
)

type TagService interface {
	List(ctx context.Context, req *request.ListTagsRequest) (*response.TagsResponse, error)
	Get(ctx context.Context, req *request.GetTagRequest) (*response.TagResponse, error)
	Create(ctx context.Context, req *request.CreateTagRequest) (*response.TagResponse, error)
	Update(ctx context.Context, req *request.UpdateTagRequest) (*response.TagResponse, error)
	Delete(ctx context.Context, req *request.DeleteTagRequest) error
}

type TagHandler struct {
	svc TagService
	log *zap.Logger
}

func NewTagHandler(svc TagService, log *zap.Logger) *TagHandler {
	return &TagHandler{
		svc: svc,
		log: log,
	}
}

func tagID(r *http.Request) string {
	return chi.URLParam(r, "tagId")
}

func (h *TagHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	req := request.ListTagsRequest{TeamId: teamID(r)}

	resp, err := h.svc.List(r.Context(), &req)
	if err != nil {
		h.log.Error("failed to list tags", zap.String("team_id", req.TeamId), zap.Error(err))
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *TagHandler) GetTag(w http.ResponseWriter, r *http.Request) {
	req := request.GetTagRequest{
		TeamId: teamID(r),
		TagId:  tagID(r),
	}

	resp, err := h.svc.Get(r.Context(), &req)
	if err != nil {
		h.log.Error("failed to get tag",
			zap.String("team_id", req.TeamId),
			zap.String("tag_id", req.TagId),
			zap.Error(err),
		)
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *TagHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req request.CreateTagRequest
	if err := decodeBody(r, &req); err != nil {
		h.log.Warn("failed to decode request body", zap.Error(err))
		writeErr(w, err)
		return
	}
	req.TeamId = teamID(r)

	resp, err := h.svc.Create(r.Context(), &req)
	if err != nil {
		h.log.Error("failed to create tag",
			zap.String("team_id", req.TeamId),
			zap.String("name", req.Name),
			zap.Error(err),
		)
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *TagHandler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateTagRequest
	if err := decodeBody(r, &req); err != nil {
		h.log.Warn("failed to decode request body", zap.Error(err))
		writeErr(w, err)
		return
	}
	req.TeamId = teamID(r)
	req.TagId = tagID(r)

	resp, err := h.svc.Update(r.Context(), &req)
	if err != nil {
		h.log.Error("failed to update tag",
			zap.String("team_id", req.TeamId),
			zap.String("tag_id", req.TagId),
			zap.Error(err),
		)
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *TagHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	req := request.DeleteTagRequest{
		TeamId: teamID(r),
		TagId:  tagID(r),
	}

	if err := h.svc.Delete(r.Context(), &req); err != nil {
		h.log.Error("failed to delete tag",
			zap.String("team_id", req.TeamId),
			zap.String("tag_id", req.TagId),
			zap.Error(err),
		)
		writeErr(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
