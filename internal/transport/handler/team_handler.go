package handler

import (
	"context"
	"net/http"

	"github.com/niklvrr/ReviewerRotation/internal/transport/dto/request"
	"github.com/niklvrr/ReviewerRotation/internal/transport/dto/response"
	"go.uber.org/zap"
)

type TeamService interface {
	Create(ctx context.Context, req *request.CreateTeamRequest) (*response.TeamResponse, error)
	Get(ctx context.Context, req *request.GetTeamRequest) (*response.TeamResponse, error)
}

type TeamHandler struct {
	svc TeamService
	log *zap.Logger
}

func NewTeamHandler(svc TeamService, log *zap.Logger) *TeamHandler {
	return &TeamHandler{
		svc: svc,
		log: log,
	}
}

func (h *TeamHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	h.log.Info("createTeam request received",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)

	// Парсим json в модель CreateTeamRequest
	var req request.CreateTeamRequest
	if err := decodeBody(r, &req); err != nil {
		h.log.Warn("failed to decode request body", zap.Error(err))
		writeErr(w, err)
		return
	}

	// Вызов сервиса
	resp, err := h.svc.Create(r.Context(), &req)
	if err != nil {
		h.log.Error("failed to create team",
			zap.String("team_name", req.TeamName),
			zap.Error(err),
		)
		writeErr(w, err)
		return
	}

	h.log.Info("team created successfully",
		zap.String("team_id", resp.Team.Id),
		zap.String("team_name", resp.Team.Name),
	)
	writeJSON(w, http.StatusCreated, resp)
}

func (h *TeamHandler) GetTeam(w http.ResponseWriter, r *http.Request) {
	req := request.GetTeamRequest{
		TeamId: teamID(r),
	}

	resp, err := h.svc.Get(r.Context(), &req)
	if err != nil {
		h.log.Error("failed to get team",
			zap.String("team_id", req.TeamId),
			zap.Error(err),
		)
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
