package request

import "github.com/niklvrr/ReviewerRotation/internal/domain"

type AssignRequest struct {
	TeamId     string           `json:"-"`
	ReviewerId string           `json:"reviewer_id"`
	Forced     bool             `json:"forced"`
	Skipped    bool             `json:"skipped"`
	TagId      *string          `json:"tag_id"`
	PrUrl      *string          `json:"pr_url"`
	AssignerId *string          `json:"assigner_id"`
	ActionBy   *domain.ActionBy `json:"action_by"`
}

type AssignNextRequest struct {
	TeamId     string           `json:"-"`
	ExcludeId  *string          `json:"exclude_id"`
	PrUrl      *string          `json:"pr_url"`
	AssignerId *string          `json:"assigner_id"`
	ActionBy   *domain.ActionBy `json:"action_by"`
}

type AssignByTagRequest struct {
	TeamId     string           `json:"-"`
	TagId      string           `json:"tag_id"`
	ExcludeId  *string          `json:"exclude_id"`
	PrUrl      *string          `json:"pr_url"`
	AssignerId *string          `json:"assigner_id"`
	ActionBy   *domain.ActionBy `json:"action_by"`
}

type SkipRequest struct {
	TeamId     string           `json:"-"`
	ReviewerId string           `json:"reviewer_id"`
	ActionBy   *domain.ActionBy `json:"action_by"`
}

type UndoRequest struct {
	TeamId   string           `json:"-"`
	ActionBy *domain.ActionBy `json:"action_by"`
}

type HistoryRequest struct {
	TeamId string `json:"team_id"`
	Limit  int    `json:"limit"`
}

type FeedRequest struct {
	TeamId string `json:"team_id"`
}
