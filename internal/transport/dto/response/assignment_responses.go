package response

import "github.com/niklvrr/ReviewerRotation/internal/domain"

type AssignResponse struct {
	Reviewer         *domain.Reviewer         `json:"reviewer"`
	Event            *domain.AssignmentEvent  `json:"event"`
	ActiveAssignment *domain.ActiveAssignment `json:"active_assignment,omitempty"`
	Warning          string                   `json:"warning,omitempty"`
	Next             *domain.Reviewer         `json:"next,omitempty"`
}

type UndoResponse struct {
	Reviewer *domain.Reviewer        `json:"reviewer"`
	Event    *domain.AssignmentEvent `json:"undone_event"`
}

type HistoryResponse struct {
	TeamId string                    `json:"team_id"`
	Events []*domain.AssignmentEvent `json:"events"`
}

type FeedResponse struct {
	TeamId       string             `json:"team_id"`
	Items        []*domain.FeedItem `json:"items"`
	LastAssigned *domain.FeedItem   `json:"last_assigned"`
}
