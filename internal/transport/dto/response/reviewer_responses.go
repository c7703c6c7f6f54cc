package response

import "github.com/niklvrr/ReviewerRotation/internal/domain"

type ReviewerResponse struct {
	Reviewer *domain.Reviewer `json:"reviewer"`
}

type ReviewersResponse struct {
	TeamId    string             `json:"team_id"`
	Reviewers []*domain.Reviewer `json:"reviewers"`
}

type NextResponse struct {
	TeamId    string           `json:"team_id"`
	Available bool             `json:"available"`
	Reviewer  *domain.Reviewer `json:"reviewer"`
}
