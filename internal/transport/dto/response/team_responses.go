package response

import "github.com/niklvrr/ReviewerRotation/internal/domain"

type TeamResponse struct {
	Team *domain.Team `json:"team"`
}
