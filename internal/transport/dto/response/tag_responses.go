package response

import "github.com/niklvrr/ReviewerRotation/internal/domain"

type TagResponse struct {
	Tag *domain.Tag `json:"tag"`
}

type TagsResponse struct {
	TeamId string        `json:"team_id"`
	Tags   []*domain.Tag `json:"tags"`
}
