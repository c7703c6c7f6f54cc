package response

import "github.com/niklvrr/ReviewerRotation/internal/domain"

type ActiveAssignmentResponse struct {
	ActiveAssignment *domain.ActiveAssignment `json:"active_assignment"`
}

type ActiveAssignmentsResponse struct {
	TeamId            string                     `json:"team_id"`
	ActiveAssignments []*domain.ActiveAssignment `json:"active_assignments"`
}
