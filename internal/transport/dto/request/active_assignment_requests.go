package request

type CreateActiveAssignmentRequest struct {
	TeamId     string  `json:"-"`
	AssigneeId string  `json:"assignee_id"`
	AssignerId string  `json:"assigner_id"`
	PrUrl      *string `json:"pr_url"`
}

type ListActiveAssignmentsRequest struct {
	TeamId     string  `json:"team_id"`
	ReviewerId *string `json:"reviewer_id"`
}

type CompleteActiveAssignmentRequest struct {
	TeamId             string `json:"-"`
	ActiveAssignmentId string `json:"-"`
	ActingReviewerId   string `json:"acting_reviewer_id"`
}
