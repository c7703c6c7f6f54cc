package request

import "time"

type ListReviewersRequest struct {
	TeamId string `json:"team_id"`
}

type GetReviewerRequest struct {
	TeamId     string `json:"team_id"`
	ReviewerId string `json:"reviewer_id"`
}

type AddReviewerRequest struct {
	TeamId string   `json:"-"`
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Tags   []string `json:"tags"`
}

type ImportReviewer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ImportReviewersRequest struct {
	TeamId    string           `json:"-"`
	Reviewers []ImportReviewer `json:"reviewers"`
}

type UpdateReviewerRequest struct {
	TeamId     string    `json:"-"`
	ReviewerId string    `json:"-"`
	Name       *string   `json:"name"`
	Email      *string   `json:"email"`
	Tags       *[]string `json:"tags"`
}

type RemoveReviewerRequest struct {
	TeamId     string `json:"team_id"`
	ReviewerId string `json:"reviewer_id"`
}

type ToggleAbsenceRequest struct {
	TeamId      string     `json:"-"`
	ReviewerId  string     `json:"-"`
	AbsentUntil *time.Time `json:"absent_until"`
}

type UpdateAssignmentCountRequest struct {
	TeamId          string `json:"-"`
	ReviewerId      string `json:"-"`
	AssignmentCount *int   `json:"assignment_count"`
}

type ResetAllRequest struct {
	TeamId string `json:"team_id"`
}

type NextRequest struct {
	TeamId    string  `json:"team_id"`
	TagId     *string `json:"tag_id"`
	ExcludeId *string `json:"exclude_id"`
}
