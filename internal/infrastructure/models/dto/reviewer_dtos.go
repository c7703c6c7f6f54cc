package dto

import "time"

type AddReviewerDTO struct {
	Id              string
	TeamId          string
	Name            string
	Email           string
	AssignmentCount int
	Tags            []string
	CreatedAt       time.Time
}

type UpdateReviewerDTO struct {
	TeamId     string
	ReviewerId string
	Name       *string
	Email      *string
	Tags       []string
	SetTags    bool
}

type SetAbsenceDTO struct {
	TeamId          string
	ReviewerId      string
	IsAbsent        bool
	AbsentUntil     *time.Time
	AssignmentCount int
}

type SetAssignmentCountDTO struct {
	TeamId          string
	ReviewerId      string
	AssignmentCount int
}
