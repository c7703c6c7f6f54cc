package dto

import (
	"time"

	"github.com/niklvrr/ReviewerRotation/internal/domain"
)

type AppendEventDTO struct {
	Id           string
	TeamId       string
	ReviewerId   string
	ReviewerName string
	Timestamp    time.Time
	Forced       bool
	Skipped      bool
	IsAbsentSkip bool
	TagId        *string
	ActionBy     *domain.ActionBy
	PrUrl        *string
}

type CaptureSnapshotDTO struct {
	Id        string
	TeamId    string
	Reason    string
	Reviewers []*domain.Reviewer
	CreatedAt time.Time
}

type CreateActiveAssignmentDTO struct {
	Id         string
	TeamId     string
	AssigneeId string
	AssignerId string
	PrUrl      *string
	CreatedAt  time.Time
}
