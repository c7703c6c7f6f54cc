package dto

import "time"

type AddTagDTO struct {
	Id          string
	TeamId      string
	Name        string
	Color       string
	Description *string
	CreatedAt   time.Time
}

type UpdateTagDTO struct {
	TeamId      string
	TagId       string
	Name        *string
	Color       *string
	Description *string
}
