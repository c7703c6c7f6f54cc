package dto

import "time"

type AddTeamDTO struct {
	Id        string
	Name      string
	CreatedAt time.Time
}
