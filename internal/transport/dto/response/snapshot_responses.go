package response

import "github.com/niklvrr/ReviewerRotation/internal/domain"

type SnapshotResponse struct {
	Snapshot *domain.Snapshot `json:"snapshot"`
}

type SnapshotsResponse struct {
	TeamId    string             `json:"team_id"`
	Snapshots []*domain.Snapshot `json:"snapshots"`
}

type RestoreResponse struct {
	RestoredFrom *domain.Snapshot   `json:"restored_from"`
	Snapshot     *domain.Snapshot   `json:"snapshot"`
	Reviewers    []*domain.Reviewer `json:"reviewers"`
}
