package request

type ListSnapshotsRequest struct {
	TeamId string `json:"team_id"`
}

type CaptureSnapshotRequest struct {
	TeamId string `json:"-"`
	Reason string `json:"reason"`
}

type RestoreSnapshotRequest struct {
	TeamId     string `json:"team_id"`
	SnapshotId string `json:"snapshot_id"`
}
