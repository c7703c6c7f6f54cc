package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	assignmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rotation_assignments_total",
		Help: "Assignment ledger appends by kind.",
	}, []string{"kind"})

	undoTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rotation_undo_total",
		Help: "Successful undo operations.",
	})

	noCandidateTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rotation_no_candidate_total",
		Help: "Selections that found no available reviewer.",
	})

	snapshotRestoresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rotation_snapshot_restores_total",
		Help: "Reviewer pool restores from a snapshot.",
	})
)
