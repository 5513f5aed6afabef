package metrics

import (
	"github.com/hostelhub/hostelhub-backend/pkg/enums"
	"github.com/prometheus/client_golang/prometheus"
)

// LeaveMetrics counts leave request lifecycle events.
type LeaveMetrics struct {
	submissions *prometheus.CounterVec
	transitions *prometheus.CounterVec
	conflicts   *prometheus.CounterVec
}

func NewLeaveMetrics(reg prometheus.Registerer) *LeaveMetrics {
	if reg == nil {
		return &LeaveMetrics{}
	}
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "leave",
		Name:      "submissions_total",
		Help:      "Leave requests submitted, by leave type.",
	}, []string{"leave_type"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "leave",
		Name:      "transitions_total",
		Help:      "Leave request status transitions.",
	}, []string{"from", "to"})
	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "leave",
		Name:      "conflicts_total",
		Help:      "Decisions rejected because the request was no longer pending.",
	}, []string{"action"})
	reg.MustRegister(submissions, transitions, conflicts)
	return &LeaveMetrics{
		submissions: submissions,
		transitions: transitions,
		conflicts:   conflicts,
	}
}

func (m *LeaveMetrics) RecordSubmission(leaveType enums.LeaveType) {
	if m == nil || m.submissions == nil {
		return
	}
	m.submissions.WithLabelValues(normalizeLabel(string(leaveType))).Inc()
}

func (m *LeaveMetrics) RecordTransition(from, to enums.LeaveStatus) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(string(from)), normalizeLabel(string(to))).Inc()
}

func (m *LeaveMetrics) RecordConflict(action string) {
	if m == nil || m.conflicts == nil {
		return
	}
	m.conflicts.WithLabelValues(normalizeLabel(action)).Inc()
}
