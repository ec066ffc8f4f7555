// Package metrics exposes Prometheus counters for the activity pipeline.
// A nil *Recorder is safe to use so instrumentation stays optional.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the pipeline counters. Construct one per registry with
// NewRecorder; all methods are no-ops on a nil receiver.
type Recorder struct {
	activitiesAdded   prometheus.Counter
	activitiesRemoved prometheus.Counter
	fanOutCopies      prometheus.Counter
	dedupedEvents     prometheus.Counter
	excludedEvents    prometheus.Counter
	threadEntries     *prometheus.CounterVec
	filterIngests     *prometheus.CounterVec
	filterErrors      *prometheus.CounterVec
	upgraderRuns      *prometheus.CounterVec
}

// NewRecorder registers the pipeline counters with the given registerer.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		activitiesAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "activitystream_activities_added_total",
			Help: "Activities persisted to the stream.",
		}),
		activitiesRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "activitystream_activities_removed_total",
			Help: "Activities removed from the stream.",
		}),
		fanOutCopies: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "activitystream_fanout_copies_total",
			Help: "Scoped activity copies produced by translation fan-out.",
		}),
		dedupedEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "activitystream_deduped_events_total",
			Help: "Events dropped by in-bundle deduplication.",
		}),
		excludedEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "activitystream_excluded_events_total",
			Help: "Events excluded by translation policy.",
		}),
		threadEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "activitystream_thread_entries_total",
			Help: "Comments and replies appended to activities.",
		}, []string{"kind"}),
		filterIngests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "activitystream_filter_ingests_total",
			Help: "Successful stream filter ingest calls.",
		}, []string{"filter"}),
		filterErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "activitystream_filter_errors_total",
			Help: "Stream filter ingest or cleanup failures.",
		}, []string{"filter"}),
		upgraderRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "activitystream_upgrader_runs_total",
			Help: "Upgrader executions by outcome.",
		}, []string{"upgrader", "outcome"}),
	}
	reg.MustRegister(
		r.activitiesAdded,
		r.activitiesRemoved,
		r.fanOutCopies,
		r.dedupedEvents,
		r.excludedEvents,
		r.threadEntries,
		r.filterIngests,
		r.filterErrors,
		r.upgraderRuns,
	)
	return r
}

// ActivityAdded counts one persisted activity.
func (r *Recorder) ActivityAdded() {
	if r == nil {
		return
	}
	r.activitiesAdded.Inc()
}

// ActivitiesRemoved counts removed activities.
func (r *Recorder) ActivitiesRemoved(n int) {
	if r == nil {
		return
	}
	r.activitiesRemoved.Add(float64(n))
}

// FanOutCopies counts scoped copies emitted for one event.
func (r *Recorder) FanOutCopies(n int) {
	if r == nil {
		return
	}
	r.fanOutCopies.Add(float64(n))
}

// DedupedEvent counts one event replaced during bundle dedup.
func (r *Recorder) DedupedEvent() {
	if r == nil {
		return
	}
	r.dedupedEvents.Inc()
}

// ExcludedEvent counts one event dropped by the exclusion policy.
func (r *Recorder) ExcludedEvent() {
	if r == nil {
		return
	}
	r.excludedEvents.Inc()
}

// ThreadEntryAdded counts one appended comment or reply.
func (r *Recorder) ThreadEntryAdded(kind string) {
	if r == nil {
		return
	}
	r.threadEntries.WithLabelValues(kind).Inc()
}

// FilterIngest counts one successful filter ingest.
func (r *Recorder) FilterIngest(filterID string) {
	if r == nil {
		return
	}
	r.filterIngests.WithLabelValues(filterID).Inc()
}

// FilterError counts one filter failure.
func (r *Recorder) FilterError(filterID string) {
	if r == nil {
		return
	}
	r.filterErrors.WithLabelValues(filterID).Inc()
}

// UpgraderRun counts one upgrader execution with its outcome.
func (r *Recorder) UpgraderRun(name, outcome string) {
	if r == nil {
		return
	}
	r.upgraderRuns.WithLabelValues(name, outcome).Inc()
}
