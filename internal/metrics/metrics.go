// Package metrics exposes run reports as Prometheus metrics.
//
// Each CLI invocation is a single run, so the values are written once in the
// node-exporter textfile format rather than served over HTTP.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/agentstation/careroster"
	"github.com/agentstation/careroster/pkg/errors"
	"github.com/agentstation/careroster/pkg/sources"
)

const namespace = "careroster"

// Recorder holds the run metrics on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	runs           *prometheus.CounterVec
	rows           *prometheus.GaugeVec
	resolution     *prometheus.GaugeVec
	events         *prometheus.GaugeVec
	clients        *prometheus.GaugeVec
	fieldsChanged  prometheus.Gauge
	fieldsInferred prometheus.Gauge
	conflicts      prometheus.Gauge
	malformed      prometheus.Gauge
	errorKinds     *prometheus.GaugeVec
	duration       prometheus.Gauge
	lastSuccess    prometheus.Gauge
}

// New creates a recorder with every metric registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Reconciliation runs by final state.",
		}, []string{"state"}),
		rows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "source_rows",
			Help:      "Rows extracted per source in the last run.",
		}, []string{"source"}),
		resolution: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "resolution_rows",
			Help:      "Rows per identity resolution outcome in the last run.",
		}, []string{"source", "status"}),
		events: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "change_events",
			Help:      "Machine change-events per merge outcome in the last run.",
		}, []string{"outcome"}),
		clients: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "clients",
			Help:      "Clients per merge outcome in the last run.",
		}, []string{"outcome"}),
		fieldsChanged: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fields_changed",
			Help:      "Scalar fields changed in the last run.",
		}),
		fieldsInferred: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fields_inferred",
			Help:      "Scalar fields set by inference in the last run.",
		}),
		conflicts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "conflicts_skipped",
			Help:      "Machine items skipped because a human edit owns them.",
		}),
		malformed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "malformed_values",
			Help:      "Source values that fell back to their default.",
		}),
		errorKinds: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "errors",
			Help:      "Errors in the last run by kind.",
		}, []string{"kind"}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time the last successful run finished.",
		}),
	}

	r.registry.MustRegister(
		r.runs, r.rows, r.resolution, r.events, r.clients,
		r.fieldsChanged, r.fieldsInferred, r.conflicts, r.malformed,
		r.errorKinds, r.duration, r.lastSuccess,
	)
	return r
}

// Registry returns the registry the metrics live on.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Observe records a run report.
func (r *Recorder) Observe(rep *careroster.Report) {
	if rep == nil {
		return
	}
	r.runs.WithLabelValues(rep.State.String()).Inc()

	for _, id := range sources.IDs() {
		r.rows.WithLabelValues(id.String()).Set(float64(rep.Rows[id]))
		res := rep.Resolution[id]
		r.resolution.WithLabelValues(id.String(), "exact").Set(float64(res.Exact))
		r.resolution.WithLabelValues(id.String(), "fuzzy").Set(float64(res.Fuzzy))
		r.resolution.WithLabelValues(id.String(), "created").Set(float64(res.Created))
		r.resolution.WithLabelValues(id.String(), "unresolved").Set(float64(res.Unresolved))
	}

	r.events.WithLabelValues("appended").Set(float64(rep.Events.Appended))
	r.events.WithLabelValues("replaced").Set(float64(rep.Events.Replaced))
	r.events.WithLabelValues("unchanged").Set(float64(rep.Events.Unchanged))
	r.events.WithLabelValues("unresolved").Set(float64(rep.Events.Unresolved))
	r.events.WithLabelValues("malformed").Set(float64(rep.Events.Malformed))

	r.clients.WithLabelValues("created").Set(float64(rep.Merge.Created))
	r.clients.WithLabelValues("updated").Set(float64(rep.Merge.Updated))
	r.clients.WithLabelValues("unchanged").Set(float64(rep.Merge.Unchanged))
	r.clients.WithLabelValues("skipped").Set(float64(rep.Merge.Skipped))

	r.fieldsChanged.Set(float64(rep.Merge.FieldsChanged))
	r.fieldsInferred.Set(float64(rep.Merge.FieldsInferred))
	r.conflicts.Set(float64(rep.Merge.Conflicts))
	r.malformed.Set(float64(rep.Malformed))
	r.errorKinds.WithLabelValues("recovered").Set(float64(rep.Recovered))
	r.errorKinds.WithLabelValues("fatal").Set(float64(rep.Fatal))
	r.duration.Set(rep.Duration.Seconds())

	if rep.Succeeded() {
		r.lastSuccess.Set(float64(rep.FinishedAt.Unix()))
	}
}

// WriteTextfile writes the metrics for the node-exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return errors.WrapIO("write metrics", path, err)
	}
	return nil
}
