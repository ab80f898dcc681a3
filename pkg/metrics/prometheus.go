package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/g-uva/sjf-cloudsim/pkg/core"
)

// Recorder exports simulation results as Prometheus metrics. Each Recorder
// owns its registry, so independent simulations never share series.
type Recorder struct {
	registry *prometheus.Registry

	jobsCompleted   *prometheus.CounterVec
	turnaround      *prometheus.HistogramVec
	waiting         *prometheus.HistogramVec
	makespan        *prometheus.GaugeVec
	eventsProcessed *prometheus.CounterVec
}

// NewRecorder builds a Recorder with its own registry.
func NewRecorder() *Recorder {
	buckets := prometheus.ExponentialBuckets(1, 2, 16)
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		jobsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sjfsim_jobs_completed_total",
				Help: "Jobs that reached SUCCESS, by machine and owner.",
			},
			[]string{"simulation", "machine", "owner"},
		),
		turnaround: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sjfsim_job_turnaround_time",
				Help:    "Finish minus submission time, in simulated time units.",
				Buckets: buckets,
			},
			[]string{"simulation"},
		),
		waiting: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sjfsim_job_waiting_time",
				Help:    "Turnaround minus run duration, in simulated time units.",
				Buckets: buckets,
			},
			[]string{"simulation"},
		),
		makespan: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sjfsim_makespan",
				Help: "Simulated time at which the last job finished.",
			},
			[]string{"simulation"},
		),
		eventsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sjfsim_events_processed_total",
				Help: "Completion events popped by the engine.",
			},
			[]string{"simulation"},
		),
	}
	r.registry.MustRegister(r.jobsCompleted, r.turnaround, r.waiting, r.makespan, r.eventsProcessed)
	return r
}

// Registry exposes the recorder's registry, mostly for tests.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Observe records one finished simulation.
func (r *Recorder) Observe(simulation string, completed []core.CompletedJob, events int) {
	for _, c := range completed {
		r.jobsCompleted.WithLabelValues(simulation, strconv.Itoa(c.MachineID), strconv.Itoa(c.OwnerID)).Inc()
		r.turnaround.WithLabelValues(simulation).Observe(Turnaround(c))
		r.waiting.WithLabelValues(simulation).Observe(Waiting(c))
	}
	r.makespan.WithLabelValues(simulation).Set(Summarize(completed).Makespan)
	r.eventsProcessed.WithLabelValues(simulation).Add(float64(events))
}

// Handler serves the recorder's registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
