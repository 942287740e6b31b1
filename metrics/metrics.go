// Package metrics exports upload metrics to Prometheus.
package metrics

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const defaultNamespace = "doclocker"

// Outcomes of an upload request.
const (
	OutcomeSuccess  = "success"
	OutcomeInvalid  = "invalid_input"
	OutcomeFailure  = "failure"
	OutcomeTooLarge = "too_large"
)

// Observer records upload outcomes, latency and volume.
type Observer struct {
	uploadDuration *prometheus.HistogramVec
	failures       *prometheus.CounterVec
	uploadedBytes  prometheus.Counter
}

// NewObserver creates an Observer and registers its collectors on reg,
// reusing collectors that are already registered.
func NewObserver(namespace string, reg prometheus.Registerer) (*Observer, error) {
	if namespace == "" {
		namespace = defaultNamespace
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	o := &Observer{
		uploadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_duration_seconds",
			Help:      "Latency of document uploads by outcome.",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"outcome"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_failures_total",
			Help:      "Count of failed uploads by failure kind.",
		}, []string{"kind"}),
		uploadedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploaded_bytes_total",
			Help:      "Cumulative size of documents pinned.",
		}),
	}

	if err := reg.Register(o.uploadDuration); err != nil {
		existing, err := reuse(err)
		if err != nil {
			return nil, errors.Wrap(err, "register upload histogram")
		}
		o.uploadDuration = existing.(*prometheus.HistogramVec)
	}
	if err := reg.Register(o.failures); err != nil {
		existing, err := reuse(err)
		if err != nil {
			return nil, errors.Wrap(err, "register failure counter")
		}
		o.failures = existing.(*prometheus.CounterVec)
	}
	if err := reg.Register(o.uploadedBytes); err != nil {
		existing, err := reuse(err)
		if err != nil {
			return nil, errors.Wrap(err, "register uploaded bytes counter")
		}
		o.uploadedBytes = existing.(prometheus.Counter)
	}
	return o, nil
}

func reuse(err error) (prometheus.Collector, error) {
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		return are.ExistingCollector, nil
	}
	return nil, err
}

// RecordUpload tracks one finished upload request. kind is the failure
// kind and is ignored on success.
func (o *Observer) RecordUpload(outcome, kind string, d time.Duration, size int64) {
	if o == nil {
		return
	}
	o.uploadDuration.WithLabelValues(outcome).Observe(d.Seconds())
	switch outcome {
	case OutcomeSuccess:
		if size > 0 {
			o.uploadedBytes.Add(float64(size))
		}
	case OutcomeFailure:
		o.failures.WithLabelValues(kind).Inc()
	}
}
