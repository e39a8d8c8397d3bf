// Package metrics provides Prometheus instrumentation for APDU exchanges.
// Collectors are registered on a caller supplied registry; nothing is
// registered globally.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace is the Prometheus namespace for all ledgercomm metrics
	Namespace = "ledgercomm"

	// Label names
	LabelInterface = "interface"
	LabelStatus    = "status"
	LabelKind      = "kind"

	// Status values
	StatusSuccess = "success"
	StatusError   = "error"
)

// Collector records exchange counts, traffic and errors for one or more
// transports. A nil *Collector is valid and records nothing.
type Collector struct {
	exchanges     *prometheus.CounterVec
	bytesSent     *prometheus.CounterVec
	bytesReceived *prometheus.CounterVec
	errors        *prometheus.CounterVec
	duration      *prometheus.HistogramVec
}

// NewCollector creates the metrics and registers them on reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		exchanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "exchanges_total",
				Help:      "Total number of APDU exchanges by interface and status word class",
			},
			[]string{LabelInterface, LabelStatus},
		),
		bytesSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "bytes_sent_total",
				Help:      "Total number of APDU bytes handed to the link",
			},
			[]string{LabelInterface},
		),
		bytesReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "bytes_received_total",
				Help:      "Total number of response bytes, status word included",
			},
			[]string{LabelInterface},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "errors_total",
				Help:      "Total number of failed operations by interface and error kind",
			},
			[]string{LabelInterface, LabelKind},
		),
		// Device round trips range from a few milliseconds to user confirmations.
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "exchange_duration_seconds",
				Help:      "Duration of APDU exchanges in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{LabelInterface},
		),
	}

	for _, col := range []prometheus.Collector{c.exchanges, c.bytesSent, c.bytesReceived, c.errors, c.duration} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// RecordSend counts n bytes sent on iface.
func (c *Collector) RecordSend(iface string, n int) {
	if c == nil {
		return
	}
	c.bytesSent.WithLabelValues(iface).Add(float64(n))
}

// RecordExchange records a completed exchange. success reflects the status
// word, not the transport outcome.
func (c *Collector) RecordExchange(iface string, success bool, received int, d time.Duration) {
	if c == nil {
		return
	}

	status := StatusSuccess
	if !success {
		status = StatusError
	}
	c.exchanges.WithLabelValues(iface, status).Inc()
	c.bytesReceived.WithLabelValues(iface).Add(float64(received))
	c.duration.WithLabelValues(iface).Observe(d.Seconds())
}

// RecordError counts a failed operation, classified by kind.
func (c *Collector) RecordError(iface, kind string) {
	if c == nil {
		return
	}
	c.errors.WithLabelValues(iface, kind).Inc()
}
