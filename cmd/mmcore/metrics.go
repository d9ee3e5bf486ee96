package main

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/mmcore"
)

// PrometheusObserver implements mmcore.Observer.
type PrometheusObserver struct {
	opLatency   *prometheus.HistogramVec
	loads       *prometheus.CounterVec
	loadBytes   prometheus.Counter
	segments    prometheus.Gauge
	changed     prometheus.Counter
	indexBuilds prometheus.Counter
	rendered    prometheus.Counter
}

var _ mmcore.Observer = (*PrometheusObserver)(nil)

// NewPrometheusObserver creates the collectors and registers them with reg.
func NewPrometheusObserver(reg prometheus.Registerer) *PrometheusObserver {
	o := &PrometheusObserver{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mmcore_operation_latency_seconds",
			Help:    "Latency of session operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"op", "status"}),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mmcore_loads_total",
			Help: "Total database loads",
		}, []string{"status", "mapped"}),
		loadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mmcore_load_bytes_total",
			Help: "Total bytes of database text loaded",
		}),
		segments: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mmcore_segments",
			Help: "Number of segments of the last split database",
		}),
		changed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mmcore_changed_segments_total",
			Help: "Total segments that differed from the previous load",
		}),
		indexBuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mmcore_line_index_builds_total",
			Help: "Total line index builds",
		}),
		rendered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mmcore_rendered_notations_total",
			Help: "Total notations rendered",
		}),
	}

	reg.MustRegister(
		o.opLatency,
		o.loads,
		o.loadBytes,
		o.segments,
		o.changed,
		o.indexBuilds,
		o.rendered,
	)
	return o
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (o *PrometheusObserver) OnLoad(_ string, bytes int, mapped bool, d time.Duration, err error) {
	o.opLatency.WithLabelValues("load", status(err)).Observe(d.Seconds())
	o.loads.WithLabelValues(status(err), strconv.FormatBool(mapped)).Inc()
	o.loadBytes.Add(float64(bytes))
}

func (o *PrometheusObserver) OnSplit(_ string, segments, changed int, d time.Duration) {
	o.opLatency.WithLabelValues("split", "success").Observe(d.Seconds())
	o.segments.Set(float64(segments))
	o.changed.Add(float64(changed))
}

func (o *PrometheusObserver) OnIndexBuild(_ int, d time.Duration) {
	o.opLatency.WithLabelValues("index", "success").Observe(d.Seconds())
	o.indexBuilds.Inc()
}

func (o *PrometheusObserver) OnRender(count int, d time.Duration, err error) {
	o.opLatency.WithLabelValues("render", status(err)).Observe(d.Seconds())
	o.rendered.Add(float64(count))
}
