// Package metrics counts what the tools did during a run. There is no server to scrape, so
// the values are written out in node exporter textfile format at the end of a run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry - everything below registers here rather than the global default registry
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	PixelsCompared = factory.NewCounter(prometheus.CounterOpts{
		Name: "fcitools_pixels_compared_total",
		Help: "Number of pixel pairs run through the geodesic comparison.",
	})
	BlockDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fcitools_block_duration_seconds",
		Help:    "Duration of processing one block of a grid.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
	}, []string{"stage"})
	ArchiveCache = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "fcitools_archive_cache_total",
		Help: "Archive unpack cache lookups.",
	}, []string{"result"})
	ImagesWritten = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "fcitools_images_written_total",
		Help: "Number of image files written.",
	}, []string{"kind"})
	RunDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fcitools_run_duration_seconds",
		Help:    "Duration of a whole tool run.",
		Buckets: prometheus.ExponentialBuckets(0.1, 3, 10),
	}, []string{"tool"})
)

// ObserveRun - records the duration of a tool run started at start
func ObserveRun(tool string, start time.Time) {
	RunDuration.WithLabelValues(tool).Observe(time.Since(start).Seconds())
}

// WriteTextfile - writes all metrics to path, for the node exporter textfile collector
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
