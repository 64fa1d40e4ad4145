package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
	"github.com/ttpr0/go-coverage/coverage"
)

// Prometheus metrics of coverage runs on a private registry.
//
// Implements coverage.IRunObserver.
type Collector struct {
	reg *prometheus.Registry

	GraphBuilds        prometheus.Counter
	GraphBuildDuration prometheus.Histogram
	GraphNodes         prometheus.Histogram

	Polygons        *prometheus.CounterVec // threshold label: seconds
	Stations        *prometheus.CounterVec // state label
	StationFailures *prometheus.CounterVec // kind label
	StationDuration prometheus.Histogram

	Runs          prometheus.Counter
	RunDuration   prometheus.Gauge // seconds
	SkippedZones  prometheus.Gauge
	LastRunFinish prometheus.Gauge // unix seconds
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		GraphBuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coverage_graph_builds_total",
			Help: "Total road graphs built.",
		}),
		GraphBuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "coverage_graph_build_duration_seconds",
			Help:    "Duration of road graph builds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 16),
		}),
		GraphNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "coverage_graph_nodes",
			Help:    "Number of nodes of built road graphs.",
			Buckets: prometheus.ExponentialBuckets(16, 4, 10),
		}),
		Polygons: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coverage_response_polygons_total",
			Help: "Total response polygons filed.",
		}, []string{"threshold"}),
		Stations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coverage_stations_total",
			Help: "Total stations processed by final state.",
		}, []string{"state"}),
		StationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coverage_station_failures_total",
			Help: "Total failed or skipped stations by failure kind.",
		}, []string{"kind"}),
		StationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "coverage_station_duration_seconds",
			Help:    "Duration of station pipelines.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 16),
		}),
		Runs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coverage_runs_total",
			Help: "Total coverage runs finished.",
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "coverage_run_duration_seconds",
			Help: "Duration of the last run in seconds.",
		}),
		SkippedZones: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "coverage_skipped_zones",
			Help: "Number of zones skipped for invalid geometry in the last run.",
		}),
		LastRunFinish: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "coverage_last_run_timestamp_seconds",
			Help: "Unix time the last run finished.",
		}),
	}

	reg.MustRegister(
		c.GraphBuilds, c.GraphBuildDuration, c.GraphNodes,
		c.Polygons, c.Stations, c.StationFailures, c.StationDuration,
		c.Runs, c.RunDuration, c.SkippedZones, c.LastRunFinish,
	)
	return c
}

func (c *Collector) GraphBuilt(key string, nodes, edges int, duration time.Duration) {
	c.GraphBuilds.Inc()
	c.GraphBuildDuration.Observe(duration.Seconds())
	c.GraphNodes.Observe(float64(nodes))
}

func (c *Collector) PolygonFiled(polygon coverage.ResponsePolygon) {
	c.Polygons.WithLabelValues(strconv.Itoa(int(polygon.Threshold))).Inc()
}

func (c *Collector) StationFinished(outcome coverage.StationOutcome) {
	c.Stations.WithLabelValues(outcome.State.String()).Inc()
	if outcome.Failure != coverage.NO_FAILURE {
		c.StationFailures.WithLabelValues(outcome.Failure.String()).Inc()
	}
	c.StationDuration.Observe(outcome.Duration.Seconds())
}

func (c *Collector) RunFinished(report *coverage.Report) {
	c.Runs.Inc()
	c.RunDuration.Set(report.Duration.Seconds())
	c.SkippedZones.Set(float64(len(report.SkippedZones)))
	c.LastRunFinish.Set(float64(report.Started.Add(report.Duration).Unix()))
}

func (c *Collector) Registry() *prometheus.Registry { return c.reg }

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Writes all metrics in text format for the node exporter textfile collector.
func (c *Collector) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.reg); err != nil {
		return eris.Wrapf(err, "metrics: write textfile %s", path)
	}
	return nil
}
