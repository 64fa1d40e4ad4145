package metrics

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ttpr0/go-coverage/coverage"
	. "github.com/ttpr0/go-coverage/util"
)

var _ coverage.IRunObserver = (*Collector)(nil)

func TestCollectorRecordsRun(t *testing.T) {
	c := NewCollector()
	c.GraphBuilt("MIDDLEBURY", 961, 3720, 40*time.Millisecond)
	c.PolygonFiled(coverage.ResponsePolygon{Threshold: 120})
	c.PolygonFiled(coverage.ResponsePolygon{Threshold: 120})
	c.PolygonFiled(coverage.ResponsePolygon{Threshold: 300})
	c.StationFinished(coverage.StationOutcome{State: coverage.FILED, Duration: time.Second})
	c.StationFinished(coverage.StationOutcome{State: coverage.SKIPPED, Failure: coverage.INVALID_ZONE_GEOMETRY})
	c.RunFinished(&coverage.Report{
		Started:      time.Unix(1700000000, 0),
		Duration:     90 * time.Second,
		SkippedZones: List[string]{"BRISTOL"},
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(c.GraphBuilds))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.Polygons.WithLabelValues("120")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Polygons.WithLabelValues("300")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Stations.WithLabelValues("filed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Stations.WithLabelValues("skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.StationFailures.WithLabelValues("invalid_zone_geometry")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Runs))
	assert.Equal(t, 90.0, testutil.ToFloat64(c.RunDuration))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.SkippedZones))
	assert.Equal(t, 1700000090.0, testutil.ToFloat64(c.LastRunFinish))
}

func TestCollectorExport(t *testing.T) {
	c := NewCollector()
	c.PolygonFiled(coverage.ResponsePolygon{Threshold: 600})

	path := filepath.Join(t.TempDir(), "coverage.prom")
	require.NoError(t, c.WriteToTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `coverage_response_polygons_total{threshold="600"} 1`)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "coverage_runs_total 0"))
}
