package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ttpr0/go-coverage/attr"
	"github.com/ttpr0/go-coverage/coverage"
	"github.com/ttpr0/go-coverage/geo"
	"github.com/ttpr0/go-coverage/graph"
	"github.com/ttpr0/go-coverage/hull"
)

const _CONFIG = `
input:
  zones: data/esn.shp
  zone:
    aliases:
      WEYBRIDGE: WEYBRIDGE
thresholds: [300, 120]
graph:
  scope: region
  projection: webmercator
  hwy_speeds:
    residential: 30
hull:
  strategy: alpha
  alpha: 0.001
run:
  station_timeout: 30s
log:
  level: debug
`

func _WriteConfig(t *testing.T, content string) string {
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))
	return file
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"), false)
	require.NoError(t, err)

	defaults := DefaultConfig()
	assert.Equal(t, defaults.Thresholds, config.Thresholds)
	assert.Equal(t, coverage.SCOPE_ZONE, config.Graph.Scope)
	assert.Equal(t, hull.CONVEX, config.Hull.Strategy)
	assert.Equal(t, 4, config.Run.Workers)
	assert.Equal(t, 5*time.Minute, config.Run.StationTimeout)
	assert.Equal(t, LOG_INFO, config.Log.Level)
	assert.Equal(t, "FIRE_AgencyId", config.Input.Zone.IDProperty)
	assert.InDelta(t, 183, config.Hydrants.Radius, 1e-9)
	assert.True(t, config.Graph.IgnoreOneway)

	_, err = LoadConfig(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"), true)
	assert.Error(t, err)
}

func TestLoadConfigFile(t *testing.T) {
	config, err := LoadConfig(viper.New(), _WriteConfig(t, _CONFIG), true)
	require.NoError(t, err)

	assert.Equal(t, "data/esn.shp", config.Input.Zones)
	assert.Equal(t, "data/stations.geojson", config.Input.Stations)
	assert.Equal(t, "WEYBRIDGE", config.Input.Zone.Aliases["weybridge"])
	assert.Equal(t, []int32{300, 120}, config.Thresholds)
	assert.Equal(t, coverage.SCOPE_REGION, config.Graph.Scope)
	assert.Equal(t, geo.WEB_MERCATOR, config.Graph.Projection)
	assert.Equal(t, hull.ALPHA, config.Hull.Strategy)
	assert.InDelta(t, 0.001, config.Hull.Alpha, 1e-12)
	assert.Equal(t, 30*time.Second, config.Run.StationTimeout)
	assert.Equal(t, LOG_DEBUG, config.Log.Level)

	speeds := config.SpeedOptions()
	assert.InDelta(t, 30, speeds.HwySpeeds[attr.RESIDENTIAL], 1e-9)
	assert.InDelta(t, 80, speeds.HwySpeeds[attr.PRIMARY], 1e-9)

	options := config.RunOptions()
	assert.Equal(t, coverage.Thresholds{300, 120}, options.Thresholds)
	assert.Equal(t, coverage.SCOPE_REGION, options.Scope)
}

func TestLoadConfigEnvironment(t *testing.T) {
	t.Setenv("COVERAGE_RUN_WORKERS", "8")
	t.Setenv("COVERAGE_THRESHOLDS", "60, 600")
	t.Setenv("COVERAGE_HULL_STRATEGY", "raster")
	t.Setenv("COVERAGE_OUTPUT_DIR", "/tmp/coverage")
	t.Setenv("COVERAGE_GRAPH_WEIGHTING", "distance")

	config, err := LoadConfig(viper.New(), _WriteConfig(t, _CONFIG), true)
	require.NoError(t, err)
	assert.Equal(t, 8, config.Run.Workers)
	assert.Equal(t, []int32{60, 600}, config.Thresholds)
	assert.Equal(t, hull.RASTER, config.Hull.Strategy)
	assert.Equal(t, "/tmp/coverage", config.Output.Dir)
	assert.Equal(t, "/tmp/coverage", config.WriterOptions().Dir)
	assert.Equal(t, graph.DISTANCE_WEIGHT, config.Graph.Weighting)
	assert.Equal(t, graph.DISTANCE_WEIGHT, config.WriterOptions().Weighting)
}

func TestLoadConfigFlags(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("workers", 0, "")
	flags.IntSlice("thresholds", nil, "")
	flags.String("scope", "", "")
	require.NoError(t, flags.Parse([]string{"--workers", "2", "--thresholds", "90,180"}))

	v := viper.New()
	require.NoError(t, v.BindPFlag("run.workers", flags.Lookup("workers")))
	require.NoError(t, v.BindPFlag("thresholds", flags.Lookup("thresholds")))
	require.NoError(t, v.BindPFlag("graph.scope", flags.Lookup("scope")))
	t.Setenv("COVERAGE_RUN_WORKERS", "8")

	config, err := LoadConfig(v, _WriteConfig(t, _CONFIG), true)
	require.NoError(t, err)
	assert.Equal(t, 2, config.Run.Workers)
	assert.Equal(t, []int32{90, 180}, config.Thresholds)
	assert.Equal(t, coverage.SCOPE_REGION, config.Graph.Scope)
}

func TestLoadConfigInvalid(t *testing.T) {
	cases := []string{
		"hull:\n  strategy: hexagon\n",
		"thresholds: [120, -5]\n",
		"thresholds: []\n",
		"run:\n  workers: 0\n",
		"graph:\n  scope: planet\n",
		"graph:\n  hwy_speeds:\n    autobahn: 130\n",
		"log:\n  level: loud\n",
	}
	for _, content := range cases {
		_, err := LoadConfig(viper.New(), _WriteConfig(t, content), true)
		assert.Error(t, err, content)
	}
}
