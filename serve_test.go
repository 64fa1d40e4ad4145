package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ttpr0/go-coverage/coverage"
	"github.com/ttpr0/go-coverage/parser"
	. "github.com/ttpr0/go-coverage/util"
	"github.com/ttpr0/go-coverage/zone"
)

// Residential grid of n x n nodes with 0.001 degree spacing.
func _GridOSM(n int) []byte {
	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n" + `<osm version="0.6" generator="test">` + "\n")
	id := func(x, y int) int { return 1 + y*n + x }
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			fmt.Fprintf(&builder, `  <node id="%d" lat="%.4f" lon="%.4f"/>`+"\n", id(x, y), 44.0+0.001*float64(y), -73.2+0.001*float64(x))
		}
	}
	way := 1
	for i := 0; i < n; i++ {
		fmt.Fprintf(&builder, `  <way id="%d">`, way)
		for x := 0; x < n; x++ {
			fmt.Fprintf(&builder, `<nd ref="%d"/>`, id(x, i))
		}
		builder.WriteString(`<tag k="highway" v="residential"/></way>` + "\n")
		way += 1
		fmt.Fprintf(&builder, `  <way id="%d">`, way)
		for y := 0; y < n; y++ {
			fmt.Fprintf(&builder, `<nd ref="%d"/>`, id(i, y))
		}
		builder.WriteString(`<tag k="highway" v="residential"/></way>` + "\n")
		way += 1
	}
	builder.WriteString("</osm>\n")
	return []byte(builder.String())
}

func _Box(minx, miny, maxx, maxy float64) orb.MultiPolygon {
	return orb.MultiPolygon{{{{minx, miny}, {maxx, miny}, {maxx, maxy}, {minx, maxy}, {minx, miny}}}}
}

func _TestManager(t *testing.T) *CoverageManager {
	config := DefaultConfig()
	config.Output.Dir = t.TempDir()
	network, err := parser.ParseNetwork(context.Background(), parser.XMLBytesSource(_GridOSM(21)), GetDecoder(config), parser.ParseOptions{
		Bound:  None[orb.Bound](),
		Speeds: config.SpeedOptions(),
	})
	require.NoError(t, err)
	zones := List[*zone.Zone]{
		{ID: "MIDDLEBURY", Polygon: _Box(-73.2005, 43.9995, -73.1795, 44.0155)},
	}
	region, err := LoadRegionOrZones("", zones)
	require.NoError(t, err)
	manager, err := NewCoverageManagerFromNetwork(config, network, zones, region)
	require.NoError(t, err)
	return manager
}

func _Do(t *testing.T, handler http.Handler, method, path string, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func _Features(t *testing.T, rec *httptest.ResponseRecorder) *geojson.FeatureCollection {
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	fc, err := geojson.UnmarshalFeatureCollection(rec.Body.Bytes())
	require.NoError(t, err)
	return fc
}

func TestServeIsochrone(t *testing.T) {
	MANAGER = _TestManager(t)
	router := NewRouter(MANAGER)

	rec := _Do(t, router, http.MethodPost, "/v1/isochrone", `{"location": [-73.19, 44.01], "range": [300, 60], "zone": "MIDDLEBURY"}`)
	fc := _Features(t, rec)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, 60, fc.Features[0].Properties.MustInt("response_time"))
	assert.Equal(t, 300, fc.Features[1].Properties.MustInt("response_time"))
	assert.Equal(t, "MIDDLEBURY", fc.Features[1].Properties.MustString("FIRE_AgencyId"))
	bound := fc.Features[1].Geometry.Bound()
	assert.LessOrEqual(t, bound.Max[1], 44.0155+1e-9)

	rec = _Do(t, router, http.MethodPost, "/v1/isochrone", `{"location": [-73.19, 44.01], "range": [60]}`)
	fc = _Features(t, rec)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "", fc.Features[0].Properties.MustString("FIRE_AgencyId", ""))
}

func TestServeIsochroneErrors(t *testing.T) {
	MANAGER = _TestManager(t)
	router := NewRouter(MANAGER)

	rec := _Do(t, router, http.MethodPost, "/v1/isochrone", `{"location": [-73.19, 44.01], "range": [60], "zone": "SALISBURY"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = _Do(t, router, http.MethodPost, "/v1/isochrone", `{"location": [-73.19], "range": [60]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = _Do(t, router, http.MethodPost, "/v1/isochrone", `{"location": [-73.19, 44.01], "range": []}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = _Do(t, router, http.MethodPost, "/v1/isochrone", `{"location": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"request":"/v1/isochrone"`)
}

func TestServeZonesAndHealth(t *testing.T) {
	MANAGER = _TestManager(t)
	router := NewRouter(MANAGER)

	fc := _Features(t, _Do(t, router, http.MethodGet, "/v1/zones", ""))
	assert.Len(t, fc.Features, 1)
	fc = _Features(t, _Do(t, router, http.MethodGet, "/v1/zones?id=MIDDLEBURY", ""))
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "MIDDLEBURY", fc.Features[0].Properties.MustString("FIRE_AgencyId"))
	assert.Equal(t, http.StatusNotFound, _Do(t, router, http.MethodGet, "/v1/zones?id=NOPE", "").Code)

	rec := _Do(t, router, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Contains(t, rec.Body.String(), `"zones":1`)
	assert.Contains(t, rec.Body.String(), `"nodes":441`)
}

func TestServeOutputsAndMetrics(t *testing.T) {
	MANAGER = _TestManager(t)
	router := NewRouter(MANAGER)
	dir := MANAGER._GetServiceConfig().Output.Dir
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2_esn.geojson"), []byte(`{"type":"FeatureCollection","features":[]}`), 0o644))

	rec := _Do(t, router, http.MethodGet, "/v1/outputs/2_esn.geojson", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "FeatureCollection")
	assert.Equal(t, http.StatusNotFound, _Do(t, router, http.MethodGet, "/v1/outputs/missing.geojson", "").Code)

	_Do(t, router, http.MethodPost, "/v1/isochrone", `{"location": [-73.19, 44.01], "range": [60], "zone": "MIDDLEBURY"}`)
	rec = _Do(t, router, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "coverage_graph_builds_total 1")
}

func TestRunCoverage(t *testing.T) {
	manager := _TestManager(t)
	stations := []coverage.Station{{ID: "station-1", Point: orb.Point{-73.19, 44.01}, ZoneID: "MIDDLEBURY"}}
	require.NoError(t, RunCoverage(context.Background(), manager, stations))

	dir := manager._GetServiceConfig().Output.Dir
	for _, name := range []string{"2_esn.geojson", "5_esn.geojson", "10_esn.geojson", "20_esn.geojson", "report.json", "dissolved_zones.geojson"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
	data, err := os.ReadFile(filepath.Join(dir, "2_esn.geojson"))
	require.NoError(t, err)
	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "station-1", fc.Features[0].Properties.MustString("station_id"))
}

func TestPrepareZoneGraphs(t *testing.T) {
	config := DefaultConfig()
	network, err := parser.ParseNetwork(context.Background(), parser.XMLBytesSource(_GridOSM(21)), GetDecoder(config), parser.ParseOptions{
		Bound:  None[orb.Bound](),
		Speeds: config.SpeedOptions(),
	})
	require.NoError(t, err)
	zones := List[*zone.Zone]{
		{ID: "MIDDLEBURY", Polygon: _Box(-73.2005, 43.9995, -73.1795, 44.0155)},
		{ID: "BOWTIE", Polygon: orb.MultiPolygon{{{{-73.2, 44.0}, {-73.19, 44.01}, {-73.19, 44.0}, {-73.2, 44.01}, {-73.2, 44.0}}}}},
		{ID: "ELSEWHERE", Polygon: _Box(-72.5, 44.5, -72.4, 44.6)},
	}
	manager, err := NewCoverageManagerFromNetwork(config, network, zones, _Box(-73.3, 43.9, -72.3, 44.7))
	require.NoError(t, err)

	stats, err := PrepareZoneGraphs(context.Background(), manager, 2)
	require.NoError(t, err)
	require.Len(t, stats, 3)

	assert.Equal(t, "BOWTIE", stats[0].ZoneID)
	assert.Equal(t, coverage.INVALID_ZONE_GEOMETRY, stats[0].Failure)
	assert.Equal(t, "ELSEWHERE", stats[1].ZoneID)
	assert.Equal(t, coverage.EMPTY_REGION_GRAPH, stats[1].Failure)
	assert.Equal(t, "MIDDLEBURY", stats[2].ZoneID)
	assert.Equal(t, coverage.NO_FAILURE, stats[2].Failure)
	assert.Greater(t, stats[2].Nodes, 0)
	assert.Greater(t, stats[2].Edges, 0)
	assert.Equal(t, "travel_time", stats[2].Weighting)
	assert.Equal(t, 2, manager.graphs.Len())
}
