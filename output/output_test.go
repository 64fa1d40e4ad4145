package output

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ttpr0/go-coverage/coverage"
	"github.com/ttpr0/go-coverage/graph"
	"github.com/ttpr0/go-coverage/hull"
	. "github.com/ttpr0/go-coverage/util"
	"github.com/ttpr0/go-coverage/zone"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
)

func _Square(minx, miny, maxx, maxy float64) orb.MultiPolygon {
	return orb.MultiPolygon{{{{minx, miny}, {maxx, miny}, {maxx, maxy}, {minx, maxy}, {minx, miny}}}}
}

func _Result() *coverage.Result {
	return &coverage.Result{
		Buckets: coverage.Buckets{
			{Threshold: 120, Polygons: List[coverage.ResponsePolygon]{
				{StationID: "middlebury-1", ZoneID: "MIDDLEBURY", Threshold: 120, Polygon: _Square(-73.17, 44.01, -73.16, 44.02), Strategy: hull.CONVEX},
			}},
			{Threshold: 300, Polygons: List[coverage.ResponsePolygon]{
				{StationID: "middlebury-1", ZoneID: "MIDDLEBURY", Threshold: 300, Polygon: _Square(-73.18, 44.00, -73.15, 44.03), Strategy: hull.ALPHA, Fallback: true},
			}},
			{Threshold: 600, Polygons: List[coverage.ResponsePolygon]{}},
		},
		Report: &coverage.Report{
			RunID:        "8c7d1b9e-5f2a-4e3b-9a61-2f4b8d0c7e15",
			Thresholds:   coverage.Thresholds{120, 300, 600},
			SkippedZones: List[string]{"BRISTOL"},
		},
	}
}

func TestBucketFileName(t *testing.T) {
	assert.Equal(t, "2_esn.geojson", BucketFileName(120, graph.TRAVEL_TIME_WEIGHT))
	assert.Equal(t, "20_esn.geojson", BucketFileName(1200, graph.TRAVEL_TIME_WEIGHT))
	assert.Equal(t, "1.5_esn.geojson", BucketFileName(90, graph.TRAVEL_TIME_WEIGHT))
	assert.Equal(t, "1500m_esn.geojson", BucketFileName(1500, graph.DISTANCE_WEIGHT))
}

func TestWriteResult(t *testing.T) {
	options := DefaultWriterOptions()
	options.Dir = filepath.Join(t.TempDir(), "out")
	zones := []*zone.Zone{{ID: "MIDDLEBURY", Polygon: _Square(-73.2, 44.0, -73.1, 44.1), SubZones: List[string]{"101", "102"}}}

	files, err := WriteResult(_Result(), zones, options)
	require.NoError(t, err)
	require.Len(t, files, 5)
	assert.Equal(t, filepath.Join(options.Dir, "2_esn.geojson"), files[0])
	assert.Equal(t, filepath.Join(options.Dir, "10_esn.geojson"), files[2])

	data, err := os.ReadFile(files[1])
	require.NoError(t, err)
	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	feature := fc.Features[0]
	assert.Equal(t, "MIDDLEBURY", feature.Properties.MustString("FIRE_AgencyId"))
	assert.Equal(t, 300, feature.Properties.MustInt("response_time"))
	assert.Equal(t, "middlebury-1", feature.Properties.MustString("station_id"))
	assert.Equal(t, "alpha", feature.Properties.MustString("strategy"))
	assert.True(t, feature.Properties.MustBool("fallback"))
	assert.Equal(t, "8c7d1b9e-5f2a-4e3b-9a61-2f4b8d0c7e15", feature.Properties.MustString("run_id"))
	assert.Equal(t, "MultiPolygon", feature.Geometry.GeoJSONType())

	data, err = os.ReadFile(files[2])
	require.NoError(t, err)
	fc, err = geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	assert.Empty(t, fc.Features)

	report, err := ReadJSONFromFile[map[string]any](filepath.Join(options.Dir, REPORT_FILE))
	require.NoError(t, err)
	assert.Equal(t, []any{"BRISTOL"}, report["skipped_zones"])

	data, err = os.ReadFile(filepath.Join(options.Dir, DISSOLVED_ZONES_FILE))
	require.NoError(t, err)
	fc, err = geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "101,102", fc.Features[0].Properties.MustString("sub_zones"))

	options.WriteDissolvedZones = false
	files, err = WriteResult(_Result(), zones, options)
	require.NoError(t, err)
	assert.Len(t, files, 4)
}

func TestEncodeEWKB(t *testing.T) {
	mp := orb.MultiPolygon{{
		{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
		{{4, 4}, {4, 6}, {6, 6}, {6, 4}, {4, 4}},
	}}
	data, err := EncodeEWKB(mp)
	require.NoError(t, err)

	g, err := ewkb.Unmarshal(data)
	require.NoError(t, err)
	decoded, ok := g.(*geom.MultiPolygon)
	require.True(t, ok)
	assert.Equal(t, 4326, decoded.SRID())
	assert.Equal(t, 1, decoded.NumPolygons())
	assert.Equal(t, 2, decoded.Polygon(0).NumLinearRings())
	assert.InDelta(t, 96, decoded.Area(), 1e-9)
}

func TestPostGISWrite(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	sink, err := NewPostGISSink(mock, "coverage.response_polygons")
	require.NoError(t, err)
	result := _Result()
	insert := regexp.QuoteMeta(`INSERT INTO "coverage"."response_polygons"`)

	mock.ExpectBegin()
	mock.ExpectExec(insert).
		WithArgs(result.Report.RunID, int32(120), "MIDDLEBURY", "middlebury-1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(insert).
		WithArgs(result.Report.RunID, int32(300), "MIDDLEBURY", "middlebury-1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	count, err := sink.Write(context.Background(), result.Report.RunID, result.Buckets)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostGISWriteRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	sink, err := NewPostGISSink(mock, "response_polygons")
	require.NoError(t, err)
	result := _Result()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "response_polygons"`)).
		WillReturnError(errors.New("relation does not exist"))
	mock.ExpectRollback()

	_, err = sink.Write(context.Background(), result.Report.RunID, result.Buckets)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert polygon")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostGISEnsureTableAndEmpty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	sink, err := NewPostGISSink(mock, "response_polygons")
	require.NoError(t, err)
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "response_polygons"`)).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	require.NoError(t, sink.EnsureTable(context.Background()))

	count, err := sink.Write(context.Background(), "run", coverage.Buckets{{Threshold: 120}})
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
	require.NoError(t, mock.ExpectationsWereMet())

	_, err = NewPostGISSink(mock, "")
	assert.Error(t, err)
}
