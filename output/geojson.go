package output

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
	"github.com/ttpr0/go-coverage/coverage"
	"github.com/ttpr0/go-coverage/graph"
	. "github.com/ttpr0/go-coverage/util"
	"github.com/ttpr0/go-coverage/zone"
	"golang.org/x/exp/slog"
)

type WriterOptions struct {
	Dir string `yaml:"dir"`
	// property name of the zone id on written features
	ZoneProperty string `yaml:"zone_property"`
	// also write the dissolved zones
	WriteDissolvedZones bool `yaml:"write_dissolved_zones"`
	// unit of the thresholds, taken from the graph config
	Weighting graph.WeightType `yaml:"-"`
}

func DefaultWriterOptions() WriterOptions {
	return WriterOptions{
		Dir:                 "data",
		ZoneProperty:        "FIRE_AgencyId",
		WriteDissolvedZones: true,
	}
}

// File name of a threshold bucket, e.g. 300 seconds => "5_esn.geojson", 1500 meters => "1500m_esn.geojson".
func BucketFileName(threshold int32, weighting graph.WeightType) string {
	if weighting == graph.DISTANCE_WEIGHT {
		return fmt.Sprintf("%dm_esn.geojson", threshold)
	}
	return fmt.Sprintf("%g_esn.geojson", float64(threshold)/60)
}

const (
	REPORT_FILE          = "report.json"
	DISSOLVED_ZONES_FILE = "dissolved_zones.geojson"
)

// Builds the features of response polygons in lon/lat.
func ResponseFeatures(polygons []coverage.ResponsePolygon, run_id string, zone_property string) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, polygon := range polygons {
		feature := geojson.NewFeature(polygon.Polygon)
		feature.Properties["response_time"] = polygon.Threshold
		if polygon.ZoneID != "" {
			feature.Properties[zone_property] = polygon.ZoneID
		}
		if polygon.StationID != "" {
			feature.Properties["station_id"] = polygon.StationID
		}
		if run_id != "" {
			feature.Properties["run_id"] = run_id
		}
		feature.Properties["strategy"] = polygon.Strategy.String()
		if polygon.Fallback {
			feature.Properties["fallback"] = true
		}
		fc.Append(feature)
	}
	return fc
}

func ZoneFeatures(zones []*zone.Zone, zone_property string) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, z := range zones {
		feature := geojson.NewFeature(z.Polygon)
		feature.Properties[zone_property] = z.ID
		feature.Properties["sub_zones"] = strings.Join(z.SubZones, ",")
		fc.Append(feature)
	}
	return fc
}

// Writes one feature collection per threshold, empty buckets included.
//
// Returns the written file paths.
func WriteBuckets(buckets coverage.Buckets, run_id string, options WriterOptions) (List[string], error) {
	files := NewList[string](len(buckets))
	for _, bucket := range buckets {
		file := filepath.Join(options.Dir, BucketFileName(bucket.Threshold, options.Weighting))
		fc := ResponseFeatures(bucket.Polygons, run_id, options.ZoneProperty)
		if err := _WriteFeatureCollection(fc, file); err != nil {
			return files, err
		}
		slog.Info("output: wrote response polygons", "file", file, "threshold", bucket.Threshold, "features", len(fc.Features))
		files.Add(file)
	}
	return files, nil
}

func WriteZones(zones []*zone.Zone, options WriterOptions) (string, error) {
	file := filepath.Join(options.Dir, DISSOLVED_ZONES_FILE)
	if err := _WriteFeatureCollection(ZoneFeatures(zones, options.ZoneProperty), file); err != nil {
		return "", err
	}
	slog.Info("output: wrote zones", "file", file, "zones", len(zones))
	return file, nil
}

func WriteReport(report *coverage.Report, options WriterOptions) (string, error) {
	file := filepath.Join(options.Dir, REPORT_FILE)
	if err := WriteJSONToFile(report, file); err != nil {
		return "", eris.Wrap(err, "output: write report")
	}
	return file, nil
}

// Writes all outputs of a run: buckets, report and optionally the zones.
func WriteResult(result *coverage.Result, zones []*zone.Zone, options WriterOptions) (List[string], error) {
	files, err := WriteBuckets(result.Buckets, result.Report.RunID, options)
	if err != nil {
		return files, err
	}
	file, err := WriteReport(result.Report, options)
	if err != nil {
		return files, err
	}
	files.Add(file)
	if options.WriteDissolvedZones && len(zones) > 0 {
		file, err := WriteZones(zones, options)
		if err != nil {
			return files, err
		}
		files.Add(file)
	}
	return files, nil
}

func _WriteFeatureCollection(fc *geojson.FeatureCollection, file string) error {
	data, err := json.Marshal(fc)
	if err != nil {
		return eris.Wrapf(err, "output: encode %s", file)
	}
	if err := WriteBytesToFile(data, file); err != nil {
		return eris.Wrap(err, "output: write feature collection")
	}
	return nil
}
