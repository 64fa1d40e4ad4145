package zone

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"github.com/rotisserie/eris"
	"github.com/ttpr0/go-coverage/geo"
	. "github.com/ttpr0/go-coverage/util"
	"golang.org/x/exp/slog"
)

var ErrNoZones = eris.New("zone: no zone polygons found")

type LoadOptions struct {
	// property holding the zone id
	IDProperty string `yaml:"id_property"`
	// property holding the sub-zone id, empty to use the feature index
	SubZoneProperty string `yaml:"subzone_property"`
	// ids containing the key (ignoring case) are replaced by the value
	Aliases Dict[string, string] `yaml:"aliases"`
}

func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		IDProperty:      "FIRE_AgencyId",
		SubZoneProperty: "ESN",
		Aliases:         NewDict[string, string](0),
	}
}

// Reads zones from a GeoJSON (.geojson, .json) or shapefile (.shp).
//
// Every feature becomes one zone, features sharing an id are merged by Dissolve.
func LoadZones(path string, options LoadOptions) (List[*Zone], error) {
	var zones List[*Zone]
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		var data []byte
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "zone: read %s", path)
		}
		zones, err = ReadGeoJSONZones(data, options)
	case ".shp":
		zones, err = ReadShapefileZones(path, options)
	default:
		return nil, eris.Errorf("zone: unsupported zone file %s", path)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "zone: load %s", path)
	}
	slog.Info("zone: loaded zones", "path", path, "count", zones.Length())
	return zones, nil
}

func ReadGeoJSONZones(data []byte, options LoadOptions) (List[*Zone], error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, eris.Wrap(err, "zone: decode feature collection")
	}
	zones := NewList[*Zone](len(fc.Features))
	skipped := 0
	for i, feature := range fc.Features {
		polygon, ok := ToMultiPolygon(feature.Geometry)
		if !ok {
			skipped += 1
			continue
		}
		properties := NewDict[string, string](len(feature.Properties))
		for key, value := range feature.Properties {
			properties[key] = PropertyString(value)
		}
		z, ok := _NewZone(i, polygon, properties, options)
		if !ok {
			skipped += 1
			continue
		}
		zones.Add(z)
	}
	if skipped > 0 {
		slog.Debug("zone: skipped features without polygon or id", "skipped", skipped)
	}
	if zones.Length() == 0 {
		return nil, ErrNoZones
	}
	return zones, nil
}

func ReadShapefileZones(path string, options LoadOptions) (List[*Zone], error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "zone: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.TrimRight(f.String(), "\x00")
	}

	zones := NewList[*Zone](0)
	skipped := 0
	for reader.Next() {
		n, shape := reader.Shape()
		polygon, ok := _ShapeToMultiPolygon(shape)
		if !ok {
			skipped += 1
			continue
		}
		properties := NewDict[string, string](len(names))
		for i, name := range names {
			value := strings.TrimSpace(strings.TrimRight(reader.Attribute(i), "\x00"))
			if value != "" {
				properties[name] = value
			}
		}
		z, ok := _NewZone(n, polygon, properties, options)
		if !ok {
			skipped += 1
			continue
		}
		zones.Add(z)
	}
	if err := reader.Err(); err != nil {
		return nil, eris.Wrapf(err, "zone: read shapefile %s", path)
	}
	if skipped > 0 {
		slog.Debug("zone: skipped shapefile records", "path", path, "skipped", skipped)
	}
	if zones.Length() == 0 {
		return nil, ErrNoZones
	}
	return zones, nil
}

// Reads all polygons of a GeoJSON file into one multipolygon (e.g. a state boundary).
func LoadRegion(path string) (orb.MultiPolygon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "zone: read region %s", path)
	}
	region, err := ReadGeoJSONRegion(data)
	if err != nil {
		return nil, eris.Wrapf(err, "zone: load region %s", path)
	}
	return region, nil
}

func ReadGeoJSONRegion(data []byte) (orb.MultiPolygon, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, eris.Wrap(err, "zone: decode feature collection")
	}
	region := orb.MultiPolygon{}
	for _, feature := range fc.Features {
		if polygon, ok := ToMultiPolygon(feature.Geometry); ok {
			region = append(region, polygon...)
		}
	}
	if len(region) == 0 {
		return nil, ErrNoZones
	}
	return region, nil
}

// Converts polygonal geometries, other geometry types return false.
func ToMultiPolygon(g orb.Geometry) (orb.MultiPolygon, bool) {
	switch v := g.(type) {
	case orb.Polygon:
		if len(v) == 0 {
			return nil, false
		}
		return orb.MultiPolygon{v}, true
	case orb.MultiPolygon:
		if len(v) == 0 {
			return nil, false
		}
		return v, true
	default:
		return nil, false
	}
}

func _NewZone(index int, polygon orb.MultiPolygon, properties Dict[string, string], options LoadOptions) (*Zone, bool) {
	id := properties[options.IDProperty]
	if id == "" {
		return nil, false
	}
	id = _ApplyAliases(id, options.Aliases)
	sub := strconv.Itoa(index)
	if options.SubZoneProperty != "" {
		if value, ok := properties[options.SubZoneProperty]; ok {
			sub = value
		}
	}
	return &Zone{
		ID:         id,
		Polygon:    polygon,
		SubZones:   List[string]{sub},
		Properties: properties,
	}, true
}

func _ApplyAliases(id string, aliases Dict[string, string]) string {
	if len(aliases) == 0 {
		return id
	}
	keys := aliases.Keys()
	sort.Strings(keys)
	upper := strings.ToUpper(id)
	for _, key := range keys {
		if strings.Contains(upper, strings.ToUpper(key)) {
			return aliases[key]
		}
	}
	return id
}

// Formats a GeoJSON property value, unsupported types become empty strings.
func PropertyString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

//**********************************************************
// shapefile geometries
//**********************************************************

func _ShapeToMultiPolygon(shape shp.Shape) (orb.MultiPolygon, bool) {
	switch v := shape.(type) {
	case *shp.Polygon:
		return _RingsToMultiPolygon(v.Parts, v.Points)
	case *shp.PolygonZ:
		return _RingsToMultiPolygon(v.Parts, v.Points)
	case *shp.PolygonM:
		return _RingsToMultiPolygon(v.Parts, v.Points)
	default:
		return nil, false
	}
}

// Groups shapefile rings into polygons, shells are clockwise and holes counter-clockwise.
func _RingsToMultiPolygon(parts []int32, points []shp.Point) (orb.MultiPolygon, bool) {
	shells := make([]orb.Polygon, 0, 1)
	holes := make([]orb.Ring, 0)
	for i, start := range parts {
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || end > int32(len(points)) || end-start < 3 {
			continue
		}
		ring := make(orb.Ring, 0, end-start+1)
		for _, p := range points[start:end] {
			ring = append(ring, orb.Point{p.X, p.Y})
		}
		ring = geo.CloseRing(ring)
		if geo.IsCounterClockwise(ring) {
			holes = append(holes, ring)
		} else {
			shells = append(shells, orb.Polygon{ring})
		}
	}
	for _, hole := range holes {
		assigned := false
		for i := range shells {
			if planar.RingContains(shells[i][0], hole[0]) {
				shells[i] = append(shells[i], hole)
				assigned = true
				break
			}
		}
		if !assigned {
			shells = append(shells, orb.Polygon{hole})
		}
	}
	if len(shells) == 0 {
		return nil, false
	}
	return geo.NormalizeMultiPolygon(orb.MultiPolygon(shells)), true
}
