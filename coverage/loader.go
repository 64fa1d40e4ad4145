package coverage

import (
	"os"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
	. "github.com/ttpr0/go-coverage/util"
	"github.com/ttpr0/go-coverage/zone"
	"golang.org/x/exp/slog"
)

type StationLoadOptions struct {
	// property holding the station id, the feature index is used if missing
	IDProperty string `yaml:"id_property"`
	// property holding the owning zone id
	ZoneProperty string `yaml:"zone_property"`
}

func DefaultStationLoadOptions() StationLoadOptions {
	return StationLoadOptions{
		IDProperty:   "TOWNNAME",
		ZoneProperty: "FIRE_AgencyId",
	}
}

func LoadStations(path string, options StationLoadOptions) (List[Station], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "coverage: read stations %s", path)
	}
	stations, err := ReadGeoJSONStations(data, options)
	if err != nil {
		return nil, eris.Wrapf(err, "coverage: load stations %s", path)
	}
	slog.Info("coverage: loaded stations", "path", path, "count", stations.Length())
	return stations, nil
}

// Reads point features as stations, duplicate ids get a numeric suffix.
func ReadGeoJSONStations(data []byte, options StationLoadOptions) (List[Station], error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, eris.Wrap(err, "coverage: decode feature collection")
	}
	stations := NewList[Station](len(fc.Features))
	seen := NewDict[string, int](len(fc.Features))
	skipped := 0
	for i, feature := range fc.Features {
		point, ok := _StationPoint(feature.Geometry)
		if !ok {
			skipped += 1
			continue
		}
		id := zone.PropertyString(feature.Properties[options.IDProperty])
		if id == "" {
			id = strconv.Itoa(i)
		}
		seen[id] += 1
		if n := seen[id]; n > 1 {
			id = id + "#" + strconv.Itoa(n)
		}
		station, err := NewStation(id, point, zone.PropertyString(feature.Properties[options.ZoneProperty]))
		if err != nil {
			slog.Warn("coverage: invalid station", "index", i, "error", err.Error())
			skipped += 1
			continue
		}
		stations.Add(station)
	}
	if skipped > 0 {
		slog.Debug("coverage: skipped station features", "skipped", skipped)
	}
	if stations.Length() == 0 {
		return nil, eris.New("coverage: no stations found")
	}
	return stations, nil
}

func _StationPoint(g orb.Geometry) (orb.Point, bool) {
	switch v := g.(type) {
	case orb.Point:
		return v, true
	case orb.MultiPoint:
		if len(v) == 0 {
			return orb.Point{}, false
		}
		return v[0], true
	default:
		return orb.Point{}, false
	}
}
