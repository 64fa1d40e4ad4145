package hydrant

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

var ErrNoHydrants = eris.New("hydrant: no hydrant points found")

func LoadHydrants(path string) (List[Hydrant], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "hydrant: read %s", path)
	}
	hydrants, err := ReadGeoJSONHydrants(data)
	if err != nil {
		return nil, eris.Wrapf(err, "hydrant: load %s", path)
	}
	slog.Info("hydrant: loaded hydrants", "path", path, "count", hydrants.Length())
	return hydrants, nil
}

// Reads point features with HYDRANTID, HYDRANTTYPE and FLOWRATE properties.
//
// Features without a point geometry are skipped, a missing id falls back to the feature index.
func ReadGeoJSONHydrants(data []byte) (List[Hydrant], error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, eris.Wrap(err, "hydrant: decode feature collection")
	}
	hydrants := NewList[Hydrant](len(fc.Features))
	skipped := 0
	for i, feature := range fc.Features {
		point, ok := feature.Geometry.(orb.Point)
		if !ok {
			skipped += 1
			continue
		}
		id := zone.PropertyString(feature.Properties["HYDRANTID"])
		if id == "" {
			id = strconv.Itoa(i)
		}
		flow := None[int]()
		if rate, ok := ParseFlowRate(zone.PropertyString(feature.Properties["FLOWRATE"])); ok {
			flow = Some(rate)
		}
		hydrants.Add(Hydrant{
			ID:       id,
			Point:    point,
			FlowRate: flow,
			Type:     HydrantTypeFromCode(zone.PropertyString(feature.Properties["HYDRANTTYPE"])),
		})
	}
	if skipped > 0 {
		slog.Warn("hydrant: skipped features without point geometry", "count", skipped)
	}
	if hydrants.Length() == 0 {
		return nil, ErrNoHydrants
	}
	return hydrants, nil
}
