package hydrant

import (
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
	"github.com/ttpr0/go-coverage/geo"
	. "github.com/ttpr0/go-coverage/util"
	"golang.org/x/exp/slog"
)

//**********************************************************
// service buffers
//**********************************************************

type BufferOptions struct {
	// buffer radius in meters
	Radius   float64            `yaml:"radius"`
	Segments int                `yaml:"segments"`
	Proj     geo.ProjectionType `yaml:"projection"`
}

// 600 ft hose lay.
func DefaultBufferOptions() BufferOptions {
	return BufferOptions{
		Radius:   183,
		Segments: 32,
		Proj:     geo.UTM,
	}
}

// Buffers every hydrant and groups the buffers by flow class.
//
// Buffers are computed in a projection local to all hydrants and returned in WGS84.
func ClassBuffers(hydrants []Hydrant, options BufferOptions) (Dict[FlowClass, *geojson.FeatureCollection], error) {
	if options.Radius <= 0 {
		return nil, eris.Errorf("hydrant: buffer radius must be positive, got %v", options.Radius)
	}
	if options.Segments < 4 {
		options.Segments = 4
	}
	classes := NewDict[FlowClass, *geojson.FeatureCollection](5)
	if len(hydrants) == 0 {
		return classes, nil
	}
	bound := orb.Bound{Min: hydrants[0].Point, Max: hydrants[0].Point}
	for _, h := range hydrants {
		bound = bound.Extend(h.Point)
	}
	proj := geo.NewLocalProjection(options.Proj, bound)

	for _, h := range hydrants {
		buffer := geo.BufferPoint(proj.Proj(h.Point), options.Radius, options.Segments)
		polygon := geo.ReProjectMultiPolygon(orb.MultiPolygon{buffer}, proj)
		class := h.Class()
		fc, ok := classes[class]
		if !ok {
			fc = geojson.NewFeatureCollection()
			classes[class] = fc
		}
		feature := geojson.NewFeature(polygon[0])
		feature.Properties["FLOWRATE"] = class.String()
		feature.Properties["HYDRANTTYPE"] = h.Type.String()
		feature.Properties["HYDRANTID"] = h.ID
		fc.Append(feature)
	}
	return classes, nil
}

// Groups hydrant locations by hydrant type.
func TypePoints(hydrants []Hydrant) Dict[HydrantType, *geojson.FeatureCollection] {
	types := NewDict[HydrantType, *geojson.FeatureCollection](5)
	for _, h := range hydrants {
		fc, ok := types[h.Type]
		if !ok {
			fc = geojson.NewFeatureCollection()
			types[h.Type] = fc
		}
		feature := geojson.NewFeature(h.Point)
		feature.Properties["HYDRANTID"] = h.ID
		feature.Properties["HYDRANTTYPE"] = h.Type.String()
		if h.FlowRate.HasValue() {
			feature.Properties["FLOWRATE"] = h.FlowRate.Value
		}
		fc.Append(feature)
	}
	return types
}

//**********************************************************
// output
//**********************************************************

func ClassFileName(class FlowClass) string {
	return "hydrant_" + class.String() + ".geojson"
}

func TypeFileName(typ HydrantType) string {
	return strings.ReplaceAll(typ.String(), " ", "_") + "_coords.geojson"
}

// Writes one file per non-empty flow class and hydrant type, returns the written paths.
func WriteHydrantLayers(hydrants []Hydrant, dir string, options BufferOptions, with_types bool) (List[string], error) {
	written := NewList[string](10)
	classes, err := ClassBuffers(hydrants, options)
	if err != nil {
		return written, err
	}
	for _, class := range FlowClasses() {
		fc, ok := classes[class]
		if !ok || len(fc.Features) == 0 {
			continue
		}
		path := filepath.Join(dir, ClassFileName(class))
		if err := _WriteFeatureCollection(fc, path); err != nil {
			return written, err
		}
		slog.Info("hydrant: wrote class layer", "class", class.String(), "hydrants", len(fc.Features), "path", path)
		written.Add(path)
	}
	if !with_types {
		return written, nil
	}
	types := TypePoints(hydrants)
	for _, typ := range HydrantTypes() {
		fc, ok := types[typ]
		if !ok {
			continue
		}
		path := filepath.Join(dir, TypeFileName(typ))
		if err := _WriteFeatureCollection(fc, path); err != nil {
			return written, err
		}
		written.Add(path)
	}
	return written, nil
}

func _WriteFeatureCollection(fc *geojson.FeatureCollection, path string) error {
	data, err := fc.MarshalJSON()
	if err != nil {
		return eris.Wrapf(err, "hydrant: encode %s", path)
	}
	return WriteBytesToFile(data, path)
}
