package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"github.com/ttpr0/go-coverage/attr"
	"github.com/ttpr0/go-coverage/coverage"
	"github.com/ttpr0/go-coverage/geo"
	"github.com/ttpr0/go-coverage/graph"
	"github.com/ttpr0/go-coverage/hull"
	"github.com/ttpr0/go-coverage/hydrant"
	"github.com/ttpr0/go-coverage/output"
	"github.com/ttpr0/go-coverage/parser"
	. "github.com/ttpr0/go-coverage/util"
	"github.com/ttpr0/go-coverage/zone"
	"golang.org/x/exp/slog"
	"gopkg.in/yaml.v3"
)

//**********************************************************
// config
//**********************************************************

const ENV_PREFIX = "COVERAGE"

type Config struct {
	Input      InputConfig           `yaml:"input"`
	Thresholds []int32               `yaml:"thresholds"`
	Graph      GraphConfig           `yaml:"graph"`
	Hull       hull.Options          `yaml:"hull"`
	Run        RunConfig             `yaml:"run"`
	Output     OutputConfig          `yaml:"output"`
	Hydrants   hydrant.BufferOptions `yaml:"hydrants"`
	Metrics    MetricsConfig         `yaml:"metrics"`
	Log        LogConfig             `yaml:"log"`
	Serve      ServeConfig           `yaml:"serve"`
}

type InputConfig struct {
	// osm extract (.pbf, .osm)
	OSM   string `yaml:"osm"`
	Zones string `yaml:"zones"`
	// region boundary, the union of all zones is used if empty
	Region   string                      `yaml:"region"`
	Stations string                      `yaml:"stations"`
	Hydrants string                      `yaml:"hydrants"`
	Zone     zone.LoadOptions            `yaml:"zone"`
	Station  coverage.StationLoadOptions `yaml:"station"`
}

type GraphConfig struct {
	Scope        coverage.GraphScope `yaml:"scope"`
	IgnoreOneway bool                `yaml:"ignore_oneway"`
	RetainAll    bool                `yaml:"retain_all"`
	// travel_time thresholds are seconds, distance thresholds meters
	Weighting  graph.WeightType   `yaml:"weighting"`
	Projection geo.ProjectionType `yaml:"projection"`
	// km/h per highway class
	HwySpeeds     map[string]float64 `yaml:"hwy_speeds"`
	FallbackSpeed float64            `yaml:"fallback_speed"`
	// padding of the region bound in degrees when reading the osm extract
	BoundPadding float64 `yaml:"bound_padding"`
}

type RunConfig struct {
	Workers        int           `yaml:"workers"`
	StationTimeout time.Duration `yaml:"station_timeout"`
}

type OutputConfig struct {
	Dir                 string        `yaml:"dir"`
	ZoneProperty        string        `yaml:"zone_property"`
	WriteDissolvedZones bool          `yaml:"write_dissolved_zones"`
	WriteHydrantTypes   bool          `yaml:"write_hydrant_types"`
	PostGIS             PostGISConfig `yaml:"postgis"`
}

type PostGISConfig struct {
	// disabled if empty
	URL   string `yaml:"url"`
	Table string `yaml:"table"`
}

type MetricsConfig struct {
	// prometheus textfile written after every run, disabled if empty
	Textfile string `yaml:"textfile"`
}

type LogConfig struct {
	Level LogLevel `yaml:"level"`
}

type ServeConfig struct {
	Address     string   `yaml:"address"`
	CORSOrigins []string `yaml:"cors_origins"`
}

func DefaultConfig() Config {
	writer := output.DefaultWriterOptions()
	speeds := make(map[string]float64)
	for typ, speed := range parser.DefaultHwySpeeds() {
		speeds[typ.String()] = speed
	}
	run := coverage.DefaultOptions()
	return Config{
		Input: InputConfig{
			OSM:      "data/vermont.osm.pbf",
			Zones:    "data/ESN_Boundaries.geojson",
			Stations: "data/stations.geojson",
			Hydrants: "data/hydrants.geojson",
			Zone:     zone.DefaultLoadOptions(),
			Station:  coverage.DefaultStationLoadOptions(),
		},
		Thresholds: coverage.DefaultThresholds(),
		Graph: GraphConfig{
			Scope:         coverage.SCOPE_ZONE,
			IgnoreOneway:  true,
			Projection:    geo.UTM,
			HwySpeeds:     speeds,
			FallbackSpeed: parser.DefaultSpeedOptions().Fallback,
			BoundPadding:  0.02,
		},
		Hull: hull.DefaultOptions(),
		Run: RunConfig{
			Workers:        run.Workers,
			StationTimeout: run.StationTimeout,
		},
		Output: OutputConfig{
			Dir:                 writer.Dir,
			ZoneProperty:        writer.ZoneProperty,
			WriteDissolvedZones: writer.WriteDissolvedZones,
			PostGIS: PostGISConfig{
				Table: "response_polygons",
			},
		},
		Hydrants: hydrant.DefaultBufferOptions(),
		Log:      LogConfig{Level: LOG_INFO},
		Serve: ServeConfig{
			Address:     ":5002",
			CORSOrigins: []string{"*"},
		},
	}
}

// Resolves the config from defaults, the yaml file, bound flags and COVERAGE_* environment variables.
//
// A missing file is not an error if the path was not set explicitly.
func LoadConfig(v *viper.Viper, file string, explicit bool) (Config, error) {
	defaults, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return Config{}, eris.Wrap(err, "config: encode defaults")
	}
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return Config{}, eris.Wrap(err, "config: read defaults")
	}
	// environment values of list settings are comma separated
	lists := NewDict[string, bool](4)
	for _, key := range v.AllKeys() {
		if _, ok := v.Get(key).([]any); ok {
			lists[key] = true
		}
	}
	v.SetEnvPrefix(ENV_PREFIX)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		data, err := os.ReadFile(file)
		switch {
		case err == nil:
			slog.Info("reading config file", "path", file)
			if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
				return Config{}, eris.Wrapf(err, "config: read %s", file)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
			slog.Debug("no config file found, using defaults", "path", file)
		default:
			return Config{}, eris.Wrapf(err, "config: read %s", file)
		}
	}

	// decoding through a yaml node lets enum fields parse themselves
	config := DefaultConfig()
	if err := _SettingsNode(v.AllSettings(), "", lists).Decode(&config); err != nil {
		return Config{}, eris.Wrap(err, "config: decode settings")
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Converts viper settings to an untagged yaml tree, scalars are resolved by the target field.
func _SettingsNode(value any, path string, lists Dict[string, bool]) *yaml.Node {
	switch v := value.(type) {
	case map[string]any:
		node := &yaml.Node{Kind: yaml.MappingNode}
		for _, key := range SortedKeys(Dict[string, any](v)) {
			child := key
			if path != "" {
				child = path + "." + key
			}
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: key},
				_SettingsNode(v[key], child, lists),
			)
		}
		return node
	case []any:
		node := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range v {
			node.Content = append(node.Content, _SettingsNode(item, path, lists))
		}
		return node
	case []int:
		node := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range v {
			node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: fmt.Sprint(item)})
		}
		return node
	case []string:
		node := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range v {
			node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: item})
		}
		return node
	case string:
		if !lists[path] {
			return &yaml.Node{Kind: yaml.ScalarNode, Value: v}
		}
		node := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: item})
			}
		}
		return node
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: fmt.Sprint(v)}
	}
}

func (self Config) Validate() error {
	thresholds, err := coverage.NewThresholds(self.Thresholds)
	if err != nil {
		return eris.Wrap(err, "config: thresholds")
	}
	if len(thresholds) != len(self.Thresholds) {
		slog.Warn("duplicate thresholds are ignored", "thresholds", self.Thresholds)
	}
	if self.Run.Workers < 1 {
		return eris.Errorf("config: run.workers must be at least 1, got %d", self.Run.Workers)
	}
	if self.Run.StationTimeout < 0 {
		return eris.Errorf("config: run.station_timeout must not be negative, got %v", self.Run.StationTimeout)
	}
	if err := self.Hull.Validate(); err != nil {
		return eris.Wrap(err, "config: hull")
	}
	if self.Graph.FallbackSpeed <= 0 {
		return eris.Errorf("config: graph.fallback_speed must be positive, got %v", self.Graph.FallbackSpeed)
	}
	for name, speed := range self.Graph.HwySpeeds {
		if attr.RoadTypeFromString(name) == attr.OTHER && name != "other" {
			return eris.Errorf("config: unknown highway class %q in graph.hwy_speeds", name)
		}
		if speed <= 0 {
			return eris.Errorf("config: speed of %s must be positive, got %v", name, speed)
		}
	}
	return nil
}

//**********************************************************
// derived options
//**********************************************************

func (self Config) SpeedOptions() parser.SpeedOptions {
	speeds := NewDict[attr.RoadType, float64](len(self.Graph.HwySpeeds))
	for name, speed := range self.Graph.HwySpeeds {
		speeds[attr.RoadTypeFromString(name)] = speed
	}
	return parser.SpeedOptions{
		HwySpeeds: speeds,
		Fallback:  self.Graph.FallbackSpeed,
	}
}

func (self Config) WriterOptions() output.WriterOptions {
	return output.WriterOptions{
		Dir:                 self.Output.Dir,
		ZoneProperty:        self.Output.ZoneProperty,
		WriteDissolvedZones: self.Output.WriteDissolvedZones,
		Weighting:           self.Graph.Weighting,
	}
}

func (self Config) RunOptions() coverage.Options {
	return coverage.Options{
		Thresholds:     self.Thresholds,
		Workers:        self.Run.Workers,
		StationTimeout: self.Run.StationTimeout,
		Scope:          self.Graph.Scope,
	}
}
