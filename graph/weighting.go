package graph

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/ttpr0/go-coverage/attr"
	. "github.com/ttpr0/go-coverage/util"
	"gopkg.in/yaml.v3"
)

//*******************************************
// weighting interface
//*******************************************

type IWeighting interface {
	GetEdgeWeight(edge int32) float64
	Type() WeightType
}

type WeightType byte

const (
	// seconds
	TRAVEL_TIME_WEIGHT WeightType = 0
	// meters
	DISTANCE_WEIGHT WeightType = 1
)

func (self WeightType) String() string {
	switch self {
	case TRAVEL_TIME_WEIGHT:
		return "travel_time"
	case DISTANCE_WEIGHT:
		return "distance"
	default:
		return "unknown"
	}
}
func (self WeightType) MarshalJSON() ([]byte, error) {
	return json.Marshal(self.String())
}
func (self WeightType) MarshalYAML() (any, error) {
	return self.String(), nil
}
func (self *WeightType) UnmarshalYAML(value *yaml.Node) error {
	weight, err := WeightTypeFromString(value.Value)
	if err != nil {
		return err
	}
	*self = weight
	return nil
}

func WeightTypeFromString(s string) (WeightType, error) {
	switch s {
	case "travel_time", "":
		return TRAVEL_TIME_WEIGHT, nil
	case "distance":
		return DISTANCE_WEIGHT, nil
	default:
		return TRAVEL_TIME_WEIGHT, eris.Errorf("graph: unknown weighting %q", s)
	}
}

func NewWeighting(weight WeightType, attributes attr.IAttributes, edge_count int) IWeighting {
	if weight == DISTANCE_WEIGHT {
		return NewDistanceWeighting(attributes, edge_count)
	}
	return NewTravelTimeWeighting(attributes, edge_count)
}

//*******************************************
// travel-time weighting
//*******************************************

// Edge weights in seconds.
type TravelTimeWeighting struct {
	edge_weights Array[float64]
}

func NewTravelTimeWeighting(attributes attr.IAttributes, edge_count int) *TravelTimeWeighting {
	weights := NewArray[float64](edge_count)
	for i := 0; i < edge_count; i++ {
		weights[i] = attributes.GetEdgeAttribs(int32(i)).TravelTime
	}
	return &TravelTimeWeighting{
		edge_weights: weights,
	}
}

func (self *TravelTimeWeighting) GetEdgeWeight(edge int32) float64 {
	return self.edge_weights[edge]
}
func (self *TravelTimeWeighting) Type() WeightType {
	return TRAVEL_TIME_WEIGHT
}

//*******************************************
// distance weighting
//*******************************************

// Edge weights in meters.
type DistanceWeighting struct {
	edge_weights Array[float64]
}

func NewDistanceWeighting(attributes attr.IAttributes, edge_count int) *DistanceWeighting {
	weights := NewArray[float64](edge_count)
	for i := 0; i < edge_count; i++ {
		weights[i] = attributes.GetEdgeAttribs(int32(i)).Length
	}
	return &DistanceWeighting{
		edge_weights: weights,
	}
}

func (self *DistanceWeighting) GetEdgeWeight(edge int32) float64 {
	return self.edge_weights[edge]
}
func (self *DistanceWeighting) Type() WeightType {
	return DISTANCE_WEIGHT
}
