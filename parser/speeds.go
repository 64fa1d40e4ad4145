package parser

import (
	"strconv"
	"strings"

	"github.com/ttpr0/go-coverage/attr"
	. "github.com/ttpr0/go-coverage/util"
)

//*******************************************
// speeds
//*******************************************

type SpeedOptions struct {
	// speeds (km/h) for road types without maxspeed tag
	HwySpeeds Dict[attr.RoadType, float64]
	// speed (km/h) used if nothing else can be imputed
	Fallback float64
}

func DefaultHwySpeeds() Dict[attr.RoadType, float64] {
	return Dict[attr.RoadType, float64]{
		attr.RESIDENTIAL:  40,
		attr.UNCLASSIFIED: 40,
		attr.TERTIARY:     56,
		attr.SECONDARY:    56,
		attr.PRIMARY:      80,
		attr.TRUNK:        56,
	}
}

func DefaultSpeedOptions() SpeedOptions {
	return SpeedOptions{
		HwySpeeds: DefaultHwySpeeds(),
		Fallback:  40,
	}
}

// Parses an OSM maxspeed value to km/h.
//
// Values in mph or knots are converted, lists separated by ";" are averaged.
func ParseMaxspeed(maxspeed string) (float64, bool) {
	maxspeed = strings.TrimSpace(maxspeed)
	if maxspeed == "" {
		return 0, false
	}
	switch maxspeed {
	case "walk":
		return 10, true
	case "none":
		return 110, true
	}
	values := NewList[float64](2)
	for _, token := range strings.Split(maxspeed, ";") {
		speed, ok := _ParseSingleSpeed(token)
		if !ok {
			return 0, false
		}
		values.Add(speed)
	}
	return Mean(values)
}

func _ParseSingleSpeed(token string) (float64, bool) {
	token = strings.ToLower(strings.TrimSpace(token))
	factor := 1.0
	for _, unit := range []struct {
		suffix string
		factor float64
	}{{"km/h", 1}, {"kmh", 1}, {"kph", 1}, {"mph", 1.609344}, {"knots", 1.852}} {
		if strings.HasSuffix(token, unit.suffix) {
			token = strings.TrimSpace(strings.TrimSuffix(token, unit.suffix))
			factor = unit.factor
			break
		}
	}
	token = strings.ReplaceAll(token, ",", ".")
	speed, err := strconv.ParseFloat(token, 64)
	if err != nil || speed <= 0 {
		return 0, false
	}
	return speed * factor, true
}

// Fills in speeds of edges without maxspeed tag.
//
// Road types with a configured speed get that speed, others the mean tagged speed of
// their type, then the mean of all tagged speeds, then the fallback.
func ImputeSpeeds(edges List[OSMEdge], options SpeedOptions) {
	observed := NewDict[attr.RoadType, List[float64]](16)
	all := NewList[float64](edges.Length())
	for _, edge := range edges {
		if !edge.Attr.Tagged {
			continue
		}
		speeds := observed[edge.Attr.Type]
		speeds.Add(edge.Attr.Speed)
		observed[edge.Attr.Type] = speeds
		all.Add(edge.Attr.Speed)
	}
	type_means := NewDict[attr.RoadType, float64](observed.Length())
	for typ, speeds := range observed {
		mean, _ := Mean(speeds)
		type_means[typ] = mean
	}
	overall, has_overall := Mean(all)

	for i := range edges {
		edge := &edges[i]
		if edge.Attr.Tagged {
			continue
		}
		if speed, ok := options.HwySpeeds[edge.Attr.Type]; ok && speed > 0 {
			edge.Attr.Speed = speed
		} else if speed, ok := type_means[edge.Attr.Type]; ok {
			edge.Attr.Speed = speed
		} else if has_overall {
			edge.Attr.Speed = overall
		} else {
			edge.Attr.Speed = options.Fallback
		}
	}
}
