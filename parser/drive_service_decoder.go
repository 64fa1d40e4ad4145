package parser

import (
	"github.com/ttpr0/go-coverage/attr"
	. "github.com/ttpr0/go-coverage/util"
)

// Decodes the drivable road network including service roads.
//
// Emergency vehicles may drive oneways in both directions, so oneway tags are
// ignored unless IgnoreOneway is false.
type DriveServiceDecoder struct {
	IgnoreOneway bool
}

var excluded_highways = Dict[string, bool]{"abandoned": true, "bridleway": true, "bus_guideway": true,
	"construction": true, "corridor": true, "cycleway": true, "elevator": true, "escalator": true,
	"footway": true, "no": true, "path": true, "pedestrian": true, "planned": true, "platform": true,
	"proposed": true, "raceway": true, "razed": true, "steps": true, "track": true}

var excluded_services = Dict[string, bool]{"emergency_access": true, "parking": true,
	"parking_aisle": true, "private": true}

var oneway_values = Dict[string, bool]{"yes": true, "true": true, "1": true}
var reversed_values = Dict[string, bool]{"-1": true, "reverse": true, "T": true}

func (self *DriveServiceDecoder) IsValidHighway(tags Dict[string, string]) bool {
	highway, ok := tags["highway"]
	if !ok || highway == "" {
		return false
	}
	if _AnyValue(highway, excluded_highways) {
		return false
	}
	if tags.Get("area") == "yes" {
		return false
	}
	if _AnyValue(tags.Get("access"), Dict[string, bool]{"private": true}) {
		return false
	}
	if tags.Get("motor_vehicle") == "no" || tags.Get("motorcar") == "no" {
		return false
	}
	if _AnyValue(tags.Get("service"), excluded_services) {
		return false
	}
	return true
}

func (self *DriveServiceDecoder) DecodeEdge(tags Dict[string, string]) attr.EdgeAttribs {
	e := attr.EdgeAttribs{}
	e.Type = attr.RoadTypeFromString(tags.Get("highway"))
	if speed, ok := ParseMaxspeed(tags.Get("maxspeed")); ok {
		e.Speed = speed
		e.Tagged = true
	}
	if !self.IgnoreOneway {
		e.Oneway = _IsOneway(tags)
	}
	return e
}

func (self *DriveServiceDecoder) IsReversed(tags Dict[string, string]) bool {
	if self.IgnoreOneway {
		return false
	}
	return reversed_values.ContainsKey(tags.Get("oneway"))
}
