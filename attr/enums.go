package attr

import (
	"encoding/json"
	"errors"
)

//*******************************************
// enums
//*******************************************

type RoadType int8

const (
	OTHER          RoadType = 0
	MOTORWAY       RoadType = 1
	MOTORWAY_LINK  RoadType = 2
	TRUNK          RoadType = 3
	TRUNK_LINK     RoadType = 4
	PRIMARY        RoadType = 5
	PRIMARY_LINK   RoadType = 6
	SECONDARY      RoadType = 7
	SECONDARY_LINK RoadType = 8
	TERTIARY       RoadType = 9
	TERTIARY_LINK  RoadType = 10
	RESIDENTIAL    RoadType = 11
	LIVING_STREET  RoadType = 12
	UNCLASSIFIED   RoadType = 13
	ROAD           RoadType = 14
	SERVICE        RoadType = 15
	BUSWAY         RoadType = 16
)

var _road_type_names = map[RoadType]string{
	OTHER:          "other",
	MOTORWAY:       "motorway",
	MOTORWAY_LINK:  "motorway_link",
	TRUNK:          "trunk",
	TRUNK_LINK:     "trunk_link",
	PRIMARY:        "primary",
	PRIMARY_LINK:   "primary_link",
	SECONDARY:      "secondary",
	SECONDARY_LINK: "secondary_link",
	TERTIARY:       "tertiary",
	TERTIARY_LINK:  "tertiary_link",
	RESIDENTIAL:    "residential",
	LIVING_STREET:  "living_street",
	UNCLASSIFIED:   "unclassified",
	ROAD:           "road",
	SERVICE:        "service",
	BUSWAY:         "busway",
}

func (self RoadType) String() string {
	if name, ok := _road_type_names[self]; ok {
		return name
	}
	return "other"
}

// Returns the road type of an OSM highway value, unknown values map to OTHER.
func RoadTypeFromString(typ string) RoadType {
	for road_type, name := range _road_type_names {
		if name == typ {
			return road_type
		}
	}
	return OTHER
}

func (self RoadType) MarshalJSON() ([]byte, error) {
	return json.Marshal(self.String())
}
func (self *RoadType) UnmarshalJSON(data []byte) error {
	var typ string
	if err := json.Unmarshal(data, &typ); err != nil {
		return err
	}
	road_type := RoadTypeFromString(typ)
	if road_type == OTHER && typ != "other" {
		return errors.New("invalid road type")
	}
	*self = road_type
	return nil
}
