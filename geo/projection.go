package geo

import (
	"encoding/json"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//**********************************************************
// projections
//**********************************************************

// Maps between WGS84 longitude/latitude and a planar metric system.
type IProjection interface {
	Proj(orb.Point) orb.Point
	ReProj(orb.Point) orb.Point
}

type WebMercatorProjection struct{}

func (self *WebMercatorProjection) Proj(point orb.Point) orb.Point {
	return project.WGS84.ToMercator(point)
}
func (self *WebMercatorProjection) ReProj(point orb.Point) orb.Point {
	return project.Mercator.ToWGS84(point)
}

const (
	_WGS84_A  = 6378137.0
	_WGS84_F  = 1 / 298.257223563
	_UTM_K0   = 0.9996
	_UTM_EAST = 500000.0
	_UTM_NORT = 10000000.0
)

// Transverse mercator projection for a single UTM zone.
type UTMProjection struct {
	zone  int
	north bool
	lon0  float64
}

// Creates the UTM projection of the zone containing the given location.
func NewUTMProjection(center orb.Point) *UTMProjection {
	zone := int(math.Floor((center[0]+180)/6)) + 1
	if zone < 1 {
		zone = 1
	}
	if zone > 60 {
		zone = 60
	}
	return &UTMProjection{
		zone:  zone,
		north: center[1] >= 0,
		lon0:  float64((zone-1)*6-180+3) * math.Pi / 180,
	}
}

func (self *UTMProjection) Zone() int {
	return self.zone
}

// EPSG code of the zone (326xx north, 327xx south).
func (self *UTMProjection) EPSG() int {
	if self.north {
		return 32600 + self.zone
	}
	return 32700 + self.zone
}

func (self *UTMProjection) Proj(point orb.Point) orb.Point {
	e2 := _WGS84_F * (2 - _WGS84_F)
	ep2 := e2 / (1 - e2)
	lat := point[1] * math.Pi / 180
	lon := point[0] * math.Pi / 180

	sin := math.Sin(lat)
	cos := math.Cos(lat)
	tan := math.Tan(lat)
	n := _WGS84_A / math.Sqrt(1-e2*sin*sin)
	t := tan * tan
	c := ep2 * cos * cos
	a := cos * (lon - self.lon0)
	m := _MeridianArc(lat, e2)

	x := _UTM_K0*n*(a+(1-t+c)*math.Pow(a, 3)/6+(5-18*t+t*t+72*c-58*ep2)*math.Pow(a, 5)/120) + _UTM_EAST
	y := _UTM_K0 * (m + n*tan*(a*a/2+(5-t+9*c+4*c*c)*math.Pow(a, 4)/24+(61-58*t+t*t+600*c-330*ep2)*math.Pow(a, 6)/720))
	if !self.north {
		y += _UTM_NORT
	}
	return orb.Point{x, y}
}

func (self *UTMProjection) ReProj(point orb.Point) orb.Point {
	e2 := _WGS84_F * (2 - _WGS84_F)
	ep2 := e2 / (1 - e2)
	x := point[0] - _UTM_EAST
	y := point[1]
	if !self.north {
		y -= _UTM_NORT
	}

	m := y / _UTM_K0
	mu := m / (_WGS84_A * (1 - e2/4 - 3*e2*e2/64 - 5*e2*e2*e2/256))
	e1 := (1 - math.Sqrt(1-e2)) / (1 + math.Sqrt(1-e2))
	phi1 := mu + (3*e1/2-27*math.Pow(e1, 3)/32)*math.Sin(2*mu) +
		(21*e1*e1/16-55*math.Pow(e1, 4)/32)*math.Sin(4*mu) +
		(151*math.Pow(e1, 3)/96)*math.Sin(6*mu) +
		(1097*math.Pow(e1, 4)/512)*math.Sin(8*mu)

	sin := math.Sin(phi1)
	cos := math.Cos(phi1)
	tan := math.Tan(phi1)
	n1 := _WGS84_A / math.Sqrt(1-e2*sin*sin)
	t1 := tan * tan
	c1 := ep2 * cos * cos
	r1 := _WGS84_A * (1 - e2) / math.Pow(1-e2*sin*sin, 1.5)
	d := x / (n1 * _UTM_K0)

	lat := phi1 - (n1*tan/r1)*(d*d/2-(5+3*t1+10*c1-4*c1*c1-9*ep2)*math.Pow(d, 4)/24+
		(61+90*t1+298*c1+45*t1*t1-252*ep2-3*c1*c1)*math.Pow(d, 6)/720)
	lon := self.lon0 + (d-(1+2*t1+c1)*math.Pow(d, 3)/6+
		(5-2*c1+28*t1-3*c1*c1+8*ep2+24*t1*t1)*math.Pow(d, 5)/120)/cos
	return orb.Point{lon * 180 / math.Pi, lat * 180 / math.Pi}
}

func _MeridianArc(lat float64, e2 float64) float64 {
	e4 := e2 * e2
	e6 := e4 * e2
	return _WGS84_A * ((1-e2/4-3*e4/64-5*e6/256)*lat -
		(3*e2/8+3*e4/32+45*e6/1024)*math.Sin(2*lat) +
		(15*e4/256+45*e6/1024)*math.Sin(4*lat) -
		(35*e6/3072)*math.Sin(6*lat))
}

//**********************************************************
// projection type
//**********************************************************

type ProjectionType byte

const (
	UTM          ProjectionType = 0
	WEB_MERCATOR ProjectionType = 1
)

func (self ProjectionType) String() string {
	switch self {
	case UTM:
		return "utm"
	case WEB_MERCATOR:
		return "webmercator"
	default:
		return "unknown"
	}
}
func (self ProjectionType) MarshalJSON() ([]byte, error) {
	return json.Marshal(self.String())
}
func (self ProjectionType) MarshalYAML() (any, error) {
	return self.String(), nil
}
func (self *ProjectionType) UnmarshalYAML(value *yaml.Node) error {
	typ, err := ProjectionTypeFromString(value.Value)
	if err != nil {
		return err
	}
	*self = typ
	return nil
}

func ProjectionTypeFromString(s string) (ProjectionType, error) {
	switch s {
	case "utm", "":
		return UTM, nil
	case "webmercator", "web-mercator":
		return WEB_MERCATOR, nil
	default:
		return UTM, eris.Errorf("geo: unknown projection type %q", s)
	}
}

// Returns a projection suitable for metric operations around the given bound.
func NewLocalProjection(typ ProjectionType, bound orb.Bound) IProjection {
	switch typ {
	case WEB_MERCATOR:
		return &WebMercatorProjection{}
	default:
		return NewUTMProjection(bound.Center())
	}
}

//**********************************************************
// geometry transforms
//**********************************************************

func ProjectMultiPolygon(mp orb.MultiPolygon, proj IProjection) orb.MultiPolygon {
	return project.MultiPolygon(mp.Clone(), proj.Proj)
}

func ReProjectMultiPolygon(mp orb.MultiPolygon, proj IProjection) orb.MultiPolygon {
	return project.MultiPolygon(mp.Clone(), proj.ReProj)
}
