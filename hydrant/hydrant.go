package hydrant

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	. "github.com/ttpr0/go-coverage/util"
)

//**********************************************************
// flow class
//**********************************************************

// NFPA color class of the hydrant flow rate.
type FlowClass byte

const (
	BLUE    FlowClass = 0
	GREEN   FlowClass = 1
	ORANGE  FlowClass = 2
	RED     FlowClass = 3
	UNKNOWN FlowClass = 4
)

func FlowClasses() []FlowClass {
	return []FlowClass{BLUE, GREEN, ORANGE, RED, UNKNOWN}
}

func (self FlowClass) String() string {
	switch self {
	case BLUE:
		return "blue"
	case GREEN:
		return "green"
	case ORANGE:
		return "orange"
	case RED:
		return "red"
	default:
		return "unknown"
	}
}
func (self FlowClass) MarshalJSON() ([]byte, error) {
	return json.Marshal(self.String())
}

// blue >= 1500 gpm, green >= 1000, orange >= 500, red below.
func ClassifyFlow(rate Optional[int]) FlowClass {
	if !rate.HasValue() {
		return UNKNOWN
	}
	gpm := rate.Value
	switch {
	case gpm >= 1500:
		return BLUE
	case gpm >= 1000:
		return GREEN
	case gpm >= 500:
		return ORANGE
	case gpm >= 0:
		return RED
	default:
		return UNKNOWN
	}
}

// Parses flow rates like "1200gpm" or "750 GPM", the unit suffix is optional.
func ParseFlowRate(s string) (int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexByte(s, 'g'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	if s == "" {
		return 0, false
	}
	rate, err := strconv.Atoi(s)
	if err != nil {
		value, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		rate = int(value)
	}
	if rate < 0 {
		return 0, false
	}
	return rate, true
}

//**********************************************************
// hydrant type
//**********************************************************

type HydrantType byte

const (
	MUNICIPAL    HydrantType = 0
	DRY          HydrantType = 1
	PRESSURIZED  HydrantType = 2
	DRAFTING     HydrantType = 3
	UNKNOWN_TYPE HydrantType = 4
)

func HydrantTypes() []HydrantType {
	return []HydrantType{MUNICIPAL, DRY, PRESSURIZED, DRAFTING, UNKNOWN_TYPE}
}

func (self HydrantType) String() string {
	switch self {
	case MUNICIPAL:
		return "Municipal Hydrant"
	case DRY:
		return "Dry Hydrant"
	case PRESSURIZED:
		return "Pressurized Hydrant"
	case DRAFTING:
		return "Drafting Site"
	default:
		return "Unknown Type"
	}
}
func (self HydrantType) MarshalJSON() ([]byte, error) {
	return json.Marshal(self.String())
}

// Decodes the HYDRANTTYPE codes H1 to H4.
func HydrantTypeFromCode(code string) HydrantType {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "H1":
		return MUNICIPAL
	case "H2":
		return DRY
	case "H3":
		return PRESSURIZED
	case "H4":
		return DRAFTING
	default:
		return UNKNOWN_TYPE
	}
}

//**********************************************************
// hydrant
//**********************************************************

type Hydrant struct {
	ID       string
	Point    orb.Point
	FlowRate Optional[int]
	Type     HydrantType
}

func (self Hydrant) Class() FlowClass {
	return ClassifyFlow(self.FlowRate)
}
