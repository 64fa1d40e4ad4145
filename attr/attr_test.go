package attr

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoadTypeFromString(t *testing.T) {
	assert.Equal(t, RESIDENTIAL, RoadTypeFromString("residential"))
	assert.Equal(t, SERVICE, RoadTypeFromString("service"))
	assert.Equal(t, OTHER, RoadTypeFromString("raceway"))
	assert.Equal(t, "trunk_link", TRUNK_LINK.String())
}

func TestRoadTypeJSON(t *testing.T) {
	data, err := json.Marshal(PRIMARY)
	require.NoError(t, err)
	assert.Equal(t, `"primary"`, string(data))

	var typ RoadType
	require.NoError(t, json.Unmarshal([]byte(`"tertiary"`), &typ))
	assert.Equal(t, TERTIARY, typ)
	assert.Error(t, json.Unmarshal([]byte(`"footway"`), &typ))
}

func TestTravelTime(t *testing.T) {
	// 1 km at 36 km/h takes 100 s
	assert.InDelta(t, 100, TravelTime(1000, 36), 1e-9)
	assert.True(t, math.IsInf(TravelTime(1000, 0), 1))
}
