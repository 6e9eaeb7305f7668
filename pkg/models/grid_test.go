package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceGridZeroValueJSON(t *testing.T) {
	data, err := json.Marshal(DeviceGrid{})
	require.NoError(t, err)
	assert.JSONEq(t, `[[null],[null,null],[null,null,null,null]]`, string(data))
}

func TestDeviceGridWithDoesNotTouchOriginal(t *testing.T) {
	var g DeviceGrid
	next, err := g.With(LayoutQuad, 3, "12")
	require.NoError(t, err)

	id, _ := next.Slot(LayoutQuad, 3)
	assert.Equal(t, "12", id)
	id, _ = g.Slot(LayoutQuad, 3)
	assert.Empty(t, id)

	_, err = g.With(LayoutTwin, 2, "1")
	assert.Error(t, err)
	_, err = g.With(Layout(7), 0, "1")
	assert.Error(t, err)
}

func TestDeviceGridUnmarshalAcceptsNumericIDs(t *testing.T) {
	var g DeviceGrid
	require.NoError(t, json.Unmarshal([]byte(`[[3],[null,"7"],[1,null,null,2]]`), &g))

	assert.Equal(t, [1]string{"3"}, g.Single)
	assert.Equal(t, [2]string{"", "7"}, g.Twin)
	assert.Equal(t, [4]string{"1", "", "", "2"}, g.Quad)

	data, err := json.Marshal(g)
	require.NoError(t, err)
	assert.JSONEq(t, `[["3"],[null,"7"],["1",null,null,"2"]]`, string(data))
}

func TestDeviceGridUnmarshalRejectsBadShape(t *testing.T) {
	cases := map[string]string{
		"two tiers":    `[[null],[null,null]]`,
		"short quad":   `[[null],[null,null],[null,null,null]]`,
		"object slot":  `[[{}],[null,null],[null,null,null,null]]`,
		"not an array": `{"single":1}`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			g := DeviceGrid{Single: [1]string{"keep"}}
			assert.Error(t, json.Unmarshal([]byte(in), &g))
			assert.Equal(t, "keep", g.Single[0])
		})
	}
}

func TestParseLayout(t *testing.T) {
	l, err := ParseLayout("4")
	require.NoError(t, err)
	assert.Equal(t, LayoutQuad, l)
	assert.Equal(t, 4, l.Slots())

	_, err = ParseLayout("3")
	assert.Error(t, err)
}
