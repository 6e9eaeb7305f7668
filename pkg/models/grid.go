package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Layout selects one tier of the camera grid.
type Layout int

const (
	LayoutSingle Layout = iota
	LayoutTwin
	LayoutQuad
)

// Slots is the number of positions in the layout.
func (l Layout) Slots() int {
	switch l {
	case LayoutSingle:
		return 1
	case LayoutTwin:
		return 2
	case LayoutQuad:
		return 4
	}
	return 0
}

func (l Layout) String() string {
	switch l {
	case LayoutSingle:
		return "1"
	case LayoutTwin:
		return "2"
	case LayoutQuad:
		return "4"
	}
	return fmt.Sprintf("Layout(%d)", int(l))
}

// ParseLayout accepts the number of views ("1", "2", "4").
func ParseLayout(s string) (Layout, error) {
	switch strings.TrimSpace(s) {
	case "1":
		return LayoutSingle, nil
	case "2":
		return LayoutTwin, nil
	case "4":
		return LayoutQuad, nil
	}
	return 0, fmt.Errorf("unknown layout %q (want 1, 2 or 4)", s)
}

// DeviceGrid holds the device ids shown in each layout. An empty string marks
// an unassigned slot. Being made of arrays, the shape cannot drift and a
// DeviceGrid copies by value.
type DeviceGrid struct {
	Single [1]string
	Twin   [2]string
	Quad   [4]string
}

func (g *DeviceGrid) tier(l Layout) ([]string, error) {
	switch l {
	case LayoutSingle:
		return g.Single[:], nil
	case LayoutTwin:
		return g.Twin[:], nil
	case LayoutQuad:
		return g.Quad[:], nil
	}
	return nil, fmt.Errorf("unknown layout %d", int(l))
}

// Slot returns the device id at index of the layout.
func (g DeviceGrid) Slot(l Layout, index int) (string, error) {
	t, err := g.tier(l)
	if err != nil {
		return "", err
	}
	if index < 0 || index >= len(t) {
		return "", fmt.Errorf("slot %d out of range for layout %s", index, l)
	}
	return t[index], nil
}

// With returns a copy of the grid with the slot set to deviceID ("" clears it).
func (g DeviceGrid) With(l Layout, index int, deviceID string) (DeviceGrid, error) {
	t, err := g.tier(l)
	if err != nil {
		return g, err
	}
	if index < 0 || index >= len(t) {
		return g, fmt.Errorf("slot %d out of range for layout %s", index, l)
	}
	t[index] = deviceID
	return g, nil
}

// Tiers returns the grid as three slices of lengths 1, 2 and 4.
func (g DeviceGrid) Tiers() [][]string {
	return [][]string{
		append([]string(nil), g.Single[:]...),
		append([]string(nil), g.Twin[:]...),
		append([]string(nil), g.Quad[:]...),
	}
}

// MarshalJSON writes [[id|null],[..,..],[..,..,..,..]].
func (g DeviceGrid) MarshalJSON() ([]byte, error) {
	out := make([][]*string, 3)
	for i, t := range g.Tiers() {
		out[i] = make([]*string, len(t))
		for j := range t {
			if t[j] != "" {
				id := t[j]
				out[i][j] = &id
			}
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts string or numeric ids and null for empty slots.
func (g *DeviceGrid) UnmarshalJSON(data []byte) error {
	var raw [][]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("device grid: %w", err)
	}
	if len(raw) != 3 {
		return fmt.Errorf("device grid: want 3 tiers, got %d", len(raw))
	}

	var next DeviceGrid
	for i, tier := range raw {
		l := Layout(i)
		if len(tier) != l.Slots() {
			return fmt.Errorf("device grid: tier %s has %d slots", l, len(tier))
		}
		for j, v := range tier {
			id, err := decodeDeviceRef(v)
			if err != nil {
				return fmt.Errorf("device grid: tier %s slot %d: %w", l, j, err)
			}
			next, _ = next.With(l, j, id)
		}
	}
	*g = next
	return nil
}

func decodeDeviceRef(v json.RawMessage) (string, error) {
	v = bytes.TrimSpace(v)
	if bytes.Equal(v, []byte("null")) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err != nil {
		return "", fmt.Errorf("unexpected device reference %s", v)
	}
	return n.String(), nil
}
