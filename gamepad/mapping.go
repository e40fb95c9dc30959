package gamepad

import (
	"math"
	"sort"
)

// AxisRole tells a backend how to interpret one raw axis index.
type AxisRole uint8

const (
	// RoleStick feeds an AxisChannel.
	RoleStick AxisRole = iota
	// RoleTrigger turns an analog trigger into Trigger press/release events.
	RoleTrigger
	// RoleHatX turns a hat axis into DPadLeft/DPadRight.
	RoleHatX
	// RoleHatY turns a hat axis into DPadUp/DPadDown.
	RoleHatY
)

// Trigger thresholds, on the normalized 0..1 trigger value.
const (
	TriggerPressThreshold   = 0.5
	TriggerReleaseThreshold = 0.3
	hatThreshold            = 0.5
)

// AxisMapping defines how a raw axis index maps to a logical input.
type AxisMapping struct {
	Index   int
	Role    AxisRole
	Channel AxisChannel
	// Invert flips the raw sign before normalization. Joydev reports
	// vertical stick axes down-positive; mappings invert them so up is positive.
	Invert  bool
	Trigger Button
	// Raw range of a trigger axis. Some devices rest at -32767, others at 0.
	RawMin int
	RawMax int
}

// ButtonMapping defines how a raw button index maps to a logical button.
type ButtonMapping struct {
	Index  int
	Target Button
}

// Mapping holds the complete index mapping for one device layout.
type Mapping struct {
	Name    string
	Axes    []AxisMapping
	Buttons []ButtonMapping
}

// ButtonFor returns the logical button for a raw button index.
func (m *Mapping) ButtonFor(index int) (Button, bool) {
	for _, bm := range m.Buttons {
		if bm.Index == index {
			return bm.Target, true
		}
	}
	return ButtonUnknown, false
}

// NormalizeAxis converts a raw stick value (-32767..32767) to -1.0..1.0.
func NormalizeAxis(raw int) float64 {
	v := float64(raw) / math.MaxInt16
	return math.Max(-1, math.Min(1, v))
}

// NormalizeTrigger converts a raw trigger value to 0.0..1.0.
func NormalizeTrigger(raw, rawMin, rawMax int) float64 {
	if rawMax == rawMin {
		return 0
	}
	v := float64(raw-rawMin) / float64(rawMax-rawMin)
	return math.Max(0, math.Min(1, v))
}

// Linux xpad/joydev layout, also used by most XInput-style pads.
var xpadMapping = &Mapping{
	Name: "xpad",
	Axes: []AxisMapping{
		{Index: 0, Role: RoleStick, Channel: LeftX},
		{Index: 1, Role: RoleStick, Channel: LeftY, Invert: true},
		{Index: 2, Role: RoleTrigger, Trigger: LeftTrigger2, RawMin: -32767, RawMax: 32767},
		{Index: 3, Role: RoleStick, Channel: RightX},
		{Index: 4, Role: RoleStick, Channel: RightY, Invert: true},
		{Index: 5, Role: RoleTrigger, Trigger: RightTrigger2, RawMin: -32767, RawMax: 32767},
		{Index: 6, Role: RoleHatX},
		{Index: 7, Role: RoleHatY},
	},
	Buttons: []ButtonMapping{
		{Index: 0, Target: South},
		{Index: 1, Target: East},
		{Index: 2, Target: West},
		{Index: 3, Target: North},
		{Index: 4, Target: LeftTrigger},
		{Index: 5, Target: RightTrigger},
		{Index: 6, Target: Select},
		{Index: 7, Target: Start},
		{Index: 8, Target: Mode},
		{Index: 9, Target: LeftThumb},
		{Index: 10, Target: RightThumb},
	},
}

// PlayStation pads through hid-sony/hid-playstation.
var playstationMapping = &Mapping{
	Name: "playstation",
	Axes: []AxisMapping{
		{Index: 0, Role: RoleStick, Channel: LeftX},
		{Index: 1, Role: RoleStick, Channel: LeftY, Invert: true},
		{Index: 2, Role: RoleTrigger, Trigger: LeftTrigger2, RawMin: -32767, RawMax: 32767},
		{Index: 3, Role: RoleStick, Channel: RightX},
		{Index: 4, Role: RoleStick, Channel: RightY, Invert: true},
		{Index: 5, Role: RoleTrigger, Trigger: RightTrigger2, RawMin: -32767, RawMax: 32767},
		{Index: 6, Role: RoleHatX},
		{Index: 7, Role: RoleHatY},
	},
	Buttons: []ButtonMapping{
		{Index: 0, Target: South},  // Cross
		{Index: 1, Target: East},   // Circle
		{Index: 2, Target: North},  // Triangle
		{Index: 3, Target: West},   // Square
		{Index: 4, Target: LeftTrigger},
		{Index: 5, Target: RightTrigger},
		{Index: 6, Target: LeftTrigger2},
		{Index: 7, Target: RightTrigger2},
		{Index: 8, Target: Select}, // Share / Create
		{Index: 9, Target: Start},  // Options
		{Index: 10, Target: Mode},  // PS button
		{Index: 11, Target: LeftThumb},
		{Index: 12, Target: RightThumb},
	},
}

// Generic DirectInput-style layout: sticks on 0-3, triggers on 4-5.
var genericMapping = &Mapping{
	Name: "generic",
	Axes: []AxisMapping{
		{Index: 0, Role: RoleStick, Channel: LeftX},
		{Index: 1, Role: RoleStick, Channel: LeftY, Invert: true},
		{Index: 2, Role: RoleStick, Channel: RightX},
		{Index: 3, Role: RoleStick, Channel: RightY, Invert: true},
		{Index: 4, Role: RoleTrigger, Trigger: LeftTrigger2, RawMin: -32767, RawMax: 32767},
		{Index: 5, Role: RoleTrigger, Trigger: RightTrigger2, RawMin: -32767, RawMax: 32767},
		{Index: 6, Role: RoleHatX},
		{Index: 7, Role: RoleHatY},
	},
	Buttons: []ButtonMapping{
		{Index: 0, Target: South},
		{Index: 1, Target: East},
		{Index: 2, Target: West},
		{Index: 3, Target: North},
		{Index: 4, Target: LeftTrigger},
		{Index: 5, Target: RightTrigger},
		{Index: 6, Target: Select},
		{Index: 7, Target: Start},
		{Index: 8, Target: LeftThumb},
		{Index: 9, Target: RightThumb},
		{Index: 10, Target: Mode},
	},
}

var mappings = map[string]*Mapping{
	xpadMapping.Name:        xpadMapping,
	playstationMapping.Name: playstationMapping,
	genericMapping.Name:     genericMapping,
}

// DefaultMapping is used when no layout is configured.
const DefaultMapping = "xpad"

// LookupMapping returns a built-in mapping by name.
func LookupMapping(name string) (*Mapping, bool) {
	m, ok := mappings[name]
	return m, ok
}

// MappingNames lists the built-in mapping names, sorted.
func MappingNames() []string {
	names := make([]string, 0, len(mappings))
	for n := range mappings {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
