// Package models contains data structures for the application's domain models.
package models

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Dimension is one political axis of the profile space.
type Dimension int

// The dimension set is fixed at compile time. Order matters: it is the
// index order of Profile.
const (
	DimensionLeftRight Dimension = iota
	DimensionLiberalConservative
	DimensionZionistAnti

	// DimensionCount is the number of political axes.
	DimensionCount = 3
)

var dimensionNames = [DimensionCount]string{
	DimensionLeftRight:           "left_right",
	DimensionLiberalConservative: "liberal_conservative",
	DimensionZionistAnti:         "zionist_anti",
}

// Dimensions returns every dimension in index order.
func Dimensions() []Dimension {
	return []Dimension{DimensionLeftRight, DimensionLiberalConservative, DimensionZionistAnti}
}

func (d Dimension) String() string {
	if d < 0 || int(d) >= DimensionCount {
		return fmt.Sprintf("dimension(%d)", int(d))
	}
	return dimensionNames[d]
}

// ParseDimension maps a wire name such as "left_right" to its Dimension.
func ParseDimension(name string) (Dimension, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, n := range dimensionNames {
		if n == key {
			return Dimension(i), nil
		}
	}
	return 0, fmt.Errorf("unknown dimension %q", name)
}

// ProfileMin and ProfileMax bound every profile value.
const (
	ProfileMin = -1.0
	ProfileMax = 1.0
)

// Profile is a position in the political space, one value per Dimension.
// Values are kept inside [ProfileMin, ProfileMax]; Set clamps.
type Profile [DimensionCount]float64

// NewProfile builds a profile from values in dimension order, clamping each.
func NewProfile(leftRight, liberalConservative, zionistAnti float64) Profile {
	var p Profile
	p.Set(DimensionLeftRight, leftRight)
	p.Set(DimensionLiberalConservative, liberalConservative)
	p.Set(DimensionZionistAnti, zionistAnti)
	return p
}

// UniformProfile returns a profile with the same value on every axis.
func UniformProfile(v float64) Profile {
	return NewProfile(v, v, v)
}

// Get returns the value on dimension d.
func (p Profile) Get(d Dimension) float64 {
	return p[d]
}

// Set stores v on dimension d, clamped to the profile bounds.
func (p *Profile) Set(d Dimension, v float64) {
	p[d] = Clamp(v)
}

// Clamped returns a copy with every value bounded.
func (p Profile) Clamped() Profile {
	for i := range p {
		p[i] = Clamp(p[i])
	}
	return p
}

// LeftRight returns the left/right value.
func (p Profile) LeftRight() float64 { return p[DimensionLeftRight] }

// LiberalConservative returns the liberal/conservative value.
func (p Profile) LiberalConservative() float64 { return p[DimensionLiberalConservative] }

// ZionistAnti returns the zionist/anti value.
func (p Profile) ZionistAnti() float64 { return p[DimensionZionistAnti] }

// Validate reports whether every value is finite and inside the bounds.
func (p Profile) Validate() error {
	for _, d := range Dimensions() {
		v := p[d]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be a finite number", d)
		}
		if v < ProfileMin || v > ProfileMax {
			return fmt.Errorf("%s must be between %.0f and %.0f, got %v", d, ProfileMin, ProfileMax, v)
		}
	}
	return nil
}

// Clamp bounds v to [ProfileMin, ProfileMax]. NaN collapses to 0.
func Clamp(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < ProfileMin:
		return ProfileMin
	case v > ProfileMax:
		return ProfileMax
	}
	return v
}

// MarshalJSON encodes the profile as an object keyed by dimension name.
func (p Profile) MarshalJSON() ([]byte, error) {
	out := make(map[string]float64, DimensionCount)
	for _, d := range Dimensions() {
		out[d.String()] = p[d]
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes an object keyed by dimension name. Unknown names and
// out of range values are rejected; missing dimensions default to 0.
func (p *Profile) UnmarshalJSON(data []byte) error {
	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("profile must be an object of dimension values: %w", err)
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var decoded Profile
	for _, k := range keys {
		d, err := ParseDimension(k)
		if err != nil {
			return err
		}
		decoded[d] = raw[k]
	}
	if err := decoded.Validate(); err != nil {
		return err
	}
	*p = decoded
	return nil
}
