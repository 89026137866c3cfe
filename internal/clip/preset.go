package clip

import (
	"fmt"
	"strings"
)

// Preset names a caption style from the closed preset set.
type Preset string

const (
	PresetMinimal  Preset = "minimal"
	PresetBold     Preset = "bold"
	PresetColorful Preset = "colorful"
	PresetSubtle   Preset = "subtle"
	PresetNone     Preset = "none"
)

var allPresets = []Preset{PresetMinimal, PresetBold, PresetColorful, PresetSubtle, PresetNone}

// ParsePreset converts a string into a known Preset.
func ParsePreset(value string) (Preset, error) {
	normalized := Preset(strings.ToLower(strings.TrimSpace(value)))
	for _, preset := range allPresets {
		if preset == normalized {
			return preset, nil
		}
	}
	return "", fmt.Errorf("unknown caption preset %q", value)
}

// Presets returns the ordered list of known caption presets.
func Presets() []Preset {
	cp := make([]Preset, len(allPresets))
	copy(cp, allPresets)
	return cp
}
