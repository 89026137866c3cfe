package captions

import "clipper/internal/clip"

// Position names the vertical caption placement within the frame.
type Position string

const (
	PositionBottom Position = "bottom"
	PositionLower  Position = "lower"
	PositionCenter Position = "center"
	PositionTop    Position = "top"
)

// Style carries the resolved visual attributes for one caption preset.
// Colours use the ASS &HBBGGRR& encoding.
type Style struct {
	Font     string
	Size     int
	Colour   string
	Outline  int
	Shadow   int
	Position Position
	// MarginV overrides the position's default vertical margin when non-zero.
	MarginV int
	// MaxWords caps the words shown per cue; zero disables splitting.
	MaxWords int
	// Boxed draws an opaque background box behind the text.
	Boxed bool
}

// StyleFor maps a caption preset to its style attributes. The mapping is
// pure: the same preset always yields the same style. The second return is
// false for PresetNone and unknown presets, meaning no captions are drawn.
func StyleFor(preset clip.Preset) (Style, bool) {
	switch preset {
	case clip.PresetMinimal:
		return Style{
			Font:     "Arial",
			Size:     24,
			Colour:   "&HFFFFFF&",
			Outline:  2,
			Position: PositionBottom,
		}, true
	case clip.PresetBold:
		return Style{
			Font:     "Arial Black",
			Size:     42,
			Colour:   "&HFFFFFF&",
			Outline:  3,
			Position: PositionLower,
			MarginV:  280,
			MaxWords: 4,
		}, true
	case clip.PresetColorful:
		return Style{
			Font:     "Arial-Bold",
			Size:     36,
			Colour:   "&H00FFFF&", // yellow
			Outline:  3,
			Position: PositionCenter,
		}, true
	case clip.PresetSubtle:
		return Style{
			Font:     "Arial",
			Size:     20,
			Colour:   "&HFFFFFF&",
			Outline:  1,
			Position: PositionBottom,
			Boxed:    true,
		}, true
	default:
		return Style{}, false
	}
}

// alignment returns the ASS numpad alignment code for the style's position.
func (s Style) alignment() int {
	switch s.Position {
	case PositionCenter:
		return 5
	case PositionTop:
		return 8
	default:
		return 2
	}
}

// marginV resolves the vertical margin, falling back to the position default.
func (s Style) marginV() int {
	if s.MarginV > 0 {
		return s.MarginV
	}
	if s.alignment() == 2 {
		return 120
	}
	return 10
}

// borderStyle returns 3 (opaque box) for boxed styles, 1 otherwise.
func (s Style) borderStyle() int {
	if s.Boxed {
		return 3
	}
	return 1
}
