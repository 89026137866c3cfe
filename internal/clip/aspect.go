package clip

import (
	"fmt"
	"strings"
)

// Aspect identifies the output aspect ratio of a clip.
type Aspect string

const (
	AspectVertical   Aspect = "vertical"   // 9:16 for Shorts, Reels, TikTok
	AspectSquare     Aspect = "square"     // 1:1
	AspectHorizontal Aspect = "horizontal" // 16:9
)

var allAspects = []Aspect{AspectVertical, AspectSquare, AspectHorizontal}

// ParseAspect converts a string into a known Aspect.
func ParseAspect(value string) (Aspect, error) {
	normalized := Aspect(strings.ToLower(strings.TrimSpace(value)))
	for _, aspect := range allAspects {
		if aspect == normalized {
			return aspect, nil
		}
	}
	return "", fmt.Errorf("unknown aspect %q", value)
}

// Ratio returns the width:height ratio components.
func (a Aspect) Ratio() (int, int) {
	switch a {
	case AspectSquare:
		return 1, 1
	case AspectHorizontal:
		return 16, 9
	default:
		return 9, 16
	}
}

// Resolution returns the output pixel dimensions for the aspect.
func (a Aspect) Resolution() (int, int) {
	switch a {
	case AspectSquare:
		return 1080, 1080
	case AspectHorizontal:
		return 1920, 1080
	default:
		return 1080, 1920
	}
}

// Aspects returns the ordered list of known aspects.
func Aspects() []Aspect {
	cp := make([]Aspect, len(allAspects))
	copy(cp, allAspects)
	return cp
}
