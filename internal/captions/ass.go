package captions

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"
)

const (
	// maxCueDuration caps how long one caption stays on screen after
	// max-word splitting.
	maxCueDuration = 2500 * time.Millisecond
	// cueGap is the pause inserted between consecutive captions so
	// transitions read cleanly.
	cueGap = 50 * time.Millisecond
	// minCueDuration is the floor applied when overlap trimming would
	// otherwise make a cue vanish.
	minCueDuration = 100 * time.Millisecond
)

// Renderer writes clip-local caption cues as an ASS subtitle document using
// one resolved style.
type Renderer struct {
	style    Style
	playResX int
	playResY int
}

// NewRenderer builds a Renderer for the given style and output resolution.
func NewRenderer(style Style, playResX, playResY int) (*Renderer, error) {
	if playResX <= 0 || playResY <= 0 {
		return nil, fmt.Errorf("play resolution %dx%d must be positive", playResX, playResY)
	}
	return &Renderer{style: style, playResX: playResX, playResY: playResY}, nil
}

// WriteFile renders the cues to an ASS file at path.
func (r *Renderer) WriteFile(path string, cues []Cue) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create subtitle file: %w", err)
	}
	defer file.Close()

	if err := r.Render(file, cues); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Render writes the full ASS document for the cues to w. Cues are split to
// the style's word limit, trimmed so they never overlap, and cleaned of
// transcript artifacts before formatting.
func (r *Renderer) Render(w io.Writer, cues []Cue) error {
	if err := r.writeHeader(w); err != nil {
		return err
	}

	prepared := trimOverlaps(splitCues(cues, r.style.MaxWords))
	for _, cue := range prepared {
		text := CleanText(cue.Text)
		if text == "" {
			continue
		}
		line := fmt.Sprintf("Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
			assTime(cue.Start), assTime(cue.End), text)
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) writeHeader(w io.Writer) error {
	s := r.style
	header := fmt.Sprintf(`[Script Info]
Title: Auto-Generated Captions
ScriptType: v4.00+
WrapStyle: 2
PlayResX: %d
PlayResY: %d
ScaledBorderAndShadow: yes

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Default,%s,%d,%s,&H000000FF,&H00000000,&H80000000,-1,0,0,0,100,100,0,0,%d,%d,%d,%d,40,40,%d,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
`,
		r.playResX, r.playResY,
		s.Font, s.Size, s.Colour,
		s.borderStyle(), s.Outline, s.Shadow, s.alignment(), s.marginV())
	_, err := io.WriteString(w, header)
	return err
}

// splitCues breaks cues longer than maxWords into equal-duration chunks and
// caps every cue at maxCueDuration. A zero maxWords only applies the cap.
func splitCues(cues []Cue, maxWords int) []Cue {
	result := make([]Cue, 0, len(cues))
	for _, cue := range cues {
		words := strings.Fields(cue.Text)
		if maxWords <= 0 || len(words) <= maxWords {
			cue.End = cue.Start + min(cue.Duration(), maxCueDuration)
			result = append(result, cue)
			continue
		}

		chunks := (len(words) + maxWords - 1) / maxWords
		chunkDuration := min(cue.Duration()/time.Duration(chunks), maxCueDuration)
		for i := 0; i < chunks; i++ {
			chunk := words[i*maxWords : min((i+1)*maxWords, len(words))]
			start := cue.Start + time.Duration(i)*chunkDuration
			result = append(result, Cue{
				Start: start,
				End:   start + chunkDuration,
				Text:  strings.Join(chunk, " "),
			})
		}
	}
	return result
}

// trimOverlaps shortens each cue so it ends before the next one starts,
// leaving a small gap. Cues keep at least minCueDuration on screen, but
// never extend past the next cue's start.
func trimOverlaps(cues []Cue) []Cue {
	for i := 0; i+1 < len(cues); i++ {
		limit := cues[i+1].Start - cueGap
		if cues[i].End <= limit {
			continue
		}
		end := cues[i].Start + max(limit-cues[i].Start, minCueDuration)
		cues[i].End = min(end, cues[i+1].Start)
	}
	return cues
}

var (
	bracketedArtifacts = regexp.MustCompile(`\[.*?\]`)
	sentenceStarts     = regexp.MustCompile(`(^|[.!?]\s+)([a-z])`)
	standaloneI        = regexp.MustCompile(`\bi\b`)
	multiSpace         = regexp.MustCompile(`\s{2,}`)
)

// CleanText normalizes auto-transcript text for display: newlines collapse
// to spaces, bracketed artifacts like [Music] are removed, sentence starts
// and standalone "i" are capitalized.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	text = bracketedArtifacts.ReplaceAllString(text, "")
	text = multiSpace.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	text = sentenceStarts.ReplaceAllStringFunc(text, strings.ToUpper)
	if first := text[0]; first >= 'a' && first <= 'z' {
		text = strings.ToUpper(text[:1]) + text[1:]
	}
	return standaloneI.ReplaceAllString(text, "I")
}

// assTime formats a duration as the ASS H:MM:SS.CC timestamp.
func assTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := d / time.Millisecond
	hours := total / 3_600_000
	minutes := total % 3_600_000 / 60_000
	seconds := total % 60_000 / 1000
	centis := total % 1000 / 10
	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, seconds, centis)
}
