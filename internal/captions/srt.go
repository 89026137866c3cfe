package captions

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// srtTimecodes matches "00:02:16,612 --> 00:02:19,376".
var srtTimecodes = regexp.MustCompile(`(\d{2}):(\d{2}):(\d{2})[,.](\d{3})\s*-->\s*(\d{2}):(\d{2}):(\d{2})[,.](\d{3})`)

// ReadSRT parses an SRT subtitle file into absolute cues.
func ReadSRT(path string) ([]Cue, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open subtitle file: %w", err)
	}
	defer file.Close()

	cues, err := ParseSRT(file)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cues, nil
}

// ParseSRT reads SRT-formatted cues from r. Blocks are separated by blank
// lines: an index line, a timecode line, then one or more text lines.
func ParseSRT(r io.Reader) ([]Cue, error) {
	var (
		cues    []Cue
		current Cue
		text    []string
		state   = stateIndex
	)

	flush := func() {
		if len(text) > 0 {
			current.Text = strings.Join(text, "\n")
			cues = append(cues, current)
		}
		current = Cue{}
		text = nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\ufeff"))

		switch state {
		case stateIndex:
			if line == "" {
				continue
			}
			index, err := strconv.Atoi(line)
			if err != nil {
				// Tolerate stray non-index lines between blocks.
				continue
			}
			current.Index = index
			state = stateTimecodes

		case stateTimecodes:
			if line == "" {
				continue
			}
			start, end, err := parseTimecodes(line)
			if err != nil {
				return nil, err
			}
			current.Start = start
			current.End = end
			state = stateText

		case stateText:
			if line == "" {
				flush()
				state = stateIndex
				continue
			}
			text = append(text, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read subtitles: %w", err)
	}
	if state == stateText {
		flush()
	}
	return cues, nil
}

// FormatSRT renders cues back into SRT text, renumbering from one.
func FormatSRT(cues []Cue) string {
	var sb strings.Builder
	for i, cue := range cues {
		fmt.Fprintf(&sb, "%d\n%s --> %s\n%s\n\n",
			i+1, srtTimestamp(cue.Start), srtTimestamp(cue.End), cue.Text)
	}
	return sb.String()
}

func srtTimestamp(d time.Duration) string {
	millis := d.Milliseconds()
	return fmt.Sprintf("%02d:%02d:%02d,%03d",
		millis/3_600_000, millis%3_600_000/60_000, millis%60_000/1000, millis%1000)
}

type parseState int

const (
	stateIndex parseState = iota
	stateTimecodes
	stateText
)

func parseTimecodes(line string) (time.Duration, time.Duration, error) {
	matches := srtTimecodes.FindStringSubmatch(line)
	if len(matches) != 9 {
		return 0, 0, fmt.Errorf("invalid timecode line %q", line)
	}
	start := srtDuration(matches[1], matches[2], matches[3], matches[4])
	end := srtDuration(matches[5], matches[6], matches[7], matches[8])
	return start, end, nil
}

func srtDuration(hours, minutes, seconds, millis string) time.Duration {
	h, _ := strconv.Atoi(hours)
	m, _ := strconv.Atoi(minutes)
	s, _ := strconv.Atoi(seconds)
	ms, _ := strconv.Atoi(millis)
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(ms)*time.Millisecond
}
