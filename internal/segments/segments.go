package segments

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"time"

	"clipper/internal/clip"
)

// Entry is one candidate clip from a segments document. Timestamps use the
// SRT HH:MM:SS,mmm form.
type Entry struct {
	ID             int      `json:"id"`
	TimestampStart string   `json:"timestamp_start"`
	TimestampEnd   string   `json:"timestamp_end"`
	SuggestedTitle string   `json:"suggested_title"`
	HookText       string   `json:"hook_text,omitempty"`
	Reason         string   `json:"reason,omitempty"`
	ViralScore     float64  `json:"viral_score"`
	Platforms      []string `json:"platforms,omitempty"`
	// Aspect and CaptionPreset override the configured defaults when set.
	Aspect        string `json:"aspect,omitempty"`
	CaptionPreset string `json:"caption_preset,omitempty"`
	ChunkIndex    int    `json:"chunk_index,omitempty"`
}

// Metadata summarizes a whole analysis run.
type Metadata struct {
	TotalClipsFound   int     `json:"total_clips_found"`
	AverageViralScore float64 `json:"average_viral_score"`
	VideoAnalysis     string  `json:"video_analysis,omitempty"`
}

// Document is the segments.json payload: candidate clips plus analysis
// metadata.
type Document struct {
	Clips    []Entry  `json:"clips"`
	Metadata Metadata `json:"metadata"`
}

// Defaults fills in the per-clip options an entry omits.
type Defaults struct {
	Aspect clip.Aspect
	Preset clip.Preset
	Limits clip.Limits
}

// Rejection records an entry that failed validation, so malformed clips are
// surfaced instead of silently dropped.
type Rejection struct {
	Entry  Entry
	Reason error
}

// ReadFile loads and decodes a segments document from disk.
func ReadFile(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open segments file: %w", err)
	}
	defer file.Close()

	doc, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes a segments document from r.
func Parse(r io.Reader) (*Document, error) {
	var doc Document
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode segments: %w", err)
	}
	return &doc, nil
}

// WriteFile saves the document as indented JSON.
func (d *Document) WriteFile(path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encode segments: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write segments file: %w", err)
	}
	return nil
}

// Requests converts the document's entries into validated clip requests.
// Entries that fail parsing or validation come back as rejections; valid
// entries keep the document's original order.
func (d *Document) Requests(defaults Defaults) ([]clip.Request, []Rejection) {
	requests := make([]clip.Request, 0, len(d.Clips))
	var rejected []Rejection

	for _, entry := range d.Clips {
		request, err := entry.request(defaults)
		if err != nil {
			rejected = append(rejected, Rejection{Entry: entry, Reason: err})
			continue
		}
		requests = append(requests, request)
	}
	return requests, rejected
}

func (e Entry) request(defaults Defaults) (clip.Request, error) {
	start, err := parseTimestamp(e.TimestampStart)
	if err != nil {
		return clip.Request{}, fmt.Errorf("timestamp_start: %w", err)
	}
	end, err := parseTimestamp(e.TimestampEnd)
	if err != nil {
		return clip.Request{}, fmt.Errorf("timestamp_end: %w", err)
	}

	aspect := defaults.Aspect
	if e.Aspect != "" {
		if aspect, err = clip.ParseAspect(e.Aspect); err != nil {
			return clip.Request{}, err
		}
	}
	preset := defaults.Preset
	if e.CaptionPreset != "" {
		if preset, err = clip.ParsePreset(e.CaptionPreset); err != nil {
			return clip.Request{}, err
		}
	}

	request := clip.Request{
		Start:  start,
		End:    end,
		Title:  e.SuggestedTitle,
		Score:  e.ViralScore,
		Aspect: aspect,
		Preset: preset,
	}
	if err := request.Validate(defaults.Limits); err != nil {
		return clip.Request{}, err
	}
	return request, nil
}

var timestampPattern = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2})[,.](\d{3})$`)

// parseTimestamp reads the SRT HH:MM:SS,mmm form.
func parseTimestamp(value string) (time.Duration, error) {
	matches := timestampPattern.FindStringSubmatch(value)
	if matches == nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	h, _ := strconv.Atoi(matches[1])
	m, _ := strconv.Atoi(matches[2])
	s, _ := strconv.Atoi(matches[3])
	ms, _ := strconv.Atoi(matches[4])
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(ms)*time.Millisecond, nil
}
