package analyze

import (
	"context"
	"fmt"
	"time"

	"clipper/internal/captions"
	"clipper/internal/segments"
)

const (
	// defaultChunkDuration bounds how much transcript one completion sees.
	defaultChunkDuration = 20 * time.Minute
	// chunkOverlap is re-sent at each chunk boundary so a segment spanning
	// the cut is still visible in one piece.
	chunkOverlap = 5 * time.Second
)

// Chunk splits cues into windows of at most maxDuration, overlapping
// consecutive windows by overlap so boundary-spanning moments survive.
func Chunk(cues []captions.Cue, maxDuration, overlap time.Duration) [][]captions.Cue {
	if len(cues) == 0 || maxDuration <= 0 {
		return nil
	}

	var chunks [][]captions.Cue
	i := 0
	for i < len(cues) {
		chunkStart := cues[i].Start
		j := i
		for j < len(cues) && cues[j].Start-chunkStart < maxDuration {
			j++
		}
		chunks = append(chunks, cues[i:j])
		if j >= len(cues) {
			break
		}

		// Step back over the overlap, but always make progress.
		next := j
		for next > i+1 && cues[next-1].Start >= cues[j].Start-overlap {
			next--
		}
		if next <= i {
			next = j
		}
		i = next
	}
	return chunks
}

// AnalyzeCues runs the transcript through the model chunk by chunk and
// merges the results into one document with re-numbered clips.
func (c *Client) AnalyzeCues(ctx context.Context, cues []captions.Cue) (*segments.Document, error) {
	chunks := Chunk(cues, defaultChunkDuration, chunkOverlap)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("transcript has no cues to analyze")
	}

	merged := &segments.Document{}
	var scoreTotal float64
	for index, chunk := range chunks {
		doc, err := c.Analyze(ctx, captions.FormatSRT(chunk))
		if err != nil {
			return nil, fmt.Errorf("analyze chunk %d/%d: %w", index+1, len(chunks), err)
		}
		for _, entry := range doc.Clips {
			entry.ID = len(merged.Clips) + 1
			entry.ChunkIndex = index + 1
			merged.Clips = append(merged.Clips, entry)
			scoreTotal += entry.ViralScore
		}
		if doc.Metadata.VideoAnalysis != "" && merged.Metadata.VideoAnalysis == "" {
			merged.Metadata.VideoAnalysis = doc.Metadata.VideoAnalysis
		}
	}

	merged.Metadata.TotalClipsFound = len(merged.Clips)
	if len(merged.Clips) > 0 {
		merged.Metadata.AverageViralScore = scoreTotal / float64(len(merged.Clips))
	}
	return merged, nil
}
