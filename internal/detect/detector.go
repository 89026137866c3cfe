package detect

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

var commandContext = exec.CommandContext

// Box is one detected subject bounding box in source-frame pixels.
type Box struct {
	X          float64
	Y          float64
	W          float64
	H          float64
	Confidence float64
}

// CenterX returns the horizontal center of the box.
func (b Box) CenterX() float64 { return b.X + b.W/2 }

// CenterY returns the vertical center of the box.
func (b Box) CenterY() float64 { return b.Y + b.H/2 }

// Area returns the box area in square pixels.
func (b Box) Area() float64 { return b.W * b.H }

// Sample pairs a clip-local sample time with the boxes observed there. An
// empty box list records a sample where nothing was detected.
type Sample struct {
	Time  time.Duration
	Boxes []Box
}

// Detector finds subject bounding boxes in a single frame image.
type Detector interface {
	Detect(ctx context.Context, framePath string) ([]Box, error)
}

// Option configures the CLI detector.
type Option func(*CLI)

// WithBinary overrides the default detector binary.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps an external face-detector command. The command receives a frame
// image path and prints one detection per line, either as a JSON object
// {"x":..,"y":..,"w":..,"h":..,"confidence":..} or as whitespace-separated
// "x y w h [confidence]" fields. A missing confidence is treated as 1.0.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI detector using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "facedetect"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Detect runs the detector binary against one frame image.
func (c *CLI) Detect(ctx context.Context, framePath string) ([]Box, error) {
	if strings.TrimSpace(framePath) == "" {
		return nil, errors.New("frame path required")
	}

	cmd := commandContext(ctx, c.binary, framePath) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start detector: %w", err)
	}

	var boxes []Box
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		box, ok := parseDetectionLine(line)
		if !ok {
			continue
		}
		boxes = append(boxes, box)
	}
	if err := scanner.Err(); err != nil {
		_ = cmd.Wait()
		return nil, fmt.Errorf("read detector output: %w", err)
	}

	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("detector failed: %w", err)
	}
	return boxes, nil
}

func parseDetectionLine(line string) (Box, bool) {
	if strings.HasPrefix(line, "{") {
		var payload struct {
			X          float64 `json:"x"`
			Y          float64 `json:"y"`
			W          float64 `json:"w"`
			H          float64 `json:"h"`
			Confidence float64 `json:"confidence"`
		}
		if err := json.Unmarshal([]byte(line), &payload); err != nil {
			return Box{}, false
		}
		box := Box{X: payload.X, Y: payload.Y, W: payload.W, H: payload.H, Confidence: payload.Confidence}
		if box.Confidence == 0 {
			box.Confidence = 1
		}
		return box, box.W > 0 && box.H > 0
	}

	fields := strings.Fields(line)
	if len(fields) < 4 {
		return Box{}, false
	}
	values := make([]float64, 0, 5)
	for _, field := range fields[:min(len(fields), 5)] {
		value, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return Box{}, false
		}
		values = append(values, value)
	}
	box := Box{X: values[0], Y: values[1], W: values[2], H: values[3], Confidence: 1}
	if len(values) == 5 {
		box.Confidence = values[4]
	}
	return box, box.W > 0 && box.H > 0
}

var _ Detector = (*CLI)(nil)
