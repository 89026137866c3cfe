// Package pipeline wires the media, detection, crop tracking, caption, and
// render components into the per-job stages the scheduler drives. It owns
// each job's work directory and the hand-off of intermediate state between
// stages.
package pipeline
