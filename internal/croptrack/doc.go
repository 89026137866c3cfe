// Package croptrack turns sparse subject detections into a smooth crop
// trajectory for one clip.
//
// The Builder reduces time-ordered detection samples into keyframes: it picks
// a subject box per sample, bridges detection dropouts (hold, then frame
// center fallback), and smooths the chosen centers with an exponential moving
// average. The resulting Track answers crop-rectangle queries for any time in
// the clip; rectangles always match the target aspect ratio exactly and never
// leave the source frame.
//
// Building is deterministic so tracks are reproducible in tests: same
// samples, same params, same keyframes.
package croptrack
