// Package clip defines the request model shared across the pipeline: what to
// cut, at which aspect ratio, and with which caption preset.
//
// Requests are validated once, before scheduling, and never mutated
// afterwards. Aspects and caption presets are closed enumerations; parsing is
// the only way to construct them from external input.
package clip
