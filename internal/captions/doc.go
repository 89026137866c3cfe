// Package captions turns a source video's subtitle track into styled,
// clip-local caption cues. It parses SRT input, retimes cues into a clip's
// window with boundary clipping, maps caption presets to concrete styles,
// and renders the result as an ASS subtitle document for the encoder.
package captions
