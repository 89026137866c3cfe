// Package analyze asks a language model to pick viral-worthy time ranges
// out of a video transcript. It chunks long transcripts, sends each chunk to
// an OpenAI-compatible chat completions endpoint, and merges the returned
// candidates into one segments document.
package analyze
