// Package segments reads and writes the segments.json interchange format:
// the list of candidate clips an analysis pass found, with their timestamps,
// titles, and scores. It converts entries into validated clip requests and
// reports malformed ones instead of dropping them.
package segments
