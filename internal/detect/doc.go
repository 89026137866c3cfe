// Package detect wraps external subject detectors behind a small, fault
// tolerant interface.
//
// The CLI type shells out to a face-detector binary and parses its per-line
// output. The Adapter enforces a per-call timeout and converts every failure
// mode into "no detection for this frame", which is the contract the crop
// tracker relies on: detector trouble degrades framing, it never fails a
// clip.
package detect
