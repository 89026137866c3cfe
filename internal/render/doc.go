// Package render composes a clip's media section, crop trajectory, and
// caption cues into one render order for the external encoder, and owns the
// deterministic artifact naming that keeps concurrent jobs from writing the
// same file.
package render
