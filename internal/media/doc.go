// Package media wraps the external media tooling the pipeline shells out
// to: ffprobe inspection, yt-dlp section downloads, and ffmpeg still-frame
// extraction. Every call is context-bounded and returns typed errors the
// scheduler can classify for retry decisions.
package media
