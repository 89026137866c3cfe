package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"clipper/internal/clip"
	"clipper/internal/services"
)

var titleCaser = cases.Title(language.English)

// ArtifactName derives the output filename for a clip request. The mapping
// is deterministic: the same request always names the same file.
func ArtifactName(request clip.Request) string {
	base := slugTitle(request.Title)
	if base == "" {
		base = "clip"
	}
	return fmt.Sprintf("%s-%s-%04d.mp4", base, request.Aspect, int(request.Start.Seconds()))
}

// slugTitle reduces a clip title to a filename-safe CamelCase word sequence.
func slugTitle(title string) string {
	cased := titleCaser.String(strings.ToLower(strings.TrimSpace(title)))
	var sb strings.Builder
	for _, r := range cased {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	const maxLen = 48
	s := sb.String()
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	return s
}

// Registry tracks claimed artifact paths across concurrent jobs so two clips
// can never silently write the same file. Claims are first-come; a second
// claim or a pre-existing file on disk surfaces as a naming collision.
type Registry struct {
	mu      sync.Mutex
	claimed map[string]int64
}

// NewRegistry returns an empty artifact registry.
func NewRegistry() *Registry {
	return &Registry{claimed: make(map[string]int64)}
}

// Claim reserves path for the given job. It fails with ErrNamingCollision
// when another job holds the path or a file already exists there.
func (r *Registry) Claim(path string, jobID int64) error {
	path = filepath.Clean(path)

	r.mu.Lock()
	defer r.mu.Unlock()

	if owner, ok := r.claimed[path]; ok && owner != jobID {
		return services.Wrap(services.ErrNamingCollision, "render", "claim",
			fmt.Sprintf("%s already claimed by job %d", path, owner), nil)
	}
	if _, err := os.Stat(path); err == nil {
		return services.Wrap(services.ErrNamingCollision, "render", "claim",
			fmt.Sprintf("%s already exists", path), nil)
	}
	r.claimed[path] = jobID
	return nil
}

// Release abandons a claim, typically after a failed render.
func (r *Registry) Release(path string, jobID int64) {
	path = filepath.Clean(path)

	r.mu.Lock()
	defer r.mu.Unlock()
	if owner, ok := r.claimed[path]; ok && owner == jobID {
		delete(r.claimed, path)
	}
}
