package util

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// PathPattern generates relative object paths for uploaded files from a
// template. Supported placeholders:
//   - {year}, {month}, {day} - upload date, zero padded
//   - {name}     - the object name without extension
//   - {ext}      - extension with leading dot (may be empty)
//   - {filename} - {name}{ext}
//
// "{year}/{month}/{filename}" yields "2026/01/sunset-1a2b3c4d.png".
type PathPattern struct {
	pattern string
}

func NewPathPattern(pattern string) *PathPattern {
	return &PathPattern{pattern: pattern}
}

// DefaultUploadPattern organizes uploads by date.
func DefaultUploadPattern() *PathPattern {
	return NewPathPattern("{year}/{month}/{filename}")
}

func (p *PathPattern) String() string {
	return p.pattern
}

// Generate expands the pattern. The returned path always uses forward slashes.
func (p *PathPattern) Generate(name string, at time.Time, ext string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("object name cannot be empty")
	}

	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	if at.IsZero() {
		at = time.Now()
	}

	r := strings.NewReplacer(
		"{year}", fmt.Sprintf("%04d", at.Year()),
		"{month}", fmt.Sprintf("%02d", at.Month()),
		"{day}", fmt.Sprintf("%02d", at.Day()),
		"{filename}", name+ext,
		"{name}", name,
		"{ext}", ext,
	)

	out := path.Clean(r.Replace(p.pattern))
	if out == "." || strings.HasPrefix(out, "../") || out == ".." || path.IsAbs(out) {
		return "", fmt.Errorf("pattern %q produced an invalid path %q", p.pattern, out)
	}

	return out, nil
}
