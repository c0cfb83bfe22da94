package config

import (
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	mediaTypePattern  = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)
)

// MaxMediaTypeLength bounds a media type tag, matching the media_type column.
const MaxMediaTypeLength = 10

func ValidateAbsPath(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s != "" && path.IsAbs(s)
}

func ValidateLocalpath(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s != "" && filepath.IsLocal(s)
}

func ValidateIdentifier(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}

	return identifierPattern.MatchString(s)
}

// ValidatePathPattern accepts relative, traversal-free templates such as
// "{year}/{month}/{filename}". Empty patterns are valid and mean "default".
func ValidatePathPattern(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}

	if strings.ContainsRune(s, 0) {
		return false
	}

	if path.IsAbs(s) || filepath.IsAbs(s) || filepath.VolumeName(s) != "" {
		return false
	}

	// Windows drive letters are rejected on every platform.
	if len(s) >= 2 && s[1] == ':' {
		return false
	}

	for _, seg := range strings.Split(filepath.ToSlash(s), "/") {
		if seg == ".." {
			return false
		}
	}

	return true
}

// ValidateMediaType accepts short lowercase tags like "image" or "video".
func ValidateMediaType(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return len(s) <= MaxMediaTypeLength && mediaTypePattern.MatchString(s)
}
