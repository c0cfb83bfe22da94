package util

import (
	"fmt"
	"strings"
)

// NormalizeBaseURL ensures the base URL ends with a slash.
func NormalizeBaseURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimRight(trimmed, "/")
	return trimmed + "/"
}

// DeriveTableName builds a table name from an optional prefix. A nil prefix
// means the default "gallery" prefix; an empty prefix yields the bare name.
func DeriveTableName(prefix *string, table string) string {
	p := "gallery"
	if prefix != nil {
		p = *prefix
	}

	if p == "" {
		return table
	}

	return fmt.Sprintf("%s_%s", p, table)
}
