package persistence

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Backend selects where documents are written
type Backend string

const (
	BackendLocal         Backend = "local"
	BackendCloudDocument Backend = "cloud_document"
)

// ParseBackend validates a backend name; "" is returned unchanged for later resolution
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "local", "markdown", "obsidian":
		return BackendLocal, nil
	case "cloud_document", "cloud", "gdocs", "google_docs":
		return BackendCloudDocument, nil
	default:
		return "", fmt.Errorf("unknown persistence backend %q (use local or cloud_document)", s)
	}
}

func (b Backend) String() string {
	return string(b)
}

// maxNameBytes keeps file names below common filesystem limits once an extension is added
const maxNameBytes = 200

// SanitizeTitle keeps letters, digits, spaces, '-' and '_', collapses whitespace and
// trims the result. An empty result falls back to fallback.
func SanitizeTitle(title, fallback string) string {
	var sb strings.Builder
	lastSpace := false

	for _, r := range title {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_':
			sb.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				sb.WriteRune(' ')
				lastSpace = true
			}
		}
	}

	name := strings.TrimSpace(sb.String())
	if len(name) > maxNameBytes {
		name = truncateBytes(name, maxNameBytes)
	}
	if name == "" {
		return fallback
	}
	return name
}

// truncateBytes cuts s to at most n bytes without splitting a rune
func truncateBytes(s string, n int) string {
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return strings.TrimSpace(s[:n])
}
