// Package extract provides bounded best-effort text extraction from source
// files. Only plain-text formats are handled here; format-specific parsers
// (PDF, word processors, images) are external collaborators behind the same
// contract.
package extract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// textExtensions lists the formats read directly as text.
var textExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".csv":  true,
	".log":  true,
	".json": true,
	".yaml": true,
	".yml":  true,
	".xml":  true,
	".html": true,
}

// printableThreshold is the minimum ratio of printable runes for content to
// be treated as text rather than binary.
const printableThreshold = 0.7

// Supported reports whether ext (lowercase, with dot) can be extracted
// locally.
func Supported(ext string) bool {
	return textExtensions[ext]
}

// Text returns up to maxLen runes of text from the file at path. For
// unsupported formats it returns an empty string and no error: missing
// content is a recoverable degradation, not a failure.
func Text(path string, maxLen int) (string, error) {
	if maxLen <= 0 {
		return "", nil
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !Supported(ext) {
		return "", nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for extraction: %w", err)
	}
	defer f.Close()

	// Read a little more than needed so truncation lands on a rune boundary.
	buf := make([]byte, maxLen*4)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("read for extraction: %w", err)
	}
	content := string(buf[:n])

	if !looksPrintable(content) {
		return "", nil
	}

	runes := []rune(content)
	if len(runes) > maxLen {
		runes = runes[:maxLen]
	}
	return string(runes), nil
}

func looksPrintable(s string) bool {
	if s == "" {
		return false
	}
	printable := 0
	total := 0
	for _, r := range s {
		total++
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			printable++
		}
	}
	return float64(printable)/float64(total) >= printableThreshold
}
