// Package source reads the raw disassembly listings the extractors consume.
//
// Listings are read whole. UTF-8 input is validated rather than repaired:
// a listing with broken bytes is a fatal error, never a partial table.
// Other encodings (for example "windows-1252" dumps from older tools) are
// decoded to UTF-8 through golang.org/x/text.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// DefaultEncoding is used when no encoding is configured
const DefaultEncoding = "utf-8"

// ErrMalformed is returned when a listing is not valid in its declared encoding
var ErrMalformed = errors.New("malformed input encoding")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadFile loads a listing and returns it as UTF-8 text with "\n" line endings
func ReadFile(path, encoding string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	text, err := Decode(data, encoding)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", path, err)
	}
	return text, nil
}

// Decode converts raw bytes in the named encoding to normalized UTF-8 text
func Decode(data []byte, encoding string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(encoding))
	if name == "" {
		name = DefaultEncoding
	}

	if name == "utf-8" || name == "utf8" {
		data = bytes.TrimPrefix(data, utf8BOM)
		if !utf8.Valid(data) {
			return "", ErrMalformed
		}
		return normalizeNewlines(string(data)), nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return "", fmt.Errorf("unknown encoding %q: %w", encoding, err)
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return normalizeNewlines(string(out)), nil
}

// ValidEncoding reports whether name is an encoding Decode understands
func ValidEncoding(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "utf-8" || name == "utf8" {
		return true
	}
	_, err := htmlindex.Get(name)
	return err == nil
}

// Lines splits normalized text into lines without a trailing empty element
func Lines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

func normalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
