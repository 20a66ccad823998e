// Package loader turns files into plain text ready for chunking.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ErrNotText is returned for content that is not valid UTF-8 text.
var ErrNotText = errors.New("not a text document")

// Format is a supported document format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
)

var markdownExts = map[string]bool{
	".md":       true,
	".markdown": true,
	".mdx":      true,
}

// DetectFormat picks a format from the file extension.
func DetectFormat(name string) Format {
	if markdownExts[strings.ToLower(filepath.Ext(name))] {
		return FormatMarkdown
	}
	return FormatText
}

// LoadFile reads path and converts it to plain text.
func LoadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	text, err := Convert(DetectFormat(path), data)
	if err != nil {
		return "", fmt.Errorf("loading %s: %w", path, err)
	}
	return text, nil
}

// Convert turns raw document bytes of the given format into plain text.
// A UTF-8 byte order mark is dropped and CRLF line endings become LF.
func Convert(format Format, data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", ErrNotText
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))

	switch format {
	case FormatMarkdown:
		return markdownToText(data), nil
	case FormatText, "":
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported format %q", format)
	}
}
