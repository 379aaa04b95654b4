package extract

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// PlainText handles .txt and .md uploads.
type PlainText struct{}

var _ Extractor = &PlainText{}

func (p *PlainText) Supports(ext string) bool {
	switch ext {
	case ".txt", ".md", ".text", ".markdown":
		return true
	}
	return false
}

// Extract strips a leading BOM, validates the payload as UTF-8 and
// normalizes CRLF line endings.
func (p *PlainText) Extract(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return "", fmt.Errorf("document is not valid UTF-8 text")
	}
	return strings.ReplaceAll(string(data), "\r\n", "\n"), nil
}
