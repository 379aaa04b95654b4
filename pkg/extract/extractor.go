package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedType is returned when no extractor accepts the file extension.
var ErrUnsupportedType = errors.New("unsupported document type")

// Extractor converts an uploaded file into plain text.
type Extractor interface {
	Supports(ext string) bool
	Extract(data []byte) (string, error)
}

var extractors = []Extractor{
	&PlainText{},
	&Lexical{},
}

// ForFilename returns the extractor registered for the file's extension.
func ForFilename(filename string) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range extractors {
		if e.Supports(ext) {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
}

// FromUpload resolves the extractor for the filename and runs it.
func FromUpload(filename string, data []byte) (string, error) {
	e, err := ForFilename(filename)
	if err != nil {
		return "", err
	}
	return e.Extract(data)
}
