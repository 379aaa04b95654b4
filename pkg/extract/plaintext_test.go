package extract

import (
	"errors"
	"testing"
)

func TestFromUpload(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		want     string
		wantErr  error
	}{
		{
			name:     "plain text file",
			filename: "notes.txt",
			data:     []byte("hello world"),
			want:     "hello world",
		},
		{
			name:     "markdown file",
			filename: "README.md",
			data:     []byte("# Title"),
			want:     "# Title",
		},
		{
			name:     "extension is case insensitive",
			filename: "REPORT.TXT",
			data:     []byte("shouting"),
			want:     "shouting",
		},
		{
			name:     "unsupported extension",
			filename: "paper.pdf",
			data:     []byte("%PDF-1.4"),
			wantErr:  ErrUnsupportedType,
		},
		{
			name:     "no extension",
			filename: "Makefile",
			data:     []byte("all:"),
			wantErr:  ErrUnsupportedType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromUpload(tt.filename, tt.data)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("FromUpload() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("FromUpload() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("FromUpload() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPlainTextExtract(t *testing.T) {
	p := &PlainText{}

	tests := []struct {
		name    string
		data    []byte
		want    string
		wantErr bool
	}{
		{
			name: "passthrough",
			data: []byte("plain body"),
			want: "plain body",
		},
		{
			name: "strips byte order mark",
			data: append([]byte{0xEF, 0xBB, 0xBF}, []byte("content")...),
			want: "content",
		},
		{
			name: "normalizes windows line endings",
			data: []byte("line one\r\nline two\r\n"),
			want: "line one\nline two\n",
		},
		{
			name:    "rejects invalid utf-8",
			data:    []byte{0xFF, 0xFE, 0x00},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Extract(tt.data)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Extract() expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Extract() = %q, want %q", got, tt.want)
			}
		})
	}
}
