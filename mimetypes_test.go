package markitdown

import (
	"strings"
	"testing"
)

func TestBaseMIME(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"text/plain; charset=utf-8", "text/plain"},
		{"Text/HTML", "text/html"},
		{" application/pdf ", "application/pdf"},
		{"application/pdf", "application/pdf"},
	}
	for _, tt := range tests {
		if got := BaseMIME(tt.in); got != tt.want {
			t.Errorf("BaseMIME(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtensionForMIME(t *testing.T) {
	tests := []struct {
		mime    string
		wantExt string
		wantOK  bool
	}{
		{"application/pdf", ".pdf", true},
		{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", ".docx", true},
		{"text/html; charset=iso-8859-1", ".html", true},
		{"application/x-ipynb+json", ".ipynb", true},
		// Images have no converter and must be reported as unsupported.
		{"image/png", "", false},
		{"image/jpeg", "", false},
		{"application/octet-stream", "", false},
	}
	for _, tt := range tests {
		ext, ok := ExtensionForMIME(tt.mime)
		if ext != tt.wantExt || ok != tt.wantOK {
			t.Errorf("ExtensionForMIME(%q) = (%q, %v), want (%q, %v)",
				tt.mime, ext, ok, tt.wantExt, tt.wantOK)
		}
	}
}

func TestDetectMIME(t *testing.T) {
	t.Run("pdf magic bytes", func(t *testing.T) {
		got := DetectMIME(strings.NewReader("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n"), "")
		if got != "application/pdf" {
			t.Errorf("DetectMIME = %q, want application/pdf", got)
		}
	})
	t.Run("extension fallback", func(t *testing.T) {
		got := DetectMIME(strings.NewReader("\x00\x01\x02\x03"), ".ipynb")
		if got != "application/x-ipynb+json" {
			t.Errorf("DetectMIME = %q, want application/x-ipynb+json", got)
		}
	})
}
