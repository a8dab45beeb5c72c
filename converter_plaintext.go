package markitdown

import (
	"fmt"
	"io"
	"strings"
)

// PlainTextConverter handles plain text and text-like formats (markdown,
// JSON, RTF-as-text). It is the converter of last resort for anything with a
// text/* MIME type.
type PlainTextConverter struct{}

func (c *PlainTextConverter) Accepts(info SourceInfo) bool {
	switch info.Extension {
	case ".txt", ".text", ".md", ".markdown", ".json", ".jsonl", ".rtf":
		return true
	}
	mime := BaseMIME(info.MIMEType)
	switch {
	case strings.HasPrefix(mime, "text/"):
		return true
	case mime == "application/json", mime == "application/rtf":
		return true
	}
	return false
}

func (c *PlainTextConverter) Convert(r io.ReadSeeker, info SourceInfo) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return &Result{Markdown: decodeText(data, info.Charset)}, nil
}
