// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package markitdown

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PdfConverter extracts text from PDF documents.
type PdfConverter struct{}

func (c *PdfConverter) Accepts(info SourceInfo) bool {
	if info.Extension == ".pdf" {
		return true
	}
	return BaseMIME(info.MIMEType) == "application/pdf"
}

func (c *PdfConverter) Convert(r io.ReadSeeker, info SourceInfo) (*Result, error) {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("seek PDF: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek PDF: %w", err)
	}

	ra, ok := r.(io.ReaderAt)
	if !ok {
		data, readErr := io.ReadAll(r)
		if readErr != nil {
			return nil, fmt.Errorf("read PDF: %w", readErr)
		}
		ra = bytes.NewReader(data)
		size = int64(len(data))
	}

	doc, err := pdf.NewReader(ra, size)
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= doc.NumPage(); i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		text := strings.TrimSpace(pageText(page))
		if text == "" {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n\n")
	}

	out := b.String()
	if strings.TrimSpace(out) == "" {
		out = "[No readable text content found in PDF]"
	}
	return &Result{Markdown: out}, nil
}

// pageText extracts the text of one page, preferring the library's row
// grouping and falling back to raw positioned fragments.
func pageText(page pdf.Page) string {
	if rows, err := page.GetTextByRow(); err == nil && len(rows) > 0 {
		var b strings.Builder
		for _, row := range rows {
			line := joinRowWords(row)
			if line != "" {
				b.WriteString(line)
				b.WriteString("\n")
			}
		}
		if strings.TrimSpace(b.String()) != "" {
			return b.String()
		}
	}

	content := page.Content()
	if len(content.Text) == 0 {
		return ""
	}

	// Sort fragments top-to-bottom, then left-to-right, and join with a
	// space whenever the horizontal gap suggests a word boundary.
	frags := make([]pdf.Text, 0, len(content.Text))
	for _, t := range content.Text {
		if strings.TrimSpace(t.S) != "" {
			frags = append(frags, t)
		}
	}
	sort.SliceStable(frags, func(i, j int) bool {
		if frags[i].Y != frags[j].Y {
			return frags[i].Y > frags[j].Y
		}
		return frags[i].X < frags[j].X
	})

	var b strings.Builder
	var prev *pdf.Text
	for i := range frags {
		t := &frags[i]
		if prev != nil {
			switch {
			case prev.Y != t.Y:
				b.WriteString("\n")
			case t.X-prev.X > prev.FontSize*float64(len(prev.S))*0.7:
				b.WriteString(" ")
			}
		}
		b.WriteString(t.S)
		prev = t
	}
	return b.String()
}

// joinRowWords joins the word fragments of one row. Empty fragments between
// non-empty ones mark word boundaries.
func joinRowWords(row *pdf.Row) string {
	var b strings.Builder
	pendingSpace := false
	for _, word := range row.Content {
		if word.S == "" {
			pendingSpace = true
			continue
		}
		if b.Len() > 0 && pendingSpace && !strings.HasSuffix(b.String(), " ") {
			b.WriteString(" ")
		}
		b.WriteString(word.S)
		pendingSpace = false
	}
	return strings.TrimSpace(b.String())
}
