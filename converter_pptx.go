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
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/nicholasgasior/markitdown-server/internal/ooxml"
)

var reSlidePart = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// PptxConverter converts PPTX presentations to markdown, one section per
// slide in deck order. Title placeholders become headings; shape text and
// tables follow in shape order.
type PptxConverter struct{}

func (c *PptxConverter) Accepts(info SourceInfo) bool {
	if info.Extension == ".pptx" {
		return true
	}
	return BaseMIME(info.MIMEType) == "application/vnd.openxmlformats-officedocument.presentationml.presentation"
}

func (c *PptxConverter) Convert(r io.ReadSeeker, info SourceInfo) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read PPTX: %w", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open PPTX: %w", err)
	}

	type slidePart struct {
		num  int
		name string
	}
	var slides []slidePart
	for _, f := range zr.File {
		if m := reSlidePart.FindStringSubmatch(f.Name); m != nil {
			n, _ := strconv.Atoi(m[1])
			slides = append(slides, slidePart{num: n, name: f.Name})
		}
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	var b strings.Builder
	var title string

	for _, slide := range slides {
		part, err := ooxml.ReadFile(zr, slide.name)
		if err != nil {
			continue
		}
		text, slideTitle := slideToMarkdown(part)
		if title == "" {
			title = slideTitle
		}
		if strings.TrimSpace(text) != "" {
			fmt.Fprintf(&b, "<!-- Slide number: %d -->\n\n%s\n\n", slide.num, text)
		}
	}

	return &Result{Markdown: b.String(), Title: title}, nil
}

// slideToMarkdown renders one slide part. The returned title is the text of
// the slide's title placeholder, if any.
func slideToMarkdown(part []byte) (md, title string) {
	dec := xml.NewDecoder(bytes.NewReader(part))

	var (
		blocks     []string
		para       strings.Builder
		inText     bool
		shapeTitle bool // current shape is a title placeholder
	)

	flushParagraph := func() {
		text := strings.TrimSpace(para.String())
		para.Reset()
		if text == "" {
			return
		}
		if shapeTitle && title == "" {
			title = text
			blocks = append(blocks, "# "+text)
			return
		}
		blocks = append(blocks, text)
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "sp":
				shapeTitle = false
			case "ph":
				phType := attrValue(t, "type")
				if phType == "title" || phType == "ctrTitle" {
					shapeTitle = true
				}
			case "t":
				inText = true
			case "tbl":
				if rows := pptxTable(dec); len(rows) > 0 {
					blocks = append(blocks, markdownTable(rows))
				}
			case "br":
				para.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				flushParagraph()
			case "sp":
				shapeTitle = false
			}
		}
	}
	flushParagraph()

	return strings.Join(blocks, "\n\n"), title
}

// pptxTable consumes an a:tbl element into a row/cell grid.
func pptxTable(dec *xml.Decoder) [][]string {
	var (
		rows   [][]string
		row    []string
		cell   strings.Builder
		inText bool
	)

	for {
		tok, err := dec.Token()
		if err != nil {
			return rows
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tr":
				row = nil
			case "tc":
				cell.Reset()
			case "t":
				inText = true
			}
		case xml.CharData:
			if inText {
				cell.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "tc":
				row = append(row, strings.TrimSpace(cell.String()))
			case "tr":
				rows = append(rows, row)
			case "tbl":
				return rows
			}
		}
	}
}
