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
	"strconv"
	"strings"

	"github.com/nicholasgasior/markitdown-server/internal/ooxml"
)

// DocxConverter converts DOCX documents to markdown by walking the
// WordprocessingML body directly: paragraph styles become headings, numbered
// paragraphs become list items, tables become markdown tables, and
// hyperlinks are resolved through the document relationships.
type DocxConverter struct{}

func (c *DocxConverter) Accepts(info SourceInfo) bool {
	if info.Extension == ".docx" {
		return true
	}
	return BaseMIME(info.MIMEType) == "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

func (c *DocxConverter) Convert(r io.ReadSeeker, info SourceInfo) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read DOCX: %w", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open DOCX: %w", err)
	}

	rels, err := ooxml.Relationships(zr, ooxml.RelsPath("word/document.xml"))
	if err != nil {
		return nil, err
	}
	styles := docxStyleNames(zr)

	body, err := ooxml.ReadFile(zr, "word/document.xml")
	if err != nil {
		return nil, fmt.Errorf("read document.xml: %w", err)
	}

	w := &docxWalker{rels: rels, styles: styles}
	md, err := w.walk(body)
	if err != nil {
		return nil, fmt.Errorf("parse document.xml: %w", err)
	}

	return &Result{Markdown: md, Title: firstHeading(md)}, nil
}

// docxStyleNames parses word/styles.xml into a styleId -> style name map.
// Missing styles.xml is not an error; heading detection then relies on the
// style IDs alone.
func docxStyleNames(zr *zip.Reader) map[string]string {
	styles := make(map[string]string)
	data, err := ooxml.ReadFile(zr, "word/styles.xml")
	if err != nil {
		return styles
	}

	dec := xml.NewDecoder(bytes.NewReader(data))
	var styleID string
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "style":
			styleID = attrValue(se, "styleId")
		case "name":
			if styleID != "" {
				styles[styleID] = attrValue(se, "val")
			}
		}
	}
	return styles
}

type docxWalker struct {
	rels   map[string]ooxml.Relationship
	styles map[string]string
}

func (w *docxWalker) walk(body []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	var blocks []string

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "tbl":
			rows, err := w.table(dec)
			if err != nil {
				return "", err
			}
			if len(rows) > 0 {
				blocks = append(blocks, markdownTable(rows))
			}
		case "p":
			text, err := w.paragraph(dec)
			if err != nil {
				return "", err
			}
			if strings.TrimSpace(text) != "" {
				blocks = append(blocks, text)
			}
		}
	}

	return strings.Join(blocks, "\n\n"), nil
}

// paragraph consumes one w:p element and renders it.
func (w *docxWalker) paragraph(dec *xml.Decoder) (string, error) {
	var (
		b       strings.Builder
		styleID string
		isList  bool
		listLvl int
	)

	for {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "pStyle":
				styleID = attrValue(t, "val")
			case "numPr":
				isList = true
			case "ilvl":
				listLvl, _ = strconv.Atoi(attrValue(t, "val"))
			case "hyperlink":
				relID := attrValue(t, "id")
				text, err := w.runs(dec, t.Name)
				if err != nil {
					return "", err
				}
				if rel, ok := w.rels[relID]; ok && rel.Target != "" {
					fmt.Fprintf(&b, "[%s](%s)", text, rel.Target)
				} else {
					b.WriteString(text)
				}
			case "r":
				text, err := w.run(dec, t.Name)
				if err != nil {
					return "", err
				}
				b.WriteString(text)
			}
		case xml.EndElement:
			if t.Name.Local == "p" {
				return renderDocxParagraph(b.String(), w.headingLevel(styleID), isList, listLvl), nil
			}
		}
	}
}

// runs consumes runs nested under a container element (e.g. w:hyperlink)
// until its end tag.
func (w *docxWalker) runs(dec *xml.Decoder, container xml.Name) (string, error) {
	var b strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "r" {
				text, err := w.run(dec, t.Name)
				if err != nil {
					return "", err
				}
				b.WriteString(text)
			}
		case xml.EndElement:
			if t.Name == container {
				return b.String(), nil
			}
		}
	}
}

// run consumes one w:r element and renders its text with bold/italic markers.
func (w *docxWalker) run(dec *xml.Decoder, name xml.Name) (string, error) {
	var (
		b            strings.Builder
		bold, italic bool
		inText       bool
	)

	for {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "b":
				bold = onOff(attrValue(t, "val"))
			case "i":
				italic = onOff(attrValue(t, "val"))
			case "t":
				inText = true
			case "tab":
				b.WriteString("\t")
			case "br":
				b.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		case xml.EndElement:
			switch {
			case t.Name.Local == "t":
				inText = false
			case t.Name == name:
				return emphasize(b.String(), bold, italic), nil
			}
		}
	}
}

// table consumes one w:tbl element into a row/cell grid. Cell paragraphs are
// joined with spaces; nested tables are flattened into their cell.
func (w *docxWalker) table(dec *xml.Decoder) ([][]string, error) {
	var rows [][]string
	var row []string
	var cell []string
	depth := 1

	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				depth++
			case "tr":
				row = nil
			case "tc":
				cell = nil
			case "p":
				text, err := w.paragraph(dec)
				if err != nil {
					return nil, err
				}
				if strings.TrimSpace(text) != "" {
					cell = append(cell, strings.TrimSpace(text))
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "tbl":
				depth--
			case "tc":
				row = append(row, strings.Join(cell, " "))
			case "tr":
				rows = append(rows, row)
			}
		}
	}
	return rows, nil
}

// headingLevel maps a paragraph style to a markdown heading level, 0 meaning
// no heading. Both the style ID (Heading1) and the style name ("heading 1")
// are consulted.
func (w *docxWalker) headingLevel(styleID string) int {
	if styleID == "" {
		return 0
	}
	candidates := []string{styleID, w.styles[styleID]}
	for _, s := range candidates {
		s = strings.ToLower(strings.ReplaceAll(s, " ", ""))
		if s == "title" {
			return 1
		}
		if rest, ok := strings.CutPrefix(s, "heading"); ok {
			if lvl, err := strconv.Atoi(rest); err == nil && lvl >= 1 && lvl <= 6 {
				return lvl
			}
		}
	}
	return 0
}

func renderDocxParagraph(text string, heading int, isList bool, listLvl int) string {
	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return ""
	case heading > 0:
		return strings.Repeat("#", heading) + " " + text
	case isList:
		return strings.Repeat("  ", listLvl) + "- " + text
	}
	return text
}

// emphasize wraps text in markdown bold/italic markers, keeping surrounding
// whitespace outside the markers.
func emphasize(text string, bold, italic bool) string {
	if !bold && !italic {
		return text
	}
	afterLead := strings.TrimLeft(text, " \t\n")
	lead := text[:len(text)-len(afterLead)]
	core := strings.TrimRight(afterLead, " \t\n")
	trail := afterLead[len(core):]
	if core == "" {
		return text
	}
	marker := ""
	if bold {
		marker += "**"
	}
	if italic {
		marker += "*"
	}
	return lead + marker + core + marker + trail
}

// onOff interprets an OOXML boolean attribute, where absence means "on".
func onOff(val string) bool {
	switch strings.ToLower(val) {
	case "false", "0", "off":
		return false
	}
	return true
}

// attrValue returns the value of the named attribute, ignoring namespaces.
func attrValue(se xml.StartElement, name string) string {
	for _, attr := range se.Attr {
		if attr.Name.Local == name {
			return attr.Value
		}
	}
	return ""
}
