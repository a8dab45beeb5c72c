package markitdown

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"golang.org/x/text/encoding/japanese"
)

// zipEntry is one file of an in-memory zip fixture.
type zipEntry struct {
	name string
	data string
}

func zipFixture(t *testing.T, entries []zipEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", e.name, err)
		}
		if _, err := w.Write([]byte(e.data)); err != nil {
			t.Fatalf("write zip entry %s: %v", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

const docxDocumentXML = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Quarterly Report</w:t></w:r></w:p>
    <w:p><w:r><w:rPr><w:b/></w:rPr><w:t>Revenue</w:t></w:r><w:r><w:t xml:space="preserve"> grew steadily.</w:t></w:r></w:p>
    <w:p><w:pPr><w:numPr><w:ilvl w:val="0"/><w:numId w:val="1"/></w:numPr></w:pPr><w:r><w:t>first item</w:t></w:r></w:p>
    <w:tbl>
      <w:tr><w:tc><w:p><w:r><w:t>Name</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>Value</w:t></w:r></w:p></w:tc></w:tr>
      <w:tr><w:tc><w:p><w:r><w:t>alpha</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>1</w:t></w:r></w:p></w:tc></w:tr>
    </w:tbl>
  </w:body>
</w:document>`

const pptxSlideXML = `<?xml version="1.0" encoding="UTF-8"?>
<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"
       xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">
  <p:cSld><p:spTree>
    <p:sp>
      <p:nvSpPr><p:nvPr><p:ph type="ctrTitle"/></p:nvPr></p:nvSpPr>
      <p:txBody><a:p><a:r><a:t>Launch Plan</a:t></a:r></a:p></p:txBody>
    </p:sp>
    <p:sp>
      <p:txBody><a:p><a:r><a:t>Ship in October</a:t></a:r></a:p></p:txBody>
    </p:sp>
  </p:spTree></p:cSld>
</p:sld>`

const epubContainerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles><rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/></rootfiles>
</container>`

const epubPackageXML = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>The Test Book</dc:title>
    <dc:creator>Jane Roe</dc:creator>
    <dc:language>en</dc:language>
  </metadata>
  <manifest>
    <item id="ch1" href="chapter1.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine><itemref idref="ch1"/></spine>
</package>`

const epubChapterXHTML = `<html><head><title>Chapter 1</title></head>
<body><h1>Chapter 1</h1><p>It began quietly.</p></body></html>`

const notebookJSON = `{
  "metadata": {"kernelspec": {"language": "python"}},
  "cells": [
    {"cell_type": "markdown", "source": ["# Test Notebook\n", "\n", "## Code Cell Below"]},
    {"cell_type": "code", "source": ["print(\"markitdown\")"],
     "outputs": [{"output_type": "stream", "text": ["markitdown\n"]}]}
  ]
}`

const rssFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
  <title>Engineering Notes</title>
  <description>Posts about infrastructure</description>
  <item>
    <title>Deploy Week</title>
    <description>&lt;p&gt;We shipped &lt;b&gt;twelve&lt;/b&gt; services.&lt;/p&gt;</description>
  </item>
</channel></rss>`

func TestConvertBytes(t *testing.T) {
	e := New()

	tests := []struct {
		name           string
		info           SourceInfo
		data           []byte
		mustInclude    []string
		mustNotInclude []string
	}{
		{
			name: "csv",
			info: SourceInfo{Extension: ".csv", MIMEType: "text/csv"},
			data: []byte("name,age\nalice,30\nbob,25\n"),
			mustInclude: []string{
				"| name | age |",
				"| --- | --- |",
				"| alice | 30 |",
				"| bob | 25 |",
			},
		},
		{
			name: "html",
			info: SourceInfo{Extension: ".html", MIMEType: "text/html"},
			data: []byte(`<html><head><title>Doc</title><script>alert(1)</script></head>` +
				`<body><h1>Main Title</h1><p>Hello <strong>world</strong></p></body></html>`),
			mustInclude:    []string{"# Main Title", "Hello **world**"},
			mustNotInclude: []string{"alert(1)", "<script"},
		},
		{
			name:        "json as plain text",
			info:        SourceInfo{Extension: ".json", MIMEType: "application/json"},
			data:        []byte(`{"id": "5b64c88c-b3c3-4510-bcb8-da0b200602d8"}`),
			mustInclude: []string{"5b64c88c-b3c3-4510-bcb8-da0b200602d8"},
		},
		{
			name: "notebook",
			info: SourceInfo{Extension: ".ipynb", MIMEType: "application/x-ipynb+json"},
			data: []byte(notebookJSON),
			mustInclude: []string{
				"# Test Notebook",
				"## Code Cell Below",
				"```python",
				`print("markitdown")`,
			},
			mustNotInclude: []string{"kernelspec", "cell_type"},
		},
		{
			name: "rss",
			info: SourceInfo{Extension: ".xml", MIMEType: "application/rss+xml"},
			data: []byte(rssFeedXML),
			mustInclude: []string{
				"# Engineering Notes",
				"## Deploy Week",
				"**twelve**",
			},
			mustNotInclude: []string{"<rss", "<item>"},
		},
		{
			name: "docx",
			info: SourceInfo{Extension: ".docx"},
			data: zipFixture(t, []zipEntry{
				{"[Content_Types].xml", `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`},
				{"word/document.xml", docxDocumentXML},
			}),
			mustInclude: []string{
				"# Quarterly Report",
				"**Revenue** grew steadily.",
				"- first item",
				"| Name | Value |",
				"| alpha | 1 |",
			},
		},
		{
			name: "pptx",
			info: SourceInfo{Extension: ".pptx"},
			data: zipFixture(t, []zipEntry{
				{"[Content_Types].xml", `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`},
				{"ppt/slides/slide1.xml", pptxSlideXML},
			}),
			mustInclude: []string{
				"<!-- Slide number: 1 -->",
				"# Launch Plan",
				"Ship in October",
			},
		},
		{
			name: "epub",
			info: SourceInfo{Extension: ".epub"},
			data: zipFixture(t, []zipEntry{
				{"mimetype", "application/epub+zip"},
				{"META-INF/container.xml", epubContainerXML},
				{"OEBPS/content.opf", epubPackageXML},
				{"OEBPS/chapter1.xhtml", epubChapterXHTML},
			}),
			mustInclude: []string{
				"# The Test Book",
				"**Authors:** Jane Roe",
				"Chapter 1",
				"It began quietly.",
			},
		},
		{
			name: "zip archive",
			info: SourceInfo{Extension: ".zip", Filename: "bundle.zip"},
			data: zipFixture(t, []zipEntry{
				{"notes.txt", "reminder: rotate the tokens"},
				{"data.csv", "a,b\n1,2\n"},
			}),
			mustInclude: []string{
				"Content from the zip file `bundle.zip`:",
				"## File: notes.txt",
				"rotate the tokens",
				"## File: data.csv",
				"| a | b |",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := e.ConvertBytes(tt.data, tt.info)
			if err != nil {
				t.Fatalf("ConvertBytes error: %v", err)
			}
			for _, s := range tt.mustInclude {
				if !strings.Contains(result.Markdown, s) {
					t.Errorf("expected output to contain %q\nGot:\n%s", s, truncate(result.Markdown, 2000))
				}
			}
			for _, s := range tt.mustNotInclude {
				if strings.Contains(result.Markdown, s) {
					t.Errorf("expected output NOT to contain %q", s)
				}
			}
		})
	}
}

func TestConvertReaderCharsetHint(t *testing.T) {
	e := New()

	encoded, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte("名前,年齢\n佐藤太郎,30\n"))
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	result, err := e.ConvertReader(bytes.NewReader(encoded), SourceInfo{
		Extension: ".csv",
		MIMEType:  "text/csv",
		Charset:   "cp932",
	})
	if err != nil {
		t.Fatalf("ConvertReader error: %v", err)
	}
	for _, expected := range []string{"名前", "年齢", "佐藤太郎"} {
		if !strings.Contains(result.Markdown, expected) {
			t.Errorf("expected output to contain %q", expected)
		}
	}
}

func TestConvertBytesUnsupported(t *testing.T) {
	e := New()

	_, err := e.ConvertBytes([]byte{0x00, 0x01, 0x02, 0xff, 0xfe}, SourceInfo{Extension: ".xyz"})
	if err == nil {
		t.Fatal("expected error for unsupported input")
	}
	if !IsUnsupportedFormat(err) {
		t.Errorf("expected UnsupportedFormatError, got %T: %v", err, err)
	}
}

func TestConvertBytesFallback(t *testing.T) {
	e := New()

	// Not a feed: the RSS converter accepts .xml, fails to parse, and the
	// input falls through to plain text.
	result, err := e.ConvertBytes([]byte("just some text, not xml at all"), SourceInfo{
		Extension: ".xml",
		MIMEType:  "text/xml",
	})
	if err != nil {
		t.Fatalf("ConvertBytes error: %v", err)
	}
	if !strings.Contains(result.Markdown, "just some text") {
		t.Errorf("expected fallback plain text output, got %q", result.Markdown)
	}
}

func TestNormalization(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "trailing whitespace",
			input: "hello   \nworld   \n",
			want:  "hello\nworld",
		},
		{
			name:  "multiple newlines",
			input: "hello\n\n\n\n\nworld",
			want:  "hello\n\nworld",
		},
		{
			name:  "crlf",
			input: "hello\r\nworld\r\n",
			want:  "hello\nworld",
		},
		{
			name:  "control characters",
			input: "hello\x00world\x01test",
			want:  "helloworldtest",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeOutput(tt.input)
			if got != tt.want {
				t.Errorf("normalizeOutput(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestConverterAccepts(t *testing.T) {
	tests := []struct {
		name      string
		converter Converter
		info      SourceInfo
		want      bool
	}{
		{"pdf by ext", &PdfConverter{}, SourceInfo{Extension: ".pdf"}, true},
		{"pdf by mime", &PdfConverter{}, SourceInfo{MIMEType: "application/pdf"}, true},
		{"pdf wrong ext", &PdfConverter{}, SourceInfo{Extension: ".txt"}, false},
		{"csv by ext", &CsvConverter{}, SourceInfo{Extension: ".csv"}, true},
		{"csv by mime", &CsvConverter{}, SourceInfo{MIMEType: "text/csv; charset=utf-8"}, true},
		{"html by ext", NewHTMLConverter(nil), SourceInfo{Extension: ".html"}, true},
		{"html by mime", NewHTMLConverter(nil), SourceInfo{MIMEType: "text/html"}, true},
		{"plaintext txt", &PlainTextConverter{}, SourceInfo{Extension: ".txt"}, true},
		{"plaintext json", &PlainTextConverter{}, SourceInfo{Extension: ".json"}, true},
		{"plaintext binary", &PlainTextConverter{}, SourceInfo{MIMEType: "application/octet-stream"}, false},
		{"rss by ext", &RSSConverter{}, SourceInfo{Extension: ".rss"}, true},
		{"rss xml", &RSSConverter{}, SourceInfo{Extension: ".xml"}, true},
		{"ipynb by ext", &IpynbConverter{}, SourceInfo{Extension: ".ipynb"}, true},
		{"docx by ext", &DocxConverter{}, SourceInfo{Extension: ".docx"}, true},
		{"pptx by ext", &PptxConverter{}, SourceInfo{Extension: ".pptx"}, true},
		{"xlsx by ext", &XlsxConverter{}, SourceInfo{Extension: ".xlsx"}, true},
		{"xls by ext", &XlsConverter{}, SourceInfo{Extension: ".xls"}, true},
		{"epub by ext", NewEpubConverter(nil), SourceInfo{Extension: ".epub"}, true},
		{"zip by ext", NewZipConverter(nil), SourceInfo{Extension: ".zip"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.converter.Accepts(tt.info)
			if got != tt.want {
				t.Errorf("Accepts() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMarkdownTable(t *testing.T) {
	got := markdownTable([][]string{
		{"a", "b|c"},
		{"1"},
		{"2", "3", "4"},
	})
	for _, s := range []string{`b\|c`, "| 1 |  |  |", "| 2 | 3 | 4 |"} {
		if !strings.Contains(got, s) {
			t.Errorf("expected table to contain %q\nGot:\n%s", s, got)
		}
	}
}

func truncate(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
