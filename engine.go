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

// Package markitdown converts documents of many formats to normalized markdown.
// The engine is purely local: it operates on bytes it is handed and performs no
// network access of its own.
package markitdown

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// PriorityFormat is for format-specific converters (PDF, DOCX, XLSX, ...).
	PriorityFormat = 0.0
	// PriorityFallback is for generic fallback converters (HTML, ZIP, plain text).
	PriorityFallback = 10.0
)

type registration struct {
	name      string
	converter Converter
	priority  float64
}

// Engine dispatches input to the registered format converters.
type Engine struct {
	converters   []registration
	keepDataURIs bool
}

// New creates an Engine with all built-in converters registered.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	e.registerBuiltins()
	return e
}

// Register adds a converter under the given name. Converters with lower
// priority values are tried first; registration order breaks ties.
func (e *Engine) Register(name string, c Converter, priority float64) {
	e.converters = append(e.converters, registration{
		name:      name,
		converter: c,
		priority:  priority,
	})
	sort.SliceStable(e.converters, func(i, j int) bool {
		return e.converters[i].priority < e.converters[j].priority
	})
}

// ConvertFile converts a local file to markdown, detecting the MIME type from
// its content.
func (e *Engine) ConvertFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	info := SourceInfo{
		Extension: strings.ToLower(filepath.Ext(path)),
		Filename:  filepath.Base(path),
	}
	info.MIMEType = DetectMIME(f, info.Extension)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek: %w", err)
	}

	return e.ConvertReader(f, info)
}

// ConvertBytes converts an in-memory document to markdown.
func (e *Engine) ConvertBytes(data []byte, info SourceInfo) (*Result, error) {
	r := bytes.NewReader(data)
	if info.MIMEType == "" {
		info.MIMEType = DetectMIME(r, info.Extension)
		r.Seek(0, io.SeekStart)
	}
	return e.ConvertReader(r, info)
}

// ConvertReader converts a stream to markdown using the provided SourceInfo.
// The first registered converter that accepts the input wins; converters that
// accept but fail are recorded and the next one is tried.
func (e *Engine) ConvertReader(r io.ReadSeeker, info SourceInfo) (*Result, error) {
	var attempts []Attempt

	for _, reg := range e.converters {
		if !reg.converter.Accepts(info) {
			continue
		}

		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("seek: %w", err)
		}

		result, err := reg.converter.Convert(r, info)
		if err != nil {
			attempts = append(attempts, Attempt{Name: reg.name, Err: err})
			continue
		}

		result.Markdown = normalizeOutput(result.Markdown)
		return result, nil
	}

	if len(attempts) > 0 {
		return nil, &ConversionError{Attempts: attempts}
	}
	return nil, &UnsupportedFormatError{
		Extension: info.Extension,
		MIMEType:  info.MIMEType,
	}
}

func (e *Engine) registerBuiltins() {
	// Format-specific converters, tried first.
	e.Register("csv", &CsvConverter{}, PriorityFormat)
	e.Register("rss", &RSSConverter{}, PriorityFormat)
	e.Register("ipynb", &IpynbConverter{}, PriorityFormat)
	e.Register("docx", &DocxConverter{}, PriorityFormat)
	e.Register("xlsx", &XlsxConverter{}, PriorityFormat)
	e.Register("xls", &XlsConverter{}, PriorityFormat)
	e.Register("pptx", &PptxConverter{}, PriorityFormat)
	e.Register("pdf", &PdfConverter{}, PriorityFormat)
	e.Register("epub", NewEpubConverter(e), PriorityFormat)

	// Fallbacks.
	e.Register("html", NewHTMLConverter(e), PriorityFallback)
	e.Register("zip", NewZipConverter(e), PriorityFallback)
	e.Register("plaintext", &PlainTextConverter{}, PriorityFallback)
}
