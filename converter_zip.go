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
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ZipConverter converts ZIP archives by recursively converting every entry
// the engine can handle; entries with no converter are skipped.
type ZipConverter struct {
	engine *Engine
}

func NewZipConverter(e *Engine) *ZipConverter {
	return &ZipConverter{engine: e}
}

func (c *ZipConverter) Accepts(info SourceInfo) bool {
	if info.Extension == ".zip" {
		return true
	}
	return BaseMIME(info.MIMEType) == "application/zip"
}

func (c *ZipConverter) Convert(r io.ReadSeeker, info SourceInfo) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read ZIP: %w", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open ZIP: %w", err)
	}

	name := info.Filename
	if name == "" {
		name = "archive"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Content from the zip file `%s`:\n\n", name)

	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			continue
		}
		entryData, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}

		result, err := c.engine.ConvertBytes(entryData, SourceInfo{
			Extension: strings.ToLower(filepath.Ext(entry.Name)),
			Filename:  filepath.Base(entry.Name),
		})
		if err != nil || strings.TrimSpace(result.Markdown) == "" {
			continue
		}

		fmt.Fprintf(&b, "## File: %s\n%s\n\n", entry.Name, result.Markdown)
	}

	return &Result{Markdown: b.String()}, nil
}
