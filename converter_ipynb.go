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
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// IpynbConverter renders Jupyter notebooks: markdown cells verbatim, code
// cells as fenced blocks with their text outputs.
type IpynbConverter struct{}

func (c *IpynbConverter) Accepts(info SourceInfo) bool {
	return info.Extension == ".ipynb" || BaseMIME(info.MIMEType) == "application/x-ipynb+json"
}

type ipynbDocument struct {
	Metadata struct {
		KernelSpec struct {
			Language string `json:"language"`
		} `json:"kernelspec"`
	} `json:"metadata"`
	Cells []ipynbCell `json:"cells"`
}

type ipynbCell struct {
	CellType string          `json:"cell_type"`
	Source   json.RawMessage `json:"source"`
	Outputs  []ipynbOutput   `json:"outputs"`
}

type ipynbOutput struct {
	OutputType string                     `json:"output_type"`
	Text       json.RawMessage            `json:"text"`
	Data       map[string]json.RawMessage `json:"data"`
}

func (c *IpynbConverter) Convert(r io.ReadSeeker, info SourceInfo) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	var nb ipynbDocument
	if err := json.Unmarshal(data, &nb); err != nil {
		return nil, fmt.Errorf("parse notebook: %w", err)
	}

	lang := nb.Metadata.KernelSpec.Language
	if lang == "" {
		lang = "python"
	}

	var sections []string
	var title string

	for _, cell := range nb.Cells {
		source := ipynbJoin(cell.Source)

		switch cell.CellType {
		case "markdown":
			sections = append(sections, source)
			if title == "" {
				title = firstHeading(source)
			}
		case "code":
			if strings.TrimSpace(source) != "" {
				sections = append(sections, fmt.Sprintf("```%s\n%s\n```", lang, source))
			}
			for _, out := range cell.Outputs {
				if text := ipynbOutputText(out); text != "" {
					sections = append(sections, fmt.Sprintf("```\n%s\n```", text))
				}
			}
		case "raw":
			if strings.TrimSpace(source) != "" {
				sections = append(sections, fmt.Sprintf("```\n%s\n```", source))
			}
		}
	}

	return &Result{Markdown: strings.Join(sections, "\n\n"), Title: title}, nil
}

// ipynbJoin normalizes a notebook source value, which may be either a single
// string or an array of line strings.
func ipynbJoin(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var lines []string
	if json.Unmarshal(raw, &lines) == nil {
		return strings.Join(lines, "")
	}
	return ""
}

func ipynbOutputText(out ipynbOutput) string {
	if out.Text != nil {
		if text := ipynbJoin(out.Text); text != "" {
			return strings.TrimRight(text, "\n")
		}
	}
	if raw, ok := out.Data["text/plain"]; ok {
		if text := ipynbJoin(raw); text != "" {
			return strings.TrimRight(text, "\n")
		}
	}
	return ""
}

// firstHeading returns the text of the first level-1 markdown heading.
func firstHeading(md string) string {
	for _, line := range strings.Split(md, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimPrefix(line, "# ")
		}
	}
	return ""
}
