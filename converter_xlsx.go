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
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XlsxConverter renders XLSX workbooks as one markdown table per sheet.
type XlsxConverter struct{}

func (c *XlsxConverter) Accepts(info SourceInfo) bool {
	if info.Extension == ".xlsx" {
		return true
	}
	return BaseMIME(info.MIMEType) == "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (c *XlsxConverter) Convert(r io.ReadSeeker, info SourceInfo) (*Result, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open XLSX: %w", err)
	}
	defer wb.Close()

	var b strings.Builder
	for _, sheet := range wb.GetSheetList() {
		rows, err := wb.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n", sheet)
		b.WriteString(markdownTable(rows))
		b.WriteString("\n")
	}

	return &Result{Markdown: b.String()}, nil
}
