package markitdown

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/extrame/xls"
)

// XlsConverter renders legacy XLS workbooks as one markdown table per sheet.
type XlsConverter struct{}

func (c *XlsConverter) Accepts(info SourceInfo) bool {
	if info.Extension == ".xls" {
		return true
	}
	return BaseMIME(info.MIMEType) == "application/vnd.ms-excel"
}

func (c *XlsConverter) Convert(r io.ReadSeeker, info SourceInfo) (*Result, error) {
	// extrame/xls only opens files by path.
	tmp, err := os.CreateTemp("", "markitdown-*.xls")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	wb, err := xls.Open(tmp.Name(), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open XLS: %w", err)
	}

	var b strings.Builder
	for i := 0; i < wb.NumSheets(); i++ {
		sheet := wb.GetSheet(i)
		if sheet == nil {
			continue
		}

		var rows [][]string
		for rowIdx := 0; rowIdx <= int(sheet.MaxRow); rowIdx++ {
			row := sheet.Row(rowIdx)
			if row == nil {
				continue
			}
			var cells []string
			for colIdx := 0; colIdx < row.LastCol(); colIdx++ {
				cells = append(cells, row.Col(colIdx))
			}
			rows = append(rows, cells)
		}
		if len(rows) == 0 {
			continue
		}

		name := sheet.Name
		if name == "" {
			name = fmt.Sprintf("Sheet%d", i+1)
		}
		fmt.Fprintf(&b, "## %s\n", name)
		b.WriteString(markdownTable(rows))
		b.WriteString("\n")
	}

	return &Result{Markdown: b.String()}, nil
}
