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
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"golang.org/x/net/html"
)

var (
	reScriptBlock = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	reStyleBlock  = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`)
	reDataURI     = regexp.MustCompile(`(data:[a-zA-Z0-9/+.-]+;base64,)[A-Za-z0-9+/=]{64,}`)
)

// HTMLConverter converts HTML documents to markdown.
type HTMLConverter struct {
	engine *Engine
}

// NewHTMLConverter creates an HTMLConverter bound to an engine; the engine
// may be nil when only ConvertString is needed.
func NewHTMLConverter(e *Engine) *HTMLConverter {
	return &HTMLConverter{engine: e}
}

func (c *HTMLConverter) Accepts(info SourceInfo) bool {
	switch info.Extension {
	case ".html", ".htm", ".xhtml":
		return true
	}
	mime := BaseMIME(info.MIMEType)
	return mime == "text/html" || strings.HasPrefix(mime, "application/xhtml")
}

func (c *HTMLConverter) Convert(r io.ReadSeeker, info SourceInfo) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return c.ConvertString(decodeText(data, info.Charset))
}

// ConvertString converts an HTML string to markdown.
func (c *HTMLConverter) ConvertString(htmlStr string) (*Result, error) {
	title := htmlTitle(htmlStr)

	// script/style content would otherwise leak into the output as text.
	htmlStr = reScriptBlock.ReplaceAllString(htmlStr, "")
	htmlStr = reStyleBlock.ReplaceAllString(htmlStr, "")

	md, err := htmlToMarkdown(htmlStr)
	if err != nil {
		return nil, fmt.Errorf("convert HTML: %w", err)
	}

	if c.engine == nil || !c.engine.keepDataURIs {
		md = reDataURI.ReplaceAllString(md, "${1}...")
	}

	return &Result{Markdown: md, Title: title}, nil
}

func htmlToMarkdown(htmlStr string) (string, error) {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(
				commonmark.WithHeadingStyle("atx"),
			),
			table.NewTablePlugin(),
		),
	)
	return conv.ConvertString(htmlStr)
}

// htmlTitle extracts the contents of the first <title> element.
func htmlTitle(htmlStr string) string {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return ""
	}

	var walk func(*html.Node) string
	walk = func(n *html.Node) string {
		if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
			return n.FirstChild.Data
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if t := walk(child); t != "" {
				return t
			}
		}
		return ""
	}
	return strings.TrimSpace(walk(doc))
}
