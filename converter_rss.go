package markitdown

import (
	"fmt"
	"io"
	"strings"

	"github.com/mmcdole/gofeed"
)

// RSSConverter handles RSS and Atom feeds. Generic XML is also routed here;
// non-feed XML fails to parse and falls through to the plain text converter.
type RSSConverter struct{}

func (c *RSSConverter) Accepts(info SourceInfo) bool {
	switch info.Extension {
	case ".rss", ".atom", ".xml":
		return true
	}
	switch BaseMIME(info.MIMEType) {
	case "application/rss+xml", "application/atom+xml",
		"application/rss", "application/atom",
		"text/xml", "application/xml":
		return true
	}
	return false
}

func (c *RSSConverter) Convert(r io.ReadSeeker, info SourceInfo) (*Result, error) {
	feed, err := gofeed.NewParser().Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	var b strings.Builder
	if feed.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", feed.Title)
	}
	if feed.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", feed.Description)
	}

	for _, item := range feed.Items {
		if item.Title != "" {
			fmt.Fprintf(&b, "## %s\n\n", item.Title)
		}
		switch {
		case item.Published != "":
			fmt.Fprintf(&b, "Published: %s\n\n", item.Published)
		case item.Updated != "":
			fmt.Fprintf(&b, "Updated: %s\n\n", item.Updated)
		}

		body := item.Content
		if body == "" {
			body = item.Description
		}
		if body != "" {
			// Feed bodies are frequently embedded HTML.
			if strings.ContainsAny(body, "<>") {
				if md, convErr := htmlToMarkdown(body); convErr == nil {
					body = md
				}
			}
			b.WriteString(body)
			b.WriteString("\n\n")
		}
	}

	return &Result{Markdown: b.String(), Title: feed.Title}, nil
}
