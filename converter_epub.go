package markitdown

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/nicholasgasior/markitdown-server/internal/ooxml"
)

// EpubConverter converts EPUB books: the OPF metadata becomes a header block
// and the spine documents are converted in reading order.
type EpubConverter struct {
	engine *Engine
}

func NewEpubConverter(e *Engine) *EpubConverter {
	return &EpubConverter{engine: e}
}

func (c *EpubConverter) Accepts(info SourceInfo) bool {
	if info.Extension == ".epub" {
		return true
	}
	mime := BaseMIME(info.MIMEType)
	return mime == "application/epub+zip" || mime == "application/epub" || mime == "application/x-epub+zip"
}

type epubPackage struct {
	Metadata struct {
		Title       string   `xml:"title"`
		Creators    []string `xml:"creator"`
		Language    string   `xml:"language"`
		Publisher   string   `xml:"publisher"`
		Date        string   `xml:"date"`
		Description string   `xml:"description"`
	} `xml:"metadata"`
	Manifest struct {
		Items []struct {
			ID        string `xml:"id,attr"`
			Href      string `xml:"href,attr"`
			MediaType string `xml:"media-type,attr"`
		} `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		ItemRefs []struct {
			IDRef string `xml:"idref,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
}

func (c *EpubConverter) Convert(r io.ReadSeeker, info SourceInfo) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read EPUB: %w", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open EPUB: %w", err)
	}

	opfPath, err := epubPackagePath(zr)
	if err != nil {
		return nil, fmt.Errorf("locate package document: %w", err)
	}

	opfData, err := ooxml.ReadFile(zr, opfPath)
	if err != nil {
		return nil, fmt.Errorf("read package document: %w", err)
	}
	var pkg epubPackage
	if err := xml.Unmarshal(opfData, &pkg); err != nil {
		return nil, fmt.Errorf("parse package document: %w", err)
	}

	var b strings.Builder
	meta := pkg.Metadata
	if meta.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", meta.Title)
	}
	if len(meta.Creators) > 0 {
		fmt.Fprintf(&b, "**Authors:** %s\n\n", strings.Join(meta.Creators, ", "))
	}
	if meta.Language != "" {
		fmt.Fprintf(&b, "**Language:** %s\n\n", meta.Language)
	}
	if meta.Publisher != "" {
		fmt.Fprintf(&b, "**Publisher:** %s\n\n", meta.Publisher)
	}
	if meta.Date != "" {
		fmt.Fprintf(&b, "**Date:** %s\n\n", meta.Date)
	}
	if meta.Description != "" {
		fmt.Fprintf(&b, "**Description:** %s\n\n", meta.Description)
	}

	manifest := make(map[string]struct{ href, mediaType string }, len(pkg.Manifest.Items))
	for _, item := range pkg.Manifest.Items {
		manifest[item.ID] = struct{ href, mediaType string }{item.Href, item.MediaType}
	}

	htmlConv := NewHTMLConverter(c.engine)
	for _, ref := range pkg.Spine.ItemRefs {
		item, ok := manifest[ref.IDRef]
		if !ok {
			continue
		}
		partPath := ooxml.ResolveTarget(opfPath, item.href)
		if !isEpubHTML(partPath, item.mediaType) {
			continue
		}
		partData, err := ooxml.ReadFile(zr, partPath)
		if err != nil {
			continue
		}
		result, err := htmlConv.ConvertString(string(partData))
		if err != nil || strings.TrimSpace(result.Markdown) == "" {
			continue
		}
		b.WriteString(result.Markdown)
		b.WriteString("\n\n")
	}

	return &Result{Markdown: b.String(), Title: meta.Title}, nil
}

// epubPackagePath finds the OPF package path from META-INF/container.xml.
func epubPackagePath(zr *zip.Reader) (string, error) {
	data, err := ooxml.ReadFile(zr, "META-INF/container.xml")
	if err != nil {
		return "", err
	}

	var container struct {
		RootFiles []struct {
			FullPath string `xml:"full-path,attr"`
		} `xml:"rootfiles>rootfile"`
	}
	if err := xml.Unmarshal(data, &container); err != nil {
		return "", fmt.Errorf("parse container.xml: %w", err)
	}
	if len(container.RootFiles) == 0 || container.RootFiles[0].FullPath == "" {
		return "", fmt.Errorf("no rootfile in container.xml")
	}
	return container.RootFiles[0].FullPath, nil
}

func isEpubHTML(partPath, mediaType string) bool {
	switch strings.ToLower(path.Ext(partPath)) {
	case ".html", ".htm", ".xhtml":
		return true
	}
	return strings.Contains(mediaType, "html")
}
