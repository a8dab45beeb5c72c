// Package ooxml provides shared helpers for Office Open XML packages
// (docx, pptx) and other zip-based document containers (epub).
package ooxml

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"
)

// Relationship describes one entry of an OOXML .rels part.
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

type relationships struct {
	XMLName       xml.Name       `xml:"Relationships"`
	Relationships []Relationship `xml:"Relationship"`
}

// Relationships parses the .rels part at relsPath, keyed by relationship ID.
// A missing part yields an empty map, not an error.
func Relationships(zr *zip.Reader, relsPath string) (map[string]Relationship, error) {
	data, err := ReadFile(zr, relsPath)
	if err != nil {
		return map[string]Relationship{}, nil
	}

	var rels relationships
	if err := xml.Unmarshal(data, &rels); err != nil {
		return nil, fmt.Errorf("decode relationships: %w", err)
	}
	out := make(map[string]Relationship, len(rels.Relationships))
	for _, rel := range rels.Relationships {
		out[rel.ID] = rel
	}
	return out, nil
}

// ReadFile reads one named file out of a zip archive.
func ReadFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("file %q not found in archive", name)
}

// RelsPath returns the .rels path covering the given part, e.g.
// word/document.xml -> word/_rels/document.xml.rels.
func RelsPath(partPath string) string {
	dir := path.Dir(partPath)
	base := path.Base(partPath)
	if dir == "." {
		return "_rels/" + base + ".rels"
	}
	return dir + "/_rels/" + base + ".rels"
}

// ResolveTarget resolves a relationship target against the part it belongs to.
func ResolveTarget(partPath, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Join(path.Dir(partPath), target)
}
