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
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// extensionByMIME maps base MIME types to the canonical file extension used
// for them throughout the service. Only types with a registered converter
// appear here; a MIME type missing from this table is not convertible.
var extensionByMIME = map[string]string{
	"application/pdf": ".pdf",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   ".docx",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": ".pptx",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         ".xlsx",
	"application/vnd.ms-excel": ".xls",
	"text/html":                ".html",
	"text/plain":               ".txt",
	"text/rtf":                 ".rtf",
	"application/rtf":          ".rtf",
	"text/csv":                 ".csv",
	"application/csv":          ".csv",
	"application/json":         ".json",
	"text/markdown":            ".md",
	"text/xml":                 ".xml",
	"application/xml":          ".xml",
	"application/rss+xml":      ".rss",
	"application/atom+xml":     ".atom",
	"application/zip":          ".zip",
	"application/epub+zip":     ".epub",
	"application/x-ipynb+json": ".ipynb",
}

var mimeByExtension = map[string]string{
	".pdf":      "application/pdf",
	".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".pptx":     "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".xlsx":     "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".xls":      "application/vnd.ms-excel",
	".html":     "text/html",
	".htm":      "text/html",
	".txt":      "text/plain",
	".text":     "text/plain",
	".rtf":      "text/rtf",
	".csv":      "text/csv",
	".json":     "application/json",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".xml":      "text/xml",
	".rss":      "application/rss+xml",
	".atom":     "application/atom+xml",
	".zip":      "application/zip",
	".epub":     "application/epub+zip",
	".ipynb":    "application/x-ipynb+json",
}

// BaseMIME strips any parameters from a MIME type string:
// "text/plain; charset=utf-8" -> "text/plain".
func BaseMIME(mime string) string {
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return strings.ToLower(strings.TrimSpace(mime))
}

// ExtensionForMIME returns the canonical extension for a MIME type, or
// ok=false when the type has no converter.
func ExtensionForMIME(mime string) (ext string, ok bool) {
	ext, ok = extensionByMIME[BaseMIME(mime)]
	return ext, ok
}

// MIMEFromExtension returns a MIME type for a known file extension, or ""
// for an unknown one.
func MIMEFromExtension(ext string) string {
	return mimeByExtension[strings.ToLower(ext)]
}

// DetectMIME sniffs the MIME type from the leading bytes of r, falling back
// to the extension when the content is not recognizable. The read position of
// r is left undefined; callers must seek afterwards.
func DetectMIME(r io.Reader, ext string) string {
	mtype, err := mimetype.DetectReader(r)
	if err == nil && mtype.String() != "application/octet-stream" {
		return BaseMIME(mtype.String())
	}
	if m := MIMEFromExtension(ext); m != "" {
		return m
	}
	return "application/octet-stream"
}
