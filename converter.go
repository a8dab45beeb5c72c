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

import "io"

// SourceInfo holds metadata about the input being converted. Any field may be
// empty; converters fall back from extension to MIME type when deciding
// whether to accept an input.
type SourceInfo struct {
	MIMEType  string
	Extension string
	Charset   string
	Filename  string
}

// Result holds the output of a conversion.
type Result struct {
	Markdown string
	Title    string
}

// Converter is the interface all format converters implement.
type Converter interface {
	// Accepts reports whether this converter can handle the given input.
	// It must not perform I/O.
	Accepts(info SourceInfo) bool

	// Convert performs the document-to-markdown conversion. The reader is
	// positioned at the start of the input when Convert is called.
	Convert(r io.ReadSeeker, info SourceInfo) (*Result, error)
}
