package markitdown

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	reLineEndings  = regexp.MustCompile(`\r\n?`)
	reTrailingWS   = regexp.MustCompile(`[ \t]+\n`)
	reExtraNewline = regexp.MustCompile(`\n{3,}`)
)

// normalizeOutput post-processes converter output: normalizes line endings to
// LF, drops non-printable characters (keeping \n and \t), strips trailing
// whitespace per line, collapses runs of blank lines, and guarantees valid
// UTF-8.
func normalizeOutput(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}

	s = reLineEndings.ReplaceAllString(s, "\n")

	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)

	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	s = reTrailingWS.ReplaceAllString(s, "\n")
	s = reExtraNewline.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}
