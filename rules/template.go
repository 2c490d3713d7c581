package rules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AdguardTeam/golibs/errors"
)

// ErrBackrefOutOfRange is returned when a replacement template references
// a capture group that the rule pattern does not have.
const ErrBackrefOutOfRange errors.Error = "backreference out of range"

// templateSegment is a single segment of a replacement template.  It is
// either a literal string or a backreference to a capture group.
type templateSegment struct {
	literal string
	group   int // capture group index, valid when literal is empty
}

// Template is a pre-parsed replacement template.  It consists of literal
// fragments interleaved with $N backreferences where N is a capture group
// index ($0 is the whole match).  Templates are built once at parse time
// and are immutable afterwards.
type Template struct {
	text     string
	segments []templateSegment
}

// ParseTemplate parses the replacement token text into a Template and
// validates every backreference against groupCount, the number of capture
// groups of the rule pattern.  $$ produces a literal dollar sign, a dollar
// sign not followed by a digit is kept as-is.
func ParseTemplate(text string, groupCount int) (t *Template, err error) {
	t = &Template{text: text}

	var literal strings.Builder
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '$' {
			literal.WriteByte(c)
			continue
		}

		if i+1 < len(text) && text[i+1] == '$' {
			literal.WriteByte('$')
			i++
			continue
		}

		digits := scanDigits(text[i+1:])
		if digits == "" {
			literal.WriteByte('$')
			continue
		}

		group, convErr := strconv.Atoi(digits)
		if convErr != nil || group > groupCount {
			return nil, fmt.Errorf(
				"%w: $%s exceeds %d capture groups",
				ErrBackrefOutOfRange,
				digits,
				groupCount,
			)
		}

		if literal.Len() > 0 {
			t.segments = append(t.segments, templateSegment{literal: literal.String()})
			literal.Reset()
		}
		t.segments = append(t.segments, templateSegment{group: group})
		i += len(digits)
	}

	if literal.Len() > 0 {
		t.segments = append(t.segments, templateSegment{literal: literal.String()})
	}

	return t, nil
}

// scanDigits returns the run of decimal digits at the beginning of s,
// empty if s does not start with a digit.
func scanDigits(s string) string {
	width := 0
	for width < len(s) && s[width] >= '0' && s[width] <= '9' {
		width++
	}

	return s[:width]
}

// Expand produces the replacement string for the given capture slice as
// returned by FindStringSubmatch (index 0 is the whole match).  A group
// that did not participate in the match expands to an empty string.
// Expand never fails for a template validated at parse time.
func (t *Template) Expand(captures []string) string {
	var b strings.Builder
	for _, seg := range t.segments {
		if seg.literal != "" {
			b.WriteString(seg.literal)
		} else if seg.group < len(captures) {
			b.WriteString(captures[seg.group])
		}
	}

	return b.String()
}

// String returns the original replacement token text.
func (t *Template) String() string {
	return t.text
}
