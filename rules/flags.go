package rules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AdguardTeam/golibs/errors"
)

// Rule flag parsing errors.
const (
	// ErrUnknownFlag is returned when a flag list contains a token that is
	// not part of the flag vocabulary.
	ErrUnknownFlag errors.Error = "unknown rule flag"

	// ErrInvalidRedirectCode is returned when the R flag carries a
	// non-numeric value or a value that is not a valid HTTP status code.
	ErrInvalidRedirectCode errors.Error = "invalid redirect code"

	// ErrConflictingFlags is returned when a rule combines more than one
	// terminal flag (L, R, F).
	ErrConflictingFlags errors.Error = "conflicting terminal flags"
)

// defaultRedirectCode is the HTTP status used by the R flag when no
// explicit code is given.
const defaultRedirectCode = 302

// FlagSet is the validated set of control flags of a single rewrite rule.
// At most one terminal flag (Last, Redirect, Forbidden) can be set.
type FlagSet struct {
	// RedirectCode is the HTTP status of the R flag, zero when the rule
	// carries no redirect.
	RedirectCode int

	// Last is true when the rule carries the L flag: stop evaluating
	// further rules but keep the substitution result.
	Last bool

	// Forbidden is true when the rule carries the F flag: block the
	// request without applying the substitution.
	Forbidden bool
}

// HasRedirect returns true when the rule carries the R flag.
func (f FlagSet) HasRedirect() bool {
	return f.RedirectCode != 0
}

// parseFlags parses the bracketed comma-separated flag list token,
// including the enclosing brackets.
func parseFlags(s string) (f FlagSet, err error) {
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return f, errors.Error("flags must be enclosed in brackets")
	}

	terminal := 0
	for _, token := range strings.Split(s[1:len(s)-1], ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		name, value, _ := strings.Cut(token, "=")
		switch strings.ToLower(name) {
		case "l", "last":
			f.Last = true
			terminal++
		case "r", "redirect":
			f.RedirectCode, err = parseRedirectCode(value)
			if err != nil {
				return FlagSet{}, err
			}
			terminal++
		case "f", "forbidden":
			f.Forbidden = true
			terminal++
		default:
			return FlagSet{}, fmt.Errorf("%w: %q", ErrUnknownFlag, token)
		}
	}

	if f == (FlagSet{}) {
		return f, errors.Error("empty flag list")
	}

	if terminal > 1 {
		return FlagSet{}, ErrConflictingFlags
	}

	return f, nil
}

// parseRedirectCode parses the optional =code part of the R flag.  An
// empty value yields the default 302.
func parseRedirectCode(value string) (code int, err error) {
	if value == "" {
		return defaultRedirectCode, nil
	}

	code, err = strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRedirectCode, value)
	}

	if code < 100 || code > 599 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidRedirectCode, code)
	}

	return code, nil
}
