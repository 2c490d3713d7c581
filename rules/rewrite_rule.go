package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/AdguardTeam/golibs/errors"
)

// ErrInvalidPattern is returned when the rule pattern is not a valid
// regular expression.
const ErrInvalidPattern errors.Error = "invalid rule pattern"

// RuleSyntaxError represents an error while parsing a rewrite rule.
type RuleSyntaxError struct {
	err      error
	ruleText string
}

func (e *RuleSyntaxError) Error() string {
	return fmt.Sprintf("syntax error: %s, rule: %s", e.err, e.ruleText)
}

// Unwrap returns the underlying constraint violation.
func (e *RuleSyntaxError) Unwrap() error {
	return e.err
}

// Rule is a base interface for all rewrite rules.
type Rule interface {
	// Text returns the original rule text.
	Text() string

	// GetListID returns ID of the rule list this rule belongs to.
	GetListID() int
}

// RewriteRule is a single parsed rewrite directive:
//
//	Rewrite <pattern> <replacement> [<flag>,...]
//
// The pattern is a regular expression matched against the working URI,
// the replacement is either a template expanded from the match captures
// or the no-substitution marker "-", and the flags control how the
// engine proceeds after a match.  A RewriteRule is immutable once
// constructed.
type RewriteRule struct {
	// RuleText is the original rule text.
	RuleText string

	// ListID is the identifier of the rule list this rule belongs to.
	ListID int

	// pattern is the compiled rule pattern.  Patterns are not anchored
	// implicitly, anchoring is the rule author's responsibility.
	pattern *regexp.Regexp

	// template is the parsed replacement.  nil means the no-substitution
	// marker "-": the rule's flags fire but the URI is left untouched.
	template *Template

	flags FlagSet
}

// type check
var _ Rule = (*RewriteRule)(nil)

// rule directive keywords, case-insensitive.
var ruleKeywords = map[string]struct{}{
	"rewrite":     {},
	"rewriterule": {},
	"rule":        {},
}

// isComment checks if the line is a comment.
func isComment(line string) bool {
	return strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//")
}

// NewRewriteRule parses a rewrite rule from the specified line.  It
// returns nil if the line is empty or if it is a comment.
func NewRewriteRule(line string, listID int) (r *RewriteRule, err error) {
	line = strings.TrimSpace(line)

	if line == "" || isComment(line) {
		return nil, nil
	}

	parts := strings.Fields(line)
	if _, ok := ruleKeywords[strings.ToLower(parts[0])]; !ok {
		return nil, &RuleSyntaxError{
			err:      fmt.Errorf("unknown directive %q", parts[0]),
			ruleText: line,
		}
	}

	switch len(parts) {
	case 1:
		return nil, &RuleSyntaxError{err: errors.Error("missing pattern"), ruleText: line}
	case 2:
		return nil, &RuleSyntaxError{err: errors.Error("missing replacement"), ruleText: line}
	case 3, 4:
		// Go on.
	default:
		return nil, &RuleSyntaxError{
			err:      errors.Error("unexpected trailing tokens"),
			ruleText: line,
		}
	}

	r = &RewriteRule{
		RuleText: line,
		ListID:   listID,
	}

	r.pattern, err = regexp.Compile(parts[1])
	if err != nil {
		return nil, &RuleSyntaxError{
			err:      fmt.Errorf("%w: %v", ErrInvalidPattern, err),
			ruleText: line,
		}
	}

	if replacement := parts[2]; replacement != "-" {
		r.template, err = ParseTemplate(replacement, r.pattern.NumSubexp())
		if err != nil {
			return nil, &RuleSyntaxError{err: err, ruleText: line}
		}
	}

	if len(parts) == 4 {
		r.flags, err = parseFlags(parts[3])
		if err != nil {
			return nil, &RuleSyntaxError{err: err, ruleText: line}
		}
	}

	return r, nil
}

// Text returns the original rule text.
func (r *RewriteRule) Text() string {
	return r.RuleText
}

// GetListID returns ID of the rule list this rule belongs to.
func (r *RewriteRule) GetListID() int {
	return r.ListID
}

// Flags returns the validated flag set of the rule.
func (r *RewriteRule) Flags() FlagSet {
	return r.flags
}

// HasSubstitution returns false when the rule replacement is the
// no-substitution marker "-".
func (r *RewriteRule) HasSubstitution() bool {
	return r.template != nil
}

// Match matches the rule pattern against uri.  On success it returns the
// ordered capture slice (index 0 is the whole match, a non-participating
// group is an empty string).
func (r *RewriteRule) Match(uri string) (captures []string, ok bool) {
	captures = r.pattern.FindStringSubmatch(uri)

	return captures, captures != nil
}

// Apply computes the new working URI from the result of Match.  For the
// no-substitution marker it returns uri unmodified.
func (r *RewriteRule) Apply(uri string, captures []string) string {
	if r.template == nil {
		return uri
	}

	return r.template.Expand(captures)
}
