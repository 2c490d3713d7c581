package rulelist

import (
	"bufio"
	"fmt"
	"io"

	"github.com/shackerd/urlrewrite/rules"
)

// RuleScanner implements an interface similar to bufio.Scanner for
// reading a list of rewrite rules.  Blank lines and comments are
// skipped.  Unlike lists of free-form filters, a rewrite rule set must
// be valid as a whole: the scanner stops at the first malformed line and
// reports it via Err, so that no partially valid engine can be built.
type RuleScanner struct {
	scanner *bufio.Scanner

	// listID is the rule list identifier attached to every scanned rule.
	listID int

	// lineNo is the 1-based number of the last line read.
	lineNo int

	// currentRule is the most recently scanned rule.
	currentRule *rules.RewriteRule

	// currentLine is the line number of currentRule.
	currentLine int

	err error
}

// NewRuleScanner creates a new RuleScanner that reads rules from r.
func NewRuleScanner(r io.Reader, listID int) *RuleScanner {
	return &RuleScanner{
		scanner: bufio.NewScanner(r),
		listID:  listID,
	}
}

// Scan advances the scanner to the next rule, which will then be
// available through the Rule method.  It returns false when the scan
// stops, either by reaching the end of the input or on the first
// malformed line.  After Scan returns false, Err tells the two cases
// apart.
func (s *RuleScanner) Scan() bool {
	if s.err != nil {
		return false
	}

	for s.scanner.Scan() {
		s.lineNo++

		rule, err := rules.NewRewriteRule(s.scanner.Text(), s.listID)
		if err != nil {
			s.err = fmt.Errorf("list %d: line %d: %w", s.listID, s.lineNo, err)

			return false
		}

		if rule == nil {
			// Blank line or comment.
			continue
		}

		s.currentRule = rule
		s.currentLine = s.lineNo

		return true
	}

	if err := s.scanner.Err(); err != nil {
		s.err = fmt.Errorf("list %d: %w", s.listID, err)
	}

	return false
}

// Rule returns the most recent rule generated by a call to Scan and the
// 1-based line number it was read from.
func (s *RuleScanner) Rule() (r *rules.RewriteRule, lineNo int) {
	return s.currentRule, s.currentLine
}

// Err returns the first error encountered by the scanner, nil if the
// input was exhausted without one.
func (s *RuleScanner) Err() error {
	return s.err
}
