// Package rulelist provides sources of rewrite rules and the machinery
// for scanning them: string- and file-backed rule lists, a fail-fast
// line scanner, and a storage that combines several lists.
package rulelist

import (
	"fmt"
	"os"
	"strings"
)

// RuleList represents a source of rewrite rules.
type RuleList interface {
	// GetID returns the rule list identifier.
	GetID() int

	// NewScanner creates a new scanner that reads the list contents.
	NewScanner() *RuleScanner

	// Close closes the underlying source.
	Close() error
}

// StringRuleList represents a string-based rule list.
type StringRuleList struct {
	// ID is the rule list identifier.
	ID int

	// RulesText is the text of the rule list, one rule per line.
	RulesText string
}

// GetID returns the rule list identifier.
func (l *StringRuleList) GetID() int {
	return l.ID
}

// NewScanner creates a new scanner that reads the list contents.
func (l *StringRuleList) NewScanner() *RuleScanner {
	return NewRuleScanner(strings.NewReader(l.RulesText), l.ID)
}

// Close does nothing for a string-based list.
func (l *StringRuleList) Close() error {
	return nil
}

// FileRuleList represents a file-based rule list.
type FileRuleList struct {
	// ID is the rule list identifier.
	ID int

	file *os.File
}

// NewFileRuleList opens the rule list file at path.  The caller is
// responsible for closing the list.
func NewFileRuleList(id int, path string) (l *FileRuleList, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading rule list %d: %w", id, err)
	}

	return &FileRuleList{
		ID:   id,
		file: file,
	}, nil
}

// GetID returns the rule list identifier.
func (l *FileRuleList) GetID() int {
	return l.ID
}

// NewScanner creates a new scanner that reads the list contents from the
// beginning of the file.
func (l *FileRuleList) NewScanner() *RuleScanner {
	s := NewRuleScanner(l.file, l.ID)
	if _, err := l.file.Seek(0, 0); err != nil {
		s.err = fmt.Errorf("list %d: %w", l.ID, err)
	}

	return s
}

// Close closes the rule list file.
func (l *FileRuleList) Close() error {
	return l.file.Close()
}
