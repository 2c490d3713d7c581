package rulelist

import (
	"fmt"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/shackerd/urlrewrite/rules"
)

// RuleStorage is a validated aggregation of several rule lists.  It can
// be scanned as a whole using a RuleStorageScanner, which walks the
// lists in the order they were registered, so that the source order of
// rules across lists is well defined.
type RuleStorage struct {
	// listsMap is a map with rule lists.  Map key is the list ID.
	listsMap map[int]RuleList

	// lists is the ordered array of rule lists backing this storage.
	lists []RuleList
}

// NewRuleStorage creates a new instance of the RuleStorage and validates
// the list of rules specified.
func NewRuleStorage(lists []RuleList) (s *RuleStorage, err error) {
	if lists == nil {
		lists = make([]RuleList, 0)
	}

	listsMap := make(map[int]RuleList, len(lists))
	for i, list := range lists {
		id := list.GetID()
		if _, ok := listsMap[id]; ok {
			return nil, fmt.Errorf("list at index %d: duplicate list id: %d", i, id)
		}

		listsMap[id] = list
	}

	return &RuleStorage{
		listsMap: listsMap,
		lists:    lists,
	}, nil
}

// NewRuleStorageScanner creates a new instance of RuleStorageScanner.
// It can be used to read and parse all the storage contents.
func (s *RuleStorage) NewRuleStorageScanner() (sc *RuleStorageScanner) {
	var scanners []*RuleScanner
	for _, list := range s.lists {
		scanners = append(scanners, list.NewScanner())
	}

	return &RuleStorageScanner{
		Scanners: scanners,
	}
}

// Close closes the storage instance.
func (s *RuleStorage) Close() (err error) {
	if len(s.lists) == 0 {
		return nil
	}

	var errs []error
	for _, l := range s.lists {
		err = l.Close()
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Annotate(errors.Join(errs...), "closing rule lists: %w")
}

// RuleStorageScanner scans the rules of all the lists of a storage, one
// list after another.  It stops at the first malformed line of any list.
type RuleStorageScanner struct {
	// Scanners is the list of list scanners backing this combined
	// scanner.
	Scanners []*RuleScanner

	currentScannerIdx int
}

// Scan advances the scanner to the next rule of the storage.  It returns
// false when all lists are exhausted or when a list reported an error.
func (s *RuleStorageScanner) Scan() bool {
	for s.currentScannerIdx < len(s.Scanners) {
		current := s.Scanners[s.currentScannerIdx]
		if current.Scan() {
			return true
		}

		if current.Err() != nil {
			return false
		}

		s.currentScannerIdx++
	}

	return false
}

// Rule returns the most recent rule generated by a call to Scan and the
// 1-based line number it was read from within its list.
func (s *RuleStorageScanner) Rule() (r *rules.RewriteRule, lineNo int) {
	if s.currentScannerIdx >= len(s.Scanners) {
		return nil, 0
	}

	return s.Scanners[s.currentScannerIdx].Rule()
}

// Err returns the first error encountered while scanning the storage.
func (s *RuleStorageScanner) Err() error {
	for _, sc := range s.Scanners {
		if err := sc.Err(); err != nil {
			return err
		}
	}

	return nil
}
