// Package urlrewrite implements a rule-based URI rewriting engine.  A
// set of textual rules is parsed once into an immutable Engine, which is
// then evaluated against candidate URIs, one call per request, producing
// a rewritten URI, a redirect instruction, a block, or no change.
package urlrewrite

import (
	"fmt"
	"unicode/utf8"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/shackerd/urlrewrite/rulelist"
	"github.com/shackerd/urlrewrite/rules"
)

// ErrInvalidInput is returned by Engine.Rewrite when the input cannot be
// treated as a URI string: it is empty or is not valid UTF-8.
const ErrInvalidInput errors.Error = "invalid input uri"

// ResultKind is the kind of the outcome of a single Rewrite call.
type ResultKind int

// ResultKind enumeration.
const (
	// Unchanged means no rule changed the URI.
	Unchanged ResultKind = iota

	// Rewritten means the URI was changed and the host should continue
	// processing the request with the new URI.
	Rewritten

	// Redirected means the host should respond with an HTTP redirect.
	Redirected

	// Forbidden means the host should block the request.
	Forbidden
)

// String implements the fmt.Stringer interface for ResultKind.
func (k ResultKind) String() string {
	switch k {
	case Unchanged:
		return "unchanged"
	case Rewritten:
		return "rewritten"
	case Redirected:
		return "redirected"
	case Forbidden:
		return "forbidden"
	default:
		return fmt.Sprintf("unknown(%d)", k)
	}
}

// Result is the outcome of a single Rewrite call.
type Result struct {
	// URI is the rewritten URI when Kind is Rewritten, or the redirect
	// location when Kind is Redirected.  Empty otherwise.
	URI string

	// Status is the HTTP status code when Kind is Redirected.  Zero
	// otherwise.
	Status int

	// Kind tells which of the fields above are meaningful.
	Kind ResultKind
}

// Engine holds the ordered, immutable sequence of parsed rewrite rules.
// Once constructed, an Engine is never mutated, so a single instance can
// be shared by any number of concurrent callers without synchronization.
type Engine struct {
	// RulesCount is the count of rules loaded into the engine.
	RulesCount int

	rules []*rules.RewriteRule
}

// NewEngine parses all the rules of the storage and returns an Engine
// built from them.  Parsing is fail-fast: the first malformed line of
// any list aborts the construction and no engine is returned.
func NewEngine(s *rulelist.RuleStorage) (e *Engine, err error) {
	e = &Engine{}

	scanner := s.NewRuleStorageScanner()
	for scanner.Scan() {
		r, _ := scanner.Rule()
		e.rules = append(e.rules, r)
	}

	if err = scanner.Err(); err != nil {
		return nil, err
	}

	e.RulesCount = len(e.rules)

	return e, nil
}

// NewEngineFromText is a convenience wrapper around NewEngine for a
// single anonymous string rule list.
func NewEngineFromText(text string) (e *Engine, err error) {
	s, err := rulelist.NewRuleStorage([]rulelist.RuleList{
		&rulelist.StringRuleList{
			ID:        0,
			RulesText: text,
		},
	})
	if err != nil {
		return nil, err
	}

	return NewEngine(s)
}

// Rewrite evaluates uri against the rule sequence and returns the
// outcome.  The evaluation is a single forward pass: each rule is
// matched against the current working URI, a match applies the rule's
// substitution and flags, and the working URI produced by one rule is
// what the next rule sees.  Rule content can never fail the evaluation,
// since it was fully validated at construction time.
func (e *Engine) Rewrite(uri string) (res Result, err error) {
	if uri == "" {
		return Result{}, fmt.Errorf("%w: empty string", ErrInvalidInput)
	}

	if !utf8.ValidString(uri) {
		return Result{}, fmt.Errorf("%w: not a valid utf-8 string", ErrInvalidInput)
	}

	working := uri
	for _, r := range e.rules {
		captures, ok := r.Match(working)
		if !ok {
			continue
		}

		flags := r.Flags()

		// Blocking wins over everything else and skips the substitution,
		// the working URI is discarded.
		if flags.Forbidden {
			return Result{Kind: Forbidden}, nil
		}

		working = r.Apply(working, captures)

		if flags.HasRedirect() {
			return Result{
				Kind:   Redirected,
				URI:    working,
				Status: flags.RedirectCode,
			}, nil
		}

		if flags.Last {
			break
		}
	}

	if working != uri {
		return Result{Kind: Rewritten, URI: working}, nil
	}

	return Result{Kind: Unchanged}, nil
}
