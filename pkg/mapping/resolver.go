package mapping

import (
	"fmt"
	"strings"
)

// Kind distinguishes sheet-name resolution from header-text resolution.
type Kind string

const (
	KindSheet  Kind = "sheet"
	KindHeader Kind = "header"
)

// Strategy names the fallback step that produced a match.
type Strategy string

const (
	StrategyExact           Strategy = "exact"
	StrategyCaseInsensitive Strategy = "case_insensitive"
	StrategySimilarity      Strategy = "similarity"
	StrategyPattern         Strategy = "pattern"
)

// UnresolvedError is returned when strict mode promotes an unresolved
// mapping to a fatal error.
type UnresolvedError struct {
	Kind Kind
	Raw  string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("unresolved %s mapping: %q", e.Kind, e.Raw)
}

// matcher is one fallback strategy. attempt returns the canonical id, the
// mapping key it matched against (empty for pattern rules), and whether it
// matched. Matchers run in chain order; the first success wins.
type matcher struct {
	strategy Strategy
	attempt  func(raw string) (canonical, matchedKey string, ok bool)
}

// Resolver resolves raw names against an immutable Table snapshot and
// records every attempt in its Report.
type Resolver struct {
	table       *Table
	sheetChain  []matcher
	headerChain []matcher
	report      *Report
}

// NewResolver builds a resolver over the given table. The fallback chains
// are assembled once from the table's fallback settings.
func NewResolver(table *Table) *Resolver {
	r := &Resolver{table: table, report: NewReport()}
	r.sheetChain = r.buildChain(KindSheet)
	r.headerChain = r.buildChain(KindHeader)
	return r
}

// Report returns the resolution report accumulated so far.
func (r *Resolver) Report() *Report {
	return r.report
}

// ResolveSheet maps a raw sheet name to its canonical sheet id. The second
// return value is false when no strategy matched; the miss is recorded in
// the report and the caller decides whether to continue or fail.
func (r *Resolver) ResolveSheet(raw string) (string, bool) {
	return r.resolve(KindSheet, raw, r.sheetChain)
}

// ResolveHeader maps a raw header text to its canonical column id.
func (r *Resolver) ResolveHeader(raw string) (string, bool) {
	return r.resolve(KindHeader, raw, r.headerChain)
}

func (r *Resolver) resolve(kind Kind, raw string, chain []matcher) (string, bool) {
	for _, m := range chain {
		canonical, matchedKey, ok := m.attempt(raw)
		if !ok {
			continue
		}
		r.report.addAttempt(Attempt{Kind: kind, Raw: raw, Resolved: canonical, Strategy: m.strategy, OK: true})
		if m.strategy == StrategySimilarity && r.table.Fallback.CreateSuggestions {
			r.report.addSuggestion(kind, raw, matchedKey)
		}
		return canonical, true
	}
	r.report.addAttempt(Attempt{Kind: kind, Raw: raw, OK: false})
	if r.table.Fallback.LogUnrecognizedItems {
		r.report.addUnresolved(kind, raw)
	}
	return "", false
}

func (r *Resolver) buildChain(kind Kind) []matcher {
	mappings := r.table.Sheets
	if kind == KindHeader {
		mappings = r.table.Headers
	}
	fb := r.table.Fallback

	chain := []matcher{{
		strategy: StrategyExact,
		attempt: func(raw string) (string, string, bool) {
			canonical, ok := mappings[raw]
			return canonical, raw, ok
		},
	}}

	if fb.CaseInsensitiveMatching {
		chain = append(chain, matcher{
			strategy: StrategyCaseInsensitive,
			attempt: func(raw string) (string, string, bool) {
				lower := strings.ToLower(raw)
				for _, key := range sortedKeys(mappings) {
					if strings.ToLower(key) == lower {
						return mappings[key], key, true
					}
				}
				return "", "", false
			},
		})
	}

	if fb.PartialMatchingThreshold > 0 {
		chain = append(chain, matcher{
			strategy: StrategySimilarity,
			attempt: func(raw string) (string, string, bool) {
				key, ok := bestMatch(raw, mappings, fb.PartialMatchingThreshold)
				if !ok {
					return "", "", false
				}
				return mappings[key], key, true
			},
		})
	}

	if kind == KindHeader && fb.PatternMatching {
		chain = append(chain, matcher{
			strategy: StrategyPattern,
			attempt: func(raw string) (string, string, bool) {
				id, ok := matchHeaderPattern(raw)
				return id, "", ok
			},
		})
	}

	return chain
}
