package mapping

import "fmt"

// Attempt records one resolution attempt, successful or not.
type Attempt struct {
	Kind     Kind
	Raw      string
	Resolved string
	Strategy Strategy
	OK       bool
}

// reportItem is a human-readable line destined for the mapping report file.
// Suggestion lines flag similarity matches; the rest are unresolved items.
type reportItem struct {
	text       string
	suggestion bool
}

// Report accumulates every resolution attempt of a run plus the unresolved
// items and suggestions to surface for manual review. It is returned to the
// caller alongside the generation result, never discarded.
type Report struct {
	attempts []Attempt
	items    []reportItem
}

// NewReport returns an empty resolution report.
func NewReport() *Report {
	return &Report{}
}

func (r *Report) addAttempt(a Attempt) {
	r.attempts = append(r.attempts, a)
}

func (r *Report) addUnresolved(kind Kind, raw string) {
	r.items = append(r.items, reportItem{text: unresolvedLabel(kind) + raw})
}

func (r *Report) addSuggestion(kind Kind, raw, matchedKey string) {
	text := fmt.Sprintf("Suggestion: %s '%s' -> '%s'", kind, raw, matchedKey)
	r.items = append(r.items, reportItem{text: text, suggestion: true})
}

// Attempts returns every recorded attempt in encounter order.
func (r *Report) Attempts() []Attempt {
	out := make([]Attempt, len(r.attempts))
	copy(out, r.attempts)
	return out
}

// Items returns unresolved entries and suggestions in encounter order.
func (r *Report) Items() []string {
	out := make([]string, 0, len(r.items))
	for _, it := range r.items {
		out = append(out, it.text)
	}
	return out
}

// Unresolved returns only the unresolved entries, without suggestions.
func (r *Report) Unresolved() []string {
	var out []string
	for _, it := range r.items {
		if !it.suggestion {
			out = append(out, it.text)
		}
	}
	return out
}

// HasUnresolved reports whether any sheet or header failed to resolve.
func (r *Report) HasUnresolved() bool {
	for _, it := range r.items {
		if !it.suggestion {
			return true
		}
	}
	return false
}

func unresolvedLabel(kind Kind) string {
	if kind == KindSheet {
		return "Sheet:"
	}
	return "Header:"
}
