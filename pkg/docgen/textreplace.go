package docgen

import (
	"sort"
	"strings"
)

// Placeholder tokens recognized by the replacement processor.
const (
	TokenInvoiceNo       = "JFINV"
	TokenInvoiceDate     = "JFTIME"
	TokenReference       = "JFREF"
	TokenCustomerName    = "[[CUSTOMER_NAME]]"
	TokenCustomerAddress = "[[CUSTOMER_ADDRESS]]"
	TokenDescription     = "[[DESCRIPTION]]"
)

// Values supplies the replacement values for the placeholder classes.
// Tokens whose value is empty are left untouched in the text.
type Values struct {
	InvoiceNo       string
	InvoiceDate     string
	Reference       string
	CustomerName    string
	CustomerAddress string
	Description     string
	Custom          map[string]string
}

// Empty reports whether no replacement value is set.
func (v Values) Empty() bool {
	return v.InvoiceNo == "" && v.InvoiceDate == "" && v.Reference == "" &&
		v.CustomerName == "" && v.CustomerAddress == "" && v.Description == "" &&
		len(v.Custom) == 0
}

type replacement struct {
	token string
	value string
}

// segment is a piece of the working text. Literal segments came out of a
// substitution and are never re-scanned, which is the cycle guard: a value
// containing a placeholder token stays literal text.
type segment struct {
	text    string
	literal bool
}

// Replace substitutes placeholder tokens in class priority order: invoice
// identity tokens first, then the buyer block, then custom tokens, with
// the composite description token last so narrower placeholders inside
// descriptive text are never consumed early. Each class makes a single
// pass over the text.
func Replace(text string, vals Values) string {
	segments := []segment{{text: text}}
	for _, class := range placeholderClasses(vals) {
		segments = applyClass(segments, class)
	}
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.text)
	}
	return b.String()
}

func placeholderClasses(vals Values) [][]replacement {
	identity := []replacement{
		{TokenInvoiceNo, vals.InvoiceNo},
		{TokenInvoiceDate, vals.InvoiceDate},
		{TokenReference, vals.Reference},
	}
	buyer := []replacement{
		{TokenCustomerName, vals.CustomerName},
		{TokenCustomerAddress, vals.CustomerAddress},
	}

	keys := make([]string, 0, len(vals.Custom))
	for k := range vals.Custom {
		keys = append(keys, k)
	}
	// Longer tokens first so a token embedding another wins their shared
	// position.
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	custom := make([]replacement, 0, len(keys))
	for _, k := range keys {
		custom = append(custom, replacement{k, vals.Custom[k]})
	}

	description := []replacement{{TokenDescription, vals.Description}}
	return [][]replacement{identity, buyer, custom, description}
}

func applyClass(segments []segment, class []replacement) []segment {
	out := make([]segment, 0, len(segments))
	for _, seg := range segments {
		if seg.literal || seg.text == "" {
			out = append(out, seg)
			continue
		}
		out = append(out, splitSegment(seg.text, class)...)
	}
	return out
}

// splitSegment replaces every class token occurrence in one scannable
// segment, left to right.
func splitSegment(text string, class []replacement) []segment {
	var out []segment
	rest := text
	for {
		idx, match := nextToken(rest, class)
		if idx < 0 {
			break
		}
		if idx > 0 {
			out = append(out, segment{text: rest[:idx]})
		}
		out = append(out, segment{text: match.value, literal: true})
		rest = rest[idx+len(match.token):]
	}
	if rest != "" || len(out) == 0 {
		out = append(out, segment{text: rest})
	}
	return out
}

// nextToken finds the leftmost occurrence of any class token that has a
// value; class order breaks ties at the same position.
func nextToken(text string, class []replacement) (int, replacement) {
	best := -1
	var found replacement
	for _, rep := range class {
		if rep.token == "" || rep.value == "" {
			continue
		}
		idx := strings.Index(text, rep.token)
		if idx < 0 {
			continue
		}
		if best < 0 || idx < best {
			best = idx
			found = rep
		}
	}
	return best, found
}
