package mapping

import "strings"

// matchHeaderPattern recognizes common structural variants of known header
// labels (punctuation and abbreviation differences). Rules are checked in
// order and the first hit wins. Sheet names have no pattern rules.
func matchHeaderPattern(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))

	switch {
	case strings.Contains(s, "mark") && containsAny(s, "nº", "n°", "note"):
		return "col_static", true
	case strings.Contains(s, "p.o") && containsAny(s, "nº", "n°", "no"):
		return "col_po", true
	case strings.Contains(s, "item") && containsAny(s, "nº", "n°"):
		return "col_item", true
	case containsAny(s, "description", "desc"):
		return "col_desc", true
	case containsAny(s, "quantity", "qty"):
		return "col_qty_sf", true
	case containsAny(s, "unit price", "unit_price", "price"):
		return "col_unit_price", true
	case containsAny(s, "amount", "total"):
		return "col_amount", true
	case strings.Contains(s, "n.w") && strings.Contains(s, "kg"):
		return "col_net", true
	case strings.Contains(s, "g.w") && strings.Contains(s, "kg"):
		return "col_gross", true
	case s == "cbm" || strings.Contains(s, "(cbm)"):
		return "col_cbm", true
	case s == "pcs":
		return "col_qty_pcs", true
	case s == "sf":
		return "col_qty_sf", true
	case containsAny(s, "hs code", "hscode"):
		return "col_hs_code", true
	}
	return "", false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
