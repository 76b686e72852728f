package docgen

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
)

// AggregateResult carries the grouped rows plus the count of rows skipped
// for missing group keys.
type AggregateResult struct {
	Rows    []RowValues
	Skipped int
}

// Aggregate groups rows by the tuple of values in the key columns, in
// insertion order of first occurrence. Declared numeric columns are summed
// within each group; every other column takes the first occurrence's value.
// A row missing any key column is skipped and counted, never fatal. Sums
// round once, at the final value, to the given decimal precision, so totals
// are invariant under permutation of the input rows.
func Aggregate(rows []RowValues, keyColumns, numericColumns []string, precision int) *AggregateResult {
	numeric := make(map[string]bool, len(numericColumns))
	for _, id := range numericColumns {
		numeric[id] = true
	}

	type group struct {
		first RowValues
		sums  map[string]float64
	}
	result := &AggregateResult{}
	groups := make(map[string]*group)
	var order []string

	for _, row := range rows {
		key, ok := groupKey(row, keyColumns)
		if !ok {
			result.Skipped++
			continue
		}
		g, exists := groups[key]
		if !exists {
			g = &group{first: row, sums: make(map[string]float64, len(numericColumns))}
			groups[key] = g
			order = append(order, key)
		}
		for _, id := range numericColumns {
			n, _ := toNumber(row[id])
			g.sums[id] += n
		}
	}

	for _, key := range order {
		g := groups[key]
		out := make(RowValues, len(g.first)+len(numericColumns))
		for id, v := range g.first {
			if !numeric[id] {
				out[id] = v
			}
		}
		for _, id := range numericColumns {
			out[id] = roundTo(g.sums[id], precision)
		}
		result.Rows = append(result.Rows, out)
	}
	return result
}

// groupKey builds the group key tuple. A key column that is absent, nil,
// or blank makes the whole row key missing.
func groupKey(row RowValues, keyColumns []string) (string, bool) {
	parts := make([]string, 0, len(keyColumns))
	for _, id := range keyColumns {
		v, ok := row[id]
		if !ok || v == nil {
			return "", false
		}
		s := strings.TrimSpace(formatValue(v))
		if s == "" {
			return "", false
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "\x1f"), true
}

var arithmeticPattern = regexp.MustCompile(`^[0-9.\s()+\-*/]+$`)

// toNumber coerces a cell value to float64. Strings parse after comma
// removal; strings shaped like plain arithmetic ("2.5*1.2*0.8", the usual
// form of dimension cells) are evaluated. Everything else counts as 0.
func toNumber(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(val), ",", "")
		if s == "" {
			return 0, false
		}
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return n, true
		}
		return evalArithmetic(s)
	default:
		return 0, false
	}
}

// evalArithmetic evaluates a digits-and-operators expression string. The
// pattern gate keeps label-ish strings away from the evaluator.
func evalArithmetic(s string) (float64, bool) {
	if !arithmeticPattern.MatchString(s) {
		return 0, false
	}
	program, err := expr.Compile(s)
	if err != nil {
		return 0, false
	}
	out, err := expr.Run(program, nil)
	if err != nil {
		return 0, false
	}
	switch n := out.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}

func roundTo(v float64, precision int) float64 {
	pow := math.Pow(10, float64(precision))
	return math.Round(v*pow) / pow
}
