package docconfig

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// InvalidColumnReferenceError reports a column reference that cannot be
// resolved to a position inside the sheet.
type InvalidColumnReferenceError struct {
	Ref    string
	Sheet  string
	Reason string
}

func (e *InvalidColumnReferenceError) Error() string {
	return fmt.Sprintf("invalid column reference %q on sheet %q: %s", e.Ref, e.Sheet, e.Reason)
}

// ColumnRef addresses a column either by canonical column id or by raw
// 0-based index. The variant is decided once when the config is parsed,
// never re-inspected at use sites. A numeric string counts as an index.
type ColumnRef struct {
	id       string
	index    int
	isIndex  bool
	asString bool
}

// ColumnID returns a reference by canonical column id.
func ColumnID(id string) ColumnRef {
	return ColumnRef{id: id}
}

// ColumnIndex returns a reference by raw 0-based index.
func ColumnIndex(index int) ColumnRef {
	return ColumnRef{index: index, isIndex: true}
}

// ParseColumnRef interprets a bare string the way the config decoders do:
// a numeric string is a raw 0-based index, anything else a column id.
func ParseColumnRef(s string) ColumnRef {
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return ColumnRef{index: n, isIndex: true, asString: true}
	}
	return ColumnRef{id: s}
}

// IsIndex reports whether the reference is a raw index.
func (c ColumnRef) IsIndex() bool {
	return c.isIndex
}

// String renders the reference the way it appeared in the config.
func (c ColumnRef) String() string {
	if c.isIndex {
		return strconv.Itoa(c.index)
	}
	return c.id
}

func (c *ColumnRef) fromValue(v interface{}) error {
	switch val := v.(type) {
	case float64:
		if val != float64(int(val)) {
			return fmt.Errorf("column reference must be an integer, got %v", val)
		}
		c.index = int(val)
		c.isIndex = true
	case int:
		c.index = val
		c.isIndex = true
	case string:
		*c = ParseColumnRef(val)
	default:
		return fmt.Errorf("column reference must be a string or integer, got %T", v)
	}
	return nil
}

func (c *ColumnRef) UnmarshalJSON(raw []byte) error {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	return c.fromValue(v)
}

func (c ColumnRef) MarshalJSON() ([]byte, error) {
	if c.isIndex && !c.asString {
		return json.Marshal(c.index)
	}
	return json.Marshal(c.String())
}

func (c *ColumnRef) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var v interface{}
	if err := unmarshal(&v); err != nil {
		return err
	}
	return c.fromValue(v)
}

func (c ColumnRef) MarshalYAML() (interface{}, error) {
	if c.isIndex && !c.asString {
		return c.index, nil
	}
	return c.String(), nil
}

// ResolveColumn turns a reference into a 1-based column position on the
// given sheet. Raw indices are 0-based, so index k lands on position k+1.
// Canonical ids are looked up in the sheet's column definitions. Every
// field holding a ColumnRef resolves through this one function.
func ResolveColumn(ref ColumnRef, sheet *SheetConfig, sheetName string) (int, error) {
	width := sheet.Width()

	var position int
	if ref.isIndex {
		position = ref.index + 1
	} else {
		pos, ok := sheet.ColumnPosition(ref.id)
		if !ok {
			return 0, &InvalidColumnReferenceError{Ref: ref.String(), Sheet: sheetName, Reason: "unknown column id"}
		}
		position = pos
	}

	if position < 1 || position > width {
		return 0, &InvalidColumnReferenceError{
			Ref:    ref.String(),
			Sheet:  sheetName,
			Reason: fmt.Sprintf("position %d outside sheet width %d", position, width),
		}
	}
	return position, nil
}
