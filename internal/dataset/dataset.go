package dataset

import (
	"math"
	"regexp"
	"strconv"
)

// Kind is the inferred physical type of a column.
type Kind int

const (
	KindString Kind = iota
	KindInt64
	KindDouble
	KindBoolean
)

func (k Kind) String() string {
	switch k {
	case KindInt64:
		return "int64"
	case KindDouble:
		return "double"
	case KindBoolean:
		return "boolean"
	default:
		return "string"
	}
}

// Column holds the raw cell text of one CSV column. An empty string is null.
type Column struct {
	Name   string
	Values []string
}

// Dataset is an ordered collection of equally sized columns.
type Dataset struct {
	Columns []*Column
}

func (d *Dataset) NumRows() int {
	if d == nil || len(d.Columns) == 0 {
		return 0
	}
	return len(d.Columns[0].Values)
}

func (d *Dataset) Names() []string {
	names := make([]string, 0, len(d.Columns))
	for _, c := range d.Columns {
		names = append(names, c.Name)
	}
	return names
}

// Kind infers the narrowest type every non-null value fits: int64, then double,
// then boolean, else string. An all-null column is a string column.
func (c *Column) Kind() Kind {
	isInt, isFloat, isBool := true, true, true
	seen := false

	for _, v := range c.Values {
		if v == "" {
			continue
		}
		seen = true
		if isInt {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, ok := parseDouble(v); !ok {
				isFloat = false
			}
		}
		if isBool {
			if _, ok := parseBool(v); !ok {
				isBool = false
			}
		}
		if !isInt && !isFloat && !isBool {
			return KindString
		}
	}

	switch {
	case !seen:
		return KindString
	case isInt:
		return KindInt64
	case isFloat:
		return KindDouble
	case isBool:
		return KindBoolean
	default:
		return KindString
	}
}

// parseBool accepts the spellings a CSV export typically produces, and nothing
// else ("1"/"0" stay integers).
func parseBool(v string) (bool, bool) {
	switch v {
	case "true", "True", "TRUE":
		return true, true
	case "false", "False", "FALSE":
		return false, true
	}
	return false, false
}

// decimalRe is plain decimal notation. ParseFloat alone also takes hex floats,
// underscore separators and Inf/NaN spellings, which are text in a CSV cell.
var decimalRe = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

func parseDouble(v string) (float64, bool) {
	if !decimalRe.MatchString(v) {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
