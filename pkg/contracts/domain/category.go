package domain

import (
	"math"
	"strconv"
	"strings"
)

// CategoryKind classifies the scalar held by a Category
type CategoryKind int

const (
	CategoryBlank CategoryKind = iota
	CategoryNumber
	CategoryText
)

// String returns the kind name used in logs
func (k CategoryKind) String() string {
	switch k {
	case CategoryBlank:
		return "blank"
	case CategoryNumber:
		return "number"
	case CategoryText:
		return "text"
	default:
		return "unknown"
	}
}

// Category is a single value read from the target column of an incident row.
// Years and months arrive as numbers, operator names as text. Equality is by
// value: numbers compare numerically, text compares by its exact raw content.
type Category struct {
	Kind   CategoryKind
	Raw    string
	Number float64
}

// ParseCategory classifies the raw value of a cell that is not stored as a
// string. The text is kept verbatim so that operator names stay case and
// whitespace sensitive.
func ParseCategory(raw string) Category {
	if raw == "" {
		return Category{Kind: CategoryBlank}
	}
	// Numbers are recognised only when the cell has no surrounding spaces,
	// otherwise " 2010" and "2010" would collapse and hide dirty input.
	if strings.TrimSpace(raw) == raw {
		if n, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsInf(n, 0) && !math.IsNaN(n) {
			return Category{Kind: CategoryNumber, Raw: raw, Number: n}
		}
	}
	return Category{Kind: CategoryText, Raw: raw}
}

// TextCategory builds a text category without numeric detection
func TextCategory(s string) Category {
	if s == "" {
		return Category{Kind: CategoryBlank}
	}
	return Category{Kind: CategoryText, Raw: s}
}

// NumberCategory builds a numeric category
func NumberCategory(n float64) Category {
	return Category{Kind: CategoryNumber, Raw: strconv.FormatFloat(n, 'f', -1, 64), Number: n}
}

// Key returns the equality key of the category. Two categories are equal
// exactly when their keys are equal.
func (c Category) Key() string {
	switch c.Kind {
	case CategoryBlank:
		return "b:"
	case CategoryNumber:
		n := c.Number
		if n == 0 {
			n = 0 // -0
		}
		return "n:" + strconv.FormatFloat(n, 'g', -1, 64)
	default:
		return "t:" + c.Raw
	}
}

// Equal reports whether two categories hold the same value
func (c Category) Equal(other Category) bool {
	return c.Key() == other.Key()
}

// Less orders blanks first, then numbers ascending, then text by byte order
func (c Category) Less(other Category) bool {
	if c.Kind != other.Kind {
		return c.Kind < other.Kind
	}
	switch c.Kind {
	case CategoryNumber:
		return c.Number < other.Number
	case CategoryText:
		return c.Raw < other.Raw
	default:
		return false
	}
}

// String renders the category for chart labels and CSV output
func (c Category) String() string {
	switch c.Kind {
	case CategoryBlank:
		return ""
	case CategoryNumber:
		if c.Number == math.Trunc(c.Number) && math.Abs(c.Number) < 1e15 {
			return strconv.FormatInt(int64(c.Number), 10)
		}
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	default:
		return c.Raw
	}
}

// CellValue returns the value to store in a worksheet cell: integral numbers
// as int so chart axes show "2010" rather than "2010.0", blanks as nil.
func (c Category) CellValue() interface{} {
	switch c.Kind {
	case CategoryBlank:
		return nil
	case CategoryNumber:
		if c.Number == math.Trunc(c.Number) && math.Abs(c.Number) < 1e15 {
			return int64(c.Number)
		}
		return c.Number
	default:
		return c.Raw
	}
}

// Contains reports whether the category's text contains substr
func (c Category) Contains(substr string) bool {
	if c.Kind == CategoryBlank {
		return false
	}
	return strings.Contains(c.Raw, substr)
}
