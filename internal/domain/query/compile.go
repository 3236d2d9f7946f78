package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/kailas-cloud/archivist/internal/domain/catalog"
)

// Fallbacks for filter values that do not parse.
const (
	// NumericFallback replaces unparsable numeric values.
	NumericFallback = -1
	// ShortDateLayout renders dates the way the repository expects them.
	ShortDateLayout = "1/2/2006"
)

// DateFallback replaces unparsable date values (the zero time, 1/1/0001).
var DateFallback = time.Time{}

// Compile translates the selected filters of a category into a Request.
// It never fails: malformed numbers and dates degrade to their fallbacks and
// operators unknown to an attribute's type are ignored.
func Compile(c catalog.Category) *Request {
	req := NewRequest()

	for _, a := range c.Attributes {
		expr := compileAttribute(a)
		if expr == "" {
			continue
		}
		if a.Type.Name == catalog.FullText {
			req.SetFullText(expr)
			continue
		}
		req.AddIndex(a.Name, expr)
	}

	return req
}

func compileAttribute(a catalog.Attribute) string {
	if a.SelectedFilterType == nil {
		return ""
	}
	if strings.TrimSpace(a.FilterValue1) == "" && strings.TrimSpace(a.FilterValue2) == "" {
		return ""
	}
	op, ok := a.Type.Operator(a.SelectedFilterType.Name)
	if !ok {
		return ""
	}

	switch a.Type.Name {
	case catalog.Text:
		return expression(op.Slot(), a.FilterValue1, a.FilterValue2)
	case catalog.Date:
		return expression(op.Slot(), formatDate(a.FilterValue1), formatDate(a.FilterValue2))
	case catalog.Numeric:
		return expression(op.Slot(), formatNumber(a.FilterValue1), formatNumber(a.FilterValue2))
	case catalog.FullText:
		return a.FilterValue1
	}
	return ""
}

// expression renders one of the four structural operator slots.
func expression(slot catalog.Slot, v1, v2 string) string {
	switch slot {
	case catalog.SlotEquals:
		return v1
	case catalog.SlotGreater:
		return "Expression: > " + v1
	case catalog.SlotLess:
		return "Expression: < " + v1
	case catalog.SlotBetween:
		return fmt.Sprintf("Expression: ['%s','%s']", v1, v2)
	case catalog.SlotNone, catalog.SlotFullText:
	}
	return ""
}

// ParseDate parses a filter value leniently, falling back to DateFallback.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return DateFallback
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return DateFallback
	}
	return t
}

// ParseNumber parses a 32-bit integer filter value, falling back to NumericFallback.
func ParseNumber(s string) int {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return NumericFallback
	}
	return int(n)
}

func formatDate(s string) string {
	return ParseDate(s).Format(ShortDateLayout)
}

func formatNumber(s string) string {
	return strconv.Itoa(ParseNumber(s))
}
