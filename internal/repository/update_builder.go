package repository

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// field pairs a column name with an optional value for a partial UPDATE.
type field struct {
	column string
	value  any
}

// buildSet assembles the SET clause and ordered args for the fields whose
// value is present. Positional placeholders start at $1; callers append
// their own trailing args (the WHERE id) after.
func buildSet(fields ...field) (string, []any) {
	var set []string
	var args []any
	for _, f := range fields {
		v, ok := presentValue(f.value)
		if !ok {
			continue
		}
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", f.column, len(args)))
	}
	return strings.Join(set, ", "), args
}

func presentValue(v any) (any, bool) {
	switch t := v.(type) {
	case *string:
		if t == nil {
			return nil, false
		}
		return *t, true
	case *int:
		if t == nil {
			return nil, false
		}
		return *t, true
	case *int64:
		if t == nil {
			return nil, false
		}
		return *t, true
	case *bool:
		if t == nil {
			return nil, false
		}
		return *t, true
	case *decimal.Decimal:
		if t == nil {
			return nil, false
		}
		return *t, true
	case []string:
		if t == nil {
			return nil, false
		}
		return t, true
	default:
		return nil, false
	}
}
