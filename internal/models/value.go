package models

import "reflect"

// ValueKind tags the shape held by a FilterValue
type ValueKind int

const (
	ValueUnset ValueKind = iota
	ValueScalar
	ValueRange
	ValueList
)

func (k ValueKind) String() string {
	switch k {
	case ValueScalar:
		return "scalar"
	case ValueRange:
		return "range"
	case ValueList:
		return "list"
	default:
		return "unset"
	}
}

// FilterValue is the operand of a condition. Its shape depends on the operator:
// a scalar for comparisons and substring tests, a [lo, hi] pair for between,
// and a list for in/not_in.
type FilterValue struct {
	Kind   ValueKind
	Scalar any
	Range  [2]any
	List   []any
}

// Unset returns the null value
func Unset() FilterValue {
	return FilterValue{}
}

// Scalar wraps a single comparison operand
func Scalar(v any) FilterValue {
	return FilterValue{Kind: ValueScalar, Scalar: v}
}

// Between wraps an inclusive-or-exclusive range pair, depending on column type
func Between(lo, hi any) FilterValue {
	return FilterValue{Kind: ValueRange, Range: [2]any{lo, hi}}
}

// List wraps a membership set
func List(values ...any) FilterValue {
	if values == nil {
		values = []any{}
	}
	return FilterValue{Kind: ValueList, List: values}
}

// IsEmpty reports whether the value is null or an empty list.
// Empty values are not folded into the condition tree.
func (v FilterValue) IsEmpty() bool {
	return v.Kind == ValueUnset || (v.Kind == ValueList && len(v.List) == 0)
}

// Raw returns the untyped form used on the wire
func (v FilterValue) Raw() any {
	switch v.Kind {
	case ValueScalar:
		return v.Scalar
	case ValueRange:
		return []any{v.Range[0], v.Range[1]}
	case ValueList:
		return v.List
	default:
		return nil
	}
}

// ValueFor builds a FilterValue from an untyped operand, using op to pick the
// shape. Slices become a range for between only when they hold exactly two
// elements; any other slice is kept as a list so a malformed between fails closed.
func ValueFor(op Operator, raw any) FilterValue {
	if raw == nil {
		return Unset()
	}
	if fv, ok := raw.(FilterValue); ok {
		return fv
	}
	items, ok := toSlice(raw)
	if !ok {
		return Scalar(raw)
	}
	if op == OpBetween && len(items) == 2 {
		return Between(items[0], items[1])
	}
	return List(items...)
}

func toSlice(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	// []byte is a scalar string, not a list
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
