package sqlite

import "time"

// valueKind discriminates the storage-native types a parameter can bind as.
type valueKind int

const (
	kindNull valueKind = iota
	kindText
	kindInt
	kindBool
	kindBlob
)

// Value is one bindable SQL parameter as a tagged union over the storage
// native types (text, integer, boolean-as-integer, blob, null). Binding is
// explicit and exhaustive: every Value converts to a driver argument through
// arg, so heterogeneous parameter lists never rely on reflection.
type Value struct {
	kind valueKind
	text string
	num  int64
	flag bool
	blob []byte
}

// Null returns the SQL NULL value.
func Null() Value { return Value{kind: kindNull} }

// Text returns a text value.
func Text(s string) Value { return Value{kind: kindText, text: s} }

// NullableText returns a text value, or NULL when s is empty.
func NullableText(s string) Value {
	if s == "" {
		return Null()
	}
	return Text(s)
}

// Int returns an integer value.
func Int(n int64) Value { return Value{kind: kindInt, num: n} }

// Bool returns a boolean value, stored as integer 0 or 1.
func Bool(b bool) Value { return Value{kind: kindBool, flag: b} }

// Blob returns a binary value.
func Blob(b []byte) Value { return Value{kind: kindBlob, blob: b} }

// Time returns t formatted as RFC 3339 text, or NULL when t is the zero
// time. All timestamps in the store are persisted this way.
func Time(t time.Time) Value {
	if t.IsZero() {
		return Null()
	}
	return Text(t.UTC().Format(time.RFC3339))
}

// arg converts the value to its driver representation.
func (v Value) arg() any {
	switch v.kind {
	case kindText:
		return v.text
	case kindInt:
		return v.num
	case kindBool:
		if v.flag {
			return int64(1)
		}
		return int64(0)
	case kindBlob:
		return v.blob
	default:
		return nil
	}
}

// bindArgs converts a parameter list to driver arguments, preserving order.
func bindArgs(values []Value) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v.arg()
	}
	return args
}
