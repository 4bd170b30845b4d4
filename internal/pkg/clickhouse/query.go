package clickhouse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateTimeLayout is the textual form of a DateTime column.
const DateTimeLayout = "2006-01-02 15:04:05"

// Escape makes s safe to place between single quotes in a query.
// Backslashes are doubled before quotes so the quote escaping is never undone.
func Escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `''`)
}

// Value is a typed query argument. It can only be created through the
// constructors below, so free text always passes through Escape.
type Value interface {
	literal() string
}

type stringValue string

func (v stringValue) literal() string { return "'" + Escape(string(v)) + "'" }

type uintValue uint64

func (v uintValue) literal() string { return strconv.FormatUint(uint64(v), 10) }

type intValue int64

func (v intValue) literal() string { return strconv.FormatInt(int64(v), 10) }

type nullValue struct{}

func (nullValue) literal() string { return "NULL" }

// String binds free text as a quoted, escaped literal.
func String(s string) Value { return stringValue(s) }

// NullableString binds s, or NULL when s is nil.
func NullableString(s *string) Value {
	if s == nil {
		return nullValue{}
	}
	return stringValue(*s)
}

// UInt64 binds an unsigned integer.
func UInt64(v uint64) Value { return uintValue(v) }

// NullableUInt64 binds *v, or NULL when v is nil.
func NullableUInt64(v *uint64) Value {
	if v == nil {
		return nullValue{}
	}
	return uintValue(*v)
}

// Int binds a signed integer.
func Int(v int) Value { return intValue(v) }

// Null binds NULL.
func Null() Value { return nullValue{} }

// DateTime binds t, truncated to seconds, as 'YYYY-MM-DD HH:MM:SS' in UTC.
func DateTime(t time.Time) Value { return stringValue(t.UTC().Format(DateTimeLayout)) }

// Query is a fully rendered statement ready to be sent to the store.
type Query struct {
	text string
}

func (q Query) String() string {
	return q.text
}

// Build renders template, replacing each ? with the literal form of the next
// argument. Templates must not contain ? anywhere else.
func Build(template string, args ...Value) (Query, error) {
	var b strings.Builder
	b.Grow(len(template) + 16*len(args))

	n := 0
	for i := 0; i < len(template); i++ {
		c := template[i]
		if c != '?' {
			b.WriteByte(c)
			continue
		}
		if n >= len(args) {
			return Query{}, fmt.Errorf("%w: more than %d placeholders", ErrPlaceholderMismatch, len(args))
		}
		arg := args[n]
		if arg == nil {
			arg = nullValue{}
		}
		b.WriteString(arg.literal())
		n++
	}
	if n != len(args) {
		return Query{}, fmt.Errorf("%w: %d placeholders, %d arguments", ErrPlaceholderMismatch, n, len(args))
	}
	return Query{text: b.String()}, nil
}

// Placeholders returns n comma separated placeholders, for VALUES lists.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
