package frame

import (
	"strconv"
	"strings"
)

// Kind identifies the type of a Frame.
type Kind uint8

const (
	KindSimple Kind = iota + 1
	KindError
	KindInteger
	KindBulk
	KindNull
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindSimple:
		return "simple"
	case KindError:
		return "error"
	case KindInteger:
		return "integer"
	case KindBulk:
		return "bulk"
	case KindNull:
		return "null"
	case KindArray:
		return "array"
	default:
		return "unknown(" + strconv.Itoa(int(k)) + ")"
	}
}

// Frame is a single RESP message.
//
// Only the field matching Kind is meaningful: Str for Simple and Error,
// Int for Integer, Bulk for Bulk, Items for Array.
type Frame struct {
	Kind  Kind
	Str   string
	Int   int64
	Bulk  []byte
	Items []Frame
}

// Simple returns a simple string frame.
func Simple(s string) Frame { return Frame{Kind: KindSimple, Str: s} }

// Error returns an error frame.
func Error(msg string) Frame { return Frame{Kind: KindError, Str: msg} }

// Integer returns an integer frame.
func Integer(n int64) Frame { return Frame{Kind: KindInteger, Int: n} }

// Bulk returns a bulk string frame. A nil slice is still a bulk
// (empty string), use Null for absent values.
func Bulk(b []byte) Frame {
	if b == nil {
		b = []byte{}
	}
	return Frame{Kind: KindBulk, Bulk: b}
}

// BulkString returns a bulk frame holding s.
func BulkString(s string) Frame { return Bulk([]byte(s)) }

// Null returns the null frame.
func Null() Frame { return Frame{Kind: KindNull} }

// Array returns an array frame of items.
func Array(items ...Frame) Frame {
	if items == nil {
		items = []Frame{}
	}
	return Frame{Kind: KindArray, Items: items}
}

// Command builds a request array of bulk strings, the shape every
// client request takes on the wire.
func Command(args ...string) Frame {
	items := make([]Frame, 0, len(args))
	for _, a := range args {
		items = append(items, BulkString(a))
	}
	return Array(items...)
}

// Push appends item to an array frame.
func (f *Frame) Push(item Frame) {
	f.Items = append(f.Items, item)
}

// IsError reports whether f is an error frame.
func (f Frame) IsError() bool { return f.Kind == KindError }

// String renders f for logs. It is not the wire encoding.
func (f Frame) String() string {
	switch f.Kind {
	case KindSimple:
		return f.Str
	case KindError:
		return "error: " + f.Str
	case KindInteger:
		return strconv.FormatInt(f.Int, 10)
	case KindBulk:
		return strconv.Quote(string(f.Bulk))
	case KindNull:
		return "(nil)"
	case KindArray:
		parts := make([]string, 0, len(f.Items))
		for _, it := range f.Items {
			parts = append(parts, it.String())
		}
		return "[" + strings.Join(parts, " ") + "]"
	default:
		return f.Kind.String()
	}
}
