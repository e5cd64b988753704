package frame

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestReadFrame_Types(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		kind  Kind
	}{
		{name: "simple", input: "+OK\r\n", want: "OK", kind: KindSimple},
		{name: "error", input: "-ERR boom\r\n", want: "error: ERR boom", kind: KindError},
		{name: "integer", input: ":42\r\n", want: "42", kind: KindInteger},
		{name: "negative integer", input: ":-7\r\n", want: "-7", kind: KindInteger},
		{name: "bulk", input: "$5\r\nhello\r\n", want: `"hello"`, kind: KindBulk},
		{name: "empty bulk", input: "$0\r\n\r\n", want: `""`, kind: KindBulk},
		{name: "null bulk", input: "$-1\r\n", want: "(nil)", kind: KindNull},
		{name: "null array", input: "*-1\r\n", want: "(nil)", kind: KindNull},
		{name: "array", input: "*2\r\n$3\r\nGET\r\n$3\r\nkey\r\n", want: `["GET" "key"]`, kind: KindArray},
		{name: "nested array", input: "*2\r\n:1\r\n*1\r\n+x\r\n", want: "[1 [x]]", kind: KindArray},
		{name: "inline", input: "SET a b\r\n", want: `["SET" "a" "b"]`, kind: KindArray},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewReader(strings.NewReader(tt.input)).ReadFrame()
			if err != nil {
				t.Fatalf("ReadFrame() error = %v", err)
			}
			if f.Kind != tt.kind {
				t.Errorf("Kind = %s, want %s", f.Kind, tt.kind)
			}
			if got := f.String(); got != tt.want {
				t.Errorf("String() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestReadFrame_Sequence(t *testing.T) {
	r := NewReader(strings.NewReader("+A\r\n:1\r\n"))

	f, err := r.ReadFrame()
	if err != nil || f.Str != "A" {
		t.Fatalf("first frame = %v, %v", f, err)
	}
	f, err = r.ReadFrame()
	if err != nil || f.Int != 1 {
		t.Fatalf("second frame = %v, %v", f, err)
	}
	if _, err := r.ReadFrame(); !errors.Is(err, io.EOF) {
		t.Errorf("third ReadFrame() error = %v, want io.EOF", err)
	}
}

func TestReadFrame_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{name: "truncated bulk", input: "$5\r\nhel", want: io.ErrUnexpectedEOF},
		{name: "truncated array", input: "*2\r\n$1\r\na\r\n", want: io.ErrUnexpectedEOF},
		{name: "bad bulk terminator", input: "$1\r\nabc", want: ErrProtocol},
		{name: "bad integer", input: ":abc\r\n", want: ErrProtocol},
		{name: "bad array length", input: "*x\r\n", want: ErrProtocol},
		{name: "negative bulk length", input: "$-5\r\n", want: ErrProtocol},
		{name: "missing CR", input: "+OK\n", want: ErrProtocol},
		{name: "array too long", input: "*99999\r\n", want: ErrLimitExceeded},
		{name: "bulk too long", input: "$99999999\r\n", want: ErrLimitExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader(strings.NewReader(tt.input)).ReadFrame()
			if !errors.Is(err, tt.want) {
				t.Errorf("ReadFrame() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestReadFrame_DepthLimit(t *testing.T) {
	input := strings.Repeat("*1\r\n", MaxDepth+2) + ":1\r\n"
	_, err := NewReader(strings.NewReader(input)).ReadFrame()
	if !errors.Is(err, ErrLimitExceeded) {
		t.Errorf("ReadFrame() error = %v, want ErrLimitExceeded", err)
	}
}

func TestWriteThenRead(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	in := Array(Simple("OK"), Error("ERR x"), Integer(-3), BulkString("v"), Null(), Array())
	if err := w.WriteFrame(in); err != nil {
		t.Fatalf("WriteFrame() error = %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	out, err := NewReader(&buf).ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	if out.String() != in.String() {
		t.Errorf("round trip = %s, want %s", out, in)
	}
}
