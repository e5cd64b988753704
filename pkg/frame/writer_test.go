package frame

import (
	"bytes"
	"errors"
	"testing"
)

func TestWriteFrame(t *testing.T) {
	tests := []struct {
		name string
		in   Frame
		want string
	}{
		{name: "simple", in: Simple("OK"), want: "+OK\r\n"},
		{name: "error", in: Error("ERR unknown command 'foo'"), want: "-ERR unknown command 'foo'\r\n"},
		{name: "integer", in: Integer(3), want: ":3\r\n"},
		{name: "bulk", in: BulkString("world"), want: "$5\r\nworld\r\n"},
		{name: "nil bulk is empty", in: Bulk(nil), want: "$0\r\n\r\n"},
		{name: "null", in: Null(), want: "$-1\r\n"},
		{name: "command", in: Command("GET", "k"), want: "*2\r\n$3\r\nGET\r\n$1\r\nk\r\n"},
		{name: "empty array", in: Array(), want: "*0\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := NewWriter(&buf)
			if err := w.WriteFrame(tt.in); err != nil {
				t.Fatalf("WriteFrame() error = %v", err)
			}
			if err := w.Flush(); err != nil {
				t.Fatalf("Flush() error = %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("wire = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteFrame_UnknownKind(t *testing.T) {
	w := NewWriter(&bytes.Buffer{})
	if err := w.WriteFrame(Frame{}); !errors.Is(err, ErrProtocol) {
		t.Errorf("WriteFrame(zero) error = %v, want ErrProtocol", err)
	}
}

func TestFrame_Push(t *testing.T) {
	f := Array()
	f.Push(BulkString("a"))
	f.Push(Integer(1))
	if len(f.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(f.Items))
	}
	if f.IsError() {
		t.Error("array should not be an error")
	}
	if !Error("x").IsError() {
		t.Error("Error frame should report IsError")
	}
}
