package frame

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// Writer encodes frames onto a buffered stream. Callers must Flush.
type Writer struct {
	bw *bufio.Writer
}

// NewWriter wraps w. If w is already a *bufio.Writer it is used as is.
func NewWriter(w io.Writer) *Writer {
	bw, ok := w.(*bufio.Writer)
	if !ok {
		bw = bufio.NewWriter(w)
	}
	return &Writer{bw: bw}
}

// WriteFrame encodes f into the buffer.
func (w *Writer) WriteFrame(f Frame) error {
	switch f.Kind {
	case KindSimple:
		return w.line('+', f.Str)
	case KindError:
		return w.line('-', f.Str)
	case KindInteger:
		return w.line(':', strconv.FormatInt(f.Int, 10))
	case KindBulk:
		if err := w.line('$', strconv.Itoa(len(f.Bulk))); err != nil {
			return err
		}
		if _, err := w.bw.Write(f.Bulk); err != nil {
			return err
		}
		_, err := w.bw.WriteString("\r\n")
		return err
	case KindNull:
		_, err := w.bw.WriteString("$-1\r\n")
		return err
	case KindArray:
		if err := w.line('*', strconv.Itoa(len(f.Items))); err != nil {
			return err
		}
		for _, item := range f.Items {
			if err := w.WriteFrame(item); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: cannot encode frame kind %s", ErrProtocol, f.Kind)
	}
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.bw.Flush()
}

func (w *Writer) line(prefix byte, s string) error {
	if err := w.bw.WriteByte(prefix); err != nil {
		return err
	}
	if _, err := w.bw.WriteString(s); err != nil {
		return err
	}
	_, err := w.bw.WriteString("\r\n")
	return err
}
