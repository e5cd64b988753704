package frame

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Protocol limits to prevent DoS attacks.
const (
	// MaxArrayLen limits the number of elements in a RESP array.
	MaxArrayLen = 1024

	// MaxBulkLen limits the size of a single bulk string (512KB).
	MaxBulkLen = 512 * 1024

	// MaxInlineLen limits inline command line length (4KB).
	MaxInlineLen = 4 * 1024

	// MaxDepth limits array nesting.
	MaxDepth = 8

	// maxHeaderLen bounds type-prefixed header lines such as "*3" or "$12".
	maxHeaderLen = 64
)

var (
	ErrProtocol      = errors.New("frame: protocol error")
	ErrLimitExceeded = errors.New("frame: limit exceeded")
)

// Reader decodes frames from a buffered byte stream.
type Reader struct {
	br *bufio.Reader
}

// NewReader wraps r. If r is already a *bufio.Reader it is used as is.
func NewReader(r io.Reader) *Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Reader{br: br}
}

// ReadFrame reads the next complete frame.
//
// It returns io.EOF only when the stream ends cleanly between frames;
// a stream that ends inside a frame yields io.ErrUnexpectedEOF.
func (r *Reader) ReadFrame() (Frame, error) {
	b, err := r.br.Peek(1)
	if err != nil {
		return Frame{}, err
	}

	switch b[0] {
	case '*', '+', '-', ':', '$':
		f, err := r.readFrame(0)
		return f, unexpected(err)
	default:
		f, err := r.readInline()
		return f, unexpected(err)
	}
}

// readInline handles the telnet-style form: "SET key value\r\n".
func (r *Reader) readInline() (Frame, error) {
	line, err := readLine(r.br, MaxInlineLen)
	if err != nil {
		return Frame{}, err
	}
	parts := strings.Fields(line)
	items := make([]Frame, 0, len(parts))
	for _, p := range parts {
		items = append(items, BulkString(p))
	}
	return Array(items...), nil
}

func (r *Reader) readFrame(depth int) (Frame, error) {
	if depth > MaxDepth {
		return Frame{}, fmt.Errorf("%w: nesting deeper than %d", ErrLimitExceeded, MaxDepth)
	}

	line, err := readLine(r.br, maxHeaderLen)
	if err != nil {
		return Frame{}, err
	}
	if line == "" {
		return Frame{}, fmt.Errorf("%w: empty line", ErrProtocol)
	}

	body := line[1:]
	switch line[0] {
	case '+':
		return Simple(body), nil
	case '-':
		return Error(body), nil
	case ':':
		n, err := strconv.ParseInt(body, 10, 64)
		if err != nil {
			return Frame{}, fmt.Errorf("%w: invalid integer %q", ErrProtocol, body)
		}
		return Integer(n), nil
	case '$':
		return r.readBulk(body)
	case '*':
		return r.readArray(body, depth)
	default:
		return Frame{}, fmt.Errorf("%w: invalid frame type byte %q", ErrProtocol, line[0])
	}
}

func (r *Reader) readBulk(header string) (Frame, error) {
	n, err := strconv.Atoi(header)
	if err != nil {
		return Frame{}, fmt.Errorf("%w: invalid bulk length", ErrProtocol)
	}
	if n == -1 {
		return Null(), nil
	}
	if n < 0 {
		return Frame{}, fmt.Errorf("%w: invalid bulk length", ErrProtocol)
	}
	if n > MaxBulkLen {
		return Frame{}, fmt.Errorf("%w: bulk length %d exceeds limit %d", ErrLimitExceeded, n, MaxBulkLen)
	}

	buf := make([]byte, n+2)
	if _, err := io.ReadFull(r.br, buf); err != nil {
		return Frame{}, err
	}
	if !bytes.HasSuffix(buf, []byte("\r\n")) {
		return Frame{}, fmt.Errorf("%w: invalid bulk terminator", ErrProtocol)
	}
	return Bulk(buf[:n]), nil
}

func (r *Reader) readArray(header string, depth int) (Frame, error) {
	n, err := strconv.Atoi(header)
	if err != nil {
		return Frame{}, fmt.Errorf("%w: invalid array length", ErrProtocol)
	}
	if n == -1 {
		return Null(), nil
	}
	if n < 0 {
		return Frame{}, fmt.Errorf("%w: invalid array length", ErrProtocol)
	}
	if n > MaxArrayLen {
		return Frame{}, fmt.Errorf("%w: array length %d exceeds limit %d", ErrLimitExceeded, n, MaxArrayLen)
	}

	items := make([]Frame, 0, n)
	for i := 0; i < n; i++ {
		item, err := r.readFrame(depth + 1)
		if err != nil {
			return Frame{}, err
		}
		items = append(items, item)
	}
	return Array(items...), nil
}

func readLine(r *bufio.Reader, maxLen int) (string, error) {
	var buf []byte
	for {
		frag, err := r.ReadSlice('\n')
		if err == nil {
			buf = append(buf, frag...)
			break
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			buf = append(buf, frag...)
			if len(buf) > maxLen {
				return "", fmt.Errorf("%w: line length exceeds limit %d", ErrLimitExceeded, maxLen)
			}
			continue
		}
		return "", err
	}

	if len(buf) > maxLen+2 {
		return "", fmt.Errorf("%w: line length exceeds limit %d", ErrLimitExceeded, maxLen)
	}
	if len(buf) < 2 || !bytes.HasSuffix(buf, []byte("\r\n")) {
		return "", fmt.Errorf("%w: missing CRLF", ErrProtocol)
	}

	return string(buf[:len(buf)-2]), nil
}

// unexpected maps an EOF seen after the first byte of a frame.
func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
