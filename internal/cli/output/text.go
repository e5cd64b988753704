package output

import (
	"fmt"
	"io"
	"strconv"
)

// TextFormatter formats results the way redis-cli prints them.
type TextFormatter struct{}

// Format writes data as one line of text.
func (f *TextFormatter) Format(w io.Writer, data any) error {
	var err error
	switch v := data.(type) {
	case Value:
		if v.Value == nil {
			_, err = fmt.Fprintln(w, "(nil)")
		} else {
			_, err = fmt.Fprintln(w, strconv.Quote(*v.Value))
		}
	case Status:
		_, err = fmt.Fprintln(w, v.Status)
	case Published:
		_, err = fmt.Fprintf(w, "(integer) %d\n", v.Receivers)
	case Message:
		_, err = fmt.Fprintf(w, "%s: %s\n", v.Channel, strconv.Quote(v.Content))
	case fmt.Stringer:
		_, err = fmt.Fprintln(w, v.String())
	default:
		_, err = fmt.Fprintf(w, "%+v\n", v)
	}
	return err
}
