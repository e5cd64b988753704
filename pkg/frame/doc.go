// Package frame implements the RESP2 wire format used by rudis.
//
// A Frame is one decoded protocol message:
//
//   - Simple strings ("+OK")
//   - Errors ("-ERR ...")
//   - Integers (":42")
//   - Bulk strings ("$5\r\nhello")
//   - Null ("$-1")
//   - Arrays of frames ("*2\r\n...")
//
// Reader decodes whole frames from a byte stream and Writer encodes
// them back. Partial-frame buffering lives here and nowhere else.
package frame
