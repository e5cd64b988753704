package output

import (
	"fmt"
	"io"
	"strings"
)

// Format represents the output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
	}
}

// Formatter formats data for output.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// NewFormatter creates a formatter for the given format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &TextFormatter{}
	}
}

// Value is the result of GET. Value is nil when the key is absent.
type Value struct {
	Key   string  `json:"key" yaml:"key"`
	Value *string `json:"value" yaml:"value"`
}

// Status is a simple status reply such as OK.
type Status struct {
	Status string `json:"status" yaml:"status"`
}

// Published is the result of PUBLISH.
type Published struct {
	Channel   string `json:"channel" yaml:"channel"`
	Receivers int64  `json:"receivers" yaml:"receivers"`
}

// Message is a message received by a subscriber.
type Message struct {
	Channel string `json:"channel" yaml:"channel"`
	Content string `json:"content" yaml:"content"`
}
