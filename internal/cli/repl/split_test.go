package repl

import (
	"errors"
	"slices"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"words", "set hello world", []string{"set", "hello", "world"}},
		{"extra spaces", "  get \t key  ", []string{"get", "key"}},
		{"double quotes", `set greeting "hello world"`, []string{"set", "greeting", "hello world"}},
		{"single quotes", `publish news 'a "quoted" word'`, []string{"publish", "news", `a "quoted" word`}},
		{"escape in double quotes", `set k "a\"b"`, []string{"set", "k", `a"b`}},
		{"empty quoted", `set k ""`, []string{"set", "k", ""}},
		{"adjacent quote", `set k ab"cd"`, []string{"set", "k", "abcd"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Split(tt.line)
			if err != nil {
				t.Fatalf("Split(%q) error = %v", tt.line, err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Split(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestSplit_Unterminated(t *testing.T) {
	for _, line := range []string{`set k "abc`, `set k 'abc`, `set k "abc\`} {
		if _, err := Split(line); !errors.Is(err, ErrUnterminatedQuote) {
			t.Errorf("Split(%q) error = %v, want ErrUnterminatedQuote", line, err)
		}
	}
}
