package repl

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

type recorder struct {
	calls [][]string
	err   error
}

func (r *recorder) exec(_ context.Context, args []string) error {
	r.calls = append(r.calls, args)
	return r.err
}

func newTestREPL(t *testing.T, input string, rec *recorder) (*REPL, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	history := NewHistoryFile(filepath.Join(t.TempDir(), "history"))
	return NewWithIO(rec.exec, strings.NewReader(input), out, history), out
}

func TestREPL_Run_Exit(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"exit command", "exit\n"},
		{"quit command", "QUIT\n"},
		{"EOF", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			r, _ := newTestREPL(t, tt.input, rec)
			if err := r.Run(context.Background()); err != nil {
				t.Errorf("Run() error = %v", err)
			}
			if len(rec.calls) != 0 {
				t.Errorf("executor called %d times, want 0", len(rec.calls))
			}
		})
	}
}

func TestREPL_Run_EmptyLines(t *testing.T) {
	rec := &recorder{}
	r, out := newTestREPL(t, "\n\n\nexit\n", rec)

	if err := r.Run(context.Background()); err != nil {
		t.Errorf("Run() error = %v", err)
	}
	if prompts := strings.Count(out.String(), Prompt); prompts != 4 {
		t.Errorf("prompts = %d, want 4", prompts)
	}
	if len(rec.calls) != 0 {
		t.Errorf("executor called %d times, want 0", len(rec.calls))
	}
}

func TestREPL_Run_Executes(t *testing.T) {
	rec := &recorder{}
	r, _ := newTestREPL(t, "set greeting \"hello world\"\n  get greeting  \nexit\n", rec)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := [][]string{
		{"set", "greeting", "hello world"},
		{"get", "greeting"},
	}
	if !slices.EqualFunc(rec.calls, want, slices.Equal[[]string]) {
		t.Errorf("calls = %q, want %q", rec.calls, want)
	}
	if r.history.Get(1) != "get greeting" {
		t.Errorf("history not trimmed: %q", r.history.Get(1))
	}
}

func TestREPL_Run_LastLineWithoutNewline(t *testing.T) {
	rec := &recorder{}
	r, _ := newTestREPL(t, "get key", rec)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(rec.calls) != 1 {
		t.Errorf("executor called %d times, want 1", len(rec.calls))
	}
}

func TestREPL_Run_ErrorsContinue(t *testing.T) {
	rec := &recorder{err: errors.New("boom")}
	r, out := newTestREPL(t, "get a\nset k \"open\nget b\n", rec)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(rec.calls) != 2 {
		t.Errorf("executor called %d times, want 2", len(rec.calls))
	}
	if c := strings.Count(out.String(), "(error) boom"); c != 2 {
		t.Errorf("error lines = %d, want 2; output:\n%s", c, out.String())
	}
	if !strings.Contains(out.String(), "(error) unterminated quote") {
		t.Errorf("missing quote error; output:\n%s", out.String())
	}
}

func TestREPL_Run_Help(t *testing.T) {
	rec := &recorder{}
	r, out := newTestREPL(t, "help\n", rec)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "  subscribe\n") {
		t.Errorf("help output missing subscribe:\n%s", out.String())
	}
}

func TestREPL_Run_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &recorder{}
	r, _ := newTestREPL(t, "get a\n", rec)

	if err := r.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestREPL_SavesHistory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "history")
	rec := &recorder{}
	r := NewWithIO(rec.exec, strings.NewReader("get a\nexit\n"), &bytes.Buffer{}, NewHistoryFile(file))

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	h := NewHistoryFile(file)
	if err := h.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if h.Get(0) != "exit" || h.Get(1) != "get a" {
		t.Errorf("saved history = %q", h.entries)
	}
}
