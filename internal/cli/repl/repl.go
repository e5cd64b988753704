package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// Prompt is printed before each input line.
const Prompt = "rudis> "

// Executor runs one command line split into words.
type Executor func(ctx context.Context, args []string) error

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	completer *Completer
	history   *History
	exec      Executor
}

// New creates a REPL reading stdin and writing stdout.
func New(exec Executor) *REPL {
	return NewWithIO(exec, os.Stdin, os.Stdout, NewHistory())
}

// NewWithIO creates a REPL over the given streams and history.
func NewWithIO(exec Executor, in io.Reader, out io.Writer, history *History) *REPL {
	return &REPL{
		input:     in,
		output:    out,
		completer: NewCompleter(),
		history:   history,
		exec:      exec,
	}
}

// Run starts the REPL loop. It returns nil on exit, quit or end of
// input, and ctx.Err() when ctx is cancelled between commands.
func (r *REPL) Run(ctx context.Context) error {
	if err := r.history.Load(); err != nil {
		fmt.Fprintf(r.output, "warning: load history: %v\n", err)
	}
	defer r.history.Save()

	reader := bufio.NewReader(r.input)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(r.output, Prompt)

		line, err := reader.ReadString('\n')
		if err == io.EOF && line == "" {
			fmt.Fprintln(r.output)
			return nil
		}
		if err != nil && err != io.EOF {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		r.history.Add(line)

		switch strings.ToLower(line) {
		case "exit", "quit":
			return nil
		case "help":
			r.help()
			continue
		}

		if err := r.execute(ctx, line); err != nil {
			fmt.Fprintf(r.output, "(error) %v\n", err)
		}
	}
}

func (r *REPL) execute(ctx context.Context, line string) error {
	args, err := Split(line)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}
	return r.exec(ctx, args)
}

func (r *REPL) help() {
	fmt.Fprintln(r.output, "commands:")
	for _, cmd := range r.completer.Complete("") {
		fmt.Fprintf(r.output, "  %s\n", cmd)
	}
}
