// Package console provides the line-oriented boundary between the player and
// the mission control session.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// ErrInputClosed is returned when the input stream ends before an answer is read.
var ErrInputClosed = errors.New("console input closed")

// Prompter asks a question and returns the raw answer line. Ask gives up
// with ctx.Err() when ctx is done before a line arrives.
type Prompter interface {
	Ask(ctx context.Context, question string) (string, error)
}

// Terminal is what missions and the session talk to: prompts plus plain output.
type Terminal interface {
	io.Writer
	Prompter
}

type line struct {
	text string
	err  error
}

// Console is a Terminal over a reader and a writer, usually stdin and stdout.
// Lines are read by a single background goroutine so a blocked read never
// holds up cancellation.
type Console struct {
	in    io.Reader
	out   io.Writer
	lines chan line
	start sync.Once
}

// New creates a Console reading lines from r and writing to w.
func New(r io.Reader, w io.Writer) *Console {
	return &Console{
		in:    r,
		out:   w,
		lines: make(chan line),
	}
}

// Write implements io.Writer.
func (c *Console) Write(p []byte) (int, error) {
	return c.out.Write(p)
}

// Ask prints the question on its own line and waits for one line of input
// with the trailing newline removed. A line that arrives after ctx is done is
// kept for the next Ask.
func (c *Console) Ask(ctx context.Context, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := fmt.Fprintln(c.out, question); err != nil {
		return "", fmt.Errorf("writing prompt: %w", err)
	}

	c.start.Do(func() { go c.readLines() })

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l, ok := <-c.lines:
		if !ok {
			return "", ErrInputClosed
		}
		return l.text, l.err
	}
}

func (c *Console) readLines() {
	defer close(c.lines)

	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		c.lines <- line{text: strings.TrimRight(scanner.Text(), "\r")}
	}
	if err := scanner.Err(); err != nil {
		c.lines <- line{err: fmt.Errorf("reading answer: %w", err)}
	}
}
