package translate

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/atotto/clipboard"

	"github.com/minios-linux/hugo-translate/i18n"
)

// Clipboard reads and writes the text clipboard.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

// systemClipboard is the desktop clipboard.
type systemClipboard struct{}

func (systemClipboard) ReadAll() (string, error)   { return clipboard.ReadAll() }
func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// Manual lets an operator translate with any chat assistant: the prompt is
// put in the clipboard, and once the operator confirms on stdin the answer
// is read back from the clipboard.
type Manual struct {
	generator string

	mu   sync.Mutex
	clip Clipboard
	in   *bufio.Reader
	out  io.Writer
	// pending receives the result of a confirmation read still in flight
	// after its caller was cancelled.
	pending chan error
}

// ManualOption configures a Manual translator.
type ManualOption func(*Manual)

// WithClipboard replaces the system clipboard.
func WithClipboard(c Clipboard) ManualOption {
	return func(m *Manual) { m.clip = c }
}

// WithTerminal sets where instructions are printed and confirmations read.
func WithTerminal(in io.Reader, out io.Writer) ManualOption {
	return func(m *Manual) {
		m.in = bufio.NewReader(in)
		m.out = out
	}
}

// NewManual returns a Manual translator whose answers are attributed to
// generator.
func NewManual(generator string, opts ...ManualOption) *Manual {
	m := &Manual{
		generator: generator,
		clip:      systemClipboard{},
		in:        bufio.NewReader(os.Stdin),
		out:       os.Stdout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manual) Generator() string { return m.generator }

func (m *Manual) TranslatePath(ctx context.Context, path, from, to string) (string, error) {
	answer, err := m.ask(ctx, PathPrompt(path, from, to))
	return answer, backendErr("translating path", err)
}

func (m *Manual) TranslateContent(ctx context.Context, text, from, to, sourceHash string) (string, error) {
	answer, err := m.ask(ctx, ContentPrompt(m.generator, text, from, to, sourceHash))
	return answer, backendErr("translating content", err)
}

// ask runs one clipboard round trip. The clipboard is shared process state,
// so round trips are serialized.
func (m *Manual) ask(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := m.clip.WriteAll(prompt); err != nil {
		return "", fmt.Errorf("writing clipboard: %w", err)
	}

	fmt.Fprintln(m.out, i18n.T("Paste the copied prompt into your chat assistant (it is already in your clipboard), copy the answer, come back and press [Enter]"))
	if err := m.waitConfirmation(ctx); err != nil {
		return "", err
	}

	answer, err := m.clip.ReadAll()
	if err != nil {
		return "", fmt.Errorf("reading clipboard: %w", err)
	}
	return answer, nil
}

// waitConfirmation waits for the operator to press Enter or for ctx to end.
// A read interrupted by ctx keeps running and is picked up by the next call,
// so the terminal is never read by two goroutines at once. Callers hold mu.
func (m *Manual) waitConfirmation(ctx context.Context) error {
	if m.pending == nil {
		done := make(chan error, 1)
		go func() {
			_, err := m.in.ReadString('\n')
			done <- err
		}()
		m.pending = done
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-m.pending:
		m.pending = nil
		switch {
		case errors.Is(err, io.EOF):
			return ErrAborted
		case err != nil:
			return fmt.Errorf("reading confirmation: %w", err)
		}
		return ctx.Err()
	}
}
