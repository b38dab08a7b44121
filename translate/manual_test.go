package translate

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

// fakeClipboard simulates an operator: every prompt written to it is
// replaced by the next canned answer once read back.
type fakeClipboard struct {
	written  []string
	answers  []string
	content  string
	writeErr error
}

func (c *fakeClipboard) WriteAll(text string) error {
	if c.writeErr != nil {
		return c.writeErr
	}
	c.written = append(c.written, text)
	c.content = text
	return nil
}

func (c *fakeClipboard) ReadAll() (string, error) {
	if len(c.answers) > 0 {
		c.content, c.answers = c.answers[0], c.answers[1:]
	}
	return c.content, nil
}

func TestManual_RoundTrip(t *testing.T) {
	clip := &fakeClipboard{answers: []string{"articles/bonjour.md", "---\ntitle: Bonjour\n---\n"}}
	var out bytes.Buffer
	m := NewManual("ChatGPT 4", WithClipboard(clip), WithTerminal(strings.NewReader("\n\n"), &out))

	path, err := m.TranslatePath(context.Background(), "posts/hello.md", "en", "fr")
	if err != nil {
		t.Fatalf("TranslatePath() error: %v", err)
	}
	if path != "articles/bonjour.md" {
		t.Errorf("path = %q", path)
	}

	body, err := m.TranslateContent(context.Background(), "---\ntitle: Hello\n---\n", "en", "fr", "h1")
	if err != nil {
		t.Fatalf("TranslateContent() error: %v", err)
	}
	if body != "---\ntitle: Bonjour\n---\n" {
		t.Errorf("body = %q", body)
	}

	if len(clip.written) != 2 {
		t.Fatalf("prompts written = %d, want 2", len(clip.written))
	}
	if clip.written[0] != PathPrompt("posts/hello.md", "en", "fr") {
		t.Errorf("first prompt = %q", clip.written[0])
	}
	if !strings.Contains(clip.written[1], `translator: "ChatGPT 4"`) {
		t.Errorf("content prompt should name the generator: %q", clip.written[1])
	}
	if strings.Count(out.String(), "\n") != 2 {
		t.Errorf("expected one instruction line per call, got %q", out.String())
	}
}

func TestManual_EOFAborts(t *testing.T) {
	clip := &fakeClipboard{}
	m := NewManual("ChatGPT", WithClipboard(clip), WithTerminal(strings.NewReader(""), &bytes.Buffer{}))

	_, err := m.TranslatePath(context.Background(), "a.md", "en", "fr")
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("error = %v, want ErrAborted", err)
	}
	var be *BackendError
	if errors.As(err, &be) {
		t.Error("abort must not be reported as a backend failure")
	}
}

func TestManual_ClipboardFailure(t *testing.T) {
	clip := &fakeClipboard{writeErr: errors.New("no display")}
	m := NewManual("ChatGPT", WithClipboard(clip), WithTerminal(strings.NewReader("\n"), &bytes.Buffer{}))

	_, err := m.TranslatePath(context.Background(), "a.md", "en", "fr")
	var be *BackendError
	if !errors.As(err, &be) {
		t.Fatalf("error = %v, want BackendError", err)
	}
	if !strings.Contains(err.Error(), "no display") {
		t.Errorf("error = %v", err)
	}
}

func TestManual_CancelledContext(t *testing.T) {
	clip := &fakeClipboard{}
	m := NewManual("ChatGPT", WithClipboard(clip), WithTerminal(strings.NewReader("\n"), &bytes.Buffer{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.TranslatePath(ctx, "a.md", "en", "fr")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if len(clip.written) != 0 {
		t.Error("clipboard must not be touched after cancellation")
	}
}

func TestManual_CancelWhileWaitingForOperator(t *testing.T) {
	clip := &fakeClipboard{answers: []string{"bonjour.md"}}
	stdin, operator := io.Pipe()
	defer operator.Close()
	m := NewManual("ChatGPT", WithClipboard(clip), WithTerminal(stdin, &bytes.Buffer{}))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := m.TranslatePath(ctx, "a.md", "en", "fr")
		errCh <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("TranslatePath() still waiting for Enter after cancellation")
	}

	// The interrupted read is reused: one Enter confirms the next round trip.
	go operator.Write([]byte("\n"))
	path, err := m.TranslatePath(context.Background(), "a.md", "en", "fr")
	if err != nil {
		t.Fatalf("TranslatePath() after cancellation error: %v", err)
	}
	if path != "bonjour.md" {
		t.Errorf("path = %q", path)
	}
}
