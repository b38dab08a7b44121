package translate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Defaults of the automatic backend.
const (
	DefaultPollInterval = time.Second
	DefaultMaxWait      = 10 * time.Minute
)

// assistantInstructions are given to the assistant created for a run.
const assistantInstructions = "You translate files of a Hugo static site between languages. " +
	"Answer with the requested translation only, without any comment or explanation."

// AutoConfig configures an Auto translator.
type AutoConfig struct {
	// BaseURL is the API root (e.g. https://api.openai.com/v1).
	BaseURL string
	// APIKey authenticates requests.
	APIKey string
	// Model is the assistant model, also reported as Generator().
	Model string
	// Description is the assistant description.
	Description string
	// PollInterval is the delay between run status checks.
	PollInterval time.Duration
	// MaxWait bounds how long a single run may take.
	MaxWait time.Duration
	// HTTPClient overrides the default HTTP client.
	HTTPClient *http.Client
	// Logger receives progress messages.
	Logger zerolog.Logger
}

// Auto translates through an OpenAI-compatible Assistants API. One
// assistant and one thread are created on first use and reused for the
// rest of the run.
type Auto struct {
	client       *assistantsClient
	model        string
	description  string
	pollInterval time.Duration
	maxWait      time.Duration
	log          zerolog.Logger

	mu          sync.Mutex
	assistantID string
	threadID    string
}

// NewAuto returns an Auto translator.
func NewAuto(cfg AutoConfig) *Auto {
	a := &Auto{
		client:       newAssistantsClient(cfg.BaseURL, cfg.APIKey, cfg.HTTPClient),
		model:        cfg.Model,
		description:  cfg.Description,
		pollInterval: cfg.PollInterval,
		maxWait:      cfg.MaxWait,
		log:          cfg.Logger,
	}
	if a.pollInterval <= 0 {
		a.pollInterval = DefaultPollInterval
	}
	if a.maxWait <= 0 {
		a.maxWait = DefaultMaxWait
	}
	return a
}

func (a *Auto) Generator() string { return a.model }

func (a *Auto) TranslatePath(ctx context.Context, path, from, to string) (string, error) {
	answer, err := a.run(ctx, PathPrompt(path, from, to))
	return answer, backendErr("translating path", err)
}

func (a *Auto) TranslateContent(ctx context.Context, text, from, to, sourceHash string) (string, error) {
	answer, err := a.run(ctx, ContentPrompt(a.model, text, from, to, sourceHash))
	return answer, backendErr("translating content", err)
}

// session returns the assistant and thread, creating each at most once.
// A failed creation is not cached and is retried by the next call.
func (a *Auto) session(ctx context.Context) (assistantID, threadID string, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.assistantID == "" {
		id, err := a.client.createAssistant(ctx, assistantRequest{
			Model:        a.model,
			Description:  a.description,
			Instructions: assistantInstructions,
		})
		if err != nil {
			return "", "", err
		}
		a.assistantID = id
		a.log.Info().Str("assistant", id).Str("model", a.model).Msg("Created assistant")
	}
	if a.threadID == "" {
		id, err := a.client.createThread(ctx)
		if err != nil {
			return "", "", err
		}
		a.threadID = id
		a.log.Info().Str("thread", id).Msg("Created thread")
	}
	return a.assistantID, a.threadID, nil
}

// run posts prompt on the thread, runs the assistant and returns its answer.
func (a *Auto) run(ctx context.Context, prompt string) (string, error) {
	assistantID, threadID, err := a.session(ctx)
	if err != nil {
		return "", err
	}

	msgID, err := a.client.createMessage(ctx, threadID, prompt)
	if err != nil {
		return "", err
	}
	a.log.Debug().Str("message", msgID).Msg("Posted prompt")

	r, err := a.client.createRun(ctx, threadID, assistantID)
	if err != nil {
		return "", err
	}
	if err := a.waitRun(ctx, threadID, r); err != nil {
		return "", err
	}
	return a.client.runText(ctx, threadID, r.ID)
}

// waitRun polls a run until it completes, fails, or exceeds maxWait.
func (a *Auto) waitRun(ctx context.Context, threadID string, r *runObject) error {
	ctx, cancel := context.WithTimeout(ctx, a.maxWait)
	defer cancel()

	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()

	for {
		switch r.Status {
		case runCompleted:
			return nil
		case runQueued, runInProgress, runCancelling:
			a.log.Debug().Str("run", r.ID).Str("status", r.Status).Msg("Waiting for run")
		case runRequiresAction:
			return fmt.Errorf("run %s requires an action this tool cannot perform", r.ID)
		default:
			msg := ""
			if r.LastError != nil {
				msg = ": " + r.LastError.Message
			}
			return fmt.Errorf("run %s ended with status %q%s", r.ID, r.Status, msg)
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("%w after %s (run %s)", ErrRunTimeout, a.maxWait, r.ID)
			}
			return ctx.Err()
		case <-ticker.C:
		}

		next, err := a.client.retrieveRun(ctx, threadID, r.ID)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return fmt.Errorf("%w after %s (run %s)", ErrRunTimeout, a.maxWait, r.ID)
			}
			return err
		}
		r = next
	}
}
