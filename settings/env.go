// Package settings resolves the credentials and model settings of the
// translation backends from the process environment.
//
// A .env file in the working directory (or the one named by --env) is
// loaded first; variables already set in the environment take precedence
// over the file.
//
// Variables:
//   - OPENAI_API_KEY                API key, required by the automatic backend
//   - OPENAI_API_MODEL              assistant model (default gpt-3.5-turbo-1106)
//   - OPENAI_ASSISTANT_DESCRIPTION  assistant description (default "Test assistant")
//   - OPENAI_BASE_URL               OpenAI-compatible API root
//   - OPENAI_CHAT_MODEL             generator name of the manual backend, required by it
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Environment variable names.
const (
	EnvAPIKey               = "OPENAI_API_KEY"
	EnvAPIModel             = "OPENAI_API_MODEL"
	EnvAssistantDescription = "OPENAI_ASSISTANT_DESCRIPTION"
	EnvBaseURL              = "OPENAI_BASE_URL"
	EnvChatModel            = "OPENAI_CHAT_MODEL"
)

// DefaultModel is the assistant model used when OPENAI_API_MODEL is unset.
const DefaultModel = "gpt-3.5-turbo-1106"

// DefaultDotEnv is the file loaded when no other path is given.
const DefaultDotEnv = ".env"

// Env holds the decoded environment.
type Env struct {
	APIKey               string `envconfig:"OPENAI_API_KEY"`
	APIModel             string `envconfig:"OPENAI_API_MODEL"`
	AssistantDescription string `envconfig:"OPENAI_ASSISTANT_DESCRIPTION" default:"Test assistant"`
	BaseURL              string `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	ChatModel            string `envconfig:"OPENAI_CHAT_MODEL"`
}

// MissingCredentialError reports a required variable that is unset.
type MissingCredentialError struct {
	Name string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("the %s environment variable must be defined", e.Name)
}

// LoadDotEnv loads path into the environment without overriding variables
// that are already set. A missing file is not an error; loaded reports
// whether a file was read.
func LoadDotEnv(path string) (loaded bool, err error) {
	if path == "" {
		path = DefaultDotEnv
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("loading %s: %w", path, err)
	}
	return true, nil
}

// Load decodes the environment.
func Load() (*Env, error) {
	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	env.APIKey = strings.TrimSpace(env.APIKey)
	env.ChatModel = strings.TrimSpace(env.ChatModel)
	return &env, nil
}

// RequireAPIKey returns the API key of the automatic backend.
func (e *Env) RequireAPIKey() (string, error) {
	if e.APIKey == "" {
		return "", &MissingCredentialError{Name: EnvAPIKey}
	}
	return e.APIKey, nil
}

// RequireChatModel returns the generator name of the manual backend.
func (e *Env) RequireChatModel() (string, error) {
	if e.ChatModel == "" {
		return "", &MissingCredentialError{Name: EnvChatModel}
	}
	return e.ChatModel, nil
}

// Model returns the assistant model and whether the default was used.
func (e *Env) Model() (model string, defaulted bool) {
	if m := strings.TrimSpace(e.APIModel); m != "" {
		return m, false
	}
	return DefaultModel, true
}

// MaskKey returns a masked version of a key for display.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
