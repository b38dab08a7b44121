package translate

import (
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/minios-linux/hugo-translate/settings"
)

// Options selects and configures a backend.
type Options struct {
	// DryRun selects the dry-run backend; it wins over Auto.
	DryRun bool
	// Auto selects the Assistants API backend instead of the manual one.
	Auto bool

	// PollInterval and MaxWait tune the automatic backend.
	PollInterval time.Duration
	MaxWait      time.Duration
	// HTTPClient overrides the automatic backend HTTP client.
	HTTPClient *http.Client

	// Stdin and Stdout override the manual backend terminal.
	Stdin  io.Reader
	Stdout io.Writer
	// Clipboard overrides the manual backend clipboard.
	Clipboard Clipboard
}

// New returns the backend chosen by opts: dry-run, else automatic, else
// manual. Credentials come from env.
func New(opts Options, env *settings.Env, log zerolog.Logger) (Translator, error) {
	if opts.DryRun {
		return DryRun{}, nil
	}

	if opts.Auto {
		key, err := env.RequireAPIKey()
		if err != nil {
			return nil, err
		}
		model, defaulted := env.Model()
		if defaulted {
			log.Info().Msgf("%s is not set, using '%s'", settings.EnvAPIModel, model)
		}
		log.Debug().Str("key", settings.MaskKey(key)).Str("base_url", env.BaseURL).Msg("Using Assistants API")
		return NewAuto(AutoConfig{
			BaseURL:      env.BaseURL,
			APIKey:       key,
			Model:        model,
			Description:  env.AssistantDescription,
			PollInterval: opts.PollInterval,
			MaxWait:      opts.MaxWait,
			HTTPClient:   opts.HTTPClient,
			Logger:       log,
		}), nil
	}

	generator, err := env.RequireChatModel()
	if err != nil {
		return nil, err
	}
	var mopts []ManualOption
	if opts.Stdin != nil && opts.Stdout != nil {
		mopts = append(mopts, WithTerminal(opts.Stdin, opts.Stdout))
	}
	if opts.Clipboard != nil {
		mopts = append(mopts, WithClipboard(opts.Clipboard))
	}
	return NewManual(generator, mopts...), nil
}
