// hugo-translate: fills the translation gaps of a multilingual Hugo site with
// a chat model, either by hand through the clipboard or through the OpenAI
// Assistants API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/minios-linux/hugo-translate/config"
	"github.com/minios-linux/hugo-translate/i18n"
	"github.com/minios-linux/hugo-translate/logging"
	"github.com/minios-linux/hugo-translate/settings"
	"github.com/minios-linux/hugo-translate/sitesync"
	"github.com/minios-linux/hugo-translate/translate"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

type rootArgs struct {
	root         string
	dryRun       bool
	auto         bool
	drafts       bool
	verbose      bool
	envFile      string
	hugo         string
	maxWait      time.Duration
	pollInterval time.Duration
}

func newRootCmd() *cobra.Command {
	var a rootArgs

	root := &cobra.Command{
		Use:   "hugo-translate",
		Short: "Translate the pages missing from each language of a Hugo site",
		Long: `hugo-translate: fill the translation gaps of a multilingual Hugo site.

Pages are grouped by the translationKey of their front matter. Every page
that is not a draft is translated into each configured language that has no
page with the same key yet.

Backends:
  manual (default)  prompts go through the clipboard to any chat assistant;
                    OPENAI_CHAT_MODEL names it in the generated front matter
  --auto            OpenAI Assistants API; needs OPENAI_API_KEY, and reads
                    OPENAI_API_MODEL, OPENAI_ASSISTANT_DESCRIPTION, OPENAI_BASE_URL
  --dry-run         writes nothing

Variables are also read from a .env file in the working directory.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd.Context(), a)
		},
	}

	f := root.Flags()
	f.StringVar(&a.root, "root", "", "Hugo site root directory")
	f.BoolVar(&a.dryRun, "dry-run", false, "Plan translations without calling a model or writing files")
	f.BoolVar(&a.auto, "auto", false, "Translate through the OpenAI Assistants API")
	f.BoolVar(&a.drafts, "drafts", false, "Translate draft pages too")
	f.BoolVar(&a.verbose, "verbose", false, "Enable debug logging")
	f.StringVar(&a.envFile, "env", settings.DefaultDotEnv, "Environment file to load")
	f.StringVar(&a.hugo, "hugo", config.DefaultHugoBinary, "Hugo executable")
	f.DurationVar(&a.maxWait, "max-wait", translate.DefaultMaxWait, "Maximum duration of one assistant run")
	f.DurationVar(&a.pollInterval, "poll-interval", translate.DefaultPollInterval, "Delay between assistant run status checks")
	_ = root.MarkFlagRequired("root")

	root.AddCommand(newVersionCmd())

	return root
}

func main() {
	i18n.Init("")

	if err := newRootCmd().Execute(); err != nil {
		log := logging.New(os.Stderr, false)
		log.Error().Msg(err.Error())
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "hugo-translate version %s\n", version)
			fmt.Fprintf(out, "  commit:    %s\n", commit)
			fmt.Fprintf(out, "  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// translate (the root command itself)
// ---------------------------------------------------------------------------

func runTranslate(parent context.Context, a rootArgs) error {
	if parent == nil {
		parent = context.Background()
	}
	log := logging.New(os.Stderr, a.verbose)

	loaded, err := settings.LoadDotEnv(a.envFile)
	if err != nil {
		return err
	}
	if loaded {
		log.Debug().Msgf("Loaded environment from <%s>", a.envFile)
	}
	env, err := settings.Load()
	if err != nil {
		return err
	}

	tr, err := translate.New(translate.Options{
		DryRun:       a.dryRun,
		Auto:         a.auto,
		PollInterval: a.pollInterval,
		MaxWait:      a.maxWait,
	}, env, log)
	if err != nil {
		return err
	}
	log.Debug().Str("generator", tr.Generator()).Msg("Translator ready")

	// Setup signal handling for graceful cancellation
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn().Msg("Interrupted, pages already written are kept")
			cancel()
		case <-ctx.Done():
		}
	}()

	report, err := sitesync.Run(ctx, sitesync.Options{
		Root:          a.root,
		IncludeDrafts: a.drafts,
		Runner:        config.ExecRunner{Binary: a.hugo},
		Translator:    tr,
		Logger:        log,
	})
	if err != nil {
		return err
	}

	logSummary(log, report)
	return nil
}

func logSummary(log zerolog.Logger, r *sitesync.Report) {
	for _, line := range summaryLines(r) {
		log.Info().Msg(line)
	}
}

// summaryLines renders the end-of-run report for the operator.
func summaryLines(r *sitesync.Report) []string {
	if len(r.Written) == 0 && r.Failed == 0 {
		if r.Aborted {
			return nil
		}
		return []string{i18n.T("Nothing to translate")}
	}

	lines := []string{
		i18n.N("%d translation written", "%d translations written", len(r.Written), len(r.Written)),
	}
	if r.Failed > 0 {
		lines = append(lines, i18n.N("%d translation failed", "%d translations failed", r.Failed, r.Failed))
	}
	return lines
}
