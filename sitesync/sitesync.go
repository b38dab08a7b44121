// Package sitesync fills the translation gaps of a Hugo site: it loads the
// site layout from Hugo, indexes every page by translation key and asks a
// translator for each missing (page, language) pair.
package sitesync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/minios-linux/hugo-translate/config"
	"github.com/minios-linux/hugo-translate/gap"
	"github.com/minios-linux/hugo-translate/i18n"
	"github.com/minios-linux/hugo-translate/mdfile"
	"github.com/minios-linux/hugo-translate/translate"
)

// ErrNoTranslationPossible is returned for a site with fewer than two languages.
var ErrNoTranslationPossible = errors.New("no translation possible: the site needs at least two languages")

// Options configures a run.
type Options struct {
	// Root is the site root passed to Hugo with -s.
	Root string
	// IncludeDrafts makes draft pages translation sources.
	IncludeDrafts bool
	// Runner invokes Hugo. Nil means config.ExecRunner{}.
	Runner config.Runner
	// Translator produces the translated paths and bodies.
	Translator translate.Translator
	// Logger receives progress messages.
	Logger zerolog.Logger
}

// Report summarizes a run.
type Report struct {
	// Written lists the destinations written, in order.
	Written []string
	// Failed counts the pairs dropped on a backend or write failure.
	Failed int
	// SkippedDrafts counts draft pages that were not used as sources.
	SkippedDrafts int
	// Rejected counts Markdown files without a usable translationKey.
	Rejected int
	// Aborted is set when the operator stopped the run.
	Aborted bool
}

// Run translates every page missing from a language of the site at
// opts.Root. Failures of a single file or pair are logged, counted in the
// report and skipped; configuration errors and cancellation end the run.
func Run(ctx context.Context, opts Options) (*Report, error) {
	if opts.Translator == nil {
		return nil, errors.New("no translator configured")
	}
	runner := opts.Runner
	if runner == nil {
		runner = config.ExecRunner{}
	}
	log := opts.Logger

	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving site root: %w", err)
	}

	site, err := config.Load(ctx, runner, root)
	if err != nil {
		return nil, fmt.Errorf("loading site configuration: %w", err)
	}
	if site.Languages.Len() < 2 {
		return nil, ErrNoTranslationPossible
	}
	log.Info().Strs("languages", site.Languages.IDs()).Msgf("Site <%s>", root)

	drafts := config.Drafts{}
	if !opts.IncludeDrafts {
		if drafts, err = config.ListDrafts(ctx, runner, root); err != nil {
			return nil, fmt.Errorf("listing drafts: %w", err)
		}
	}

	scan, err := gap.ScanSite(site, drafts, log)
	if err != nil {
		return nil, err
	}
	tasks, err := gap.Plan(site, scan)
	if err != nil {
		return nil, err
	}

	report := &Report{SkippedDrafts: scan.Drafts, Rejected: scan.Rejected}
	log.Debug().Int("keys", scan.Index.Len()).Int("sources", len(scan.Sources)).Int("tasks", len(tasks)).Msg("Planned")

	w := newWriter(scan.Index)
	bodies := make(map[string]source)
	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		src, ok := bodies[task.Source.Path]
		if !ok {
			src, err = readSource(task.Source.Path)
			bodies[task.Source.Path] = src
			if err != nil {
				log.Warn().Err(err).Msgf("Skipping <%s>", task.Source.Path)
			}
		}
		if src.err != nil {
			continue
		}

		log.Info().Msgf("Translating %s from '%s' to '%s'…", task.RelPath, task.From.ID, task.To.ID)
		dest, err := translateTask(ctx, opts.Translator, w, task, src)
		switch {
		case err == nil:
			report.Written = append(report.Written, dest)
			log.Info().Msgf("Wrote <%s>", dest)
		case errors.Is(err, translate.ErrAborted):
			report.Aborted = true
			log.Warn().Msg(i18n.T("Translation aborted by the operator"))
			return report, nil
		case ctx.Err() != nil:
			return report, ctx.Err()
		default:
			report.Failed++
			log.Error().Err(err).Str("from", task.From.ID).Str("to", task.To.ID).Msgf("Failed to translate <%s>", task.Source.Path)
		}
	}
	return report, nil
}

type source struct {
	body string
	hash string
	err  error
}

func readSource(path string) (source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		err = &mdfile.ReadError{Path: path, Err: err}
		return source{err: err}, err
	}
	body := string(data)
	return source{body: body, hash: mdfile.Hash(body)}, nil
}

// translateTask fills one gap and returns the written destination.
func translateTask(ctx context.Context, tr translate.Translator, w *writer, task gap.Task, src source) (string, error) {
	rel, err := tr.TranslatePath(ctx, task.RelPath, task.From.ID, task.To.ID)
	if err != nil {
		return "", err
	}
	dest, err := w.destination(task.To.ContentDir, rel)
	if err != nil {
		return "", err
	}
	body, err := tr.TranslateContent(ctx, src.body, task.From.ID, task.To.ID, src.hash)
	if err != nil {
		return "", err
	}
	if err := w.write(dest, body); err != nil {
		return "", err
	}
	return dest, nil
}
