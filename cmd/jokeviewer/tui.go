package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/jokeviewer/config"
	"github.com/dmitrymomot/jokeviewer/locales"
	"github.com/dmitrymomot/jokeviewer/pkg/i18n"
	"github.com/dmitrymomot/jokeviewer/pkg/logger"
	"github.com/dmitrymomot/jokeviewer/tui"
	"github.com/dmitrymomot/jokeviewer/viewer"
)

func newTUICmd(cfgPath *string) *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Start the terminal interface",
		Long: `Start the terminal interface.

Keys:
  up/down  choose a language
  enter    translate (or show the original)
  r        back to the original text
  m        more jokes
  q        quit

Logs go to log.file from the config, or nowhere when it is empty.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}

			var w io.Writer = io.Discard
			if cfg.Log.File != "" {
				f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				defer f.Close()
				w = f
			}
			log := newLogger(cfg, w)
			defer logger.Flush(2 * time.Second)

			svc, err := locales.New()
			if err != nil {
				return err
			}
			if lang == "" {
				lang = i18n.MatchLanguage(localeFromEnv(), svc.Languages())
			}
			tr := i18n.NewTranslator(svc, lang, locales.Namespace)

			st := newStack(cfg, log)
			defer st.query.Close()

			o := viewer.New("tui", st.query, st.source,
				append(viewerOptions(cfg), viewer.WithLogger(log))...,
			)
			defer o.Close()
			if err := o.Start(); err != nil {
				return err
			}
			log.Info("terminal viewer started", slog.String("ui_language", tr.Language()))

			return tui.Run(cmd.Context(), o, tr)
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "interface language (default from LC_ALL/LANG)")
	return cmd
}

// localeFromEnv turns a POSIX locale such as "ru_RU.UTF-8" into an
// Accept-Language style tag.
func localeFromEnv() string {
	for _, name := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		v := os.Getenv(name)
		if v == "" || v == "C" || v == "POSIX" {
			continue
		}
		v, _, _ = strings.Cut(v, ".")
		return strings.ReplaceAll(v, "_", "-")
	}
	return ""
}
