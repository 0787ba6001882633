package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spacesedan/confessit/config"
	"github.com/spacesedan/confessit/internal/clients"
	"github.com/spacesedan/confessit/internal/logging"
	"github.com/spacesedan/confessit/internal/models"
	"github.com/spacesedan/confessit/internal/processing"
	"github.com/spacesedan/confessit/internal/render"
	"github.com/spf13/cobra"
)

type options struct {
	file  string
	fetch bool
	limit int
	words int
}

type report struct {
	Results       models.ResultSet   `json:"results"`
	Summary       models.Summary     `json:"summary"`
	PositiveWords []models.WordCount `json:"positive_words"`
	NegativeWords []models.WordCount `json:"negative_words"`
}

type fetchFunc func(ctx context.Context, limit int) ([]models.Confession, error)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := options{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Score, tag and summarize confessions",
		Long: "Reads one confession per line from --file (or stdin), or fetches the most recent\n" +
			"confessions from the configured channel with --fetch, and prints the analysis as JSON.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := config.AppEnv()
			config.LoadEnv(env)
			// stdout carries the JSON report
			slog.SetDefault(logging.NewLogger(cmd.ErrOrStderr(), os.Getenv("LOG_LEVEL")))

			var fetch fetchFunc
			if opts.fetch {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				fetcher, closeFetcher, err := clients.NewFetcher(cfg)
				if err != nil {
					return err
				}
				defer closeFetcher()
				fetch = fetcher.Fetch
			}

			return run(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout(), fetch)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "-", "file with one confession per line, - for stdin")
	cmd.Flags().BoolVar(&opts.fetch, "fetch", false, "fetch confessions from the configured source instead of reading input")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", processing.MIN_FETCH_LIMIT,
		fmt.Sprintf("number of confessions to fetch (%d-%d)", processing.MIN_FETCH_LIMIT, processing.MAX_FETCH_LIMIT))
	cmd.Flags().IntVar(&opts.words, "words", 20, "number of words to list per sentiment bucket")

	return cmd
}

func run(ctx context.Context, opts options, stdin io.Reader, stdout io.Writer, fetch fetchFunc) error {
	confessions, err := loadConfessions(ctx, opts, stdin, fetch)
	if err != nil {
		return err
	}

	if len(confessions) == 0 {
		slog.Info("No confessions for analysis yet.")
		return nil
	}

	results := processing.Analyze(confessions)
	summary := processing.Summarize(results)

	out := report{
		Results:       results,
		Summary:       summary,
		PositiveWords: topWords(summary, models.SentimentPositive, opts.words),
		NegativeWords: topWords(summary, models.SentimentNegative, opts.words),
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func loadConfessions(ctx context.Context, opts options, stdin io.Reader, fetch fetchFunc) ([]models.Confession, error) {
	if opts.fetch {
		if fetch == nil {
			return nil, errors.New("no confession source configured")
		}
		confessions, err := fetch(ctx, opts.limit)
		if err != nil {
			return nil, err
		}
		slog.Info("Fetched confessions", slog.Int("count", len(confessions)))
		return confessions, nil
	}

	var r io.Reader = stdin
	if opts.file != "" && opts.file != "-" {
		f, err := os.Open(opts.file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return processing.ParseManualInput(string(raw)), nil
}

func topWords(summary models.Summary, label models.Sentiment, n int) []models.WordCount {
	words := render.BucketWords(summary, label)
	if len(words) > n {
		words = words[:n]
	}
	if words == nil {
		words = []models.WordCount{}
	}
	return words
}
