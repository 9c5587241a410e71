// Command shortsearch runs one short-video search and writes the result as CSV.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"shorts-discovery/internal/discovery"
	"shorts-discovery/internal/platform/config"
	"shorts-discovery/internal/platform/logger"
	"shorts-discovery/internal/youtube"

	"github.com/spf13/cobra"
)

type options struct {
	window      string
	minViews    int64
	maxDuration string
	maxResults  int
	category    string
	region      string
	out         string
	logLevel    string
}

func main() {
	_ = config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := options{}
	cmd := &cobra.Command{
		Use:   "shortsearch [keyword]",
		Short: "Search popular YouTube shorts and export them as CSV",
		Long: `Search popular YouTube shorts ranked by view count and export them as CSV.

Examples:
  shortsearch
  shortsearch "cat" --window 7 --max-duration 60
  shortsearch "music" --region JP --min-views 1000000 --out music.csv`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			keyword := ""
			if len(args) == 1 {
				keyword = args[0]
			}
			err := run(cmd.Context(), keyword, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
			}
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.window, "window", "all", "upload window in days: 1, 3, 5, 7 or all")
	f.Int64Var(&opts.minViews, "min-views", discovery.DefaultMinViews, "minimum view count")
	f.StringVar(&opts.maxDuration, "max-duration", "all", "maximum duration in seconds or all")
	f.IntVar(&opts.maxResults, "max", discovery.DefaultMaxResults, "number of results")
	f.StringVar(&opts.category, "category", discovery.AllFilter, "category id or all")
	f.StringVar(&opts.region, "region", discovery.AllFilter, "region code or all")
	f.StringVarP(&opts.out, "out", "o", "", "CSV output file (stdout when empty)")
	f.StringVar(&opts.logLevel, "log-level", config.GetEnv("LOG_LEVEL", "warn"), "log level: debug, info, warn, error")
	return cmd
}

// buildRequest converts the command line into a search request.
func buildRequest(keyword string, opts options) (discovery.SearchRequest, error) {
	window, err := parseAllOr("window", opts.window)
	if err != nil {
		return discovery.SearchRequest{}, err
	}
	maxDuration, err := parseAllOr("max-duration", opts.maxDuration)
	if err != nil {
		return discovery.SearchRequest{}, err
	}
	return discovery.SearchRequest{
		Keyword:        keyword,
		CategoryFilter: opts.category,
		RegionFilter:   opts.region,
		Window:         discovery.Window(window),
		MinViews:       opts.minViews,
		MaxDuration:    maxDuration,
		MaxResults:     opts.maxResults,
	}.Normalize()
}

// parseAllOr parses a non-negative integer flag where "all" means zero.
func parseAllOr(flag, v string) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, discovery.AllFilter) {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("--%s must be a number or all, got %q", flag, v)
	}
	return n, nil
}

func run(ctx context.Context, keyword string, opts options, stdout, stderr io.Writer) error {
	log := logger.NewWithWriter(stderr, opts.logLevel, "text")

	req, err := buildRequest(keyword, opts)
	if err != nil {
		return err
	}

	client, err := youtube.NewClient(ctx, youtube.Config{
		APIKey:  config.GetEnv("YOUTUBE_API_KEY", ""),
		Timeout: config.GetEnvDuration("YOUTUBE_TIMEOUT", youtube.DefaultTimeout),
		MaxRPS:  config.GetEnvFloat("YOUTUBE_MAX_RPS", 0),
	})
	if err != nil {
		return err
	}

	svc := discovery.NewService(client, discovery.NewQuotaLedger(nil), discovery.NewInMemoryResultRepository(), log,
		discovery.WithCategoryRegion(config.GetEnv("CATEGORY_REGION", discovery.DefaultCategoryRegion)))
	return searchAndExport(ctx, svc, req, opts.out, stdout, stderr)
}

// searchAndExport runs the search and writes the CSV to out, or to stdout when out is empty.
func searchAndExport(ctx context.Context, svc *discovery.Service, req discovery.SearchRequest, out string, stdout, stderr io.Writer) error {
	res, err := svc.Search(ctx, req)
	if err != nil {
		return err
	}
	if res.Message != "" {
		fmt.Fprintln(stderr, res.Message)
	}
	q := res.Quota
	fmt.Fprintf(stderr, "found %d videos; quota used %d units (%.1f%%), %d remaining, about %d searches left\n",
		res.TotalResults, q.CurrentCost, q.QuotaPercentage, q.RemainingQuota, q.EstimatedSearchesLeft)

	last, err := svc.LastResult()
	if errors.Is(err, discovery.ErrNothingToExport) {
		fmt.Fprintln(stderr, "no videos matched, nothing written")
		return nil
	}
	if err != nil {
		return err
	}

	w := stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}
		defer f.Close()
		w = f
	}
	if err := discovery.WriteCSV(w, last.Videos); err != nil {
		return err
	}
	if out != "" {
		fmt.Fprintf(stderr, "wrote %s (suggested name %s)\n", out, discovery.ExportFilename(last.Request, svc.Now()))
	}
	return nil
}
