package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/maxvaer/apiprobe/internal/config"
	"github.com/maxvaer/apiprobe/internal/logging"
	"github.com/maxvaer/apiprobe/internal/metrics"
	"github.com/maxvaer/apiprobe/internal/output"
	"github.com/maxvaer/apiprobe/internal/scanner"
	"github.com/maxvaer/apiprobe/internal/wordlist"
	"github.com/maxvaer/apiprobe/pkg/version"
)

// stderr receives human-facing status output: banner, progress and the
// histogram table.
var stderr io.Writer = os.Stderr

// Run executes one probe run: every word of the list is appended to the base
// URL and requested once. Probe failures are recorded in the output, they
// never make Run return an error.
func Run(ctx context.Context, opts *config.Options, logger *slog.Logger) error {
	runID := uuid.NewString()
	logger = logging.OrDefault(logger).With("run", runID)

	// 1. Load wordlist.
	words, err := wordlist.Load(opts.WordlistPath)
	if err != nil {
		return fmt.Errorf("loading wordlist: %w", err)
	}

	// 2. Build the shared session.
	req, err := scanner.NewRequester(opts, logger)
	if err != nil {
		return fmt.Errorf("creating requester: %w", err)
	}

	baseURL := opts.BaseURL()
	batch := scanner.Batch{
		BaseURL: baseURL,
		Words:   words,
		Headers: opts.Headers,
		Timeout: opts.Timeout,
	}
	if len(words) > 0 {
		logger.Info("example url tested", "url", baseURL+words[0])
	}

	// 3. Metrics.
	rec := metrics.New()
	if opts.MetricsAddr != "" {
		srv, err := metrics.Serve(opts.MetricsAddr, rec, logger)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Close(shutdownCtx)
		}()
	}

	// 4. Output writer.
	path := resolveOutputPath(opts)
	out, err := createWriter(opts, path, words)
	if err != nil {
		return fmt.Errorf("creating output writer: %w", err)
	}
	defer out.Close()

	if err := out.WriteHeader(); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if !opts.Quiet {
		printBanner(opts, len(words))
	}

	// 5. Pause toggle and progress.
	gate, restore := startStdinToggle(opts.Quiet)
	defer restore()

	progress := output.NewProgress(stderr, len(words), opts.Quiet)
	progress.Start()
	startTime := time.Now()

	// A writer failure cancels the run; outstanding probes then fail fast.
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// OnResult runs on the collecting goroutine only.
	var writeErr error
	rec.Begin(len(words))
	results := scanner.Dispatch(runCtx, req, batch, scanner.WorkerConfig{
		Threads: opts.Threads,
		Gate:    gate,
		OnResult: func(r scanner.ScanResult) {
			progress.Increment(r.Failed())
			rec.Observe(r)
			if writeErr != nil {
				return
			}
			if err := out.WriteResult(&r); err != nil {
				writeErr = err
				cancel()
			}
		},
	})
	progress.Stop()

	if writeErr != nil {
		return fmt.Errorf("writing output: %w", writeErr)
	}

	// 6. Aggregate and summarize.
	hist := scanner.Aggregate(results)
	elapsed := time.Since(startTime)
	if gate != nil {
		elapsed -= gate.PausedDuration()
	}
	summary := output.Summary{
		RunID:         runID,
		BaseURL:       baseURL,
		TotalRequests: len(results),
		FailedCount:   hist[scanner.Failed],
		Histogram:     hist,
		Duration:      elapsed,
	}
	if elapsed.Seconds() > 0 {
		summary.RequestsPerSec = float64(len(results)) / elapsed.Seconds()
	}
	if err := out.WriteFooter(summary); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if ctx.Err() != nil {
		logger.Error("run interrupted, unfinished probes recorded as failed", "error", ctx.Err())
	}

	logger.Info("status histogram", "total", hist.Total(), "histogram", hist)

	if !opts.Quiet {
		if err := output.WriteHistogram(stderr, hist, opts.NoColor); err != nil {
			return err
		}
	}

	dest := path
	if dest == "" {
		dest = "stdout"
	}
	logger.Info("results written", "path", dest, "results", len(results), "failed", summary.FailedCount)
	return nil
}

// resolveOutputPath returns the file results are written to. "-" selects
// stdout, which is returned as the empty path.
func resolveOutputPath(opts *config.Options) string {
	switch opts.OutputFile {
	case "-":
		return ""
	case "":
		return output.DefaultPath(opts.BaseURL(), opts.WordlistPath, opts.OutputFormat)
	default:
		return opts.OutputFile
	}
}

func createWriter(opts *config.Options, path string, words []string) (output.Writer, error) {
	var (
		w   output.Writer
		err error
	)
	switch opts.OutputFormat {
	case "json":
		w, err = output.NewJSONWriter(path)
	case "text":
		w, err = output.NewTextWriter(path, opts.NoColor, opts.Quiet)
	default:
		w, err = output.NewCSVWriter(path)
	}
	if err != nil {
		return nil, err
	}
	if opts.SortBy != "" {
		w = output.NewSortedWriter(w, opts.SortBy, words)
	}
	return w, nil
}

func printBanner(opts *config.Options, wordCount int) {
	const (
		cyan   = "\033[36m"
		white  = "\033[97m"
		dim    = "\033[2m"
		yellow = "\033[33m"
		reset  = "\033[0m"
	)

	c, w, d, y, rs := cyan, white, dim, yellow, reset
	if opts.NoColor {
		c, w, d, y, rs = "", "", "", "", ""
	}

	fmt.Fprintf(stderr, `
%s    ___    ____  ____                __       %s
%s   /   |  / __ \/  _/___  _________ / /_  ___ %s
%s  / /| | / /_/ // // __ \/ ___/ __ \/ __ \/ _ \%s
%s / ___ |/ ____// // /_/ / /  / /_/ / /_/ /  __/%s
%s/_/  |_/_/   /___/ .___/_/   \____/_.___/\___/ %s %sv%s%s
%s                /_/                            %s
%s    API endpoint prober                        %s
`,
		c, rs,
		c, rs,
		c, rs,
		c, rs,
		c, rs, d, version.Version, rs,
		c, rs,
		w, rs,
	)

	threads := fmt.Sprintf("%d", opts.Threads)
	if opts.Threads <= 0 {
		threads = "unbounded"
	}

	fmt.Fprintf(stderr, "%s  ──────────────────────────────────────%s\n", d, rs)
	fmt.Fprintf(stderr, "  %sTarget:%s       %s%s%s\n", d, rs, w, opts.BaseURL(), rs)
	fmt.Fprintf(stderr, "  %sThreads:%s      %s%s%s\n", d, rs, y, threads, rs)
	fmt.Fprintf(stderr, "  %sTimeout:%s      %s%s%s\n", d, rs, y, opts.Timeout, rs)
	fmt.Fprintf(stderr, "  %sWordlist:%s     %s%d words%s\n", d, rs, w, wordCount, rs)
	if opts.Proxy != "" {
		fmt.Fprintf(stderr, "  %sProxy:%s        %s%s%s\n", d, rs, w, opts.Proxy, rs)
	}
	fmt.Fprintf(stderr, "%s  ──────────────────────────────────────%s\n\n", d, rs)
}
