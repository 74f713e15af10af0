package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/maxvaer/apiprobe/internal/config"
	"github.com/maxvaer/apiprobe/internal/logging"
	"github.com/maxvaer/apiprobe/internal/reqparse"
	"github.com/maxvaer/apiprobe/internal/runner"
	"github.com/maxvaer/apiprobe/pkg/version"
)

var (
	opts        config.Options
	headerFlags []string
)

type flagGroup struct {
	title string
	flags []string
}

var helpGroups = []flagGroup{
	{"TARGET", []string{"url", "prefix", "wordlist", "request-file"}},
	{"RATE-LIMIT", []string{"threads", "timeout"}},
	{"HTTP", []string{"header", "user-agent", "proxy", "no-follow-redirects"}},
	{"OUTPUT", []string{"output", "format", "sort", "quiet", "debug", "no-color"}},
	{"CONFIGURATION", []string{"config", "metrics-addr"}},
}

var validFormats = []string{"csv", "json", "text"}
var validSorts = []string{"word", "status"}

var rootCmd = &cobra.Command{
	Use:     "apiprobe -u <url> -w <wordlist> [flags]",
	Short:   "Concurrent API endpoint prober",
	Version: version.Version,
	Long: `apiprobe appends every word of a word list to a base URL, sends one GET
per candidate concurrently and records the status code and response body of
each. Transport failures are recorded as results, never as run errors. A
status histogram summarizes the run.`,
	Example: `  apiprobe -u https://api.example.com/ -w endpoints.txt
  apiprobe -u https://api.example.com -p /v1/ -w endpoints.txt -t 50
  apiprobe -u https://api.example.com/ -w endpoints.txt --format json --sort word
  apiprobe -r burp.req -w endpoints.txt -H "X-Api-Key: secret"
  apiprobe -c apiprobe.yaml --metrics-addr 127.0.0.1:9090`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return prepareOptions(cmd.Flags(), &opts, headerFlags)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		logger := logging.New(os.Stderr, logging.Level(opts.Debug, opts.Quiet))
		return runner.Run(ctx, &opts, logger)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	f := rootCmd.Flags()

	// Target
	f.StringVarP(&opts.URL, "url", "u", "", "Base URL words are appended to, used as given (no scheme means every request fails)")
	f.StringVarP(&opts.Prefix, "prefix", "p", "", "String appended to the base URL before every word")
	f.StringVarP(&opts.WordlistPath, "wordlist", "w", "", "Word list, one candidate per line")
	f.StringVarP(&opts.RequestFile, "request-file", "r", "", "Raw HTTP request file (e.g. Burp Suite export)")

	// Performance
	f.IntVarP(&opts.Threads, "threads", "t", 0, "Maximum probes in flight (0 = one per word)")
	f.DurationVar(&opts.Timeout, "timeout", config.DefaultTimeout, "Per-probe timeout")

	// HTTP
	f.StringArrayVarP(&headerFlags, "header", "H", nil, "Custom header (Key: Value), repeatable")
	f.StringVar(&opts.UserAgent, "user-agent", "", "Custom User-Agent string")
	f.StringVar(&opts.Proxy, "proxy", "", "HTTP, HTTPS or SOCKS5 proxy URL")
	f.BoolVar(&opts.NoFollowRedirects, "no-follow-redirects", false, "Record 3xx responses instead of following redirects")

	// Output
	f.StringVarP(&opts.OutputFile, "output", "o", "", "Output file path, - for stdout (default: outputs/<url>_<wordlist>_results.<ext>)")
	f.StringVar(&opts.OutputFormat, "format", "csv", "Output format: csv, json, text")
	f.StringVar(&opts.SortBy, "sort", "", "Replay results sorted: word, status (buffers until the run completes)")
	f.BoolVarP(&opts.Quiet, "quiet", "q", false, "Errors only, no progress")
	f.BoolVarP(&opts.Debug, "debug", "d", false, "Debug logging")
	f.BoolVar(&opts.NoColor, "no-color", false, "Disable colored output")

	// Configuration
	f.StringVarP(&opts.ConfigFile, "config", "c", "", "YAML file with defaults for any flag not given")
	f.StringVar(&opts.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics at this address during the run")

	// Custom help: categorized flags like httpx.
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		w := os.Stderr
		fmt.Fprint(w, helpBanner(cmd.Version))
		fmt.Fprintf(w, "%s\n\nUsage:\n  %s\n", cmd.Long, cmd.UseLine())
		fmt.Fprintf(w, "\nExamples:\n%s\n", cmd.Example)
		fmt.Fprintf(w, "\nFlags:\n")
		for _, g := range helpGroups {
			fmt.Fprintf(w, "\n%s:\n", g.title)
			for _, name := range g.flags {
				if f := cmd.Flags().Lookup(name); f != nil {
					fmt.Fprintln(w, formatFlag(f))
				}
			}
		}
		fmt.Fprintln(w)
	})
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// prepareOptions completes o from -H flags, the config file and the request
// file, in that order of precedence, then validates it.
func prepareOptions(flags *pflag.FlagSet, o *config.Options, headers []string) error {
	parsed, err := parseHeaders(headers)
	if err != nil {
		return err
	}
	if len(parsed) > 0 {
		o.Headers = parsed
	}

	if o.ConfigFile != "" {
		file, err := config.LoadFile(o.ConfigFile)
		if err != nil {
			return err
		}
		if err := file.Apply(o, flags.Changed); err != nil {
			return err
		}
	}

	if o.RequestFile != "" {
		if err := applyRequestFile(flags, o); err != nil {
			return err
		}
	}

	if o.URL == "" {
		return fmt.Errorf("base URL required: use -u, --request-file or url in the config file")
	}
	if o.WordlistPath == "" {
		return fmt.Errorf("word list required: use -w or wordlist in the config file")
	}
	if !oneOf(o.OutputFormat, validFormats) {
		return fmt.Errorf("--format must be one of: %s", strings.Join(validFormats, ", "))
	}
	if o.SortBy != "" && !oneOf(o.SortBy, validSorts) {
		return fmt.Errorf("--sort must be one of: %s", strings.Join(validSorts, ", "))
	}
	if o.Timeout <= 0 {
		o.Timeout = config.DefaultTimeout
	}
	return nil
}

// applyRequestFile takes the URL and headers of a raw HTTP request. Explicit
// flags and headers already set win.
func applyRequestFile(flags *pflag.FlagSet, o *config.Options) error {
	parsed, err := reqparse.ParseFile(o.RequestFile)
	if err != nil {
		return fmt.Errorf("parsing request file: %w", err)
	}
	if !flags.Changed("url") {
		o.URL = parsed.URL
	}
	if o.Headers == nil {
		o.Headers = make(map[string]string, len(parsed.Headers))
	}
	for key, val := range parsed.Headers {
		// Go's transport negotiates compression itself.
		if key == "Accept-Encoding" {
			continue
		}
		if key == "User-Agent" {
			if !flags.Changed("user-agent") && o.UserAgent == "" {
				o.UserAgent = val
			}
			continue
		}
		if _, exists := o.Headers[key]; !exists {
			o.Headers[key] = val
		}
	}
	if !o.Quiet {
		fmt.Fprintf(os.Stderr, "[+] Loaded request from %s -> %s\n", o.RequestFile, o.URL)
	}
	return nil
}

func parseHeaders(raw []string) (map[string]string, error) {
	headers := make(map[string]string, len(raw))
	for _, h := range raw {
		key, value, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid header format %q, expected 'Key: Value'", h)
		}
		headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return headers, nil
}

func oneOf(s string, allowed []string) bool {
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}

func formatFlag(f *pflag.Flag) string {
	var left string
	if f.Shorthand != "" {
		left = fmt.Sprintf("-%s, --%s", f.Shorthand, f.Name)
	} else {
		left = fmt.Sprintf("    --%s", f.Name)
	}

	typ := f.Value.Type()
	if typ != "bool" {
		left += " " + typ
	}

	// Pad to fixed column width for aligned descriptions.
	const col = 36
	for len(left) < col {
		left += " "
	}

	right := f.Usage
	def := f.DefValue
	if def != "" && def != "false" && def != "0" && def != "0s" && def != "[]" {
		right += fmt.Sprintf(" (default %s)", def)
	}

	return "   " + left + right
}

func helpBanner(ver string) string {
	if ver != "dev" && ver != "" && !strings.HasPrefix(ver, "v") {
		ver = "v" + ver
	}
	return fmt.Sprintf(`
    ___    ____  ____                __
   /   |  / __ \/  _/___  _________ / /_  ___
  / /| | / /_/ // // __ \/ ___/ __ \/ __ \/ _ \
 / ___ |/ ____// // /_/ / /  / /_/ / /_/ /  __/
/_/  |_/_/   /___/ .___/_/   \____/_.___/\___/   %s
                /_/

`, ver)
}
