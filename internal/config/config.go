package config

import "time"

// DefaultTimeout bounds a single probe. The dispatcher and the executor share it.
const DefaultTimeout = 10 * time.Second

// Options holds all configuration for an apiprobe run.
type Options struct {
	// Target
	URL          string
	Prefix       string // appended to URL before every word
	WordlistPath string
	RequestFile  string // raw HTTP request file (e.g. Burp export)

	// Performance
	Threads int // 0 = one goroutine per word
	Timeout time.Duration

	// HTTP
	Headers   map[string]string
	UserAgent string
	Proxy     string

	NoFollowRedirects bool // record the 3xx itself instead of following it

	// Output
	OutputFile   string // empty = derived from URL and wordlist name
	OutputFormat string // "csv", "json", "text"
	SortBy       string // "", "word", "status"
	Quiet        bool
	Debug        bool
	NoColor      bool

	// Metrics
	MetricsAddr string

	ConfigFile string
}

// BaseURL returns the URL every word is appended to.
func (o *Options) BaseURL() string {
	return o.URL + o.Prefix
}
