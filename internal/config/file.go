package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// File mirrors the subset of Options that can be preset in a YAML file.
//
//	url: https://api.example.com/v1/
//	wordlist: words.txt
//	threads: 50
//	timeout: 5s
//	headers:
//	  Authorization: Bearer xyz
type File struct {
	URL       string            `yaml:"url"`
	Prefix    string            `yaml:"prefix"`
	Wordlist  string            `yaml:"wordlist"`
	Threads   *int              `yaml:"threads"`
	Timeout   string            `yaml:"timeout"`
	Headers   map[string]string `yaml:"headers"`
	UserAgent string            `yaml:"user_agent"`
	Proxy     string            `yaml:"proxy"`
	Output    string            `yaml:"output"`
	Format    string            `yaml:"format"`
	Sort      string            `yaml:"sort"`
	Metrics   string            `yaml:"metrics_addr"`
}

// LoadFile reads a YAML config file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return &f, nil
}

// Apply copies file values into opts for every setting the caller did not
// set explicitly. changed reports whether a flag was given on the command
// line. Headers are merged; explicit headers win.
func (f *File) Apply(opts *Options, changed func(flag string) bool) error {
	setString := func(flag string, dst *string, v string) {
		if v != "" && !changed(flag) {
			*dst = v
		}
	}
	setString("url", &opts.URL, f.URL)
	setString("prefix", &opts.Prefix, f.Prefix)
	setString("wordlist", &opts.WordlistPath, f.Wordlist)
	setString("user-agent", &opts.UserAgent, f.UserAgent)
	setString("proxy", &opts.Proxy, f.Proxy)
	setString("output", &opts.OutputFile, f.Output)
	setString("format", &opts.OutputFormat, f.Format)
	setString("sort", &opts.SortBy, f.Sort)
	setString("metrics-addr", &opts.MetricsAddr, f.Metrics)

	if f.Threads != nil && !changed("threads") {
		opts.Threads = *f.Threads
	}
	if f.Timeout != "" && !changed("timeout") {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q in config file: %w", f.Timeout, err)
		}
		opts.Timeout = d
	}

	if len(f.Headers) > 0 {
		if opts.Headers == nil {
			opts.Headers = make(map[string]string, len(f.Headers))
		}
		for k, v := range f.Headers {
			if _, exists := opts.Headers[k]; !exists {
				opts.Headers[k] = v
			}
		}
	}
	return nil
}
