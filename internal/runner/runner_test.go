package runner

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxvaer/apiprobe/internal/config"
	"github.com/maxvaer/apiprobe/internal/logging"
)

func writeWordlist(t *testing.T, words []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wordlist.txt")
	content := strings.Join(words, "\n")
	if len(words) > 0 {
		content += "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func testOpts(t *testing.T, serverURL, wordlistPath string) *config.Options {
	t.Helper()
	return &config.Options{
		URL:          serverURL,
		WordlistPath: wordlistPath,
		Timeout:      5 * time.Second,
		Quiet:        true,
		NoColor:      true,
		OutputFile:   filepath.Join(t.TempDir(), "results.csv"),
		OutputFormat: "csv",
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'
	rows, err := r.ReadAll()
	require.NoError(t, err)
	return rows
}

func apiServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/users":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"users":[]}`)
		case "/api/health":
			fmt.Fprint(w, "ok")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunWritesCSV(t *testing.T) {
	srv := apiServer(t)
	opts := testOpts(t, srv.URL, writeWordlist(t, []string{"users", "health", "missing"}))
	opts.Prefix = "/api/"

	var logs bytes.Buffer
	require.NoError(t, Run(context.Background(), opts, logging.New(&logs, slog.LevelInfo)))

	rows := readCSV(t, opts.OutputFile)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"base_url", "word_tested", "url", "status_code", "response_json", "response_content"}, rows[0])

	byWord := make(map[string][]string)
	for _, row := range rows[1:] {
		assert.Equal(t, srv.URL+"/api/", row[0])
		byWord[row[1]] = row
	}
	assert.Equal(t, []string{srv.URL + "/api/", "users", srv.URL + "/api/users", "200", `{"users":[]}`, `{"users":[]}`}, byWord["users"])
	assert.Equal(t, "200", byWord["health"][3])
	assert.Equal(t, "", byWord["health"][4])
	assert.Equal(t, "ok", byWord["health"][5])
	assert.Equal(t, "404", byWord["missing"][3])

	out := logs.String()
	assert.Contains(t, out, "example url tested")
	assert.Contains(t, out, srv.URL+"/api/users")
	assert.Contains(t, out, "status histogram")
	assert.Contains(t, out, "histogram.200=2 histogram.404=1")
	assert.Contains(t, out, "run=")
}

func TestRunTransportFailuresDoNotFailRun(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	deadURL := srv.URL
	srv.Close()

	opts := testOpts(t, deadURL+"/", writeWordlist(t, []string{"a", "b"}))

	var logs bytes.Buffer
	require.NoError(t, Run(context.Background(), opts, logging.New(&logs, slog.LevelInfo)))

	rows := readCSV(t, opts.OutputFile)
	require.Len(t, rows, 3)
	for _, row := range rows[1:] {
		assert.Equal(t, "", row[3], "failed request must leave status empty")
		assert.Equal(t, "", row[4])
		assert.Equal(t, "", row[5])
	}
	assert.Contains(t, logs.String(), "probe failed")
	assert.Contains(t, logs.String(), "histogram.failed=2")
}

func TestRunURLWithoutSchemeRecordsFailures(t *testing.T) {
	opts := testOpts(t, "api.local/", writeWordlist(t, []string{"users", "health"}))

	require.NoError(t, Run(context.Background(), opts, logging.New(io.Discard, slog.LevelInfo)))

	rows := readCSV(t, opts.OutputFile)
	require.Len(t, rows, 3)
	for _, row := range rows[1:] {
		assert.Equal(t, "api.local/", row[0])
		assert.Equal(t, "api.local/"+row[1], row[2])
		assert.Equal(t, "", row[3])
	}
}

func TestRunEmptyWordlist(t *testing.T) {
	srv := apiServer(t)
	opts := testOpts(t, srv.URL+"/", writeWordlist(t, nil))

	var logs bytes.Buffer
	require.NoError(t, Run(context.Background(), opts, logging.New(&logs, slog.LevelInfo)))

	rows := readCSV(t, opts.OutputFile)
	assert.Len(t, rows, 1)
	assert.NotContains(t, logs.String(), "example url tested")
	assert.Contains(t, logs.String(), "status histogram")
	assert.Contains(t, logs.String(), "total=0")
}

func TestRunMissingWordlist(t *testing.T) {
	opts := testOpts(t, "http://127.0.0.1/", filepath.Join(t.TempDir(), "missing.txt"))
	err := Run(context.Background(), opts, logging.New(io.Discard, slog.LevelInfo))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading wordlist")
	assert.NoFileExists(t, opts.OutputFile)
}

func TestRunBadProxy(t *testing.T) {
	opts := testOpts(t, "http://127.0.0.1/", writeWordlist(t, []string{"a"}))
	opts.Proxy = "ftp://proxy:21"
	err := Run(context.Background(), opts, logging.New(io.Discard, slog.LevelInfo))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating requester")
}

func TestRunJSONSortedByWord(t *testing.T) {
	srv := apiServer(t)
	words := []string{"missing", "users", "health", "users"}
	opts := testOpts(t, srv.URL+"/api/", writeWordlist(t, words))
	opts.OutputFormat = "json"
	opts.OutputFile = filepath.Join(t.TempDir(), "out.json")
	opts.SortBy = "word"

	require.NoError(t, Run(context.Background(), opts, logging.New(io.Discard, slog.LevelInfo)))

	data, err := os.ReadFile(opts.OutputFile)
	require.NoError(t, err)

	var report struct {
		TotalRequests int            `json:"total_requests"`
		Histogram     map[string]int `json:"histogram"`
		Results       []struct {
			Word       string `json:"word_tested"`
			StatusCode *int   `json:"status_code"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(data, &report))

	assert.Equal(t, 4, report.TotalRequests)
	assert.Equal(t, map[string]int{"200": 3, "404": 1}, report.Histogram)
	require.Len(t, report.Results, 4)
	got := make([]string, len(report.Results))
	for i, r := range report.Results {
		got[i] = r.Word
	}
	assert.Equal(t, []string{"missing", "users", "users", "health"}, got)
}

func TestRunBoundedThreads(t *testing.T) {
	srv := apiServer(t)
	words := make([]string, 25)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	opts := testOpts(t, srv.URL+"/", writeWordlist(t, words))
	opts.Threads = 3

	require.NoError(t, Run(context.Background(), opts, logging.New(io.Discard, slog.LevelInfo)))
	assert.Len(t, readCSV(t, opts.OutputFile), 26)
}

func TestRunDefaultOutputPath(t *testing.T) {
	srv := apiServer(t)
	dir := t.TempDir()
	t.Chdir(dir)

	wl := writeWordlist(t, []string{"users"})
	opts := testOpts(t, srv.URL+"/api/", wl)
	opts.OutputFile = ""

	require.NoError(t, Run(context.Background(), opts, logging.New(io.Discard, slog.LevelInfo)))

	want := strings.ReplaceAll(strings.ReplaceAll(srv.URL+"/api/", "/", "_"), ":", "") + "_wordlist_results.csv"
	rows := readCSV(t, filepath.Join(dir, "outputs", want))
	assert.Len(t, rows, 2)
}

func TestRunCancelledContextKeepsEveryWord(t *testing.T) {
	srv := apiServer(t)
	opts := testOpts(t, srv.URL+"/", writeWordlist(t, []string{"a", "b", "c"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var logs bytes.Buffer
	require.NoError(t, Run(ctx, opts, logging.New(&logs, slog.LevelInfo)))
	assert.Len(t, readCSV(t, opts.OutputFile), 4)
	assert.Contains(t, logs.String(), "run interrupted")
}

func TestRunRendersHistogramUnlessQuiet(t *testing.T) {
	srv := apiServer(t)
	opts := testOpts(t, srv.URL+"/api/", writeWordlist(t, []string{"users", "nope"}))
	opts.Quiet = false

	var buf bytes.Buffer
	old := stderr
	stderr = &buf
	t.Cleanup(func() { stderr = old })

	require.NoError(t, Run(context.Background(), opts, logging.New(io.Discard, slog.LevelInfo)))

	out := buf.String()
	assert.Contains(t, out, "Status histogram")
	assert.Contains(t, out, "Target:")
	assert.NotContains(t, out, "\x1b[3")
}

func TestResolveOutputPath(t *testing.T) {
	tests := []struct {
		name string
		opts config.Options
		want string
	}{
		{"stdout", config.Options{OutputFile: "-"}, ""},
		{"explicit", config.Options{OutputFile: "x/out.csv"}, "x/out.csv"},
		{
			"derived",
			config.Options{URL: "http://h", Prefix: "/v1/", WordlistPath: "/lists/api.txt", OutputFormat: "json"},
			filepath.Join("outputs", "http__h_v1__api_results.json"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveOutputPath(&tt.opts))
		})
	}
}
