package output

import (
	"math"
	"sort"

	"github.com/maxvaer/apiprobe/internal/scanner"
)

// SortedWriter buffers results and replays them in a fixed order when
// WriteFooter is called. It wraps any other Writer.
//
// "word" restores word-list order using each word's position; duplicate
// words keep their relative completion order.
type SortedWriter struct {
	inner   Writer
	sortBy  string
	rank    map[string]int
	results []*scanner.ScanResult
}

// NewSortedWriter wraps inner. words is the input word list, used by the
// "word" ordering.
func NewSortedWriter(inner Writer, sortBy string, words []string) *SortedWriter {
	rank := make(map[string]int, len(words))
	for i, w := range words {
		if _, ok := rank[w]; !ok {
			rank[w] = i
		}
	}
	return &SortedWriter{inner: inner, sortBy: sortBy, rank: rank}
}

func (w *SortedWriter) WriteHeader() error {
	return w.inner.WriteHeader()
}

func (w *SortedWriter) WriteResult(result *scanner.ScanResult) error {
	cpy := *result
	w.results = append(w.results, &cpy)
	return nil
}

func (w *SortedWriter) WriteFooter(summary Summary) error {
	sort.SliceStable(w.results, func(i, j int) bool {
		a, b := w.results[i], w.results[j]
		switch w.sortBy {
		case "word":
			return w.rank[a.Word] < w.rank[b.Word]
		case "status":
			return statusRank(a) < statusRank(b)
		default:
			return false
		}
	})
	for _, r := range w.results {
		if err := w.inner.WriteResult(r); err != nil {
			return err
		}
	}
	return w.inner.WriteFooter(summary)
}

func (w *SortedWriter) Close() error {
	return w.inner.Close()
}

// statusRank orders by status code with failures last.
func statusRank(r *scanner.ScanResult) int {
	if r.Failed() {
		return math.MaxInt
	}
	return r.StatusCode
}
