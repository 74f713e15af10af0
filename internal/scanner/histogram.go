package scanner

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
)

// StatusKey is a histogram bucket: an HTTP status code or Failed.
type StatusKey int

// Failed is the bucket for probes whose transport call failed. It cannot
// collide with a real status code.
const Failed StatusKey = -1

// KeyOf returns the bucket a result belongs to.
func KeyOf(r *ScanResult) StatusKey {
	if r.Failed() {
		return Failed
	}
	return StatusKey(r.StatusCode)
}

func (k StatusKey) String() string {
	if k == Failed {
		return "failed"
	}
	return strconv.Itoa(int(k))
}

// MarshalText makes StatusKey usable as a JSON object name.
func (k StatusKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses "failed" or a decimal status code.
func (k *StatusKey) UnmarshalText(b []byte) error {
	s := string(b)
	if s == "failed" {
		*k = Failed
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fmt.Errorf("invalid status key %q", s)
	}
	*k = StatusKey(n)
	return nil
}

// Histogram counts results per status bucket.
type Histogram map[StatusKey]int

// Aggregate tallies a result set. The counts always sum to len(results).
func Aggregate(results []ScanResult) Histogram {
	h := make(Histogram)
	for i := range results {
		h[KeyOf(&results[i])]++
	}
	return h
}

// Total returns the number of results counted.
func (h Histogram) Total() int {
	n := 0
	for _, c := range h {
		n += c
	}
	return n
}

// Keys returns the buckets in ascending status order with Failed last.
func (h Histogram) Keys() []StatusKey {
	keys := make([]StatusKey, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i] == Failed || keys[j] == Failed {
			return keys[j] == Failed && keys[i] != Failed
		}
		return keys[i] < keys[j]
	})
	return keys
}

// LogValue renders the histogram as a group with one attribute per bucket,
// in Keys order.
func (h Histogram) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(h))
	for _, k := range h.Keys() {
		attrs = append(attrs, slog.Int(k.String(), h[k]))
	}
	return slog.GroupValue(attrs...)
}
