package scanner

import (
	"time"

	"github.com/go-json-experiment/json/jsontext"
)

// ScanResult is the outcome of a single probe.
//
// Err tags the failure variant: it is non-nil exactly when the transport call
// failed, and then StatusCode, JSON and Body are all zero. Any HTTP status,
// including 4xx and 5xx, is a successful transport call.
type ScanResult struct {
	BaseURL    string
	Word       string
	URL        string
	StatusCode int
	JSON       jsontext.Value // compacted body; nil when empty or not valid JSON
	Body       []byte         // raw body; nil when the body could not be read
	Duration   time.Duration
	Err        error
}

// Failed reports whether the transport call itself failed.
func (r *ScanResult) Failed() bool {
	return r.Err != nil
}
