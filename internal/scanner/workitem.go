package scanner

import "time"

// WorkItem is one probe request: a single candidate word appended to the
// base URL. Items are immutable once built.
type WorkItem struct {
	BaseURL string
	Word    string
	URL     string // BaseURL + Word
	Headers map[string]string
	Timeout time.Duration // 0 = no per-probe deadline
}

// Batch describes every probe derived from one base URL and one word list.
type Batch struct {
	BaseURL string
	Words   []string
	Headers map[string]string
	Timeout time.Duration
}

// Items expands the batch into one work item per word, in word-list order.
// The target URL is a plain concatenation; no separator is inserted.
func (b Batch) Items() []WorkItem {
	items := make([]WorkItem, len(b.Words))
	for i, word := range b.Words {
		items[i] = WorkItem{
			BaseURL: b.BaseURL,
			Word:    word,
			URL:     b.BaseURL + word,
			Headers: b.Headers,
			Timeout: b.Timeout,
		}
	}
	return items
}
