// Package ledger tracks keyword and metric usage across one generation run.
// The generation guard consults it to reject content that reuses a metric
// already claimed elsewhere or drops in a keyword allocated to another record.
package ledger

import "sort"

// Ledger records which keywords each record has used and where each metric
// string landed. One ledger exists per pipeline run; it is not safe for
// concurrent use.
type Ledger struct {
	keywords map[string]map[string]bool // record ID -> keywords used there
	metrics  map[string]string          // metric string -> location that claimed it
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{
		keywords: make(map[string]map[string]bool),
		metrics:  make(map[string]string),
	}
}

// UseKeyword records that keyword appeared in content for recordID.
func (l *Ledger) UseKeyword(recordID, keyword string) {
	if keyword == "" {
		return
	}
	if l.keywords[recordID] == nil {
		l.keywords[recordID] = make(map[string]bool)
	}
	l.keywords[recordID][keyword] = true
}

// KeywordUsed reports whether keyword is already recorded for recordID.
func (l *Ledger) KeywordUsed(recordID, keyword string) bool {
	return l.keywords[recordID][keyword]
}

// UseMetric claims metric for location. The first claim wins; a repeat claim
// from the same location is a no-op and the call reports whether the claim
// now belongs to location.
func (l *Ledger) UseMetric(metric, location string) bool {
	if metric == "" {
		return false
	}
	if owner, ok := l.metrics[metric]; ok {
		return owner == location
	}
	l.metrics[metric] = location
	return true
}

// MetricOwner returns the location that claimed metric, if any.
func (l *Ledger) MetricOwner(metric string) (string, bool) {
	owner, ok := l.metrics[metric]
	return owner, ok
}

// MetricsUsed returns every claimed metric string, sorted for stable output.
func (l *Ledger) MetricsUsed() []string {
	out := make([]string, 0, len(l.metrics))
	for m := range l.metrics {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// KeywordsUsed returns every keyword recorded anywhere, sorted and deduplicated.
func (l *Ledger) KeywordsUsed() []string {
	seen := make(map[string]bool)
	for _, kws := range l.keywords {
		for kw := range kws {
			seen[kw] = true
		}
	}
	out := make([]string, 0, len(seen))
	for kw := range seen {
		out = append(out, kw)
	}
	sort.Strings(out)
	return out
}
