// Package guard validates generated content before it is accepted into a
// bundle. Every guard decision is deterministic: the same text and the same
// constraints always produce the same verdict.
package guard

import (
	"fmt"
	"strings"

	"github.com/jonathan/jobfit-pipeline/internal/ledger"
)

// Reason identifies which rule rejected a piece of content.
type Reason string

// Rejection reasons, in the order the rules are checked.
const (
	ReasonTooShort        Reason = "too_short"
	ReasonModelDeclined   Reason = "model_declined"
	ReasonOverTrimmed     Reason = "over_trimmed"
	ReasonBudgetViolation Reason = "budget_violation"
)

// declineMarkers are phrases that indicate the model refused or failed the
// task instead of producing content. Matched case-insensitively.
var declineMarkers = []string{
	"i cannot",
	"i can't",
	"sorry",
	"unable to",
	"please provide",
	"as an ai",
	"i don't have",
	"error",
	"cannot process",
}

// Constraints describe what a single piece of content is allowed to be.
// Location names the content slot for ledger ownership checks, e.g.
// "profile" or "bullets:acme". BaselineLength of zero disables the
// over-trim rule; it only applies when rewriting existing text.
type Constraints struct {
	Location        string
	MinLength       int
	BaselineLength  int
	MaxTrimRatio    float64
	AllowedMetrics  []string
	KnownMetrics    []string
	AllowedKeywords []string
	KnownKeywords   []string
}

// DefaultMaxTrimRatio rejects rewrites that lose more than 70% of the
// baseline text.
const DefaultMaxTrimRatio = 0.7

// Result is a guard verdict. Reason and Detail are set only on rejection.
type Result struct {
	OK     bool
	Reason Reason
	Detail string
}

func reject(reason Reason, format string, args ...any) Result {
	return Result{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// Validate runs the guard rules against text in order and returns the first
// rejection, or an accepting result. The ledger is read, never written;
// registering accepted content is the caller's job.
func Validate(text string, c Constraints, led *ledger.Ledger) Result {
	trimmed := strings.TrimSpace(text)

	if len(trimmed) < c.MinLength {
		return reject(ReasonTooShort, "content is %d chars, minimum is %d", len(trimmed), c.MinLength)
	}

	lower := strings.ToLower(trimmed)
	for _, marker := range declineMarkers {
		if strings.Contains(lower, marker) {
			return reject(ReasonModelDeclined, "content contains decline marker %q", marker)
		}
	}

	if c.BaselineLength > 0 {
		maxTrim := c.MaxTrimRatio
		if maxTrim <= 0 {
			maxTrim = DefaultMaxTrimRatio
		}
		reduction := 1 - float64(len(trimmed))/float64(c.BaselineLength)
		if reduction > maxTrim {
			return reject(ReasonOverTrimmed, "content shrank %.0f%% from a %d char baseline", reduction*100, c.BaselineLength)
		}
	}

	if r := checkBudget(trimmed, lower, c, led); !r.OK {
		return r
	}

	return Result{OK: true}
}

// checkBudget rejects content that spends a metric or keyword outside its
// allocation: a metric not budgeted to this slot, a metric another slot
// already claimed, a keyword reserved for a different record, or a keyword
// this slot already spent.
func checkBudget(text, lower string, c Constraints, led *ledger.Ledger) Result {
	allowedMetrics := toSet(c.AllowedMetrics)
	for _, m := range c.KnownMetrics {
		if !strings.Contains(text, m) {
			continue
		}
		if !allowedMetrics[m] {
			return reject(ReasonBudgetViolation, "metric %q is not budgeted for %s", m, c.Location)
		}
		if led != nil {
			if owner, ok := led.MetricOwner(m); ok && owner != c.Location {
				return reject(ReasonBudgetViolation, "metric %q is already used by %s", m, owner)
			}
		}
	}

	allowedKeywords := toSet(c.AllowedKeywords)
	for _, kw := range c.KnownKeywords {
		if kw == "" || allowedKeywords[kw] {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			return reject(ReasonBudgetViolation, "keyword %q is not allocated to %s", kw, c.Location)
		}
	}

	if led != nil {
		for _, kw := range c.AllowedKeywords {
			if kw == "" || !strings.Contains(lower, strings.ToLower(kw)) {
				continue
			}
			if led.KeywordUsed(c.Location, kw) {
				return reject(ReasonBudgetViolation, "keyword %q already used in %s", kw, c.Location)
			}
		}
	}

	return Result{OK: true}
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, it := range items {
		set[it] = true
	}
	return set
}
