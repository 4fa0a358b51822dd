package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/jobfit-pipeline/internal/guard"
	"github.com/jonathan/jobfit-pipeline/internal/ledger"
	"github.com/jonathan/jobfit-pipeline/internal/llm"
	"github.com/jonathan/jobfit-pipeline/internal/prompts"
	"github.com/jonathan/jobfit-pipeline/internal/schemas"
	"github.com/jonathan/jobfit-pipeline/internal/types"
)

// coverLetter generates the cover letter. Metrics still unclaimed after
// the bullet passes may be cited here. There is no canned letter to fall
// back to; a letter rejected twice is omitted from the bundle.
func (g *Generator) coverLetter(ctx context.Context, posting *types.JobPosting, fit *types.FitAnalysis, strat *types.ContentStrategy, pool *types.ExperiencePool, led *ledger.Ledger) ([]string, error) {
	template, err := prompts.Get("generate.json", "cover_letter")
	if err != nil {
		return nil, err
	}

	available := unclaimedMetrics(pool, led)
	base := prompts.Format(template, map[string]string{
		"Title":      posting.Title,
		"Company":    posting.Company,
		"Notes":      fit.StrategicNotes,
		"Facts":      renderFacts(pool),
		"Metrics":    joinOrNone(available),
		"Paragraphs": itoa(g.budgets.CoverParagraphs),
		"MinWords":   itoa(g.budgets.CoverMinWords),
		"MaxWords":   itoa(g.budgets.CoverMaxWords),
	})

	cons := guard.Constraints{
		Location:        "cover_letter",
		MinLength:       1,
		AllowedMetrics:  available,
		KnownMetrics:    pool.AllMetrics(),
		AllowedKeywords: fit.RequiredKeywords,
	}

	prompt := base
	var lastReason string
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		raw, err := g.gen.GenerateJSON(ctx, prompt, llm.TierAdvanced)
		if err != nil {
			return nil, fmt.Errorf("cover letter call failed: %w", err)
		}

		paragraphs, reason := parseCoverLetter(raw)
		if reason == "" {
			reason = g.checkCoverLetter(paragraphs, cons, led)
		}
		if reason == "" {
			joined := strings.Join(paragraphs, "\n\n")
			registerMetrics(led, "cover_letter", joined, available)
			return paragraphs, nil
		}

		lastReason = reason
		g.log.Warn("cover letter attempt rejected",
			zap.String("posting_id", posting.ID),
			zap.Int("attempt", attempt),
			zap.String("reason", reason))
		prompt = stricterPrompt(base, "cover_letter_stricter", reason)
	}

	g.log.Warn("cover letter generation failed, continuing without it",
		zap.String("posting_id", posting.ID),
		zap.String("reason", lastReason))
	return nil, nil
}

// checkCoverLetter applies the structural and guard rules to a letter.
func (g *Generator) checkCoverLetter(paragraphs []string, cons guard.Constraints, led *ledger.Ledger) string {
	if len(paragraphs) != g.budgets.CoverParagraphs {
		return fmt.Sprintf("expected %d paragraphs, got %d", g.budgets.CoverParagraphs, len(paragraphs))
	}

	words := wordCount(paragraphs)
	if words < g.budgets.CoverMinWords || words > g.budgets.CoverMaxWords {
		return fmt.Sprintf("letter is %d words, budget is %d-%d", words, g.budgets.CoverMinWords, g.budgets.CoverMaxWords)
	}

	if r := guard.Validate(strings.Join(paragraphs, "\n\n"), cons, led); !r.OK {
		return r.Detail
	}
	return ""
}

func parseCoverLetter(raw string) ([]string, string) {
	doc := llm.ExtractJSONObject(raw)
	if err := schemas.Validate(schemas.CoverLetter, doc); err != nil {
		return nil, fmt.Sprintf("response shape invalid: %v", err)
	}

	var out struct {
		Paragraphs []string `json:"paragraphs"`
	}
	if err := json.Unmarshal([]byte(doc), &out); err != nil {
		return nil, fmt.Sprintf("response unparseable: %v", err)
	}
	for i := range out.Paragraphs {
		out.Paragraphs[i] = strings.TrimSpace(out.Paragraphs[i])
	}
	return out.Paragraphs, ""
}
