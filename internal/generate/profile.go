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

// profile generates the resume profile. Unallocated keywords may appear
// here; metrics may not, they belong to bullet slots. On double rejection
// the pool's default profile is used verbatim.
func (g *Generator) profile(ctx context.Context, posting *types.JobPosting, fit *types.FitAnalysis, strat *types.ContentStrategy, pool *types.ExperiencePool, led *ledger.Ledger) (string, error) {
	template, err := prompts.Get("generate.json", "profile")
	if err != nil {
		return "", err
	}

	base := prompts.Format(template, map[string]string{
		"Title":    posting.Title,
		"Company":  posting.Company,
		"Notes":    fit.StrategicNotes,
		"Facts":    renderFacts(pool),
		"Keywords": joinOrNone(strat.RemainingKeywords),
		"Metrics":  "(none)",
		"MinChars": itoa(g.budgets.ProfileTargetMin),
		"MaxChars": itoa(g.budgets.ProfileTargetMax),
	})

	cons := guard.Constraints{
		Location:        "profile",
		MinLength:       g.budgets.ProfileMinChars,
		KnownMetrics:    pool.AllMetrics(),
		AllowedKeywords: strat.RemainingKeywords,
		KnownKeywords:   fit.RequiredKeywords,
	}

	prompt := base
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		raw, err := g.gen.GenerateJSON(ctx, prompt, llm.TierAdvanced)
		if err != nil {
			return "", fmt.Errorf("profile generation call failed: %w", err)
		}

		text, reason := parseProfile(raw)
		if reason == "" {
			if r := guard.Validate(text, cons, led); !r.OK {
				reason = r.Detail
			} else {
				registerKeywords(led, "profile", text, strat.RemainingKeywords)
				return text, nil
			}
		}

		g.log.Warn("profile attempt rejected",
			zap.String("posting_id", posting.ID),
			zap.Int("attempt", attempt),
			zap.String("reason", reason))
		prompt = stricterPrompt(base, "profile_stricter", reason)
	}

	if pool.DefaultProfile == "" {
		return "", fmt.Errorf("profile generation rejected and no default profile configured")
	}
	g.log.Info("falling back to default profile", zap.String("posting_id", posting.ID))
	return pool.DefaultProfile, nil
}

// parseProfile extracts the profile text from a model response. A non-empty
// second return is the rejection reason.
func parseProfile(raw string) (string, string) {
	doc := llm.ExtractJSONObject(raw)
	if err := schemas.Validate(schemas.Profile, doc); err != nil {
		return "", fmt.Sprintf("response shape invalid: %v", err)
	}

	var out struct {
		Profile string `json:"profile"`
	}
	if err := json.Unmarshal([]byte(doc), &out); err != nil {
		return "", fmt.Sprintf("response unparseable: %v", err)
	}
	return strings.TrimSpace(out.Profile), ""
}

// renderFacts flattens the pool into the facts section of a prompt.
func renderFacts(pool *types.ExperiencePool) string {
	var sb strings.Builder
	for i := range pool.Records {
		rec := &pool.Records[i]
		fmt.Fprintf(&sb, "- %s at %s: %s\n", rec.Role, rec.Company, rec.ContextSummary)
	}
	return strings.TrimSpace(sb.String())
}
