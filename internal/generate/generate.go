// Package generate produces the content bundle for one posting under the
// content strategy's budgets. Every piece passes the generation guard; a
// rejected piece is retried once with a stricter instruction and then falls
// back to library content. The cover letter has no library fallback and is
// omitted when rejected twice.
package generate

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/jobfit-pipeline/internal/ledger"
	"github.com/jonathan/jobfit-pipeline/internal/llm"
	"github.com/jonathan/jobfit-pipeline/internal/prompts"
	"github.com/jonathan/jobfit-pipeline/internal/types"
)

// maxAttempts bounds model calls per piece: one attempt plus one stricter retry.
const maxAttempts = 2

// ModelCaller is the model call surface the generator needs.
type ModelCaller interface {
	GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
}

// Budgets hold the length and count targets for each content type.
type Budgets struct {
	ProfileMinChars  int `json:"profile_min_chars"`
	ProfileTargetMin int `json:"profile_target_min"`
	ProfileTargetMax int `json:"profile_target_max"`
	BulletCount      int `json:"bullet_count"`
	BulletMinChars   int `json:"bullet_min_chars"`
	BulletMaxChars   int `json:"bullet_max_chars"`
	SkillCount       int `json:"skill_count"`
	SkillMinChars    int `json:"skill_min_chars"`
	SkillMaxChars    int `json:"skill_max_chars"`
	CoverParagraphs  int `json:"cover_paragraphs"`
	CoverMinWords    int `json:"cover_min_words"`
	CoverMaxWords    int `json:"cover_max_words"`
}

// DefaultBudgets returns the standard resume content budgets.
func DefaultBudgets() Budgets {
	return Budgets{
		ProfileMinChars:  300,
		ProfileTargetMin: 450,
		ProfileTargetMax: 500,
		BulletCount:      4,
		BulletMinChars:   128,
		BulletMaxChars:   150,
		SkillCount:       10,
		SkillMinChars:    19,
		SkillMaxChars:    35,
		CoverParagraphs:  4,
		CoverMinWords:    200,
		CoverMaxWords:    250,
	}
}

// Generator builds a content bundle from a fit analysis and strategy.
type Generator struct {
	gen     ModelCaller
	budgets Budgets
	log     *zap.Logger
}

// New creates a generator.
func New(gen ModelCaller, budgets Budgets, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{gen: gen, budgets: budgets, log: log}
}

// Generate runs every generation step for one posting and assembles the
// bundle. One fresh ledger covers the whole bundle so metrics and keywords
// stay within their budgeted slots across pieces.
func (g *Generator) Generate(ctx context.Context, posting *types.JobPosting, fit *types.FitAnalysis, strat *types.ContentStrategy, pool *types.ExperiencePool) (*types.GeneratedContentBundle, error) {
	led := ledger.New()
	bundle := &types.GeneratedContentBundle{
		RoleTitle: posting.Title,
		Bullets:   make(map[string][]string),
	}

	profile, err := g.profile(ctx, posting, fit, strat, pool, led)
	if err != nil {
		return nil, err
	}
	bundle.Profile = profile

	for _, plan := range strat.Records {
		if plan.Mode == types.ModeOmit {
			continue
		}
		rec := pool.Record(plan.RecordID)
		if rec == nil {
			continue
		}
		bullets, err := g.bullets(ctx, posting, &plan, rec, pool, led)
		if err != nil {
			return nil, err
		}
		if len(bullets) > 0 {
			bundle.Bullets[rec.ID] = bullets
		}
	}

	skills, err := g.skills(ctx, posting, fit, pool, led)
	if err != nil {
		return nil, err
	}
	bundle.Skills = skills

	letter, err := g.coverLetter(ctx, posting, fit, strat, pool, led)
	if err != nil {
		return nil, err
	}
	bundle.CoverLetter = letter

	bundle.MetricsUsed = led.MetricsUsed()
	bundle.KeywordsUsed = led.KeywordsUsed()
	return bundle, nil
}

// stricterPrompt appends the retry instruction for a rejected attempt.
func stricterPrompt(base, key, reason string) string {
	suffix := prompts.MustGet("generate.json", key)
	return base + "\n\n" + prompts.Format(suffix, map[string]string{"Reason": reason})
}

// unclaimedMetrics returns every pool metric the ledger has not assigned yet.
func unclaimedMetrics(pool *types.ExperiencePool, led *ledger.Ledger) []string {
	var out []string
	for _, m := range pool.AllMetrics() {
		if _, taken := led.MetricOwner(m); !taken {
			out = append(out, m)
		}
	}
	return out
}

// registerKeywords records every allowed keyword that actually appears in text.
func registerKeywords(led *ledger.Ledger, location, text string, allowed []string) {
	lower := strings.ToLower(text)
	for _, kw := range allowed {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			led.UseKeyword(location, kw)
		}
	}
}

// registerMetrics claims every allowed metric that actually appears in text.
func registerMetrics(led *ledger.Ledger, location, text string, allowed []string) {
	for _, m := range allowed {
		if strings.Contains(text, m) {
			led.UseMetric(m, location)
		}
	}
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}

func wordCount(paragraphs []string) int {
	total := 0
	for _, p := range paragraphs {
		total += len(strings.Fields(p))
	}
	return total
}

func itoa(n int) string {
	return fmt.Sprintf("%d", n)
}
