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

// bullets produces the bullet list for one planned record. Strategic and
// enhancement modes call the model; library-as-is uses the record's own
// bullets untouched. On double rejection the library bullets stand in.
func (g *Generator) bullets(ctx context.Context, posting *types.JobPosting, plan *types.RecordPlan, rec *types.ExperienceRecord, pool *types.ExperiencePool, led *ledger.Ledger) ([]string, error) {
	location := "bullets:" + rec.ID

	if plan.Mode == types.ModeLibraryAsIs {
		return g.libraryBullets(rec, led, location), nil
	}

	promptKey := "bullets_strategic"
	if plan.Mode == types.ModeEnhanceLibrary {
		promptKey = "bullets_enhance"
	}
	template, err := prompts.Get("generate.json", promptKey)
	if err != nil {
		return nil, err
	}

	source := rec.Library
	if len(source) > g.budgets.BulletCount {
		source = source[:g.budgets.BulletCount]
	}

	base := prompts.Format(template, map[string]string{
		"Count":         itoa(g.budgets.BulletCount),
		"RecordCompany": rec.Company,
		"RecordRole":    rec.Role,
		"RecordContext": rec.ContextSummary,
		"Title":         posting.Title,
		"Company":       posting.Company,
		"Library":       renderLibrary(source),
		"Keyword":       orNone(plan.Keyword),
		"Metrics":       joinOrNone(plan.Metrics),
		"MinChars":      itoa(g.budgets.BulletMinChars),
		"MaxChars":      itoa(g.budgets.BulletMaxChars),
	})

	cons := guard.Constraints{
		Location:        location,
		MinLength:       g.budgets.BulletMinChars,
		AllowedMetrics:  plan.Metrics,
		KnownMetrics:    pool.AllMetrics(),
		AllowedKeywords: []string{plan.Keyword},
	}

	prompt := base
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		raw, err := g.gen.GenerateJSON(ctx, prompt, llm.TierStandard)
		if err != nil {
			return nil, fmt.Errorf("bullet generation call failed for %s: %w", rec.ID, err)
		}

		bullets, reason := parseBullets(raw)
		if reason == "" {
			reason = g.checkBullets(bullets, plan, source, cons, led)
		}
		if reason == "" {
			joined := strings.Join(bullets, "\n")
			registerMetrics(led, location, joined, plan.Metrics)
			if plan.Keyword != "" {
				registerKeywords(led, location, joined, []string{plan.Keyword})
			}
			return bullets, nil
		}

		g.log.Warn("bullet attempt rejected",
			zap.String("posting_id", posting.ID),
			zap.String("record_id", rec.ID),
			zap.Int("attempt", attempt),
			zap.String("reason", reason))
		prompt = stricterPrompt(base, "bullets_stricter", reason)
	}

	g.log.Info("falling back to library bullets",
		zap.String("posting_id", posting.ID),
		zap.String("record_id", rec.ID))
	return g.libraryBullets(rec, led, location), nil
}

// checkBullets applies the structural and guard rules to a bullet list.
// A non-empty return is the rejection reason.
func (g *Generator) checkBullets(bullets []string, plan *types.RecordPlan, source []types.LibraryBullet, cons guard.Constraints, led *ledger.Ledger) string {
	switch plan.Mode {
	case types.ModeStrategicNew:
		if len(bullets) != g.budgets.BulletCount {
			return fmt.Sprintf("expected %d bullets, got %d", g.budgets.BulletCount, len(bullets))
		}
		for _, b := range bullets {
			if len(b) > g.budgets.BulletMaxChars {
				return fmt.Sprintf("bullet exceeds %d chars: %q", g.budgets.BulletMaxChars, b)
			}
		}
	case types.ModeEnhanceLibrary:
		if len(bullets) != len(source) {
			return fmt.Sprintf("expected %d bullets, got %d", len(source), len(bullets))
		}
		// Every source metric must survive a light rewrite verbatim.
		joined := strings.Join(bullets, "\n")
		for _, b := range source {
			if b.Metric != "" && !strings.Contains(joined, b.Metric) {
				return fmt.Sprintf("metric %q lost in rewrite", b.Metric)
			}
		}
	}

	// The keyword and each metric are budgeted once per record, not once
	// per bullet.
	if plan.Keyword != "" {
		count := 0
		for _, b := range bullets {
			if strings.Contains(strings.ToLower(b), strings.ToLower(plan.Keyword)) {
				count++
			}
		}
		if count > 1 {
			return fmt.Sprintf("keyword %q appears in %d bullets, budget is one", plan.Keyword, count)
		}
	}
	for _, m := range plan.Metrics {
		count := 0
		for _, b := range bullets {
			count += strings.Count(b, m)
		}
		if count > 1 {
			return fmt.Sprintf("metric %q appears %d times, budget is one", m, count)
		}
	}

	for _, b := range bullets {
		if r := guard.Validate(b, cons, led); !r.OK {
			return r.Detail
		}
	}
	return ""
}

// libraryBullets returns the record's bullets as-is, truncated to the
// budgeted count, claiming their metrics. A bullet whose metric is already
// owned by another location is dropped so the metric ships only once.
func (g *Generator) libraryBullets(rec *types.ExperienceRecord, led *ledger.Ledger, location string) []string {
	var out []string
	for _, b := range rec.Library {
		if len(out) == g.budgets.BulletCount {
			break
		}
		if b.Metric != "" && !led.UseMetric(b.Metric, location) {
			continue
		}
		out = append(out, b.Text)
	}
	return out
}

func parseBullets(raw string) ([]string, string) {
	doc := llm.ExtractJSONObject(raw)
	if err := schemas.Validate(schemas.Bullets, doc); err != nil {
		return nil, fmt.Sprintf("response shape invalid: %v", err)
	}

	var out struct {
		Bullets []string `json:"bullets"`
	}
	if err := json.Unmarshal([]byte(doc), &out); err != nil {
		return nil, fmt.Sprintf("response unparseable: %v", err)
	}
	for i := range out.Bullets {
		out.Bullets[i] = strings.TrimSpace(out.Bullets[i])
	}
	return out.Bullets, ""
}

func renderLibrary(bullets []types.LibraryBullet) string {
	var sb strings.Builder
	for _, b := range bullets {
		fmt.Fprintf(&sb, "- %s\n", b.Text)
	}
	return strings.TrimSpace(sb.String())
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
