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

// skills produces the fixed-size skills list. On double rejection the
// pool's core skills stand in.
func (g *Generator) skills(ctx context.Context, posting *types.JobPosting, fit *types.FitAnalysis, pool *types.ExperiencePool, led *ledger.Ledger) ([]string, error) {
	template, err := prompts.Get("generate.json", "skills")
	if err != nil {
		return nil, err
	}

	base := prompts.Format(template, map[string]string{
		"Title":     posting.Title,
		"Company":   posting.Company,
		"SkillPool": renderSkillPool(pool),
		"Keywords":  joinOrNone(fit.RequiredKeywords),
		"Count":     itoa(g.budgets.SkillCount),
		"MinChars":  itoa(g.budgets.SkillMinChars),
		"MaxChars":  itoa(g.budgets.SkillMaxChars),
	})

	prompt := base
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		raw, err := g.gen.GenerateJSON(ctx, prompt, llm.TierStandard)
		if err != nil {
			return nil, fmt.Errorf("skills generation call failed: %w", err)
		}

		skills, reason := parseSkills(raw)
		if reason == "" {
			reason = g.checkSkills(skills, led)
		}
		if reason == "" {
			registerKeywords(led, "skills", strings.Join(skills, "\n"), fit.RequiredKeywords)
			return skills, nil
		}

		g.log.Warn("skills attempt rejected",
			zap.String("posting_id", posting.ID),
			zap.Int("attempt", attempt),
			zap.String("reason", reason))
		suffix := prompts.MustGet("generate.json", "skills_stricter")
		prompt = base + "\n\n" + prompts.Format(suffix, map[string]string{
			"Reason": reason,
			"Count":  itoa(g.budgets.SkillCount),
		})
	}

	g.log.Info("falling back to core skills", zap.String("posting_id", posting.ID))
	core := pool.CoreSkills
	if len(core) > g.budgets.SkillCount {
		core = core[:g.budgets.SkillCount]
	}
	return core, nil
}

// checkSkills applies the structural and guard rules to a skills list.
func (g *Generator) checkSkills(skills []string, led *ledger.Ledger) string {
	if len(skills) != g.budgets.SkillCount {
		return fmt.Sprintf("expected exactly %d skills, got %d", g.budgets.SkillCount, len(skills))
	}
	for _, s := range skills {
		if len(s) < g.budgets.SkillMinChars || len(s) > g.budgets.SkillMaxChars {
			return fmt.Sprintf("skill entry %q outside %d-%d chars", s, g.budgets.SkillMinChars, g.budgets.SkillMaxChars)
		}
		if r := guard.Validate(s, guard.Constraints{Location: "skills", MinLength: g.budgets.SkillMinChars}, led); !r.OK {
			return r.Detail
		}
	}
	return ""
}

func parseSkills(raw string) ([]string, string) {
	doc := llm.ExtractJSONObject(raw)
	if err := schemas.Validate(schemas.Skills, doc); err != nil {
		return nil, fmt.Sprintf("response shape invalid: %v", err)
	}

	var out struct {
		Skills []string `json:"skills"`
	}
	if err := json.Unmarshal([]byte(doc), &out); err != nil {
		return nil, fmt.Sprintf("response unparseable: %v", err)
	}
	for i := range out.Skills {
		out.Skills[i] = strings.TrimSpace(out.Skills[i])
	}
	return out.Skills, ""
}

// renderSkillPool lists every skill the candidate can legitimately claim:
// core skills plus each record's skill tags.
func renderSkillPool(pool *types.ExperiencePool) string {
	seen := make(map[string]bool)
	var all []string
	add := func(s string) {
		key := strings.ToLower(s)
		if s != "" && !seen[key] {
			seen[key] = true
			all = append(all, s)
		}
	}
	for _, s := range pool.CoreSkills {
		add(s)
	}
	for i := range pool.Records {
		for _, s := range pool.Records[i].SkillTags {
			add(s)
		}
	}
	return joinOrNone(all)
}
