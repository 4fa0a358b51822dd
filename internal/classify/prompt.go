package classify

import (
	"fmt"
	"strings"

	"github.com/jonathan/jobfit-pipeline/internal/prompts"
	"github.com/jonathan/jobfit-pipeline/internal/types"
)

// buildPrompt renders the fit analysis prompt for one posting against the
// full pool. Every record's context summary is included so the model's
// company facts stay anchored to documented reality.
func buildPrompt(posting *types.JobPosting, pool *types.ExperiencePool) (string, error) {
	template, err := prompts.Get("classify.json", "fit_analysis")
	if err != nil {
		return "", err
	}

	return prompts.Format(template, map[string]string{
		"Title":       posting.Title,
		"Company":     posting.Company,
		"Location":    posting.Location,
		"Description": posting.Description,
		"Background":  renderBackground(pool),
	}), nil
}

// renderBackground flattens the pool into the prompt's candidate section.
func renderBackground(pool *types.ExperiencePool) string {
	var sb strings.Builder
	for i := range pool.Records {
		rec := &pool.Records[i]
		fmt.Fprintf(&sb, "## %s, %s\n", rec.Company, rec.Role)
		if rec.ContextSummary != "" {
			fmt.Fprintf(&sb, "Context: %s\n", rec.ContextSummary)
		}
		if len(rec.DomainTags) > 0 {
			fmt.Fprintf(&sb, "Domains: %s\n", strings.Join(rec.DomainTags, ", "))
		}
		if len(rec.SkillTags) > 0 {
			fmt.Fprintf(&sb, "Skills: %s\n", strings.Join(rec.SkillTags, ", "))
		}
		for _, b := range rec.Library {
			fmt.Fprintf(&sb, "- %s\n", b.Text)
		}
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}
