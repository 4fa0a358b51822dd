// Package relevance assigns each experience record a tier against one
// posting's fit analysis. The classification is a deterministic tag-overlap
// computation; no model call is involved, so the same posting and pool
// always produce the same assessment set.
package relevance

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/jobfit-pipeline/internal/types"
)

// Config holds the overlap boundaries between tiers.
type Config struct {
	HighOverlap   float64 `json:"high_overlap"`
	MediumOverlap float64 `json:"medium_overlap"`
}

// DefaultConfig returns the default tier boundaries.
func DefaultConfig() Config {
	return Config{HighOverlap: 0.5, MediumOverlap: 0.25}
}

// genericCompetenceTags mark transferable, role-independent strengths. A
// record whose only connection to the posting is through these lands in
// the LOW tier rather than SKIP.
var genericCompetenceTags = map[string]bool{
	"leadership":         true,
	"delivery":           true,
	"mentoring":          true,
	"communication":      true,
	"stakeholders":       true,
	"cross-functional":   true,
	"project-management": true,
}

// Classify tiers every record in the pool against the fit analysis and
// returns the assessments sorted HIGH first, then by overlap descending,
// then by record ID for a total order.
//
// HIGH requires domain overlap, a gap-closing or keyword-matching signal,
// and an overlap score strictly above the HIGH boundary. Sitting exactly
// on the boundary resolves down to MEDIUM; ambiguity always costs a tier,
// never grants one.
func Classify(fit *types.FitAnalysis, pool *types.ExperiencePool, cfg Config) []types.RelevanceAssessment {
	targets := targetTerms(fit)

	out := make([]types.RelevanceAssessment, 0, len(pool.Records))
	for i := range pool.Records {
		out = append(out, assess(&pool.Records[i], fit, targets, cfg))
	}

	sort.Slice(out, func(i, j int) bool {
		if ri, rj := out[i].Tier.Rank(), out[j].Tier.Rank(); ri != rj {
			return ri < rj
		}
		if out[i].OverlapScore != out[j].OverlapScore {
			return out[i].OverlapScore > out[j].OverlapScore
		}
		return out[i].RecordID < out[j].RecordID
	})
	return out
}

// targetTerms collects the posting-side terms a record can overlap with:
// true gaps, inferrable gaps, and the required ATS keywords.
func targetTerms(fit *types.FitAnalysis) map[string]bool {
	targets := make(map[string]bool)
	add := func(terms []string) {
		for _, t := range terms {
			if n := normalize(t); n != "" {
				targets[n] = true
			}
		}
	}
	add(fit.Analysis.DomainExpertise.TrueGaps)
	add(fit.Analysis.DomainExpertise.InferrableFromExperience)
	add(fit.RequiredKeywords)
	return targets
}

func assess(rec *types.ExperienceRecord, fit *types.FitAnalysis, targets map[string]bool, cfg Config) types.RelevanceAssessment {
	gaps := make(map[string]bool)
	for _, g := range fit.Analysis.DomainExpertise.TrueGaps {
		gaps[normalize(g)] = true
	}

	var matched []string
	closesGap := false
	domainOverlap := false
	generic := false

	for _, tag := range rec.DomainTags {
		n := normalize(tag)
		if targets[n] {
			domainOverlap = true
			matched = append(matched, tag)
			if gaps[n] {
				closesGap = true
			}
		}
	}
	for _, tag := range rec.SkillTags {
		n := normalize(tag)
		if targets[n] {
			matched = append(matched, tag)
			if gaps[n] {
				closesGap = true
			}
		}
		if genericCompetenceTags[n] {
			generic = true
		}
	}

	overlap := 0.0
	if total := len(rec.DomainTags) + len(rec.SkillTags); total > 0 {
		overlap = float64(len(matched)) / float64(total)
	}

	a := types.RelevanceAssessment{
		RecordID:      rec.ID,
		OverlapScore:  overlap,
		MatchedSkills: matched,
		ClosesTrueGap: closesGap,
		DomainOverlap: domainOverlap,
	}

	switch {
	case domainOverlap && (closesGap || len(matched) > 1) && overlap > cfg.HighOverlap:
		a.Tier = types.TierHigh
	case overlap >= cfg.MediumOverlap:
		a.Tier = types.TierMedium
	case generic:
		a.Tier = types.TierLow
	default:
		a.Tier = types.TierSkip
	}
	a.Rationale = rationale(rec, &a)
	return a
}

func rationale(rec *types.ExperienceRecord, a *types.RelevanceAssessment) string {
	switch a.Tier {
	case types.TierHigh:
		if a.ClosesTrueGap {
			return fmt.Sprintf("%s closes a stated gap with %d matching tags (overlap %.2f)", rec.Company, len(a.MatchedSkills), a.OverlapScore)
		}
		return fmt.Sprintf("%s is a direct domain match with %d matching tags (overlap %.2f)", rec.Company, len(a.MatchedSkills), a.OverlapScore)
	case types.TierMedium:
		return fmt.Sprintf("%s partially overlaps the posting (overlap %.2f)", rec.Company, a.OverlapScore)
	case types.TierLow:
		return fmt.Sprintf("%s shows transferable strengths only", rec.Company)
	default:
		return fmt.Sprintf("%s has no meaningful overlap with the posting", rec.Company)
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
