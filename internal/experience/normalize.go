package experience

import (
	"fmt"
	"strings"

	"github.com/jonathan/jobfit-pipeline/internal/types"
)

// canonicalNames maps common tag spellings to one canonical form so overlap
// matching is not defeated by synonyms.
var canonicalNames = map[string]string{
	"golang":              "go",
	"k8s":                 "kubernetes",
	"postgres":            "postgresql",
	"js":                  "javascript",
	"ts":                  "typescript",
	"gcp":                 "google-cloud",
	"ml":                  "machine-learning",
	"infra":               "infrastructure",
	"mgmt":                "management",
	"amazon web services": "aws",
}

// NormalizePool applies all normalization steps to a pool in place: tag
// canonicalization, bullet ID backfill, and structural validation.
func NormalizePool(pool *types.ExperiencePool) error {
	for i := range pool.Records {
		rec := &pool.Records[i]
		rec.DomainTags = normalizeTags(rec.DomainTags)
		rec.SkillTags = normalizeTags(rec.SkillTags)

		for j := range rec.Library {
			if rec.Library[j].ID == "" {
				rec.Library[j].ID = fmt.Sprintf("%s_b%d", rec.ID, j+1)
			}
			rec.Library[j].Skills = normalizeTags(rec.Library[j].Skills)
		}
	}

	pool.CoreSkills = dedupe(pool.CoreSkills)

	return validatePool(pool)
}

// normalizeTags lowercases, canonicalizes, and deduplicates a tag list,
// dropping empties.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{})
	for _, tag := range tags {
		n := strings.ToLower(strings.TrimSpace(tag))
		if n == "" {
			continue
		}
		if canonical, ok := canonicalNames[n]; ok {
			n = canonical
		}
		if _, exists := seen[n]; !exists {
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	return out
}

func dedupe(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{})
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		key := strings.ToLower(it)
		if _, exists := seen[key]; !exists {
			seen[key] = struct{}{}
			out = append(out, it)
		}
	}
	return out
}

func validatePool(pool *types.ExperiencePool) error {
	ids := make(map[string]bool)
	for _, rec := range pool.Records {
		if rec.ID == "" {
			return &NormalizationError{
				Message: fmt.Sprintf("record for company %q has no id", rec.Company),
			}
		}
		if ids[rec.ID] {
			return &NormalizationError{
				Message: fmt.Sprintf("duplicate record id %q", rec.ID),
			}
		}
		ids[rec.ID] = true

		if rec.Company == "" {
			return &NormalizationError{
				Message: fmt.Sprintf("record %q has no company", rec.ID),
			}
		}
		for _, b := range rec.Library {
			if strings.TrimSpace(b.Text) == "" {
				return &NormalizationError{
					Message: fmt.Sprintf("record %q bullet %q has no text", rec.ID, b.ID),
				}
			}
		}
	}
	return nil
}
