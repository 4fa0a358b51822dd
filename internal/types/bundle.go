//nolint:revive // types is a standard Go package name pattern
package types

// GeneratedContentBundle is the terminal artifact of one pipeline run:
// profile text, per-record bullet lists, a fixed-size skills list, and
// cover-letter paragraphs. Every field passed the generation guard under
// the run's content strategy budgets before the bundle was accepted.
type GeneratedContentBundle struct {
	RoleTitle    string              `json:"role_title,omitempty"`
	Profile      string              `json:"profile,omitempty"`
	Bullets      map[string][]string `json:"employment_bullets,omitempty"`
	Skills       []string            `json:"skills,omitempty"`
	CoverLetter  []string            `json:"cover_letter_paragraphs,omitempty"`
	MetricsUsed  []string            `json:"metrics_used,omitempty"`
	KeywordsUsed []string            `json:"keywords_used,omitempty"`
}

// IsEmpty reports whether the bundle carries no generated content. The
// all-SKIP short circuit ends a run with an empty bundle.
func (b *GeneratedContentBundle) IsEmpty() bool {
	return b == nil || (b.Profile == "" && len(b.Bullets) == 0 && len(b.Skills) == 0 && len(b.CoverLetter) == 0)
}
