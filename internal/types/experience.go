//nolint:revive // types is a standard Go package name pattern
package types

// LibraryBullet is one pre-approved bullet from the candidate's library.
// Text is the canonical phrasing; Metric, when set, is the exact metric
// string the bullet carries (e.g. "500K users").
type LibraryBullet struct {
	ID     string   `json:"id"`
	Text   string   `json:"text"`
	Skills []string `json:"skills,omitempty"`
	Metric string   `json:"metric,omitempty"`
}

// ExperienceRecord is one unit of the candidate's background, typically a
// past role at one employer. Records are static reference data: loaded once
// at process start and treated as immutable for the process lifetime.
// ContextSummary is the factual description of what the employer does;
// generated content must never contradict it.
type ExperienceRecord struct {
	ID             string          `json:"id"`
	Company        string          `json:"company"`
	Role           string          `json:"role"`
	ContextSummary string          `json:"context_summary"`
	DomainTags     []string        `json:"domain_tags,omitempty"`
	SkillTags      []string        `json:"skill_tags,omitempty"`
	Library        []LibraryBullet `json:"library"`
}

// Metrics returns the distinct metric strings documented in the record's
// library, in library order.
func (r *ExperienceRecord) Metrics() []string {
	seen := make(map[string]bool)
	var metrics []string
	for _, b := range r.Library {
		if b.Metric != "" && !seen[b.Metric] {
			seen[b.Metric] = true
			metrics = append(metrics, b.Metric)
		}
	}
	return metrics
}

// ExperiencePool is the full candidate background: every experience record
// plus the library fallbacks used when generation is rejected.
type ExperiencePool struct {
	Records        []ExperienceRecord `json:"records"`
	DefaultProfile string             `json:"default_profile,omitempty"`
	CoreSkills     []string           `json:"core_skills,omitempty"`
}

// AllMetrics returns every distinct metric string documented anywhere in
// the pool. The generation guard scans candidate text against this set.
func (p *ExperiencePool) AllMetrics() []string {
	seen := make(map[string]bool)
	var metrics []string
	for i := range p.Records {
		for _, m := range p.Records[i].Metrics() {
			if !seen[m] {
				seen[m] = true
				metrics = append(metrics, m)
			}
		}
	}
	return metrics
}

// Record returns the record with the given ID, or nil.
func (p *ExperiencePool) Record(id string) *ExperienceRecord {
	for i := range p.Records {
		if p.Records[i].ID == id {
			return &p.Records[i]
		}
	}
	return nil
}
