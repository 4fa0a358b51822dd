//nolint:revive // types is a standard Go package name pattern
package types

// RelevanceTier classifies one experience record against one posting.
type RelevanceTier string

// Tiers, strongest first. The classifier's tie-break always resolves to
// the lower tier.
const (
	TierHigh   RelevanceTier = "high"
	TierMedium RelevanceTier = "medium"
	TierLow    RelevanceTier = "low"
	TierSkip   RelevanceTier = "skip"
)

// Rank returns the ordering position of the tier, HIGH first. Unknown
// tiers sort last.
func (t RelevanceTier) Rank() int {
	switch t {
	case TierHigh:
		return 0
	case TierMedium:
		return 1
	case TierLow:
		return 2
	case TierSkip:
		return 3
	default:
		return 4
	}
}

// RelevanceAssessment maps one experience record to a tier with the signal
// that produced it. One assessment set exists per (posting, pool) pair.
type RelevanceAssessment struct {
	RecordID      string        `json:"record_id"`
	Tier          RelevanceTier `json:"tier"`
	OverlapScore  float64       `json:"overlap_score"`
	MatchedSkills []string      `json:"matched_skills,omitempty"`
	ClosesTrueGap bool          `json:"closes_true_gap"`
	DomainOverlap bool          `json:"domain_overlap"`
	Rationale     string        `json:"rationale"`
}
