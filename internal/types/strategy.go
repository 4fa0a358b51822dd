//nolint:revive // types is a standard Go package name pattern
package types

// GenerationMode selects how content is produced for one record.
type GenerationMode string

// Modes, mapped 1:1 from relevance tiers by the strategy planner.
const (
	ModeStrategicNew   GenerationMode = "strategic_new"
	ModeEnhanceLibrary GenerationMode = "enhance_library"
	ModeLibraryAsIs    GenerationMode = "library_as_is"
	ModeOmit           GenerationMode = "omit"
)

// RecordPlan is the per-record slice of a ContentStrategy: generation mode,
// at most one required keyword, and the metrics reserved for this record.
type RecordPlan struct {
	RecordID string         `json:"record_id"`
	Tier     RelevanceTier  `json:"tier"`
	Mode     GenerationMode `json:"mode"`
	Keyword  string         `json:"keyword,omitempty"`
	Metrics  []string       `json:"metrics,omitempty"`
}

// ContentStrategy is the generation plan derived from a relevance
// assessment set: which records are featured and how keywords and metrics
// are budgeted. Each distinct metric is reserved for exactly one record;
// SKIP and LOW records receive no keyword allocation.
type ContentStrategy struct {
	Records            []RecordPlan `json:"records"`
	StrategicFocus     []string     `json:"strategic_focus,omitempty"`
	EnhancementTargets []string     `json:"enhancement_targets,omitempty"`
	LibraryAsIs        []string     `json:"library_as_is,omitempty"`
	Omitted            []string     `json:"omitted,omitempty"`
	RemainingKeywords  []string     `json:"remaining_keywords,omitempty"`
}

// Plan returns the record plan for the given record ID, or nil.
func (s *ContentStrategy) Plan(recordID string) *RecordPlan {
	for i := range s.Records {
		if s.Records[i].RecordID == recordID {
			return &s.Records[i]
		}
	}
	return nil
}

// Featured reports whether any record survives with a non-omit mode.
func (s *ContentStrategy) Featured() bool {
	for i := range s.Records {
		if s.Records[i].Mode != ModeOmit {
			return true
		}
	}
	return false
}
