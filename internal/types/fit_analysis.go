//nolint:revive // types is a standard Go package name pattern
package types

// Recommendation is the terminal advice attached to a FitAnalysis.
type Recommendation string

// Recommendation values, in the precedence order the score model applies them.
const (
	RecommendApplyNow            Recommendation = "apply_now"
	RecommendApplyDifferentLevel Recommendation = "apply_different_level"
	RecommendNetworkFirst        Recommendation = "network_first"
	RecommendSkip                Recommendation = "skip"
)

// ATSScreening scores how the resume survives automated keyword screening.
type ATSScreening struct {
	Score                   int      `json:"score"`
	CriticalMissingKeywords []string `json:"critical_missing_keywords,omitempty"`
	YearsExperienceMatch    bool     `json:"years_experience_match"`
	EducationMatch          bool     `json:"education_match"`
}

// HumanAppeal scores how a human reviewer reads the candidate's trajectory.
type HumanAppeal struct {
	Score                  int  `json:"score"`
	RelevantCompanies      bool `json:"relevant_companies"`
	CareerProgression      bool `json:"career_progression"`
	QuantifiedAchievements bool `json:"quantified_achievements"`
}

// DomainExpertise scores industry and technical alignment. TrueGaps are
// real missing skills; InferrableFromExperience are gaps that existing
// experience can plausibly bridge.
type DomainExpertise struct {
	Score                    int      `json:"score"`
	IndustryMatch            string   `json:"industry_match,omitempty"`
	TechnicalAlignment       string   `json:"technical_alignment,omitempty"`
	TrueGaps                 []string `json:"true_gaps,omitempty"`
	InferrableFromExperience []string `json:"inferrable_from_experience,omitempty"`
}

// Seniority match values reported under RoleFit.
const (
	SeniorityOver        = "over"
	SeniorityAppropriate = "appropriate"
	SeniorityUnder       = "under"
)

// RoleFit scores level, compensation, and location alignment.
type RoleFit struct {
	Score                 int    `json:"score"`
	SeniorityMatch        string `json:"seniority_match,omitempty"`
	CompensationAlignment string `json:"compensation_alignment,omitempty"`
	LocationCompatible    bool   `json:"location_compatible"`
}

// DimensionScores holds the four 1-10 dimension scores underlying the
// overall fit score. Exactly one set exists per FitAnalysis.
type DimensionScores struct {
	ATSScreening    ATSScreening    `json:"ats_screening"`
	HumanAppeal     HumanAppeal     `json:"human_appeal"`
	DomainExpertise DomainExpertise `json:"domain_expertise"`
	RoleFit         RoleFit         `json:"role_fit"`
}

// FitAnalysis is the classification stage's output for one posting.
// OverallScore, Recommendation, and InterviewProbability are recomputed
// deterministically from the dimension scores; the model's own arithmetic
// is never trusted. Read-only after creation.
type FitAnalysis struct {
	OverallScore         int             `json:"overall_score"`
	InterviewProbability int             `json:"interview_probability"`
	Recommendation       Recommendation  `json:"recommendation"`
	Confidence           string          `json:"confidence,omitempty"`
	Analysis             DimensionScores `json:"analysis"`
	RequiredKeywords     []string        `json:"required_keywords_for_ats,omitempty"`
	MetricsToHighlight   []string        `json:"metrics_to_highlight,omitempty"`
	DealBreakers         []string        `json:"deal_breakers,omitempty"`
	StrategicNotes       string          `json:"strategic_notes,omitempty"`
}
