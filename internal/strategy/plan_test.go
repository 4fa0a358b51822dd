package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/jobfit-pipeline/internal/types"
)

func testPool() *types.ExperiencePool {
	return &types.ExperiencePool{Records: []types.ExperienceRecord{
		{
			ID: "acme", Company: "Acme", Role: "Staff Engineer",
			SkillTags: []string{"golang", "kubernetes"},
			Library: []types.LibraryBullet{
				{ID: "a1", Text: "Scaled ingestion to 500K users", Metric: "500K users"},
				{ID: "a2", Text: "Cut infra spend 40%", Metric: "40% cost reduction"},
			},
		},
		{
			ID: "globex", Company: "Globex", Role: "Engineer",
			SkillTags: []string{"python"},
			Library: []types.LibraryBullet{
				{ID: "g1", Text: "Also scaled to 500K users", Metric: "500K users"},
			},
		},
		{
			ID: "initech", Company: "Initech", Role: "Engineer",
			Library: []types.LibraryBullet{
				{ID: "i1", Text: "Ran the intranet", Metric: "3 releases"},
			},
		},
	}}
}

func assessments() []types.RelevanceAssessment {
	return []types.RelevanceAssessment{
		{RecordID: "acme", Tier: types.TierHigh, OverlapScore: 0.8},
		{RecordID: "globex", Tier: types.TierMedium, OverlapScore: 0.3},
		{RecordID: "initech", Tier: types.TierSkip},
	}
}

func TestPlanTierModes(t *testing.T) {
	fit := &types.FitAnalysis{RequiredKeywords: []string{"kubernetes", "terraform"}}

	s := Plan(fit, assessments(), testPool(), zap.NewNop())
	require.Len(t, s.Records, 3)

	assert.Equal(t, types.ModeStrategicNew, s.Records[0].Mode)
	assert.Equal(t, types.ModeEnhanceLibrary, s.Records[1].Mode)
	assert.Equal(t, types.ModeOmit, s.Records[2].Mode)
	assert.Equal(t, []string{"acme"}, s.StrategicFocus)
	assert.Equal(t, []string{"globex"}, s.EnhancementTargets)
	assert.Equal(t, []string{"initech"}, s.Omitted)
}

func TestPlanKeywordAllocation(t *testing.T) {
	// acme's skill tags carry "kubernetes", so it takes that keyword even
	// though "terraform" comes first. globex takes the leftover.
	fit := &types.FitAnalysis{RequiredKeywords: []string{"terraform", "kubernetes"}}

	s := Plan(fit, assessments(), testPool(), zap.NewNop())

	assert.Equal(t, "kubernetes", s.Plan("acme").Keyword)
	assert.Equal(t, "terraform", s.Plan("globex").Keyword)
	assert.Empty(t, s.Plan("initech").Keyword)
	assert.Empty(t, s.RemainingKeywords)
}

func TestPlanLeftoverKeywords(t *testing.T) {
	fit := &types.FitAnalysis{RequiredKeywords: []string{"golang", "rust", "scala"}}

	s := Plan(fit, assessments(), testPool(), zap.NewNop())

	// Two featured records, three keywords: one keyword survives.
	require.Len(t, s.RemainingKeywords, 1)
	assert.NotEqual(t, "golang", s.RemainingKeywords[0])
}

func TestPlanMetricContention(t *testing.T) {
	fit := &types.FitAnalysis{}

	s := Plan(fit, assessments(), testPool(), zap.NewNop())

	// acme and globex both document "500K users"; the stronger assessment
	// keeps it and globex is left with nothing.
	assert.Equal(t, []string{"500K users", "40% cost reduction"}, s.Plan("acme").Metrics)
	assert.Empty(t, s.Plan("globex").Metrics)
	assert.Empty(t, s.Plan("initech").Metrics)
}

func TestPlanHighlightedMetricsFirst(t *testing.T) {
	fit := &types.FitAnalysis{MetricsToHighlight: []string{"40% cost reduction"}}

	s := Plan(fit, assessments(), testPool(), zap.NewNop())

	// The highlighted metric jumps ahead of acme's library order.
	assert.Equal(t, []string{"40% cost reduction", "500K users"}, s.Plan("acme").Metrics)
}

func TestPlanDeterministic(t *testing.T) {
	fit := &types.FitAnalysis{RequiredKeywords: []string{"golang", "python"}}

	first := Plan(fit, assessments(), testPool(), zap.NewNop())
	second := Plan(fit, assessments(), testPool(), zap.NewNop())
	assert.Equal(t, first, second)
}
