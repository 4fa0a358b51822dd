package observability

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/jobfit-pipeline/internal/types"
)

func TestPrintFitAnalysis(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	fit := &types.FitAnalysis{
		OverallScore:         8,
		InterviewProbability: 83,
		Recommendation:       types.RecommendApplyNow,
		Analysis: types.DimensionScores{
			ATSScreening:    types.ATSScreening{Score: 8},
			HumanAppeal:     types.HumanAppeal{Score: 9},
			DomainExpertise: types.DomainExpertise{Score: 7, TrueGaps: []string{"fintech"}},
			RoleFit:         types.RoleFit{Score: 8},
		},
		DealBreakers: []string{"relocation required"},
	}

	p.PrintFitAnalysis(fit)
	output := buf.String()

	assert.Contains(t, output, "FIT ANALYSIS")
	assert.Contains(t, output, "8/10")
	assert.Contains(t, output, "apply_now")
	assert.Contains(t, output, "fintech")
	assert.Contains(t, output, "relocation required")
}

func TestPrintFitAnalysis_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintFitAnalysis(nil)

	assert.Empty(t, buf.String())
}

func TestPrintAssessments(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintAssessments([]types.RelevanceAssessment{
		{RecordID: "acme", Tier: types.TierHigh, OverlapScore: 0.8, MatchedSkills: []string{"go", "kubernetes"}},
		{RecordID: "diner", Tier: types.TierSkip},
	})
	output := buf.String()

	assert.Contains(t, output, "RELEVANCE ASSESSMENT")
	assert.Contains(t, output, "HIGH")
	assert.Contains(t, output, "acme")
	assert.Contains(t, output, "go, kubernetes")
	assert.Contains(t, output, "SKIP")
}

func TestPrintStrategy(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintStrategy(&types.ContentStrategy{
		Records: []types.RecordPlan{
			{RecordID: "acme", Mode: types.ModeStrategicNew, Keyword: "kubernetes", Metrics: []string{"500K users"}},
		},
		RemainingKeywords: []string{"terraform"},
	})
	output := buf.String()

	assert.Contains(t, output, "CONTENT STRATEGY")
	assert.Contains(t, output, "strategic_new")
	assert.Contains(t, output, "kw=kubernetes")
	assert.Contains(t, output, "500K users")
	assert.Contains(t, output, "terraform")
}

func TestPrintBundle(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintBundle(&types.GeneratedContentBundle{
		Profile:     "Platform engineering leader.",
		Bullets:     map[string][]string{"acme": {"b1", "b2"}},
		Skills:      []string{"Go", "Kubernetes"},
		CoverLetter: []string{"p1", "p2"},
		MetricsUsed: []string{"500K users"},
	})
	output := buf.String()

	assert.Contains(t, output, "GENERATED CONTENT")
	assert.Contains(t, output, "Platform engineering leader.")
	assert.Contains(t, output, "Bullet sections: 1")
	assert.Contains(t, output, "500K users")
}

func TestPrintBundle_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintBundle(&types.GeneratedContentBundle{})

	assert.Empty(t, buf.String())
}
