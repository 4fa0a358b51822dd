package generate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/jobfit-pipeline/internal/llm"
	"github.com/jonathan/jobfit-pipeline/internal/types"
)

type sequencedCaller struct {
	responses []string
	prompts   []string
}

func (c *sequencedCaller) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	c.prompts = append(c.prompts, prompt)
	idx := len(c.prompts) - 1
	if idx >= len(c.responses) {
		idx = len(c.responses) - 1
	}
	return c.responses[idx], nil
}

func testBudgets() Budgets {
	return Budgets{
		ProfileMinChars:  20,
		ProfileTargetMin: 30,
		ProfileTargetMax: 500,
		BulletCount:      2,
		BulletMinChars:   10,
		BulletMaxChars:   200,
		SkillCount:       3,
		SkillMinChars:    2,
		SkillMaxChars:    35,
		CoverParagraphs:  2,
		CoverMinWords:    10,
		CoverMaxWords:    100,
	}
}

func testPosting() *types.JobPosting {
	return &types.JobPosting{
		ID:          "p1",
		Title:       "Staff Engineer",
		Company:     "Acme Corp",
		Description: "Build the logistics platform.",
	}
}

func testPool() *types.ExperiencePool {
	return &types.ExperiencePool{
		Records: []types.ExperienceRecord{
			{
				ID: "acme", Company: "Former Acme", Role: "Senior Engineer",
				ContextSummary: "Former Acme runs freight marketplaces.",
				SkillTags:      []string{"go", "kubernetes"},
				Library: []types.LibraryBullet{
					{ID: "a1", Text: "Scaled ingestion to 500K users", Metric: "500K users"},
					{ID: "a2", Text: "Shipped the routing engine rewrite"},
				},
			},
		},
		DefaultProfile: "Seasoned engineering leader with a decade of logistics platform work.",
		CoreSkills:     []string{"Go", "PostgreSQL"},
	}
}

func testFit() *types.FitAnalysis {
	return &types.FitAnalysis{
		RequiredKeywords: []string{"kubernetes"},
		StrategicNotes:   "lead with platform scale",
	}
}

func testStrategy() *types.ContentStrategy {
	return &types.ContentStrategy{
		Records: []types.RecordPlan{{
			RecordID: "acme",
			Tier:     types.TierHigh,
			Mode:     types.ModeStrategicNew,
			Keyword:  "kubernetes",
			Metrics:  []string{"500K users"},
		}},
		StrategicFocus: []string{"acme"},
	}
}

const (
	profileResponse = `{"profile": "Platform engineering leader focused on large logistics systems and team growth."}`
	bulletsResponse = `{"bullets": ["Scaled the ingestion platform to 500K users on kubernetes clusters", "Led the migration of routing services onto managed infrastructure"]}`
	skillsResponse  = `{"skills": ["Go", "Kubernetes", "Terraform"]}`
	letterResponse  = `{"paragraphs": ["The staff engineer opening at Acme Corp matches the platform scope this candidate has pursued for years.", "A background building freight marketplaces means contributing quickly to the logistics roadmap from week one."]}`
)

func TestGenerateFullBundle(t *testing.T) {
	caller := &sequencedCaller{responses: []string{
		profileResponse, bulletsResponse, skillsResponse, letterResponse,
	}}
	g := New(caller, testBudgets(), zap.NewNop())

	bundle, err := g.Generate(context.Background(), testPosting(), testFit(), testStrategy(), testPool())
	require.NoError(t, err)
	require.Len(t, caller.prompts, 4)

	assert.Equal(t, "Staff Engineer", bundle.RoleTitle)
	assert.Contains(t, bundle.Profile, "Platform engineering leader")
	require.Len(t, bundle.Bullets["acme"], 2)
	assert.Contains(t, bundle.Bullets["acme"][0], "500K users")
	assert.Equal(t, []string{"Go", "Kubernetes", "Terraform"}, bundle.Skills)
	require.Len(t, bundle.CoverLetter, 2)

	assert.Equal(t, []string{"500K users"}, bundle.MetricsUsed)
	assert.Equal(t, []string{"kubernetes"}, bundle.KeywordsUsed)
}

func TestGenerateProfileFallback(t *testing.T) {
	declined := `I cannot write a profile for this candidate without more information about them.`
	caller := &sequencedCaller{responses: []string{
		declined, declined, bulletsResponse, skillsResponse, letterResponse,
	}}
	g := New(caller, testBudgets(), zap.NewNop())

	bundle, err := g.Generate(context.Background(), testPosting(), testFit(), testStrategy(), testPool())
	require.NoError(t, err)

	// Two profile attempts, then bullets, skills, letter.
	assert.Len(t, caller.prompts, 5)
	assert.Equal(t, testPool().DefaultProfile, bundle.Profile)
}

func TestGenerateProfileFallbackMissing(t *testing.T) {
	declined := `I cannot write a profile for this candidate without more information about them.`
	caller := &sequencedCaller{responses: []string{declined}}
	g := New(caller, testBudgets(), zap.NewNop())

	pool := testPool()
	pool.DefaultProfile = ""

	_, err := g.Generate(context.Background(), testPosting(), testFit(), testStrategy(), pool)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no default profile")
}

func TestGenerateBulletRetry(t *testing.T) {
	// First attempt returns one bullet instead of two; the retry succeeds.
	shortList := `{"bullets": ["Scaled the ingestion platform to 500K users on kubernetes clusters"]}`
	caller := &sequencedCaller{responses: []string{
		profileResponse, shortList, bulletsResponse, skillsResponse, letterResponse,
	}}
	g := New(caller, testBudgets(), zap.NewNop())

	bundle, err := g.Generate(context.Background(), testPosting(), testFit(), testStrategy(), testPool())
	require.NoError(t, err)
	require.Len(t, caller.prompts, 5)

	// The retry prompt carries the rejection reason.
	assert.Contains(t, caller.prompts[2], "expected 2 bullets, got 1")
	assert.Len(t, bundle.Bullets["acme"], 2)
}

func TestGenerateBulletFallbackToLibrary(t *testing.T) {
	shortList := `{"bullets": ["too short"]}`
	caller := &sequencedCaller{responses: []string{
		profileResponse, shortList, shortList, skillsResponse, letterResponse,
	}}
	g := New(caller, testBudgets(), zap.NewNop())

	bundle, err := g.Generate(context.Background(), testPosting(), testFit(), testStrategy(), testPool())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Scaled ingestion to 500K users",
		"Shipped the routing engine rewrite",
	}, bundle.Bullets["acme"])
	assert.Contains(t, bundle.MetricsUsed, "500K users")
}

func TestGenerateLibraryAsIsSkipsModel(t *testing.T) {
	strat := testStrategy()
	strat.Records[0].Mode = types.ModeLibraryAsIs
	strat.Records[0].Keyword = ""

	caller := &sequencedCaller{responses: []string{
		profileResponse, skillsResponse, letterResponse,
	}}
	g := New(caller, testBudgets(), zap.NewNop())

	bundle, err := g.Generate(context.Background(), testPosting(), testFit(), strat, testPool())
	require.NoError(t, err)

	// Profile, skills, letter only; the bullets came straight from the library.
	assert.Len(t, caller.prompts, 3)
	assert.Equal(t, []string{
		"Scaled ingestion to 500K users",
		"Shipped the routing engine rewrite",
	}, bundle.Bullets["acme"])
}

func TestGenerateCoverLetterOmittedAfterRejection(t *testing.T) {
	onePara := `{"paragraphs": ["Too short to accept."]}`
	caller := &sequencedCaller{responses: []string{
		profileResponse, bulletsResponse, skillsResponse, onePara, onePara,
	}}
	g := New(caller, testBudgets(), zap.NewNop())

	bundle, err := g.Generate(context.Background(), testPosting(), testFit(), testStrategy(), testPool())
	require.NoError(t, err)

	// Two letter attempts, then the bundle ships without one.
	assert.Len(t, caller.prompts, 5)
	assert.Contains(t, caller.prompts[4], "expected 2 paragraphs")
	assert.Empty(t, bundle.CoverLetter)
	assert.Len(t, bundle.Bullets["acme"], 2)
}

func TestGenerateBulletKeywordRepeatRejected(t *testing.T) {
	// Both bullets carry the allocated keyword; the retry succeeds.
	dup := `{"bullets": ["Scaled the ingestion platform to 500K users on kubernetes clusters", "Led the kubernetes migration of routing services onto managed infrastructure"]}`
	caller := &sequencedCaller{responses: []string{
		profileResponse, dup, bulletsResponse, skillsResponse, letterResponse,
	}}
	g := New(caller, testBudgets(), zap.NewNop())

	bundle, err := g.Generate(context.Background(), testPosting(), testFit(), testStrategy(), testPool())
	require.NoError(t, err)
	require.Len(t, caller.prompts, 5)

	assert.Contains(t, caller.prompts[2], `keyword "kubernetes" appears in 2 bullets`)
	require.Len(t, bundle.Bullets["acme"], 2)
	assert.NotContains(t, bundle.Bullets["acme"][1], "kubernetes")
}

func TestGenerateBulletMetricRepeatRejected(t *testing.T) {
	// Both bullets cite the same metric; the retry succeeds.
	dup := `{"bullets": ["Scaled the ingestion platform to 500K users on kubernetes clusters", "Kept latency flat while growing the user base to 500K users overall"]}`
	caller := &sequencedCaller{responses: []string{
		profileResponse, dup, bulletsResponse, skillsResponse, letterResponse,
	}}
	g := New(caller, testBudgets(), zap.NewNop())

	bundle, err := g.Generate(context.Background(), testPosting(), testFit(), testStrategy(), testPool())
	require.NoError(t, err)
	require.Len(t, caller.prompts, 5)

	assert.Contains(t, caller.prompts[2], `metric "500K users" appears 2 times`)
	assert.Equal(t, []string{"500K users"}, bundle.MetricsUsed)
}

func TestGenerateLibraryBulletDropsClaimedMetric(t *testing.T) {
	// acme's generated bullets claim "500K users"; globex's library bullet
	// citing the same metric must not ship it a second time.
	pool := testPool()
	pool.Records = append(pool.Records, types.ExperienceRecord{
		ID: "globex", Company: "Globex", Role: "Engineer",
		Library: []types.LibraryBullet{
			{ID: "g1", Text: "Also scaled the portal to 500K users", Metric: "500K users"},
			{ID: "g2", Text: "Maintained the nightly batch jobs"},
		},
	})

	strat := testStrategy()
	strat.Records = append(strat.Records, types.RecordPlan{
		RecordID: "globex",
		Tier:     types.TierLow,
		Mode:     types.ModeLibraryAsIs,
	})
	strat.LibraryAsIs = []string{"globex"}

	caller := &sequencedCaller{responses: []string{
		profileResponse, bulletsResponse, skillsResponse, letterResponse,
	}}
	g := New(caller, testBudgets(), zap.NewNop())

	bundle, err := g.Generate(context.Background(), testPosting(), testFit(), strat, pool)
	require.NoError(t, err)

	assert.Equal(t, []string{"Maintained the nightly batch jobs"}, bundle.Bullets["globex"])
	assert.Equal(t, []string{"500K users"}, bundle.MetricsUsed)
}

func TestGenerateSkillsFallback(t *testing.T) {
	badSkills := `{"skills": ["Go"]}`
	caller := &sequencedCaller{responses: []string{
		profileResponse, bulletsResponse, badSkills, badSkills, letterResponse,
	}}
	g := New(caller, testBudgets(), zap.NewNop())

	bundle, err := g.Generate(context.Background(), testPosting(), testFit(), testStrategy(), testPool())
	require.NoError(t, err)

	assert.Equal(t, []string{"Go", "PostgreSQL"}, bundle.Skills)
}
