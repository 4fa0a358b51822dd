package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validFitAnalysis = `{
  "confidence": "high",
  "analysis": {
    "ats_screening": {"score": 8, "critical_missing_keywords": [], "years_experience_match": true, "education_match": true},
    "human_appeal": {"score": 9, "relevant_companies": true, "career_progression": true, "quantified_achievements": true},
    "domain_expertise": {"score": 7, "industry_match": "strong", "technical_alignment": "strong", "true_gaps": ["fintech"], "inferrable_from_experience": []},
    "role_fit": {"score": 8, "seniority_match": "appropriate", "compensation_alignment": "in range", "location_compatible": true}
  },
  "required_keywords_for_ats": ["golang"],
  "metrics_to_highlight": ["500K users"],
  "deal_breakers": [],
  "strategic_notes": "emphasize platform work"
}`

func TestValidateFitAnalysis(t *testing.T) {
	assert.NoError(t, Validate(FitAnalysis, validFitAnalysis))
}

func TestValidateFitAnalysisMissingDimension(t *testing.T) {
	err := Validate(FitAnalysis, `{"analysis": {"ats_screening": {"score": 5}}}`)
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.NotEmpty(t, ve.Errors)
}

func TestValidateFitAnalysisScoreOutOfRange(t *testing.T) {
	bad := `{
  "analysis": {
    "ats_screening": {"score": 14},
    "human_appeal": {"score": 9},
    "domain_expertise": {"score": 7},
    "role_fit": {"score": 8}
  }
}`
	var ve *ValidationError
	require.ErrorAs(t, Validate(FitAnalysis, bad), &ve)
}

func TestValidateFitAnalysisBadSeniority(t *testing.T) {
	bad := `{
  "analysis": {
    "ats_screening": {"score": 8},
    "human_appeal": {"score": 9},
    "domain_expertise": {"score": 7},
    "role_fit": {"score": 8, "seniority_match": "way-over"}
  }
}`
	var ve *ValidationError
	require.ErrorAs(t, Validate(FitAnalysis, bad), &ve)
}

func TestValidateGenerationShapes(t *testing.T) {
	assert.NoError(t, Validate(Profile, `{"profile": "Engineering leader."}`))
	assert.NoError(t, Validate(Bullets, `{"bullets": ["Shipped the platform"]}`))
	assert.NoError(t, Validate(Skills, `{"skills": ["Go", "Kubernetes"]}`))
	assert.NoError(t, Validate(CoverLetter, `{"paragraphs": ["Dear team,", "I write..."]}`))

	assert.Error(t, Validate(Profile, `{"profile": ""}`))
	assert.Error(t, Validate(Bullets, `{"bullets": []}`))
	assert.Error(t, Validate(Skills, `{}`))
}

func TestValidateUnknownSchema(t *testing.T) {
	err := Validate("nope", `{}`)
	require.Error(t, err)

	var le *SchemaLoadError
	assert.ErrorAs(t, err, &le)
}

func TestValidateMalformedJSON(t *testing.T) {
	assert.Error(t, Validate(Profile, `{"profile": `))
}
