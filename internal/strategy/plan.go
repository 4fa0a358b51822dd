// Package strategy turns a relevance assessment set into a generation plan:
// which records are featured, in which mode, and how the posting's keywords
// and the pool's metrics are budgeted across them.
package strategy

import (
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/jobfit-pipeline/internal/types"
)

// tierModes maps each relevance tier to its generation mode.
var tierModes = map[types.RelevanceTier]types.GenerationMode{
	types.TierHigh:   types.ModeStrategicNew,
	types.TierMedium: types.ModeEnhanceLibrary,
	types.TierLow:    types.ModeLibraryAsIs,
	types.TierSkip:   types.ModeOmit,
}

// Plan builds the content strategy for one posting. Assessments must be in
// classifier order (HIGH first, overlap descending); the plan is fully
// determined by its inputs.
//
// Budgeting rules: each HIGH or MEDIUM record receives at most one required
// keyword, preferring a keyword the record's skill tags already carry. Each
// distinct metric belongs to exactly one record, with the analysis's
// highlighted metrics claimed first; when two records document the same
// metric string, the earlier (stronger) assessment keeps it and the
// contention is logged but never fails the run.
func Plan(fit *types.FitAnalysis, assessments []types.RelevanceAssessment, pool *types.ExperiencePool, log *zap.Logger) types.ContentStrategy {
	if log == nil {
		log = zap.NewNop()
	}

	s := types.ContentStrategy{}
	keywords := append([]string(nil), fit.RequiredKeywords...)
	claimedMetrics := make(map[string]string)

	highlighted := make(map[string]bool, len(fit.MetricsToHighlight))
	for _, m := range fit.MetricsToHighlight {
		highlighted[m] = true
	}

	for _, a := range assessments {
		mode, ok := tierModes[a.Tier]
		if !ok {
			mode = types.ModeOmit
		}
		plan := types.RecordPlan{RecordID: a.RecordID, Tier: a.Tier, Mode: mode}

		rec := pool.Record(a.RecordID)
		if rec == nil {
			log.Warn("assessment references unknown record", zap.String("record_id", a.RecordID))
			continue
		}

		switch mode {
		case types.ModeStrategicNew, types.ModeEnhanceLibrary:
			plan.Keyword, keywords = takeKeyword(keywords, rec)
		case types.ModeLibraryAsIs, types.ModeOmit:
			// no keyword budget below MEDIUM
		}

		if mode != types.ModeOmit {
			for _, m := range orderMetrics(rec.Metrics(), highlighted) {
				if owner, taken := claimedMetrics[m]; taken {
					log.Info("metric contended, keeping stronger record",
						zap.String("metric", m),
						zap.String("kept", owner),
						zap.String("dropped", rec.ID))
					continue
				}
				claimedMetrics[m] = rec.ID
				plan.Metrics = append(plan.Metrics, m)
			}
		}

		s.Records = append(s.Records, plan)

		switch mode {
		case types.ModeStrategicNew:
			s.StrategicFocus = append(s.StrategicFocus, rec.ID)
		case types.ModeEnhanceLibrary:
			s.EnhancementTargets = append(s.EnhancementTargets, rec.ID)
		case types.ModeLibraryAsIs:
			s.LibraryAsIs = append(s.LibraryAsIs, rec.ID)
		case types.ModeOmit:
			s.Omitted = append(s.Omitted, rec.ID)
		}
	}

	s.RemainingKeywords = keywords
	return s
}

// orderMetrics puts the analysis's highlighted metrics ahead of the rest so
// the strongest evidence is claimed first and leads the record's budget.
func orderMetrics(metrics []string, highlighted map[string]bool) []string {
	if len(highlighted) == 0 {
		return metrics
	}
	out := make([]string, 0, len(metrics))
	for _, m := range metrics {
		if highlighted[m] {
			out = append(out, m)
		}
	}
	for _, m := range metrics {
		if !highlighted[m] {
			out = append(out, m)
		}
	}
	return out
}

// takeKeyword removes and returns one keyword for the record, preferring a
// keyword the record's skill tags already contain so generation stays
// grounded in documented experience.
func takeKeyword(keywords []string, rec *types.ExperienceRecord) (string, []string) {
	if len(keywords) == 0 {
		return "", keywords
	}

	tags := make(map[string]bool, len(rec.SkillTags))
	for _, t := range rec.SkillTags {
		tags[strings.ToLower(strings.TrimSpace(t))] = true
	}

	pick := 0
	for i, kw := range keywords {
		if tags[strings.ToLower(strings.TrimSpace(kw))] {
			pick = i
			break
		}
	}

	kw := keywords[pick]
	return kw, append(keywords[:pick:pick], keywords[pick+1:]...)
}
