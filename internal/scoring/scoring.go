// Package scoring implements the weighted fit score and recommendation decision.
package scoring

import (
	"math"

	"github.com/jonathan/jobfit-pipeline/internal/types"
)

// Weights for the four dimension scores. Human appeal dominates because
// interview conversion is the limiting factor, not ATS survival.
type Weights struct {
	ATSScreening    float64 `json:"ats_screening"`
	HumanAppeal     float64 `json:"human_appeal"`
	DomainExpertise float64 `json:"domain_expertise"`
	RoleFit         float64 `json:"role_fit"`
}

// DefaultWeights returns the calibrated dimension weights.
func DefaultWeights() Weights {
	return Weights{
		ATSScreening:    0.25,
		HumanAppeal:     0.35,
		DomainExpertise: 0.25,
		RoleFit:         0.15,
	}
}

// Thresholds hold the decision boundaries for the recommendation rules.
// They are configuration, not constants, until calibrated against real
// outcome data.
type Thresholds struct {
	ApplyOverall      int `json:"apply_overall"`       // rule 1: minimum overall score
	DimensionFloor    int `json:"dimension_floor"`     // rule 1: no dimension below this
	StrongHumanAppeal int `json:"strong_human_appeal"` // rule 2: human appeal at or above this
	NetworkOverallMin int `json:"network_overall_min"` // rule 3: overall in [min, ApplyOverall)
	NetworkDomainMin  int `json:"network_domain_min"`  // rule 3: domain expertise floor
}

// DefaultThresholds returns the default decision boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ApplyOverall:      7,
		DimensionFloor:    5,
		StrongHumanAppeal: 7,
		NetworkOverallMin: 4,
		NetworkDomainMin:  5,
	}
}

// Evaluate combines the four dimension scores into an overall score and a
// recommendation. Pure and deterministic: same input, same output, no I/O.
//
// The recommendation rules are evaluated in precedence order and the first
// match wins:
//  1. overall >= ApplyOverall and no dimension below DimensionFloor -> apply_now
//  2. human appeal >= StrongHumanAppeal and seniority mismatched    -> apply_different_level
//  3. overall in [NetworkOverallMin, ApplyOverall) and domain >= NetworkDomainMin -> network_first
//  4. otherwise -> skip
func Evaluate(d types.DimensionScores, w Weights, t Thresholds) (int, types.Recommendation) {
	weighted := float64(d.ATSScreening.Score)*w.ATSScreening +
		float64(d.HumanAppeal.Score)*w.HumanAppeal +
		float64(d.DomainExpertise.Score)*w.DomainExpertise +
		float64(d.RoleFit.Score)*w.RoleFit

	overall := clamp(int(math.Round(weighted)), 1, 10)

	lowest := d.ATSScreening.Score
	for _, s := range []int{d.HumanAppeal.Score, d.DomainExpertise.Score, d.RoleFit.Score} {
		if s < lowest {
			lowest = s
		}
	}

	switch {
	case overall >= t.ApplyOverall && lowest >= t.DimensionFloor:
		return overall, types.RecommendApplyNow
	case d.HumanAppeal.Score >= t.StrongHumanAppeal && seniorityMismatch(d.RoleFit):
		return overall, types.RecommendApplyDifferentLevel
	case overall >= t.NetworkOverallMin && overall < t.ApplyOverall && d.DomainExpertise.Score >= t.NetworkDomainMin:
		return overall, types.RecommendNetworkFirst
	default:
		return overall, types.RecommendSkip
	}
}

// InterviewProbability derives a 0-100 estimate for the tracking row from
// the overall score and human appeal. Deterministic by design so reruns on
// unchanged input produce identical tracking rows.
func InterviewProbability(overall int, d types.DimensionScores) int {
	p := overall*7 + d.HumanAppeal.Score*3
	return clamp(p, 0, 100)
}

// seniorityMismatch reports whether role fit indicates the candidate is
// over or under the posting's level. An unreported value is not a mismatch.
func seniorityMismatch(rf types.RoleFit) bool {
	return rf.SeniorityMatch == types.SeniorityOver || rf.SeniorityMatch == types.SeniorityUnder
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
