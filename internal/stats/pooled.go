package stats

import (
	"math"

	"github.com/deliberation-tools/groundwork/internal/domain"
)

// PooledScorer scores comments on their summed tallies, ignoring opinion
// groups entirely. It is the right strategy when no clustering ran upstream
// or when the dataset ships a single pooled tally per comment.
type PooledScorer struct {
	baseScorer
}

// NewPooledScorer builds a pooled scorer over the given comments. Zero
// Config fields fall back to the pooled defaults (common ground 0.7).
func NewPooledScorer(comments []domain.Comment, cfg Config) *PooledScorer {
	return &PooledScorer{baseScorer: newBaseScorer(comments, cfg.normalized(DefaultPooledCommonGround))}
}

// CommonGroundAgree selects comments whose pooled agree rate clears the
// common ground threshold, scored by that rate.
func (s *PooledScorer) CommonGroundAgree(k int) []RankedComment {
	return s.commonGroundSide(k, func(v domain.VoteInfo) float64 {
		return TotalAgreeRate(v, s.cfg.IncludePasses, s.cfg.UseEstimate)
	})
}

// CommonGroundDisagree selects comments whose pooled disagree rate clears
// the common ground threshold.
func (s *PooledScorer) CommonGroundDisagree(k int) []RankedComment {
	return s.commonGroundSide(k, func(v domain.VoteInfo) float64 {
		return TotalDisagreeRate(v, s.cfg.IncludePasses, s.cfg.UseEstimate)
	})
}

// CommonGround selects both sides at once, scoring each comment by
// whichever of its agree or disagree rate is larger.
func (s *PooledScorer) CommonGround(k int) []RankedComment {
	return s.commonGroundSide(k, func(v domain.VoteInfo) float64 {
		return math.Max(
			TotalAgreeRate(v, s.cfg.IncludePasses, s.cfg.UseEstimate),
			TotalDisagreeRate(v, s.cfg.IncludePasses, s.cfg.UseEstimate),
		)
	})
}

func (s *PooledScorer) commonGroundSide(k int, rateOf func(domain.VoteInfo) float64) []RankedComment {
	var candidates []RankedComment
	for _, c := range s.filtered {
		score := rateOf(*c.Votes)
		if score >= s.cfg.MinCommonGroundProb {
			candidates = append(candidates, RankedComment{Comment: c, Score: score})
		}
	}
	return topK(candidates, k)
}

// Differences selects comments where agreement and disagreement are both
// substantial and near-equal: both rates inside the mid-band around 0.5 and
// the pass rate clear of the uncertain zone. The score
// 1 - |agree - disagree| - pass peaks for an even, engaged split.
func (s *PooledScorer) Differences(k int) []RankedComment {
	lo := 0.5 - s.cfg.MidBandHalfWidth
	hi := 0.5 + s.cfg.MidBandHalfWidth
	passCutoff := s.uncertaintyThreshold() - s.cfg.UncertaintyBuffer

	var candidates []RankedComment
	for _, c := range s.filtered {
		agree := TotalAgreeRate(*c.Votes, s.cfg.IncludePasses, s.cfg.UseEstimate)
		disagree := TotalDisagreeRate(*c.Votes, s.cfg.IncludePasses, s.cfg.UseEstimate)
		pass := TotalPassRate(*c.Votes, s.cfg.UseEstimate)
		if agree < lo || agree > hi || disagree < lo || disagree > hi {
			continue
		}
		if pass >= passCutoff {
			continue
		}
		score := 1 - math.Abs(agree-disagree) - pass
		candidates = append(candidates, RankedComment{Comment: c, Score: score})
	}
	return topK(candidates, k)
}

// NoCommonGroundMessage explains an empty common ground result.
func (s *PooledScorer) NoCommonGroundMessage() string { return s.noCommonGroundMessage() }

// NoDifferencesMessage explains an empty differences result.
func (s *PooledScorer) NoDifferencesMessage() string { return s.noDifferencesMessage() }

var _ Scorer = (*PooledScorer)(nil)
