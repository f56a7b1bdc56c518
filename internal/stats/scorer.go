package stats

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/deliberation-tools/groundwork/internal/domain"
)

// All selects every qualifying comment instead of a top-k sample. Used by
// the relative-context metrics, which need exhaustive counts.
const All = -1

// Default thresholds. MinCommonGroundProb has no package default because the
// two strategies disagree on it; each constructor fills its own.
const (
	DefaultMinVoteCount           = 20
	DefaultPooledCommonGround     = 0.7
	DefaultGroupAwareCommonGround = 0.6
	DefaultMinAgreeProbDifference = 0.3
	DefaultUncertaintyBuffer      = 0.05
	DefaultUncertaintyFloor       = 0.2
	DefaultMidBandHalfWidth       = 0.1
	DefaultMaxSampleSize          = 12

	uncertaintyPercentile = 0.75
)

// Config carries the scorer thresholds. Zero numeric fields are replaced
// with the defaults above when a scorer is constructed, so a partially
// populated Config overrides only what it names. The flip side is that a
// numeric threshold cannot be set to literally 0; the defaults double as
// effective minimums.
type Config struct {
	// MinVoteCount is the statistical-significance floor: comments with
	// fewer total votes are excluded from ranking but stay visible in
	// counts and topic membership.
	MinVoteCount int

	// MinCommonGroundProb gates common ground eligibility. For the
	// group-aware strategy it applies to the minimum per-group rate; for
	// the pooled strategy to the pooled rate.
	MinCommonGroundProb float64

	// MinAgreeProbDifference is the smallest cross-group rate split that
	// counts as a difference of opinion.
	MinAgreeProbDifference float64

	// UncertaintyBuffer keeps the differences-of-opinion band clear of the
	// uncertain set: a pooled comment only qualifies as a difference while
	// its pass rate stays below the uncertainty threshold minus this buffer.
	UncertaintyBuffer float64

	// UncertaintyFloor is the fixed fallback when the observed pass-rate
	// distribution is too uniform for the percentile to mean anything.
	UncertaintyFloor float64

	// MidBandHalfWidth is half the width of the pooled differences band
	// around 0.5; the default gives [0.4, 0.6].
	MidBandHalfWidth float64

	// MaxSampleSize caps how many comments a report section quotes.
	MaxSampleSize int

	// IncludePasses adds passes to the agree/disagree denominators.
	IncludePasses bool

	// UseEstimate selects MAP smoothing over raw ratios.
	UseEstimate bool
}

// DefaultConfig returns the engine defaults with smoothing on.
// MinCommonGroundProb stays zero so each strategy applies its own default.
func DefaultConfig() Config {
	return Config{
		MinVoteCount:           DefaultMinVoteCount,
		MinAgreeProbDifference: DefaultMinAgreeProbDifference,
		UncertaintyBuffer:      DefaultUncertaintyBuffer,
		UncertaintyFloor:       DefaultUncertaintyFloor,
		MidBandHalfWidth:       DefaultMidBandHalfWidth,
		MaxSampleSize:          DefaultMaxSampleSize,
		UseEstimate:            true,
	}
}

// normalized fills zero numeric fields with defaults, taking the strategy's
// own common ground threshold.
func (c Config) normalized(defaultCommonGround float64) Config {
	if c.MinVoteCount == 0 {
		c.MinVoteCount = DefaultMinVoteCount
	}
	if c.MinCommonGroundProb == 0 {
		c.MinCommonGroundProb = defaultCommonGround
	}
	if c.MinAgreeProbDifference == 0 {
		c.MinAgreeProbDifference = DefaultMinAgreeProbDifference
	}
	if c.UncertaintyBuffer == 0 {
		c.UncertaintyBuffer = DefaultUncertaintyBuffer
	}
	if c.UncertaintyFloor == 0 {
		c.UncertaintyFloor = DefaultUncertaintyFloor
	}
	if c.MidBandHalfWidth == 0 {
		c.MidBandHalfWidth = DefaultMidBandHalfWidth
	}
	if c.MaxSampleSize == 0 {
		c.MaxSampleSize = DefaultMaxSampleSize
	}
	return c
}

// RankedComment is one selected comment with the score that ranked it.
type RankedComment struct {
	Comment domain.Comment `json:"comment"`
	Score   float64        `json:"score"`
}

// Scorer ranks a fixed comment collection into the three evidence
// categories. Implementations are scoped to exactly one topic node's
// comments and hold no shared mutable state.
type Scorer interface {
	// CommonGround selects comments with broad agreement or broad
	// disagreement. k > 0 caps the result; All returns every candidate.
	CommonGround(k int) []RankedComment
	// CommonGroundAgree selects only the broad-agreement side.
	CommonGroundAgree(k int) []RankedComment
	// CommonGroundDisagree selects only the broad-disagreement side.
	CommonGroundDisagree(k int) []RankedComment
	// Differences selects comments that split opinion without qualifying
	// as common ground. Disjoint from CommonGround for any fixed scorer.
	Differences(k int) []RankedComment
	// Uncertain selects comments ranked by pass rate above the adaptive
	// uncertainty threshold.
	Uncertain(k int) []RankedComment

	// FilteredComments is the ranking population: comments with votes
	// present and at least MinVoteCount total votes.
	FilteredComments() []domain.Comment
	// CommentCount is the size of the full, unfiltered collection.
	CommentCount() int
	// VoteCount is the total number of votes (passes included) across the
	// full collection.
	VoteCount() int

	// NoCommonGroundMessage explains an empty common ground selection,
	// citing the exact thresholds used.
	NoCommonGroundMessage() string
	// NoDifferencesMessage explains an empty differences selection.
	NoDifferencesMessage() string
}

// Factory builds a strategy-specific scorer for one node's comments. The
// topic aggregator calls it once per tree node; the group-aware factory
// fails on pooled data, which the aggregator propagates.
type Factory func(comments []domain.Comment, cfg Config) (Scorer, error)

// PooledFactory builds pooled scorers.
func PooledFactory(comments []domain.Comment, cfg Config) (Scorer, error) {
	return NewPooledScorer(comments, cfg), nil
}

// GroupAwareFactory builds group-aware scorers.
func GroupAwareFactory(comments []domain.Comment, cfg Config) (Scorer, error) {
	return NewGroupAwareScorer(comments, cfg)
}

// baseScorer carries the filtering, ranking, and uncertainty machinery
// shared by both strategies.
type baseScorer struct {
	cfg      Config
	comments []domain.Comment
	filtered []domain.Comment
}

func newBaseScorer(comments []domain.Comment, cfg Config) baseScorer {
	filtered := make([]domain.Comment, 0, len(comments))
	for _, c := range comments {
		if !c.HasVotes() {
			continue
		}
		if c.Votes.Sum().Total(true) < cfg.MinVoteCount {
			continue
		}
		filtered = append(filtered, c)
	}
	return baseScorer{cfg: cfg, comments: comments, filtered: filtered}
}

func (b *baseScorer) FilteredComments() []domain.Comment { return b.filtered }

func (b *baseScorer) CommentCount() int { return len(b.comments) }

func (b *baseScorer) VoteCount() int {
	total := 0
	for _, c := range b.comments {
		if c.HasVotes() {
			total += c.Votes.Sum().Total(true)
		}
	}
	return total
}

// uncertaintyThreshold adapts the "don't know" cutoff to the dataset: the
// empirical 75th percentile of observed pass rates, floored so a uniform
// distribution cannot make everything look uncertain. Report outputs depend
// on reproducing this computation exactly.
func (b *baseScorer) uncertaintyThreshold() float64 {
	if len(b.filtered) == 0 {
		return b.cfg.UncertaintyFloor
	}
	rates := make([]float64, len(b.filtered))
	for i, c := range b.filtered {
		rates[i] = TotalPassRate(*c.Votes, b.cfg.UseEstimate)
	}
	sort.Float64s(rates)
	percentile := stat.Quantile(uncertaintyPercentile, stat.Empirical, rates, nil)
	if percentile < b.cfg.UncertaintyFloor {
		return b.cfg.UncertaintyFloor
	}
	return percentile
}

// Uncertain ranks filtered comments by pass rate; only comments whose pass
// rate clears the adaptive threshold qualify. Shared by both strategies,
// which differ only in how the pooled pass rate is reached (summed tallies
// for grouped data).
func (b *baseScorer) Uncertain(k int) []RankedComment {
	threshold := b.uncertaintyThreshold()
	var candidates []RankedComment
	for _, c := range b.filtered {
		passRate := TotalPassRate(*c.Votes, b.cfg.UseEstimate)
		if passRate > threshold {
			candidates = append(candidates, RankedComment{Comment: c, Score: passRate})
		}
	}
	return topK(candidates, k)
}

// topK orders candidates by descending score with comment id as the
// tie-break, then truncates to k. k <= 0 (All) returns every candidate,
// and k beyond the candidate count returns what exists, never padded.
func topK(candidates []RankedComment, k int) []RankedComment {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Comment.ID < candidates[j].Comment.ID
	})
	if k > 0 && len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates
}

func (b *baseScorer) noCommonGroundMessage() string {
	return fmt.Sprintf(
		"No comments met the common ground criteria: at least %d votes and a minimum agreement (or disagreement) probability of %.2f.",
		b.cfg.MinVoteCount, b.cfg.MinCommonGroundProb)
}

func (b *baseScorer) noDifferencesMessage() string {
	return fmt.Sprintf(
		"No comments met the difference of opinion criteria: at least %d votes and an agreement probability difference of more than %.2f.",
		b.cfg.MinVoteCount, b.cfg.MinAgreeProbDifference)
}
