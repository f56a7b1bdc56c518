package stats

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deliberation-tools/groundwork/internal/domain"
)

func pooledComment(t *testing.T, id string, agree, disagree, pass int) domain.Comment {
	t.Helper()
	votes, err := domain.PooledVotes(domain.VoteTally{AgreeCount: agree, DisagreeCount: disagree, PassCount: pass})
	require.NoError(t, err)
	return domain.Comment{ID: id, Text: "comment " + id, Votes: &votes}
}

func groupComment(t *testing.T, id string, groups map[string]domain.VoteTally) domain.Comment {
	t.Helper()
	votes, err := domain.GroupVotes(groups)
	require.NoError(t, err)
	return domain.Comment{ID: id, Text: "comment " + id, Votes: &votes}
}

func TestScorer_FiltersByVoteCount(t *testing.T) {
	comments := []domain.Comment{
		{ID: "no-votes", Text: "never voted on"},
		pooledComment(t, "too-few", 10, 5, 4),  // 19 votes
		pooledComment(t, "enough", 10, 6, 4),   // 20 votes
		pooledComment(t, "plenty", 30, 10, 10), // 50 votes
	}
	scorer := NewPooledScorer(comments, DefaultConfig())

	filtered := scorer.FilteredComments()
	require.Len(t, filtered, 2)
	assert.Equal(t, "enough", filtered[0].ID)
	assert.Equal(t, "plenty", filtered[1].ID)

	assert.Equal(t, 4, scorer.CommentCount())
	assert.Equal(t, 19+20+50, scorer.VoteCount())
}

func TestScorer_RaisingMinVoteCountNeverEnlargesFilter(t *testing.T) {
	comments := []domain.Comment{
		pooledComment(t, "a", 5, 5, 0),
		pooledComment(t, "b", 15, 10, 0),
		pooledComment(t, "c", 30, 20, 5),
		pooledComment(t, "d", 100, 50, 25),
	}

	previous := len(comments) + 1
	for _, minVotes := range []int{1, 10, 25, 55, 200} {
		cfg := DefaultConfig()
		cfg.MinVoteCount = minVotes
		scorer := NewPooledScorer(comments, cfg)
		size := len(scorer.FilteredComments())
		assert.LessOrEqual(t, size, previous, "minVotes=%d", minVotes)
		previous = size
	}
}

func TestScorer_UncertaintyThresholdFloorsAtDefault(t *testing.T) {
	// Pass rates 2/40, 3/30, 6/40, 20/40: the 75th percentile is 0.15, which
	// falls below the 0.2 floor, so only the 0.5 comment counts as uncertain.
	comments := []domain.Comment{
		pooledComment(t, "clear-1", 20, 17, 1),
		pooledComment(t, "clear-2", 14, 12, 2),
		pooledComment(t, "clear-3", 20, 13, 5),
		pooledComment(t, "unclear", 10, 9, 19),
	}
	scorer := NewPooledScorer(comments, DefaultConfig())

	uncertain := scorer.Uncertain(All)
	require.Len(t, uncertain, 1)
	assert.Equal(t, "unclear", uncertain[0].Comment.ID)
	assert.Equal(t, 0.5, uncertain[0].Score)
}

func TestScorer_UncertainUsesEmpiricalPercentile(t *testing.T) {
	// Pass rates 12/40, 14/40, 16/40, 20/40: the 75th percentile is 0.4,
	// above the floor, and only the comment strictly above it qualifies.
	comments := []domain.Comment{
		pooledComment(t, "a", 15, 12, 11),
		pooledComment(t, "b", 14, 11, 13),
		pooledComment(t, "c", 13, 10, 15),
		pooledComment(t, "d", 11, 8, 19),
	}
	scorer := NewPooledScorer(comments, DefaultConfig())

	uncertain := scorer.Uncertain(All)
	require.Len(t, uncertain, 1)
	assert.Equal(t, "d", uncertain[0].Comment.ID)
	assert.Equal(t, 0.5, uncertain[0].Score)
}

// lowPassFiller returns n comments with a 2/40 pass rate, enough of them to
// pin the empirical 75th percentile below the uncertainty floor.
func lowPassFiller(t *testing.T, n int) []domain.Comment {
	t.Helper()
	comments := make([]domain.Comment, 0, n)
	for i := 0; i < n; i++ {
		comments = append(comments, pooledComment(t, fmt.Sprintf("filler-%02d", i), 20, 17, 1))
	}
	return comments
}

func TestScorer_UncertainCapsAtK(t *testing.T) {
	comments := append(lowPassFiller(t, 9),
		pooledComment(t, "a", 10, 9, 19),  // pass 20/40 = 0.5
		pooledComment(t, "b", 8, 7, 23),   // pass 24/40 = 0.6
		pooledComment(t, "c", 12, 11, 15), // pass 16/40 = 0.4
	)
	scorer := NewPooledScorer(comments, DefaultConfig())

	uncertain := scorer.Uncertain(2)
	require.Len(t, uncertain, 2)
	assert.Equal(t, "b", uncertain[0].Comment.ID)
	assert.Equal(t, "a", uncertain[1].Comment.ID)
}

func TestScorer_TieBreaksOnCommentID(t *testing.T) {
	comments := append(lowPassFiller(t, 6),
		pooledComment(t, "beta", 8, 7, 23),
		pooledComment(t, "alpha", 8, 7, 23),
	)
	scorer := NewPooledScorer(comments, DefaultConfig())

	uncertain := scorer.Uncertain(1)
	require.Len(t, uncertain, 1)
	assert.Equal(t, "alpha", uncertain[0].Comment.ID)
}

func TestScorer_EmptySelectionMessagesCiteThresholds(t *testing.T) {
	scorer := NewPooledScorer(nil, DefaultConfig())

	assert.Contains(t, scorer.NoCommonGroundMessage(), "20")
	assert.Contains(t, scorer.NoCommonGroundMessage(), "0.70")
	assert.Contains(t, scorer.NoDifferencesMessage(), "20")
	assert.Contains(t, scorer.NoDifferencesMessage(), "0.30")
}

func TestConfig_NormalizedFillsZeroFields(t *testing.T) {
	cfg := Config{}.normalized(DefaultGroupAwareCommonGround)

	assert.Equal(t, DefaultMinVoteCount, cfg.MinVoteCount)
	assert.Equal(t, DefaultGroupAwareCommonGround, cfg.MinCommonGroundProb)
	assert.Equal(t, DefaultMinAgreeProbDifference, cfg.MinAgreeProbDifference)
	assert.Equal(t, DefaultUncertaintyBuffer, cfg.UncertaintyBuffer)
	assert.Equal(t, DefaultUncertaintyFloor, cfg.UncertaintyFloor)
	assert.Equal(t, DefaultMidBandHalfWidth, cfg.MidBandHalfWidth)
	assert.Equal(t, DefaultMaxSampleSize, cfg.MaxSampleSize)
}

func TestConfig_NormalizedKeepsExplicitValues(t *testing.T) {
	cfg := Config{MinVoteCount: 5, MinCommonGroundProb: 0.9}.normalized(DefaultPooledCommonGround)

	assert.Equal(t, 5, cfg.MinVoteCount)
	assert.Equal(t, 0.9, cfg.MinCommonGroundProb)
}
