package topics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deliberation-tools/groundwork/internal/domain"
)

func groupedComment(t *testing.T, id string, groups map[string]domain.VoteTally) domain.Comment {
	t.Helper()
	votes, err := domain.GroupVotes(groups)
	require.NoError(t, err)
	return domain.Comment{ID: id, Text: "comment " + id, Votes: &votes}
}

func TestGroupVoteTotals(t *testing.T) {
	comments := []domain.Comment{
		groupedComment(t, "c1", map[string]domain.VoteTally{
			"g1": {AgreeCount: 10, DisagreeCount: 5, PassCount: 1},
			"g2": {AgreeCount: 3, DisagreeCount: 2},
		}),
		groupedComment(t, "c2", map[string]domain.VoteTally{
			"g2": {AgreeCount: 20, DisagreeCount: 10},
		}),
		{ID: "no-votes"},
	}

	totals := GroupVoteTotals(comments)
	assert.Equal(t, []GroupStat{
		{Name: "g2", VoteCount: 35},
		{Name: "g1", VoteCount: 16},
	}, totals)
}

func TestGroupVoteTotals_PooledOnlyYieldsEmpty(t *testing.T) {
	tally := domain.VoteTally{AgreeCount: 10, DisagreeCount: 5}
	comments := []domain.Comment{topicComment(t, "c1", tally)}

	assert.Empty(t, GroupVoteTotals(comments))
}

func TestGroupVoteTotals_TiesBreakOnName(t *testing.T) {
	comments := []domain.Comment{
		groupedComment(t, "c1", map[string]domain.VoteTally{
			"zeta":  {AgreeCount: 5, DisagreeCount: 5},
			"alpha": {AgreeCount: 4, DisagreeCount: 6},
		}),
	}

	totals := GroupVoteTotals(comments)
	require.Len(t, totals, 2)
	assert.Equal(t, "alpha", totals[0].Name)
	assert.Equal(t, "zeta", totals[1].Name)
}
