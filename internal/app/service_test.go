package app

import (
	"context"
	"fmt"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deliberation-tools/groundwork/internal/domain"
	"github.com/deliberation-tools/groundwork/internal/stats"
)

func pooledComment(t *testing.T, id string, agree, disagree, pass int, topics ...domain.Topic) domain.Comment {
	t.Helper()
	votes, err := domain.PooledVotes(domain.VoteTally{AgreeCount: agree, DisagreeCount: disagree, PassCount: pass})
	require.NoError(t, err)
	return domain.Comment{ID: id, Text: "comment " + id, Votes: &votes, Topics: topics}
}

func groupedComment(t *testing.T, id string, groups map[string]domain.VoteTally, topics ...domain.Topic) domain.Comment {
	t.Helper()
	votes, err := domain.GroupVotes(groups)
	require.NoError(t, err)
	return domain.Comment{ID: id, Text: "comment " + id, Votes: &votes, Topics: topics}
}

func newTestService() *Service {
	return NewService(clockwork.NewFakeClock(), stats.DefaultConfig())
}

func TestService_Analyze_PooledReport(t *testing.T) {
	service := newTestService()

	report, err := service.Analyze(context.Background(), AnalyzeRequest{
		ConversationID: "conv-1",
		Comments: []domain.Comment{
			pooledComment(t, "c1", 20, 1, 2, domain.Topic{Name: "Economy"}),
			pooledComment(t, "c2", 12, 12, 0, domain.Topic{Name: "Economy"}),
			pooledComment(t, "c3", 2, 1, 0, domain.Topic{Name: "Health"}),
		},
	})
	require.NoError(t, err)

	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", report.RunID.String())
	assert.Equal(t, "conv-1", report.ConversationID)
	assert.Equal(t, StrategyPooled, report.Strategy)
	assert.Equal(t, 3, report.CommentCount)
	assert.Equal(t, 2, report.FilteredCount)
	assert.Equal(t, 23+24+3, report.VoteCount)
	assert.Empty(t, report.Groups)
	assert.Empty(t, report.Representatives)

	require.Len(t, report.CommonGround.Comments, 1)
	assert.Equal(t, "c1", report.CommonGround.Comments[0].Comment.ID)
	require.Len(t, report.Differences.Comments, 1)
	assert.Equal(t, "c2", report.Differences.Comments[0].Comment.ID)

	require.Len(t, report.Topics, 2)
	assert.Equal(t, "Economy", report.Topics[0].Name)
	assert.Equal(t, 2, report.Topics[0].CommentCount)
	assert.Equal(t, "Health", report.Topics[1].Name)
}

func TestService_Analyze_GroupAwareByShape(t *testing.T) {
	service := newTestService()

	report, err := service.Analyze(context.Background(), AnalyzeRequest{
		Comments: []domain.Comment{
			groupedComment(t, "c1", map[string]domain.VoteTally{
				"g1": {AgreeCount: 18, DisagreeCount: 2},
				"g2": {AgreeCount: 16, DisagreeCount: 4},
			}),
			groupedComment(t, "c2", map[string]domain.VoteTally{
				"g1": {AgreeCount: 10, DisagreeCount: 5},
				"g2": {AgreeCount: 2, DisagreeCount: 8},
			}),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, StrategyGroupAware, report.Strategy)

	require.Len(t, report.Groups, 2)
	assert.Equal(t, "g1", report.Groups[0].Name)
	assert.Equal(t, 20+15, report.Groups[0].VoteCount)

	require.Len(t, report.Representatives, 2)
	assert.Equal(t, "g1", report.Representatives[0].GroupID)
	require.Len(t, report.Representatives[0].Comments, 1)
	assert.Equal(t, "c2", report.Representatives[0].Comments[0].Comment.ID)
	assert.Equal(t, "g2", report.Representatives[1].GroupID)
	assert.Empty(t, report.Representatives[1].Comments)
}

func TestService_Analyze_ExplicitPooledOverGroupedVotes(t *testing.T) {
	service := newTestService()

	report, err := service.Analyze(context.Background(), AnalyzeRequest{
		Strategy: StrategyPooled,
		Comments: []domain.Comment{
			groupedComment(t, "c1", map[string]domain.VoteTally{
				"g1": {AgreeCount: 18, DisagreeCount: 2},
				"g2": {AgreeCount: 16, DisagreeCount: 4},
			}),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, StrategyPooled, report.Strategy)
	assert.Empty(t, report.Representatives)
	// Group totals still come from the vote shape, not the strategy.
	assert.Len(t, report.Groups, 2)
}

func TestService_Analyze_GroupAwareNeedsGroupedVotes(t *testing.T) {
	service := newTestService()

	_, err := service.Analyze(context.Background(), AnalyzeRequest{
		Strategy: StrategyGroupAware,
		Comments: []domain.Comment{pooledComment(t, "c1", 20, 5, 0)},
	})
	assert.ErrorIs(t, err, domain.ErrGroupVotesRequired)
}

func TestService_Analyze_RejectsMixedShapes(t *testing.T) {
	service := newTestService()

	_, err := service.Analyze(context.Background(), AnalyzeRequest{
		Comments: []domain.Comment{
			pooledComment(t, "c1", 20, 5, 0),
			groupedComment(t, "c2", map[string]domain.VoteTally{"g1": {AgreeCount: 10, DisagreeCount: 10}}),
		},
	})
	assert.ErrorIs(t, err, domain.ErrMixedVoteShapes)
}

func TestService_Analyze_RejectsEmptyInput(t *testing.T) {
	service := newTestService()

	_, err := service.Analyze(context.Background(), AnalyzeRequest{})
	assert.Error(t, err)
}

func TestService_Analyze_RejectsUnknownStrategy(t *testing.T) {
	service := newTestService()

	_, err := service.Analyze(context.Background(), AnalyzeRequest{
		Strategy: "quantum",
		Comments: []domain.Comment{pooledComment(t, "c1", 20, 5, 0)},
	})
	assert.ErrorContains(t, err, "quantum")
}

func TestService_Analyze_ConfigOverridePerRun(t *testing.T) {
	service := newTestService()

	cfg := stats.DefaultConfig()
	cfg.MinVoteCount = 5
	report, err := service.Analyze(context.Background(), AnalyzeRequest{
		Comments: []domain.Comment{pooledComment(t, "c1", 6, 1, 0)},
		Config:   &cfg,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.FilteredCount)

	// Same dataset against the service defaults stays below the floor.
	report, err = service.Analyze(context.Background(), AnalyzeRequest{
		Comments: []domain.Comment{pooledComment(t, "c1", 6, 1, 0)},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, report.FilteredCount)
	assert.Contains(t, report.CommonGround.Message, "20")
}

func TestService_Analyze_SelectionCapAtMaxSampleSize(t *testing.T) {
	service := newTestService()

	var comments []domain.Comment
	for i := 0; i < 15; i++ {
		comments = append(comments, pooledComment(t, fmtID("c", i), 20+i, 1, 0))
	}

	report, err := service.Analyze(context.Background(), AnalyzeRequest{Comments: comments})
	require.NoError(t, err)
	assert.Len(t, report.CommonGround.Comments, stats.DefaultMaxSampleSize)
}

func fmtID(prefix string, i int) string {
	return fmt.Sprintf("%s-%02d", prefix, i)
}
