package topics

import (
	"sort"

	"github.com/deliberation-tools/groundwork/internal/domain"
)

// GroupStat is one opinion group's total vote volume over a node's
// comments, passes included.
type GroupStat struct {
	Name      string `json:"name"`
	VoteCount int    `json:"vote_count"`
}

// GroupVoteTotals sums votes per opinion group across the given comments.
// Pooled or vote-less comments contribute nothing; a fully pooled dataset
// yields an empty list. Sorted by descending vote count, then name.
func GroupVoteTotals(comments []domain.Comment) []GroupStat {
	totals := map[string]int{}
	for _, c := range comments {
		if !c.HasVotes() || !c.Votes.IsGrouped() {
			continue
		}
		tallies, err := c.Votes.GroupTallies()
		if err != nil {
			continue
		}
		for name, tally := range tallies {
			totals[name] += tally.Total(true)
		}
	}

	result := make([]GroupStat, 0, len(totals))
	for name, count := range totals {
		result = append(result, GroupStat{Name: name, VoteCount: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].VoteCount != result[j].VoteCount {
			return result[i].VoteCount > result[j].VoteCount
		}
		return result[i].Name < result[j].Name
	})
	return result
}
