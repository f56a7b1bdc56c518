package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/deliberation-tools/groundwork/internal/domain"
)

// GroupAwareScorer scores comments on their per-group tallies. Common
// ground requires every group to clear the threshold simultaneously;
// differences and representative selections compare each group against the
// pooled complement of the others.
type GroupAwareScorer struct {
	baseScorer
	groupIDs []string
}

// NewGroupAwareScorer builds a group-aware scorer. The vote shape is
// checked exhaustively up front: any filtered comment carrying a pooled
// tally fails construction with ErrGroupVotesRequired, so the selection
// methods never probe shapes mid-computation. Zero Config fields fall back
// to the group-aware defaults (common ground 0.6).
func NewGroupAwareScorer(comments []domain.Comment, cfg Config) (*GroupAwareScorer, error) {
	base := newBaseScorer(comments, cfg.normalized(DefaultGroupAwareCommonGround))

	seen := map[string]bool{}
	for _, c := range base.filtered {
		ids, err := c.Votes.GroupIDs()
		if err != nil {
			return nil, fmt.Errorf("comment %q: %w", c.ID, err)
		}
		for _, id := range ids {
			seen[id] = true
		}
	}
	groupIDs := make([]string, 0, len(seen))
	for id := range seen {
		groupIDs = append(groupIDs, id)
	}
	sort.Strings(groupIDs)

	return &GroupAwareScorer{baseScorer: base, groupIDs: groupIDs}, nil
}

// GroupIDs returns every opinion group seen across the filtered comments,
// sorted.
func (s *GroupAwareScorer) GroupIDs() []string { return s.groupIDs }

// CommonGroundAgree selects comments every group agrees with: eligible only
// when the minimum per-group agree rate clears the threshold, scored by the
// group-informed consensus product.
func (s *GroupAwareScorer) CommonGroundAgree(k int) []RankedComment {
	return s.commonGroundSide(k, MinAgreeRateAcrossGroups, GroupInformedAgreeConsensus)
}

// CommonGroundDisagree selects comments every group disagrees with.
func (s *GroupAwareScorer) CommonGroundDisagree(k int) []RankedComment {
	return s.commonGroundSide(k, MinDisagreeRateAcrossGroups, GroupInformedDisagreeConsensus)
}

// CommonGround merges both sides, scoring each comment by the larger of its
// agree and disagree consensus products. A comment qualifies if either side
// passes its minimum-rate gate; one dissenting group disqualifies that side.
func (s *GroupAwareScorer) CommonGround(k int) []RankedComment {
	var candidates []RankedComment
	for _, c := range s.filtered {
		agreeOK, agreeScore := s.sideScore(*c.Votes, MinAgreeRateAcrossGroups, GroupInformedAgreeConsensus)
		disagreeOK, disagreeScore := s.sideScore(*c.Votes, MinDisagreeRateAcrossGroups, GroupInformedDisagreeConsensus)
		if !agreeOK && !disagreeOK {
			continue
		}
		score := 0.0
		if agreeOK {
			score = agreeScore
		}
		if disagreeOK && disagreeScore > score {
			score = disagreeScore
		}
		candidates = append(candidates, RankedComment{Comment: c, Score: score})
	}
	return topK(candidates, k)
}

type groupRateFunc func(domain.VoteInfo, bool, bool) (float64, error)

func (s *GroupAwareScorer) commonGroundSide(k int, minRate, consensus groupRateFunc) []RankedComment {
	var candidates []RankedComment
	for _, c := range s.filtered {
		ok, score := s.sideScore(*c.Votes, minRate, consensus)
		if ok {
			candidates = append(candidates, RankedComment{Comment: c, Score: score})
		}
	}
	return topK(candidates, k)
}

// sideScore gates one side (agree or disagree) on its minimum per-group
// rate and returns the consensus product as the score. Vote shapes were
// validated at construction, so the rate errors cannot fire here.
func (s *GroupAwareScorer) sideScore(v domain.VoteInfo, minRate, consensus groupRateFunc) (bool, float64) {
	min, err := minRate(v, s.cfg.IncludePasses, s.cfg.UseEstimate)
	if err != nil || min < s.cfg.MinCommonGroundProb {
		return false, 0
	}
	score, err := consensus(v, s.cfg.IncludePasses, s.cfg.UseEstimate)
	if err != nil {
		return false, 0
	}
	return true, score
}

// Differences selects comments that genuinely split the groups: no side
// qualifies as common ground, and some group's agree rate differs from the
// complement of the other groups by more than MinAgreeProbDifference. The
// score is the largest absolute per-group difference.
func (s *GroupAwareScorer) Differences(k int) []RankedComment {
	var candidates []RankedComment
	for _, c := range s.filtered {
		if !s.splitExists(*c.Votes) {
			continue
		}
		maxDiff := s.maxAbsGroupDifference(*c.Votes)
		if maxDiff > s.cfg.MinAgreeProbDifference {
			candidates = append(candidates, RankedComment{Comment: c, Score: maxDiff})
		}
	}
	return topK(candidates, k)
}

// GroupRepresentative selects comments this one group agrees with notably
// more than everyone else: a genuine split exists and the signed difference
// for groupID exceeds MinAgreeProbDifference. One-directional by design;
// comments the group dislikes more than the rest do not qualify.
func (s *GroupAwareScorer) GroupRepresentative(groupID string, k int) ([]RankedComment, error) {
	found := false
	for _, id := range s.groupIDs {
		if id == groupID {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("group %q: %w", groupID, domain.ErrGroupNotFound)
	}

	var candidates []RankedComment
	for _, c := range s.filtered {
		if _, err := c.Votes.GroupTally(groupID); err != nil {
			// This comment has no votes from the group.
			continue
		}
		if !s.splitExists(*c.Votes) {
			continue
		}
		diff, err := GroupAgreeDifference(*c.Votes, groupID, s.cfg.IncludePasses, s.cfg.UseEstimate)
		if err != nil {
			continue
		}
		if diff > s.cfg.MinAgreeProbDifference {
			candidates = append(candidates, RankedComment{Comment: c, Score: diff})
		}
	}
	return topK(candidates, k), nil
}

// splitExists reports whether the comment fails both common ground gates,
// which keeps the differences and representative selections disjoint from
// every common ground selection of the same scorer.
func (s *GroupAwareScorer) splitExists(v domain.VoteInfo) bool {
	minAgree, err := MinAgreeRateAcrossGroups(v, s.cfg.IncludePasses, s.cfg.UseEstimate)
	if err != nil || minAgree >= s.cfg.MinCommonGroundProb {
		return false
	}
	minDisagree, err := MinDisagreeRateAcrossGroups(v, s.cfg.IncludePasses, s.cfg.UseEstimate)
	if err != nil || minDisagree >= s.cfg.MinCommonGroundProb {
		return false
	}
	return true
}

func (s *GroupAwareScorer) maxAbsGroupDifference(v domain.VoteInfo) float64 {
	ids, err := v.GroupIDs()
	if err != nil {
		return 0
	}
	maxDiff := 0.0
	for _, id := range ids {
		diff, err := GroupAgreeDifference(v, id, s.cfg.IncludePasses, s.cfg.UseEstimate)
		if err != nil {
			continue
		}
		if abs := math.Abs(diff); abs > maxDiff {
			maxDiff = abs
		}
	}
	return maxDiff
}

// NoCommonGroundMessage explains an empty common ground result.
func (s *GroupAwareScorer) NoCommonGroundMessage() string { return s.noCommonGroundMessage() }

// NoDifferencesMessage explains an empty differences result.
func (s *GroupAwareScorer) NoDifferencesMessage() string { return s.noDifferencesMessage() }

var _ Scorer = (*GroupAwareScorer)(nil)
