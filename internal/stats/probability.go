package stats

import (
	"github.com/deliberation-tools/groundwork/internal/domain"
)

// rate computes numerator/denominator, optionally as the MAP estimate
// (numerator+1)/(denominator+2). The pseudo-counts remove divide-by-zero and
// bias sparse tallies toward 0.5, so a comment with two votes cannot look
// like unanimous consensus.
func rate(numerator, denominator int, useEstimate bool) float64 {
	if useEstimate {
		return float64(numerator+1) / float64(denominator+2)
	}
	if denominator == 0 {
		return 0
	}
	return float64(numerator) / float64(denominator)
}

// AgreeRate estimates the probability that a vote on this tally agrees.
// With includePasses=false and useEstimate=true, AgreeRate + DisagreeRate
// is exactly 1.
func AgreeRate(t domain.VoteTally, includePasses, useEstimate bool) float64 {
	return rate(t.AgreeCount, t.Total(includePasses), useEstimate)
}

// DisagreeRate estimates the probability that a vote on this tally disagrees.
func DisagreeRate(t domain.VoteTally, includePasses, useEstimate bool) float64 {
	return rate(t.DisagreeCount, t.Total(includePasses), useEstimate)
}

// PassRate estimates the probability that a voter passes. Passes are always
// part of the denominator here; the includePasses flag only governs the
// agree/disagree rates.
func PassRate(t domain.VoteTally, useEstimate bool) float64 {
	return rate(t.PassCount, t.Total(true), useEstimate)
}

// TotalAgreeRate is the pooled agree rate for either vote shape. Grouped
// votes are summed across groups first and smoothed once on the pooled sum;
// this is a distinct aggregate from the group-informed consensus product.
func TotalAgreeRate(v domain.VoteInfo, includePasses, useEstimate bool) float64 {
	return AgreeRate(v.Sum(), includePasses, useEstimate)
}

// TotalDisagreeRate is the pooled disagree rate for either vote shape.
func TotalDisagreeRate(v domain.VoteInfo, includePasses, useEstimate bool) float64 {
	return DisagreeRate(v.Sum(), includePasses, useEstimate)
}

// TotalPassRate is the pooled pass rate for either vote shape.
func TotalPassRate(v domain.VoteInfo, useEstimate bool) float64 {
	return PassRate(v.Sum(), useEstimate)
}

// GroupInformedAgreeConsensus is the product of every group's agree rate.
// The product rewards simultaneous strong agreement across all groups over
// any single group's extreme value. Fails on pooled votes.
func GroupInformedAgreeConsensus(v domain.VoteInfo, includePasses, useEstimate bool) (float64, error) {
	return groupProduct(v, func(t domain.VoteTally) float64 {
		return AgreeRate(t, includePasses, useEstimate)
	})
}

// GroupInformedDisagreeConsensus is the product of every group's disagree
// rate. Fails on pooled votes.
func GroupInformedDisagreeConsensus(v domain.VoteInfo, includePasses, useEstimate bool) (float64, error) {
	return groupProduct(v, func(t domain.VoteTally) float64 {
		return DisagreeRate(t, includePasses, useEstimate)
	})
}

// MinAgreeRateAcrossGroups is the smallest per-group agree rate. One
// dissenting group is enough to pull this below the common ground threshold.
// Fails on pooled votes.
func MinAgreeRateAcrossGroups(v domain.VoteInfo, includePasses, useEstimate bool) (float64, error) {
	return groupMin(v, func(t domain.VoteTally) float64 {
		return AgreeRate(t, includePasses, useEstimate)
	})
}

// MinDisagreeRateAcrossGroups is the smallest per-group disagree rate.
// Fails on pooled votes.
func MinDisagreeRateAcrossGroups(v domain.VoteInfo, includePasses, useEstimate bool) (float64, error) {
	return groupMin(v, func(t domain.VoteTally) float64 {
		return DisagreeRate(t, includePasses, useEstimate)
	})
}

// GroupComplementTally is the additive sum of every group's tally except
// groupID's. Fails on pooled votes or an unknown group.
func GroupComplementTally(v domain.VoteInfo, groupID string) (domain.VoteTally, error) {
	tallies, err := v.GroupTallies()
	if err != nil {
		return domain.VoteTally{}, err
	}
	if _, err := v.GroupTally(groupID); err != nil {
		return domain.VoteTally{}, err
	}
	var sum domain.VoteTally
	for name, tally := range tallies {
		if name == groupID {
			continue
		}
		sum = sum.Add(tally)
	}
	return sum, nil
}

// GroupAgreeDifference is the signed difference between groupID's agree rate
// and the agree rate of the complement (all other groups pooled together).
// Positive means this group agrees more than the rest. Fails on pooled votes.
func GroupAgreeDifference(v domain.VoteInfo, groupID string, includePasses, useEstimate bool) (float64, error) {
	tally, err := v.GroupTally(groupID)
	if err != nil {
		return 0, err
	}
	complement, err := GroupComplementTally(v, groupID)
	if err != nil {
		return 0, err
	}
	return AgreeRate(tally, includePasses, useEstimate) - AgreeRate(complement, includePasses, useEstimate), nil
}

// groupProduct folds a per-group rate into a product, iterating groups in
// sorted order so float results are reproducible bit-for-bit.
func groupProduct(v domain.VoteInfo, rateOf func(domain.VoteTally) float64) (float64, error) {
	ids, err := v.GroupIDs()
	if err != nil {
		return 0, err
	}
	product := 1.0
	for _, id := range ids {
		tally, _ := v.GroupTally(id)
		product *= rateOf(tally)
	}
	return product, nil
}

func groupMin(v domain.VoteInfo, rateOf func(domain.VoteTally) float64) (float64, error) {
	ids, err := v.GroupIDs()
	if err != nil {
		return 0, err
	}
	min := 1.0
	for _, id := range ids {
		tally, _ := v.GroupTally(id)
		if r := rateOf(tally); r < min {
			min = r
		}
	}
	return min, nil
}
