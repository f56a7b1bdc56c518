package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

// VoteTally holds the agree/disagree/pass counts for one voting entity,
// either a whole conversation (pooled) or a single opinion group.
type VoteTally struct {
	AgreeCount    int `json:"agree_count"`
	DisagreeCount int `json:"disagree_count"`
	PassCount     int `json:"pass_count,omitempty"`
}

// Total returns agree+disagree, plus passes when includePasses is set.
func (t VoteTally) Total(includePasses bool) int {
	total := t.AgreeCount + t.DisagreeCount
	if includePasses {
		total += t.PassCount
	}
	return total
}

// Add returns the element-wise sum of two tallies.
func (t VoteTally) Add(other VoteTally) VoteTally {
	return VoteTally{
		AgreeCount:    t.AgreeCount + other.AgreeCount,
		DisagreeCount: t.DisagreeCount + other.DisagreeCount,
		PassCount:     t.PassCount + other.PassCount,
	}
}

func (t VoteTally) validate() error {
	if t.AgreeCount < 0 || t.DisagreeCount < 0 || t.PassCount < 0 {
		return fmt.Errorf("vote counts must be non-negative, got %d/%d/%d",
			t.AgreeCount, t.DisagreeCount, t.PassCount)
	}
	return nil
}

// VoteInfo is a tagged union: a comment carries either one pooled tally or a
// tally per opinion group. The variant is fixed at construction; group-only
// accessors on a pooled value fail with ErrGroupVotesRequired rather than
// degrading a pooled tally into a fake single-member group.
type VoteInfo struct {
	grouped bool
	pooled  VoteTally
	groups  map[string]VoteTally
}

// PooledVotes builds the pooled variant.
func PooledVotes(tally VoteTally) (VoteInfo, error) {
	if err := tally.validate(); err != nil {
		return VoteInfo{}, err
	}
	return VoteInfo{pooled: tally}, nil
}

// GroupVotes builds the per-group variant. The group map must be non-empty
// and every tally non-negative; the map is copied so later caller mutation
// cannot alias into the engine's working set.
func GroupVotes(groups map[string]VoteTally) (VoteInfo, error) {
	if len(groups) == 0 {
		return VoteInfo{}, fmt.Errorf("per-group votes require at least one group")
	}
	copied := make(map[string]VoteTally, len(groups))
	for name, tally := range groups {
		if name == "" {
			return VoteInfo{}, fmt.Errorf("opinion group name must not be empty")
		}
		if err := tally.validate(); err != nil {
			return VoteInfo{}, fmt.Errorf("group %q: %w", name, err)
		}
		copied[name] = tally
	}
	return VoteInfo{grouped: true, groups: copied}, nil
}

// IsGrouped reports whether this value carries per-group tallies.
func (v VoteInfo) IsGrouped() bool { return v.grouped }

// Sum returns the pooled tally, or for grouped votes the additive sum over
// all groups. This is the aggregate the pooled strategy and the significance
// filter operate on.
func (v VoteInfo) Sum() VoteTally {
	if !v.grouped {
		return v.pooled
	}
	var sum VoteTally
	for _, tally := range v.groups {
		sum = sum.Add(tally)
	}
	return sum
}

// GroupTallies returns the per-group tallies. The map is shared and must be
// treated as read-only.
func (v VoteInfo) GroupTallies() (map[string]VoteTally, error) {
	if !v.grouped {
		return nil, ErrGroupVotesRequired
	}
	return v.groups, nil
}

// GroupTally returns one group's tally.
func (v VoteInfo) GroupTally(groupID string) (VoteTally, error) {
	if !v.grouped {
		return VoteTally{}, ErrGroupVotesRequired
	}
	tally, ok := v.groups[groupID]
	if !ok {
		return VoteTally{}, fmt.Errorf("group %q: %w", groupID, ErrGroupNotFound)
	}
	return tally, nil
}

// GroupIDs returns the group names in sorted order, so every iteration over
// groups is reproducible.
func (v VoteInfo) GroupIDs() ([]string, error) {
	if !v.grouped {
		return nil, ErrGroupVotesRequired
	}
	ids := make([]string, 0, len(v.groups))
	for name := range v.groups {
		ids = append(ids, name)
	}
	sort.Strings(ids)
	return ids, nil
}

type voteInfoJSON struct {
	Tally  *VoteTally           `json:"tally,omitempty"`
	Groups map[string]VoteTally `json:"groups,omitempty"`
}

// MarshalJSON encodes the union as {"tally": ...} or {"groups": ...}.
func (v VoteInfo) MarshalJSON() ([]byte, error) {
	if v.grouped {
		return json.Marshal(voteInfoJSON{Groups: v.groups})
	}
	tally := v.pooled
	return json.Marshal(voteInfoJSON{Tally: &tally})
}

// UnmarshalJSON decodes the union, rejecting payloads that set both shapes
// or neither.
func (v *VoteInfo) UnmarshalJSON(data []byte) error {
	var raw voteInfoJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.Tally != nil && raw.Groups != nil:
		return fmt.Errorf("vote info must set exactly one of tally or groups, got both")
	case raw.Tally != nil:
		info, err := PooledVotes(*raw.Tally)
		if err != nil {
			return err
		}
		*v = info
	case len(raw.Groups) > 0:
		info, err := GroupVotes(raw.Groups)
		if err != nil {
			return err
		}
		*v = info
	default:
		return fmt.Errorf("vote info must set exactly one of tally or groups, got neither")
	}
	return nil
}
