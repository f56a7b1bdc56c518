package topics

import (
	"gonum.org/v1/gonum/stat"

	"github.com/deliberation-tools/groundwork/internal/stats"
)

// Level is a comparative bucket for a subtopic metric. Labels are relative
// to the sibling distribution, never absolute: "high" engagement in a quiet
// conversation can carry fewer votes than "low" in a loud one.
type Level string

const (
	LevelLow            Level = "low"
	LevelModeratelyLow  Level = "moderately-low"
	LevelModeratelyHigh Level = "moderately-high"
	LevelHigh           Level = "high"
)

// NodeContext is one sibling's comparative standing. Alignment measures how
// much of the node is settled common ground; engagement measures how much
// attention the node drew relative to the busiest sibling.
type NodeContext struct {
	Name            string  `json:"name"`
	Alignment       float64 `json:"alignment"`
	Engagement      float64 `json:"engagement"`
	AlignmentLabel  Level   `json:"alignment_label"`
	EngagementLabel Level   `json:"engagement_label"`
}

// RelativeContext compares the direct subtopic children of a topic against
// each other. Per node: alignment = (unbounded common-ground-agree count +
// unbounded common-ground-disagree count) / comment count; engagement =
// commentCount/maxSiblingCommentCount + voteCount/maxSiblingVoteCount,
// bounded in [0,2]. Each metric is bucketed against the sibling mean and
// sample standard deviation.
func RelativeContext(siblings []TopicStats) []NodeContext {
	if len(siblings) == 0 {
		return nil
	}

	maxComments, maxVotes := 0, 0
	for _, node := range siblings {
		if node.CommentCount > maxComments {
			maxComments = node.CommentCount
		}
		if votes := node.Scorer.VoteCount(); votes > maxVotes {
			maxVotes = votes
		}
	}

	contexts := make([]NodeContext, len(siblings))
	alignments := make([]float64, len(siblings))
	engagements := make([]float64, len(siblings))
	for i, node := range siblings {
		alignments[i] = alignment(node)
		engagements[i] = engagement(node, maxComments, maxVotes)
		contexts[i] = NodeContext{
			Name:       node.Name,
			Alignment:  alignments[i],
			Engagement: engagements[i],
		}
	}

	alignMean, alignStdDev := distribution(alignments)
	engageMean, engageStdDev := distribution(engagements)
	for i := range contexts {
		contexts[i].AlignmentLabel = bucket(alignments[i], alignMean, alignStdDev)
		contexts[i].EngagementLabel = bucket(engagements[i], engageMean, engageStdDev)
	}
	return contexts
}

func alignment(node TopicStats) float64 {
	if node.CommentCount == 0 {
		return 0
	}
	settled := len(node.Scorer.CommonGroundAgree(stats.All)) + len(node.Scorer.CommonGroundDisagree(stats.All))
	return float64(settled) / float64(node.CommentCount)
}

func engagement(node TopicStats, maxComments, maxVotes int) float64 {
	value := 0.0
	if maxComments > 0 {
		value += float64(node.CommentCount) / float64(maxComments)
	}
	if maxVotes > 0 {
		value += float64(node.Scorer.VoteCount()) / float64(maxVotes)
	}
	return value
}

// distribution returns the mean and sample standard deviation (n-1
// denominator), with 0 deviation when there is nothing to deviate (n <= 1).
func distribution(values []float64) (mean, stdDev float64) {
	mean = stat.Mean(values, nil)
	if len(values) <= 1 {
		return mean, 0
	}
	return mean, stat.StdDev(values, nil)
}

// bucket maps a value onto the four comparative levels against mean-σ,
// mean, mean+σ. With σ = 0 the comparison degenerates to the mean alone and
// a value sitting exactly on it lands in moderately-high.
func bucket(value, mean, stdDev float64) Level {
	switch {
	case value < mean-stdDev:
		return LevelLow
	case value < mean:
		return LevelModeratelyLow
	case value <= mean+stdDev:
		return LevelModeratelyHigh
	default:
		return LevelHigh
	}
}
