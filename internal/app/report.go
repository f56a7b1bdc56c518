package app

import (
	"time"

	"github.com/google/uuid"

	"github.com/deliberation-tools/groundwork/internal/stats"
	"github.com/deliberation-tools/groundwork/internal/topics"
)

// Strategy names a consensus scoring strategy.
type Strategy string

const (
	// StrategyPooled scores pooled tallies and ignores opinion groups.
	StrategyPooled Strategy = "pooled"
	// StrategyGroupAware scores per-group tallies and rewards cross-group
	// consensus.
	StrategyGroupAware Strategy = "group-aware"
)

// Selection is one ranked result set. When empty, Message restates the
// thresholds that went unmet, so a report can say why a section is missing.
type Selection struct {
	Comments []stats.RankedComment `json:"comments"`
	Message  string                `json:"message,omitempty"`
}

// GroupSelection is one opinion group's representative comments.
type GroupSelection struct {
	GroupID  string                `json:"group_id"`
	Comments []stats.RankedComment `json:"comments"`
}

// TopicReport is one node of the serialized stats tree. The node's scorer
// is flattened into its selections and counts; labels compare the node to
// its siblings. Every node gets labels, a lone sibling sits on the level
// mean and is labeled moderately-high.
type TopicReport struct {
	Name            string        `json:"name"`
	CommentCount    int           `json:"comment_count"`
	FilteredCount   int           `json:"filtered_count"`
	VoteCount       int           `json:"vote_count"`
	CommonGround    Selection     `json:"common_ground"`
	Differences     Selection     `json:"differences"`
	Uncertain       Selection     `json:"uncertain"`
	AlignmentLabel  topics.Level  `json:"alignment_label,omitempty"`
	EngagementLabel topics.Level  `json:"engagement_label,omitempty"`
	Subtopics       []TopicReport `json:"subtopics,omitempty"`
}

// Report is the complete output of one analysis run.
type Report struct {
	RunID           uuid.UUID          `json:"run_id"`
	ConversationID  string             `json:"conversation_id,omitempty"`
	GeneratedAt     time.Time          `json:"generated_at"`
	Strategy        Strategy           `json:"strategy"`
	CommentCount    int                `json:"comment_count"`
	FilteredCount   int                `json:"filtered_count"`
	VoteCount       int                `json:"vote_count"`
	Groups          []topics.GroupStat `json:"groups,omitempty"`
	CommonGround    Selection          `json:"common_ground"`
	Differences     Selection          `json:"differences"`
	Uncertain       Selection          `json:"uncertain"`
	Representatives []GroupSelection   `json:"representatives,omitempty"`
	Topics          []TopicReport      `json:"topics,omitempty"`
}
