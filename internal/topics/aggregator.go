package topics

import (
	"fmt"
	"sort"

	"github.com/deliberation-tools/groundwork/internal/domain"
	"github.com/deliberation-tools/groundwork/internal/stats"
)

// TopicStats is one node of the aggregated tree. CommentCount is the size
// of the deduplicated set of comments labeled with this topic, which is the
// union of the subtopic sets when every comment descends into a subtopic.
// The scorer is scoped to exactly those comments.
type TopicStats struct {
	Name         string
	CommentCount int
	Scorer       stats.Scorer
	Subtopics    []TopicStats
}

// Aggregate partitions comments by their topic labels and builds the stats
// tree, instantiating a scorer per node through the injected factory. The
// factory is resolved once by the caller and threaded down unchanged, so the
// whole tree uses one strategy. Comments without topics are skipped
// silently; completeness of categorization is the upstream collaborator's
// responsibility.
func Aggregate(comments []domain.Comment, factory stats.Factory, cfg stats.Config) ([]TopicStats, error) {
	items := make([]levelItem, 0, len(comments))
	for _, c := range comments {
		if len(c.Topics) == 0 {
			continue
		}
		items = append(items, levelItem{comment: c, topics: c.Topics})
	}
	return buildLevel(items, factory, cfg)
}

// levelItem pairs a comment with the topic entries that place it at the
// current tree level.
type levelItem struct {
	comment domain.Comment
	topics  []domain.Topic
}

// levelBucket accumulates one sibling topic's membership. Deduplication is
// keyed by comment id, not object identity, so membership is stable across
// serialization boundaries: a comment labeled with two subtopics of the
// same topic counts once for the topic.
type levelBucket struct {
	byID     map[string]domain.Comment
	children []levelItem
}

func buildLevel(items []levelItem, factory stats.Factory, cfg stats.Config) ([]TopicStats, error) {
	buckets := map[string]*levelBucket{}
	for _, item := range items {
		for _, topic := range item.topics {
			bucket, ok := buckets[topic.Name]
			if !ok {
				bucket = &levelBucket{byID: map[string]domain.Comment{}}
				buckets[topic.Name] = bucket
			}
			bucket.byID[item.comment.ID] = item.comment
			if len(topic.Subtopics) > 0 {
				bucket.children = append(bucket.children, levelItem{comment: item.comment, topics: topic.Subtopics})
			}
		}
	}

	nodes := make([]TopicStats, 0, len(buckets))
	for name, bucket := range buckets {
		scoped := sortedComments(bucket.byID)
		scorer, err := factory(scoped, cfg)
		if err != nil {
			return nil, fmt.Errorf("topic %q: %w", name, err)
		}
		subtopics, err := buildLevel(bucket.children, factory, cfg)
		if err != nil {
			return nil, fmt.Errorf("topic %q: %w", name, err)
		}
		nodes = append(nodes, TopicStats{
			Name:         name,
			CommentCount: len(scoped),
			Scorer:       scorer,
			Subtopics:    subtopics,
		})
	}

	sortSiblings(nodes)
	return nodes, nil
}

// sortedComments flattens a dedup set into a slice ordered by comment id,
// so repeated aggregation of an unchanged collection yields structurally
// identical trees.
func sortedComments(byID map[string]domain.Comment) []domain.Comment {
	comments := make([]domain.Comment, 0, len(byID))
	for _, c := range byID {
		comments = append(comments, c)
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return comments
}

// sortSiblings orders a sibling list by descending comment count with name
// as the tie-break. The literal "Other" bucket always goes last regardless
// of its count, so the catch-all never leads a report section.
func sortSiblings(nodes []TopicStats) {
	sort.Slice(nodes, func(i, j int) bool {
		iOther := nodes[i].Name == domain.OtherTopicName
		jOther := nodes[j].Name == domain.OtherTopicName
		if iOther != jOther {
			return jOther
		}
		if nodes[i].CommentCount != nodes[j].CommentCount {
			return nodes[i].CommentCount > nodes[j].CommentCount
		}
		return nodes[i].Name < nodes[j].Name
	})
}
